// Package page runs the refresh cycle of the employee posts page: a picker
// selection fetches that user's posts and rebuilds the main container.
package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"postboard/app/dom"
	"postboard/app/listeners"
	"postboard/app/toggle"
	"postboard/app/views"

	strip "github.com/grokify/html-strip-tags-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// DefaultFallbackUserID is selected when the picker carries no usable value.
const DefaultFallbackUserID = 1

var ErrMalformedDocument = errors.New("page skeleton lacks #selectMenu or main")

// Options tunes a Page.
type Options struct {
	// FallbackUserID replaces an empty or invalid selection.
	FallbackUserID int
	// FetchLimit bounds concurrent per-post fetches; 1 is sequential.
	FetchLimit int
}

// Result describes one Select call.
type Result struct {
	UserID      int
	Posts       int
	Placeholder bool
	// Stale is set when a newer selection arrived before this one could be
	// mounted; nothing was changed.
	Stale bool
}

// Page owns one document and everything operating on it.
type Page struct {
	mutex     sync.RWMutex
	doc       *html.Node
	picker    *html.Node
	container *html.Node

	res       views.Resources
	builder   *views.Builder
	toggles   *toggle.Controller
	listeners *listeners.Manager

	fallbackUserID int
	selected       int
	inflight       int
	latest         atomic.Uint64
}

// New creates a page backed by a fresh skeleton document.
func New(res views.Resources, store toggle.StateStore, opts Options) (*Page, error) {
	doc, err := views.NewDocument()
	if err != nil {
		return nil, err
	}
	picker := dom.Query(doc, "select#selectMenu")
	container := dom.Query(doc, "main")
	if picker == nil || container == nil {
		return nil, ErrMalformedDocument
	}

	if opts.FallbackUserID <= 0 {
		opts.FallbackUserID = DefaultFallbackUserID
	}

	toggles := toggle.NewController(container, store)
	return &Page{
		doc:            doc,
		picker:         picker,
		container:      container,
		res:            res,
		builder:        views.NewBuilder(res, opts.FetchLimit),
		toggles:        toggles,
		listeners:      listeners.NewManager(container, listeners.NewRegistry(), toggles),
		fallbackUserID: opts.FallbackUserID,
	}, nil
}

// Init fetches the users once and fills the picker. It returns the number of
// options added.
func (p *Page) Init(ctx context.Context) int {
	users := p.res.FetchUsers(ctx)
	options := views.BuildSelectOptions(users)
	if options == nil {
		log.Warn("[page] no users to populate the picker")
		return 0
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	for _, o := range options {
		dom.Append(p.picker, o)
	}
	return len(options)
}

// Select runs one refresh cycle for the raw picker value.
func (p *Page) Select(ctx context.Context, rawUserID string) Result {
	gen := p.latest.Add(1)

	p.mutex.Lock()
	p.inflight++
	dom.SetAttr(p.picker, "disabled", "")
	p.mutex.Unlock()

	userID := p.resolveUserID(rawUserID)
	posts := p.res.FetchUserPosts(ctx, userID)

	var content *html.Node
	placeholder := len(posts) == 0
	if placeholder {
		content = views.BuildPlaceholder()
	} else {
		content = p.builder.BuildPostFragment(ctx, posts)
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	defer p.releasePicker()

	res := Result{UserID: userID, Posts: len(posts), Placeholder: placeholder}
	if gen != p.latest.Load() {
		log.Debugf("[page] dropping stale selection of user %d", userID)
		res.Stale = true
		return res
	}

	p.listeners.UnbindAll()
	dom.RemoveChildren(p.container)
	if err := p.toggles.Reset(); err != nil {
		log.Errorf("[page] reset toggle state: %v", err)
	}
	dom.Append(p.container, content)
	p.markSelected(userID)
	p.selected = userID
	bound := p.listeners.BindAll()

	log.WithFields(log.Fields{
		"user_id": userID,
		"posts":   len(posts),
		"buttons": bound,
	}).Info("[page] refreshed")
	return res
}

// Click presses the toggle button of postID.
func (p *Page) Click(postID int) (bool, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.listeners.Click(postID); err != nil {
		return false, err
	}
	return p.toggles.Visible(postID)
}

// Selected returns the user id of the mounted posts, 0 before the first selection.
func (p *Page) Selected() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.selected
}

// VisibleSections lists the posts whose comments are shown.
func (p *Page) VisibleSections() ([]int, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.toggles.VisibleIDs()
}

// PickerDisabled reports whether a refresh cycle is in flight.
func (p *Page) PickerDisabled() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	_, ok := dom.Attr(p.picker, "disabled")
	return ok
}

// Render writes the document as HTML.
func (p *Page) Render(w io.Writer) error {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return dom.Render(w, p.doc)
}

// Text returns the main container as plain text.
func (p *Page) Text() (string, error) {
	var buf bytes.Buffer
	p.mutex.RLock()
	err := dom.Render(&buf, p.container)
	p.mutex.RUnlock()
	if err != nil {
		return "", fmt.Errorf("render main: %w", err)
	}

	// Break lines between blocks before the tags are dropped.
	s := buf.String()
	for _, tag := range []string{"</h2>", "</h3>", "</p>", "</button>", "</article>"} {
		s = strings.ReplaceAll(s, tag, tag+"\n")
	}
	return html.UnescapeString(strip.StripTags(s)), nil
}

// releasePicker re-enables the picker once no refresh cycle is in flight.
// The caller holds the mutex.
func (p *Page) releasePicker() {
	p.inflight--
	if p.inflight == 0 {
		dom.RemoveAttr(p.picker, "disabled")
	}
}

func (p *Page) resolveUserID(raw string) int {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return p.fallbackUserID
	}
	return id
}

func (p *Page) markSelected(userID int) {
	want := strconv.Itoa(userID)
	for _, o := range dom.Children(p.picker) {
		if v, _ := dom.Attr(o, "value"); v == want {
			dom.SetAttr(o, "selected", "")
		} else {
			dom.RemoveAttr(o, "selected")
		}
	}
}
