package listeners

import (
	"fmt"
	"strconv"

	"postboard/app/dom"
	"postboard/app/toggle"
	"postboard/app/views"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const clickEvent = "click"

// Toggler flips the comment section of a post.
type Toggler interface {
	Toggle(postID int) (*html.Node, *html.Node, error)
}

type binding struct {
	postID   int
	listener *Listener
}

// Manager keeps exactly one click listener on every toggle button under
// the container. The listener bound to a button is remembered so that
// UnbindAll detaches that same instance.
type Manager struct {
	container *html.Node
	registry  *Registry
	toggler   Toggler
	bound     map[*html.Node]binding
}

// NewManager creates a Manager for the buttons below container.
func NewManager(container *html.Node, registry *Registry, toggler Toggler) *Manager {
	return &Manager{
		container: container,
		registry:  registry,
		toggler:   toggler,
		bound:     make(map[*html.Node]binding),
	}
}

// BindAll attaches a click listener to every toggle button that does not
// have one yet and returns the number of buttons found.
func (m *Manager) BindAll() int {
	buttons := m.buttons()
	for _, b := range buttons {
		if _, ok := m.bound[b]; ok {
			continue
		}
		raw, _ := dom.Attr(b, views.PostIDAttr)
		postID, err := strconv.Atoi(raw)
		if err != nil || postID <= 0 {
			log.Warnf("[listeners] skipping button with post id %q", raw)
			continue
		}

		l := NewListener(func(Event) error {
			_, _, err := m.toggler.Toggle(postID)
			return err
		})
		m.registry.Add(b, clickEvent, l)
		m.bound[b] = binding{postID: postID, listener: l}
	}
	return len(buttons)
}

// UnbindAll detaches every listener added by BindAll and returns how many
// were removed.
func (m *Manager) UnbindAll() int {
	n := len(m.bound)
	for node, b := range m.bound {
		m.registry.Remove(node, clickEvent, b.listener)
	}
	m.bound = make(map[*html.Node]binding)
	return n
}

// Click dispatches a click on the toggle button of postID.
func (m *Manager) Click(postID int) error {
	if postID <= 0 {
		return toggle.ErrInvalidPostID
	}
	for node, b := range m.bound {
		if b.postID == postID {
			return m.registry.Dispatch(node, clickEvent)
		}
	}
	return fmt.Errorf("button of post %d: %w", postID, toggle.ErrNotFound)
}

// Bound returns the number of buttons currently holding a listener.
func (m *Manager) Bound() int {
	return len(m.bound)
}

func (m *Manager) buttons() []*html.Node {
	return dom.QueryAll(m.container, "button["+views.PostIDAttr+"]")
}
