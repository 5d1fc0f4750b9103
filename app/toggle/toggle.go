// Package toggle shows and hides the comment section of a post.
//
// The visibility of every section is held by a StateStore; the section's
// "hide" class and its button label are a projection of that state and are
// rewritten together on every flip.
package toggle

import (
	"errors"
	"fmt"

	"postboard/app/dom"
	"postboard/app/views"

	"golang.org/x/net/html"
)

var (
	// ErrInvalidPostID is returned for a missing (non-positive) post id.
	ErrInvalidPostID = errors.New("invalid post id")
	// ErrNotFound is returned when no node carries the post id.
	ErrNotFound = errors.New("not found")
)

// StateStore keeps the visibility of comment sections by post id.
// Unknown ids are hidden.
type StateStore interface {
	Visible(postID int) (bool, error)
	SetVisible(postID int, visible bool) error
	VisibleIDs() ([]int, error)
	Reset() error
}

// Controller flips comment sections under root.
type Controller struct {
	root  *html.Node
	store StateStore
}

// NewController creates a Controller operating on the subtree rooted at root.
func NewController(root *html.Node, store StateStore) *Controller {
	return &Controller{root: root, store: store}
}

// LocateCommentSection returns the comment section of postID.
func (c *Controller) LocateCommentSection(postID int) (*html.Node, error) {
	return c.locate("section", postID)
}

// LocateToggleButton returns the toggle button of postID.
func (c *Controller) LocateToggleButton(postID int) (*html.Node, error) {
	return c.locate("button", postID)
}

func (c *Controller) locate(tag string, postID int) (*html.Node, error) {
	if postID <= 0 {
		return nil, ErrInvalidPostID
	}
	n := dom.Query(c.root, fmt.Sprintf(`%s[%s="%d"]`, tag, views.PostIDAttr, postID))
	if n == nil {
		return nil, fmt.Errorf("%s of post %d: %w", tag, postID, ErrNotFound)
	}
	return n, nil
}

// Toggle flips the visibility of postID's comments and returns the section
// and button it updated. Either both change or neither does.
func (c *Controller) Toggle(postID int) (*html.Node, *html.Node, error) {
	section, err := c.LocateCommentSection(postID)
	if err != nil {
		return nil, nil, err
	}
	button, err := c.LocateToggleButton(postID)
	if err != nil {
		return nil, nil, err
	}

	visible, err := c.store.Visible(postID)
	if err != nil {
		return nil, nil, fmt.Errorf("read state of post %d: %w", postID, err)
	}
	if err := c.store.SetVisible(postID, !visible); err != nil {
		return nil, nil, fmt.Errorf("write state of post %d: %w", postID, err)
	}

	project(section, button, !visible)
	return section, button, nil
}

// Visible reports whether postID's comments are shown.
func (c *Controller) Visible(postID int) (bool, error) {
	if postID <= 0 {
		return false, ErrInvalidPostID
	}
	return c.store.Visible(postID)
}

// VisibleIDs lists the posts whose comments are shown.
func (c *Controller) VisibleIDs() ([]int, error) {
	return c.store.VisibleIDs()
}

// Reset marks every section hidden. Called whenever the sections are rebuilt.
func (c *Controller) Reset() error {
	return c.store.Reset()
}

func project(section, button *html.Node, visible bool) {
	dom.SetClass(section, views.HiddenClass, !visible)
	if visible {
		dom.SetText(button, views.HideCommentsLabel)
	} else {
		dom.SetText(button, views.ShowCommentsLabel)
	}
}
