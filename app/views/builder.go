// Package views builds the DOM fragments of the employee posts page.
package views

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strconv"

	"postboard/app/dom"
	"postboard/app/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const (
	PlaceholderText   = "Select an Employee to display their posts."
	PlaceholderClass  = "default-text"
	ShowCommentsLabel = "Show Comments"
	HideCommentsLabel = "Hide Comments"
	HiddenClass       = "hide"
	SectionClass      = "comments"
	PostIDAttr        = "data-post-id"
	UnknownAuthor     = "unknown"
)

//go:embed page.html
var pageHTML []byte

// Resources is the subset of the API client the builder needs.
type Resources interface {
	FetchUsers(ctx context.Context) []models.User
	FetchUserPosts(ctx context.Context, userID int) []models.Post
	FetchUser(ctx context.Context, userID int) *models.User
	FetchPostComments(ctx context.Context, postID int) []models.Comment
}

// Builder turns fetched records into DOM fragments.
type Builder struct {
	res   Resources
	limit int
}

// NewBuilder creates a Builder. limit bounds the number of concurrent
// per-post fetches; 1 fetches strictly one post at a time, in order.
func NewBuilder(res Resources, limit int) *Builder {
	if limit < 1 {
		limit = 1
	}
	return &Builder{res: res, limit: limit}
}

// NewDocument parses a fresh copy of the page skeleton.
func NewDocument() (*html.Node, error) {
	doc, err := dom.Parse(bytes.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parse page skeleton: %w", err)
	}
	return doc, nil
}

// BuildLabeledElement creates a tag element holding text. The tag defaults to p.
func BuildLabeledElement(tag, text, class string) *html.Node {
	if tag == "" {
		tag = "p"
	}
	n := dom.NewElement(tag)
	dom.SetText(n, text)
	if class != "" {
		dom.SetAttr(n, "class", class)
	}
	return n
}

// BuildSelectOptions returns one option per user, in input order.
func BuildSelectOptions(users []models.User) []*html.Node {
	if len(users) == 0 {
		return nil
	}
	options := make([]*html.Node, 0, len(users))
	for _, u := range users {
		opt := BuildLabeledElement("option", u.Name, "")
		dom.SetAttr(opt, "value", strconv.Itoa(u.ID))
		options = append(options, opt)
	}
	return options
}

// BuildPlaceholder returns the paragraph shown when there are no posts.
func BuildPlaceholder() *html.Node {
	return BuildLabeledElement("p", PlaceholderText, PlaceholderClass)
}

// BuildCommentFragment returns a fragment with one article per comment.
func BuildCommentFragment(comments []models.Comment) *html.Node {
	frag := dom.NewFragment()
	for i := range comments {
		c := &comments[i]
		article := dom.NewElement("article")
		dom.Append(article, BuildLabeledElement("h3", c.Name, ""))
		dom.Append(article, BuildLabeledElement("p", c.Body, ""))
		dom.Append(article, BuildLabeledElement("p", c.From(), ""))
		dom.Append(frag, article)
	}
	return frag
}

// BuildCommentSection fetches the comments of postID and wraps them in a
// hidden section tagged with the post id.
func (b *Builder) BuildCommentSection(ctx context.Context, postID int) *html.Node {
	if postID <= 0 {
		return nil
	}
	return commentSection(postID, b.res.FetchPostComments(ctx, postID))
}

func commentSection(postID int, comments []models.Comment) *html.Node {
	section := dom.NewElement("section")
	dom.SetAttr(section, PostIDAttr, strconv.Itoa(postID))
	dom.AddClass(section, SectionClass, HiddenClass)
	dom.Append(section, BuildCommentFragment(comments))
	return section
}

// postData is everything fetched for one post before its article is built.
type postData struct {
	author   *models.User
	comments []models.Comment
}

// BuildPostFragment returns a fragment with one article per post, in input
// order. Authors and comments are fetched concurrently up to the builder's
// limit; results are collected by index so order never depends on timing.
func (b *Builder) BuildPostFragment(ctx context.Context, posts []models.Post) *html.Node {
	data := make([]postData, len(posts))

	g := new(errgroup.Group)
	g.SetLimit(b.limit)
	for i := range posts {
		i := i
		g.Go(func() error {
			data[i].author = b.res.FetchUser(ctx, posts[i].UserID)
			data[i].comments = b.res.FetchPostComments(ctx, posts[i].ID)
			return nil
		})
	}
	_ = g.Wait()

	frag := dom.NewFragment()
	for i := range posts {
		dom.Append(frag, postArticle(&posts[i], data[i]))
	}
	return frag
}

func postArticle(p *models.Post, d postData) *html.Node {
	article := dom.NewElement("article")
	dom.Append(article, BuildLabeledElement("h2", p.Title, ""))
	dom.Append(article, BuildLabeledElement("p", p.Body, ""))
	dom.Append(article, BuildLabeledElement("p", fmt.Sprintf("Post ID: %d", p.ID), ""))

	byline, catchPhrase := UnknownAuthor, ""
	if d.author != nil {
		byline, catchPhrase = d.author.Byline(), d.author.Company.CatchPhrase
	} else {
		log.Warnf("[views] post %d: author %d unavailable", p.ID, p.UserID)
	}
	dom.Append(article, BuildLabeledElement("p", "Author: "+byline, ""))
	dom.Append(article, BuildLabeledElement("p", catchPhrase, ""))

	button := BuildLabeledElement("button", ShowCommentsLabel, "")
	id := strconv.Itoa(p.ID)
	dom.SetAttr(button, PostIDAttr, id)
	dom.SetAttr(button, "name", "toggle")
	dom.SetAttr(button, "value", id)
	dom.Append(article, button)

	dom.Append(article, commentSection(p.ID, d.comments))
	return article
}
