package views

import (
	"context"
	"fmt"
	"testing"

	"postboard/app/client/mock"
	"postboard/app/dom"
	"postboard/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestBuildLabeledElement(t *testing.T) {
	t.Run("defaults to paragraph", func(t *testing.T) {
		n := BuildLabeledElement("", "", "")
		assert.Equal(t, "p", n.Data)
		assert.Equal(t, "", dom.Text(n))
		_, ok := dom.Attr(n, "class")
		assert.False(t, ok)
	})

	t.Run("tag text and class", func(t *testing.T) {
		n := BuildLabeledElement("h2", "qui est esse", "title")
		assert.Equal(t, "h2", n.Data)
		assert.Equal(t, "qui est esse", dom.Text(n))
		assert.True(t, dom.HasClass(n, "title"))
	})
}

func TestBuildSelectOptions(t *testing.T) {
	assert.Nil(t, BuildSelectOptions(nil))
	assert.Nil(t, BuildSelectOptions([]models.User{}))

	options := BuildSelectOptions([]models.User{
		{ID: 2, Name: "Ervin Howell"},
		{ID: 1, Name: "Leanne Graham"},
	})
	require.Len(t, options, 2)
	for i, want := range []struct{ value, label string }{{"2", "Ervin Howell"}, {"1", "Leanne Graham"}} {
		assert.Equal(t, "option", options[i].Data)
		v, _ := dom.Attr(options[i], "value")
		assert.Equal(t, want.value, v)
		assert.Equal(t, want.label, dom.Text(options[i]))
	}
}

func TestBuildCommentFragment(t *testing.T) {
	assert.Nil(t, BuildCommentFragment(nil).FirstChild)

	frag := BuildCommentFragment([]models.Comment{
		{ID: 1, PostID: 1, Name: "first", Email: "a@example.com", Body: "body one"},
		{ID: 2, PostID: 1, Name: "second", Email: "b@example.com", Body: "body two"},
	})
	articles := dom.Children(frag)
	require.Len(t, articles, 2)

	lines := dom.Children(articles[1])
	require.Len(t, lines, 3)
	assert.Equal(t, "h3", lines[0].Data)
	assert.Equal(t, "second", dom.Text(lines[0]))
	assert.Equal(t, "body two", dom.Text(lines[1]))
	assert.Equal(t, "From: b@example.com", dom.Text(lines[2]))
}

func TestBuilder_BuildCommentSection(t *testing.T) {
	res := mock.Seeded()
	b := NewBuilder(res, 4)

	assert.Nil(t, b.BuildCommentSection(context.Background(), 0))
	assert.Equal(t, 0, res.Calls("FetchPostComments"))

	section := b.BuildCommentSection(context.Background(), 5)
	require.NotNil(t, section)
	assert.Equal(t, "section", section.Data)
	assert.True(t, dom.HasClass(section, SectionClass))
	assert.True(t, dom.HasClass(section, HiddenClass))
	id, _ := dom.Attr(section, PostIDAttr)
	assert.Equal(t, "5", id)
	assert.Len(t, dom.Children(section), 3)
	assert.Equal(t, 1, res.Calls("FetchPostComments"))
}

func TestBuilder_BuildPostFragment(t *testing.T) {
	for _, limit := range []int{1, 8} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			res := mock.Seeded()
			b := NewBuilder(res, limit)

			posts := res.FetchUserPosts(context.Background(), 1)
			frag := b.BuildPostFragment(context.Background(), posts)

			articles := dom.Children(frag)
			require.Len(t, articles, 2)
			assertPostArticle(t, articles[0], 1, "sunt aut facere")
			assertPostArticle(t, articles[1], 5, "nesciunt quas odio")

			lines := dom.Children(articles[0])
			assert.Equal(t, "Author: Leanne Graham with Romaguera-Crona", dom.Text(lines[3]))
			assert.Equal(t, "Multi-layered client-server neural-net", dom.Text(lines[4]))

			assert.Equal(t, 2, res.Calls("FetchUser"))
			assert.Equal(t, 2, res.Calls("FetchPostComments"))
		})
	}
}

func TestBuilder_BuildPostFragment_PreservesOrder(t *testing.T) {
	res := mock.NewResources()
	res.AddUser(models.User{ID: 9, Name: "Glenna Reichert"})
	var posts []models.Post
	for id := 50; id > 0; id-- {
		posts = append(posts, models.Post{ID: id, UserID: 9, Title: fmt.Sprintf("post %d", id)})
	}

	frag := NewBuilder(res, 16).BuildPostFragment(context.Background(), posts)

	articles := dom.Children(frag)
	require.Len(t, articles, len(posts))
	for i, a := range articles {
		assert.Equal(t, posts[i].Title, dom.Text(dom.Children(a)[0]))
	}
}

func TestBuilder_BuildPostFragment_UnknownAuthor(t *testing.T) {
	res := mock.Seeded()
	res.FailUser(1)

	posts := res.FetchUserPosts(context.Background(), 1)
	frag := NewBuilder(res, 2).BuildPostFragment(context.Background(), posts)

	articles := dom.Children(frag)
	require.Len(t, articles, 2)
	lines := dom.Children(articles[0])
	assert.Equal(t, "Author: unknown", dom.Text(lines[3]))
	assert.Equal(t, "", dom.Text(lines[4]))
}

func TestBuilder_BuildPostFragment_Empty(t *testing.T) {
	frag := NewBuilder(mock.NewResources(), 1).BuildPostFragment(context.Background(), nil)
	assert.Nil(t, frag.FirstChild)
}

func TestBuildPlaceholder(t *testing.T) {
	p := BuildPlaceholder()
	assert.Equal(t, "p", p.Data)
	assert.True(t, dom.HasClass(p, PlaceholderClass))
	assert.Equal(t, PlaceholderText, dom.Text(p))
}

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument()
	require.NoError(t, err)
	require.NotNil(t, dom.Query(doc, "select#selectMenu"))
	require.NotNil(t, dom.Query(doc, "main"))

	other, err := NewDocument()
	require.NoError(t, err)
	assert.NotSame(t, dom.Query(doc, "main"), dom.Query(other, "main"))
}

func assertPostArticle(t *testing.T, article *html.Node, id int, title string) {
	t.Helper()
	lines := dom.Children(article)
	require.Len(t, lines, 7)
	assert.Equal(t, "h2", lines[0].Data)
	assert.Equal(t, title, dom.Text(lines[0]))
	assert.Equal(t, fmt.Sprintf("Post ID: %d", id), dom.Text(lines[2]))

	button := lines[5]
	assert.Equal(t, "button", button.Data)
	assert.Equal(t, ShowCommentsLabel, dom.Text(button))
	v, _ := dom.Attr(button, PostIDAttr)
	assert.Equal(t, fmt.Sprint(id), v)

	section := lines[6]
	assert.Equal(t, "section", section.Data)
	assert.True(t, dom.HasClass(section, HiddenClass))
	assert.Len(t, dom.Children(section), 3)
}
