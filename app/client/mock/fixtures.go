package mock

import (
	"fmt"

	"postboard/app/models"
)

// Seeded returns Resources holding a small fixed data set:
// user 1 owns posts 1 and 5 with three comments each, user 2 owns no posts,
// user 3 owns post 21 with a single comment.
func Seeded() *Resources {
	m := NewResources()
	m.AddUser(models.User{ID: 1, Name: "Leanne Graham", Company: models.Company{Name: "Romaguera-Crona", CatchPhrase: "Multi-layered client-server neural-net"}})
	m.AddUser(models.User{ID: 2, Name: "Ervin Howell", Company: models.Company{Name: "Deckow-Crist", CatchPhrase: "Proactive didactic contingency"}})
	m.AddUser(models.User{ID: 3, Name: "Clementine Bauch", Company: models.Company{Name: "Romaguera-Jacobson", CatchPhrase: "Face to face bifurcated interface"}})

	m.AddPost(models.Post{ID: 1, UserID: 1, Title: "sunt aut facere", Body: "quia et suscipit"})
	m.AddPost(models.Post{ID: 5, UserID: 1, Title: "nesciunt quas odio", Body: "repudiandae veniam quaerat"})
	m.AddPost(models.Post{ID: 21, UserID: 3, Title: "asperiores ea ipsam", Body: "et iusto veniam"})

	commentID := 1
	for _, postID := range []int{1, 5} {
		for i := 0; i < 3; i++ {
			m.AddComment(models.Comment{
				ID:     commentID,
				PostID: postID,
				Name:   fmt.Sprintf("comment %d on post %d", i+1, postID),
				Email:  fmt.Sprintf("reader%d@example.com", commentID),
				Body:   "laudantium enim quasi",
			})
			commentID++
		}
	}
	m.AddComment(models.Comment{ID: 101, PostID: 21, Name: "lone comment", Email: "solo@example.com", Body: "sed ab est"})
	return m
}
