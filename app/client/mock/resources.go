package mock

import (
	"context"
	"sync"

	"postboard/app/models"
)

// Resources is an in-memory stand-in for the API client.
type Resources struct {
	mutex    sync.RWMutex
	users    []models.User
	posts    map[int][]models.Post
	comments map[int][]models.Comment
	failing  map[int]bool
	calls    map[string]int
	// BeforeUsers, when set, runs at the start of FetchUsers.
	BeforeUsers func()
	// BeforePosts, when set, runs at the start of FetchUserPosts.
	BeforePosts func(userID int)
}

func NewResources() *Resources {
	return &Resources{
		posts:    make(map[int][]models.Post),
		comments: make(map[int][]models.Comment),
		failing:  make(map[int]bool),
		calls:    make(map[string]int),
	}
}

func (m *Resources) AddUser(u models.User) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.users = append(m.users, u)
}

func (m *Resources) AddPost(p models.Post) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts[p.UserID] = append(m.posts[p.UserID], p)
}

func (m *Resources) AddComment(c models.Comment) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.comments[c.PostID] = append(m.comments[c.PostID], c)
}

// FailUser makes FetchUser return nil for userID.
func (m *Resources) FailUser(userID int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failing[userID] = true
}

// Calls returns how many times the named method was invoked.
func (m *Resources) Calls(method string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.calls[method]
}

func (m *Resources) record(method string) {
	m.mutex.Lock()
	m.calls[method]++
	m.mutex.Unlock()
}

func (m *Resources) FetchUsers(ctx context.Context) []models.User {
	m.record("FetchUsers")
	if m.BeforeUsers != nil {
		m.BeforeUsers()
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]models.User(nil), m.users...)
}

func (m *Resources) FetchUserPosts(ctx context.Context, userID int) []models.Post {
	if userID <= 0 {
		return nil
	}
	m.record("FetchUserPosts")
	if m.BeforePosts != nil {
		m.BeforePosts(userID)
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]models.Post{}, m.posts[userID]...)
}

func (m *Resources) FetchUser(ctx context.Context, userID int) *models.User {
	if userID <= 0 {
		return nil
	}
	m.record("FetchUser")
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.failing[userID] {
		return nil
	}
	for i := range m.users {
		if m.users[i].ID == userID {
			u := m.users[i]
			return &u
		}
	}
	return nil
}

func (m *Resources) FetchPostComments(ctx context.Context, postID int) []models.Comment {
	if postID <= 0 {
		return nil
	}
	m.record("FetchPostComments")
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]models.Comment{}, m.comments[postID]...)
}
