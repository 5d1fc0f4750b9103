// Package client fetches users, posts and comments from the remote REST API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"postboard/app/models"

	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is the public jsonplaceholder origin.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

var ErrBadBaseURL = errors.New("invalid API base URL")

// Client is a read-only client for the four endpoints the page needs.
// Every method logs failures and returns nil instead of an error: nil means
// "no data", an empty non-nil slice means the origin answered with [].
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a Client for baseURL with the given request timeout.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadBaseURL, baseURL)
	}

	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// FetchUsers returns every user.
func (c *Client) FetchUsers(ctx context.Context) []models.User {
	users, err := getJSON[[]models.User](ctx, c, c.endpoint(nil, "users"))
	if err != nil {
		log.Errorf("[client] fetch users: %v", err)
		return nil
	}
	return keepValid(users, "user")
}

// FetchUserPosts returns the posts owned by userID.
func (c *Client) FetchUserPosts(ctx context.Context, userID int) []models.Post {
	if userID <= 0 {
		return nil
	}

	q := url.Values{"userId": {strconv.Itoa(userID)}}
	posts, err := getJSON[[]models.Post](ctx, c, c.endpoint(q, "posts"))
	if err != nil {
		log.Errorf("[client] fetch posts of user %d: %v", userID, err)
		return nil
	}
	return keepValid(posts, "post")
}

// FetchUser returns a single user.
func (c *Client) FetchUser(ctx context.Context, userID int) *models.User {
	if userID <= 0 {
		return nil
	}

	user, err := getJSON[models.User](ctx, c, c.endpoint(nil, "users", strconv.Itoa(userID)))
	if err != nil {
		log.Errorf("[client] fetch user %d: %v", userID, err)
		return nil
	}
	if err := user.Validate(); err != nil {
		log.Warnf("[client] user %d: invalid record: %v", userID, err)
		return nil
	}
	return &user
}

// FetchPostComments returns the comments of postID.
func (c *Client) FetchPostComments(ctx context.Context, postID int) []models.Comment {
	if postID <= 0 {
		return nil
	}

	q := url.Values{"postId": {strconv.Itoa(postID)}}
	comments, err := getJSON[[]models.Comment](ctx, c, c.endpoint(q, "comments"))
	if err != nil {
		log.Errorf("[client] fetch comments of post %d: %v", postID, err)
		return nil
	}
	return keepValid(comments, "comment")
}

func (c *Client) endpoint(q url.Values, elem ...string) string {
	u := c.base.JoinPath(elem...)
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func getJSON[T any](ctx context.Context, c *Client, target string) (T, error) {
	var t T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return t, fmt.Errorf("create request %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return t, fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"url":      target,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("[client] request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return t, fmt.Errorf("GET %s: unexpected status %d", target, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return t, fmt.Errorf("decode %s: %w", target, err)
	}
	return t, nil
}

type validatable interface {
	Validate() error
}

// keepValid drops records that fail validation, preserving order. The result
// is never nil, so an empty origin collection stays distinguishable from a failure.
func keepValid[T any, PT interface {
	*T
	validatable
}](items []T, kind string) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if err := PT(&items[i]).Validate(); err != nil {
			log.Warnf("[client] dropping invalid %s at index %d: %v", kind, i, err)
			continue
		}
		out = append(out, items[i])
	}
	return out
}
