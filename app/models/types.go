package models

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Company is the organization a user is affiliated with.
type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// User is an employee as served by the remote API.
type User struct {
	ID       int     `json:"id" validate:"required,gt=0"`
	Name     string  `json:"name" validate:"required"`
	Username string  `json:"username"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	Company  Company `json:"company" validate:"-"`
}

// Post represents a blog post written by a user.
type Post struct {
	ID     int    `json:"id" validate:"required,gt=0"`
	UserID int    `json:"userId" validate:"required,gt=0"`
	Title  string `json:"title" validate:"required"`
	Body   string `json:"body"`
}

// Comment represents a comment on a post.
type Comment struct {
	ID     int    `json:"id" validate:"required,gt=0"`
	PostID int    `json:"postId" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	Body   string `json:"body"`
}
