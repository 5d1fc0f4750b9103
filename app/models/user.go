package models

import "fmt"

// Validate checks if the user meets all validation requirements
func (u *User) Validate() error {
	return validate.Struct(u)
}

// Byline returns the "name with company" text shown under a post.
func (u *User) Byline() string {
	if u.Company.Name == "" {
		return u.Name
	}
	return fmt.Sprintf("%s with %s", u.Name, u.Company.Name)
}
