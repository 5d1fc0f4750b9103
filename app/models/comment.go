package models

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	return validate.Struct(c)
}

// From returns the sender line rendered below a comment body.
func (c *Comment) From() string {
	return "From: " + c.Email
}
