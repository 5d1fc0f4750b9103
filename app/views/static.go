package views

import "embed"

// Static holds the stylesheet the page skeleton links to.
//
//go:embed static
var Static embed.FS
