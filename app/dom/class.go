package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Classes returns the entries of the class attribute.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries class name.
func HasClass(n *html.Node, name string) bool {
	for _, c := range Classes(n) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass adds the given classes, skipping ones already present.
func AddClass(n *html.Node, names ...string) {
	classes := Classes(n)
	for _, name := range names {
		if name == "" || contains(classes, name) {
			continue
		}
		classes = append(classes, name)
	}
	setClasses(n, classes)
}

// RemoveClass removes class name.
func RemoveClass(n *html.Node, name string) {
	classes := Classes(n)
	out := classes[:0]
	for _, c := range classes {
		if c != name {
			out = append(out, c)
		}
	}
	setClasses(n, out)
}

// SetClass adds name when on is true and removes it otherwise.
func SetClass(n *html.Node, name string, on bool) {
	if on {
		AddClass(n, name)
	} else {
		RemoveClass(n, name)
	}
}

func setClasses(n *html.Node, classes []string) {
	if len(classes) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(classes, " "))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
