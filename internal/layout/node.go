// Package layout turns a Document into a styled element tree. Rendering is a
// pure function of the Document: the same input always yields the same tree,
// and no style ever lives outside the tree itself.
package layout

import "strings"

// Attr is a single element attribute.
type Attr struct {
	Key string
	Val string
}

// Decl is a single CSS declaration.
type Decl struct {
	Prop  string
	Value string
}

// Style is an ordered list of CSS declarations.
type Style []Decl

// css builds a Style from alternating property/value pairs.
func css(pairs ...string) Style {
	s := make(Style, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		s = append(s, Decl{Prop: pairs[i], Value: pairs[i+1]})
	}
	return s
}

// String renders s as an inline style attribute value.
func (s Style) String() string {
	var b strings.Builder
	for i, d := range s {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(d.Prop)
		b.WriteString(": ")
		b.WriteString(d.Value)
	}
	return b.String()
}

// Get returns the last value declared for prop.
func (s Style) Get(prop string) (string, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Prop == prop {
			return s[i].Value, true
		}
	}
	return "", false
}

// Node is an element or, when Tag is empty, a text run.
type Node struct {
	Tag      string
	Attrs    []Attr
	Style    Style
	Text     string
	Children []*Node
	// Section names the editable region this node belongs to.
	Section string
}

// IsText reports whether n is a text run.
func (n *Node) IsText() bool { return n.Tag == "" }

// Attr returns the value of attribute key.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindSection returns the first node tagged with section, or nil.
func (n *Node) FindSection(section string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Section == section {
			found = c
			return false
		}
		return true
	})
	return found
}

// TextContent concatenates every text run under n.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		if c.IsText() {
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

func el(tag string, style Style, children ...*Node) *Node {
	return &Node{Tag: tag, Style: style, Children: children}
}

func text(s string) *Node {
	return &Node{Text: s}
}

func (n *Node) attr(key, val string) *Node {
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
	return n
}

func (n *Node) section(s string) *Node {
	n.Section = s
	return n
}
