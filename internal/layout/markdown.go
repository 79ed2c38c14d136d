package layout

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Raw HTML in summaries is dropped by goldmark's safe renderer. Code blocks
// are highlighted with inline styles so the output needs no stylesheet.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

// keptAttrs are the only HTML attributes carried into the tree.
var keptAttrs = map[string]bool{"href": true, "src": true, "alt": true, "title": true}

// blockContainers hold only elements, so whitespace text between children
// is layout noise.
var blockContainers = map[string]bool{
	"div": true, "ul": true, "ol": true, "blockquote": true,
	"table": true, "thead": true, "tbody": true, "tr": true,
}

// renderMarkdown converts summary markdown into styled nodes.
func renderMarkdown(src string, th palette) []*Node {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return []*Node{el("p", css("margin", "0", "white-space", "pre-wrap"), text(src))}
	}

	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	frag, err := html.ParseFragment(&buf, ctx)
	if err != nil {
		return []*Node{el("p", css("margin", "0", "white-space", "pre-wrap"), text(src))}
	}

	var out []*Node
	for _, h := range frag {
		if n := convertHTML(h, "div", th); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func convertHTML(h *html.Node, parent string, th palette) *Node {
	switch h.Type {
	case html.TextNode:
		if blockContainers[parent] && strings.TrimSpace(h.Data) == "" {
			return nil
		}
		return text(h.Data)
	case html.ElementNode:
	default:
		return nil
	}

	n := &Node{Tag: h.Data, Style: markdownStyle(h.Data, parent, th)}
	for _, a := range h.Attr {
		switch {
		case a.Key == "style":
			n.Style = append(n.Style, parseInlineStyle(a.Val)...)
		case keptAttrs[a.Key]:
			n.Attrs = append(n.Attrs, Attr{Key: a.Key, Val: a.Val})
		}
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if child := convertHTML(c, h.Data, th); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

func markdownStyle(tag, parent string, th palette) Style {
	switch tag {
	case "h1":
		return css("font-size", "24px", "font-weight", "bold", "margin", "24px 0 12px 0", "color", th.text)
	case "h2":
		return css("font-size", "20px", "font-weight", "bold", "margin", "20px 0 10px 0", "color", th.text)
	case "h3", "h4", "h5", "h6":
		return css("font-size", "18px", "font-weight", "bold", "margin", "16px 0 8px 0", "color", th.text)
	case "p":
		return css("margin", "0 0 12px 0")
	case "ul", "ol":
		return css("margin", "0 0 12px 0", "padding-left", "24px")
	case "li":
		return css("margin", "4px 0")
	case "a":
		return css("color", th.primary, "text-decoration", "none")
	case "blockquote":
		return css("margin", "0 0 12px 0", "padding-left", "12px", "border-left", "3px solid "+th.primary)
	case "pre":
		return css("margin", "0 0 12px 0", "padding", "12px", "border-radius", "6px", "overflow-x", "auto", "font-size", "13px")
	case "code":
		if parent == "pre" {
			return css("font-family", monoFont)
		}
		return css("font-family", monoFont, "background-color", th.secondary, "padding", "2px 4px", "border-radius", "4px", "font-size", "0.9em")
	case "table":
		return css("border-collapse", "collapse", "margin", "0 0 12px 0")
	case "th", "td":
		return css("border", "1px solid "+th.secondary, "padding", "6px 10px", "text-align", "left")
	case "img":
		return css("max-width", "100%")
	case "hr":
		return css("border", "none", "border-top", "1px solid "+th.secondary, "margin", "16px 0")
	}
	return nil
}

// parseInlineStyle splits "a: b; c: d" into declarations, preserving order.
func parseInlineStyle(s string) Style {
	var out Style
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop, val = strings.TrimSpace(prop), strings.TrimSpace(val)
		if prop == "" || val == "" {
			continue
		}
		out = append(out, Decl{Prop: prop, Value: val})
	}
	return out
}
