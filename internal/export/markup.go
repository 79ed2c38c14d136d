// Package export serializes a rendered tree into portable, self-contained
// markup: every style is inline, so the fragment survives being pasted into
// editors that strip stylesheets.
package export

import (
	"html"
	"strings"

	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/layout"
)

// Payload is the dual clipboard content: rich markup plus its plain-text
// shadow.
type Payload struct {
	HTML string `json:"html"`
	Text string `json:"text"`
}

var voidElements = map[string]bool{
	"img": true, "br": true, "hr": true, "input": true, "source": true,
}

// WrapperStyle is the style of the outer container around exported markup.
func WrapperStyle(theme document.Theme) layout.Style {
	theme = layout.ResolveTheme(theme)
	return layout.Style{
		{Prop: "font-family", Value: layout.FontStack},
		{Prop: "background-color", Value: theme.BackgroundColor},
		{Prop: "color", Value: theme.TextColor},
		{Prop: "padding", Value: "40px"},
		{Prop: "width", Value: "100%"},
		{Prop: "box-sizing", Value: "border-box"},
	}
}

// Markup serializes tree inside a themed wrapper.
func Markup(tree *layout.Node, theme document.Theme) Payload {
	wrapper := &layout.Node{Tag: "div", Style: WrapperStyle(theme)}
	if tree != nil {
		wrapper.Children = []*layout.Node{tree}
	}

	var b strings.Builder
	writeNode(&b, wrapper)

	var t textBuilder
	nodeText(&t, wrapper, false)

	return Payload{HTML: b.String(), Text: t.String()}
}

// Document renders d and serializes it.
func Document(d document.Document) Payload {
	return Markup(layout.Render(d), d.Theme)
}

func writeNode(b *strings.Builder, n *layout.Node) {
	if n.IsText() {
		b.WriteString(html.EscapeString(n.Text))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	if len(n.Style) > 0 {
		writeAttr(b, "style", n.Style.String())
	}
	if n.Section != "" {
		writeAttr(b, "data-section", n.Section)
	}
	for _, a := range n.Attrs {
		writeAttr(b, a.Key, a.Val)
	}
	b.WriteByte('>')
	if voidElements[n.Tag] {
		return
	}
	for _, c := range n.Children {
		writeNode(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func writeAttr(b *strings.Builder, key, val string) {
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(val))
	b.WriteByte('"')
}
