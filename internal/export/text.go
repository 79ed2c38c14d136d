package export

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/onepage/internal/layout"
)

var blockElements = map[string]bool{
	"div": true, "p": true, "section": true, "header": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "blockquote": true, "pre": true, "hr": true,
	"table": true, "thead": true, "tbody": true, "tr": true,
}

// textBuilder approximates innerText: block boundaries become line breaks,
// whitespace outside <pre> collapses, and blank lines are dropped.
type textBuilder struct {
	b strings.Builder
}

func (t *textBuilder) text(s string, pre bool) {
	if pre {
		t.b.WriteString(s)
		return
	}
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			t.b.WriteByte(' ')
			space = false
		}
		t.b.WriteRune(r)
	}
	if space {
		t.b.WriteByte(' ')
	}
}

func (t *textBuilder) block() {
	t.b.WriteByte('\n')
}

func (t *textBuilder) String() string {
	var lines []string
	for _, line := range strings.Split(t.b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func nodeText(t *textBuilder, n *layout.Node, pre bool) {
	if n.IsText() {
		t.text(n.Text, pre)
		return
	}
	block := blockElements[n.Tag]
	if block {
		t.block()
	}
	pre = pre || n.Tag == "pre"
	for _, c := range n.Children {
		nodeText(t, c, pre)
	}
	if block {
		t.block()
	}
}

func htmlText(t *textBuilder, n *html.Node, pre bool) {
	switch n.Type {
	case html.TextNode:
		t.text(n.Data, pre)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" || n.Data == "head" {
			return
		}
	}
	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		t.block()
	}
	pre = pre || (n.Type == html.ElementNode && n.Data == "pre")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		htmlText(t, c, pre)
	}
	if block {
		t.block()
	}
}

// VisibleText parses markup and returns the text a reader would see, using
// the same rules as Payload.Text.
func VisibleText(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}
	var t textBuilder
	htmlText(&t, doc, false)
	return t.String(), nil
}
