package layout

import (
	"strconv"

	"github.com/ziadkadry99/onepage/internal/document"
)

// FontStack is the system font stack shared by the renderers and the export
// wrapper.
const FontStack = `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif`

const monoFont = `SFMono-Regular, Menlo, Consolas, monospace`

// Sections a node may be tagged with.
const (
	SectionAppInfo  = "appInfo"
	SectionMedia    = "media"
	SectionOverview = "overview"
	SectionFeatures = "features"
	SectionSidebar  = "sidebar"
)

// DefaultTheme fills in colors a Document leaves empty.
var DefaultTheme = document.Theme{
	PrimaryColor:    "#0052CC",
	SecondaryColor:  "#F4F5F7",
	BackgroundColor: "#FFFFFF",
	TextColor:       "#172B4D",
}

type palette struct {
	primary    string
	secondary  string
	background string
	text       string
}

// ResolveTheme returns t with every empty color replaced by its default.
func ResolveTheme(t document.Theme) document.Theme {
	if t.PrimaryColor == "" {
		t.PrimaryColor = DefaultTheme.PrimaryColor
	}
	if t.SecondaryColor == "" {
		t.SecondaryColor = DefaultTheme.SecondaryColor
	}
	if t.BackgroundColor == "" {
		t.BackgroundColor = DefaultTheme.BackgroundColor
	}
	if t.TextColor == "" {
		t.TextColor = DefaultTheme.TextColor
	}
	return t
}

func paletteOf(t document.Theme) palette {
	t = ResolveTheme(t)
	return palette{
		primary:    t.PrimaryColor,
		secondary:  t.SecondaryColor,
		background: t.BackgroundColor,
		text:       t.TextColor,
	}
}

// Render builds the element tree for d. Unknown layouts render with the
// marketplace variant.
func Render(d document.Document) *Node {
	th := paletteOf(d.Theme)
	switch d.Layout {
	case document.LayoutSplitHeader:
		return renderSplitHeader(d, th)
	default:
		return renderMarketplace(d, th)
	}
}

func clampRating(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 5:
		return 5
	}
	return r
}

func formatRating(r float64) string {
	return strconv.FormatFloat(clampRating(r), 'f', -1, 64)
}

// stars renders five stars, filled up to the floor of the rating.
func stars(r float64, filled, empty string) *Node {
	full := int(clampRating(r))
	row := el("span", css("display", "inline-flex", "gap", "1px"))
	for i := 0; i < 5; i++ {
		color := empty
		if i < full {
			color = filled
		}
		row.Children = append(row.Children, el("span", css("color", color), text("★")))
	}
	return row
}

func emptyState(msg string, th palette) *Node {
	return el("div", css(
		"padding", "24px",
		"border", "1px dashed "+th.secondary,
		"border-radius", "8px",
		"color", th.text,
		"opacity", "0.6",
		"text-align", "center",
		"font-size", "14px",
	), text(msg)).attr("data-empty", "true")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sidebarValue(item document.SidebarItem, linkStyle, valueStyle Style) *Node {
	label := item.Value
	if label == "" {
		label = item.Label
	}
	if item.Href != "" {
		return el("a", linkStyle, text(label)).attr("href", item.Href)
	}
	return el("span", valueStyle, text(orDash(item.Value)))
}
