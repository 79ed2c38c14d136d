package layout

import (
	"fmt"
	"strconv"

	"github.com/ziadkadry99/onepage/internal/document"
)

const mutedText = "#5E6C84"

func renderMarketplace(d document.Document, th palette) *Node {
	return el("div", css(
		"width", "100%",
		"max-width", "1000px",
		"margin", "0 auto",
		"background-color", th.background,
		"color", th.text,
		"font-family", FontStack,
	),
		marketplaceHeader(d.AppInfo, th),
		marketplaceMedia(d.Media, th),
		tabBar(th, "Overview", "Reviews", "Pricing", "Support"),
		el("div", css("display", "flex", "gap", "48px", "align-items", "flex-start"),
			el("div", css("flex", "1"),
				el("div", css("margin-bottom", "40px", "font-size", "16px", "line-height", "1.7"),
					renderMarkdown(d.Tabs.Overview.Summary, th)...,
				).section(SectionOverview),
				marketplaceFeatures(d.Tabs.Overview.Features, th),
			),
			marketplaceSidebar(d, th),
		),
	).attr("data-layout", string(document.LayoutMarketplace))
}

func marketplaceHeader(a document.AppInfo, th palette) *Node {
	icon := el("div", css(
		"width", "96px", "height", "96px", "border-radius", "16px",
		"background-color", th.secondary,
		"display", "flex", "align-items", "center", "justify-content", "center",
		"font-size", "48px", "flex-shrink", "0",
		"box-shadow", "0 4px 12px rgba(0,0,0,0.08)",
	), text(a.Icon))

	meta := el("div", css("display", "flex", "align-items", "center", "gap", "16px", "font-size", "14px", "color", mutedText),
		el("div", css("display", "flex", "align-items", "center", "gap", "4px"),
			stars(a.Rating, "#FFAB00", "#DFE1E6"),
			el("span", css("font-weight", "600", "color", th.text), text(formatRating(a.Rating))),
			el("span", nil, text(fmt.Sprintf("(%s reviews)", strconv.Itoa(max(a.ReviewCount, 0))))),
		),
		el("div", nil, text(orDash(a.InstallCount)+" installs")),
		el("div", nil,
			text("by "),
			el("span", css("color", th.primary, "font-weight", "500"), text(a.Vendor)),
		),
	)

	details := el("div", css("flex", "1"),
		el("h1", css("font-size", "28px", "font-weight", "bold", "margin", "0 0 8px 0", "line-height", "1.2"), text(a.Name)),
		el("p", css("font-size", "16px", "color", mutedText, "margin", "0 0 16px 0", "line-height", "1.5"), text(a.Tagline)),
		meta,
	)

	cta := el("div", css("display", "flex", "flex-direction", "column", "gap", "12px", "min-width", "160px"),
		el("button", css(
			"background-color", th.primary, "color", "#ffffff",
			"padding", "10px 20px", "border-radius", "6px", "font-size", "16px", "font-weight", "bold",
			"border", "none", "text-align", "center",
		), text("Get it now")),
		el("button", css(
			"background-color", "transparent", "color", th.primary,
			"padding", "8px 20px", "border-radius", "6px", "font-size", "14px", "font-weight", "500",
			"border", "none", "text-align", "center",
		), text("Try it free")),
	)

	return el("div", css("display", "flex", "gap", "24px", "margin-bottom", "32px", "align-items", "flex-start"),
		icon, details, cta,
	).section(SectionAppInfo)
}

func marketplaceMedia(media []document.Media, th palette) *Node {
	strip := el("div", css("margin-bottom", "40px", "overflow-x", "auto", "display", "flex", "gap", "16px", "padding-bottom", "16px"))
	strip.section(SectionMedia)
	if len(media) == 0 {
		strip.Children = append(strip.Children, emptyState("No screenshots yet", th))
		return strip
	}
	for i, m := range media {
		strip.Children = append(strip.Children, mediaNode(m, i, css(
			"height", "250px", "border-radius", "8px",
			"border", "1px solid "+th.secondary,
			"box-shadow", "0 2px 4px rgba(0,0,0,0.05)",
			"flex-shrink", "0",
		)))
	}
	return strip
}

// mediaNode renders one media entry. Videos show their thumbnail as a poster
// when one is set.
func mediaNode(m document.Media, i int, style Style) *Node {
	alt := fmt.Sprintf("Screenshot %d", i+1)
	if m.Type == document.MediaVideo {
		n := el("video", style).attr("src", m.URL).attr("controls", "controls")
		if m.Thumbnail != "" {
			n.attr("poster", m.Thumbnail)
		}
		return n.attr("data-index", strconv.Itoa(i))
	}
	return el("img", style).attr("src", m.URL).attr("alt", alt).attr("data-index", strconv.Itoa(i))
}

func tabBar(th palette, active string, inert ...string) *Node {
	bar := el("div", css("border-bottom", "2px solid "+th.secondary, "margin-bottom", "32px", "display", "flex", "gap", "32px"),
		el("div", css(
			"padding-bottom", "12px", "border-bottom", "3px solid "+th.primary,
			"font-weight", "600", "color", th.primary, "margin-bottom", "-2px",
		), text(active)).attr("data-active", "true"),
	)
	for _, t := range inert {
		bar.Children = append(bar.Children, el("div", css("padding-bottom", "12px", "color", mutedText, "font-weight", "500"), text(t)))
	}
	return bar
}

func marketplaceFeatures(features []document.Feature, th palette) *Node {
	list := el("div", css("display", "grid", "gap", "24px"))
	if len(features) == 0 {
		list.Children = append(list.Children, emptyState("No features yet", th))
	}
	for _, f := range features {
		list.Children = append(list.Children, el("div", css("display", "flex", "gap", "16px"),
			el("div", css(
				"width", "24px", "height", "24px", "border-radius", "50%",
				"background-color", th.secondary, "color", th.primary,
				"display", "flex", "align-items", "center", "justify-content", "center",
				"flex-shrink", "0", "margin-top", "2px", "font-size", "14px",
			), text("✓")),
			el("div", nil,
				el("h4", css("font-size", "16px", "font-weight", "bold", "margin", "0 0 4px 0"), text(f.Title)),
				el("p", css("font-size", "14px", "color", mutedText, "margin", "0", "line-height", "1.5"), text(f.Description)),
			),
		))
	}
	return el("div", nil,
		el("h3", css("font-size", "20px", "font-weight", "bold", "margin", "0 0 24px 0", "color", th.text), text("Key Features")),
		list,
	).section(SectionFeatures)
}

func marketplaceSidebar(d document.Document, th palette) *Node {
	col := el("div", css("width", "280px", "flex-shrink", "0")).section(SectionSidebar)
	for _, s := range d.Sidebar {
		rows := el("div", css("display", "flex", "flex-direction", "column", "gap", "12px"))
		for _, item := range s.Items {
			rows.Children = append(rows.Children, el("div", css("display", "flex", "justify-content", "space-between", "font-size", "14px"),
				el("span", css("color", mutedText), text(item.Label)),
				sidebarValue(item,
					css("color", th.primary, "text-decoration", "none", "font-weight", "500"),
					css("color", th.text, "font-weight", "500"),
				),
			))
		}
		col.Children = append(col.Children, el("div", css("margin-bottom", "32px"),
			el("h4", css(
				"font-size", "12px", "font-weight", "bold", "text-transform", "uppercase",
				"color", mutedText, "margin", "0 0 16px 0", "letter-spacing", "0.5px",
			), text(s.Title)),
			rows,
		))
	}
	if d.AppInfo.Badge != "" {
		col.Children = append(col.Children, el("div", css(
			"padding", "16px", "background-color", th.secondary, "border-radius", "8px",
			"display", "flex", "align-items", "center", "gap", "12px",
		),
			el("span", css("color", th.primary, "font-size", "24px"), text("🛡")),
			el("div", nil,
				el("div", css("font-weight", "bold", "font-size", "14px"), text(d.AppInfo.Badge)),
				el("div", css("font-size", "12px", "color", mutedText), text("Security & Reliability")),
			),
		))
	}
	return col
}
