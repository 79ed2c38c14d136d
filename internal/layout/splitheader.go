package layout

import (
	"fmt"

	"github.com/ziadkadry99/onepage/internal/document"
)

const (
	splitMuted   = "#646a73"
	splitCaption = "#8f959e"
	splitBorder  = "#dee0e3"
)

func renderSplitHeader(d document.Document, th palette) *Node {
	return el("div", css(
		"width", "100%",
		"max-width", "1200px",
		"margin", "0 auto",
		"background-color", th.background,
		"color", th.text,
		"font-family", FontStack,
	),
		el("div", css("display", "flex", "gap", "40px", "padding", "40px", "border-bottom", "1px solid "+splitBorder),
			splitHeaderInfo(d.AppInfo, th),
			splitHeaderBanner(d.Media, th),
		),
		el("div", css("padding", "0 40px", "border-bottom", "1px solid "+splitBorder, "display", "flex", "gap", "32px"),
			el("div", css("padding", "16px 0", "border-bottom", "2px solid "+th.text, "font-weight", "600", "color", th.text, "font-size", "14px"),
				text("概述")).attr("data-active", "true"),
			el("div", css("padding", "16px 0", "color", splitMuted, "font-size", "14px"), text("权限")),
		),
		el("div", css("display", "flex", "padding", "40px", "gap", "40px"),
			el("div", css("flex", "3"),
				el("div", css("color", th.text, "line-height", "1.8", "font-size", "15px"),
					renderMarkdown(d.Tabs.Overview.Summary, th)...,
				).section(SectionOverview),
				splitHeaderFeatures(d.Tabs.Overview.Features, th),
			),
			splitHeaderSidebar(d.Sidebar, th),
		),
	).attr("data-layout", string(document.LayoutSplitHeader))
}

func splitHeaderInfo(a document.AppInfo, th palette) *Node {
	title := el("div", css("display", "flex", "align-items", "center", "gap", "8px"),
		el("h1", css("font-size", "24px", "font-weight", "bold", "margin", "0", "color", th.text), text(a.Name)),
	)
	if a.Badge != "" {
		title.Children = append(title.Children, el("span", css(
			"background-color", "#e8ffea", "color", "#00b365", "font-size", "12px",
			"padding", "2px 6px", "border-radius", "4px", "font-weight", "500",
		), text(a.Badge)))
	}

	stat := func(label string, value ...*Node) *Node {
		return el("div", nil,
			el("div", css("font-size", "12px", "color", splitCaption), text(label)),
			el("div", css("font-size", "16px", "font-weight", "bold", "color", th.text, "display", "flex", "align-items", "center", "gap", "4px"), value...),
		)
	}

	return el("div", css("flex", "1", "display", "flex", "flex-direction", "column", "justify-content", "center"),
		el("div", css("display", "flex", "align-items", "center", "gap", "16px", "margin-bottom", "16px"),
			el("div", css(
				"width", "64px", "height", "64px", "border-radius", "12px",
				"background-color", th.primary,
				"display", "flex", "align-items", "center", "justify-content", "center",
				"font-size", "32px", "color", "#ffffff", "flex-shrink", "0",
			), text(a.Icon)),
			el("div", nil, title),
		),
		el("div", css("font-size", "14px", "color", splitMuted, "line-height", "1.6", "margin-bottom", "24px"), text(a.Tagline)),
		el("div", css("display", "flex", "align-items", "center", "gap", "24px", "margin-bottom", "24px"),
			stat("安装数", text(orDash(a.InstallCount))),
			el("div", css("width", "1px", "height", "24px", "background-color", splitBorder)),
			stat("评分", text(formatRating(a.Rating)), el("span", css("color", "#ffc107", "font-size", "12px"), text("★"))),
		),
		el("div", css("display", "flex", "gap", "12px"),
			el("button", css(
				"background-color", th.primary, "color", "#ffffff",
				"padding", "8px 32px", "border-radius", "6px", "font-size", "14px", "font-weight", "500",
				"border", "none",
			), text("添加插件")),
			el("button", css(
				"background-color", th.background, "color", th.text,
				"padding", "8px 12px", "border-radius", "6px", "font-size", "14px", "font-weight", "500",
				"border", "1px solid "+splitBorder,
			), text("...")),
		),
	).section(SectionAppInfo)
}

// splitHeaderBanner shows the first media item; without one it renders a
// blank panel of the same size.
func splitHeaderBanner(media []document.Media, th palette) *Node {
	frame := el("div", css("border-radius", "16px", "overflow", "hidden", "height", "260px", "border", "1px solid "+splitBorder))
	if len(media) == 0 {
		frame.Children = append(frame.Children,
			el("div", css("width", "100%", "height", "100%", "background-color", th.secondary)).attr("data-empty", "true"))
	} else {
		frame.Children = append(frame.Children,
			mediaNode(media[0], 0, css("width", "100%", "height", "100%", "object-fit", "cover")))
	}
	return el("div", css("flex", "1"), frame).section(SectionMedia)
}

// splitHeaderFeatures lays features out in alternating image/text rows.
func splitHeaderFeatures(features []document.Feature, th palette) *Node {
	list := el("div", css("margin-top", "40px", "display", "grid", "gap", "40px")).section(SectionFeatures)
	if len(features) == 0 {
		list.Children = append(list.Children, emptyState("暂无功能介绍", th))
		return list
	}
	for i, f := range features {
		direction := "row"
		if i%2 == 1 {
			direction = "row-reverse"
		}
		placeholder := fmt.Sprintf("https://placehold.co/400x300/f5f6f7/a0a0a0?text=Feature+%d", i+1)
		list.Children = append(list.Children, el("div", css("display", "flex", "gap", "24px", "flex-direction", direction, "align-items", "center"),
			el("div", css(
				"flex", "1", "height", "200px", "background-color", th.secondary,
				"border-radius", "8px", "overflow", "hidden", "border", "1px solid "+splitBorder,
			),
				el("img", css("width", "100%", "height", "100%", "object-fit", "cover")).
					attr("src", placeholder).attr("alt", f.Title),
			),
			el("div", css("flex", "1"),
				el("h3", css("font-size", "18px", "font-weight", "bold", "margin", "0 0 12px 0", "color", th.text), text(f.Title)),
				el("p", css("font-size", "14px", "color", splitMuted, "line-height", "1.6", "margin", "0"), text(f.Description)),
			),
		))
	}
	return list
}

func splitHeaderSidebar(sections []document.SidebarSection, th palette) *Node {
	col := el("div", css("flex", "1")).section(SectionSidebar)
	for _, s := range sections {
		rows := el("div", css("display", "flex", "flex-direction", "column", "gap", "16px"))
		for _, item := range s.Items {
			rows.Children = append(rows.Children, el("div", css("display", "flex", "justify-content", "space-between", "font-size", "13px"),
				el("span", css("color", splitMuted), text(item.Label)),
				sidebarValue(item,
					css("color", th.primary, "text-decoration", "none"),
					css("color", th.text),
				),
			))
		}
		col.Children = append(col.Children, el("div", css(
			"margin-bottom", "32px", "border", "1px solid "+splitBorder, "border-radius", "8px", "padding", "16px",
		),
			el("h4", css("font-size", "14px", "font-weight", "bold", "color", th.text, "margin", "0 0 16px 0"), text(s.Title)),
			rows,
		))
	}
	return col
}
