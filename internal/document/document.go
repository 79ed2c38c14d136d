// Package document holds the mutable working copy of a page template. A
// Document is owned by exactly one editing session and is only ever changed
// through Apply, which swaps in a fully patched copy or nothing at all.
package document

import "encoding/json"

// Layout selects the renderer variant for a Document.
type Layout string

const (
	LayoutMarketplace Layout = "marketplace"
	LayoutSplitHeader Layout = "feishu"
	LayoutLanding     Layout = "landing"
)

// MediaType is the kind of a media entry.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Theme is the four-color palette every renderer must honor.
type Theme struct {
	PrimaryColor    string `json:"primaryColor" yaml:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor" yaml:"secondaryColor"`
	BackgroundColor string `json:"backgroundColor" yaml:"backgroundColor"`
	TextColor       string `json:"textColor" yaml:"textColor"`
}

// AppInfo is the listing header content.
type AppInfo struct {
	Icon         string  `json:"icon" yaml:"icon"` // emoji or URL
	Name         string  `json:"name" yaml:"name"`
	Tagline      string  `json:"tagline" yaml:"tagline"`
	Vendor       string  `json:"vendor" yaml:"vendor"`
	Rating       float64 `json:"rating" yaml:"rating"`
	ReviewCount  int     `json:"reviewCount" yaml:"reviewCount"`
	InstallCount string  `json:"installCount" yaml:"installCount"`
	Badge        string  `json:"badge,omitempty" yaml:"badge,omitempty"`
}

// Media is one entry of the screenshot strip. Order is display order.
type Media struct {
	Type      MediaType `json:"type" yaml:"type"`
	URL       string    `json:"url" yaml:"url"`
	Thumbnail string    `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
}

// Feature is a titled selling point.
type Feature struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Overview is the live tab of the listing.
type Overview struct {
	Summary  string    `json:"summary" yaml:"summary"` // markdown
	Features []Feature `json:"features" yaml:"features"`
	Benefits []string  `json:"benefits,omitempty" yaml:"benefits,omitempty"`
}

// Tabs groups tab content. Only Overview is rendered.
type Tabs struct {
	Overview Overview `json:"overview" yaml:"overview"`
}

// SidebarItem is a label/value row in a sidebar section.
type SidebarItem struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Href  string `json:"href,omitempty" yaml:"href,omitempty"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// SidebarSection is a named group of sidebar rows.
type SidebarSection struct {
	Title string        `json:"title" yaml:"title"`
	Items []SidebarItem `json:"items" yaml:"items"`
}

// Document is the editable page content.
type Document struct {
	Layout  Layout           `json:"layout" yaml:"layout"`
	Theme   Theme            `json:"theme" yaml:"theme"`
	AppInfo AppInfo          `json:"appInfo" yaml:"appInfo"`
	Media   []Media          `json:"media" yaml:"media"`
	Tabs    Tabs             `json:"tabs" yaml:"tabs"`
	Sidebar []SidebarSection `json:"sidebar" yaml:"sidebar"`
}

// Clone returns a deep copy of d sharing no slices with it.
func (d Document) Clone() Document {
	out := d
	out.Media = cloneSlice(d.Media)
	out.Tabs.Overview.Features = cloneSlice(d.Tabs.Overview.Features)
	out.Tabs.Overview.Benefits = cloneSlice(d.Tabs.Overview.Benefits)
	if d.Sidebar != nil {
		out.Sidebar = make([]SidebarSection, len(d.Sidebar))
		for i, s := range d.Sidebar {
			out.Sidebar[i] = SidebarSection{Title: s.Title, Items: cloneSlice(s.Items)}
		}
	}
	return out
}

// cloneSlice copies s, keeping the nil/empty distinction so that JSON output
// of a clone matches the original.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// JSON returns the canonical JSON encoding of d, used as assistant context and
// as the stored project payload.
func (d Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// Load creates a session-owned Document from seed data.
func Load(seed Document) Document {
	return seed.Clone()
}
