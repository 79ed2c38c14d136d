package document

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/onepage/internal/apperr"
)

func sampleDoc() Document {
	return Document{
		Layout: LayoutSplitHeader,
		Theme: Theme{
			PrimaryColor:    "#3370ff",
			SecondaryColor:  "#eff3ff",
			BackgroundColor: "#ffffff",
			TextColor:       "#1f2329",
		},
		AppInfo: AppInfo{
			Icon:         "⏱️",
			Name:         "变更管理",
			Tagline:      "Track every change",
			Vendor:       "飞书项目",
			Rating:       4.8,
			ReviewCount:  120,
			InstallCount: "27721",
			Badge:        "新",
		},
		Media: []Media{{Type: MediaImage, URL: "https://example.com/banner.png"}},
		Tabs: Tabs{Overview: Overview{
			Summary: "Manage **changes**.",
			Features: []Feature{
				{Title: "Time Tracking Flexibility", Description: "Log time anywhere."},
				{Title: "Maximize Project Efficiency", Description: "See where time goes."},
			},
		}},
		Sidebar: []SidebarSection{
			{Title: "基本信息", Items: []SidebarItem{{Label: "开发者", Value: "飞书项目"}}},
		},
	}
}

func mustJSON(t *testing.T, d Document) string {
	t.Helper()
	b, err := d.JSON()
	require.NoError(t, err)
	return string(b)
}

func TestLoadIsIndependentOfSeed(t *testing.T) {
	seed := sampleDoc()
	before := mustJSON(t, seed)

	a := Load(seed)
	b := Load(seed)
	require.NoError(t, a.Apply(Replace("appInfo.name", "Renamed")))
	a.Media[0].URL = "mutated"
	a.Sidebar[0].Items[0].Value = "mutated"
	a.Tabs.Overview.Features[0].Title = "mutated"

	assert.Equal(t, before, mustJSON(t, seed))
	assert.Equal(t, before, mustJSON(t, b))
}

func TestCloneKeepsEmptySlices(t *testing.T) {
	d := sampleDoc()
	d.Tabs.Overview.Features = []Feature{}
	d.Tabs.Overview.Benefits = nil
	assert.Equal(t, mustJSON(t, d), mustJSON(t, d.Clone()))
}

func TestApplyChangesExactlyOnePath(t *testing.T) {
	d := sampleDoc()
	next, err := Apply(d, Replace("media[0].url", "data:image/png;base64,AAAA"))
	require.NoError(t, err)

	assert.Equal(t, "data:image/png;base64,AAAA", next.Media[0].URL)
	assert.Equal(t, "https://example.com/banner.png", d.Media[0].URL)

	next.Media[0].URL = d.Media[0].URL
	assert.Equal(t, mustJSON(t, d), mustJSON(t, next))
}

func TestApplyOperations(t *testing.T) {
	tests := []struct {
		name   string
		patch  Patch
		verify func(t *testing.T, d Document)
	}{
		{
			name:  "replace nested string",
			patch: Replace("appInfo.tagline", "Ship faster"),
			verify: func(t *testing.T, d Document) {
				assert.Equal(t, "Ship faster", d.AppInfo.Tagline)
			},
		},
		{
			name:  "replace whole list",
			patch: Replace("tabs.overview.features", []Feature{{Title: "Only"}}),
			verify: func(t *testing.T, d Document) {
				require.Len(t, d.Tabs.Overview.Features, 1)
				assert.Equal(t, "Only", d.Tabs.Overview.Features[0].Title)
			},
		},
		{
			name:  "replace indexed element",
			patch: Replace("tabs.overview.features[1]", Feature{Title: "Second", Description: "two"}),
			verify: func(t *testing.T, d Document) {
				assert.Equal(t, "Second", d.Tabs.Overview.Features[1].Title)
				assert.Equal(t, "Time Tracking Flexibility", d.Tabs.Overview.Features[0].Title)
			},
		},
		{
			name:  "append media",
			patch: Append("media", Media{Type: MediaVideo, URL: "https://example.com/demo.mp4"}),
			verify: func(t *testing.T, d Document) {
				require.Len(t, d.Media, 2)
				assert.Equal(t, MediaVideo, d.Media[1].Type)
			},
		},
		{
			name:  "remove feature",
			patch: Remove("tabs.overview.features[0]"),
			verify: func(t *testing.T, d Document) {
				require.Len(t, d.Tabs.Overview.Features, 1)
				assert.Equal(t, "Maximize Project Efficiency", d.Tabs.Overview.Features[0].Title)
			},
		},
		{
			name:  "deep sidebar value",
			patch: Replace("sidebar[0].items[0].value", "Lark"),
			verify: func(t *testing.T, d Document) {
				assert.Equal(t, "Lark", d.Sidebar[0].Items[0].Value)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleDoc()
			require.NoError(t, d.Apply(tt.patch))
			tt.verify(t, d)
		})
	}
}

func TestApplyRejectsAndLeavesDocumentUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		patches []Patch
		reason  string
	}{
		{"unknown field", []Patch{Replace("appInfo.nickname", "x")}, "unresolvable path"},
		{"index out of range", []Patch{Replace("media[5].url", "x")}, "unresolvable path"},
		{"type mismatch", []Patch{Replace("appInfo.rating", "five")}, "invalid value"},
		{"rating out of range", []Patch{Replace("appInfo.rating", 7.5)}, "result is invalid"},
		{"bad media type", []Patch{Append("media", Media{Type: "audio", URL: "x"})}, "result is invalid"},
		{"append to scalar", []Patch{Append("appInfo.name", "x")}, "append target is not a list"},
		{"remove without index", []Patch{Remove("media")}, "remove requires an indexed path"},
		{"malformed path", []Patch{Replace("media[0", "x")}, "malformed path"},
		{"missing value", []Patch{{Op: OpReplace, Path: "appInfo.name"}}, "invalid value"},
		{"unknown op", []Patch{{Op: "move", Path: "appInfo.name"}}, "unknown op"},
		{
			name: "later patch fails after earlier success",
			patches: []Patch{
				Replace("appInfo.name", "Changed"),
				Remove("tabs.overview.features[9]"),
			},
			reason: "index out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleDoc()
			before := mustJSON(t, d)

			err := d.Apply(tt.patches...)
			require.Error(t, err)

			var pe *PatchError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.reason, pe.Reason)
			assert.Equal(t, apperr.KindPatchRejected, apperr.KindOf(err))
			assert.Equal(t, before, mustJSON(t, d))
		})
	}
}

func TestParsePath(t *testing.T) {
	segs, err := parsePath("sidebar[0].items[12].value")
	require.NoError(t, err)
	require.Len(t, segs, 5)
	assert.Equal(t, "sidebar", segs[0].name)
	assert.Equal(t, 12, segs[3].index)
	assert.True(t, segs[3].isIndex)

	for _, bad := range []string{"", ".name", "name.", "a..b", "[0]", "media[x]", "media[0]url", "media.[0]", "media]"} {
		_, err := parsePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestPatchJSONRoundTrip(t *testing.T) {
	raw := `{"op":"replace","path":"appInfo.vendor","value":"Acme"}`
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	d := sampleDoc()
	require.NoError(t, d.Apply(p))
	assert.Equal(t, "Acme", d.AppInfo.Vendor)
}

func TestValidate(t *testing.T) {
	raw, err := sampleDoc().JSON()
	require.NoError(t, err)

	d, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "变更管理", d.AppInfo.Name)

	_, err = Validate([]byte(`{"layout":"feishu","appInfo":{"name":"x","rating":9}}`))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = Validate([]byte(`{"appInfo":{"name":"x"}}`))
	assert.Error(t, err)

	_, err = Validate([]byte(`not json`))
	assert.Error(t, err)
}
