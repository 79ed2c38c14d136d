package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/onepage/internal/auth"
	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/config"
	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/projects"
)

func TestParsePatchCommand(t *testing.T) {
	tests := []struct {
		name, rest string
		want       document.Patch
	}{
		{"/set", `appInfo.tagline "Ship faster"`, document.Patch{Op: document.OpReplace, Path: "appInfo.tagline", Value: json.RawMessage(`"Ship faster"`)}},
		{"/set", "appInfo.name 变更管理", document.Patch{Op: document.OpReplace, Path: "appInfo.name", Value: json.RawMessage(`"变更管理"`)}},
		{"/set", "appInfo.rating 4.5", document.Patch{Op: document.OpReplace, Path: "appInfo.rating", Value: json.RawMessage(`4.5`)}},
		{"/append", `tabs.overview.features {"title":"Sync"}`, document.Patch{Op: document.OpAppend, Path: "tabs.overview.features", Value: json.RawMessage(`{"title":"Sync"}`)}},
		{"/remove", "media[1]", document.Remove("media[1]")},
	}
	for _, tt := range tests {
		t.Run(tt.name+" "+tt.rest, func(t *testing.T) {
			got, err := parsePatchCommand(tt.name, tt.rest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parsePatchCommand("/set", "appInfo.tagline")
	assert.Error(t, err)
	_, err = parsePatchCommand("/remove", "")
	assert.Error(t, err)
}

func TestParsedPatchesApply(t *testing.T) {
	tpl, err := catalog.Default().Get("jira-time-tracker")
	require.NoError(t, err)
	d := tpl.NewDocument()

	for _, line := range [][2]string{
		{"/set", "appInfo.tagline Track every minute"},
		{"/append", `tabs.overview.features {"title":"Sync","description":"Two-way calendar sync"}`},
		{"/remove", "media[2]"},
	} {
		p, err := parsePatchCommand(line[0], line[1])
		require.NoError(t, err)
		require.NoError(t, d.Apply(p))
	}
	assert.Equal(t, "Track every minute", d.AppInfo.Tagline)
	assert.Equal(t, "Sync", d.Tabs.Overview.Features[len(d.Tabs.Overview.Features)-1].Title)
	assert.Len(t, d.Media, 2)
}

func TestPrintTemplateCards(t *testing.T) {
	var buf bytes.Buffer
	printTemplateCards(&buf, []catalog.Template{{
		ID:              "demo",
		Name:            "Demo",
		Description:     "A demo page",
		Category:        catalog.CategoryMarketplace,
		Tags:            []string{"a", "b", "c"},
		ConversionScore: 87,
	}})
	assert.Equal(t, "Demo  [插件/应用]  转化分: 87\n  id: demo\n  A demo page\n  #a #b\n", buf.String())
}

func TestLoadDocument(t *testing.T) {
	store := catalog.Default()

	d, err := loadDocument(store, "jira-time-tracker")
	require.NoError(t, err)
	assert.Equal(t, "Clockwise Time Tracker", d.AppInfo.Name)

	raw, err := d.JSON()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "page.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	fromFile, err := loadDocument(store, path)
	require.NoError(t, err)
	assert.Equal(t, d.AppInfo, fromFile.AppInfo)

	_, err = loadDocument(store, "no-such-template")
	assert.Error(t, err)
}

func TestOpenProjectsUnconfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	store, closeStore, err := openProjects(t.Context(), cfg, nil)
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, projects.Unconfigured{}, store)
}

func TestOpenProjectsSQLite(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "nested", "onepage.db")

	store, closeStore, err := openProjects(t.Context(), cfg, nil)
	require.NoError(t, err)
	defer closeStore()

	id, err := store.Insert(t.Context(), projects.Project{OwnerCode: "demo"})
	require.NoError(t, err)
	p, err := store.Get(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, projects.UntitledName, p.Name)
}

func TestNewDirectoryIncludesConfigCodes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Auth.Codes = map[string]config.CodeConfig{"team-42": {ID: 42, Role: "admin"}}

	dir := newDirectory(cfg)
	u, ok := dir.Lookup("team-42")
	require.True(t, ok)
	assert.Equal(t, 42, u.ID)
	_, ok = dir.Lookup("demo")
	assert.True(t, ok)
}

func TestOutputPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Compositor.OutputDir = t.TempDir()

	assert.Equal(t, filepath.Join(cfg.Compositor.OutputDir, "page.html"), outputPath(cfg, "page.html"))
	assert.Equal(t, "sub/page.html", outputPath(cfg, "sub/page.html"))
}

func TestNewCodeStore(t *testing.T) {
	cfg := config.DefaultConfig()

	cfg.Auth.Store = "none"
	store, err := newCodeStore(cfg)
	require.NoError(t, err)
	assert.Nil(t, store)

	sc, err := signInContext(t.Context(), cfg)
	require.NoError(t, err)
	_, err = sc.SignIn(t.Context(), "demo")
	require.NoError(t, err)
	_, ok := sc.Current()
	assert.True(t, ok)

	cfg.Auth.Store = "file"
	cfg.Auth.Path = filepath.Join(t.TempDir(), "code")
	store, err = newCodeStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &auth.FileStore{}, store)
}
