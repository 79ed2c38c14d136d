// Package editor serves the browser editor's API: template browsing, editing
// sessions with chat and patches, export, image composition and project
// saves.
package editor

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/auth"
	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/compositor"
	"github.com/ziadkadry99/onepage/internal/logging"
	"github.com/ziadkadry99/onepage/internal/projects"
	"github.com/ziadkadry99/onepage/internal/session"
)

// Deps are the services the editor API is built on. Projects defaults to
// projects.Unconfigured and Codes to the built-in directory.
type Deps struct {
	Catalog    *catalog.Store
	Sessions   *session.Manager
	Composer   *compositor.Composer
	Projects   projects.Store
	Codes      *auth.Directory
	Copywriter http.Handler
	Logger     *zap.Logger
}

// Editor provides the editor API.
type Editor struct {
	catalog    *catalog.Store
	sessions   *session.Manager
	composer   *compositor.Composer
	projects   projects.Store
	codes      *auth.Directory
	copywriter http.Handler
	logger     *zap.Logger
	now        func() time.Time
}

// New creates an Editor.
func New(d Deps) *Editor {
	e := &Editor{
		catalog:    d.Catalog,
		sessions:   d.Sessions,
		composer:   d.Composer,
		projects:   d.Projects,
		codes:      d.Codes,
		copywriter: d.Copywriter,
		logger:     logging.OrNop(d.Logger).Named("editor"),
		now:        time.Now,
	}
	if e.projects == nil {
		e.projects = projects.Unconfigured{}
	}
	if e.codes == nil {
		e.codes = auth.NewDirectory(nil)
	}
	return e
}

// RegisterRoutes mounts all editor routes onto the given router.
func (e *Editor) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(e.codes))

		r.Get("/api/templates", e.handleListTemplates)
		r.Get("/api/templates/{id}", e.handleGetTemplate)

		r.Post("/api/auth/login", e.handleLogin)
		r.Get("/api/auth/me", e.handleMe)

		r.Post("/api/sessions", e.handleCreateSession)
		r.Get("/api/sessions/{id}", e.handleGetSession)
		r.Delete("/api/sessions/{id}", e.handleDeleteSession)
		r.Post("/api/sessions/{id}/patches", e.handlePatches)
		r.Post("/api/sessions/{id}/messages", e.handleMessage)
		r.Put("/api/sessions/{id}/target", e.handleTarget)
		r.Get("/api/sessions/{id}/export", e.handleExport)
		r.Get("/api/sessions/{id}/preview", e.handlePreview)
		r.Post("/api/sessions/{id}/compose", e.handleSessionCompose)
		r.Post("/api/sessions/{id}/save", e.handleSave)

		r.Get("/api/compose/options", e.handleComposeOptions)
		r.Post("/api/compose", e.handleCompose)

		r.Get("/api/projects", e.handleListProjects)
		r.Get("/api/projects/{id}", e.handleGetProject)

		if e.copywriter != nil {
			r.Method(http.MethodPost, "/api/generate-marketing-copy", e.copywriter)
		}

		r.Get("/ws/sessions/{id}/chat", e.handleChat)
	})
}
