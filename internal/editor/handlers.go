package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/apperr"
	"github.com/ziadkadry99/onepage/internal/auth"
	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/compositor"
	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/export"
	"github.com/ziadkadry99/onepage/internal/intent"
	"github.com/ziadkadry99/onepage/internal/metrics"
	"github.com/ziadkadry99/onepage/internal/projects"
	"github.com/ziadkadry99/onepage/internal/session"
)

// maxBodyBytes bounds request bodies. Imported documents and data URLs make
// this larger than a typical JSON API.
const maxBodyBytes = 16 << 20

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error     string      `json:"error"`
	Kind      apperr.Kind `json:"kind"`
	Retryable bool        `json:"retryable"`
}

// templateCard is the list form of a catalog template.
type templateCard struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Thumbnail       string           `json:"thumbnail"`
	Category        catalog.Category `json:"category"`
	Tags            []string         `json:"tags"`
	ConversionScore int              `json:"conversionScore"`
}

type createSessionRequest struct {
	TemplateID string          `json:"templateId"`
	Document   json.RawMessage `json:"document"`
}

type sessionResponse struct {
	session.Snapshot
	Hints []string `json:"hints"`
}

type patchRequest struct {
	Patches []document.Patch `json:"patches"`
}

type messageRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	Turn     session.Turn      `json:"turn"`
	Document document.Document `json:"document"`
}

type composeRequest struct {
	Source     string                `json:"source"`
	Frame      compositor.Frame      `json:"frame"`
	Background compositor.Background `json:"background"`
	Scale      float64               `json:"scale"`
}

func (c composeRequest) request() compositor.Request {
	return compositor.Request{
		Source:     c.Source,
		Frame:      c.Frame,
		Background: c.Background,
		Scale:      c.Scale,
	}
}

type composeOptionsResponse struct {
	Frames      []compositor.Option `json:"frames"`
	Backgrounds []compositor.Option `json:"backgrounds"`
}

type loginRequest struct {
	Code string `json:"code"`
}

type saveRequest struct {
	Name string `json:"name"`
}

type saveResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (e *Editor) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	tpls := e.catalog.Search(r.URL.Query().Get("q"))
	cards := make([]templateCard, 0, len(tpls))
	for _, t := range tpls {
		cards = append(cards, templateCard{
			ID:              t.ID,
			Name:            t.Name,
			Description:     t.Description,
			Thumbnail:       t.Thumbnail,
			Category:        t.Category,
			Tags:            t.Tags,
			ConversionScore: t.ConversionScore,
		})
	}
	writeJSON(w, http.StatusOK, cards)
}

func (e *Editor) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := e.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (e *Editor) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		e.writeError(w, err)
		return
	}
	u, ok := e.codes.Lookup(req.Code)
	if !ok {
		e.writeError(w, auth.ErrInvalidCode)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (e *Editor) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := requireUser(r)
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (e *Editor) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		e.writeError(w, err)
		return
	}

	var (
		snap session.Snapshot
		err  error
	)
	switch {
	case len(req.Document) > 0 && string(req.Document) != "null":
		var d document.Document
		d, err = document.Validate(req.Document)
		if err == nil {
			snap = e.sessions.Adopt(document.Load(d))
		}
	case req.TemplateID != "":
		snap, err = e.sessions.Create(req.TemplateID)
	default:
		err = apperr.InvalidInput("templateId or document is required", nil)
	}
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Snapshot: snap, Hints: intent.Hints})
}

func (e *Editor) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := e.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Snapshot: snap, Hints: intent.Hints})
}

func (e *Editor) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	e.sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (e *Editor) handlePatches(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		e.writeError(w, err)
		return
	}
	if len(req.Patches) == 0 {
		e.writeError(w, apperr.InvalidInput("patches are required", nil))
		return
	}

	var snap session.Snapshot
	err := e.sessions.Do(chi.URLParam(r, "id"), func(s *session.Session) error {
		if err := s.Apply(req.Patches...); err != nil {
			return err
		}
		snap = s.Snapshot()
		return nil
	})
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (e *Editor) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		e.writeError(w, err)
		return
	}

	var resp messageResponse
	err := e.sessions.Do(chi.URLParam(r, "id"), func(s *session.Session) error {
		turn, err := s.Send(r.Context(), req.Content)
		if err != nil {
			return err
		}
		resp = messageResponse{Turn: turn, Document: s.Document()}
		return nil
	})
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *Editor) handleTarget(w http.ResponseWriter, r *http.Request) {
	var target *session.EditTarget
	if err := decodeOptionalJSON(w, r, &target); err != nil {
		e.writeError(w, err)
		return
	}

	var snap session.Snapshot
	err := e.sessions.Do(chi.URLParam(r, "id"), func(s *session.Session) error {
		if err := s.SetTarget(target); err != nil {
			return err
		}
		snap = s.Snapshot()
		return nil
	})
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// exportSession renders the session's document to its clipboard payload.
func (e *Editor) exportSession(id string) (export.Payload, error) {
	snap, err := e.sessions.Get(id)
	if err != nil {
		return export.Payload{}, err
	}
	metrics.Renders.WithLabelValues(renderedLayout(snap.Document)).Inc()
	return export.Document(snap.Document), nil
}

func (e *Editor) handleExport(w http.ResponseWriter, r *http.Request) {
	p, err := e.exportSession(chi.URLParam(r, "id"))
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (e *Editor) handlePreview(w http.ResponseWriter, r *http.Request) {
	p, err := e.exportSession(chi.URLParam(r, "id"))
	if err != nil {
		e.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>onepage preview</title></head><body style=\"margin: 0\">%s</body></html>\n", p.HTML)
}

func (e *Editor) handleComposeOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, composeOptionsResponse{
		Frames:      compositor.Frames,
		Backgrounds: compositor.Backgrounds,
	})
}

// handleCompose is the standalone studio: the composed PNG is returned as a
// download.
func (e *Editor) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		e.writeError(w, err)
		return
	}
	res, err := e.composer.Compose(r.Context(), req.request())
	if err != nil {
		e.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", compositor.DownloadName(e.now())))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PNG)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.PNG)
}

// handleSessionCompose composes an image and writes it into the session's
// selected media element.
func (e *Editor) handleSessionCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		e.writeError(w, err)
		return
	}

	var snap session.Snapshot
	err := e.sessions.Do(chi.URLParam(r, "id"), func(s *session.Session) error {
		if t := s.Target(); t == nil || t.Section != session.SectionMedia {
			return apperr.InvalidInput("no media element is selected", nil)
		}
		res, err := e.composer.Compose(r.Context(), req.request())
		if err != nil {
			return err
		}
		if err := s.ReplaceTargetImage(res.DataURL()); err != nil {
			return err
		}
		snap = s.Snapshot()
		return nil
	})
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (e *Editor) handleSave(w http.ResponseWriter, r *http.Request) {
	u, err := requireUser(r)
	if err != nil {
		e.writeError(w, err)
		return
	}
	var req saveRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		e.writeError(w, err)
		return
	}

	var resp saveResponse
	err = e.sessions.Do(chi.URLParam(r, "id"), func(s *session.Session) error {
		p := projects.Project{Name: req.Name, Data: s.Document(), OwnerCode: u.Code}
		id, err := e.projects.Insert(r.Context(), p)
		if err != nil {
			return err
		}
		resp = saveResponse{ID: id, Name: projects.DefaultName(p)}
		return nil
	})
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (e *Editor) handleListProjects(w http.ResponseWriter, r *http.Request) {
	u, err := requireUser(r)
	if err != nil {
		e.writeError(w, err)
		return
	}
	list, err := e.projects.List(r.Context(), u.Code)
	if err != nil {
		e.writeError(w, err)
		return
	}
	if list == nil {
		list = []projects.Project{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (e *Editor) handleGetProject(w http.ResponseWriter, r *http.Request) {
	u, err := requireUser(r)
	if err != nil {
		e.writeError(w, err)
		return
	}
	p, err := e.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil && p.OwnerCode != u.Code {
		err = projects.ErrNotFound
	}
	if err != nil {
		e.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func requireUser(r *http.Request) (auth.User, error) {
	u, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.User{}, apperr.Unauthorized("sign in with an access code")
	}
	return u, nil
}

// renderedLayout is the layout a document is drawn with; unknown layouts
// fall back to the marketplace layout.
func renderedLayout(d document.Document) string {
	if d.Layout == document.LayoutSplitHeader {
		return string(document.LayoutSplitHeader)
	}
	return string(document.LayoutMarketplace)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return apperr.InvalidInput("request body is required", nil)
	default:
		return apperr.InvalidInput("invalid request body", err)
	}
}

// decodeOptionalJSON is decodeJSON for endpoints where the body may be
// omitted; v is left untouched in that case.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return apperr.InvalidInput("invalid request body", err)
	}
	return nil
}

func (e *Editor) writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		e.logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Kind:      apperr.KindOf(err),
		Retryable: apperr.IsRetryable(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
