// Package projects saves edited documents.
package projects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/apperr"
	"github.com/ziadkadry99/onepage/internal/db"
	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/logging"
	"github.com/ziadkadry99/onepage/internal/metrics"
)

// UntitledName is used when neither the project nor its document has a name.
const UntitledName = "Untitled Project"

// ErrNotConfigured is returned by stores with no database behind them.
var ErrNotConfigured = apperr.ConfigurationMissing("project storage is not configured")

// ErrNotFound is returned for unknown project IDs.
var ErrNotFound = apperr.NotFound("project not found")

// Project is a saved snapshot of a document.
type Project struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Data      document.Document `json:"data"`
	OwnerCode string            `json:"ownerCode"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Store persists projects.
type Store interface {
	Insert(ctx context.Context, p Project) (string, error)
	Get(ctx context.Context, id string) (Project, error)
	List(ctx context.Context, ownerCode string) ([]Project, error)
}

// DefaultName picks the name a project is saved under.
func DefaultName(p Project) string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	if n := strings.TrimSpace(p.Data.AppInfo.Name); n != "" {
		return n
	}
	return UntitledName
}

// Unconfigured is the Store used when no database is set up. Every call
// fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Insert(context.Context, Project) (string, error) {
	metrics.ProjectSaves.WithLabelValues("unconfigured").Inc()
	return "", ErrNotConfigured
}

func (Unconfigured) Get(context.Context, string) (Project, error) {
	return Project{}, ErrNotConfigured
}

func (Unconfigured) List(context.Context, string) ([]Project, error) {
	return nil, ErrNotConfigured
}

// SQLStore keeps projects in the projects table of a SQLite or Postgres
// database.
type SQLStore struct {
	db     *db.DB
	logger *zap.Logger
}

// NewSQLStore creates a store backed by d.
func NewSQLStore(d *db.DB, logger *zap.Logger) *SQLStore {
	return &SQLStore{db: d, logger: logging.OrNop(logger).Named("projects")}
}

// Insert saves p and returns its new ID.
func (s *SQLStore) Insert(ctx context.Context, p Project) (id string, err error) {
	defer func() { metrics.ProjectSaves.WithLabelValues(metrics.Result(err)).Inc() }()

	p.ID = uuid.NewString()
	p.Name = DefaultName(p)
	p.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(p.Data)
	if err != nil {
		return "", fmt.Errorf("encoding project data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO projects (id, name, data, owner_code, created_at) VALUES (?, ?, ?, ?, ?)`),
		p.ID, p.Name, string(data), p.OwnerCode, p.CreatedAt,
	)
	if err != nil {
		return "", apperr.RemoteUnavailable("saving project", err)
	}
	s.logger.Info("project saved", zap.String("id", p.ID), zap.String("name", p.Name))
	return p.ID, nil
}

// Get returns one project.
func (s *SQLStore) Get(ctx context.Context, id string) (Project, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(
		`SELECT id, name, data, owner_code, created_at FROM projects WHERE id = ?`), id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return Project{}, fmt.Errorf("getting project: %w", err)
	}
	return p, nil
}

// List returns the owner's projects, newest first. An empty owner lists
// every project.
func (s *SQLStore) List(ctx context.Context, ownerCode string) ([]Project, error) {
	query := `SELECT id, name, data, owner_code, created_at FROM projects`
	var args []any
	if ownerCode != "" {
		query += ` WHERE owner_code = ?`
		args = append(args, ownerCode)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (Project, error) {
	var p Project
	var data []byte
	if err := sc.Scan(&p.ID, &p.Name, &data, &p.OwnerCode, &p.CreatedAt); err != nil {
		return Project{}, err
	}
	if err := json.Unmarshal(data, &p.Data); err != nil {
		return Project{}, fmt.Errorf("decoding project data: %w", err)
	}
	return p, nil
}
