// Package catalog is the read-only set of page templates a session can start
// from.
package catalog

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/onepage/internal/apperr"
	"github.com/ziadkadry99/onepage/internal/document"
)

//go:embed seeds.yaml
var seedsYAML []byte

// ErrNotFound is returned by Get for an unknown template ID.
var ErrNotFound = apperr.NotFound("template not found")

// Category groups templates in the picker.
type Category string

const (
	CategoryMarketplace   Category = "marketplace"
	CategoryDocumentation Category = "documentation"
)

// Label is the badge shown on template cards.
func (c Category) Label() string {
	if c == CategoryMarketplace {
		return "插件/应用"
	}
	return "其他"
}

// Template is an immutable catalog entry.
type Template struct {
	ID              string            `json:"id" yaml:"id"`
	Name            string            `json:"name" yaml:"name"`
	Description     string            `json:"description" yaml:"description"`
	Thumbnail       string            `json:"thumbnail" yaml:"thumbnail"`
	Category        Category          `json:"category" yaml:"category"`
	Tags            []string          `json:"tags" yaml:"tags"`
	ConversionScore int               `json:"conversionScore" yaml:"conversionScore"`
	InitialData     document.Document `json:"initialData" yaml:"initialData"`
}

// NewDocument returns a fresh session-owned Document seeded from t.
func (t Template) NewDocument() document.Document {
	return document.Load(t.InitialData)
}

func (t Template) clone() Template {
	out := t
	out.Tags = append([]string(nil), t.Tags...)
	out.InitialData = t.InitialData.Clone()
	return out
}

// Store holds templates in catalog order. It is safe for concurrent reads and
// never changes after construction.
type Store struct {
	templates []Template
	byID      map[string]int
}

// New builds a Store from the embedded seeds plus every *.yaml/*.yml file
// under dir, if dir is non-empty. Duplicate IDs are an error.
func New(dir string) (*Store, error) {
	s := &Store{byID: make(map[string]int)}
	if err := s.addYAML("embedded seeds", seedsYAML); err != nil {
		return nil, err
	}
	if dir == "" {
		return s, nil
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, "**/*.{yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("scanning template dir %s: %w", dir, err)
	}
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("reading template file %s: %w", m, err)
		}
		if err := s.addYAML(m, data); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Default returns a Store holding only the embedded seeds.
func Default() *Store {
	s, err := New("")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seeds are invalid: %v", err))
	}
	return s
}

func (s *Store) addYAML(source string, data []byte) error {
	var ts []Template
	if err := yaml.Unmarshal(data, &ts); err != nil {
		return fmt.Errorf("parsing %s: %w", source, err)
	}
	for _, t := range ts {
		if t.ID == "" {
			return fmt.Errorf("%s: template without id", source)
		}
		if _, dup := s.byID[t.ID]; dup {
			return fmt.Errorf("%s: duplicate template id %q", source, t.ID)
		}
		if t.Category == "" {
			t.Category = CategoryMarketplace
		}
		if t.InitialData.Layout == "" {
			t.InitialData.Layout = document.LayoutMarketplace
		}
		if t.ConversionScore < 0 || t.ConversionScore > 100 {
			return fmt.Errorf("%s: template %q: conversionScore %d out of range 0-100", source, t.ID, t.ConversionScore)
		}
		if err := document.Check(t.InitialData); err != nil {
			return fmt.Errorf("%s: template %q: %w", source, t.ID, err)
		}
		s.byID[t.ID] = len(s.templates)
		s.templates = append(s.templates, t)
	}
	return nil
}

// Get returns the template with the given ID.
func (s *Store) Get(id string) (Template, error) {
	i, ok := s.byID[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s.templates[i].clone(), nil
}

// List returns all templates in catalog order.
func (s *Store) List() []Template {
	out := make([]Template, len(s.templates))
	for i, t := range s.templates {
		out[i] = t.clone()
	}
	return out
}

// Search fuzzy-matches query against template name, ID and tags, best match
// first. An empty query returns List().
func (s *Store) Search(query string) []Template {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List()
	}

	var searchStrings []string
	for _, t := range s.templates {
		searchStrings = append(searchStrings,
			fmt.Sprintf("%s %s %s", t.Name, t.ID, strings.Join(t.Tags, " ")))
	}

	matches := fuzzy.Find(query, searchStrings)
	results := make([]Template, 0, len(matches))
	for _, m := range matches {
		results = append(results, s.templates[m.Index].clone())
	}
	return results
}
