package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clipform/clipform/internal/assemble"
)

// Template is a stored fill-in-the-blanks edit timeline, keyed by an
// opaque id. Later edits (user text, media substitution) happen in the
// calling application; the store only holds the initial timeline.
type Template struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Source    string             `json:"source"`
	Duration  float64            `json:"duration"`
	Timeline  *assemble.Timeline `json:"timeline"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Store persists templates as JSON files under one directory.
type Store struct {
	logger zerolog.Logger
	dir    string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(logger zerolog.Logger, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure template directory: %w", err)
	}
	return &Store{
		logger: logger.With().Str("component", "template-store").Logger(),
		dir:    dir,
	}, nil
}

// Save writes the template, assigning an id and creation time when
// missing.
func (s *Store) Save(t *Template) error {
	if t == nil || t.Timeline == nil {
		return fmt.Errorf("template has no timeline")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Name == "" {
		t.Name = fmt.Sprintf("template_%s", t.CreatedAt.Format("20060102-150405"))
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}

	if err := os.WriteFile(s.path(t.ID), data, 0o644); err != nil {
		return fmt.Errorf("write template: %w", err)
	}

	s.logger.Info().
		Str("id", t.ID).
		Str("name", t.Name).
		Msg("template saved")
	return nil
}

// Get loads one template by id.
func (s *Store) Get(id string) (*Template, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", id, err)
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", id, err)
	}
	return &t, nil
}

// List returns all stored templates, newest first. Unreadable files are
// skipped and logged.
func (s *Store) List() ([]*Template, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read template directory: %w", err)
	}

	var out []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		t, err := s.Get(id)
		if err != nil {
			s.logger.Warn().Str("file", entry.Name()).Err(err).Msg("skipping unreadable template")
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes one template by id.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	s.logger.Info().Str("id", id).Msg("template deleted")
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// validateID keeps ids opaque-but-safe: they must parse as UUIDs so a
// crafted id can never escape the store directory.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid template id %q: %w", id, err)
	}
	return nil
}
