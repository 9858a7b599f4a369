// Package storage keeps scraped records in a single JSON file.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qepting91/edikte-scraper/internal/domain"
)

const idLength = 8

// Stats summarizes the store contents.
type Stats struct {
	Total      int                   `json:"total"`
	WithPDF    int                   `json:"with_pdf"`
	ByStatus   map[domain.Status]int `json:"by_status"`
	ByCategory map[string]int        `json:"by_category"`
}

// Store is a JSON array of records on disk. All methods are safe for
// concurrent use; every mutation rewrites the whole file.
type Store struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	records []domain.Record
}

// Open loads the store at path. A missing file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, now: time.Now}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", path, err)
	}
	return s, nil
}

// Upsert inserts rec or merges it into the record with the same detail URL.
// The stored record is returned.
func (s *Store) Upsert(rec domain.DetailRecord, status domain.Status) (domain.Record, error) {
	if rec.DetailURL == "" {
		return domain.Record{}, fmt.Errorf("%w: record without detail url", domain.ErrInvalidParams)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if i := s.indexByURL(rec.DetailURL); i >= 0 {
		r := &s.records[i]
		r.DetailRecord = domain.Merge(r.DetailRecord, rec)
		if status != "" {
			r.Status = status
		}
		r.UpdatedAt = now
		out := *r
		return out, s.flush()
	}

	if status == "" {
		status = domain.StatusScraped
	}
	r := domain.Record{
		ID:           s.newID(),
		DetailRecord: rec,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.records = append(s.records, r)
	return r, s.flush()
}

// Get returns the record with id.
func (s *Store) Get(id string) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return domain.Record{}, fmt.Errorf("%w: record %q", domain.ErrNotFound, id)
	}
	return s.records[i], nil
}

// List returns all records, oldest first.
func (s *Store) List() []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Update applies fn to the record with id and persists the result.
func (s *Store) Update(id string, fn func(r *domain.Record)) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return domain.Record{}, fmt.Errorf("%w: record %q", domain.ErrNotFound, id)
	}
	r := s.records[i]
	fn(&r)
	r.ID = s.records[i].ID
	r.UpdatedAt = s.now().UTC()
	s.records[i] = r
	return r, s.flush()
}

// UpdateStatus sets the status of the record with id.
func (s *Store) UpdateStatus(id string, status domain.Status) error {
	_, err := s.Update(id, func(r *domain.Record) { r.Status = status })
	return err
}

// Delete removes the record with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return fmt.Errorf("%w: record %q", domain.ErrNotFound, id)
	}
	s.records = slices.Delete(s.records, i, i+1)
	return s.flush()
}

// Stats counts records by status and by listing category.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		ByStatus:   make(map[domain.Status]int),
		ByCategory: make(map[string]int),
	}
	for _, r := range s.records {
		st.Total++
		if r.PDFPath != "" {
			st.WithPDF++
		}
		st.ByStatus[r.Status]++
		st.ByCategory[primaryCategory(r.DetailRecord)]++
	}
	return st
}

// primaryCategory is the first listed category, or "Unbekannt".
func primaryCategory(r domain.DetailRecord) string {
	c := r.Categories
	if c == "" {
		c = r.CategoryText
	}
	c, _, _ = strings.Cut(c, ",")
	if c = strings.TrimSpace(c); c == "" {
		return "Unbekannt"
	}
	return c
}

func (s *Store) indexByURL(u string) int {
	return slices.IndexFunc(s.records, func(r domain.Record) bool { return r.DetailURL == u })
}

func (s *Store) indexByID(id string) int {
	return slices.IndexFunc(s.records, func(r domain.Record) bool { return r.ID == id })
}

func (s *Store) newID() string {
	for {
		id := uuid.NewString()[:idLength]
		if s.indexByID(id) < 0 {
			return id
		}
	}
}

// flush writes the records to a temp file and renames it over the store.
func (s *Store) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	records := s.records
	if records == nil {
		records = []domain.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".edikte-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
