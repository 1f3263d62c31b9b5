// Package index owns the in-memory item index shared by the scanner, the
// processor and the project aggregator.
package index

import (
	"crypto/rand"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mattsolo1/grove-tasks/pkg/models"
)

// Document is the scan result of one document.
type Document struct {
	Path       string
	Generation ulid.ULID
	ScannedAt  time.Time
	Items      []models.Item
}

// Store maps document paths to their items. It is safe for concurrent use.
// Items handed in or out are copies; nothing outside the store can change
// what it holds.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]*Document
	entropy io.Reader
	now     func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		docs:    make(map[string]*Document),
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Clear drops every document.
func (s *Store) Clear() {
	s.mu.Lock()
	s.docs = make(map[string]*Document)
	s.mu.Unlock()
}

// Replace installs items as the new generation for path and returns its id.
// Every stored item is stamped with that id.
func (s *Store) Replace(path string, items []models.Item) ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	gen := ulid.MustNew(ulid.Timestamp(now), s.entropy)

	cloned := make([]models.Item, len(items))
	for i, it := range items {
		cloned[i] = it.Clone()
		cloned[i].Generation = gen.String()
	}
	s.docs[path] = &Document{
		Path:       path,
		Generation: gen,
		ScannedAt:  now,
		Items:      cloned,
	}
	return gen
}

// Remove purges path. It reports whether the path was indexed.
func (s *Store) Remove(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path]; !ok {
		return false
	}
	delete(s.docs, path)
	return true
}

// Document returns a copy of the scan result for path.
func (s *Store) Document(path string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[path]
	if !ok {
		return Document{}, false
	}
	out := *d
	out.Items = cloneItems(d.Items)
	return out, true
}

// Paths returns the indexed document paths, sorted.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedPaths()
}

func (s *Store) sortedPaths() []string {
	paths := make([]string, 0, len(s.docs))
	for p := range s.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Items returns every item in scan order: documents by path, lines ascending.
func (s *Store) Items() []models.Item {
	return s.Filter(nil)
}

// Filter returns the items for which keep returns true, in scan order.
// A nil keep selects everything.
func (s *Store) Filter(keep func(models.Item) bool) []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Item
	for _, p := range s.sortedPaths() {
		for _, it := range s.docs[p].Items {
			if keep == nil || keep(it) {
				out = append(out, it.Clone())
			}
		}
	}
	return out
}

// ItemsFor returns the items of one document.
func (s *Store) ItemsFor(path string) []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[path]
	if !ok {
		return nil
	}
	return cloneItems(d.Items)
}

// Find returns the item at path:line.
func (s *Store) Find(path string, line int) (models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[path]
	if !ok {
		return models.Item{}, false
	}
	for _, it := range d.Items {
		if it.LineNumber == line {
			return it.Clone(), true
		}
	}
	return models.Item{}, false
}

// Len returns the number of indexed documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func cloneItems(items []models.Item) []models.Item {
	out := make([]models.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
