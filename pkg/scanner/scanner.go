// Package scanner builds and maintains the item index from the document
// store.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-tasks/pkg/config"
	"github.com/mattsolo1/grove-tasks/pkg/debounce"
	"github.com/mattsolo1/grove-tasks/pkg/docstore"
	"github.com/mattsolo1/grove-tasks/pkg/events"
	"github.com/mattsolo1/grove-tasks/pkg/index"
	"github.com/mattsolo1/grove-tasks/pkg/models"
	"github.com/mattsolo1/grove-tasks/pkg/parser"
	"github.com/mattsolo1/grove-tasks/pkg/projects"
	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

// Scanner owns the contents of an index.Store. Every change to the index
// goes through it and ends with one "index updated" notification.
type Scanner struct {
	store    *index.Store
	docs     docstore.Store
	cfg      *config.Source
	logger   *logrus.Entry
	projects *projects.Aggregator
	updates  *events.Bus[Change]

	// scanMu serializes reads and index replacement so that a slow scan
	// cannot overwrite a newer one.
	scanMu sync.Mutex

	watchMu   sync.Mutex
	debouncer *debounce.Debouncer
	unsubs    []func()
}

// New creates a Scanner writing into store.
func New(store *index.Store, docs docstore.Store, cfg *config.Source, logger *logrus.Entry) *Scanner {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	s := &Scanner{
		store:    store,
		docs:     docs,
		cfg:      cfg,
		logger:   logger.WithField("component", "scanner"),
		projects: projects.New(store, docs, cfg, logger),
		updates:  events.NewBus[Change](),
	}
	s.Subscribe(s.projects.Invalidate)
	return s
}

// Projects returns the aggregator that derives project views from this index.
func (s *Scanner) Projects() *projects.Aggregator {
	return s.projects
}

// Change describes one index update. Full is set after a full scan;
// otherwise Paths lists the documents whose items were replaced or removed.
type Change struct {
	Full  bool
	Paths []string
}

// Subscribe registers handler for "index updated" notifications.
func (s *Scanner) Subscribe(handler func()) events.Token {
	return s.updates.Subscribe(func(Change) { handler() })
}

// OnChange registers handler for index updates along with what changed.
func (s *Scanner) OnChange(handler func(Change)) events.Token {
	return s.updates.Subscribe(handler)
}

// Unsubscribe removes a handler registered with Subscribe or OnChange.
func (s *Scanner) Unsubscribe(tok events.Token) bool {
	return s.updates.Unsubscribe(tok)
}

func (s *Scanner) publish(ch Change) {
	s.updates.Publish(ch)
}

func (s *Scanner) parser() *parser.Parser {
	return parser.New(tags.NewVocabulary(s.cfg.Get()))
}

// FullScan rebuilds the whole index from the documents in the configured
// scope and publishes one notification.
func (s *Scanner) FullScan(ctx context.Context) error {
	cfg := s.cfg.Get()
	paths, err := s.docs.List(ctx, cfg.Scope)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	s.scanMu.Lock()
	s.store.Clear()
	p := s.parser()
	total, scanned := 0, 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			s.scanMu.Unlock()
			return err
		}
		if !s.indexable(path) {
			continue
		}
		total += s.scan(ctx, p, path)
		scanned++
	}
	s.scanMu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"documents": scanned,
		"items":     total,
	}).Info("full scan complete")
	s.publish(Change{Full: true})
	return nil
}

// scan replaces the items of one document and returns how many it found.
// s.scanMu must be held.
func (s *Scanner) scan(ctx context.Context, p *parser.Parser, path string) int {
	text, err := s.docs.Read(ctx, path)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			// Deleted while we were looking at it.
			s.store.Remove(path)
			s.logger.WithField("path", path).Debug("document gone, removed from index")
			return 0
		}
		s.logger.WithError(err).WithField("path", path).Warn("could not read document, indexing no items")
		s.store.Replace(path, nil)
		return 0
	}

	outline := p.ParseDocument(path, text)
	gen := s.store.Replace(path, outline.Items)
	s.logger.WithFields(logrus.Fields{
		"path":       path,
		"items":      len(outline.Items),
		"generation": gen.String(),
	}).Debug("document scanned")
	return len(outline.Items)
}

// ScanDocument rescans one document in isolation. Documents that are not
// indexed (outside the scope, or the completed log) are dropped instead.
func (s *Scanner) ScanDocument(ctx context.Context, path string) error {
	c, err := docstore.Clean(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.scanMu.Lock()
	if !s.indexable(c) {
		removed := s.store.Remove(c)
		s.scanMu.Unlock()
		if removed {
			s.publish(Change{Paths: []string{c}})
		}
		return nil
	}
	s.scan(ctx, s.parser(), c)
	s.scanMu.Unlock()

	s.publish(Change{Paths: []string{c}})
	return nil
}

// RemoveDocument purges the items of a deleted document.
func (s *Scanner) RemoveDocument(path string) {
	c, err := docstore.Clean(path)
	if err != nil {
		return
	}
	s.scanMu.Lock()
	s.store.Remove(c)
	s.scanMu.Unlock()

	s.publish(Change{Paths: []string{c}})
}

// RemovePrefix purges every document below dir, for a directory that was
// deleted or moved away. It returns the removed paths and publishes only
// when there were any.
func (s *Scanner) RemovePrefix(dir string) []string {
	c, err := docstore.Clean(dir)
	if err != nil {
		return nil
	}
	prefix := c + "/"

	s.scanMu.Lock()
	var removed []string
	for _, p := range s.store.Paths() {
		if strings.HasPrefix(p, prefix) && s.store.Remove(p) {
			removed = append(removed, p)
		}
	}
	s.scanMu.Unlock()

	if len(removed) > 0 {
		s.logger.WithFields(logrus.Fields{
			"dir":       c,
			"documents": len(removed),
		}).Debug("directory gone, removed from index")
		s.publish(Change{Paths: removed})
	}
	return removed
}

// RenameDocument purges oldPath and scans newPath, publishing once.
func (s *Scanner) RenameDocument(ctx context.Context, oldPath, newPath string) error {
	from, err := docstore.Clean(oldPath)
	if err != nil {
		return err
	}
	to, err := docstore.Clean(newPath)
	if err != nil {
		return err
	}

	s.scanMu.Lock()
	s.store.Remove(from)
	if s.indexable(to) {
		s.scan(ctx, s.parser(), to)
	}
	s.scanMu.Unlock()

	s.publish(Change{Paths: []string{from, to}})
	return nil
}

// indexable reports whether path belongs in the index: a document inside
// the scope that is not the completed log. Log entries are copies of lines
// that are already indexed where they came from.
func (s *Scanner) indexable(path string) bool {
	if !docstore.IsDocument(path) {
		return false
	}
	cfg := s.cfg.Get()
	if cfg.CompletedLog != "" {
		if log, err := docstore.Clean(cfg.CompletedLog); err == nil && log == path {
			return false
		}
	}
	return docstore.InScope(path, cfg.Scope)
}

// GetItems returns the items of one category in scan order. An empty
// category selects every item.
func (s *Scanner) GetItems(category models.Category) []models.Item {
	if category == "" {
		return s.store.Items()
	}
	return s.store.Filter(func(it models.Item) bool {
		return it.Category == category
	})
}

// GetSortedItems returns the items of one category in priority order.
func (s *Scanner) GetSortedItems(category models.Category) []models.Item {
	items := s.GetItems(category)
	tags.NewVocabulary(s.cfg.Get()).Sort(items)
	return items
}

// GetCount tallies the index per category.
func (s *Scanner) GetCount() models.Counts {
	var c models.Counts
	for _, it := range s.store.Items() {
		c.Add(it.Category)
	}
	return c
}

// GetProjectsView returns the project aggregation of the current index.
func (s *Scanner) GetProjectsView() []models.ProjectInfo {
	return s.projects.GetProjects()
}

// Find returns the indexed item at path:line.
func (s *Scanner) Find(path string, line int) (models.Item, bool) {
	c, err := docstore.Clean(path)
	if err != nil {
		return models.Item{}, false
	}
	return s.store.Find(c, line)
}
