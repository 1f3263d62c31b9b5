package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-tasks/pkg/config"
	"github.com/mattsolo1/grove-tasks/pkg/docstore"
	"github.com/mattsolo1/grove-tasks/pkg/events"
	"github.com/mattsolo1/grove-tasks/pkg/index"
	"github.com/mattsolo1/grove-tasks/pkg/models"
	"github.com/mattsolo1/grove-tasks/pkg/processor"
	"github.com/mattsolo1/grove-tasks/pkg/scanner"
	"github.com/mattsolo1/grove-tasks/pkg/search"
	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

// ErrItemNotFound is returned when a reference names no indexed item.
var ErrItemNotFound = errors.New("item not found")

// Service wires the document store, scanner, processor and search mirror
// around one explicitly owned index.
type Service struct {
	Config    *config.Source
	Docs      docstore.Store
	Store     *index.Store
	Scanner   *scanner.Scanner
	Processor *processor.Processor
	Index     *search.Index

	logger  *logrus.Entry
	fs      *docstore.FS
	updates events.Token
	mutated events.Token
}

// New creates a service over the filesystem rooted at cfg.Root.
func New(cfg *config.Config, logger *logrus.Entry) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fs, err := docstore.NewFS(cfg.Root, logger)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	s, err := NewWithStore(cfg, fs, logger)
	if err != nil {
		return nil, err
	}
	s.fs = fs
	return s, nil
}

// NewWithStore creates a service over an arbitrary document store.
func NewWithStore(cfg *config.Config, docs docstore.Store, logger *logrus.Entry) (*Service, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src := config.NewSource(cfg)

	idx, err := search.NewIndex(cfg.IndexDB)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	store := index.New()
	s := &Service{
		Config:    src,
		Docs:      docs,
		Store:     store,
		Scanner:   scanner.New(store, docs, src, logger),
		Processor: processor.New(store, docs, src, logger),
		Index:     idx,
		logger:    logger.WithField("component", "service"),
	}

	// Mutations never patch the index; the rescan is the source of truth.
	s.mutated = s.Processor.OnMutated(func(path string) {
		if err := s.Scanner.ScanDocument(context.Background(), path); err != nil {
			s.logger.WithError(err).WithField("path", path).Warn("rescan after mutation failed")
		}
	})
	s.updates = s.Scanner.OnChange(s.refreshSearch)
	return s, nil
}

// refreshSearch brings the search mirror in line with one index update:
// everything after a full scan, only the touched documents otherwise.
func (s *Service) refreshSearch(ch scanner.Change) {
	if ch.Full {
		if err := s.Index.Rebuild(s.Scanner.GetItems("")); err != nil {
			s.logger.WithError(err).Warn("could not refresh search index")
		}
		return
	}
	for _, p := range ch.Paths {
		var err error
		if _, ok := s.Store.Document(p); ok {
			err = s.Index.IndexDocument(p, s.Store.ItemsFor(p))
		} else {
			err = s.Index.RemoveDocument(p)
		}
		if err != nil {
			s.logger.WithError(err).WithField("path", p).Warn("could not refresh search index")
		}
	}
}

// IndexStatus summarizes the item index.
type IndexStatus struct {
	Documents  int       `json:"documents"`
	Items      int       `json:"items"`
	Generation string    `json:"generation,omitempty"`
	ScannedAt  time.Time `json:"scanned_at,omitempty"`
}

// Status reports the size of the index and its most recent scan generation.
func (s *Service) Status() IndexStatus {
	st := IndexStatus{Documents: s.Store.Len()}
	var latest index.Document
	for _, p := range s.Store.Paths() {
		doc, ok := s.Store.Document(p)
		if !ok {
			continue
		}
		st.Items += len(doc.Items)
		if doc.Generation.Compare(latest.Generation) > 0 {
			latest = doc
		}
	}
	if st.Documents > 0 {
		st.Generation = latest.Generation.String()
		st.ScannedAt = latest.ScannedAt
	}
	return st
}

// Load builds the index from scratch.
func (s *Service) Load(ctx context.Context) error {
	if err := s.Scanner.FullScan(ctx); err != nil {
		return fmt.Errorf("scan documents: %w", err)
	}
	return nil
}

// UpdateConfig swaps the active configuration. It does not rescan.
func (s *Service) UpdateConfig(cfg *config.Config) error {
	return s.Config.Update(cfg)
}

// Items lists items of one category ("" for all), in priority order when
// sorted is set and in scan order otherwise.
func (s *Service) Items(category models.Category, sorted bool) []models.Item {
	if sorted {
		return s.Scanner.GetSortedItems(category)
	}
	return s.Scanner.GetItems(category)
}

// Count tallies the index.
func (s *Service) Count() models.Counts {
	return s.Scanner.GetCount()
}

// Projects returns the derived project view.
func (s *Service) Projects() []models.ProjectInfo {
	return s.Scanner.GetProjectsView()
}

// ProjectView is one project with its items and backing document.
type ProjectView struct {
	Info     models.ProjectInfo      `json:"info"`
	Document *models.ProjectDocument `json:"document,omitempty"`
	Items    []models.Item           `json:"items"`
}

// Project looks up one project by tag.
func (s *Service) Project(ctx context.Context, tag string) (*ProjectView, error) {
	tag = tags.Normalize(tag)
	for _, info := range s.Projects() {
		if !tags.Equal(info.Tag, tag) {
			continue
		}
		agg := s.Scanner.Projects()
		doc, err := agg.ResolveProjectDocument(ctx, info.Tag)
		if err != nil {
			return nil, fmt.Errorf("resolve project document: %w", err)
		}
		items := agg.ItemsFor(info.Tag)
		tags.NewVocabulary(s.Config.Get()).Sort(items)
		return &ProjectView{Info: info, Document: doc, Items: items}, nil
	}
	return nil, fmt.Errorf("project %s: %w", tag, ErrItemNotFound)
}

// Search queries the search mirror.
func (s *Service) Search(query string, options ...SearchOption) ([]search.Result, error) {
	opts := &searchOptions{
		limit: 50,
	}
	for _, opt := range options {
		opt(opts)
	}

	results, err := s.Index.Search(query, &search.Options{
		Category: opts.category,
		Limit:    opts.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}

// Watch follows document changes until ctx is cancelled.
func (s *Service) Watch(ctx context.Context) error {
	if s.fs != nil {
		if err := s.fs.Watch(ctx); err != nil {
			return fmt.Errorf("watch documents: %w", err)
		}
	}
	s.Scanner.Watch(ctx)
	<-ctx.Done()
	s.Scanner.Stop()
	return nil
}

// Close releases the watcher and the search index.
func (s *Service) Close() error {
	s.Scanner.Stop()
	s.Scanner.Unsubscribe(s.updates)
	s.Processor.RemoveOnMutated(s.mutated)
	if s.fs != nil {
		if err := s.fs.Close(); err != nil {
			return err
		}
	}
	if s.Index != nil {
		if err := s.Index.Close(); err != nil {
			return err
		}
	}
	return nil
}

type searchOptions struct {
	category models.Category
	limit    int
}

type SearchOption func(*searchOptions)

func OfCategory(c models.Category) SearchOption {
	return func(o *searchOptions) {
		o.category = c
	}
}

func WithLimit(limit int) SearchOption {
	return func(o *searchOptions) {
		o.limit = limit
	}
}
