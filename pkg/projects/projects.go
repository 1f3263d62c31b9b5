// Package projects derives per-tag project statistics from the item index.
package projects

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"path"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-tasks/pkg/config"
	"github.com/mattsolo1/grove-tasks/pkg/docstore"
	"github.com/mattsolo1/grove-tasks/pkg/frontmatter"
	"github.com/mattsolo1/grove-tasks/pkg/index"
	"github.com/mattsolo1/grove-tasks/pkg/models"
	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

// Palette is the number of presentation colours a project can map to.
const Palette = 8

const documentCacheSize = 256

// Aggregator computes ProjectInfo on demand from the current index.
type Aggregator struct {
	store  *index.Store
	docs   docstore.Store
	cfg    *config.Source
	logger *logrus.Entry

	// resolved project documents, valid until the next index update
	cache *lru.Cache[string, *models.ProjectDocument]
}

// New creates an Aggregator reading from store.
func New(store *index.Store, docs docstore.Store, cfg *config.Source, logger *logrus.Entry) *Aggregator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	cache, _ := lru.New[string, *models.ProjectDocument](documentCacheSize)
	return &Aggregator{
		store:  store,
		docs:   docs,
		cfg:    cfg,
		logger: logger.WithField("component", "projects"),
		cache:  cache,
	}
}

// Invalidate forgets resolved project documents. The scanner calls it on
// every index update.
func (a *Aggregator) Invalidate() {
	a.cache.Purge()
}

// GetProjects groups open tasks and ideas by their user tags. System tags,
// priority tags and items under excluded folders are skipped. Projects are
// ordered by highest priority rank, then item count (descending), then tag.
func (a *Aggregator) GetProjects() []models.ProjectInfo {
	cfg := a.cfg.Get()
	vocab := tags.NewVocabulary(cfg)

	items := a.store.Filter(func(it models.Item) bool {
		if it.Category != models.CategoryTaskOpen && it.Category != models.CategoryIdea {
			return false
		}
		return !cfg.IsExcluded(it.DocumentPath)
	})

	groups := make(map[string]*models.ProjectInfo)
	for _, it := range items {
		rank := vocab.Rank(it.Tags)
		seen := make(map[string]bool, len(it.Tags))
		for _, t := range it.Tags {
			if vocab.IsSystem(t) || vocab.IsPriority(t) {
				continue
			}
			key := tags.Fold(t)
			if seen[key] {
				continue
			}
			seen[key] = true

			g, ok := groups[key]
			if !ok {
				g = &models.ProjectInfo{
					Tag:                 t,
					HighestPriorityRank: rank,
					ColourIndex:         ColourIndex(t),
				}
				groups[key] = g
			}
			g.ItemCount++
			if rank < g.HighestPriorityRank {
				g.HighestPriorityRank = rank
			}
		}
	}

	out := make([]models.ProjectInfo, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HighestPriorityRank != out[j].HighestPriorityRank {
			return out[i].HighestPriorityRank < out[j].HighestPriorityRank
		}
		if out[i].ItemCount != out[j].ItemCount {
			return out[i].ItemCount > out[j].ItemCount
		}
		return tags.Fold(out[i].Tag) < tags.Fold(out[j].Tag)
	})
	return out
}

// ItemsFor returns the open tasks and ideas bearing tag, in scan order.
func (a *Aggregator) ItemsFor(tag string) []models.Item {
	cfg := a.cfg.Get()
	tag = tags.Normalize(tag)
	return a.store.Filter(func(it models.Item) bool {
		if it.Category != models.CategoryTaskOpen && it.Category != models.CategoryIdea {
			return false
		}
		return !cfg.IsExcluded(it.DocumentPath) && tags.Contains(it.Tags, tag)
	})
}

// ColourIndex maps a tag to a stable palette slot.
func ColourIndex(tag string) int {
	h := fnv.New32a()
	h.Write([]byte(tags.Fold(tag)))
	return int(h.Sum32() % Palette)
}

// DocumentPath returns the conventional backing document path for tag.
func (a *Aggregator) DocumentPath(tag string) string {
	name := strings.TrimPrefix(tags.Normalize(tag), "#")
	return path.Join(a.cfg.Get().ProjectsFolder, name+".md")
}

// ResolveProjectDocument looks up <projects folder>/<tag>.md. It returns
// nil without error when the document does not exist.
func (a *Aggregator) ResolveProjectDocument(ctx context.Context, tag string) (*models.ProjectDocument, error) {
	p := a.DocumentPath(tag)
	if doc, ok := a.cache.Get(p); ok {
		return doc, nil
	}

	text, err := a.docs.Read(ctx, p)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read project document: %w", err)
	}

	doc := &models.ProjectDocument{Tag: tags.Normalize(tag), Path: p}
	fm, body, err := frontmatter.Parse(text)
	if err != nil {
		// Malformed frontmatter still resolves, just without metadata.
		a.logger.WithError(err).WithField("path", p).Warn("could not parse project frontmatter")
	}
	if fm != nil {
		doc.Title = fm.Title
		doc.Description = fm.Description
		doc.Status = fm.Status
		doc.Aliases = fm.Aliases
	}
	if doc.Title == "" {
		doc.Title = frontmatter.ExtractTitle(body)
	}

	a.cache.Add(p, doc)
	return doc, nil
}
