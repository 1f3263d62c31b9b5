// Package processor applies text transforms to single lines of source
// documents: completion, priority and tag edits.
package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-tasks/pkg/config"
	"github.com/mattsolo1/grove-tasks/pkg/docstore"
	"github.com/mattsolo1/grove-tasks/pkg/events"
	"github.com/mattsolo1/grove-tasks/pkg/index"
	"github.com/mattsolo1/grove-tasks/pkg/models"
	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

var (
	// ErrStale means the target line no longer matches the item snapshot.
	// It never reaches callers; they see (false, nil).
	ErrStale = errors.New("item is stale")
	// ErrUnknownTag is returned when a tag is not valid for the operation.
	ErrUnknownTag = errors.New("unknown tag")
)

// DateLayout is the layout of the completion date token.
const DateLayout = "2006-01-02"

// Processor performs every sanctioned write to source documents. Each
// operation re-reads the document, checks the target line against the item
// snapshot, rewrites that one line and writes the document back.
//
// The processor reads the shared index to tell whether an item is from a
// superseded scan but never writes to it; the rescan after a write does.
type Processor struct {
	store   *index.Store
	docs    docstore.Store
	cfg     *config.Source
	logger  *logrus.Entry
	mutated *events.Bus[string]

	now func() time.Time
}

// New creates a Processor writing through docs. store may be nil, in which
// case only the line check guards against stale items.
func New(store *index.Store, docs docstore.Store, cfg *config.Source, logger *logrus.Entry) *Processor {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &Processor{
		store:   store,
		docs:    docs,
		cfg:     cfg,
		logger:  logger.WithField("component", "processor"),
		mutated: events.NewBus[string](),
		now:     time.Now,
	}
}

// OnMutated registers fn to be called with the path of every document the
// processor has written.
func (p *Processor) OnMutated(fn func(path string)) events.Token {
	return p.mutated.Subscribe(fn)
}

// RemoveOnMutated removes a callback registered with OnMutated.
func (p *Processor) RemoveOnMutated(tok events.Token) bool {
	return p.mutated.Unsubscribe(tok)
}

func (p *Processor) vocab() *tags.Vocabulary {
	return tags.NewVocabulary(p.cfg.Get())
}

// transform rewrites one line. Returning ErrStale aborts without writing;
// returning the input unchanged skips the write.
type transform func(line string) (string, error)

// apply runs the read-check-modify-write cycle for item.
func (p *Processor) apply(ctx context.Context, op string, item models.Item, fn transform) (bool, error) {
	log := p.logger.WithFields(logrus.Fields{
		"op":   op,
		"path": item.DocumentPath,
		"line": item.LineNumber,
	})

	if !p.current(item) {
		log.WithField("generation", item.Generation).Debug("item superseded by a newer scan")
		return false, nil
	}

	text, err := p.docs.Read(ctx, item.DocumentPath)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			log.Debug("document gone, item is stale")
			return false, nil
		}
		log.WithError(err).Error("could not read document")
		return false, fmt.Errorf("read %s: %w", item.DocumentPath, err)
	}

	lines := strings.Split(text, "\n")
	if item.LineNumber < 0 || item.LineNumber >= len(lines) {
		log.Debug("line out of range, item is stale")
		return false, nil
	}
	raw := lines[item.LineNumber]
	line := strings.TrimSuffix(raw, "\r")
	if line != item.RawText {
		log.Debug("line changed since scan, item is stale")
		return false, nil
	}

	updated, err := fn(line)
	if errors.Is(err, ErrStale) {
		log.Debug("line no longer carries the expected markers")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if updated == line {
		return true, nil
	}

	lines[item.LineNumber] = updated + raw[len(line):]
	if err := p.docs.Write(ctx, item.DocumentPath, strings.Join(lines, "\n")); err != nil {
		log.WithError(err).Error("could not write document")
		return false, fmt.Errorf("write %s: %w", item.DocumentPath, err)
	}
	log.Debug("line rewritten")

	p.mutated.Publish(item.DocumentPath)
	return true, nil
}

// current reports whether item still describes its line in the index. An
// item from an older generation is current only while the index holds the
// same text on that line. Items that never went through the index are left
// to the line check.
func (p *Processor) current(item models.Item) bool {
	if p.store == nil || item.Generation == "" {
		return true
	}
	cur, ok := p.store.Find(item.DocumentPath, item.LineNumber)
	if !ok {
		return false
	}
	return cur.Generation == item.Generation || cur.RawText == item.RawText
}
