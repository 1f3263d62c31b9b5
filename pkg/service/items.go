package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattsolo1/grove-tasks/pkg/docstore"
	"github.com/mattsolo1/grove-tasks/pkg/models"
)

// Ref formats the user-facing reference of an item: its path and 1-based
// line number.
func Ref(item models.Item) string {
	return fmt.Sprintf("%s:%d", item.DocumentPath, item.LineNumber+1)
}

// ParseRef splits "path:line" (1-based line) into a path and a 0-based line.
func ParseRef(ref string) (string, int, error) {
	i := strings.LastIndex(ref, ":")
	if i <= 0 || i == len(ref)-1 {
		return "", 0, fmt.Errorf("invalid item reference %q: want path:line", ref)
	}
	n, err := strconv.Atoi(ref[i+1:])
	if err != nil || n < 1 {
		return "", 0, fmt.Errorf("invalid line number in %q", ref)
	}
	p, err := docstore.Clean(ref[:i])
	if err != nil {
		return "", 0, fmt.Errorf("invalid item reference %q: %w", ref, err)
	}
	return p, n - 1, nil
}

// FindItem resolves a "path:line" reference against the index.
func (s *Service) FindItem(ref string) (models.Item, error) {
	p, line, err := ParseRef(ref)
	if err != nil {
		return models.Item{}, err
	}
	item, ok := s.Scanner.Find(p, line)
	if !ok {
		return models.Item{}, fmt.Errorf("%s: %w", ref, ErrItemNotFound)
	}
	return item, nil
}

// Mutation names a processor operation applied to one item.
type Mutation func(ctx context.Context, item models.Item) (bool, error)

// Complete returns the completion mutation. doneTag picks the spelling of
// the done tag; empty means the configured one.
func (s *Service) Complete(doneTag string) Mutation {
	return func(ctx context.Context, item models.Item) (bool, error) {
		return s.Processor.CompleteItem(ctx, item, doneTag)
	}
}

// Uncomplete returns the reverse of Complete.
func (s *Service) Uncomplete() Mutation { return s.Processor.UncompleteItem }

// SetPriority returns a mutation setting tag as the item's only priority tag.
func (s *Service) SetPriority(tag string) Mutation {
	return func(ctx context.Context, item models.Item) (bool, error) {
		return s.Processor.SetPriorityTag(ctx, item, tag)
	}
}

// ClearPriority returns a mutation removing every priority tag.
func (s *Service) ClearPriority() Mutation { return s.Processor.ClearPriority }

// Snooze returns a mutation snoozing the item with tag ("" for the default).
func (s *Service) Snooze(tag string) Mutation {
	return func(ctx context.Context, item models.Item) (bool, error) {
		return s.Processor.Snooze(ctx, item, tag)
	}
}

// AddTag returns a mutation appending tag.
func (s *Service) AddTag(tag string) Mutation {
	return func(ctx context.Context, item models.Item) (bool, error) {
		return s.Processor.AddTag(ctx, item, tag)
	}
}

// RemoveTag returns a mutation dropping tag.
func (s *Service) RemoveTag(tag string) Mutation {
	return func(ctx context.Context, item models.Item) (bool, error) {
		return s.Processor.RemoveTag(ctx, item, tag)
	}
}

// Apply resolves ref and runs m on it. A false result means the index was
// stale; the document is rescanned so a retry sees fresh state.
func (s *Service) Apply(ctx context.Context, ref string, m Mutation) (bool, error) {
	item, err := s.FindItem(ref)
	if err != nil {
		return false, err
	}
	ok, err := m(ctx, item)
	if err != nil {
		return ok, err
	}
	if !ok {
		if err := s.Scanner.ScanDocument(ctx, item.DocumentPath); err != nil {
			return false, err
		}
	}
	return ok, nil
}
