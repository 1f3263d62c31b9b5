package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattsolo1/grove-tasks/pkg/models"
	"github.com/mattsolo1/grove-tasks/pkg/parser"
	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

// SetPriorityTag replaces every priority tag on the line with tag.
func (p *Processor) SetPriorityTag(ctx context.Context, item models.Item, tag string) (bool, error) {
	vocab := p.vocab()
	tag = tags.Normalize(tag)
	if !vocab.IsPriority(tag) {
		return false, fmt.Errorf("%w: %s is not a priority tag", ErrUnknownTag, tag)
	}
	return p.apply(ctx, "priority", item, func(line string) (string, error) {
		return appendTag(removeSpans(line, vocab.IsPriority), tag), nil
	})
}

// Snooze is SetPriorityTag restricted to the snooze family. An empty tag
// picks the first configured snooze tag.
func (p *Processor) Snooze(ctx context.Context, item models.Item, tag string) (bool, error) {
	vocab := p.vocab()
	if tag == "" {
		if len(vocab.SnoozeTags()) == 0 {
			return false, fmt.Errorf("%w: no snooze tags configured", ErrUnknownTag)
		}
		tag = vocab.SnoozeTags()[0]
	}
	tag = tags.Normalize(tag)
	if !vocab.IsSnooze(tag) {
		return false, fmt.Errorf("%w: %s is not a snooze tag", ErrUnknownTag, tag)
	}
	return p.SetPriorityTag(ctx, item, tag)
}

// ClearPriority removes every priority and snooze tag from the line.
func (p *Processor) ClearPriority(ctx context.Context, item models.Item) (bool, error) {
	vocab := p.vocab()
	return p.apply(ctx, "clear-priority", item, func(line string) (string, error) {
		return removeSpans(line, vocab.IsPriority), nil
	})
}

// AddTag appends tag to the line unless it is already there.
func (p *Processor) AddTag(ctx context.Context, item models.Item, tag string) (bool, error) {
	tag = tags.Normalize(tag)
	if !validTag(tag) {
		return false, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	return p.apply(ctx, "add-tag", item, func(line string) (string, error) {
		if _, found := firstSpan(line, func(t string) bool { return tags.Equal(t, tag) }); found {
			return line, nil
		}
		return appendTag(line, tag), nil
	})
}

// RemoveTag drops every occurrence of tag and the whitespace it leaves.
func (p *Processor) RemoveTag(ctx context.Context, item models.Item, tag string) (bool, error) {
	tag = tags.Normalize(tag)
	if !validTag(tag) {
		return false, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	return p.apply(ctx, "remove-tag", item, func(line string) (string, error) {
		return removeSpans(line, func(t string) bool { return tags.Equal(t, tag) }), nil
	})
}

func validTag(tag string) bool {
	spans := parser.FindTags(tag)
	return len(spans) == 1 && spans[0].Start == 0 && spans[0].End == len(tag)
}

func appendTag(line, tag string) string {
	trimmed := strings.TrimRight(line, " \t")
	if trimmed == "" {
		return tag
	}
	return trimmed + " " + tag
}

// removeSpans cuts the matching tag spans out of line, last first so the
// earlier offsets stay valid.
func removeSpans(line string, match func(string) bool) string {
	spans := parser.FindTags(line)
	for i := len(spans) - 1; i >= 0; i-- {
		if match(spans[i].Tag) {
			line = cut(line, spans[i])
		}
	}
	return line
}

// cut removes one span and collapses the whitespace around it to at most
// one space. Leading indentation is kept.
func cut(line string, s parser.TagSpan) string {
	before, after := line[:s.Start], line[s.End:]
	rest := strings.TrimLeft(after, " \t")
	if strings.TrimSpace(before) == "" {
		return before + rest
	}
	head := strings.TrimRight(before, " \t")
	switch {
	case rest == "":
		return head
	case len(head) < len(before) || len(rest) < len(after):
		return head + " " + rest
	}
	return before + after
}
