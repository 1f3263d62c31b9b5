package processor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mattsolo1/grove-tasks/pkg/docstore"
	"github.com/mattsolo1/grove-tasks/pkg/models"
	"github.com/mattsolo1/grove-tasks/pkg/parser"
	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

var dateToken = regexp.MustCompile(`^[ \t]*@\d{4}-\d{2}-\d{2}`)

// CompleteItem checks the box of an open task, swaps its task tag for
// doneTag and stamps today's date right after it. An empty doneTag writes
// the configured done tag; any other value must be a spelling of it, since
// a line carrying some other tag would no longer be recognized as done.
// With completed_log set the finished line is also appended to that
// document.
func (p *Processor) CompleteItem(ctx context.Context, item models.Item, doneTag string) (bool, error) {
	vocab := p.vocab()
	if doneTag == "" {
		doneTag = vocab.DoneTag()
	} else {
		doneTag = tags.Normalize(doneTag)
		if !validTag(doneTag) || !vocab.IsDoneTag(doneTag) {
			return false, fmt.Errorf("%w: %s is not the done tag", ErrUnknownTag, doneTag)
		}
	}
	date := p.now().Format(DateLayout)

	var completed string
	ok, err := p.apply(ctx, "complete", item, func(line string) (string, error) {
		if parser.CheckboxState(line) == models.CheckboxChecked {
			return "", ErrStale
		}
		span, found := firstSpan(line, vocab.IsOpenTaskTag)
		if !found {
			return "", ErrStale
		}
		out := line[:span.Start] + doneTag + " @" + date + line[span.End:]
		if i := parser.CheckboxIndex(out); i >= 0 {
			out = out[:i] + "x" + out[i+1:]
		}
		completed = out
		return out, nil
	})
	if !ok || err != nil {
		return ok, err
	}

	logPath := p.cfg.Get().CompletedLog
	if logPath == "" {
		return true, nil
	}
	if err := p.appendCompleted(ctx, logPath, item.DocumentPath, completed); err != nil {
		p.logger.WithError(err).WithField("path", logPath).Error("could not append to completed log")
		return true, err
	}
	return true, nil
}

func (p *Processor) appendCompleted(ctx context.Context, logPath, source, line string) error {
	text, err := p.docs.Read(ctx, logPath)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("read completed log: %w", err)
	}
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	text += strings.TrimLeft(line, " \t") + " (from " + source + ")\n"
	if err := p.docs.Write(ctx, logPath, text); err != nil {
		return fmt.Errorf("write completed log: %w", err)
	}
	p.mutated.Publish(logPath)
	return nil
}

// UncompleteItem reverses CompleteItem: the box is cleared, the done tag
// becomes #task again and the date token after it is dropped.
func (p *Processor) UncompleteItem(ctx context.Context, item models.Item) (bool, error) {
	vocab := p.vocab()
	return p.apply(ctx, "uncomplete", item, func(line string) (string, error) {
		out := line
		if span, found := firstSpan(out, vocab.IsDoneTag); found {
			end := span.End
			if m := dateToken.FindStringIndex(out[end:]); m != nil {
				end += m[1]
			}
			out = out[:span.Start] + tags.TaskTag + out[end:]
		} else if parser.CheckboxState(out) == models.CheckboxChecked {
			span, found := firstSpan(out, vocab.IsOpenTaskTag)
			if !found {
				return "", ErrStale
			}
			if m := dateToken.FindStringIndex(out[span.End:]); m != nil {
				out = out[:span.End] + out[span.End+m[1]:]
			}
		} else {
			return "", ErrStale
		}
		if i := parser.CheckboxIndex(out); i >= 0 {
			out = out[:i] + " " + out[i+1:]
		}
		return out, nil
	})
}

// firstSpan returns the first tag span of line accepted by match.
func firstSpan(line string, match func(string) bool) (parser.TagSpan, bool) {
	for _, s := range parser.FindTags(line) {
		if match(s.Tag) {
			return s, true
		}
	}
	return parser.TagSpan{}, false
}
