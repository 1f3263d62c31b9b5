package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/mattsolo1/grove-tasks/pkg/frontmatter"
	"github.com/mattsolo1/grove-tasks/pkg/models"
)

// Scope is the span of one header item: the lines it owns as children and
// the line at which it closed.
type Scope struct {
	HeaderLine int
	Level      int
	Children   []int
	// ClosedAt is the line of the heading that ended the scope, or the line
	// count of the document when it ran to the end.
	ClosedAt int
}

// Outline is the result of one pass over a document.
type Outline struct {
	Path   string
	Items  []models.Item
	Scopes []Scope
}

// frame is an open header on the stack.
type frame struct {
	level int
	item  int // index into Outline.Items
	scope int // index into Outline.Scopes
}

// SplitLines splits content into lines without their terminators.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// ParseDocument parses every line of content and rebuilds the header
// hierarchy in a single top-to-bottom pass. Content that is not valid UTF-8
// yields an empty outline.
func (p *Parser) ParseDocument(path, content string) *Outline {
	out := &Outline{Path: path}
	if !utf8.ValidString(content) {
		return out
	}

	lines := SplitLines(content)
	start := frontmatter.LineCount(content)

	var stack []frame
	closeScopes := func(level, at int) {
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			top := stack[len(stack)-1]
			out.Scopes[top.scope].ClosedAt = at
			stack = stack[:len(stack)-1]
		}
	}

	fence := ""
	for n := start; n < len(lines); n++ {
		text := lines[n]

		if marker := fenceMarker(text); marker != "" {
			if fence == "" {
				fence = marker
			} else if strings.HasPrefix(marker, fence[:1]) && len(marker) >= len(fence) {
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}

		line := p.ParseLine(text)
		if line.IsHeading() {
			// Any heading ends the scopes at its level or deeper.
			closeScopes(line.HeadingLevel, n)
		}
		if !line.Taggable {
			continue
		}

		item := models.Item{
			DocumentPath: path,
			LineNumber:   n,
			RawText:      text,
			Category:     line.Category,
			Checkbox:     line.Checkbox,
			IsHeader:     line.IsHeader(),
			HeadingLevel: line.HeadingLevel,
			Tags:         line.Tags,
		}

		if item.IsHeader {
			out.Items = append(out.Items, item)
			out.Scopes = append(out.Scopes, Scope{HeaderLine: n, Level: line.HeadingLevel})
			stack = append(stack, frame{
				level: line.HeadingLevel,
				item:  len(out.Items) - 1,
				scope: len(out.Scopes) - 1,
			})
			continue
		}

		if len(stack) > 0 {
			top := stack[len(stack)-1]
			parent := out.Items[top.item].LineNumber
			item.ParentLineNumber = &parent
			out.Items[top.item].ChildLineNumbers = append(out.Items[top.item].ChildLineNumbers, n)
			out.Scopes[top.scope].Children = append(out.Scopes[top.scope].Children, n)
		}
		out.Items = append(out.Items, item)
	}
	closeScopes(1, len(lines))

	return out
}

// fenceMarker returns the opening run of a fenced code block line.
func fenceMarker(text string) string {
	t := strings.TrimLeft(text, " ")
	if len(text)-len(t) > 3 {
		return ""
	}
	for _, c := range []byte{'`', '~'} {
		n := 0
		for n < len(t) && t[n] == c {
			n++
		}
		if n >= 3 && !(c == '`' && strings.ContainsRune(t[n:], '`')) {
			return t[:n]
		}
	}
	return ""
}
