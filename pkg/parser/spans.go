package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

// codeMask replaces every byte of an inline code span. It is a single byte so
// offsets in the masked text are offsets in the original.
const codeMask = '\x00'

var tagPattern = regexp.MustCompile(`#[\p{L}\p{N}_-]+`)

// TagSpan is one hashtag token and its byte range in the original line.
type TagSpan struct {
	Tag   string
	Start int
	End   int
}

// MaskCode blanks out inline code spans. A run of n backticks opens a span
// that the next run of exactly n backticks closes; an unmatched run is
// literal text.
func MaskCode(text string) string {
	if !strings.Contains(text, "`") {
		return text
	}
	b := []byte(text)
	i := 0
	for i < len(b) {
		if b[i] != '`' {
			i++
			continue
		}
		n := runLength(b, i)
		closeAt := -1
		for j := i + n; j < len(b); {
			if b[j] != '`' {
				j++
				continue
			}
			m := runLength(b, j)
			if m == n {
				closeAt = j
				break
			}
			j += m
		}
		if closeAt < 0 {
			i += n
			continue
		}
		end := closeAt + n
		for k := i; k < end; k++ {
			b[k] = codeMask
		}
		i = end
	}
	return string(b)
}

func runLength(b []byte, at int) int {
	n := 0
	for at+n < len(b) && b[at+n] == '`' {
		n++
	}
	return n
}

// FindTags returns the hashtag tokens of text that lie outside inline code,
// in order of appearance. Duplicates are kept.
func FindTags(text string) []TagSpan {
	masked := MaskCode(text)
	locs := tagPattern.FindAllStringIndex(masked, -1)
	spans := make([]TagSpan, 0, len(locs))
	for _, loc := range locs {
		if loc[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(masked[:loc[0]])
			if !tagBoundary(prev) {
				continue
			}
		}
		spans = append(spans, TagSpan{Tag: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
	}
	return spans
}

// tagBoundary reports whether a '#' preceded by r can start a tag.
func tagBoundary(r rune) bool {
	switch r {
	case '#', '&', '/', '-', '_':
		return false
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// ExtractTags returns the ordered set of hashtag tokens of text, ignoring
// tokens inside inline code. Tags that differ only by case are kept once,
// with the first spelling.
func ExtractTags(text string) []string {
	spans := FindTags(text)
	out := make([]string, 0, len(spans))
	seen := make(map[string]bool, len(spans))
	for _, s := range spans {
		f := tags.Fold(s.Tag)
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, s.Tag)
	}
	return out
}
