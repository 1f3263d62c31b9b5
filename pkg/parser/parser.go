// Package parser recognizes tagged items in markdown lines and rebuilds the
// heading hierarchy of a document.
package parser

import (
	"regexp"

	"github.com/mattsolo1/grove-tasks/pkg/models"
	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

var (
	headingPattern  = regexp.MustCompile(`^(#{1,6})[ \t]`)
	checkboxPattern = regexp.MustCompile(`^([ \t]*[-*+][ \t]+)\[([ xX])\]`)
)

// Line is the parse result of a single line.
type Line struct {
	Text         string
	HeadingLevel int // 0 when the line is not a heading
	Checkbox     models.Checkbox
	Tags         []string
	Category     models.Category
	Taggable     bool
}

// IsHeading reports whether the line is an ATX heading.
func (l Line) IsHeading() bool {
	return l.HeadingLevel > 0
}

// IsHeader reports whether the line is a heading carrying a category marker.
func (l Line) IsHeader() bool {
	return l.IsHeading() && l.Taggable
}

// HeadingLevel returns the number of leading '#' characters of an ATX
// heading, or 0.
func HeadingLevel(text string) int {
	m := headingPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return len(m[1])
}

// CheckboxState returns the state of a leading list checkbox.
func CheckboxState(text string) models.Checkbox {
	m := checkboxPattern.FindStringSubmatch(text)
	if m == nil {
		return models.CheckboxNone
	}
	if m[2] == " " {
		return models.CheckboxOpen
	}
	return models.CheckboxChecked
}

// CheckboxIndex returns the byte offset of the state character inside the
// leading checkbox, or -1.
func CheckboxIndex(text string) int {
	m := checkboxPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return -1
	}
	return m[4]
}

// Parser classifies lines using a tag vocabulary.
type Parser struct {
	vocab *tags.Vocabulary
}

// New creates a Parser.
func New(vocab *tags.Vocabulary) *Parser {
	if vocab == nil {
		vocab = tags.DefaultVocabulary()
	}
	return &Parser{vocab: vocab}
}

// Vocabulary returns the parser's tag vocabulary.
func (p *Parser) Vocabulary() *tags.Vocabulary {
	return p.vocab
}

// ParseLine parses one line of text.
func (p *Parser) ParseLine(text string) Line {
	l := Line{
		Text:         text,
		HeadingLevel: HeadingLevel(text),
		Checkbox:     CheckboxState(text),
		Tags:         ExtractTags(text),
	}
	cat, ok := p.vocab.Resolve(l.Tags)
	if !ok {
		return l
	}
	if cat == models.CategoryTaskOpen && l.Checkbox == models.CheckboxChecked {
		cat = models.CategoryTaskDone
	}
	l.Category = cat
	l.Taggable = true
	return l
}
