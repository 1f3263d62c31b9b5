// Package tags holds the hashtag vocabulary: which tags mark a category,
// which are priority or snooze tags, and how items rank by them.
package tags

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/mattsolo1/grove-tasks/pkg/config"
	"github.com/mattsolo1/grove-tasks/pkg/models"
)

// Canonical category markers. Plural spellings are recognized as well.
const (
	TaskTag      = "#task"
	IdeaTag      = "#idea"
	PrincipleTag = "#principle"
)

// Rank values of the fixed priority table. Lower sorts earlier.
const (
	RankFocus   = 0
	RankUrgent  = 1
	RankP0      = 2
	RankP1      = 3
	RankP2      = 4
	RankNone    = 5
	RankP3      = 6
	RankP4      = 7
	RankSnoozed = 8
)

var rankTable = map[string]int{
	"#urgent": RankUrgent,
	"#p0":     RankP0,
	"#p1":     RankP1,
	"#p2":     RankP2,
	"#p3":     RankP3,
	"#p4":     RankP4,
}

var categoryMarkers = map[string]models.Category{
	"#task":       models.CategoryTaskOpen,
	"#tasks":      models.CategoryTaskOpen,
	"#idea":       models.CategoryIdea,
	"#ideas":      models.CategoryIdea,
	"#principle":  models.CategoryPrinciple,
	"#principles": models.CategoryPrinciple,
}

// Fold returns the case-folded form used for every tag comparison.
func Fold(tag string) string {
	// A Caser is stateful; one per call keeps Fold safe for concurrent use.
	return cases.Fold().String(tag)
}

// Equal compares two tags ignoring case.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Vocabulary classifies tags according to a configuration.
type Vocabulary struct {
	doneTag  string
	focusTag string

	priority map[string]bool
	snooze   map[string]bool

	priorityTags []string
	snoozeTags   []string
}

// NewVocabulary builds a Vocabulary from cfg.
func NewVocabulary(cfg *config.Config) *Vocabulary {
	v := &Vocabulary{
		doneTag:  cfg.DoneTag,
		focusTag: cfg.FocusTag,
		priority: make(map[string]bool),
		snooze:   make(map[string]bool),
	}
	if v.doneTag == "" {
		v.doneTag = "#done"
	}
	for _, t := range cfg.PriorityTags {
		v.priority[Fold(t)] = true
		v.priorityTags = append(v.priorityTags, t)
	}
	for _, t := range cfg.SnoozeTags {
		v.snooze[Fold(t)] = true
		v.snoozeTags = append(v.snoozeTags, t)
	}
	if v.focusTag != "" {
		v.priority[Fold(v.focusTag)] = true
	}
	return v
}

// DefaultVocabulary uses config.Default.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(config.Default())
}

// DoneTag is the tag a completed task carries.
func (v *Vocabulary) DoneTag() string { return v.doneTag }

// FocusTag is the tag that outranks every other.
func (v *Vocabulary) FocusTag() string { return v.focusTag }

// SnoozeTags returns the configured snooze family.
func (v *Vocabulary) SnoozeTags() []string { return v.snoozeTags }

// PriorityTags returns the configured priority tags, excluding snooze tags.
func (v *Vocabulary) PriorityTags() []string { return v.priorityTags }

// Category returns the category a single tag marks, if any.
func (v *Vocabulary) Category(tag string) (models.Category, bool) {
	f := Fold(tag)
	if f == Fold(v.doneTag) {
		return models.CategoryTaskDone, true
	}
	c, ok := categoryMarkers[f]
	return c, ok
}

// IsOpenTaskTag reports whether tag is #task or #tasks.
func (v *Vocabulary) IsOpenTaskTag(tag string) bool {
	c, ok := categoryMarkers[Fold(tag)]
	return ok && c == models.CategoryTaskOpen
}

// IsDoneTag reports whether tag is the configured done tag.
func (v *Vocabulary) IsDoneTag(tag string) bool {
	return Fold(tag) == Fold(v.doneTag)
}

// IsSystem reports whether tag marks a category or state rather than content.
func (v *Vocabulary) IsSystem(tag string) bool {
	_, ok := v.Category(tag)
	return ok
}

// IsPriority reports whether tag belongs to the mutually exclusive priority
// set, snooze tags included.
func (v *Vocabulary) IsPriority(tag string) bool {
	f := Fold(tag)
	return v.priority[f] || v.snooze[f]
}

// IsSnooze reports whether tag is in the snooze family.
func (v *Vocabulary) IsSnooze(tag string) bool {
	return v.snooze[Fold(tag)]
}

// Resolve picks the category of a line from its tags. Done outranks task,
// task outranks idea, idea outranks principle.
func (v *Vocabulary) Resolve(tagList []string) (models.Category, bool) {
	best := -1
	order := map[models.Category]int{
		models.CategoryTaskDone:  3,
		models.CategoryTaskOpen:  2,
		models.CategoryIdea:      1,
		models.CategoryPrinciple: 0,
	}
	var cat models.Category
	for _, t := range tagList {
		c, ok := v.Category(t)
		if !ok {
			continue
		}
		if order[c] > best {
			best = order[c]
			cat = c
		}
	}
	return cat, best >= 0
}

// Rank returns the sort priority of a tag set.
func (v *Vocabulary) Rank(tagList []string) int {
	rank := RankNone
	found := false
	for _, t := range tagList {
		f := Fold(t)
		if v.focusTag != "" && f == Fold(v.focusTag) {
			return RankFocus
		}
		r, ok := rankTable[f]
		if !ok && v.snooze[f] {
			r, ok = RankSnoozed, true
		}
		if ok && (!found || r < rank) {
			rank, found = r, true
		}
	}
	return rank
}

// NonSystemCount counts tags that are not category markers.
func (v *Vocabulary) NonSystemCount(tagList []string) int {
	n := 0
	for _, t := range tagList {
		if !v.IsSystem(t) {
			n++
		}
	}
	return n
}

// Contains reports whether tagList holds tag, ignoring case.
func Contains(tagList []string, tag string) bool {
	f := Fold(tag)
	for _, t := range tagList {
		if Fold(t) == f {
			return true
		}
	}
	return false
}

// Normalize prefixes a bare tag name with '#'.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag != "" && !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}
