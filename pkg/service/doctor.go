package service

import (
	"context"

	"github.com/mattsolo1/grove-tasks/pkg/models"
	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

// Conflict is an item carrying more than one priority tag.
type Conflict struct {
	Item models.Item `json:"item"`
	Tags []string    `json:"tags"`
	// Keep is the tag with the best rank; fixing leaves only this one.
	Keep string `json:"keep"`
}

// PriorityConflicts finds items whose priority tags are not mutually
// exclusive, in scan order.
func (s *Service) PriorityConflicts() []Conflict {
	vocab := tags.NewVocabulary(s.Config.Get())
	var out []Conflict
	for _, it := range s.Scanner.GetItems("") {
		var found []string
		for _, t := range it.Tags {
			if vocab.IsPriority(t) {
				found = append(found, t)
			}
		}
		if len(found) < 2 {
			continue
		}
		keep := found[0]
		for _, t := range found[1:] {
			if vocab.Rank([]string{t}) < vocab.Rank([]string{keep}) {
				keep = t
			}
		}
		out = append(out, Conflict{Item: it, Tags: found, Keep: keep})
	}
	return out
}

// FixConflict rewrites the item so that only c.Keep remains.
func (s *Service) FixConflict(ctx context.Context, c Conflict) (bool, error) {
	return s.Apply(ctx, Ref(c.Item), s.SetPriority(c.Keep))
}
