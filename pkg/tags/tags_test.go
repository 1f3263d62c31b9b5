package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mattsolo1/grove-tasks/pkg/models"
)

func TestCategoryMarkers(t *testing.T) {
	v := DefaultVocabulary()

	tests := []struct {
		tag  string
		want models.Category
		ok   bool
	}{
		{"#task", models.CategoryTaskOpen, true},
		{"#Tasks", models.CategoryTaskOpen, true},
		{"#done", models.CategoryTaskDone, true},
		{"#DONE", models.CategoryTaskDone, true},
		{"#idea", models.CategoryIdea, true},
		{"#ideas", models.CategoryIdea, true},
		{"#Principle", models.CategoryPrinciple, true},
		{"#principles", models.CategoryPrinciple, true},
		{"#project-x", "", false},
		{"#p1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := v.Category(tt.tag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePrecedence(t *testing.T) {
	v := DefaultVocabulary()

	cat, ok := v.Resolve([]string{"#idea", "#task"})
	assert.True(t, ok)
	assert.Equal(t, models.CategoryTaskOpen, cat)

	cat, _ = v.Resolve([]string{"#task", "#done"})
	assert.Equal(t, models.CategoryTaskDone, cat)

	cat, _ = v.Resolve([]string{"#principle", "#ideas"})
	assert.Equal(t, models.CategoryIdea, cat)

	_, ok = v.Resolve([]string{"#p1", "#home"})
	assert.False(t, ok)
}

func TestRank(t *testing.T) {
	v := DefaultVocabulary()

	tests := []struct {
		name string
		tags []string
		want int
	}{
		{"focus", []string{"#task", "#focus"}, RankFocus},
		{"focus beats snooze", []string{"#snooze", "#focus"}, RankFocus},
		{"urgent", []string{"#urgent"}, RankUrgent},
		{"p0", []string{"#P0"}, RankP0},
		{"p2", []string{"#p2"}, RankP2},
		{"none", []string{"#task", "#home"}, RankNone},
		{"p3", []string{"#p3"}, RankP3},
		{"p4", []string{"#p4"}, RankP4},
		{"snoozed", []string{"#someday"}, RankSnoozed},
		{"best of several", []string{"#p3", "#p1"}, RankP1},
		{"p0 beats snooze", []string{"#snoozed", "#p0"}, RankP0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Rank(tt.tags))
		})
	}
}

func TestClassification(t *testing.T) {
	v := DefaultVocabulary()

	assert.True(t, v.IsSystem("#Task"))
	assert.True(t, v.IsSystem("#done"))
	assert.False(t, v.IsSystem("#p1"))

	assert.True(t, v.IsPriority("#p1"))
	assert.True(t, v.IsPriority("#focus"))
	assert.True(t, v.IsPriority("#snooze"))
	assert.False(t, v.IsPriority("#home"))

	assert.True(t, v.IsSnooze("#Someday"))
	assert.False(t, v.IsSnooze("#p4"))

	assert.Equal(t, 2, v.NonSystemCount([]string{"#task", "#p0", "#project-x"}))
	assert.True(t, Contains([]string{"#Home"}, "#home"))
	assert.Equal(t, "#home", Normalize(" home "))
}

func TestSortOrder(t *testing.T) {
	v := DefaultVocabulary()
	items := []models.Item{
		{RawText: "B", Tags: []string{"#task", "#p0"}},
		{RawText: "D", Tags: []string{"#task", "#p3"}},
		{RawText: "C", Tags: []string{"#task"}},
		{RawText: "E", Tags: []string{"#task", "#p0", "#project-x"}},
		{RawText: "A", Tags: []string{"#task", "#focus"}},
	}

	v.Sort(items)

	var got []string
	for _, it := range items {
		got = append(got, it.RawText)
	}
	assert.Equal(t, []string{"A", "E", "B", "C", "D"}, got)
}

func TestSortIsStable(t *testing.T) {
	v := DefaultVocabulary()
	items := []models.Item{
		{RawText: "first", Tags: []string{"#task", "#home"}},
		{RawText: "snoozed", Tags: []string{"#task", "#snooze"}},
		{RawText: "second", Tags: []string{"#task", "#work"}},
	}

	v.Sort(items)

	assert.Equal(t, "first", items[0].RawText)
	assert.Equal(t, "second", items[1].RawText)
	assert.Equal(t, "snoozed", items[2].RawText)
}
