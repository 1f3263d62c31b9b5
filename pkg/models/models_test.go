package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValidation(t *testing.T) {
	tests := []struct {
		category Category
		isValid  bool
		isTask   bool
	}{
		{CategoryTaskOpen, true, true},
		{CategoryTaskDone, true, true},
		{CategoryIdea, true, false},
		{CategoryPrinciple, true, false},
		{Category("note"), false, false},
		{Category(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.category.IsValid())
			assert.Equal(t, tt.isTask, tt.category.IsTask())
		})
	}
}

func TestItemCloneIsIndependent(t *testing.T) {
	parent := 2
	item := Item{
		DocumentPath:     "todo.md",
		LineNumber:       3,
		Tags:             []string{"#task", "#p1"},
		ParentLineNumber: &parent,
		ChildLineNumbers: []int{4, 5},
	}

	c := item.Clone()
	c.Tags[0] = "#idea"
	c.ChildLineNumbers[0] = 9
	*c.ParentLineNumber = 7

	assert.Equal(t, "#task", item.Tags[0])
	assert.Equal(t, 4, item.ChildLineNumbers[0])
	assert.Equal(t, 2, *item.ParentLineNumber)
	assert.Equal(t, Key{Path: "todo.md", Line: 3}, item.Key())
}

func TestCountsAdd(t *testing.T) {
	var c Counts
	for _, cat := range []Category{CategoryTaskOpen, CategoryTaskOpen, CategoryTaskDone, CategoryIdea, CategoryPrinciple} {
		c.Add(cat)
	}
	assert.Equal(t, Counts{Total: 5, Open: 2, Done: 1, Ideas: 1, Principles: 1}, c)
}
