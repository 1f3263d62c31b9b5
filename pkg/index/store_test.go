package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-tasks/pkg/models"
)

func item(path string, line int, cat models.Category) models.Item {
	return models.Item{DocumentPath: path, LineNumber: line, Category: cat, Tags: []string{"#task"}}
}

func TestReplaceAndQuery(t *testing.T) {
	s := New()
	s.Replace("b.md", []models.Item{item("b.md", 0, models.CategoryTaskOpen)})
	s.Replace("a.md", []models.Item{
		item("a.md", 1, models.CategoryTaskOpen),
		item("a.md", 4, models.CategoryIdea),
	})

	assert.Equal(t, []string{"a.md", "b.md"}, s.Paths())
	assert.Equal(t, 2, s.Len())

	all := s.Items()
	require.Len(t, all, 3)
	assert.Equal(t, models.Key{Path: "a.md", Line: 1}, all[0].Key())
	assert.Equal(t, models.Key{Path: "a.md", Line: 4}, all[1].Key())
	assert.Equal(t, models.Key{Path: "b.md", Line: 0}, all[2].Key())

	ideas := s.Filter(func(it models.Item) bool { return it.Category == models.CategoryIdea })
	require.Len(t, ideas, 1)

	found, ok := s.Find("a.md", 4)
	require.True(t, ok)
	assert.Equal(t, models.CategoryIdea, found.Category)
	_, ok = s.Find("a.md", 2)
	assert.False(t, ok)
}

func TestGenerationsAdvance(t *testing.T) {
	s := New()
	g1 := s.Replace("a.md", nil)
	g2 := s.Replace("a.md", nil)
	assert.Equal(t, -1, g1.Compare(g2))

	doc, ok := s.Document("a.md")
	require.True(t, ok)
	assert.Equal(t, g2, doc.Generation)
}

func TestItemsAreSnapshots(t *testing.T) {
	s := New()
	in := []models.Item{item("a.md", 0, models.CategoryTaskOpen)}
	s.Replace("a.md", in)

	in[0].Tags[0] = "#changed"
	out := s.ItemsFor("a.md")
	assert.Equal(t, "#task", out[0].Tags[0])

	out[0].Tags[0] = "#changed"
	assert.Equal(t, "#task", s.ItemsFor("a.md")[0].Tags[0])
}

func TestRemoveAndClear(t *testing.T) {
	s := New()
	s.Replace("a.md", []models.Item{item("a.md", 0, models.CategoryTaskOpen)})
	s.Replace("b.md", nil)

	assert.True(t, s.Remove("a.md"))
	assert.False(t, s.Remove("a.md"))
	assert.Nil(t, s.ItemsFor("a.md"))

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Items())
}

func TestReplaceStampsGeneration(t *testing.T) {
	s := New()
	in := []models.Item{item("a.md", 0, models.CategoryTaskOpen)}
	gen := s.Replace("a.md", in)

	found, ok := s.Find("a.md", 0)
	require.True(t, ok)
	assert.Equal(t, gen.String(), found.Generation)
	assert.Empty(t, in[0].Generation, "caller's items are not touched")

	next := s.Replace("a.md", in)
	found, _ = s.Find("a.md", 0)
	assert.Equal(t, next.String(), found.Generation)
}
