package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-tasks/pkg/models"
)

func TestParseDocumentSingleTask(t *testing.T) {
	out := New(nil).ParseDocument("todo.md", "# Todo\n\n- [ ] do thing #task\n")

	require.Len(t, out.Items, 1)
	item := out.Items[0]
	assert.Equal(t, "todo.md", item.DocumentPath)
	assert.Equal(t, 2, item.LineNumber)
	assert.Equal(t, models.CategoryTaskOpen, item.Category)
	assert.False(t, item.IsHeader)
	assert.Contains(t, item.Tags, "#task")
	assert.Nil(t, item.ParentLineNumber)
}

func TestParseDocumentHierarchy(t *testing.T) {
	content := `# Plan
## Sprint #tasks
- [ ] first #task
- [ ] second #task
### Detail
- [ ] third #task
## Later
- [ ] orphan #task
## Ideas #ideas
- wild one #idea
`
	out := New(nil).ParseDocument("plan.md", content)

	byLine := map[int]models.Item{}
	for _, it := range out.Items {
		byLine[it.LineNumber] = it
	}

	sprint := byLine[1]
	assert.True(t, sprint.IsHeader)
	assert.Equal(t, 2, sprint.HeadingLevel)
	// "### Detail" is deeper than the sprint heading, so line 5 stays inside.
	assert.Equal(t, []int{2, 3, 5}, sprint.ChildLineNumbers)
	for _, n := range []int{2, 3, 5} {
		require.NotNil(t, byLine[n].ParentLineNumber, "line %d", n)
		assert.Equal(t, 1, *byLine[n].ParentLineNumber)
	}

	assert.Nil(t, byLine[7].ParentLineNumber, "a heading of equal level closes the scope")

	ideas := byLine[8]
	assert.Equal(t, []int{9}, ideas.ChildLineNumbers)
	assert.Equal(t, 8, *byLine[9].ParentLineNumber)

	require.Len(t, out.Scopes, 2)
	assert.Equal(t, Scope{HeaderLine: 1, Level: 2, Children: []int{2, 3, 5}, ClosedAt: 6}, out.Scopes[0])
	assert.Equal(t, 11, out.Scopes[1].ClosedAt)
}

func TestParseDocumentNestedHeaders(t *testing.T) {
	content := "# Project #tasks\n- [ ] a #task\n## Phase #tasks\n- [ ] b #task\n# Next\n- [ ] c #task\n"
	out := New(nil).ParseDocument("p.md", content)

	byLine := map[int]models.Item{}
	for _, it := range out.Items {
		byLine[it.LineNumber] = it
	}
	assert.Equal(t, []int{1}, byLine[0].ChildLineNumbers)
	assert.Equal(t, []int{3}, byLine[2].ChildLineNumbers)
	assert.Equal(t, 2, *byLine[3].ParentLineNumber)
	assert.Nil(t, byLine[5].ParentLineNumber)
}

func TestParseDocumentSkipsFrontmatterAndFences(t *testing.T) {
	content := "---\ntitle: x\n---\n- [ ] real #task\n```sh\n# comment #task\n- [ ] fake #task\n```\n- [ ] after #task\n"
	out := New(nil).ParseDocument("f.md", content)

	var lines []int
	for _, it := range out.Items {
		lines = append(lines, it.LineNumber)
	}
	assert.Equal(t, []int{3, 8}, lines)
}

func TestParseDocumentCRLF(t *testing.T) {
	out := New(nil).ParseDocument("w.md", "- [ ] win #task\r\n- [x] done #task\r\n")
	require.Len(t, out.Items, 2)
	assert.Equal(t, "- [ ] win #task", out.Items[0].RawText)
	assert.Equal(t, models.CategoryTaskDone, out.Items[1].Category)
}

func TestParseDocumentInvalidUTF8(t *testing.T) {
	out := New(nil).ParseDocument("bin.md", "- [ ] x #task\xff\xfe")
	assert.Empty(t, out.Items)
}

func TestParseDocumentIsIdempotent(t *testing.T) {
	content := "## Sprint #tasks\n- [ ] a #task #p1\n- [ ] b #task\n"
	p := New(nil)
	assert.Equal(t, p.ParseDocument("a.md", content), p.ParseDocument("a.md", content))
}
