package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mattsolo1/grove-tasks/pkg/models"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single", "- [ ] do thing #task", []string{"#task"}},
		{"several", "Ship release #task #p1 #project-x", []string{"#task", "#p1", "#project-x"}},
		{"code span only", "`#not-a-tag`", []string{}},
		{"outside code", "use `#skip` but keep #real-tag", []string{"#real-tag"}},
		{"double backticks", "``a ` #inner`` #outer", []string{"#outer"}},
		{"unclosed backtick", "a ` b #tag", []string{"#tag"}},
		{"heading marker is not a tag", "## Sprint #tasks", []string{"#tasks"}},
		{"anchor", "see page#section and &#39; #ok", []string{"#ok"}},
		{"case duplicates", "#Task and #task", []string{"#Task"}},
		{"unicode", "#café #日本", []string{"#café", "#日本"}},
		{"adjacent to code", "`x`#tag", []string{"#tag"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTags(tt.text))
		})
	}
}

func TestFindTagsOffsets(t *testing.T) {
	text := "- [ ] `#x` ship #task"
	spans := FindTags(text)
	if assert.Len(t, spans, 1) {
		assert.Equal(t, "#task", spans[0].Tag)
		assert.Equal(t, "#task", text[spans[0].Start:spans[0].End])
	}
}

func TestMaskCodePreservesLength(t *testing.T) {
	text := "a `#b` c ``d`` e"
	masked := MaskCode(text)
	assert.Len(t, masked, len(text))
	assert.NotContains(t, masked, "#b")
	assert.Equal(t, "a ", masked[:2])
	assert.Equal(t, " e", masked[len(masked)-2:])
}

func TestHeadingAndCheckbox(t *testing.T) {
	assert.Equal(t, 2, HeadingLevel("## Sprint #tasks"))
	assert.Equal(t, 6, HeadingLevel("###### deep"))
	assert.Equal(t, 0, HeadingLevel("####### too deep"))
	assert.Equal(t, 0, HeadingLevel("#task not a heading"))
	assert.Equal(t, 0, HeadingLevel("  # indented"))

	assert.Equal(t, models.CheckboxOpen, CheckboxState("- [ ] a"))
	assert.Equal(t, models.CheckboxChecked, CheckboxState("  * [X] a"))
	assert.Equal(t, models.CheckboxChecked, CheckboxState("+ [x] a"))
	assert.Equal(t, models.CheckboxNone, CheckboxState("-[ ] a"))
	assert.Equal(t, models.CheckboxNone, CheckboxState("plain"))

	assert.Equal(t, 3, CheckboxIndex("- [ ] a"))
	assert.Equal(t, -1, CheckboxIndex("plain"))
}

func TestParseLine(t *testing.T) {
	p := New(nil)

	tests := []struct {
		name     string
		text     string
		taggable bool
		header   bool
		category models.Category
		checkbox models.Checkbox
	}{
		{"open task", "- [ ] do thing #task", true, false, models.CategoryTaskOpen, models.CheckboxOpen},
		{"checked task", "- [x] did thing #task", true, false, models.CategoryTaskDone, models.CheckboxChecked},
		{"done tag", "- [x] did thing #done @2024-01-15", true, false, models.CategoryTaskDone, models.CheckboxChecked},
		{"task without checkbox", "Call Bob #Task", true, false, models.CategoryTaskOpen, models.CheckboxNone},
		{"idea", "What if #ideas", true, false, models.CategoryIdea, models.CheckboxNone},
		{"principle", "Be kind #principle", true, false, models.CategoryPrinciple, models.CheckboxNone},
		{"header", "## Sprint #tasks", true, true, models.CategoryTaskOpen, models.CheckboxNone},
		{"plain heading", "## Sprint", false, false, "", models.CheckboxNone},
		{"marker in code", "- [ ] `#task` only", false, false, "", models.CheckboxOpen},
		{"priority only", "- [ ] thing #p1", false, false, "", models.CheckboxOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := p.ParseLine(tt.text)
			assert.Equal(t, tt.taggable, l.Taggable)
			assert.Equal(t, tt.header, l.IsHeader())
			assert.Equal(t, tt.category, l.Category)
			assert.Equal(t, tt.checkbox, l.Checkbox)
		})
	}
}
