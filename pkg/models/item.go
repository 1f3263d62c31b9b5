package models

// Category classifies a recognized line.
type Category string

const (
	CategoryTaskOpen  Category = "task-open"
	CategoryTaskDone  Category = "task-done"
	CategoryIdea      Category = "idea"
	CategoryPrinciple Category = "principle"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryTaskOpen, CategoryTaskDone, CategoryIdea, CategoryPrinciple}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTaskOpen, CategoryTaskDone, CategoryIdea, CategoryPrinciple:
		return true
	}
	return false
}

// IsTask reports whether c is an open or completed task.
func (c Category) IsTask() bool {
	return c == CategoryTaskOpen || c == CategoryTaskDone
}

// Checkbox is the state of a leading "- [ ]" marker.
type Checkbox int

const (
	CheckboxNone Checkbox = iota
	CheckboxOpen
	CheckboxChecked
)

func (c Checkbox) String() string {
	switch c {
	case CheckboxOpen:
		return "open"
	case CheckboxChecked:
		return "checked"
	}
	return "none"
}

// Item is one recognized line (or heading) of one document, as of the scan
// that produced it. Items are snapshots: mutations go through the document and
// a rescan replaces them.
type Item struct {
	DocumentPath string   `json:"document_path"`
	LineNumber   int      `json:"line_number"` // 0-based
	RawText      string   `json:"raw_text"`
	Category     Category `json:"category"`
	Checkbox     Checkbox `json:"checkbox"`
	IsHeader     bool     `json:"is_header"`
	HeadingLevel int      `json:"heading_level,omitempty"`
	Tags         []string `json:"tags"`

	// Generation identifies the scan that produced the item. Empty for
	// items that never went through the index.
	Generation string `json:"generation,omitempty"`

	// Hierarchy, only within one document and one scan.
	ParentLineNumber *int  `json:"parent_line_number,omitempty"`
	ChildLineNumbers []int `json:"child_line_numbers,omitempty"`
}

// Key identifies an item by document and line.
type Key struct {
	Path string
	Line int
}

// Key returns the item's document/line address.
func (i Item) Key() Key {
	return Key{Path: i.DocumentPath, Line: i.LineNumber}
}

// HasParent reports whether the item sits under a header item.
func (i Item) HasParent() bool {
	return i.ParentLineNumber != nil
}

// Clone returns a copy that shares no slices or pointers with i.
func (i Item) Clone() Item {
	c := i
	if i.Tags != nil {
		c.Tags = append([]string(nil), i.Tags...)
	}
	if i.ChildLineNumbers != nil {
		c.ChildLineNumbers = append([]int(nil), i.ChildLineNumbers...)
	}
	if i.ParentLineNumber != nil {
		p := *i.ParentLineNumber
		c.ParentLineNumber = &p
	}
	return c
}

// Counts summarizes the index per category.
type Counts struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	Done       int `json:"done"`
	Ideas      int `json:"ideas"`
	Principles int `json:"principles"`
}

// Add tallies one item.
func (c *Counts) Add(cat Category) {
	c.Total++
	switch cat {
	case CategoryTaskOpen:
		c.Open++
	case CategoryTaskDone:
		c.Done++
	case CategoryIdea:
		c.Ideas++
	case CategoryPrinciple:
		c.Principles++
	}
}
