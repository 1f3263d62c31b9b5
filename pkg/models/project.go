package models

// ProjectInfo is the derived view of one user tag across the index.
type ProjectInfo struct {
	Tag                 string `json:"tag"`
	ItemCount           int    `json:"item_count"`
	HighestPriorityRank int    `json:"highest_priority_rank"`
	ColourIndex         int    `json:"colour_index"`
}

// ProjectDocument is the optional backing document for a project tag,
// found by naming convention.
type ProjectDocument struct {
	Tag         string   `json:"tag"`
	Path        string   `json:"path"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}
