package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mattsolo1/grove-tasks/pkg/models"
	"github.com/mattsolo1/grove-tasks/pkg/service"
)

func printItemsTable(w io.Writer, items []models.Item) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "REF\tCATEGORY\tTEXT")
	fmt.Fprintln(tw, "---\t--------\t----")

	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", service.Ref(it), categoryAbbrev(it.Category), truncateString(strings.TrimSpace(it.RawText), 72))
	}

	tw.Flush()
}

func categoryAbbrev(c models.Category) string {
	switch c {
	case models.CategoryTaskOpen:
		return "open"
	case models.CategoryTaskDone:
		return "done"
	case models.CategoryIdea:
		return "idea"
	case models.CategoryPrinciple:
		return "prin"
	default:
		return string(c)
	}
}

// parseCategory accepts the user-facing category names. "all" and ""
// select every category.
func parseCategory(s string) (models.Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case "open", "task", "tasks", "todo":
		return models.CategoryTaskOpen, nil
	case "done", "completed":
		return models.CategoryTaskDone, nil
	case "idea", "ideas":
		return models.CategoryIdea, nil
	case "principle", "principles":
		return models.CategoryPrinciple, nil
	}
	return "", fmt.Errorf("unknown category %q (want open, done, idea, principle or all)", s)
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
