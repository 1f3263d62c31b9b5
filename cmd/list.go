package cmd

import (
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-tasks/pkg/models"
	"github.com/mattsolo1/grove-tasks/pkg/service"
	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

// itemSource adapts items to fuzzy.Source.
type itemSource []models.Item

func (s itemSource) String(i int) string { return s[i].RawText }
func (s itemSource) Len() int            { return len(s) }

// fuzzyFilter keeps the items matching pattern, best match first.
func fuzzyFilter(items []models.Item, pattern string) []models.Item {
	matches := fuzzy.FindFrom(pattern, itemSource(items))
	out := make([]models.Item, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}

func NewListCmd(svc **service.Service) *cobra.Command {
	var (
		listCategory string
		listTag      string
		listMatch    string
		listJSON     bool
		listUnsorted bool
		listLimit    int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List indexed items",
		Aliases: []string{"ls"},
		Long: `List tagged items across all documents, in priority order.

Examples:
  tk list                      # Open tasks, highest priority first
  tk list -c idea              # Ideas
  tk list --tag garden         # Open tasks tagged #garden
  tk list --match "ship rel"   # Fuzzy match on the line text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			category, err := parseCategory(listCategory)
			if err != nil {
				return err
			}

			items := s.Items(category, !listUnsorted)

			if listTag != "" {
				tag := tags.Normalize(listTag)
				var filtered []models.Item
				for _, it := range items {
					if tags.Contains(it.Tags, tag) {
						filtered = append(filtered, it)
					}
				}
				items = filtered
			}

			if listMatch != "" {
				items = fuzzyFilter(items, listMatch)
			}

			if listLimit > 0 && len(items) > listLimit {
				items = items[:listLimit]
			}

			out := cmd.OutOrStdout()
			if listJSON {
				if items == nil {
					items = []models.Item{}
				}
				return outputJSON(out, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No items found")
				return nil
			}
			printItemsTable(out, items)
			return nil
		},
	}

	cmd.Flags().StringVarP(&listCategory, "category", "c", "open", "Category to list (open, done, idea, principle, all)")
	cmd.Flags().StringVar(&listTag, "tag", "", "Only items carrying this tag")
	cmd.Flags().StringVarP(&listMatch, "match", "m", "", "Fuzzy filter on the line text")
	cmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&listUnsorted, "unsorted", false, "Keep scan order instead of priority order")
	cmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum number of items")

	return cmd
}
