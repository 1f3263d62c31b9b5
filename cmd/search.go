package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-tasks/pkg/search"
	"github.com/mattsolo1/grove-tasks/pkg/service"
)

func NewSearchCmd(svc **service.Service) *cobra.Command {
	var (
		searchCategory string
		searchLimit    int
		searchJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search item text",
		Long: `Search the text and tags of indexed items. Every word must match.

Examples:
  tk search passport           # Any item mentioning passport
  tk search release -c done    # Completed items mentioning release`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			query := strings.Join(args, " ")

			category, err := parseCategory(searchCategory)
			if err != nil {
				return err
			}
			var opts []service.SearchOption
			if category != "" {
				opts = append(opts, service.OfCategory(category))
			}
			opts = append(opts, service.WithLimit(searchLimit))

			results, err := s.Search(query, opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if searchJSON {
				if results == nil {
					results = []search.Result{}
				}
				return outputJSON(out, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No results found")
				return nil
			}

			fmt.Fprintf(out, "Found %d results:\n\n", len(results))
			for i, r := range results {
				fmt.Fprintf(out, "%d. %s\n", i+1, strings.TrimSpace(r.Text))
				fmt.Fprintf(out, "   %s:%d (%s)\n", r.Path, r.Line+1, categoryAbbrev(r.Category))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&searchCategory, "category", "c", "all", "Category to search (open, done, idea, principle, all)")
	cmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")

	return cmd
}
