package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-tasks/pkg/service"
	"github.com/mattsolo1/grove-tasks/pkg/tags"
)

// rankLabel names a priority rank for display.
func rankLabel(rank int) string {
	switch rank {
	case tags.RankFocus:
		return "focus"
	case tags.RankUrgent:
		return "urgent"
	case tags.RankP0:
		return "p0"
	case tags.RankP1:
		return "p1"
	case tags.RankP2:
		return "p2"
	case tags.RankNone:
		return "-"
	case tags.RankP3:
		return "p3"
	case tags.RankP4:
		return "p4"
	case tags.RankSnoozed:
		return "snoozed"
	}
	return fmt.Sprint(rank)
}

func NewProjectsCmd(svc **service.Service) *cobra.Command {
	var projectsJSON bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects derived from item tags",
		Long: `List every non-system tag carried by open tasks and ideas, with its
item count and the best priority among its items.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects := (*svc).Projects()
			out := cmd.OutOrStdout()
			if projectsJSON {
				return outputJSON(out, projects)
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROJECT\tITEMS\tPRIORITY")
			fmt.Fprintln(w, "-------\t-----\t--------")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%d\t%s\n", p.Tag, p.ItemCount, rankLabel(p.HighestPriorityRank))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&projectsJSON, "json", false, "Output in JSON format")

	return cmd
}

func NewProjectCmd(svc **service.Service) *cobra.Command {
	var projectJSON bool

	cmd := &cobra.Command{
		Use:   "project <tag>",
		Short: "Show one project and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := (*svc).Project(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if projectJSON {
				return outputJSON(out, view)
			}

			fmt.Fprintf(out, "%s (%d items, priority %s)\n", view.Info.Tag, view.Info.ItemCount, rankLabel(view.Info.HighestPriorityRank))
			if doc := view.Document; doc != nil {
				if doc.Title != "" {
					fmt.Fprintf(out, "Title:  %s\n", doc.Title)
				}
				if doc.Status != "" {
					fmt.Fprintf(out, "Status: %s\n", doc.Status)
				}
				if doc.Description != "" {
					fmt.Fprintf(out, "%s\n", doc.Description)
				}
				fmt.Fprintf(out, "Document: %s\n", doc.Path)
			}
			fmt.Fprintln(out)
			printItemsTable(out, view.Items)
			return nil
		},
	}

	cmd.Flags().BoolVar(&projectJSON, "json", false, "Output in JSON format")

	return cmd
}
