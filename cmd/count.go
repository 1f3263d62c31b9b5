package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-tasks/pkg/service"
)

func NewCountCmd(svc **service.Service) *cobra.Command {
	var countJSON bool

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count indexed items per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := (*svc).Count()
			out := cmd.OutOrStdout()
			if countJSON {
				return outputJSON(out, c)
			}
			fmt.Fprintf(out, "open: %d  done: %d  ideas: %d  principles: %d  total: %d\n",
				c.Open, c.Done, c.Ideas, c.Principles, c.Total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&countJSON, "json", false, "Output in JSON format")

	return cmd
}
