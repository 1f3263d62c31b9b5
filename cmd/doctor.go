package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-tasks/cmd/config"
	"github.com/mattsolo1/grove-tasks/pkg/service"
)

func NewDoctorCmd(svc **service.Service) *cobra.Command {
	var doctorFix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check documents for priority conflicts",
		Long: `The doctor command checks for items that carry more than one priority
tag and offers to fix them by keeping only the highest-ranked one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			out := cmd.OutOrStdout()

			if f := config.ConfigFileUsed(); f != "" {
				fmt.Fprintf(out, "Config: %s\n", f)
			} else {
				fmt.Fprintln(out, "Config: defaults (no config file found)")
			}
			fmt.Fprintf(out, "Root:   %s\n", s.Config.Get().Root)
			if s.Index.UsesFTS() {
				fmt.Fprintln(out, "Search: full-text (FTS5)")
			} else {
				fmt.Fprintln(out, "Search: substring (FTS5 unavailable)")
			}
			st := s.Status()
			fmt.Fprintf(out, "Index:  %d documents, %d items", st.Documents, st.Items)
			if st.Generation != "" {
				fmt.Fprintf(out, " (generation %s, scanned %s)", st.Generation, st.ScannedAt.Local().Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out)

			conflicts := s.PriorityConflicts()
			fixed := 0
			for _, c := range conflicts {
				fmt.Fprintf(out, "❗ %s carries %s\n", service.Ref(c.Item), strings.Join(c.Tags, ", "))
				if !doctorFix {
					continue
				}
				ok, err := s.FixConflict(cmd.Context(), c)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(out, "   ✅ kept %s\n", c.Keep)
					fixed++
				} else {
					fmt.Fprintln(out, "   line changed since it was indexed, skipped")
				}
			}

			if len(conflicts) == 0 {
				fmt.Fprintln(out, "✨ No issues found!")
				return nil
			}
			fmt.Fprintf(out, "\n📊 Summary: Found %d issue(s)", len(conflicts))
			if doctorFix {
				fmt.Fprintf(out, ", fixed %d", fixed)
			}
			fmt.Fprintln(out)
			if !doctorFix {
				fmt.Fprintln(out, "\n💡 Run 'tk doctor --fix' to keep only the highest priority tag on each line")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&doctorFix, "fix", false, "Automatically fix issues")

	return cmd
}
