package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-tasks/pkg/service"
)

// errStale is reported when the target line changed after it was indexed.
var errStale = errors.New("line changed since it was indexed; the index has been refreshed, check the reference and retry")

// runMutation applies m to every reference in refs, stopping at the first
// failure.
func runMutation(cmd *cobra.Command, s *service.Service, verb string, refs []string, m service.Mutation) error {
	for _, ref := range refs {
		ok, err := s.Apply(cmd.Context(), ref, m)
		if err != nil {
			return fmt.Errorf("%s %s: %w", verb, ref, err)
		}
		if !ok {
			return fmt.Errorf("%s %s: %w", verb, ref, errStale)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, ref)
	}
	return nil
}

func NewCompleteCmd(svc **service.Service) *cobra.Command {
	var doneTag string

	cmd := &cobra.Command{
		Use:     "complete <path:line>...",
		Short:   "Mark tasks as done",
		Aliases: []string{"done"},
		Long: `Check the box of each task, replace its task tag with the done tag and
stamp today's date after it.

Examples:
  tk complete todo.md:12
  tk done work/plan.md:3 work/plan.md:4
  tk complete --as DONE todo.md:12`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			return runMutation(cmd, s, "completed", args, s.Complete(doneTag))
		},
	}

	cmd.Flags().StringVar(&doneTag, "as", "", "Spelling of the done tag to write (default: the configured done tag)")

	return cmd
}

func NewUncompleteCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:     "uncomplete <path:line>...",
		Short:   "Reopen completed tasks",
		Aliases: []string{"reopen"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			return runMutation(cmd, s, "reopened", args, s.Uncomplete())
		},
	}
}

func NewPriorityCmd(svc **service.Service) *cobra.Command {
	var clearPriority bool

	cmd := &cobra.Command{
		Use:   "priority <path:line> [tag]",
		Short: "Set or clear the priority tag of an item",
		Long: `Replace every priority tag on the line with the given one.

Examples:
  tk priority todo.md:4 p0
  tk priority todo.md:4 --clear`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			if clearPriority {
				return runMutation(cmd, s, "cleared priority of", args[:1], s.ClearPriority())
			}
			if len(args) < 2 {
				return errors.New("a priority tag is required unless --clear is given")
			}
			return runMutation(cmd, s, "set "+args[1]+" on", args[:1], s.SetPriority(args[1]))
		},
	}

	cmd.Flags().BoolVar(&clearPriority, "clear", false, "Remove every priority tag")

	return cmd
}

func NewSnoozeCmd(svc **service.Service) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "snooze <path:line>...",
		Short: "Snooze items",
		Long:  `Replace the priority tag of each item with a snooze tag (the first configured one by default).`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			return runMutation(cmd, s, "snoozed", args, s.Snooze(tag))
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Snooze tag to use")

	return cmd
}

func NewTagCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Add or remove tags on an item",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <path:line> <tag>",
		Short: "Append a tag to an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			return runMutation(cmd, s, "tagged", args[:1], s.AddTag(args[1]))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "remove <path:line> <tag>",
		Short:   "Remove a tag from an item",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			return runMutation(cmd, s, "untagged", args[:1], s.RemoveTag(args[1]))
		},
	})

	return cmd
}
