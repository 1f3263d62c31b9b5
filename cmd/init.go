package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-tasks/cmd/config"
	pkgconfig "github.com/mattsolo1/grove-tasks/pkg/config"
)

// skipServiceAnnotation marks commands that run without loading the index.
const skipServiceAnnotation = "tk/skip-service"

// SkipsService reports whether cmd runs without the service.
func SkipsService(cmd *cobra.Command) bool {
	return cmd.Annotations[skipServiceAnnotation] == "true"
}

func NewInitCmd() *cobra.Command {
	var initForce bool

	cmd := &cobra.Command{
		Use:   "init [root]",
		Short: "Write a config file for tk",
		Long: `Write a config file with the default settings, using the given directory
(or the current one) as the content root.

The file goes to $HOME/.config/tk/config.yaml unless --config is given.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipServiceAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			} else if config.RootOverride != "" {
				root = config.RootOverride
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve root: %w", err)
			}
			if info, err := os.Stat(abs); err != nil || !info.IsDir() {
				return fmt.Errorf("content root %s is not a directory", abs)
			}

			path, err := config.Path()
			if err != nil {
				return err
			}

			cfg := pkgconfig.Default()
			cfg.Root = abs
			if err := config.WriteFile(path, cfg, initForce); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nContent root: %s\n", path, abs)
			fmt.Fprintln(cmd.OutOrStdout(), "\nReady to use! Try 'tk list' to see your open tasks.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")

	return cmd
}
