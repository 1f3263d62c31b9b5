package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-tasks/cmd"
	"github.com/mattsolo1/grove-tasks/cmd/config"
	"github.com/mattsolo1/grove-tasks/pkg/service"
)

var (
	svc        *service.Service
	initConfig = config.InitConfig
)

// Registered once per process; cobra keeps initializers in a global list.
func init() {
	cobra.OnInitialize(func() { initConfig() })
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tk",
		Short:         "Index and edit tagged tasks, ideas and principles in markdown",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.WarnLevel)
		if config.Verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}

		if cmd.SkipsService(c) {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		svc, err = service.New(cfg, logrus.NewEntry(logrus.StandardLogger()))
		if err != nil {
			return fmt.Errorf("failed to initialize service: %w", err)
		}
		if err := svc.Load(c.Context()); err != nil {
			return fmt.Errorf("failed to build index: %w", err)
		}
		return nil
	}
	rootCmd.PersistentPostRunE = func(c *cobra.Command, args []string) error {
		if svc == nil {
			return nil
		}
		err := svc.Close()
		svc = nil
		return err
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewListCmd(&svc))
	rootCmd.AddCommand(cmd.NewCountCmd(&svc))
	rootCmd.AddCommand(cmd.NewProjectsCmd(&svc))
	rootCmd.AddCommand(cmd.NewProjectCmd(&svc))
	rootCmd.AddCommand(cmd.NewCompleteCmd(&svc))
	rootCmd.AddCommand(cmd.NewUncompleteCmd(&svc))
	rootCmd.AddCommand(cmd.NewPriorityCmd(&svc))
	rootCmd.AddCommand(cmd.NewSnoozeCmd(&svc))
	rootCmd.AddCommand(cmd.NewTagCmd(&svc))
	rootCmd.AddCommand(cmd.NewSearchCmd(&svc))
	rootCmd.AddCommand(cmd.NewWatchCmd(&svc))
	rootCmd.AddCommand(cmd.NewDoctorCmd(&svc))
	rootCmd.AddCommand(cmd.NewInitCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	return rootCmd
}
