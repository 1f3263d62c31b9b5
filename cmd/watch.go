package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mattsolo1/grove-tasks/pkg/service"
)

func NewWatchCmd(svc **service.Service) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the index up to date while documents change",
		Long: `Watch the content root and rescan documents as they are created, edited,
renamed or deleted. Prints the item counts after every index update until
interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			logger := logrus.WithField("component", "watch")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			updates := make(chan struct{}, 1)
			tok := s.Scanner.Subscribe(func() {
				select {
				case updates <- struct{}{}:
				default:
				}
			})
			defer s.Scanner.Unsubscribe(tok)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return s.Watch(gctx)
			})
			g.Go(func() error {
				out := cmd.OutOrStdout()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-updates:
						if quiet {
							continue
						}
						c := s.Count()
						fmt.Fprintf(out, "open: %d  done: %d  ideas: %d  principles: %d\n", c.Open, c.Done, c.Ideas, c.Principles)
					}
				}
			})

			logger.Info("watching for changes, press Ctrl-C to stop")
			if err := g.Wait(); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print counts on updates")

	return cmd
}
