package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wawagot/convlog/internal/retention"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the event coordinator, retention sweeper, and backup loop",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	printHeader("🚀 convlog Serve")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coord := a.newCoordinator()
	sweeper := retention.New(a.cfg.Retention, a.store)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return coord.Run(ctx) })
	g.Go(func() error { return coord.RunHealth(ctx) })
	g.Go(func() error { return sweeper.Run(ctx) })
	g.Go(func() error { return a.backups.Run(ctx) })

	fmt.Println("Running. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	fmt.Println("Stopped.")
	return nil
}
