package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jarch-dev/blueprint"
	"github.com/jarch-dev/blueprint/internal/config"
	"github.com/jarch-dev/blueprint/internal/watch"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var (
		dir      string
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate the documents whenever they change",
		Long: `Watch the project directory and print a fresh report each time
app-config.json or entity-config.json is written. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), dir, debounce)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Project directory")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-validating")
	return cmd
}

func runWatch(ctx context.Context, w io.Writer, dir string, debounce time.Duration) error {
	logger := config.GetLogger(ctx)
	wt, err := watch.New(watch.Config{
		Dir:      dir,
		Names:    []string{blueprint.AppConfigDoc.FileName(), blueprint.EntityGraphDoc.FileName()},
		Debounce: debounce,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return wt.Run(ctx) })
	g.Go(func() error {
		report(ctx, w, dir)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-wt.Changes():
				report(ctx, w, dir)
			case err := <-wt.Errors():
				logger.Warn("watch error", "error", err)
			}
		}
	})
	return g.Wait()
}

func report(ctx context.Context, w io.Writer, dir string) {
	appPath, graphPath := docPaths(dir)
	_, _ = fmt.Fprintf(w, "--- %s\n", time.Now().Format(time.TimeOnly))
	app, graph, err := readPair(ctx, appPath, graphPath)
	if err != nil {
		_, _ = fmt.Fprintln(w, err)
		return
	}
	rep := blueprint.Report{App: blueprint.Validate(app), Graph: blueprint.Validate(graph)}
	if err := renderReport(w, config.Get(ctx).Output, rep); err != nil {
		config.GetLogger(ctx).Warn("render failed", "error", err)
	}
}
