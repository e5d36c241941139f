package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jarch-dev/blueprint"
	"github.com/jarch-dev/blueprint/internal/config"
	"github.com/jarch-dev/blueprint/internal/dbcheck"
)

func contextWithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	var (
		dir     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configured database is reachable",
		Long: `Connect to the database described by app-config.json and ping it.
PostgreSQL and MySQL are probed; other database types are reported as
skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			appPath, _ := docPaths(dir)
			d, err := blueprint.ReadDocument(blueprint.AppConfigDoc, appPath, decodeOptions(ctx))
			if err != nil {
				return err
			}
			target, err := dbcheck.TargetFrom(d)
			if err != nil {
				return err
			}
			res := dbcheck.NewProber(timeout, config.GetLogger(ctx)).Probe(ctx, target)
			return renderProbe(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Project directory")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Connection timeout")
	return cmd
}

func renderProbe(cmd *cobra.Command, res dbcheck.Result) error {
	w := cmd.OutOrStdout()
	title := cases.Title(language.English)
	detail := ""
	if res.Err != nil {
		detail = res.Err.Error()
	}
	if config.Get(cmd.Context()).Output == "json" {
		if err := renderJSON(w, map[string]any{
			"type":      res.Target.Type,
			"address":   res.Target.Address(),
			"status":    res.Status,
			"latencyMs": res.Latency.Milliseconds(),
			"error":     detail,
		}); err != nil {
			return err
		}
	} else {
		t := newTable(w, "Database", "Address", "Status", "Latency", "Detail")
		t.AppendRow(table.Row{
			title.String(res.Target.Type), res.Target.Address(), title.String(string(res.Status)),
			res.Latency.Round(time.Millisecond), detail,
		})
		t.Render()
	}
	if res.Status == dbcheck.StatusFailed {
		return fmt.Errorf("database check failed")
	}
	return nil
}
