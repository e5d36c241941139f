package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jarch-dev/blueprint/handoff"
	"github.com/jarch-dev/blueprint/internal/config"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	var dir, out string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Send the documents to the generation service and fetch the archive",
		Long: `Submit both documents to the project generation service, follow its
progress log and download the generated archive. Nothing is sent while
either document has violations. Errors reported by the service are printed
as received.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.Get(ctx)
			logger := config.GetLogger(ctx)

			s, err := openSession(ctx, dir)
			if err != nil {
				return err
			}
			b, err := s.Handoff()
			if err != nil {
				_ = renderReport(cmd.ErrOrStderr(), cfg.Output, s.Report())
				return err
			}

			opts := []handoff.Option{handoff.WithLogger(logger)}
			if cfg.Generator.Token != "" {
				opts = append(opts, handoff.WithToken(cfg.Generator.Token))
			}
			client := handoff.NewClient(cfg.Generator.URL, opts...)
			submitCtx, cancel := contextWithTimeout(ctx, cfg.Generator.Timeout)
			id, err := client.Submit(submitCtx, b)
			cancel()
			if err != nil {
				return err
			}
			errOut := cmd.ErrOrStderr()
			_, _ = fmt.Fprintf(errOut, "generation %s started\n", id)

			streamCtx, cancel := contextWithTimeout(ctx, cfg.Generator.StreamTimeout)
			err = client.Stream(streamCtx, id, func(ev handoff.LogEvent) error {
				_, _ = fmt.Fprintf(errOut, "[%s] %s\n", strings.ToUpper(ev.Level), ev.Message)
				return nil
			})
			cancel()
			if err != nil {
				return err
			}

			if out == "" {
				out = id + ".zip"
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			downloadCtx, cancel := contextWithTimeout(ctx, cfg.Generator.Timeout)
			defer cancel()
			n, err := client.Download(downloadCtx, id, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Project directory")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Archive path (default <id>.zip)")
	return cmd
}
