package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jarch-dev/blueprint/internal/config"
)

// NewBundleCommand creates the bundle command.
func NewBundleCommand() *cobra.Command {
	var dir, out string
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Write the multipart hand-off body",
		Long: `Write the multipart/form-data body that the generation service accepts,
with parts appConfig and entityConfig. Fails while either document has
violations. The content type, including the boundary, goes to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, dir)
			if err != nil {
				return err
			}
			b, err := s.Handoff()
			if err != nil {
				_ = renderReport(cmd.ErrOrStderr(), config.Get(ctx).Output, s.Report())
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			ct, err := b.WriteMultipart(w, nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Content-Type:", ct)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Project directory")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}
