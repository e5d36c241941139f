package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jarch-dev/blueprint/editscript"
	"github.com/jarch-dev/blueprint/internal/config"
)

// NewApplyCommand creates the apply command.
func NewApplyCommand() *cobra.Command {
	var dir, out string
	cmd := &cobra.Command{
		Use:   "apply <script.yaml>",
		Short: "Apply a YAML edit script to the documents",
		Long: `Run the steps of an edit script through the editor and write the result.
The script stops at the first rejected step; documents are only written when
every step ran. Values that violate a constraint are still written and listed
in the report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			script, err := editscript.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(ctx, dir)
			if err != nil {
				return err
			}
			outcomes, applyErr := editscript.Apply(s, script)

			w := cmd.OutOrStdout()
			t := newTable(w, "#", "Op", "Result")
			for _, o := range outcomes {
				res := "ok"
				if o.Err != nil {
					res = o.Err.Error()
				}
				t.AppendRow(table.Row{o.Index, o.Step.Op, res})
			}
			t.Render()
			if applyErr != nil {
				return applyErr
			}

			if out == "" {
				out = dir
			}
			if err := writeSession(s, out); err != nil {
				return err
			}
			config.GetLogger(ctx).Info("script applied", "steps", len(outcomes), "dir", out)
			_, _ = fmt.Fprintln(w)
			return renderReport(w, config.Get(ctx).Output, s.Report())
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Project directory to read")
	cmd.Flags().StringVar(&out, "out", "", "Directory to write (default: --dir)")
	return cmd
}
