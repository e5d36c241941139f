package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jarch-dev/blueprint"
	"github.com/jarch-dev/blueprint/internal/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var lint bool
	cmd := &cobra.Command{
		Use:   "validate [app-config.json entity-config.json]",
		Short: "Validate both documents",
		Long: `Decode and validate the two documents. Without arguments the files of the
current directory are used. The command fails when either document has
violations, so it can gate a hand-off in scripts.`,
		Args: cobra.MatchAll(cobra.MaximumNArgs(2), func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("need both documents or neither")
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			appPath, graphPath := docPaths(".")
			if len(args) == 2 {
				appPath, graphPath = args[0], args[1]
			}
			if lint {
				if err := lintDuplicates(cmd, appPath, graphPath); err != nil {
					return err
				}
			}
			app, graph, err := readPair(ctx, appPath, graphPath)
			if err != nil {
				return err
			}
			rep := blueprint.Report{App: blueprint.Validate(app), Graph: blueprint.Validate(graph)}
			config.GetLogger(ctx).Debug("validated", "app", rep.App.Len(), "graph", rep.Graph.Len())
			if err := renderReport(cmd.OutOrStdout(), config.Get(ctx).Output, rep); err != nil {
				return err
			}
			return readyErr(rep)
		},
	}
	cmd.Flags().BoolVar(&lint, "lint", false, "List every duplicate key before decoding")
	return cmd
}

func lintDuplicates(cmd *cobra.Command, paths ...string) error {
	found := 0
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		iss, err := blueprint.DuplicateKeys(data, -1)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		for _, is := range iss {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s %s\n", p, is.Path, is.Message)
		}
		found += len(iss)
	}
	if found > 0 {
		return fmt.Errorf("%d duplicate key(s)", found)
	}
	return nil
}
