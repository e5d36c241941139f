package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jarch-dev/blueprint"
	"github.com/jarch-dev/blueprint/internal/config"
)

// NewNewCommand creates the new command.
func NewNewCommand() *cobra.Command {
	return newScaffoldCommand("new [dir]", "Write empty documents",
		`Write app-config.json and entity-config.json in their default shape.
The app-config document starts with every required field missing.`,
		blueprint.NewSession)
}

// NewExampleCommand creates the example command.
func NewExampleCommand() *cobra.Command {
	return newScaffoldCommand("example [dir]", "Write the e-commerce example documents",
		`Write the known-good e-commerce example: three entities (user, product,
order) and a PostgreSQL app configuration.`,
		blueprint.ExampleSession)
}

func newScaffoldCommand(use, short, long string, start func(...blueprint.EditorOption) *blueprint.Session) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if !force {
				for _, p := range []string{docPath(dir, blueprint.AppConfigDoc), docPath(dir, blueprint.EntityGraphDoc)} {
					if _, err := os.Stat(p); err == nil {
						return fmt.Errorf("%s already exists (use --force to overwrite)", p)
					} else if !errors.Is(err, os.ErrNotExist) {
						return err
					}
				}
			}
			s := start(editorOptions(cmd.Context())...)
			if err := writeSession(s, dir); err != nil {
				return err
			}
			config.GetLogger(cmd.Context()).Info("documents written", "dir", dir)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s in %s (%d violation(s))\n",
				blueprint.AppConfigDoc.FileName(), blueprint.EntityGraphDoc.FileName(), dir,
				s.Report().App.Len()+s.Report().Graph.Len())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing documents")
	return cmd
}

func docPath(dir string, kind blueprint.DocKind) string {
	app, graph := docPaths(dir)
	if kind == blueprint.EntityGraphDoc {
		return graph
	}
	return app
}
