package commands

import (
	"github.com/spf13/cobra"

	"github.com/jarch-dev/blueprint"
	"github.com/jarch-dev/blueprint/internal/config"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	var snapshot string
	cmd := &cobra.Command{
		Use:       "schema <app-config|entity-config>",
		Short:     "Print the JSON Schema of a document kind",
		ValidArgs: []string{blueprint.AppConfigDoc.String(), blueprint.EntityGraphDoc.String()},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Long: `Export the path registry of a document kind as JSON Schema. The field type
enum depends on the entities of a graph; pass --snapshot to resolve it against
an existing entity-config document.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := blueprint.ParseDocKind(args[0])
			if err != nil {
				return err
			}
			var root *blueprint.Node
			if snapshot != "" {
				d, err := blueprint.ReadDocument(kind, snapshot, decodeOptions(cmd.Context()))
				if err != nil {
					return err
				}
				root = d.Root()
			}
			config.GetLogger(cmd.Context()).Debug("exporting schema", "kind", kind)
			return renderJSON(cmd.OutOrStdout(), kind.Registry().JSONSchema(root))
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Document to resolve dynamic enums against")
	return cmd
}
