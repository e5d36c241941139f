package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/jarch-dev/blueprint"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand() *cobra.Command {
	var kindFlag string
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Show the changes between two revisions of a document",
		Long: `Decode both revisions, render them in schema key order and print a line
diff. Formatting and key order differences are ignored. The kind is taken
from --kind or from the file name of <old>.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := kindFlag
			if name == "" {
				name = filepath.Base(args[0])
			}
			kind, err := blueprint.ParseDocKind(name)
			if err != nil {
				return fmt.Errorf("%w (use --kind)", err)
			}
			var texts [2]string
			for i, p := range args {
				d, err := blueprint.ReadDocument(kind, p, decodeOptions(cmd.Context()))
				if err != nil {
					return err
				}
				b, err := blueprint.EncodeIndent(d)
				if err != nil {
					return err
				}
				texts[i] = string(b)
			}
			changed := writeLineDiff(cmd.OutOrStdout(), texts[0], texts[1])
			if changed == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no changes")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Document kind (app-config|entity-config)")
	return cmd
}

// writeLineDiff prints added and removed lines prefixed with + and -, and
// returns how many lines changed.
func writeLineDiff(w io.Writer, a, b string) int {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	changed := 0
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if d.Type != diffmatchpatch.DiffEqual {
				changed++
			}
			_, _ = fmt.Fprint(w, prefix, strings.TrimSuffix(line, "\n"), "\n")
		}
	}
	return changed
}
