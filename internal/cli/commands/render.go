package commands

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jarch-dev/blueprint"
)

func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderReport prints the violations of both documents.
func renderReport(w io.Writer, mode string, rep blueprint.Report) error {
	switch mode {
	case "json":
		out := map[string]any{"ready": rep.Ready()}
		out[blueprint.AppConfigDoc.String()] = rep.App
		out[blueprint.EntityGraphDoc.String()] = rep.Graph
		return renderJSON(w, out)
	case "plain":
		for _, sec := range []struct {
			kind blueprint.DocKind
			vs   *blueprint.Violations
		}{{blueprint.AppConfigDoc, rep.App}, {blueprint.EntityGraphDoc, rep.Graph}} {
			for _, v := range sec.vs.All() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sec.kind, v.Path, v.Kind, v.Message)
			}
		}
	default:
		if rep.Ready() {
			_, _ = fmt.Fprintln(w, "ready: no violations")
			return nil
		}
		t := newTable(w, "Document", "Path", "Kind", "Message")
		for _, v := range rep.App.All() {
			t.AppendRow(table.Row{blueprint.AppConfigDoc, v.Path, v.Kind, v.Message})
		}
		for _, v := range rep.Graph.All() {
			t.AppendRow(table.Row{blueprint.EntityGraphDoc, v.Path, v.Kind, v.Message})
		}
		t.AppendFooter(table.Row{"", "", "total", rep.App.Len() + rep.Graph.Len()})
		t.Render()
	}
	return nil
}

// readyErr turns a failing report into ErrNotReady.
func readyErr(rep blueprint.Report) error {
	if rep.Ready() {
		return nil
	}
	return &blueprint.NotReadyError{Report: rep}
}
