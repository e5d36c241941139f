package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jarch-dev/blueprint"
	"github.com/jarch-dev/blueprint/handoff"
	"github.com/jarch-dev/blueprint/internal/config"
	"github.com/jarch-dev/blueprint/internal/store"
)

func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	path := config.Get(ctx).Store.Path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
	}
	return store.Open(path, store.WithLogger(config.GetLogger(ctx)))
}

// NewSaveCommand creates the save command.
func NewSaveCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Store the current documents under a name",
		Long: `Store both documents of the project directory in the local saves database,
keyed by project and name. Drafts with violations can be saved; an existing
save with the same name is overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, dir)
			if err != nil {
				return err
			}
			app, err := blueprint.EncodeIndent(s.App.Document())
			if err != nil {
				return err
			}
			graph, err := blueprint.EncodeIndent(s.Graph.Document())
			if err != nil {
				return err
			}
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			project := config.Get(ctx).Project
			sv, err := st.Put(ctx, project, args[0], app, graph)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s/%s (%s)\n", sv.Project, sv.Name, sv.ID)
			if !s.Ready() {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "note: the saved documents are not ready for hand-off")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Project directory")
	return cmd
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Restore a saved document pair into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sv, err := st.Get(ctx, config.Get(ctx).Project, args[0])
			if err != nil {
				return err
			}
			if _, err := blueprint.LoadSession(sv.AppConfig, sv.EntityGraph); err != nil {
				return fmt.Errorf("save %s is corrupt: %w", args[0], err)
			}
			if err := (handoff.Bundle{AppConfig: sv.AppConfig, EntityConfig: sv.EntityGraph}).WriteDir(dir); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "restored %s/%s into %s\n", sv.Project, sv.Name, dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write")
	return cmd
}

// NewSavesCommand creates the saves command.
func NewSavesCommand() *cobra.Command {
	var (
		all    bool
		remove string
	)
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "List or delete saves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			project := config.Get(ctx).Project
			if remove != "" {
				if err := st.Delete(ctx, project, remove); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", project, remove)
				return nil
			}
			if all {
				project = ""
			}
			list, err := st.List(ctx, project)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch config.Get(ctx).Output {
			case "json":
				return renderJSON(w, list)
			case "plain":
				for _, sm := range list {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", sm.Project, sm.Name, sm.Size, sm.UpdatedAt.Format(time.RFC3339))
				}
				return nil
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(w, "(no saves)")
				return nil
			}
			t := newTable(w, "Project", "Name", "Bytes", "Updated")
			for _, sm := range list {
				t.AppendRow(table.Row{sm.Project, sm.Name, sm.Size, sm.UpdatedAt.Local().Format(time.DateTime)})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "List saves of every project")
	cmd.Flags().StringVar(&remove, "rm", "", "Delete the named save")
	return cmd
}
