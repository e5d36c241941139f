// Package testutil provides helpers for CLI tests.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jarch-dev/blueprint/internal/config"
)

// tWriter forwards log output to t.Log.
type tWriter struct{ t *testing.T }

func (w tWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

// NewTestLogger returns a debug logger writing through t.Log.
func NewTestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Context returns a context carrying cfg (defaults when nil, with the store
// in a temp dir) and a test logger.
func Context(t *testing.T, cfg *config.Config) context.Context {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
		cfg.Store.Path = filepath.Join(t.TempDir(), "saves.db")
	}
	ctx := config.WithConfig(context.Background(), &config.Loaded{Config: cfg})
	return config.WithLogger(ctx, NewTestLogger(t))
}

// Run executes cmd with args and returns stdout, stderr and the error.
func Run(ctx context.Context, cmd *cobra.Command, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}
