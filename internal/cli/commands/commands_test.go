package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarch-dev/blueprint"
	"github.com/jarch-dev/blueprint/handoff"
	"github.com/jarch-dev/blueprint/internal/cli/testutil"
	"github.com/jarch-dev/blueprint/internal/config"
)

func exampleDir(ctx context.Context, t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, _, err := testutil.Run(ctx, NewExampleCommand(), dir)
	require.NoError(t, err)
	return dir
}

func TestScaffoldCommands(t *testing.T) {
	ctx := testutil.Context(t, nil)
	dir := t.TempDir()

	out, _, err := testutil.Run(ctx, NewNewCommand(), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "10 violation(s)")

	_, _, err = testutil.Run(ctx, NewExampleCommand(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, _, err = testutil.Run(ctx, NewExampleCommand(), "--force", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "0 violation(s)")

	d, err := blueprint.ReadDocument(blueprint.EntityGraphDoc, filepath.Join(dir, "entity-config.json"))
	require.NoError(t, err)
	assert.Equal(t, 3, d.Stats().Entities)
}

func TestValidateCommand(t *testing.T) {
	ctx := testutil.Context(t, nil)
	dir := exampleDir(ctx, t)
	app, graph := docPaths(dir)

	out, _, err := testutil.Run(ctx, NewValidateCommand(), app, graph)
	require.NoError(t, err)
	assert.Contains(t, out, "ready")

	fresh := t.TempDir()
	_, _, err = testutil.Run(ctx, NewNewCommand(), fresh)
	require.NoError(t, err)
	app, graph = docPaths(fresh)
	out, _, err = testutil.Run(ctx, NewValidateCommand(), app, graph)
	require.ErrorIs(t, err, blueprint.ErrNotReady)
	assert.Contains(t, out, "basePackage")
	assert.Contains(t, out, "required_field_missing")

	_, _, err = testutil.Run(ctx, NewValidateCommand(), app)
	assert.Error(t, err)
}

func TestValidateCommand_JSONAndLint(t *testing.T) {
	cfg := config.Default()
	cfg.Output = "json"
	ctx := testutil.Context(t, cfg)
	dir := exampleDir(ctx, t)
	app, graph := docPaths(dir)

	out, _, err := testutil.Run(ctx, NewValidateCommand(), app, graph)
	require.NoError(t, err)
	assert.Contains(t, out, `"ready": true`)

	require.NoError(t, os.WriteFile(app, []byte(`{"basePackage":"a","basePackage":"b"}`), 0o600))
	_, errOut, err := testutil.Run(ctx, NewValidateCommand(), "--lint", app, graph)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 duplicate key")
	assert.Contains(t, errOut, "/basePackage")
}

func TestApplyCommand(t *testing.T) {
	ctx := testutil.Context(t, nil)
	dir := exampleDir(ctx, t)
	script := filepath.Join(t.TempDir(), "edit.yaml")
	require.NoError(t, os.WriteFile(script, []byte(`
steps:
  - op: replace
    path: serverPort
    value: 9000
  - op: addEntity
  - op: replace
    path: entities[3].name
    value: invoice
  - op: addField
    entity: 3
    relation: true
  - op: replace
    path: entities[3].fields[0].relation.targetEntity
    value: ghost
`), 0o600))

	out, _, err := testutil.Run(ctx, NewApplyCommand(), "--dir", dir, script)
	require.NoError(t, err)
	assert.Contains(t, out, "addField")
	assert.Contains(t, out, "dangling_reference")

	d, err := blueprint.ReadDocument(blueprint.AppConfigDoc, filepath.Join(dir, "app-config.json"))
	require.NoError(t, err)
	port, _ := d.Get("serverPort")
	assert.Equal(t, 9000.0, port)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("steps:\n  - op: replace\n    path: database\n    value: {}\n"), 0o600))
	_, _, err = testutil.Run(ctx, NewApplyCommand(), "--dir", dir, bad)
	require.Error(t, err)
	assert.True(t, blueprint.IsRejected(err))
}

func TestSchemaCommand(t *testing.T) {
	ctx := testutil.Context(t, nil)
	dir := exampleDir(ctx, t)

	out, _, err := testutil.Run(ctx, NewSchemaCommand(), "app-config")
	require.NoError(t, err)
	assert.Contains(t, out, `"serverPort"`)
	assert.Contains(t, out, `"maximum": 65535`)

	_, graph := docPaths(dir)
	out, _, err = testutil.Run(ctx, NewSchemaCommand(), "--snapshot", graph, "entity-config")
	require.NoError(t, err)
	assert.Contains(t, out, `"product"`)

	_, _, err = testutil.Run(ctx, NewSchemaCommand(), "pom")
	assert.Error(t, err)
}

func TestDiffCommand(t *testing.T) {
	ctx := testutil.Context(t, nil)
	dir := exampleDir(ctx, t)
	app, _ := docPaths(dir)

	other := filepath.Join(t.TempDir(), "app-config.json")
	s := blueprint.ExampleSession()
	_, err := s.App.Set("serverPort", 9090)
	require.NoError(t, err)
	b, err := blueprint.EncodeIndent(s.App.Document())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(other, b, 0o600))

	out, _, err := testutil.Run(ctx, NewDiffCommand(), app, other)
	require.NoError(t, err)
	assert.Contains(t, out, `-   "serverPort": 8080,`)
	assert.Contains(t, out, `+   "serverPort": 9090,`)

	out, _, err = testutil.Run(ctx, NewDiffCommand(), app, app)
	require.NoError(t, err)
	assert.Contains(t, out, "no changes")
}

func TestWriteLineDiff(t *testing.T) {
	var sb strings.Builder
	n := writeLineDiff(&sb, "a\nb\nc\n", "a\nx\nc\n")
	assert.Equal(t, 2, n)
	assert.Equal(t, "  a\n- b\n+ x\n  c\n", sb.String())
}

func TestSaveLoadCommands(t *testing.T) {
	ctx := testutil.Context(t, nil)
	dir := exampleDir(ctx, t)

	out, _, err := testutil.Run(ctx, NewSaveCommand(), "--dir", dir, "v1")
	require.NoError(t, err)
	assert.Contains(t, out, "saved default/v1")

	out, _, err = testutil.Run(ctx, NewSavesCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "v1")

	restored := filepath.Join(t.TempDir(), "restored")
	_, _, err = testutil.Run(ctx, NewLoadCommand(), "--dir", restored, "v1")
	require.NoError(t, err)
	b, err := handoff.ReadDir(restored)
	require.NoError(t, err)
	s, err := blueprint.LoadSession(b.AppConfig, b.EntityConfig)
	require.NoError(t, err)
	assert.True(t, s.Ready())

	_, _, err = testutil.Run(ctx, NewSavesCommand(), "--rm", "v1")
	require.NoError(t, err)
	out, _, err = testutil.Run(ctx, NewSavesCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "(no saves)")

	_, _, err = testutil.Run(ctx, NewLoadCommand(), "--dir", restored, "v1")
	assert.Error(t, err)
}

func TestBundleCommand(t *testing.T) {
	ctx := testutil.Context(t, nil)
	dir := exampleDir(ctx, t)
	target := filepath.Join(t.TempDir(), "body")

	_, errOut, err := testutil.Run(ctx, NewBundleCommand(), "--dir", dir, "--out", target)
	require.NoError(t, err)
	assert.Contains(t, errOut, "multipart/form-data; boundary=")

	boundary := strings.TrimSpace(errOut[strings.Index(errOut, "boundary=")+len("boundary="):])
	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	b, err := handoff.ParseMultipart(f, boundary)
	require.NoError(t, err)
	assert.Contains(t, string(b.EntityConfig), `"order"`)

	empty := t.TempDir()
	_, _, err = testutil.Run(ctx, NewNewCommand(), empty)
	require.NoError(t, err)
	_, _, err = testutil.Run(ctx, NewBundleCommand(), "--dir", empty)
	assert.ErrorIs(t, err, blueprint.ErrNotReady)
}

func TestGenerateCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /jarch/generate-project", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"id":"g1"}`)
	})
	mux.HandleFunc("GET /jarch/generate-project/stream/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "event: log\ndata: {\"level\":\"info\",\"message\":\"rendering\"}\n\nevent: archiveReady\ndata: {}\n\n")
	})
	mux.HandleFunc("GET /jarch/generate-project/download/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "PK-archive")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.Default()
	cfg.Generator.URL = srv.URL
	ctx := testutil.Context(t, cfg)
	dir := exampleDir(ctx, t)
	archive := filepath.Join(t.TempDir(), "out.zip")

	out, errOut, err := testutil.Run(ctx, NewGenerateCommand(), "--dir", dir, "--out", archive)
	require.NoError(t, err)
	assert.Contains(t, errOut, "[INFO] rendering")
	assert.Contains(t, out, "10 bytes")
	data, err := os.ReadFile(archive)
	require.NoError(t, err)
	assert.Equal(t, "PK-archive", string(data))
}

func TestGenerateCommand_StreamOutlivesRequestTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /jarch/generate-project", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"id":"g2"}`)
	})
	mux.HandleFunc("GET /jarch/generate-project/stream/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "event: log\ndata: {\"level\":\"info\",\"message\":\"compiling\"}\n\n")
		w.(http.Flusher).Flush()
		time.Sleep(300 * time.Millisecond)
		_, _ = fmt.Fprint(w, "event: archiveReady\ndata: {}\n\n")
	})
	mux.HandleFunc("GET /jarch/generate-project/download/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "PK")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.Default()
	cfg.Generator.URL = srv.URL
	cfg.Generator.Timeout = 100 * time.Millisecond
	ctx := testutil.Context(t, cfg)
	dir := exampleDir(ctx, t)

	_, errOut, err := testutil.Run(ctx, NewGenerateCommand(), "--dir", dir, "--out", filepath.Join(t.TempDir(), "g2.zip"))
	require.NoError(t, err)
	assert.Contains(t, errOut, "[INFO] compiling")

	cfg.Generator.StreamTimeout = 50 * time.Millisecond
	_, _, err = testutil.Run(ctx, NewGenerateCommand(), "--dir", dir, "--out", filepath.Join(t.TempDir(), "g3.zip"))
	require.Error(t, err)
}

func TestDoctorCommand_Skipped(t *testing.T) {
	ctx := testutil.Context(t, nil)
	dir := t.TempDir()
	s := blueprint.ExampleSession()
	_, err := s.App.Set("database.type", "MONGODB")
	require.NoError(t, err)
	require.NoError(t, writeSession(s, dir))

	out, _, err := testutil.Run(ctx, NewDoctorCommand(), "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Mongodb")
	assert.Contains(t, out, "Skipped")
}
