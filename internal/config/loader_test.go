package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "", "")
	fs.String("store", "", "")
	fs.String("output", "", "")
	fs.Int("history-depth", 0, "")
	fs.Bool("unrelated", false, "")
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blueprint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg.Config)
	assert.Empty(t, cfg.File)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
log:
  level: info
store:
  path: from-file.db
history:
  depth: 10
generator:
  url: http://gen.internal
  timeout: 5s
output: json
`)
	t.Setenv("BLUEPRINT_STORE_PATH", "from-env.db")
	t.Setenv("BLUEPRINT_DECODE_MAX_DEPTH", "8")
	t.Setenv("BLUEPRINT_OUTPUT", "plain")
	t.Setenv("BLUEPRINT_GENERATOR_STREAM_TIMEOUT", "10m")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--output", "table", "--unrelated"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "info", cfg.Log.Level, "file over default")
	assert.Equal(t, "from-env.db", cfg.Store.Path, "env over file")
	assert.Equal(t, 8, cfg.Decode.MaxDepth)
	assert.Equal(t, "table", cfg.Output, "flag over env")
	assert.Equal(t, 10, cfg.History.Depth, "unset flags do not override")
	assert.Equal(t, 5*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Generator.StreamTimeout)
	assert.Equal(t, "http://gen.internal", cfg.Generator.URL)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "log:\n  format: xml\nhistory:\n  depth: -1\ngenerator:\n  stream_timeout: -1s\n")
	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
	assert.Contains(t, err.Error(), "history.depth")
	assert.Contains(t, err.Error(), "generator.stream_timeout")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"BLUEPRINT_LOG_LEVEL":                "log.level",
		"BLUEPRINT_DECODE_MAX_DEPTH":         "decode.max_depth",
		"BLUEPRINT_GENERATOR_TOKEN":          "generator.token",
		"BLUEPRINT_GENERATOR_STREAM_TIMEOUT": "generator.stream_timeout",
		"BLUEPRINT_LANG":                     "lang",
		"BLUEPRINT_HISTORY_DEPTH":            "history.depth",
	}
	for in, want := range cases {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := LogConfig{Level: "info", Format: "json"}.NewLogger(&buf)
	l.Debug("hidden")
	l.Info("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()))
}

func TestContextConfig(t *testing.T) {
	assert.Equal(t, DefaultProject, Get(context.Background()).Project)
	c := &Loaded{Config: Default()}
	c.Project = "shop"
	assert.Equal(t, "shop", Get(WithConfig(context.Background(), c)).Project)
}
