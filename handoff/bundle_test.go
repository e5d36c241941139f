package handoff

import (
	"bytes"
	"mime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundle_MultipartRoundTrip(t *testing.T) {
	b := Bundle{AppConfig: []byte(`{"a":1}`), EntityConfig: []byte(`{"entities":[]}`)}

	var buf bytes.Buffer
	ct, err := b.WriteMultipart(&buf, map[string]string{"saveName": "draft"})
	require.NoError(t, err)

	mt, params, err := mime.ParseMediaType(ct)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mt)

	got, err := ParseMultipart(&buf, params["boundary"])
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestBundle_MultipartFileNames(t *testing.T) {
	b := Bundle{AppConfig: []byte(`{}`), EntityConfig: []byte(`{}`)}
	body, _, err := b.Multipart(nil)
	require.NoError(t, err)
	s := body.String()
	assert.Contains(t, s, `name="appConfig"; filename="app-config.json"`)
	assert.Contains(t, s, `name="entityConfig"; filename="entity-config.json"`)
}

func TestParseMultipart_MissingPart(t *testing.T) {
	b := Bundle{AppConfig: []byte(`{}`)}
	body, ct, err := b.Multipart(nil)
	require.NoError(t, err)
	_, params, _ := mime.ParseMediaType(ct)
	_, err = ParseMultipart(body, params["boundary"])
	require.Error(t, err)
}

func TestBundle_WriteReadDir(t *testing.T) {
	dir := t.TempDir()
	b := Bundle{AppConfig: []byte("app\n"), EntityConfig: []byte("graph\n")}
	require.NoError(t, b.WriteDir(dir))

	got, err := ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, b, got)
	assert.False(t, got.Empty())
}
