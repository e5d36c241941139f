package blueprint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDocument_RoundTripKeepsSchemaOrder(t *testing.T) {
	src := `{"database":{"poolSize":5,"type":"H2","host":"mem","port":9092,"databaseName":"db","username":"sa","password":"","ddlAuto":"none"},
		"serverPort":8081,"propertiesFormat":"PROPERTIES","buildTool":"GRADLE","applicationName":"Demo","basePackage":"io.demo"}`
	d, err := DecodeDocument(AppConfigDoc, []byte(src))
	require.NoError(t, err)

	out, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), `{"basePackage":"io.demo","applicationName":"Demo","buildTool":"GRADLE"`), string(out))
	assert.Contains(t, string(out), `"database":{"type":"H2","host":"mem","port":9092,`)

	again, err := DecodeDocument(AppConfigDoc, out)
	require.NoError(t, err)
	assert.True(t, d.Equal(again))
	assert.True(t, Validate(again).Empty())
}

func TestDecodeDocument_FillsMissingKeys(t *testing.T) {
	d, err := DecodeDocument(AppConfigDoc, []byte(`{"basePackage":"a.b"}`))
	require.NoError(t, err)
	assert.True(t, d.Root().Equal(mustSet(t, NewAppConfig(), "basePackage", "a.b").Root()))
}

func mustSet(t *testing.T, d *Document, path string, v any) *Document {
	t.Helper()
	res, _ := NewEditor(d).Set(path, v)
	return res.Doc
}

func TestDecodeDocument_StrictIssues(t *testing.T) {
	tests := []struct {
		name string
		kind DocKind
		src  string
		code string
		path string
	}{
		{"unknown key", AppConfigDoc, `{"basePackage":"a","extra":1}`, CodeUnknownKey, "/extra"},
		{"nested unknown key", EntityGraphDoc, `{"entities":[{"name":"a","fields":[],"columns":[]}]}`, CodeUnknownKey, "/entities/0/columns"},
		{"duplicate key", AppConfigDoc, `{"database":{"host":"a","host":"b"}}`, CodeDuplicateKey, "/database/host"},
		{"object expected", AppConfigDoc, `{"database":"pg"}`, CodeInvalidType, "/database"},
		{"array expected", EntityGraphDoc, `{"entities":{}}`, CodeInvalidType, "/entities"},
		{"leaf expected", AppConfigDoc, `{"serverPort":[8080]}`, CodeInvalidType, "/serverPort"},
		{"syntax", AppConfigDoc, `{"basePackage":`, CodeParseError, "/basePackage"},
		{"trailing", AppConfigDoc, `{} {}`, CodeParseError, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument(tt.kind, []byte(tt.src))
			iss, ok := AsIssues(err)
			require.True(t, ok, "expected Issues, got %v", err)
			require.NotEmpty(t, iss)
			assert.Equal(t, tt.code, iss[0].Code)
			assert.Equal(t, tt.path, iss[0].Path)
		})
	}
}

func TestDecodeDocument_Lenient(t *testing.T) {
	d, err := DecodeDocument(AppConfigDoc, []byte(`{"basePackage":"a","basePackage":"b","x":1}`),
		DecodeOptions{AllowDuplicateKeys: true, AllowUnknownKeys: true})
	require.NoError(t, err)
	got, _ := d.Get("basePackage")
	assert.Equal(t, "b", got)
}

func TestDecodeDocument_MaxDepth(t *testing.T) {
	src := strings.Repeat("[", 10) + strings.Repeat("]", 10)
	_, err := DecodeDocument(EntityGraphDoc, []byte(src), DecodeOptions{MaxDepth: 4})
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeParseError, iss[0].Code)
	assert.Contains(t, iss[0].Message, "max depth")
}

func TestDecodeDocument_NullOptionalRelation(t *testing.T) {
	d := decodeGraph(t, `{"entities":[{"name":"a","fields":[{"name":"id","type":"Long","relation":null}]}]}`)
	_, ok := d.At(MustPath("entities[0].fields[0].relation"))
	assert.False(t, ok)
}

func TestEncodeIndent_ReadDocument(t *testing.T) {
	out, err := EncodeIndent(ExampleEntityGraph())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "}\n"))
	assert.Contains(t, string(out), "\n  \"entities\": [")

	p := filepath.Join(t.TempDir(), "entity-config.json")
	require.NoError(t, os.WriteFile(p, out, 0o600))
	d, err := ReadDocument(EntityGraphDoc, p)
	require.NoError(t, err)
	assert.True(t, d.Equal(ExampleEntityGraph()))

	_, err = ReadDocument(EntityGraphDoc, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestIssues_Error(t *testing.T) {
	iss := Issues{
		{Code: CodeUnknownKey, Path: "/a"},
		{Code: CodeUnknownKey, Path: "/b"},
		{Code: CodeUnknownKey, Path: "/c"},
		{Code: CodeUnknownKey, Path: "/d"},
	}
	assert.Equal(t, "unknown_key at /a; unknown_key at /b; unknown_key at /c; ... (total 4)", iss.Error())
	_, ok := AsIssues(nil)
	assert.False(t, ok)
}
