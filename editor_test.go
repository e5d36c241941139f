package blueprint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceValue_CommitsInvalidValue(t *testing.T) {
	e := NewEditor(ExampleAppConfig())
	res, err := e.Set("buildTool", "ANT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEnumViolation))
	assert.False(t, IsRejected(err))

	var ee *EditError
	require.ErrorAs(t, err, &ee)
	assert.True(t, ee.Committed())
	assert.Equal(t, "buildTool", ee.Path.String())

	got, _ := res.Doc.Get("buildTool")
	assert.Equal(t, "ANT", got, "invalid value stays visible")
	v, ok := res.Violations.Get("buildTool")
	require.True(t, ok)
	assert.Equal(t, EnumViolation, v.Kind)
	assert.False(t, res.Ready())

	res, err = e.Set("buildTool", "GRADLE")
	require.NoError(t, err)
	assert.True(t, res.Ready())
}

func TestReplaceValue_OwnsCommittedValue(t *testing.T) {
	e := NewEditor(ExampleAppConfig())
	val := []any{"a", map[string]any{"k": "v"}}
	res, err := e.Set("applicationName", val)
	require.ErrorIs(t, err, ErrTypeMismatch)
	before, err := res.Doc.MarshalJSON()
	require.NoError(t, err)

	val[0] = "changed"
	val[1].(map[string]any)["k"] = "changed"
	after, err := res.Doc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	got, _ := res.Doc.Get("applicationName")
	got.([]any)[0] = "changed"
	again, _ := res.Doc.Get("applicationName")
	assert.Equal(t, []any{"a", map[string]any{"k": "v"}}, again)
}

func TestReplaceValue_ErrorMatchesViolation(t *testing.T) {
	tests := []struct {
		path  string
		value any
		want  Kind
	}{
		{"serverPort", "", RequiredFieldMissing},
		{"serverPort", 0, RequiredFieldMissing},
		{"serverPort", "8080", TypeMismatch},
		{"database.port", false, TypeMismatch},
		{"buildTool", "", RequiredFieldMissing},
		{"database.poolSize", "", TypeMismatch},
		{"database.poolSize", 500, RangeViolation},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := NewEditor(ExampleAppConfig()).Set(tt.path, tt.value)
			var ee *EditError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.want, ee.Kind)
			v, ok := res.Violations.Get(tt.path)
			require.True(t, ok)
			assert.Equal(t, ee.Kind, v.Kind)
		})
	}
}

func TestReplaceValue_Kinds(t *testing.T) {
	tests := []struct {
		path  string
		value any
		want  error
	}{
		{"serverPort", 80, ErrRangeViolation},
		{"serverPort", "8080", ErrTypeMismatch},
		{"database.poolSize", 250, ErrRangeViolation},
		{"database.type", "SQLITE", ErrEnumViolation},
		{"basePackage", "com.-x", ErrPatternViolation},
		{"applicationName", "", ErrRequiredFieldMissing},
		{"serverPort", 9090, nil},
		{"database.ddlAuto", "create-drop", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e := NewEditor(ExampleAppConfig())
			res, err := e.Set(tt.path, tt.value)
			if tt.want == nil {
				require.NoError(t, err)
				assert.True(t, res.Ready())
				return
			}
			require.ErrorIs(t, err, tt.want)
			assert.NotSame(t, ExampleAppConfig(), res.Doc)
		})
	}
}

func TestReplaceValue_RejectsStructuralAndUnknownPaths(t *testing.T) {
	e := NewEditor(ExampleEntityGraph())
	before := e.Document()
	for _, p := range []string{"entities", "entities[0]", "entities[0].fields", "entities[2].fields[2].relation", "entities[0].columns", "entities[9].name", "entities[0].fields[0].relation.type"} {
		res, err := e.Set(p, "x")
		require.ErrorIs(t, err, ErrStructuralEditRejected, p)
		assert.Same(t, before, res.Doc, p)
	}
	assert.Equal(t, 0, e.HistoryLen())
}

func TestReplaceValue_InsertsOptionalKeyInSchemaOrder(t *testing.T) {
	e := NewEditor(NewEntityGraph())
	_, _ = e.AddEntity()
	res, err := e.Set("entities[0].tableName", "people")
	require.NoError(t, err)
	ent, _ := res.Doc.At(MustPath("entities[0]"))
	assert.Equal(t, []string{"name", "description", "tableName", "fields"}, ent.Keys())
}

func TestAddEntityAndField(t *testing.T) {
	e := NewEditor(NewEntityGraph())
	res, err := e.AddEntity()
	require.NoError(t, err)
	raw, _ := res.Doc.MarshalJSON()
	assert.JSONEq(t, `{"entities":[{"name":"","description":"","fields":[]}]}`, string(raw))
	assert.Equal(t, 1, res.Violations.Count(RequiredFieldMissing))

	res, err = e.AddField(0, false)
	require.NoError(t, err)
	f, _ := res.Doc.At(MustPath("entities[0].fields[0]"))
	raw, _ = f.MarshalJSON()
	assert.Equal(t, `{"name":"","type":"","description":"","required":false}`, string(raw))

	res, err = e.AddField(0, true)
	require.NoError(t, err)
	rel, _ := res.Doc.At(MustPath("entities[0].fields[1].relation"))
	raw, _ = rel.MarshalJSON()
	assert.Equal(t, `{"type":"MANY_TO_ONE","targetEntity":"","fetchType":"LAZY","cascadeType":"PERSIST"}`, string(raw))
	v, ok := res.Violations.Get("entities[0].fields[1].relation.targetEntity")
	require.True(t, ok)
	assert.Equal(t, RequiredFieldMissing, v.Kind)
	for _, p := range []string{"type", "fetchType", "cascadeType"} {
		_, ok := res.Violations.Get("entities[0].fields[1].relation." + p)
		assert.False(t, ok, "seeded relation enum %s must be valid", p)
	}

	_, err = e.AddField(3, false)
	require.ErrorIs(t, err, ErrStructuralEditRejected)
}

func TestRemoveField_LastFieldProtected(t *testing.T) {
	e := NewEditor(NewEntityGraph())
	_, _ = e.AddEntity()
	_, _ = e.AddField(0, false)
	before := e.Document()

	res, err := e.RemoveField(0, 0)
	require.ErrorIs(t, err, ErrStructuralEditRejected)
	assert.Same(t, before, res.Doc)
	fields, _ := res.Doc.At(MustPath("entities[0].fields"))
	assert.Equal(t, 1, fields.Len())

	_, _ = e.AddField(0, true)
	res, err = e.RemoveField(0, 0)
	require.NoError(t, err)
	fields, _ = res.Doc.At(MustPath("entities[0].fields"))
	assert.Equal(t, 1, fields.Len())
	_, hasRel := fields.items[0].Child("relation")
	assert.True(t, hasRel)

	_, err = e.RemoveField(0, 5)
	require.ErrorIs(t, err, ErrStructuralEditRejected)
}

func TestRemoveEntity_LeavesDanglingReference(t *testing.T) {
	e := NewEditor(ExampleEntityGraph())
	res, err := e.RemoveEntity(0) // user
	require.NoError(t, err)
	assert.Equal(t, []string{"product", "order"}, EntityNames(res.Doc.Root()))

	v, ok := res.Violations.Get("entities[1].fields[2].relation.targetEntity")
	require.True(t, ok)
	assert.Equal(t, DanglingReference, v.Kind)
	assert.Equal(t, 1, res.Violations.Len())

	_, err = e.RemoveEntity(-1)
	require.ErrorIs(t, err, ErrStructuralEditRejected)
}

func TestEntityOperationsRejectedOnAppConfig(t *testing.T) {
	e := NewEditor(NewAppConfig())
	before := e.Document()
	_, err := e.AddEntity()
	require.ErrorIs(t, err, ErrStructuralEditRejected)
	_, err = e.AddField(0, false)
	require.ErrorIs(t, err, ErrStructuralEditRejected)
	assert.Same(t, before, e.Document())
}

func TestSplice_AlwaysRejected(t *testing.T) {
	e := NewEditor(ExampleEntityGraph())
	before := e.Document()
	tests := []struct {
		path   string
		reason string
	}{
		{"entities", "use AddEntity/RemoveEntity"},
		{"entities[0].fields", "use AddField/RemoveField"},
		{"entities[0]", "fixed key set"},
		{"entities[0].name", "use ReplaceValue"},
		{"entities[0].indexes", "not editable"},
	}
	for _, tt := range tests {
		for _, op := range []SpliceOp{SpliceAdd, SpliceDelete, SpliceRename, SpliceMove} {
			res, err := e.Splice(op, MustPath(tt.path))
			var ee *EditError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, StructuralEditRejected, ee.Kind)
			assert.Contains(t, ee.Reason, tt.reason)
			assert.Same(t, before, res.Doc)
		}
	}
}

func TestResetAndLoadExample(t *testing.T) {
	e := NewEditor(NewEntityGraph())
	res := e.LoadExample()
	assert.True(t, res.Ready())
	assert.True(t, res.Doc.Equal(ExampleEntityGraph()))

	a := e.Reset()
	b := e.Reset()
	assert.True(t, a.Doc.Equal(b.Doc))
	assert.Equal(t, a.Violations.Paths(), b.Violations.Paths())
	assert.True(t, a.Violations.Empty())
}

func TestUndo(t *testing.T) {
	e := NewEditor(ExampleAppConfig(), WithHistoryDepth(2))
	first := e.Document()
	_, _ = e.Set("serverPort", 9000)
	_, _ = e.Set("serverPort", 9001)
	_, _ = e.Set("serverPort", 9002)
	assert.Equal(t, 2, e.HistoryLen())

	res, ok := e.Undo()
	require.True(t, ok)
	got, _ := res.Doc.Get("serverPort")
	assert.Equal(t, 9001.0, got)
	res, ok = e.Undo()
	require.True(t, ok)
	got, _ = res.Doc.Get("serverPort")
	assert.Equal(t, 9000.0, got)
	_, ok = e.Undo()
	assert.False(t, ok)

	v, _ := first.Get("serverPort")
	assert.Equal(t, 8080.0, v, "earlier snapshots are never mutated")
}

func TestSetRelationAndSuggestTableName(t *testing.T) {
	e := NewEditor(NewEntityGraph())
	_, _ = e.AddEntity()
	_, _ = e.AddField(0, false)
	_, err := e.SuggestTableName(0)
	require.ErrorIs(t, err, ErrStructuralEditRejected)

	_, _ = e.Set("entities[0].name", "orderItem")
	res, err := e.SuggestTableName(0)
	require.NoError(t, err)
	got, _ := res.Doc.Get("entities[0].tableName")
	assert.Equal(t, "order_items", got)

	res, err = e.SetRelation(0, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Doc.Stats().Relations)
	res, err = e.SetRelation(0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, Stats{Entities: 1, Fields: 1}, res.Doc.Stats())
}
