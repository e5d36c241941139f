package blueprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_ReplaceSharesUntouchedSubtrees(t *testing.T) {
	root := ExampleEntityGraph().Root()
	p := MustPath("entities[2].fields[0].name")

	next, err := root.replace(p, NewLeaf("key"), nil)
	require.NoError(t, err)
	assert.Equal(t, "id", root.Str(p))
	assert.Equal(t, "key", next.Str(p))

	for _, shared := range []string{"entities[0]", "entities[1]", "entities[2].fields[1]"} {
		a, _ := root.At(MustPath(shared))
		b, _ := next.At(MustPath(shared))
		assert.Same(t, a, b, shared)
	}
	a, _ := root.At(MustPath("entities[2]"))
	b, _ := next.At(MustPath("entities[2]"))
	assert.NotSame(t, a, b)
}

func TestNode_ReplaceMissingPath(t *testing.T) {
	root := NewEntityGraph().Root()
	_, err := root.replace(MustPath("entities[0].name"), NewLeaf("x"), nil)
	assert.Error(t, err)
}

func TestNode_EqualAndInterface(t *testing.T) {
	a := NewFixed([]string{"x", "y"}, map[string]*Node{"x": NewLeaf(1), "y": NewCollection(NewLeaf(true))})
	b := NewFixed([]string{"x", "y"}, map[string]*Node{"x": NewLeaf(1.0), "y": NewCollection(NewLeaf(true))})
	c := NewFixed([]string{"y", "x"}, map[string]*Node{"x": NewLeaf(1), "y": NewCollection(NewLeaf(true))})
	assert.True(t, a.Equal(b), "ints are stored as float64")
	assert.False(t, a.Equal(c), "key order is significant")
	assert.Equal(t, map[string]any{"x": 1.0, "y": []any{true}}, a.Interface())
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, "collection", Collection.String())
}

func TestInsertOrdered(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"a", "b", "d"}, insertOrdered([]string{"a", "d"}, "b", order))
	assert.Equal(t, []string{"b", "d"}, insertOrdered([]string{"d"}, "b", order))
	assert.Equal(t, []string{"a", "z"}, insertOrdered([]string{"a"}, "z", order))
}
