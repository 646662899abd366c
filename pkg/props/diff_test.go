package props_test

import (
	"testing"

	"github.com/easelhq/easel/pkg/props"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffEqualTreesIsNil(t *testing.T) {
	a := props.MustParse(`{"text": "hi", "tags": ["a"]}`)
	b := props.MustParse(`{"tags": ["a"], "text": "hi"}`)
	assert.Nil(t, props.Diff(a, b))
}

func TestDiffScalarChange(t *testing.T) {
	old := props.MustParse(`{"text": "hi"}`)
	new := props.MustParse(`{"text": "bye"}`)

	changes := props.Diff(old, new)
	require.Len(t, changes, 1)
	assert.Equal(t, "text", changes[0].Path)
	assert.Equal(t, props.ChangeUpdated, changes[0].Kind)
}

func TestDiffAddedAndRemovedFields(t *testing.T) {
	old := props.MustParse(`{"a": 1, "b": 2}`)
	new := props.MustParse(`{"b": 2, "c": 3}`)

	changes := props.Diff(old, new)
	require.Len(t, changes, 2)
	// Sorted by path.
	assert.Equal(t, "a", changes[0].Path)
	assert.Equal(t, props.ChangeRemoved, changes[0].Kind)
	assert.Equal(t, "c", changes[1].Path)
	assert.Equal(t, props.ChangeAdded, changes[1].Kind)
}

func TestDiffNestedPaths(t *testing.T) {
	old := props.MustParse(`{"user": {"name": "ada"}, "items": [1, 2]}`)
	new := props.MustParse(`{"user": {"name": "grace"}, "items": [1, 2, 3]}`)

	changes := props.Diff(old, new)
	require.Len(t, changes, 2)
	assert.Equal(t, "items[2]", changes[0].Path)
	assert.Equal(t, props.ChangeAdded, changes[0].Kind)
	assert.Equal(t, "user.name", changes[1].Path)
	assert.Equal(t, props.ChangeUpdated, changes[1].Kind)
}

func TestDiffKindChangeIsSingleUpdate(t *testing.T) {
	old := props.MustParse(`{"value": {"deep": true}}`)
	new := props.MustParse(`{"value": 7}`)

	changes := props.Diff(old, new)
	require.Len(t, changes, 1)
	assert.Equal(t, "value", changes[0].Path)
	assert.Equal(t, props.ChangeUpdated, changes[0].Kind)
}

func TestDiffArrayShrink(t *testing.T) {
	old := props.MustParse(`[1, 2, 3]`)
	new := props.MustParse(`[1]`)

	changes := props.Diff(old, new)
	require.Len(t, changes, 2)
	assert.Equal(t, props.ChangeRemoved, changes[0].Kind)
	assert.Equal(t, "[1]", changes[0].Path)
	assert.Equal(t, "[2]", changes[1].Path)
}
