package acp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalThreeStates(t *testing.T) {
	u := Undefined[string]()
	assert.True(t, u.IsUndefined())
	assert.False(t, u.IsNull())
	_, ok := u.Get()
	assert.False(t, ok)

	n := Null[string]()
	assert.False(t, n.IsUndefined())
	assert.True(t, n.IsNull())
	_, ok = n.Get()
	assert.False(t, ok)

	s := Some("hello")
	assert.False(t, s.IsUndefined())
	assert.False(t, s.IsNull())
	v, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestOptionalEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Optional[string]{
		Undefined[string](),
		Null[string](),
		Some("x"),
	}
	for _, want := range cases {
		raw := map[string]json.RawMessage{}
		require.NoError(t, want.encodeInto(raw, "k"))

		got, err := decodeOptional[string](raw, "k")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestOptionalUndefinedOmitsKey(t *testing.T) {
	raw := map[string]json.RawMessage{}
	require.NoError(t, Undefined[int]().encodeInto(raw, "n"))
	_, present := raw["n"]
	assert.False(t, present, "undefined must not write a key at all")
}

func TestOptionalNullWritesLiteralNull(t *testing.T) {
	raw := map[string]json.RawMessage{}
	require.NoError(t, Null[int]().encodeInto(raw, "n"))
	assert.Equal(t, "null", string(raw["n"]))
}

func TestDecodeOptionalMissingKeyIsUndefined(t *testing.T) {
	got, err := decodeOptional[int](map[string]json.RawMessage{}, "missing")
	require.NoError(t, err)
	assert.True(t, got.IsUndefined())
}
