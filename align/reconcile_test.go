package align

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileInsertsSpaces(t *testing.T) {
	computed := []CharacterSegment{
		{Char: "a", StartSample: 0, EndSample: 100, VolumeDB: Float(-20)},
		{Char: "b", StartSample: 100, EndSample: 200, VolumeDB: Float(-25)},
	}

	out, err := reconcile([]rune("a b"), computed, -100)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "a", out[0].Char)
	assert.Equal(t, "b", out[2].Char)

	space := out[1]
	assert.True(t, space.IsSpace())
	assert.Zero(t, space.DurationSec)
	require.True(t, space.VolumeDB.Valid)
	assert.Equal(t, -100.0, space.VolumeDB.Value)
	assert.False(t, space.PitchHz.Valid)
}

func TestReconcileNoSpaces(t *testing.T) {
	computed := []CharacterSegment{
		{Char: "x", StartSample: 0, EndSample: 50},
	}
	out, err := reconcile([]rune("x"), computed, -100)
	require.NoError(t, err)
	assert.Equal(t, computed, out)
}

func TestReconcileTooFewComputed(t *testing.T) {
	computed := []CharacterSegment{{Char: "a"}}
	_, err := reconcile([]rune("ab"), computed, -100)
	require.Error(t, err)

	var inv *InvariantError
	assert.True(t, errors.As(err, &inv))
}

func TestReconcileLeftoverComputed(t *testing.T) {
	computed := []CharacterSegment{{Char: "a"}, {Char: "b"}}
	_, err := reconcile([]rune("a"), computed, -100)
	require.Error(t, err)

	var inv *InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "reconciliation", inv.Stage)
}
