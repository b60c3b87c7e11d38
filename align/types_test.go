package align

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalFloatMarshalsAbsentAsNull(t *testing.T) {
	data, err := json.Marshal(None())
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	data, err = json.Marshal(Float(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(data))
}

func TestOptionalFloatUnmarshal(t *testing.T) {
	var v OptionalFloat
	require.NoError(t, json.Unmarshal([]byte("null"), &v))
	assert.False(t, v.Valid)

	require.NoError(t, json.Unmarshal([]byte("-19.75"), &v))
	require.True(t, v.Valid)
	assert.Equal(t, -19.75, v.Value)
}

func TestCharacterSegmentJSONKeepsNullPitch(t *testing.T) {
	seg := CharacterSegment{
		Char:     "아",
		VolumeDB: Float(-20.5),
		PitchHz:  None(),
	}

	data, err := json.Marshal(seg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"f0_hz":null`)
	assert.Contains(t, string(data), `"volume_db":-20.5`)
}

func TestCountNonSpace(t *testing.T) {
	assert.Equal(t, 0, countNonSpace([]rune("")))
	assert.Equal(t, 0, countNonSpace([]rune("   ")))
	assert.Equal(t, 5, countNonSpace([]rune("안녕하세요")))
	assert.Equal(t, 7, countNonSpace([]rune("hi there")))
}
