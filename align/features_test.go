package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xezoless/echosm/algorithms/tonal"
)

func TestLoudnessForSegments(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = 0.1
	}

	volumes := loudnessForSegments(samples, []int{0, 50, 100}, 1e-4, -100)
	require.Len(t, volumes, 2)
	for _, v := range volumes {
		require.True(t, v.Valid)
		assert.InDelta(t, 20*math.Log10(0.1), v.Value, 1e-9)
	}
}

func TestLoudnessFloorsSilentSegment(t *testing.T) {
	samples := make([]float64, 100)
	for i := 50; i < 100; i++ {
		samples[i] = 0.5
	}

	volumes := loudnessForSegments(samples, []int{0, 50, 100}, 1e-4, -100)
	require.Len(t, volumes, 2)

	require.True(t, volumes[0].Valid)
	assert.Equal(t, -100.0, volumes[0].Value, "silent segment reports the floor")
	require.True(t, volumes[1].Valid)
	assert.Greater(t, volumes[1].Value, -100.0)
}

func TestPitchForSegmentsMedianOfVoiced(t *testing.T) {
	track := &tonal.F0Track{
		F0:      []float64{200, 210, 0, 220},
		Voiced:  []bool{true, true, false, true},
		HopSize: 100,
	}

	pitches := pitchForSegments(track, []int{0, 250, 400})
	require.Len(t, pitches, 2)

	// Frames 0, 1 (voiced) and 2 (unvoiced) fall into the first segment
	require.True(t, pitches[0].Valid)
	assert.Equal(t, 205.0, pitches[0].Value)
	require.True(t, pitches[1].Valid)
	assert.Equal(t, 220.0, pitches[1].Value)
}

func TestPitchForSegmentsUnvoicedSegment(t *testing.T) {
	track := &tonal.F0Track{
		F0:      []float64{0, 0, 180},
		Voiced:  []bool{false, false, true},
		HopSize: 100,
	}

	pitches := pitchForSegments(track, []int{0, 200, 300})
	require.Len(t, pitches, 2)
	assert.False(t, pitches[0].Valid, "segment with no voiced frame has no pitch")
	assert.True(t, pitches[1].Valid)
}

func TestMapContourCoordinates(t *testing.T) {
	track := &tonal.F0Track{
		F0:      []float64{100, 110, 120, 130},
		Voiced:  []bool{true, false, true, true},
		HopSize: 100,
	}

	// Two segments of 200 samples each; transcript "a b" puts the second
	// segment's character at transcript index 2
	points := mapContour(track, []int{0, 200, 400}, []int{0, 2})
	require.Len(t, points, 4)

	assert.Equal(t, 0.0, points[0].CharAxis)
	assert.Equal(t, 0.5, points[1].CharAxis)
	assert.False(t, points[1].PitchHz.Valid, "unvoiced frame keeps its coordinate")
	assert.Equal(t, 2.0, points[2].CharAxis)
	assert.Equal(t, 2.5, points[3].CharAxis)
	require.True(t, points[3].PitchHz.Valid)
	assert.Equal(t, 130.0, points[3].PitchHz.Value)
}

func TestMapContourMismatchedIndices(t *testing.T) {
	track := &tonal.F0Track{
		F0:      []float64{100},
		Voiced:  []bool{true},
		HopSize: 100,
	}

	// Mismatched segment/index counts produce no contour rather than a
	// panic
	points := mapContour(track, []int{0, 100}, []int{0, 1})
	assert.Empty(t, points)
}
