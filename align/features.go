package align

import (
	"math"

	"github.com/xezoless/echosm/algorithms/stats"
	"github.com/xezoless/echosm/algorithms/tonal"
)

// loudnessForSegments computes per-segment loudness in dB from RMS
// amplitude. Segments whose RMS falls at or below minRMS report the
// floorDB sentinel instead of a non-finite value, so every segment with
// at least one sample gets a finite loudness.
func loudnessForSegments(samples []float64, boundaries []int, minRMS, floorDB float64) []OptionalFloat {
	numSegments := len(boundaries) - 1
	volumes := make([]OptionalFloat, numSegments)

	for i := 0; i < numSegments; i++ {
		start, end := boundaries[i], boundaries[i+1]
		if start < 0 {
			start = 0
		}
		if end > len(samples) {
			end = len(samples)
		}
		if end <= start {
			volumes[i] = Float(floorDB)
			continue
		}

		rms := stats.RMS(samples[start:end])
		if rms <= minRMS {
			volumes[i] = Float(floorDB)
		} else {
			volumes[i] = Float(20.0 * math.Log10(rms))
		}
	}

	return volumes
}

// pitchForSegments summarizes a frame-wise F0 track per segment as the
// median of the voiced frames whose start sample falls inside the
// segment. The median resists the octave-jump outliers pitch trackers
// produce. Segments with no voiced frame report an absent pitch.
func pitchForSegments(track *tonal.F0Track, boundaries []int) []OptionalFloat {
	numSegments := len(boundaries) - 1
	pitches := make([]OptionalFloat, numSegments)

	frame := 0
	for i := 0; i < numSegments; i++ {
		start, end := boundaries[i], boundaries[i+1]

		// Frames are time-ordered, so walk forward once across all segments
		for frame < track.NumFrames() && track.FrameSample(frame) < start {
			frame++
		}

		var voiced []float64
		f := frame
		for f < track.NumFrames() && track.FrameSample(f) < end {
			if track.Voiced[f] {
				voiced = append(voiced, track.F0[f])
			}
			f++
		}
		frame = f

		if len(voiced) > 0 {
			pitches[i] = Float(stats.Median(voiced))
		} else {
			pitches[i] = None()
		}
	}

	return pitches
}
