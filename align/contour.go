package align

import (
	"github.com/xezoless/echosm/algorithms/tonal"
)

// mapContour projects every pitch-analysis frame inside the spoken audio
// onto the character axis: charIndex + fractional progress within the
// frame's segment. charIndices holds, for each segment, the index of its
// character in the full transcript (spaces included), so contour
// positions line up with the rendered transcript.
//
// Unvoiced frames keep their coordinate with an absent pitch so gaps can
// be rendered explicitly. Frames in zero-duration segments are excluded
// rather than divided by zero.
func mapContour(track *tonal.F0Track, boundaries []int, charIndices []int) []PitchContourPoint {
	numSegments := len(boundaries) - 1
	if numSegments <= 0 || numSegments != len(charIndices) {
		return []PitchContourPoint{}
	}

	points := make([]PitchContourPoint, 0, track.NumFrames())
	seg := 0

	for f := 0; f < track.NumFrames(); f++ {
		fs := track.FrameSample(f)

		for seg < numSegments && fs >= boundaries[seg+1] {
			seg++
		}
		if seg >= numSegments {
			break
		}

		start, end := boundaries[seg], boundaries[seg+1]
		if fs < start || end <= start {
			continue
		}

		frac := float64(fs-start) / float64(end-start)
		pitch := None()
		if track.Voiced[f] {
			pitch = Float(track.F0[f])
		}
		points = append(points, PitchContourPoint{
			CharAxis: float64(charIndices[seg]) + frac,
			PitchHz:  pitch,
		})
	}

	return points
}
