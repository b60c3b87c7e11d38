package align

// reconcile re-inserts space characters into the computed non-space
// segment sequence, preserving the original transcript layout. Spaces
// receive zero duration, the loudness floor and no pitch, without
// consuming a computed segment. A leftover or missing computed segment at
// the end of the walk is an internal consistency failure.
func reconcile(transcript []rune, computed []CharacterSegment, floorDB float64) ([]CharacterSegment, error) {
	out := make([]CharacterSegment, 0, len(transcript))
	next := 0

	for _, ch := range transcript {
		if ch == ' ' {
			out = append(out, CharacterSegment{
				Char:     " ",
				VolumeDB: Float(floorDB),
				PitchHz:  None(),
			})
			continue
		}

		if next >= len(computed) {
			return nil, invariantf("reconciliation", nil,
				"ran out of computed segments at transcript position %d (have %d)",
				len(out), len(computed))
		}
		out = append(out, computed[next])
		next++
	}

	if next != len(computed) {
		return nil, invariantf("reconciliation", nil,
			"consumed %d computed segments, want %d", next, len(computed))
	}

	return out, nil
}
