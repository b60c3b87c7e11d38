package align

import (
	"encoding/json"
)

// OnsetCandidate is a candidate segment boundary derived from the
// onset-strength envelope
type OnsetCandidate struct {
	Frame    int     `json:"frame"`    // Analysis frame index (sample = frame * hop)
	Strength float64 `json:"strength"` // Envelope strength at the peak
}

// OptionalFloat is an explicit optional value. Absent values (unvoiced
// pitch, silent loudness) are represented by Valid == false and serialize
// as JSON null, so downstream code can never do arithmetic on a sentinel
// by accident.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Float wraps a present value
func Float(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// None returns an absent value
func None() OptionalFloat {
	return OptionalFloat{}
}

func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = OptionalFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Float(v)
	return nil
}

// CharacterSegment is the time interval and acoustic summary assigned to
// one transcript character. Space characters carry zero duration, the
// loudness floor and no pitch.
type CharacterSegment struct {
	Char        string        `json:"char"`
	StartSample int           `json:"start_sample"`
	EndSample   int           `json:"end_sample"`
	DurationSec float64       `json:"duration_sec"`
	VolumeDB    OptionalFloat `json:"volume_db"`
	PitchHz     OptionalFloat `json:"f0_hz"`
}

// IsSpace reports whether the segment stands in for a space character
func (s CharacterSegment) IsSpace() bool {
	return s.Char == " "
}

// PitchContourPoint is one pitch-analysis frame projected onto the
// character axis. CharAxis is the transcript character index plus the
// fractional progress within that character's segment.
type PitchContourPoint struct {
	CharAxis float64       `json:"char_axis"`
	PitchHz  OptionalFloat `json:"f0_hz"`
}

// Alignment is the full engine output for one analysis call
type Alignment struct {
	Segments   []CharacterSegment  `json:"segments"`
	Contour    []PitchContourPoint `json:"contour,omitempty"`
	Boundaries []int               `json:"boundaries"`
	SampleRate int                 `json:"sample_rate"`
}

// countNonSpace counts the alignment units in a transcript
func countNonSpace(chars []rune) int {
	n := 0
	for _, ch := range chars {
		if ch != ' ' {
			n++
		}
	}
	return n
}
