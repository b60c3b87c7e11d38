package response

import (
	"encoding/json"

	"github.com/xezoless/echosm/align"
)

// Status values reported by every analysis response
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// Error is the failure envelope shared by all analysis modules
type Error struct {
	Status       string `json:"status"`
	ErrorName    string `json:"error_name"`
	ErrorDetails string `json:"error_details"`
}

// NewError builds a failure envelope
func NewError(name, details string) *Error {
	return &Error{
		Status:       StatusError,
		ErrorName:    name,
		ErrorDetails: details,
	}
}

// CharVolume is one character's loudness estimate
type CharVolume struct {
	Char   string  `json:"char"`
	Volume float64 `json:"volume"`
}

// Intensity carries per-character loudness estimates
type Intensity struct {
	Status      string       `json:"status"`
	CharVolumes []CharVolume `json:"char_volumes"`
}

// CharSummary is one character's prosodic summary
type CharSummary struct {
	Char        string              `json:"char"`
	VolumeDB    align.OptionalFloat `json:"volume_db"`
	DurationSec float64             `json:"duration_sec"`
	F0Hz        align.OptionalFloat `json:"f0_hz"`
}

// PitchContour is the character-axis pitch contour for plotting
type PitchContour struct {
	CharAxis []float64             `json:"char_axis"`
	F0Hz     []align.OptionalFloat `json:"f0_hz"`
	Chars    []string              `json:"chars"`
}

// Intonation carries character-aligned prosody and the pitch contour
type Intonation struct {
	Status           string        `json:"status"`
	CharSummary      []CharSummary `json:"char_summary"`
	PitchContourChar PitchContour  `json:"pitch_contour_char"`
}

// Speechrate carries speaking-tempo metrics
type Speechrate struct {
	Status          string  `json:"status"`
	WPM             float64 `json:"wpm"`
	CPS             float64 `json:"cps"`
	TotalSpeechTime float64 `json:"total_speech_time"`
	TotalWords      int     `json:"total_words"`
	TotalCharacters int     `json:"total_characters"`
	AnalysisTime    float64 `json:"analysis_time"`
	Transcript      string  `json:"transcript"`
}

// Articulation carries fluency and accuracy metrics
type Articulation struct {
	Status           string  `json:"status"`
	Duration         float64 `json:"duration"`
	ArticulationRate float64 `json:"articulation_rate"`
	PauseRatio       float64 `json:"pause_ratio"`
	AccuracyScore    float64 `json:"accuracy_score"`
	CharErrorRate    float64 `json:"char_error_rate"`
	Transcription    string  `json:"transcription"`
}

// ToJSON marshals any response envelope with indentation for CLI output
func ToJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
