package align

import (
	"fmt"

	"github.com/xezoless/echosm/algorithms/temporal"
	"github.com/xezoless/echosm/algorithms/tonal"
	"github.com/xezoless/echosm/logging"
)

// Params control the segmentation engine. The zero value is not usable;
// start from DefaultParams.
type Params struct {
	OnsetWindow    int     `json:"onset_window"`     // STFT window for onset strength
	HopSize        int     `json:"hop_size"`         // Hop for onset and pitch frames
	PitchFrame     int     `json:"pitch_frame"`      // YIN analysis window
	MinFreq        float64 `json:"min_freq"`         // Pitch search floor (Hz)
	MaxFreq        float64 `json:"max_freq"`         // Pitch search ceiling (Hz)
	MinRMS         float64 `json:"min_rms"`          // RMS at or below this is silence
	SilenceFloorDB float64 `json:"silence_floor_db"` // Loudness sentinel for silence
}

// DefaultParams returns engine parameters tuned for speech-training audio
func DefaultParams() Params {
	return Params{
		OnsetWindow:    1024,
		HopSize:        256,
		PitchFrame:     2048,
		MinFreq:        65.0,
		MaxFreq:        2093.0,
		MinRMS:         1e-4,
		SilenceFloorDB: -100.0,
	}
}

// Engine segments a spoken waveform into per-character intervals and
// derives acoustic features for each. It is a pure computation over
// immutable inputs: no I/O, deterministic and reentrant, so one Engine
// value may serve concurrent analyses as long as each call owns its
// waveform buffer. The engine never mutates the waveform.
type Engine struct {
	params Params
	onset  *temporal.OnsetDetection
	yin    *tonal.YIN
}

// NewEngine creates a segmentation engine with the given parameters
func NewEngine(params Params) *Engine {
	if params.HopSize <= 0 {
		params = DefaultParams()
	}
	return &Engine{
		params: params,
		onset:  temporal.NewOnsetDetection(params.OnsetWindow),
		yin: tonal.NewYIN(tonal.YINParams{
			FrameLength: params.PitchFrame,
			HopSize:     params.HopSize,
			MinFreq:     params.MinFreq,
			MaxFreq:     params.MaxFreq,
			Threshold:   0.15,
		}),
	}
}

// Params returns the engine parameters
func (e *Engine) Params() Params {
	return e.params
}

// Segment aligns the transcript to the spoken waveform and computes
// per-character loudness only. The result carries no pitch values and no
// contour; use AlignAndScore for the full prosodic summary. Both entry
// points derive boundaries identically, so loudness-only and full results
// for the same inputs refer to the same intervals.
func (e *Engine) Segment(samples []float64, sampleRate int, transcript string) (*Alignment, error) {
	return e.analyze(samples, sampleRate, transcript, false)
}

// AlignAndScore aligns the transcript to the spoken waveform and computes
// the full per-character feature set: loudness, duration, representative
// pitch, plus the character-axis pitch contour.
func (e *Engine) AlignAndScore(samples []float64, sampleRate int, transcript string) (*Alignment, error) {
	return e.analyze(samples, sampleRate, transcript, true)
}

func (e *Engine) analyze(samples []float64, sampleRate int, transcript string, withPitch bool) (*Alignment, error) {
	logger := logging.WithFields(logging.Fields{
		"component":   "align_engine",
		"sample_rate": sampleRate,
		"samples":     len(samples),
	})

	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty waveform", ErrNoAlignableContent)
	}

	chars := []rune(transcript)
	k := countNonSpace(chars)
	if k == 0 {
		return nil, fmt.Errorf("%w: transcript has no non-space characters", ErrNoAlignableContent)
	}

	candidates, err := e.detectCandidates(samples, sampleRate)
	if err != nil {
		return nil, err
	}

	boundaries, err := SelectBoundaries(candidates, e.params.HopSize, len(samples), k)
	if err != nil {
		if inv, ok := err.(*InvariantError); ok {
			logger.Error(inv, "boundary selection failed", logging.Fields{
				"boundaries": inv.Boundaries,
				"candidates": len(candidates),
				"characters": k,
			})
		}
		return nil, err
	}

	logger.Debug("boundaries selected", logging.Fields{
		"characters": k,
		"candidates": len(candidates),
	})

	volumes := loudnessForSegments(samples, boundaries, e.params.MinRMS, e.params.SilenceFloorDB)

	var track *tonal.F0Track
	var pitches []OptionalFloat
	if withPitch {
		track = e.yin.Track(samples, sampleRate)
		pitches = pitchForSegments(track, boundaries)
	}

	// Build one computed segment per non-space character, remembering each
	// character's index in the full transcript for the contour mapping
	computed := make([]CharacterSegment, 0, k)
	charIndices := make([]int, 0, k)
	seg := 0
	for idx, ch := range chars {
		if ch == ' ' {
			continue
		}
		start, end := boundaries[seg], boundaries[seg+1]
		cs := CharacterSegment{
			Char:        string(ch),
			StartSample: start,
			EndSample:   end,
			DurationSec: float64(end-start) / float64(sampleRate),
			VolumeDB:    volumes[seg],
			PitchHz:     None(),
		}
		if withPitch {
			cs.PitchHz = pitches[seg]
		}
		computed = append(computed, cs)
		charIndices = append(charIndices, idx)
		seg++
	}

	segments, err := reconcile(chars, computed, e.params.SilenceFloorDB)
	if err != nil {
		if inv, ok := err.(*InvariantError); ok {
			logger.Error(inv, "reconciliation failed", logging.Fields{
				"boundaries": boundaries,
				"computed":   len(computed),
				"transcript": len(chars),
			})
		}
		return nil, err
	}

	alignment := &Alignment{
		Segments:   segments,
		Boundaries: boundaries,
		SampleRate: sampleRate,
	}
	if withPitch {
		alignment.Contour = mapContour(track, boundaries, charIndices)
	}

	return alignment, nil
}

// detectCandidates derives time-ordered onset candidates from the
// waveform. Every local peak of the onset-strength envelope is kept; the
// boundary selector decides which survive.
func (e *Engine) detectCandidates(samples []float64, sampleRate int) ([]OnsetCandidate, error) {
	_, peaks, err := e.onset.Detect(samples, sampleRate, e.params.HopSize)
	if err != nil {
		return nil, fmt.Errorf("onset detection: %w", err)
	}

	candidates := make([]OnsetCandidate, len(peaks))
	for i, p := range peaks {
		candidates[i] = OnsetCandidate{Frame: p.Frame, Strength: p.Strength}
	}
	return candidates, nil
}
