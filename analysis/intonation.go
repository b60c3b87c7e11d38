package analysis

import (
	"context"

	"github.com/xezoless/echosm/align"
	"github.com/xezoless/echosm/response"
)

// Intonation produces the full per-character prosodic summary plus the
// character-axis pitch contour. Segmentation is shared with Intensity, so
// a character's volume here refers to the same interval the intensity
// module would report, modulo the two modules' hop sizes.
func (p *Pipeline) Intonation(ctx context.Context, audioPath string) any {
	data, transcript, spoken, errResp := p.loadAndTranscribe(ctx, audioPath)
	if errResp != nil {
		return errResp
	}

	alignment, err := p.intonationEngine.AlignAndScore(spoken, data.SampleRate, transcript)
	if err != nil {
		return errorEnvelope(err)
	}

	summary := make([]response.CharSummary, len(alignment.Segments))
	for i, seg := range alignment.Segments {
		summary[i] = response.CharSummary{
			Char:        seg.Char,
			VolumeDB:    roundOptional(seg.VolumeDB, 2),
			DurationSec: round(seg.DurationSec, 3),
			F0Hz:        roundOptional(seg.PitchHz, 2),
		}
	}

	contour := response.PitchContour{
		CharAxis: make([]float64, len(alignment.Contour)),
		F0Hz:     make([]align.OptionalFloat, len(alignment.Contour)),
		Chars:    transcriptChars(transcript),
	}
	for i, pt := range alignment.Contour {
		contour.CharAxis[i] = round(pt.CharAxis, 4)
		contour.F0Hz[i] = roundOptional(pt.PitchHz, 2)
	}

	return &response.Intonation{
		Status:           response.StatusSuccess,
		CharSummary:      summary,
		PitchContourChar: contour,
	}
}

// roundOptional rounds a present value and passes absence through
func roundOptional(v align.OptionalFloat, places int) align.OptionalFloat {
	if !v.Valid {
		return v
	}
	return align.Float(round(v.Value, places))
}

// transcriptChars splits a transcript into single-character tick labels
func transcriptChars(transcript string) []string {
	runes := []rune(transcript)
	chars := make([]string, len(runes))
	for i, r := range runes {
		chars[i] = string(r)
	}
	return chars
}
