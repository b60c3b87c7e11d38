package analysis

import (
	"context"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/xezoless/echosm/response"
)

// Articulation measures fluency and accuracy: how densely characters are
// produced within the voiced time, how much of the recording is pause,
// and how closely the recognized transcript matches the reference script
// when one is given. An empty refText skips the accuracy metrics.
func (p *Pipeline) Articulation(ctx context.Context, audioPath string, refText string) any {
	data, err := p.decoder.DecodeFile(audioPath)
	if err != nil {
		return errorEnvelope(err)
	}

	totalDuration := data.DurationSeconds()
	if totalDuration <= 0 {
		return response.NewError("Audio Decode Failed", "recording has zero duration")
	}

	speechDuration := p.splitter.SpokenDuration(data.PCM, p.opts.TopDB, data.SampleRate)
	if speechDuration <= 0 {
		return response.NewError(
			"Cannot Remove Silent Intervals",
			"no voiced audio found after removing silent intervals")
	}

	transcript, err := p.transcriber.Transcribe(ctx, audioPath, p.opts.Language)
	if err != nil {
		return errorEnvelope(err)
	}

	spokenChars := compactChars(transcript)
	articulationRate := float64(len(spokenChars)) / speechDuration
	pauseRatio := 1.0 - speechDuration/totalDuration
	if pauseRatio < 0 {
		pauseRatio = 0
	}

	result := &response.Articulation{
		Status:           response.StatusSuccess,
		Duration:         round(totalDuration, 3),
		ArticulationRate: round(articulationRate, 2),
		PauseRatio:       round(pauseRatio, 3),
		Transcription:    transcript,
	}

	if refText != "" {
		cer := charErrorRate(compactChars(refText), spokenChars)
		accuracy := 1.0 - cer
		if accuracy < 0 {
			accuracy = 0
		}
		result.CharErrorRate = round(cer, 4)
		result.AccuracyScore = round(accuracy*100.0, 2)
	}

	return result
}

// charErrorRate is the Levenshtein distance between reference and
// hypothesis divided by the reference length
func charErrorRate(reference, hypothesis []rune) float64 {
	if len(reference) == 0 {
		if len(hypothesis) == 0 {
			return 0.0
		}
		return 1.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(reference), string(hypothesis), false)
	distance := dmp.DiffLevenshtein(diffs)

	return float64(distance) / float64(len(reference))
}

// compactChars returns the transcript's runes with whitespace removed
func compactChars(text string) []rune {
	var chars []rune
	for _, r := range text {
		if !strings.ContainsRune(" \t\n\r", r) {
			chars = append(chars, r)
		}
	}
	return chars
}
