package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/xezoless/echosm/response"
)

// Speechrate measures speaking tempo: words per minute and characters per
// second over the spoken (non-silent) portion of the recording. Word
// count follows whitespace splitting of the transcript; character count
// excludes spaces.
func (p *Pipeline) Speechrate(ctx context.Context, audioPath string) any {
	started := time.Now()

	data, transcript, spoken, errResp := p.loadAndTranscribe(ctx, audioPath)
	if errResp != nil {
		return errResp
	}

	// loadAndTranscribe guarantees a non-empty spoken buffer
	speechTime := float64(len(spoken)) / float64(data.SampleRate)

	words := len(strings.Fields(transcript))
	chars := 0
	for _, r := range transcript {
		if r != ' ' {
			chars++
		}
	}

	wpm := float64(words) / speechTime * 60.0
	cps := float64(chars) / speechTime

	return &response.Speechrate{
		Status:          response.StatusSuccess,
		WPM:             round(wpm, 2),
		CPS:             round(cps, 2),
		TotalSpeechTime: round(speechTime, 3),
		TotalWords:      words,
		TotalCharacters: chars,
		AnalysisTime:    round(time.Since(started).Seconds(), 3),
		Transcript:      transcript,
	}
}
