package analysis

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xezoless/echosm/audio"
	"github.com/xezoless/echosm/response"
	"github.com/xezoless/echosm/transcribe"
)

type fakeDecoder struct {
	data *audio.Data
	err  error
}

func (f *fakeDecoder) DecodeFile(string) (*audio.Data, error) {
	return f.data, f.err
}

type panicDecoder struct{}

func (panicDecoder) DecodeFile(string) (*audio.Data, error) {
	panic("decoder exploded")
}

// toneData builds a steady 220 Hz tone as decoded audio
func toneData(sampleRate int, seconds float64) *audio.Data {
	n := int(float64(sampleRate) * seconds)
	pcm := make([]float64, n)
	for i := range pcm {
		pcm[i] = 0.5 * math.Sin(2*math.Pi*220*float64(i)/float64(sampleRate))
	}
	return &audio.Data{
		PCM:        pcm,
		SampleRate: sampleRate,
		Duration:   time.Duration(seconds * float64(time.Second)),
	}
}

func tonePipeline(transcript string) *Pipeline {
	return NewPipeline(DefaultOptions(),
		&fakeDecoder{data: toneData(16000, 2.0)},
		transcribe.Static{Text: transcript})
}

func TestSpeechrateOnSteadyTone(t *testing.T) {
	p := tonePipeline("hello world ok")

	result := p.Speechrate(context.Background(), "dummy.wav")
	sr, ok := result.(*response.Speechrate)
	require.True(t, ok, "unexpected result type %T", result)

	assert.Equal(t, response.StatusSuccess, sr.Status)
	assert.Equal(t, 3, sr.TotalWords)
	assert.Equal(t, 13, sr.TotalCharacters)
	// A constant-amplitude tone has no silence to trim: 2 s of speech
	assert.InDelta(t, 2.0, sr.TotalSpeechTime, 1e-9)
	assert.InDelta(t, 90.0, sr.WPM, 1e-9)
	assert.InDelta(t, 6.5, sr.CPS, 1e-9)
	assert.Equal(t, "hello world ok", sr.Transcript)
}

func TestIntensityPerCharacter(t *testing.T) {
	p := tonePipeline("아 아")

	result := p.Intensity(context.Background(), "dummy.wav")
	in, ok := result.(*response.Intensity)
	require.True(t, ok, "unexpected result type %T", result)

	assert.Equal(t, response.StatusSuccess, in.Status)
	require.Len(t, in.CharVolumes, 3)
	assert.Equal(t, " ", in.CharVolumes[1].Char)
	assert.Equal(t, -100.0, in.CharVolumes[1].Volume)
	assert.Greater(t, in.CharVolumes[0].Volume, -100.0)
	assert.Greater(t, in.CharVolumes[2].Volume, -100.0)
}

func TestIntonationSummaryAndContour(t *testing.T) {
	p := tonePipeline("아아")

	result := p.Intonation(context.Background(), "dummy.wav")
	in, ok := result.(*response.Intonation)
	require.True(t, ok, "unexpected result type %T", result)

	require.Len(t, in.CharSummary, 2)
	for _, cs := range in.CharSummary {
		require.True(t, cs.F0Hz.Valid)
		assert.InDelta(t, 220.0, cs.F0Hz.Value, 3.0)
		assert.Greater(t, cs.DurationSec, 0.0)
	}

	require.NotEmpty(t, in.PitchContourChar.CharAxis)
	assert.Len(t, in.PitchContourChar.F0Hz, len(in.PitchContourChar.CharAxis))
	assert.Equal(t, []string{"아", "아"}, in.PitchContourChar.Chars)
}

func TestArticulationAccuracy(t *testing.T) {
	p := NewPipeline(DefaultOptions(),
		&fakeDecoder{data: toneData(16000, 2.0)},
		transcribe.Static{Text: "abcf"})

	result := p.Articulation(context.Background(), "dummy.wav", "abcd")
	ar, ok := result.(*response.Articulation)
	require.True(t, ok, "unexpected result type %T", result)

	assert.Equal(t, response.StatusSuccess, ar.Status)
	assert.InDelta(t, 2.0, ar.Duration, 1e-9)
	assert.InDelta(t, 0.25, ar.CharErrorRate, 1e-9)
	assert.InDelta(t, 75.0, ar.AccuracyScore, 1e-9)
	assert.InDelta(t, 0.0, ar.PauseRatio, 0.05)
	assert.Greater(t, ar.ArticulationRate, 0.0)
}

func TestArticulationWithoutReference(t *testing.T) {
	p := tonePipeline("아무거나")

	result := p.Articulation(context.Background(), "dummy.wav", "")
	ar, ok := result.(*response.Articulation)
	require.True(t, ok, "unexpected result type %T", result)

	assert.Zero(t, ar.CharErrorRate)
	assert.Zero(t, ar.AccuracyScore)
}

func TestPipelineMapsDecodeError(t *testing.T) {
	p := NewPipeline(DefaultOptions(),
		&fakeDecoder{err: fmt.Errorf("%w: corrupt file", audio.ErrDecode)},
		transcribe.Static{Text: "아"})

	result := p.Intensity(context.Background(), "dummy.wav")
	errResp, ok := result.(*response.Error)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Equal(t, response.StatusError, errResp.Status)
	assert.Equal(t, "Audio Decode Failed", errResp.ErrorName)
}

func TestPipelineMapsUnrecognizedSpeech(t *testing.T) {
	p := NewPipeline(DefaultOptions(),
		&fakeDecoder{data: toneData(16000, 2.0)},
		transcribe.Static{Text: ""})

	result := p.Intensity(context.Background(), "dummy.wav")
	errResp, ok := result.(*response.Error)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Equal(t, "Speech Unrecognized", errResp.ErrorName)
}

func TestPipelineRejectsSilentRecording(t *testing.T) {
	silent := &audio.Data{PCM: make([]float64, 32000), SampleRate: 16000}
	p := NewPipeline(DefaultOptions(), &fakeDecoder{data: silent},
		transcribe.Static{Text: "아"})

	result := p.Intensity(context.Background(), "dummy.wav")
	errResp, ok := result.(*response.Error)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Equal(t, "Cannot Remove Silent Intervals", errResp.ErrorName)
}

func TestRunnerRunsSelectedModules(t *testing.T) {
	runner := NewRunner(tonePipeline("안녕하세요"))

	results := runner.Run(context.Background(), "dummy.wav", Request{
		Intensity:    true,
		Speechrate:   true,
		Intonation:   true,
		Articulation: true,
		RefText:      "안녕하세요",
		MaxWorkers:   2,
	})

	require.Len(t, results, 4)
	for _, name := range []string{"intensity", "speechrate", "intonation", "articulation"} {
		require.Contains(t, results, name)
		_, isErr := results[name].(*response.Error)
		assert.False(t, isErr, "module %s failed: %+v", name, results[name])
	}
}

func TestRunnerIsolatesPanics(t *testing.T) {
	p := NewPipeline(DefaultOptions(), panicDecoder{}, transcribe.Static{Text: "아"})
	runner := NewRunner(p)

	results := runner.Run(context.Background(), "dummy.wav", Request{Speechrate: true})

	require.Contains(t, results, "speechrate")
	errResp, ok := results["speechrate"].(*response.Error)
	require.True(t, ok, "expected an error envelope, got %T", results["speechrate"])
	assert.Equal(t, "Internal Error", errResp.ErrorName)
}

func TestRequestAny(t *testing.T) {
	assert.False(t, Request{}.Any())
	assert.True(t, Request{Intonation: true}.Any())
}
