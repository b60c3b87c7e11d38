package analysis

import (
	"context"
	"errors"
	"math"

	"github.com/xezoless/echosm/align"
	"github.com/xezoless/echosm/algorithms/temporal"
	"github.com/xezoless/echosm/audio"
	"github.com/xezoless/echosm/response"
	"github.com/xezoless/echosm/transcribe"
)

// Options tune the analysis pipeline. Defaults mirror the parameters the
// module has always used for Korean speech-training audio.
type Options struct {
	TopDB         float64      // Silence threshold below peak, dB
	Language      string       // Recognition language tag
	IntensityHop  int          // Onset hop for the intensity module
	IntonationHop int          // Onset/pitch hop for the intonation module
	SilenceFrame  int          // RMS frame for silence splitting
	SilenceHop    int          // RMS hop for silence splitting
	EngineParams  align.Params // Base engine parameters
}

// DefaultOptions returns the pipeline defaults
func DefaultOptions() Options {
	return Options{
		TopDB:         40.0,
		Language:      "ko-KR",
		IntensityHop:  512,
		IntonationHop: 256,
		SilenceFrame:  2048,
		SilenceHop:    512,
		EngineParams:  align.DefaultParams(),
	}
}

// AudioDecoder turns an audio file into mono PCM samples
type AudioDecoder interface {
	DecodeFile(filename string) (*audio.Data, error)
}

// Pipeline wires the collaborators every analysis module needs: decoder,
// transcriber, silence splitter and the segmentation engine. One Pipeline
// serves concurrent analyses; every call owns its own buffers.
type Pipeline struct {
	opts             Options
	decoder          AudioDecoder
	transcriber      transcribe.Transcriber
	splitter         *temporal.SilenceSplitter
	intensityEngine  *align.Engine
	intonationEngine *align.Engine
}

// NewPipeline builds an analysis pipeline
func NewPipeline(opts Options, decoder AudioDecoder, transcriber transcribe.Transcriber) *Pipeline {
	if opts.TopDB <= 0 {
		opts = DefaultOptions()
	}

	intensityParams := opts.EngineParams
	intensityParams.HopSize = opts.IntensityHop
	intonationParams := opts.EngineParams
	intonationParams.HopSize = opts.IntonationHop

	return &Pipeline{
		opts:             opts,
		decoder:          decoder,
		transcriber:      transcriber,
		splitter:         temporal.NewSilenceSplitter(opts.SilenceFrame, opts.SilenceHop),
		intensityEngine:  align.NewEngine(intensityParams),
		intonationEngine: align.NewEngine(intonationParams),
	}
}

// loadAndTranscribe runs the shared front half of every character-aligned
// module: decode, transcribe, trim silence. Any failure is already mapped
// to a response envelope.
func (p *Pipeline) loadAndTranscribe(ctx context.Context, audioPath string) (*audio.Data, string, []float64, *response.Error) {
	data, err := p.decoder.DecodeFile(audioPath)
	if err != nil {
		return nil, "", nil, errorEnvelope(err)
	}

	transcript, err := p.transcriber.Transcribe(ctx, audioPath, p.opts.Language)
	if err != nil {
		return nil, "", nil, errorEnvelope(err)
	}

	spoken := p.splitter.ExtractSpoken(data.PCM, p.opts.TopDB)
	if len(spoken) == 0 {
		return nil, "", nil, response.NewError(
			"Cannot Remove Silent Intervals",
			"no voiced audio found after removing silent intervals")
	}

	return data, transcript, spoken, nil
}

// errorEnvelope maps pipeline failures onto the response error taxonomy.
// Upstream collaborator failures keep their own names so callers can tell
// data-quality conditions from engine defects.
func errorEnvelope(err error) *response.Error {
	var inv *align.InvariantError

	switch {
	case errors.Is(err, transcribe.ErrRecognitionUnavailable):
		return response.NewError("Recognition Unavailable", err.Error())
	case errors.Is(err, transcribe.ErrSpeechUnrecognized):
		return response.NewError("Speech Unrecognized", err.Error())
	case errors.Is(err, audio.ErrDecode):
		return response.NewError("Audio Decode Failed", err.Error())
	case errors.Is(err, align.ErrNoAlignableContent):
		return response.NewError("No Alignable Content", err.Error())
	case errors.As(err, &inv):
		return response.NewError("Internal Invariant Violated", err.Error())
	default:
		return response.NewError("Analysis Failed", err.Error())
	}
}

// round keeps n decimal places, matching the module's JSON conventions
func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
