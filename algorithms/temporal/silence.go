package temporal

import (
	"math"
)

// SilenceSplitter separates spoken intervals from silence using a
// loudness threshold relative to the signal peak
type SilenceSplitter struct {
	envelopeExtractor *Envelope
	frameSize         int
	hopSize           int
}

// Interval is a half-open [Start, End) sample range
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewSilenceSplitter creates a splitter with the given analysis frame and hop sizes
func NewSilenceSplitter(frameSize, hopSize int) *SilenceSplitter {
	return &SilenceSplitter{
		envelopeExtractor: NewEnvelope(),
		frameSize:         frameSize,
		hopSize:           hopSize,
	}
}

// SplitNonSilent returns the sample intervals whose RMS level is within
// topDB decibels of the loudest frame. Frames further down than topDB are
// treated as silence. Returns an empty slice when nothing is above the
// threshold (e.g. an all-zero signal).
func (ss *SilenceSplitter) SplitNonSilent(signal []float64, topDB float64) []Interval {
	if len(signal) == 0 {
		return []Interval{}
	}

	envelope := ss.envelopeExtractor.ComputeRMS(signal, ss.frameSize, ss.hopSize)
	if len(envelope) == 0 {
		return []Interval{}
	}

	ref := 0.0
	for _, v := range envelope {
		if v > ref {
			ref = v
		}
	}
	if ref <= 0 {
		return []Interval{}
	}

	// A frame is voiced when its level is within topDB of the peak frame
	voiced := make([]bool, len(envelope))
	for i, v := range envelope {
		if v > 0 {
			voiced[i] = 20.0*math.Log10(v/ref) > -topDB
		}
	}

	var intervals []Interval
	currentStart := -1

	for i, isVoiced := range voiced {
		if isVoiced && currentStart == -1 {
			currentStart = i
		} else if !isVoiced && currentStart != -1 {
			intervals = append(intervals, ss.framesToInterval(currentStart, i, len(signal)))
			currentStart = -1
		}
	}
	if currentStart != -1 {
		intervals = append(intervals, ss.framesToInterval(currentStart, len(voiced), len(signal)))
	}

	return intervals
}

// ExtractSpoken concatenates the non-silent intervals into a single
// spoken-only waveform. The result is a fresh buffer; the input signal is
// never mutated.
func (ss *SilenceSplitter) ExtractSpoken(signal []float64, topDB float64) []float64 {
	intervals := ss.SplitNonSilent(signal, topDB)

	total := 0
	for _, iv := range intervals {
		total += iv.End - iv.Start
	}

	spoken := make([]float64, 0, total)
	for _, iv := range intervals {
		spoken = append(spoken, signal[iv.Start:iv.End]...)
	}

	return spoken
}

// SpokenDuration sums the non-silent interval lengths in seconds
func (ss *SilenceSplitter) SpokenDuration(signal []float64, topDB float64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0.0
	}

	samples := 0
	for _, iv := range ss.SplitNonSilent(signal, topDB) {
		samples += iv.End - iv.Start
	}

	return float64(samples) / float64(sampleRate)
}

// framesToInterval converts a frame range to a clamped sample interval
func (ss *SilenceSplitter) framesToInterval(startFrame, endFrame, signalLen int) Interval {
	start := startFrame * ss.hopSize
	end := endFrame * ss.hopSize
	if end > signalLen {
		end = signalLen
	}
	if start > end {
		start = end
	}
	return Interval{Start: start, End: end}
}
