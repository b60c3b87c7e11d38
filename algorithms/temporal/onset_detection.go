package temporal

import (
	"github.com/xezoless/echosm/algorithms/spectral"
)

// OnsetDetection derives onset cues from spectral energy increases
type OnsetDetection struct {
	spectralFlux *spectral.SpectralFlux
	stft         *spectral.STFT
	windowSize   int
}

// OnsetPeak is a local maximum of the onset-strength envelope
type OnsetPeak struct {
	Frame    int     `json:"frame"`    // STFT frame index (sample = frame * hopSize)
	Strength float64 `json:"strength"` // Envelope value at the peak
}

// NewOnsetDetection creates a new onset detector
func NewOnsetDetection(windowSize int) *OnsetDetection {
	if windowSize <= 0 {
		windowSize = 1024
	}
	return &OnsetDetection{
		spectralFlux: spectral.NewSpectralFlux(),
		stft:         spectral.NewSTFT(),
		windowSize:   windowSize,
	}
}

// ComputeEnvelope computes the onset-strength envelope: half-wave rectified
// spectral flux, one value per STFT frame. Envelope index i describes the
// energy increase into frame i+1; the envelope is shifted so that index
// equals the frame the onset lands on, with index 0 always zero.
func (od *OnsetDetection) ComputeEnvelope(signal []float64, sampleRate, hopSize int) ([]float64, error) {
	if len(signal) == 0 {
		return []float64{}, nil
	}

	stftResult, err := od.stft.Compute(signal, od.windowSize, hopSize, sampleRate)
	if err != nil {
		return nil, err
	}

	flux := od.spectralFlux.Compute(stftResult.Magnitude)

	envelope := make([]float64, stftResult.TimeFrames)
	for i, v := range flux {
		envelope[i+1] = v
	}

	return envelope, nil
}

// FindPeaks extracts every local maximum of the envelope as an onset peak.
// No strength filtering happens here; ranking and selection are the
// caller's concern.
func (od *OnsetDetection) FindPeaks(envelope []float64) []OnsetPeak {
	if len(envelope) < 3 {
		return []OnsetPeak{}
	}

	var peaks []OnsetPeak
	for i := 1; i < len(envelope)-1; i++ {
		if envelope[i] > envelope[i-1] && envelope[i] >= envelope[i+1] && envelope[i] > 0 {
			peaks = append(peaks, OnsetPeak{Frame: i, Strength: envelope[i]})
		}
	}

	return peaks
}

// Detect runs envelope computation and peak picking in one pass
func (od *OnsetDetection) Detect(signal []float64, sampleRate, hopSize int) ([]float64, []OnsetPeak, error) {
	envelope, err := od.ComputeEnvelope(signal, sampleRate, hopSize)
	if err != nil {
		return nil, nil, err
	}
	return envelope, od.FindPeaks(envelope), nil
}
