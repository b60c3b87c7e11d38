package tonal

import (
	"math"
)

// YINParams contains parameters for frame-wise YIN pitch tracking
type YINParams struct {
	FrameLength int     `json:"frame_length"` // Analysis window in samples
	HopSize     int     `json:"hop_size"`     // Hop between frames in samples
	MinFreq     float64 `json:"min_freq"`     // Minimum F0 (Hz)
	MaxFreq     float64 `json:"max_freq"`     // Maximum F0 (Hz)
	Threshold   float64 `json:"threshold"`    // CMNDF absolute threshold (0.1-0.5)
}

// DefaultYINParams returns parameters tuned for speech
func DefaultYINParams() YINParams {
	return YINParams{
		FrameLength: 2048,
		HopSize:     256,
		MinFreq:     65.0,   // ~C2, low male voice
		MaxFreq:     2093.0, // ~C7
		Threshold:   0.15,
	}
}

// F0Track is a frame-wise fundamental-frequency contour. Frame i starts at
// sample i*HopSize. Unvoiced frames carry Voiced[i] == false and an
// undefined F0 value that must not be read.
type F0Track struct {
	F0          []float64 `json:"f0"`     // Hz per frame, meaningful only where Voiced
	Voiced      []bool    `json:"voiced"` // Voicing decision per frame
	FrameLength int       `json:"frame_length"`
	HopSize     int       `json:"hop_size"`
	SampleRate  int       `json:"sample_rate"`
}

// NumFrames returns the number of analysis frames in the track
func (t *F0Track) NumFrames() int {
	return len(t.F0)
}

// FrameSample returns the start sample of frame i
func (t *F0Track) FrameSample(i int) int {
	return i * t.HopSize
}

// YIN implements the YIN fundamental frequency estimator applied
// frame-by-frame over a signal. A YIN value holds only parameters; every
// Track call owns its scratch buffers, so one tracker may serve
// concurrent calls.
//
// Reference:
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency estimator for speech and music"
type YIN struct {
	params YINParams
}

// NewYIN creates a YIN tracker with the given parameters
func NewYIN(params YINParams) *YIN {
	if params.FrameLength <= 0 {
		params = DefaultYINParams()
	}
	return &YIN{params: params}
}

// Params returns the tracker parameters
func (y *YIN) Params() YINParams {
	return y.params
}

// Track estimates one F0 value (or unvoiced) per analysis frame across the
// whole signal. The trailing partial frame is analyzed zero-padded so every
// hop position up to the signal end yields a frame, keeping frame count
// consistent with other hop-based analyses of the same signal.
func (y *YIN) Track(signal []float64, sampleRate int) *F0Track {
	track := &F0Track{
		FrameLength: y.params.FrameLength,
		HopSize:     y.params.HopSize,
		SampleRate:  sampleRate,
	}

	if len(signal) == 0 || sampleRate <= 0 {
		return track
	}

	numFrames := (len(signal)-1)/y.params.HopSize + 1
	track.F0 = make([]float64, numFrames)
	track.Voiced = make([]bool, numFrames)

	frame := make([]float64, y.params.FrameLength)
	halfN := y.params.FrameLength / 2
	diff := make([]float64, halfN)
	cmndf := make([]float64, halfN)

	for i := 0; i < numFrames; i++ {
		start := i * y.params.HopSize

		for j := range frame {
			if start+j < len(signal) {
				frame[j] = signal[start+j]
			} else {
				frame[j] = 0
			}
		}

		if f0, ok := y.estimateFrame(frame, sampleRate, diff, cmndf); ok {
			track.F0[i] = f0
			track.Voiced[i] = true
		}
	}

	return track
}

// estimateFrame runs YIN on a single frame and reports whether the frame
// is voiced. diff and cmndf are caller-owned scratch buffers of length
// len(frame)/2.
func (y *YIN) estimateFrame(frame []float64, sampleRate int, diff, cmndf []float64) (float64, bool) {
	halfN := len(frame) / 2
	if halfN < 2 {
		return 0, false
	}

	// Difference function
	for tau := 0; tau < halfN; tau++ {
		sum := 0.0
		for j := 0; j < halfN; j++ {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	// Cumulative mean normalized difference function
	cmndf[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau < halfN; tau++ {
		runningSum += diff[tau]
		if runningSum > 0 {
			cmndf[tau] = diff[tau] * float64(tau) / runningSum
		} else {
			cmndf[tau] = 1.0
		}
	}

	// Search lags inside the configured frequency range
	minTau := int(float64(sampleRate) / y.params.MaxFreq)
	maxTau := int(float64(sampleRate) / y.params.MinFreq)
	if minTau < 1 {
		minTau = 1
	}
	if maxTau >= halfN {
		maxTau = halfN - 1
	}

	// First local minimum below the absolute threshold
	bestTau := -1
	for tau := minTau; tau <= maxTau; tau++ {
		if cmndf[tau] < y.params.Threshold {
			for tau+1 <= maxTau && cmndf[tau+1] < cmndf[tau] {
				tau++
			}
			bestTau = tau
			break
		}
	}
	if bestTau < 0 {
		return 0, false
	}

	period := parabolicInterpolation(cmndf[:maxTau+1], bestTau)
	if period <= 0 {
		return 0, false
	}

	frequency := float64(sampleRate) / period
	if frequency < y.params.MinFreq || frequency > y.params.MaxFreq {
		return 0, false
	}

	return frequency, true
}

// parabolicInterpolation refines a minimum location using its two neighbors
func parabolicInterpolation(data []float64, idx int) float64 {
	if idx <= 0 || idx >= len(data)-1 {
		return float64(idx)
	}

	y1 := data[idx-1]
	y2 := data[idx]
	y3 := data[idx+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2

	if a == 0 {
		return float64(idx)
	}

	offset := -b / (2 * a)
	if math.Abs(offset) > 1 {
		return float64(idx)
	}

	return float64(idx) + offset
}
