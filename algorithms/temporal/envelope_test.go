package temporal

import (
	"math"
	"testing"
)

func TestComputeRMSConstantSignal(t *testing.T) {
	signal := make([]float64, 1000)
	for i := range signal {
		signal[i] = 0.5
	}

	env := NewEnvelope().ComputeRMS(signal, 100, 100)

	wantFrames := (len(signal)-1)/100 + 1
	if len(env) != wantFrames {
		t.Fatalf("expected %d frames, got %d", wantFrames, len(env))
	}
	for i, v := range env {
		if math.Abs(v-0.5) > 1e-12 {
			t.Fatalf("frame %d: expected RMS 0.5, got %f", i, v)
		}
	}
}

func TestComputeRMSIncludesPartialTrailingFrame(t *testing.T) {
	// 250 samples, frame 100, hop 100: frames at 0, 100, 200; the last
	// covers only 50 samples but must still be reported
	signal := make([]float64, 250)
	env := NewEnvelope().ComputeRMS(signal, 100, 100)
	if len(env) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(env))
	}
}

func TestComputeRMSEmptySignal(t *testing.T) {
	env := NewEnvelope().ComputeRMS(nil, 100, 100)
	if len(env) != 0 {
		t.Fatalf("expected empty envelope, got %d frames", len(env))
	}
}

func TestComputePeak(t *testing.T) {
	signal := []float64{0.1, -0.8, 0.2, 0.3, -0.1, 0.4}
	env := NewEnvelope().ComputePeak(signal, 3, 3)
	if len(env) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(env))
	}
	if env[0] != 0.8 || env[1] != 0.4 {
		t.Fatalf("unexpected peaks: %v", env)
	}
}
