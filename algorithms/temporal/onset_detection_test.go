package temporal

import (
	"math"
	"testing"
)

func TestFindPeaksLocalMaxima(t *testing.T) {
	od := NewOnsetDetection(1024)
	peaks := od.FindPeaks([]float64{0, 1, 0, 2, 5, 2, 0})

	if len(peaks) != 2 {
		t.Fatalf("expected 2 peaks, got %d: %v", len(peaks), peaks)
	}
	if peaks[0].Frame != 1 || peaks[0].Strength != 1 {
		t.Fatalf("unexpected first peak: %+v", peaks[0])
	}
	if peaks[1].Frame != 4 || peaks[1].Strength != 5 {
		t.Fatalf("unexpected second peak: %+v", peaks[1])
	}
}

func TestFindPeaksPlateauTakesLeadingEdge(t *testing.T) {
	od := NewOnsetDetection(1024)
	peaks := od.FindPeaks([]float64{0, 2, 2, 0})

	if len(peaks) != 1 || peaks[0].Frame != 1 {
		t.Fatalf("expected single peak at frame 1, got %v", peaks)
	}
}

func TestFindPeaksTooShort(t *testing.T) {
	od := NewOnsetDetection(1024)
	if peaks := od.FindPeaks([]float64{1, 2}); len(peaks) != 0 {
		t.Fatalf("expected no peaks for short envelope, got %v", peaks)
	}
}

func TestComputeEnvelopeSilence(t *testing.T) {
	od := NewOnsetDetection(1024)
	env, err := od.ComputeEnvelope(make([]float64, 4096), 16000, 512)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFrames := (4096-1024)/512 + 1
	if len(env) != wantFrames {
		t.Fatalf("expected %d envelope values, got %d", wantFrames, len(env))
	}
	for i, v := range env {
		if v != 0 {
			t.Fatalf("expected silent envelope, got %f at frame %d", v, i)
		}
	}
}

func TestDetectToneOnset(t *testing.T) {
	// Silence then a steady tone: the energy increase lands around frame
	// 8 (sample 4096 / hop 512)
	signal := make([]float64, 8192)
	for i := 4096; i < len(signal); i++ {
		signal[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/16000)
	}

	od := NewOnsetDetection(1024)
	env, peaks, err := od.Detect(signal, 16000, 512)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env[0] != 0 {
		t.Fatalf("envelope must start at zero, got %f", env[0])
	}
	if len(peaks) == 0 {
		t.Fatal("expected at least one onset peak")
	}

	strongest := peaks[0]
	for _, p := range peaks[1:] {
		if p.Strength > strongest.Strength {
			strongest = p
		}
	}
	if strongest.Frame < 6 || strongest.Frame > 10 {
		t.Fatalf("strongest onset at frame %d, expected near frame 8", strongest.Frame)
	}
}
