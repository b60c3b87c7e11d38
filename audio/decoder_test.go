package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestBytesToFloat64(t *testing.T) {
	want := []float64{0.5, -0.25, 1.0}
	data := make([]byte, 0, len(want)*8)
	for _, v := range want {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		data = append(data, buf[:]...)
	}

	got := bytesToFloat64(data)
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestBytesToFloat64DropsTrailingPartial(t *testing.T) {
	data := make([]byte, 19) // two full samples plus three stray bytes
	got := bytesToFloat64(data)
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
}

func TestBytesToFloat64Empty(t *testing.T) {
	if got := bytesToFloat64(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := bytesToFloat64([]byte{1, 2, 3}); got != nil {
		t.Fatalf("expected nil for sub-sample input, got %v", got)
	}
}

func TestDataDurationSeconds(t *testing.T) {
	d := &Data{PCM: make([]float64, 32000), SampleRate: 16000}
	if got := d.DurationSeconds(); got != 2.0 {
		t.Fatalf("expected 2.0 s, got %f", got)
	}

	bad := &Data{PCM: make([]float64, 100)}
	if got := bad.DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for missing sample rate, got %f", got)
	}
}

func TestDefaultDecoderConfig(t *testing.T) {
	cfg := DefaultDecoderConfig()
	if cfg.FFmpegPath != "ffmpeg" || cfg.FFprobePath != "ffprobe" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeout <= 0 {
		t.Fatal("expected a positive timeout default")
	}
}
