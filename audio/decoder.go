package audio

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/xezoless/echosm/logging"
)

// ErrDecode marks failures to turn an audio source into PCM samples:
// unsupported codecs, corrupt files, missing audio streams. Callers treat
// these as data-quality failures.
var ErrDecode = errors.New("audio decode failed")

// Data represents decoded audio: mono float64 PCM at the source's native
// sampling rate
type Data struct {
	PCM        []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Duration   time.Duration `json:"duration"`
}

// DurationSeconds returns the audio duration in seconds
func (d *Data) DurationSeconds() float64 {
	if d.SampleRate <= 0 {
		return 0
	}
	return float64(len(d.PCM)) / float64(d.SampleRate)
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	FFmpegPath  string        `json:"ffmpeg_path"`
	FFprobePath string        `json:"ffprobe_path"`
	Timeout     time.Duration `json:"timeout"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Timeout:     30 * time.Second,
	}
}

// Decoder decodes audio files to mono PCM using FFmpeg
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// DecodeFile decodes an audio file to mono float64 PCM at its native
// sampling rate
func (d *Decoder) DecodeFile(filename string) (*Data, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"filename":  filename,
	})

	logger.Debug("probing audio file")

	sampleRate, err := d.probeSampleRate(filename)
	if err != nil {
		logger.Error(err, "ffprobe failed")
		return nil, err
	}

	args := []string{
		"-v", "error",
		"-i", filename,
		"-vn",
		"-map", "0:a:0",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"pipe:1",
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			logger.Error(err, "ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
			return nil, fmt.Errorf("%w: %v: %s", ErrDecode, err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples decoded", ErrDecode)
	}

	duration := time.Duration(len(samples)) * time.Second / time.Duration(sampleRate)

	logger.Debug("decode completed", logging.Fields{
		"sample_rate": sampleRate,
		"samples":     len(samples),
		"duration":    duration.Seconds(),
	})

	return &Data{
		PCM:        samples,
		SampleRate: sampleRate,
		Duration:   duration,
	}, nil
}

// probeSampleRate reads the native sampling rate of the first audio
// stream with ffprobe
func (d *Decoder) probeSampleRate(filename string) (int, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		filename,
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.FFprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return 0, fmt.Errorf("%w: ffprobe: %v: %s", ErrDecode, err, string(exitError.Stderr))
		}
		return 0, fmt.Errorf("%w: ffprobe: %v", ErrDecode, err)
	}

	var probe struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			SampleRate string `json:"sample_rate"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("%w: parse ffprobe output: %v", ErrDecode, err)
	}
	if len(probe.Streams) == 0 {
		return 0, fmt.Errorf("%w: no audio streams found", ErrDecode)
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return 0, fmt.Errorf("%w: stream is not audio: %s", ErrDecode, stream.CodecType)
	}

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sampleRate <= 0 {
		return 0, fmt.Errorf("%w: invalid sample rate %q", ErrDecode, stream.SampleRate)
	}

	return sampleRate, nil
}

// bytesToFloat64 converts raw little-endian float64 bytes to samples
func bytesToFloat64(data []byte) []float64 {
	data = data[:len(data)-(len(data)%8)]
	if len(data) == 0 {
		return nil
	}

	sampleCount := len(data) / 8
	samples := make([]float64, sampleCount)
	for i := 0; i < sampleCount; i++ {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}
