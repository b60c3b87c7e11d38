package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xezoless/echosm/align"
	"github.com/xezoless/echosm/analysis"
	"github.com/xezoless/echosm/audio"
)

// Config is the full runtime configuration. Values come from defaults,
// an optional config file, and ECHOSM_-prefixed environment variables, in
// increasing order of precedence.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transcribe TranscribeConfig `mapstructure:"transcribe"`
	Decoder    DecoderConfig    `mapstructure:"decoder"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// TranscribeConfig holds the speech-recognition client settings
type TranscribeConfig struct {
	URL      string        `mapstructure:"url"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DecoderConfig holds the FFmpeg decoder settings
type DecoderConfig struct {
	FFmpegPath  string        `mapstructure:"ffmpeg_path"`
	FFprobePath string        `mapstructure:"ffprobe_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AnalysisConfig holds the signal-analysis parameters
type AnalysisConfig struct {
	TopDB          float64 `mapstructure:"top_db"`
	IntensityHop   int     `mapstructure:"intensity_hop"`
	IntonationHop  int     `mapstructure:"intonation_hop"`
	OnsetWindow    int     `mapstructure:"onset_window"`
	PitchFrame     int     `mapstructure:"pitch_frame"`
	MinFreq        float64 `mapstructure:"min_freq"`
	MaxFreq        float64 `mapstructure:"max_freq"`
	MinRMS         float64 `mapstructure:"min_rms"`
	SilenceFloorDB float64 `mapstructure:"silence_floor_db"`
	SilenceFrame   int     `mapstructure:"silence_frame"`
	SilenceHop     int     `mapstructure:"silence_hop"`
}

// Load reads configuration from defaults, an optional config file and the
// environment. An empty configPath skips the file stage; a missing file at
// an explicit path is an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ECHOSM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.max_upload_mb", 64)

	v.SetDefault("transcribe.url", "http://localhost:9000")
	v.SetDefault("transcribe.language", "ko-KR")
	v.SetDefault("transcribe.timeout", 60*time.Second)

	v.SetDefault("decoder.ffmpeg_path", "ffmpeg")
	v.SetDefault("decoder.ffprobe_path", "ffprobe")
	v.SetDefault("decoder.timeout", 30*time.Second)

	v.SetDefault("analysis.top_db", 40.0)
	v.SetDefault("analysis.intensity_hop", 512)
	v.SetDefault("analysis.intonation_hop", 256)
	v.SetDefault("analysis.onset_window", 1024)
	v.SetDefault("analysis.pitch_frame", 2048)
	v.SetDefault("analysis.min_freq", 65.0)
	v.SetDefault("analysis.max_freq", 2093.0)
	v.SetDefault("analysis.min_rms", 1e-4)
	v.SetDefault("analysis.silence_floor_db", -100.0)
	v.SetDefault("analysis.silence_frame", 2048)
	v.SetDefault("analysis.silence_hop", 512)
}

// PipelineOptions maps the analysis section onto pipeline options
func (c *Config) PipelineOptions() analysis.Options {
	return analysis.Options{
		TopDB:         c.Analysis.TopDB,
		Language:      c.Transcribe.Language,
		IntensityHop:  c.Analysis.IntensityHop,
		IntonationHop: c.Analysis.IntonationHop,
		SilenceFrame:  c.Analysis.SilenceFrame,
		SilenceHop:    c.Analysis.SilenceHop,
		EngineParams: align.Params{
			OnsetWindow:    c.Analysis.OnsetWindow,
			HopSize:        c.Analysis.IntonationHop,
			PitchFrame:     c.Analysis.PitchFrame,
			MinFreq:        c.Analysis.MinFreq,
			MaxFreq:        c.Analysis.MaxFreq,
			MinRMS:         c.Analysis.MinRMS,
			SilenceFloorDB: c.Analysis.SilenceFloorDB,
		},
	}
}

// AudioDecoderConfig maps the decoder section onto the audio package's config
func (c *Config) AudioDecoderConfig() *audio.DecoderConfig {
	return &audio.DecoderConfig{
		FFmpegPath:  c.Decoder.FFmpegPath,
		FFprobePath: c.Decoder.FFprobePath,
		Timeout:     c.Decoder.Timeout,
	}
}
