package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xezoless/echosm/analysis"
	"github.com/xezoless/echosm/audio"
	"github.com/xezoless/echosm/config"
	"github.com/xezoless/echosm/logging"
	"github.com/xezoless/echosm/response"
	"github.com/xezoless/echosm/server"
	"github.com/xezoless/echosm/transcribe"
)

var supportedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
	".webm": true,
}

var (
	flagConfig       string
	flagIntensity    bool
	flagSpeechrate   bool
	flagIntonation   bool
	flagArticulation bool
	flagRefText      string
	flagTranscript   string
	flagWorkers      int
	flagVerbose      bool
)

func main() {
	// Optional .env for local development; absence is not an error
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "echosm [flags] <audio-file>",
		Short: "Character-aligned acoustic analysis for speech recordings",
		Long: `echosm analyzes a speech recording against its transcript and reports
per-character loudness, duration and pitch, speaking tempo and
articulation accuracy. Results are printed as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	root.Flags().BoolVarP(&flagIntensity, "intensity", "l", false, "per-character loudness analysis")
	root.Flags().BoolVarP(&flagSpeechrate, "speechrate", "s", false, "speaking tempo analysis")
	root.Flags().BoolVarP(&flagIntonation, "intonation", "i", false, "per-character pitch and contour analysis")
	root.Flags().BoolVarP(&flagArticulation, "articulation", "a", false, "fluency and accuracy analysis")
	root.Flags().StringVar(&flagRefText, "ref-text", "", "reference script for articulation accuracy scoring")
	root.Flags().StringVar(&flagTranscript, "transcript", "", "known transcript; skips the recognition service")
	root.Flags().IntVar(&flagWorkers, "workers", 0, "max concurrent analysis modules (0 = one per module)")

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logging.SetLevel(logging.DebugLevel)
	} else {
		logging.SetLevel(logging.WarnLevel)
	}

	audioPath := args[0]
	if err := checkAudioFile(audioPath); err != nil {
		return err
	}

	req := analysis.Request{
		Intensity:    flagIntensity,
		Speechrate:   flagSpeechrate,
		Intonation:   flagIntonation,
		Articulation: flagArticulation,
		RefText:      flagRefText,
		MaxWorkers:   flagWorkers,
	}
	if !req.Any() {
		return fmt.Errorf("select at least one analysis: -l, -s, -i or -a")
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runner := analysis.NewRunner(newPipeline(cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	results := runner.Run(ctx, audioPath, req)

	out, err := response.ToJSON(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	fmt.Println(out)

	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logging.SetLevel(logging.DebugLevel)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runner := analysis.NewRunner(newPipeline(cfg))
	srv := server.New(server.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MaxUploadMB:  cfg.Server.MaxUploadMB,
	}, runner)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newPipeline assembles the analysis pipeline from configuration. When a
// transcript is given on the command line the recognition service is
// bypassed entirely.
func newPipeline(cfg *config.Config) *analysis.Pipeline {
	decoder := audio.NewDecoder(cfg.AudioDecoderConfig())

	var transcriber transcribe.Transcriber
	if flagTranscript != "" {
		transcriber = transcribe.Static{Text: flagTranscript}
	} else {
		transcriber = transcribe.NewHTTPClient(cfg.Transcribe.URL, cfg.Transcribe.Timeout)
	}

	return analysis.NewPipeline(cfg.PipelineOptions(), decoder, transcriber)
}

// checkAudioFile validates that the path exists and looks like audio
func checkAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("audio file not found: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("audio path is a directory: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return fmt.Errorf("unsupported audio format %q (supported: wav, mp3, m4a, ogg, flac, webm)", ext)
	}

	return nil
}
