package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/xezoless/echosm/analysis"
	"github.com/xezoless/echosm/logging"
	"github.com/xezoless/echosm/response"
)

// Config holds the HTTP server settings
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxUploadMB  int64
}

// Server exposes the analysis runner over HTTP. Uploads are written to a
// per-request temp file keyed by a request ID and removed when the
// analysis completes.
type Server struct {
	config Config
	runner *analysis.Runner
	http   *http.Server
}

// New creates an HTTP server around the given runner
func New(config Config, runner *analysis.Runner) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.MaxUploadMB <= 0 {
		config.MaxUploadMB = 64
	}

	s := &Server{
		config: config,
		runner: runner,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)

	s.http = &http.Server{
		Addr:         config.Addr,
		Handler:      r,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

// ListenAndServe starts serving and blocks until the server stops
func (s *Server) ListenAndServe() error {
	logging.Info("http server listening", logging.Fields{
		"addr": s.config.Addr,
	})
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze accepts a multipart form with an audio file and boolean
// module selectors (intensity, speechrate, intonation, articulation),
// plus optional ref_text and max_workers fields. It answers with one
// envelope per selected module.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := logging.WithFields(logging.Fields{
		"component":  "http_server",
		"request_id": requestID,
	})

	if err := r.ParseMultipartForm(s.config.MaxUploadMB << 20); err != nil {
		writeJSON(w, http.StatusBadRequest,
			response.NewError("Invalid Request", fmt.Sprintf("parse multipart form: %v", err)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest,
			response.NewError("Invalid Request", "missing audio file field 'file'"))
		return
	}
	defer file.Close()

	req := analysis.Request{
		Intensity:    formBool(r, "intensity"),
		Speechrate:   formBool(r, "speechrate"),
		Intonation:   formBool(r, "intonation"),
		Articulation: formBool(r, "articulation"),
		RefText:      r.FormValue("ref_text"),
	}
	if mw := r.FormValue("max_workers"); mw != "" {
		if n, err := strconv.Atoi(mw); err == nil {
			req.MaxWorkers = n
		}
	}

	if !req.Any() {
		writeJSON(w, http.StatusBadRequest,
			response.NewError("Invalid Request", "no analysis module selected"))
		return
	}

	audioPath, err := s.saveUpload(file, header.Filename, requestID)
	if err != nil {
		logger.Error(err, "failed to persist upload")
		writeJSON(w, http.StatusInternalServerError,
			response.NewError("Internal Error", "failed to persist uploaded audio"))
		return
	}
	defer os.Remove(audioPath)

	logger.Info("analysis request", logging.Fields{
		"filename":     header.Filename,
		"intensity":    req.Intensity,
		"speechrate":   req.Speechrate,
		"intonation":   req.Intonation,
		"articulation": req.Articulation,
	})

	results := s.runner.Run(r.Context(), audioPath, req)
	writeJSON(w, http.StatusOK, results)
}

// saveUpload writes the uploaded audio to a temp file so FFmpeg and the
// recognizer can read it by path
func (s *Server) saveUpload(file io.Reader, filename, requestID string) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".wav"
	}

	path := filepath.Join(os.TempDir(), "echosm-"+requestID+ext)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

func formBool(r *http.Request, field string) bool {
	v, err := strconv.ParseBool(r.FormValue(field))
	return err == nil && v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error(err, "failed to encode response")
	}
}
