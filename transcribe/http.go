package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/xezoless/echosm/logging"
)

// HTTPClient posts audio to a remote speech-recognition service and
// returns its transcript. The service is expected to answer
// `{"text": "...", "status": "..."}`; an empty text or an explicit
// no-speech status maps to ErrSpeechUnrecognized, transport and server
// faults map to ErrRecognitionUnavailable.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a recognizer client for the given service URL
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Transcribe(ctx context.Context, audioPath string, language string) (string, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "transcriber",
		"url":       c.baseURL,
		"language":  language,
	})

	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("%w: open audio: %v", ErrRecognitionUnavailable, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}
	if err := writer.WriteField("language", language); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error(err, "recognition request failed")
		return "", fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Error(nil, "recognition service error", logging.Fields{
			"status": resp.StatusCode,
		})
		return "", fmt.Errorf("%w: status %d: %s", ErrRecognitionUnavailable, resp.StatusCode, string(respBody))
	}

	var result struct {
		Text   string `json:"text"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrRecognitionUnavailable, err)
	}

	if result.Status == "no_speech" || result.Text == "" {
		return "", ErrSpeechUnrecognized
	}

	logger.Debug("transcription received", logging.Fields{
		"chars": len(result.Text),
	})

	return result.Text, nil
}
