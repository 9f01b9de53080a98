// Package whisperapi is a client for Whisper-compatible speech-to-text HTTP
// APIs (OpenAI-style multipart /audio/transcriptions with verbose_json
// timed segments).
package whisperapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipd/internal/types"
)

const defaultRequestTimeout = 5 * time.Minute

type Adapter struct {
	baseURL string
	key     string
	model   string
	timeout time.Duration
	client  *http.Client
}

type Option func(*Adapter)

func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func New(baseURL, apiKey, model string, opts ...Option) *Adapter {
	if model == "" {
		model = "whisper-1"
	}
	a := &Adapter{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		key:     apiKey,
		model:   model,
		timeout: defaultRequestTimeout,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Transcribe uploads the audio file and returns the timed transcript. A
// deadline hit wraps context.DeadlineExceeded so the caller can surface
// "timed out" separately from a generic failure.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (types.Transcript, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read audio: %w", err)
	}

	body, contentType, err := buildForm(a.model, filepath.Base(audioPath), audio)
	if err != nil {
		return types.Transcript{}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return types.Transcript{}, err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", contentType)

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return types.Transcript{}, fmt.Errorf("transcription timeout after %s: %w", a.timeout, context.DeadlineExceeded)
		}
		return types.Transcript{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return types.Transcript{}, fmt.Errorf("transcription status %d: %s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	var out types.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return types.Transcript{}, fmt.Errorf("decode transcription: %w", err)
	}
	for i := range out.Segments {
		out.Segments[i].Text = strings.TrimSpace(out.Segments[i].Text)
	}
	out.Text = strings.TrimSpace(out.Text)
	return out, nil
}

func buildForm(model, filename string, audio []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"model":                     model,
		"response_format":           "verbose_json",
		"timestamp_granularities[]": "segment",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write form field %q: %w", k, err)
		}
	}

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create file field: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("write audio data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
