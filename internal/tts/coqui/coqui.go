// Package coqui implements the TTS Synthesizer against a Coqui TTS sidecar
// reachable over HTTP.
//
// The sidecar owns model loading and inference. Its contract:
//
//	POST /v1/synthesize   multipart: model_name, text, speaker, language,
//	                      use_gpu, optional file speaker_wav -> audio/wav
//	GET  /v1/speakers     ?model_name=... -> {"available": bool, "speakers": [...]}
//	GET  /health          200 when ready
//
// Failures carry a JSON body {"detail": "...", "error_code": "..."}.
package coqui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nadzzz/ttsgen/internal/config"
	"github.com/nadzzz/ttsgen/internal/tts"
)

const (
	pathSynthesize = "/v1/synthesize"
	pathSpeakers   = "/v1/speakers"
	pathHealth     = "/health"

	contentTypeWAV = "audio/wav"

	dirPermissions  = 0o750
	filePermissions = 0o600
)

// Static errors.
var (
	ErrEmptyAudio        = errors.New("sidecar returned empty audio")
	ErrNoEndpoint        = errors.New("no coqui endpoint configured")
	errUnexpectedContent = errors.New("unexpected content type")
)

// Synthesizer implements tts.Synthesizer over HTTP.
type Synthesizer struct {
	endpoint string
	opts     tts.Options
	client   *http.Client
}

// errorResponse is the sidecar's structured failure body.
type errorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// speakersResponse is the body of GET /v1/speakers.
type speakersResponse struct {
	Available bool     `json:"available"`
	Speakers  []string `json:"speakers"`
}

// New creates a sidecar client from config.
func New(cfg config.CoquiConfig, opts tts.Options) *Synthesizer {
	return &Synthesizer{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		opts:     opts,
		client:   &http.Client{Timeout: opts.Timeout},
	}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "coqui" }

// Synthesize posts the parameters to the sidecar and writes the returned
// audio to params.OutputPath.
func (s *Synthesizer) Synthesize(ctx context.Context, modelID string, params tts.Params) error {
	if s.endpoint == "" {
		return ErrNoEndpoint
	}

	body, contentType, err := s.encodeForm(modelID, params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+pathSynthesize, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentTypeWAV)

	slog.Debug("coqui synthesize",
		"model", modelID,
		"text_length", len(params.Text),
		"speaker", params.Speaker,
		"language", params.Language,
		"cloning", params.SpeakerSamplePath != "")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request to coqui at %s: %w", s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseErrorResponse(resp)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, contentTypeWAV) {
		return fmt.Errorf("%w: expected %s, got %q", errUnexpectedContent, contentTypeWAV, ct)
	}

	return writeAudio(params.OutputPath, resp.Body)
}

func (s *Synthesizer) encodeForm(modelID string, params tts.Params) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := []struct{ key, value string }{
		{"model_name", modelID},
		{"text", params.Text},
		{"speaker", params.Speaker},
		{"language", params.Language},
		{"use_gpu", strconv.FormatBool(s.opts.GPU)},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := writer.WriteField(f.key, f.value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", f.key, err)
		}
	}

	if params.SpeakerSamplePath != "" {
		sample, err := os.Open(params.SpeakerSamplePath)
		if err != nil {
			return nil, "", fmt.Errorf("opening voice sample: %w", err)
		}
		defer sample.Close()

		part, err := writer.CreateFormFile("speaker_wav", filepath.Base(params.SpeakerSamplePath))
		if err != nil {
			return nil, "", fmt.Errorf("creating form file: %w", err)
		}
		if _, err := io.Copy(part, sample); err != nil {
			return nil, "", fmt.Errorf("writing voice sample: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// BuiltInSpeakers asks the sidecar for the model's built-in voices.
func (s *Synthesizer) BuiltInSpeakers(ctx context.Context, modelID string) (tts.SpeakerList, error) {
	if s.endpoint == "" {
		return tts.SpeakerList{}, ErrNoEndpoint
	}

	q := make(url.Values)
	q.Set("model_name", modelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+pathSpeakers+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return tts.SpeakerList{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return tts.SpeakerList{}, fmt.Errorf("querying speakers at %s: %w", s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tts.SpeakerList{}, parseErrorResponse(resp)
	}

	var out speakersResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return tts.SpeakerList{}, fmt.Errorf("decoding speakers: %w", err)
	}

	return tts.SpeakerList{Names: out.Speakers, Available: out.Available}, nil
}

// HealthCheck verifies the sidecar is up.
func (s *Synthesizer) HealthCheck(ctx context.Context) error {
	if s.endpoint == "" {
		return ErrNoEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+pathHealth, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating health request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check for %s: %w", s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}
	return nil
}

// Close is a no-op; connections are per-request.
func (s *Synthesizer) Close() error { return nil }

// parseErrorResponse decodes a structured error, falling back to the raw body.
func parseErrorResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Detail != "" {
		return fmt.Errorf("coqui error (%s): %s (code: %s)", resp.Status, e.Detail, e.ErrorCode)
	}
	return fmt.Errorf("coqui returned status %s: %s", resp.Status, strings.TrimSpace(string(raw)))
}

// writeAudio streams r into path, removing a partial file on failure.
func writeAudio(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePermissions)
	if err != nil {
		return fmt.Errorf("creating audio file: %w", err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return fmt.Errorf("writing audio: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return fmt.Errorf("closing audio file: %w", closeErr)
	case n == 0:
		_ = os.Remove(path)
		return ErrEmptyAudio
	}

	slog.Debug("coqui audio written", "path", path, "bytes", n)
	return nil
}
