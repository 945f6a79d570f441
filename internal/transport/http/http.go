// Package http implements the web front-end for ttsgen.
//
// It serves the HTML form, the JSON API used by that form, the generated
// audio files, and the Swagger UI over the generated OpenAPI document.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nadzzz/ttsgen/internal/catalog"
	"github.com/nadzzz/ttsgen/internal/synth"
	"github.com/nadzzz/ttsgen/internal/tts"
)

// Synthesis is the behavior the handlers need from the synthesis service.
type Synthesis interface {
	Catalog() *catalog.Catalog
	Generate(ctx context.Context, req synth.GenerateRequest) (synth.Result, error)
	Speakers(ctx context.Context, modelID string) (tts.SpeakerList, error)
	Probe(ctx context.Context, modelID string) (int64, error)
}

// ArtifactSource serves generated files mirrored off this host.
type ArtifactSource interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// Options configures the HTTP transport.
type Options struct {
	Port           int
	OutputDir      string
	MaxUploadBytes int64

	// Artifacts enables GET /artifacts/:name when set.
	Artifacts ArtifactSource

	// Debug switches gin to debug mode.
	Debug bool
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	opts    Options
	svc     Synthesis
	handler http.Handler
	server  *http.Server
}

// New creates a new HTTP transport serving svc.
func New(opts Options, svc Synthesis) (*Transport, error) {
	t := &Transport{opts: opts, svc: svc}

	router, err := t.router()
	if err != nil {
		return nil, fmt.Errorf("building router: %w", err)
	}
	t.handler = router

	// The write timeout is left unset because a synthesis call can run for
	// minutes on CPU.
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return t, nil
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the routed handler.
func (t *Transport) Handler() http.Handler { return t.handler }

// Listen starts the HTTP server. It blocks until the context is cancelled
// or Close is called.
func (t *Transport) Listen(ctx context.Context) error {
	slog.Info("http transport listening", "port", t.opts.Port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return t.server.Shutdown(ctx)
}
