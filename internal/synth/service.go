package synth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nadzzz/ttsgen/internal/apperr"
	"github.com/nadzzz/ttsgen/internal/catalog"
	"github.com/nadzzz/ttsgen/internal/storage"
	"github.com/nadzzz/ttsgen/internal/tts"
)

// ProbeText is the sentence synthesized by Probe.
const ProbeText = "Hello, this is a test."

const outputExtension = ".wav"

// Mirror receives a copy of every generated file.
type Mirror interface {
	Upload(ctx context.Context, path string) error
}

// GenerateRequest is the raw input of one generate call.
type GenerateRequest struct {
	Text           string
	ModelID        string
	OutputFilename string
	Language       string
	Speaker        string

	// SampleName and Sample carry an optional uploaded voice sample.
	SampleName string
	Sample     io.Reader
}

// Result describes a generated file.
type Result struct {
	Filename string
	Path     string
	Model    string
	Duration time.Duration
}

// Service runs synthesis requests end to end.
type Service struct {
	catalog   *catalog.Catalog
	engine    tts.Synthesizer
	builder   *Builder
	intake    *storage.Intake
	outputDir string
	mirror    Mirror
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Catalog   *catalog.Catalog
	Engine    tts.Synthesizer
	Intake    *storage.Intake
	OutputDir string
	Builder   BuilderOptions

	// Mirror is optional.
	Mirror Mirror
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		catalog:   cfg.Catalog,
		engine:    cfg.Engine,
		builder:   NewBuilder(cfg.Catalog, cfg.Engine, cfg.Builder),
		intake:    cfg.Intake,
		outputDir: cfg.OutputDir,
		mirror:    cfg.Mirror,
	}
}

// Catalog returns the catalog the service resolves models against.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Generate validates req, stages the voice sample, resolves parameters and
// calls the engine. The sample is removed before Generate returns.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (Result, error) {
	const op = "synth.Generate"

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, apperr.Validation(op, "text is required")
	}
	model, ok := s.catalog.Lookup(req.ModelID)
	if !ok {
		return Result{}, apperr.Validation(op, "unknown model %q", req.ModelID)
	}
	filename, err := OutputName(req.OutputFilename)
	if err != nil {
		return Result{}, err
	}

	outputPath := storage.ResolveOutputPath(s.outputDir, filename)
	start := time.Now()

	err = s.intake.With(req.SampleName, req.Sample, func(samplePath string) error {
		params, err := s.builder.Build(ctx, Request{
			Text:              text,
			ModelID:           model.ID,
			OutputPath:        outputPath,
			Language:          req.Language,
			Speaker:           strings.TrimSpace(req.Speaker),
			SpeakerSamplePath: samplePath,
		}, model)
		if err != nil {
			return err
		}

		slog.Info("synthesizing",
			"model", model.ID,
			"family", model.Family,
			"speaker", params.Speaker,
			"language", params.Language,
			"sample", params.SpeakerSamplePath != "",
			"output", outputPath)

		if err := s.engine.Synthesize(ctx, model.ID, params); err != nil {
			return apperr.Engine(op, fmt.Errorf("synthesizing with %s: %w", model.ID, err))
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Filename: filepath.Base(outputPath),
		Path:     outputPath,
		Model:    model.ID,
		Duration: time.Since(start),
	}
	slog.Info("synthesis complete", "model", model.ID, "file", res.Filename, "duration", res.Duration)

	if s.mirror != nil {
		if err := s.mirror.Upload(ctx, outputPath); err != nil {
			slog.Warn("artifact mirror upload failed", "file", res.Filename, "error", err)
		}
	}
	return res, nil
}

// Speakers queries the built-in speakers of any engine model id.
func (s *Service) Speakers(ctx context.Context, modelID string) (tts.SpeakerList, error) {
	const op = "synth.Speakers"

	if strings.TrimSpace(modelID) == "" {
		return tts.SpeakerList{}, apperr.Validation(op, "model name is required")
	}
	list, err := s.engine.BuiltInSpeakers(ctx, modelID)
	if err != nil {
		return tts.SpeakerList{}, apperr.Engine(op, fmt.Errorf("listing speakers of %s: %w", modelID, err))
	}
	return list, nil
}

// Probe synthesizes ProbeText with modelID into a temporary file and returns
// the produced file size. The file is removed before Probe returns.
func (s *Service) Probe(ctx context.Context, modelID string) (int64, error) {
	const op = "synth.Probe"

	if strings.TrimSpace(modelID) == "" {
		return 0, apperr.Validation(op, "model name is required")
	}

	model, ok := s.catalog.Lookup(modelID)
	if !ok {
		model = catalog.Model{ID: modelID, Family: catalog.Classify(modelID)}
	}

	tmp, err := os.CreateTemp("", "ttsgen-probe-*"+outputExtension)
	if err != nil {
		return 0, fmt.Errorf("creating probe file: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("removing probe file", "path", path, "error", err)
		}
	}()

	req := Request{Text: ProbeText, ModelID: modelID, OutputPath: path}
	if model.Multilingual() {
		req.Language = s.builder.cloningLanguage
	}

	params, err := s.builder.Build(ctx, req, model)
	if err != nil {
		return 0, err
	}
	if err := s.engine.Synthesize(ctx, modelID, params); err != nil {
		return 0, apperr.Engine(op, fmt.Errorf("probing %s: %w", modelID, err))
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, apperr.Engine(op, fmt.Errorf("reading probe output: %w", err))
	}
	return info.Size(), nil
}

// OutputName normalizes a requested output filename: directory components
// are dropped and a .wav extension is appended when missing.
func OutputName(requested string) (string, error) {
	name := filepath.Base(strings.TrimSpace(requested))
	if name == "." || name == "/" || name == "" || name == outputExtension {
		return "", apperr.Validation("synth.OutputName", "output filename is required")
	}
	if !strings.EqualFold(filepath.Ext(name), outputExtension) {
		name += outputExtension
	}
	return name, nil
}
