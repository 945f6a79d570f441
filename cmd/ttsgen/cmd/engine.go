package cmd

import (
	"fmt"

	"github.com/nadzzz/ttsgen/internal/config"
	"github.com/nadzzz/ttsgen/internal/tts"
	"github.com/nadzzz/ttsgen/internal/tts/cli"
	"github.com/nadzzz/ttsgen/internal/tts/coqui"
)

// newEngine builds the configured synthesis backend.
func newEngine(cfg config.EngineConfig) (tts.Synthesizer, error) {
	opts := tts.Options{
		ModelCacheDir: cfg.ModelCacheDir,
		AcceptLicense: cfg.AcceptLicense,
		GPU:           cfg.GPU,
		Timeout:       cfg.Timeout(),
	}

	switch cfg.Backend {
	case "coqui":
		return coqui.New(cfg.Coqui, opts), nil
	case "cli":
		return cli.New(cfg.CLI, opts), nil
	default:
		return nil, fmt.Errorf("unknown engine backend %q", cfg.Backend)
	}
}
