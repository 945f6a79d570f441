// Package cmd holds the ttsgen command tree.
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/ttsgen/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ttsgen",
	Short: "Text-to-speech web front-end",
	Long: `ttsgen serves a web form and JSON API for synthesizing speech with
pretrained Coqui TTS models, including voice cloning from a short sample.

Synthesis runs in an external engine, either the Coqui HTTP sidecar
(engine.backend=coqui) or the tts command-line tool (engine.backend=cli).`,
	SilenceUsage: true,
}

// Execute runs the command tree. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./ttsgen.yaml, ./configs/ttsgen.yaml, /etc/ttsgen/ttsgen.yaml)")
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// loadConfig reads configuration with the flags of cmd applied on top and
// installs the configured logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	config.SetupLogging(cfg.Logging)
	return cfg, nil
}
