package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nadzzz/ttsgen/internal/artifact"
	"github.com/nadzzz/ttsgen/internal/catalog"
	"github.com/nadzzz/ttsgen/internal/config"
	"github.com/nadzzz/ttsgen/internal/health"
	"github.com/nadzzz/ttsgen/internal/storage"
	"github.com/nadzzz/ttsgen/internal/synth"
	"github.com/nadzzz/ttsgen/internal/transport"
	grpctransport "github.com/nadzzz/ttsgen/internal/transport/grpc"
	httptransport "github.com/nadzzz/ttsgen/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web front-end",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("ttsgen starting", "version", Version)

	if err := storage.EnsureDirs(cfg.Paths.OutputDir, cfg.Paths.UploadDir, cfg.Engine.ModelCacheDir); err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	slog.Info("catalog loaded", "models", cat.Len(), "categories", len(cat.Categories()))

	engine, err := newEngine(cfg.Engine)
	if err != nil {
		return err
	}
	defer engine.Close()
	slog.Info("using synthesis engine", "backend", engine.Name(), "gpu", cfg.Engine.GPU)

	var (
		mirror    synth.Mirror
		artifacts httptransport.ArtifactSource
	)
	if cfg.Artifacts.Enabled {
		store, err := artifact.Connect(ctx, cfg.Artifacts.NATSURL, cfg.Artifacts.Bucket)
		if err != nil {
			slog.Warn("artifact mirror unavailable, continuing without it", "error", err)
		} else {
			defer func() {
				if err := store.Close(); err != nil {
					slog.Warn("artifact mirror close error", "error", err)
				}
			}()
			mirror = store
			artifacts = store
		}
	}

	svc := synth.NewService(synth.ServiceConfig{
		Catalog:   cat,
		Engine:    engine,
		Intake:    storage.NewIntake(cfg.Paths.UploadDir, cfg.Transports.HTTP.MaxUploadBytes()),
		OutputDir: cfg.Paths.OutputDir,
		Builder: synth.BuilderOptions{
			FallbackSpeaker:        cfg.Synthesis.FallbackSpeaker,
			DefaultCloningLanguage: cfg.Synthesis.DefaultCloningLanguage,
		},
		Mirror: mirror,
	})

	// Initialize enabled transports.
	var (
		transports []transport.Transport
		grpcHealth *grpctransport.Transport
	)

	if cfg.Transports.HTTP.Enabled {
		httpTransport, err := httptransport.New(httptransport.Options{
			Port:           cfg.Transports.HTTP.Port,
			OutputDir:      cfg.Paths.OutputDir,
			MaxUploadBytes: cfg.Transports.HTTP.MaxUploadBytes(),
			Artifacts:      artifacts,
			Debug:          cfg.Logging.Level == "debug",
		}, svc)
		if err != nil {
			return err
		}
		transports = append(transports, httpTransport)
	}
	if cfg.Transports.GRPC.Enabled {
		grpcHealth = grpctransport.New(cfg.Transports.GRPC.Port)
		transports = append(transports, grpcHealth)
	}

	if len(transports) == 0 {
		return errors.New("no transports enabled, enable at least one in config")
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, engine.HealthCheck)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	if grpcHealth != nil {
		grpcHealth.SetServing(true)
	}
	slog.Info("ttsgen ready",
		"transports", len(transports),
		"http_port", cfg.Transports.HTTP.Port,
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)
	if grpcHealth != nil {
		grpcHealth.SetServing(false)
	}

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("ttsgen stopped")
	return nil
}
