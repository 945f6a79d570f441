// Package config handles loading and validating the ttsgen configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the root configuration for the ttsgen server.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Synthesis  SynthesisConfig  `mapstructure:"synthesis"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each listener.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC health listener.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the web front-end.
type HTTPConfig struct {
	Enabled     bool  `mapstructure:"enabled"`
	Port        int   `mapstructure:"port"`
	MaxUploadMB int64 `mapstructure:"max_upload_mb"`
}

// MaxUploadBytes returns the voice sample limit in bytes.
func (c HTTPConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// EngineConfig selects and configures the synthesis engine.
type EngineConfig struct {
	Backend        string      `mapstructure:"backend"` // "coqui" or "cli"
	GPU            bool        `mapstructure:"gpu"`
	ModelCacheDir  string      `mapstructure:"model_cache_dir"`
	AcceptLicense  bool        `mapstructure:"accept_license"`
	TimeoutSeconds int         `mapstructure:"timeout_seconds"`
	Coqui          CoquiConfig `mapstructure:"coqui"`
	CLI            CLIConfig   `mapstructure:"cli"`
}

// Timeout returns the per-call engine timeout. Zero disables it.
func (c EngineConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CoquiConfig holds the Coqui HTTP sidecar settings.
type CoquiConfig struct {
	Endpoint string `mapstructure:"endpoint"` // base URL, e.g. http://localhost:5002
}

// CLIConfig holds the Coqui command-line settings.
type CLIConfig struct {
	Binary string `mapstructure:"binary"`
}

// PathsConfig holds the working directories.
type PathsConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	UploadDir string `mapstructure:"upload_dir"`
}

// CatalogConfig points at an optional catalog document overriding the built-in one.
type CatalogConfig struct {
	File string `mapstructure:"file"`
}

// SynthesisConfig tunes parameter resolution.
type SynthesisConfig struct {
	FallbackSpeaker        string `mapstructure:"fallback_speaker"`
	DefaultCloningLanguage string `mapstructure:"default_cloning_language"`
}

// ArtifactsConfig configures mirroring generated audio to a NATS object store.
type ArtifactsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	NATSURL string `mapstructure:"nats_url"`
	Bucket  string `mapstructure:"bucket"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"port":        "transports.http.port",
	"health-port": "server.health_port",
	"backend":     "engine.backend",
	"endpoint":    "engine.coqui.endpoint",
	"gpu":         "engine.gpu",
	"output-dir":  "paths.output_dir",
	"upload-dir":  "paths.upload_dir",
	"catalog":     "catalog.file",
	"log-level":   "logging.level",
	"log-format":  "logging.format",
}

// RegisterFlags adds the overridable settings to fs. Only flags the user
// actually sets take precedence over the file and environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("port", 8000, "HTTP listen port")
	fs.Int("health-port", 8081, "health check port")
	fs.String("backend", "coqui", "synthesis engine backend (coqui, cli)")
	fs.String("endpoint", "http://localhost:5002", "Coqui sidecar base URL")
	fs.Bool("gpu", false, "request GPU inference")
	fs.String("output-dir", "output", "directory for generated audio")
	fs.String("upload-dir", "uploads", "directory for transient voice samples")
	fs.String("catalog", "", "catalog YAML file (default: built-in)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "json", "log format (json, text)")
}

// Load reads the configuration from file, environment variables, flags, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./ttsgen.yaml, ./configs/ttsgen.yaml, /etc/ttsgen/ttsgen.yaml.
// flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8000)
	v.SetDefault("transports.http.max_upload_mb", 25)
	v.SetDefault("engine.backend", "coqui")
	v.SetDefault("engine.gpu", false)
	v.SetDefault("engine.model_cache_dir", "models")
	v.SetDefault("engine.accept_license", true)
	v.SetDefault("engine.timeout_seconds", 600)
	v.SetDefault("engine.coqui.endpoint", "http://localhost:5002")
	v.SetDefault("engine.cli.binary", "tts")
	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("paths.upload_dir", "uploads")
	v.SetDefault("catalog.file", "")
	v.SetDefault("synthesis.fallback_speaker", "female")
	v.SetDefault("synthesis.default_cloning_language", "en")
	v.SetDefault("artifacts.enabled", false)
	v.SetDefault("artifacts.nats_url", "nats://localhost:4222")
	v.SetDefault("artifacts.bucket", "ttsgen-audio")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ttsgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/ttsgen")
	}

	// Environment variables: TTSGEN_SERVER_HEALTH_PORT, TTSGEN_ENGINE_BACKEND, etc.
	v.SetEnvPrefix("TTSGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references (e.g., "${COQUI_URL}")
	cfg.Engine.Coqui.Endpoint = resolveEnvRef(cfg.Engine.Coqui.Endpoint)
	cfg.Artifacts.NATSURL = resolveEnvRef(cfg.Artifacts.NATSURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Engine.Backend {
	case "coqui", "cli":
	default:
		return fmt.Errorf("unknown engine backend %q", c.Engine.Backend)
	}
	if c.Transports.HTTP.MaxUploadMB <= 0 {
		return fmt.Errorf("transports.http.max_upload_mb must be positive, got %d", c.Transports.HTTP.MaxUploadMB)
	}
	if c.Paths.OutputDir == "" || c.Paths.UploadDir == "" {
		return fmt.Errorf("paths.output_dir and paths.upload_dir are required")
	}
	if c.Artifacts.Enabled && c.Artifacts.Bucket == "" {
		return fmt.Errorf("artifacts.bucket is required when artifacts are enabled")
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
