package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration with the precedence ENV > file > defaults.
type Loader struct {
	configPath string
}

// NewLoader creates a loader. configPath may be empty; defaults and the
// environment then fully determine the configuration.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load resolves the configuration: defaults first, then the file, then the
// environment, then validation. DataDir is made absolute so later path joins
// cannot wander.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.mergeFile(&cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	mergeEnv(&cfg)

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (l *Loader) mergeFile(cfg *AppConfig) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(cfg); err != nil {
		if err == io.EOF {
			return nil // empty file keeps the defaults
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func mergeEnv(cfg *AppConfig) {
	cfg.Listen = envString(EnvListen, cfg.Listen)
	cfg.MetricsListen = envString(EnvMetricsListen, cfg.MetricsListen)
	cfg.DataDir = envString(EnvDataDir, cfg.DataDir)
	cfg.DocsDir = envString(EnvDocsDir, cfg.DocsDir)
	cfg.SiteConfig = envString(EnvSiteConfig, cfg.SiteConfig)
	cfg.LogLevel = envString(EnvLogLevel, cfg.LogLevel)
	cfg.RateLimit = envInt(EnvRateLimit, cfg.RateLimit)
	cfg.ShutdownGrace = envDuration(EnvShutdownGrace, cfg.ShutdownGrace)
	cfg.DefaultSeed = envInt64(EnvDefaultSeed, cfg.DefaultSeed)
}
