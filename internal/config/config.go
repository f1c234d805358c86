// Package config loads the service configuration with the precedence
// ENV > file > defaults. The file is parsed strictly so typos fail fast
// instead of being silently ignored.
package config

import (
	"time"

	"github.com/mggg/votekit/internal/validate"
)

// AppConfig is the runtime configuration of the votekit service.
type AppConfig struct {
	Listen        string        `yaml:"listen"`
	MetricsListen string        `yaml:"metrics_listen"`
	DataDir       string        `yaml:"data_dir"`
	DocsDir       string        `yaml:"docs_dir"`
	SiteConfig    string        `yaml:"site_config"`
	LogLevel      string        `yaml:"log_level"`
	RateLimit     int           `yaml:"rate_limit"` // requests per minute per client
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
	DefaultSeed   int64         `yaml:"default_seed"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Listen:        ":8080",
		MetricsListen: ":9090",
		DataDir:       "./data",
		DocsDir:       "./docs",
		LogLevel:      "info",
		RateLimit:     120,
		ShutdownGrace: 10 * time.Second,
		DefaultSeed:   1,
	}
}

// Validate checks the configuration, accumulating every problem.
func (c *AppConfig) Validate() error {
	v := validate.New()

	v.NotEmpty("listen", c.Listen)
	v.NotEmpty("metrics_listen", c.MetricsListen)
	if c.Listen != "" && c.Listen == c.MetricsListen {
		v.AddError("metrics_listen", "metrics listener must differ from the API listener", c.MetricsListen)
	}

	v.Directory("data_dir", c.DataDir, false)
	v.Positive("rate_limit", c.RateLimit)

	if _, err := validate.ParseLogLevel(c.LogLevel); err != nil {
		v.AddError("log_level", err.Error(), c.LogLevel)
	}

	if c.ShutdownGrace < 0 {
		v.AddError("shutdown_grace", "shutdown grace cannot be negative", c.ShutdownGrace)
	}

	return v.Err()
}
