package config

import (
	"os"
	"strconv"
	"time"
)

// Environment keys. Every key carries the VOTEKIT_ prefix.
const (
	EnvListen        = "VOTEKIT_LISTEN"
	EnvMetricsListen = "VOTEKIT_METRICS_LISTEN"
	EnvDataDir       = "VOTEKIT_DATA_DIR"
	EnvDocsDir       = "VOTEKIT_DOCS_DIR"
	EnvSiteConfig    = "VOTEKIT_SITE_CONFIG"
	EnvLogLevel      = "VOTEKIT_LOG_LEVEL"
	EnvRateLimit     = "VOTEKIT_RATE_LIMIT"
	EnvShutdownGrace = "VOTEKIT_SHUTDOWN_GRACE"
	EnvDefaultSeed   = "VOTEKIT_DEFAULT_SEED"
)

func envString(key string, current string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return current
}

func envInt(key string, current int) int {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return current
}

func envInt64(key string, current int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return current
}

func envDuration(key string, current time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return current
}
