package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/docker/go-units"
	"github.com/joho/godotenv"
)

// envConfig is the DTO the environment is parsed into. Size fields are
// strings so values like "5MiB" or "50MB" work; they are converted with
// go-units afterwards.
type envConfig struct {
	ListenAddr                   string         `env:"LISTEN_ADDR"`
	DatabaseDSN                  string         `env:"DATABASE_DSN"`
	SecretKey                    string         `env:"SECRET_KEY"`
	AccessTokenValidityDuration  *time.Duration `env:"ACCESS_TOKEN_VALIDITY"`
	RefreshTokenValidityDuration *time.Duration `env:"REFRESH_TOKEN_VALIDITY"`
	S3AccessKey                  string         `env:"S3_ACCESS_KEY"`
	S3SecretKey                  string         `env:"S3_SECRET_KEY"`
	S3Bucket                     string         `env:"S3_BUCKET"`
	S3Region                     string         `env:"S3_REGION"`
	S3BaseEndpoint               string         `env:"S3_BASE_ENDPOINT"`
	S3UsePathStyle               *bool          `env:"S3_USE_PATH_STYLE"`
	ChunkSize                    string         `env:"CHUNK_SIZE"`
	ChunkThreshold               string         `env:"CHUNK_THRESHOLD"`
	MaxAttempts                  *int           `env:"UPLOAD_MAX_ATTEMPTS"`
	RetryBaseDelay               *time.Duration `env:"UPLOAD_RETRY_BASE_DELAY"`
	AttemptTimeout               *time.Duration `env:"UPLOAD_ATTEMPT_TIMEOUT"`
	MergeStrategy                string         `env:"MERGE_STRATEGY"`
	PresignExpiry                *time.Duration `env:"PRESIGN_EXPIRY"`
}

// parseEnv overlays values from a .env file (if present) and the process
// environment onto cfg. Unset variables leave the existing values alone.
func parseEnv(cfg *Config) {
	// a missing .env file is not an error
	_ = godotenv.Load()

	e := envConfig{}
	if err := env.Parse(&e); err != nil {
		panic(fmt.Errorf("parsing environment: %w", err))
	}

	if e.ListenAddr != "" {
		cfg.ListenAddr = e.ListenAddr
	}
	if e.DatabaseDSN != "" {
		cfg.DatabaseDSN = e.DatabaseDSN
	}
	if e.SecretKey != "" {
		cfg.SecretKey = e.SecretKey
	}
	if e.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = *e.AccessTokenValidityDuration
	}
	if e.RefreshTokenValidityDuration != nil {
		cfg.RefreshTokenValidityDuration = *e.RefreshTokenValidityDuration
	}
	if e.S3AccessKey != "" {
		cfg.S3AccessKey = e.S3AccessKey
	}
	if e.S3SecretKey != "" {
		cfg.S3SecretKey = e.S3SecretKey
	}
	if e.S3Bucket != "" {
		cfg.S3Bucket = e.S3Bucket
	}
	if e.S3Region != "" {
		cfg.S3Region = e.S3Region
	}
	if e.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = e.S3BaseEndpoint
	}
	if e.S3UsePathStyle != nil {
		cfg.S3UsePathStyle = *e.S3UsePathStyle
	}
	if e.ChunkSize != "" {
		cfg.ChunkSize = mustParseSize("CHUNK_SIZE", e.ChunkSize)
	}
	if e.ChunkThreshold != "" {
		cfg.ChunkThreshold = mustParseSize("CHUNK_THRESHOLD", e.ChunkThreshold)
	}
	if e.MaxAttempts != nil {
		cfg.MaxAttempts = *e.MaxAttempts
	}
	if e.RetryBaseDelay != nil {
		cfg.RetryBaseDelay = *e.RetryBaseDelay
	}
	if e.AttemptTimeout != nil {
		cfg.AttemptTimeout = *e.AttemptTimeout
	}
	if e.MergeStrategy != "" {
		cfg.MergeStrategy = e.MergeStrategy
	}
	if e.PresignExpiry != nil {
		cfg.PresignExpiry = *e.PresignExpiry
	}
}

// mustParseSize converts a human-readable size ("5MiB", "50MB", "1048576")
// to bytes.
func mustParseSize(name, value string) int64 {
	size, err := units.RAMInBytes(value)
	if err != nil {
		panic(fmt.Errorf("parsing %s: %w", name, err))
	}
	return size
}
