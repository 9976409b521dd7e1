package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mkorolis/studyvault/internal/flagx"
	"github.com/mkorolis/studyvault/internal/timex"
)

// JsonConfig is the DTO for JSON configuration files. Interval fields use
// timex.Duration, which accepts both strings such as "15m" and integer
// nanoseconds; sizes are human-readable strings ("5MiB").
//
// After unmarshalling, its fields are copied into the runtime Config.
// Zero values leave the target field alone, so a partial file overlays
// only what it names.
type JsonConfig struct {
	ListenAddr                   string         `json:"listen_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3AccessKey                  string         `json:"s3_access_key"`
	S3SecretKey                  string         `json:"s3_secret_key"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	S3UsePathStyle               *bool          `json:"s3_use_path_style"`
	ChunkSize                    string         `json:"chunk_size"`
	ChunkThreshold               string         `json:"chunk_threshold"`
	MaxAttempts                  int            `json:"upload_max_attempts"`
	RetryBaseDelay               timex.Duration `json:"upload_retry_base_delay"`
	AttemptTimeout               timex.Duration `json:"upload_attempt_timeout"`
	MergeStrategy                string         `json:"merge_strategy"`
	PresignExpiry                timex.Duration `json:"presign_expiry"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no file is loaded. An unreadable or invalid
// file panics, since running with a half-applied config is worse than not
// starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	applyJson(config, c)
}

func applyJson(config *Config, c *JsonConfig) {
	if c.ListenAddr != "" {
		config.ListenAddr = c.ListenAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.S3UsePathStyle != nil {
		config.S3UsePathStyle = *c.S3UsePathStyle
	}
	if c.ChunkSize != "" {
		config.ChunkSize = mustParseSize("chunk_size", c.ChunkSize)
	}
	if c.ChunkThreshold != "" {
		config.ChunkThreshold = mustParseSize("chunk_threshold", c.ChunkThreshold)
	}
	if c.MaxAttempts != 0 {
		config.MaxAttempts = c.MaxAttempts
	}
	if c.RetryBaseDelay.Duration != 0 {
		config.RetryBaseDelay = time.Duration(c.RetryBaseDelay.Duration)
	}
	if c.AttemptTimeout.Duration != 0 {
		config.AttemptTimeout = time.Duration(c.AttemptTimeout.Duration)
	}
	if c.MergeStrategy != "" {
		config.MergeStrategy = c.MergeStrategy
	}
	if c.PresignExpiry.Duration != 0 {
		config.PresignExpiry = time.Duration(c.PresignExpiry.Duration)
	}
}
