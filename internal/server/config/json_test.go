package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyJsonOverlay(t *testing.T) {
	raw := `{
		"listen_addr": ":9191",
		"database_dsn": "postgres://u:p@db:5432/app",
		"access_token_validity_duration": "45m",
		"chunk_size": "10MiB",
		"upload_attempt_timeout": "1m",
		"merge_strategy": "defer",
		"s3_use_path_style": false
	}`

	c := &JsonConfig{}
	require.NoError(t, json.Unmarshal([]byte(raw), c))

	cfg := &Config{}
	cfg.LoadDefaults()
	applyJson(cfg, c)

	assert.Equal(t, ":9191", cfg.ListenAddr)
	assert.Equal(t, "postgres://u:p@db:5432/app", cfg.DatabaseDSN)
	assert.Equal(t, 45*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, int64(10*1024*1024), cfg.ChunkSize)
	assert.Equal(t, time.Minute, cfg.AttemptTimeout)
	assert.Equal(t, "defer", cfg.MergeStrategy)
	assert.False(t, cfg.S3UsePathStyle)

	// fields the file does not name keep their defaults
	assert.Equal(t, "secretKey", cfg.SecretKey)
	assert.Equal(t, int64(50*1024*1024), cfg.ChunkThreshold)
}

func TestJsonConfigDurationForms(t *testing.T) {
	raw := `{"access_token_validity_duration": 60000000000, "presign_expiry": "10m"}`

	c := &JsonConfig{}
	require.NoError(t, json.Unmarshal([]byte(raw), c))

	assert.Equal(t, time.Minute, c.AccessTokenValidityDuration.Duration)
	assert.Equal(t, 10*time.Minute, c.PresignExpiry.Duration)
}
