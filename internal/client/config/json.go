package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"

	"github.com/mkorolis/studyvault/internal/flagx"
	"github.com/mkorolis/studyvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like
// "500ms" or as integer nanoseconds, and on go-units so sizes read as
// "5MiB". After parsing, values are copied into the runtime Config.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	ChunkSize      string         `json:"chunk_size"`
	MaxAttempts    int            `json:"max_attempts"`
	RetryBaseDelay timex.Duration `json:"retry_base_delay"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c or -config flags via flagx.JsonConfigFlags(); when
// neither is set, nothing is loaded. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.ChunkSize != "" {
		size, err := units.RAMInBytes(jc.ChunkSize)
		if err != nil {
			panic(fmt.Errorf("parsing chunk_size: %w", err))
		}
		cfg.ChunkSize = size
	}
	if jc.MaxAttempts != 0 {
		cfg.MaxAttempts = jc.MaxAttempts
	}
	if jc.RetryBaseDelay.Duration != 0 {
		cfg.RetryBaseDelay = time.Duration(jc.RetryBaseDelay.Duration)
	}
}
