package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/docker/go-units"

	"github.com/mkorolis/studyvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-k string   chunk size, human readable (e.g., "5MiB")
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL to access server")
	chunkSize := fs.String("k", "", "chunk size (e.g. 5MiB)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *chunkSize != "" {
		size, err := units.RAMInBytes(*chunkSize)
		if err != nil {
			panic(fmt.Errorf("parsing chunk size: %w", err))
		}
		cfg.ChunkSize = size
	}
}
