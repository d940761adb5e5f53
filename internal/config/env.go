package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Overrides holds the optional environment tweaks a deployment may set.
// Everything has a working default, nothing here is required.
type Overrides struct {
	// CacheDir replaces the default model weight cache location.
	CacheDir string
	// ModelMirror replaces the upstream host weights are downloaded from,
	// for air-gapped or bandwidth-limited installs.
	ModelMirror string
}

// LoadEnv loads environment variables from a .env file if one exists next to
// the binary or in the working directory. Missing files are fine, variables
// may be set system-wide instead.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// GetOverrides reads the recognized A2T_* environment variables.
func GetOverrides() Overrides {
	return Overrides{
		CacheDir:    strings.TrimSpace(os.Getenv("A2T_CACHE_DIR")),
		ModelMirror: strings.TrimSpace(os.Getenv("A2T_MODEL_MIRROR")),
	}
}
