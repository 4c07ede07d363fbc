package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment overrides, applied after the YAML file.
const (
	EnvPort     = "GOBARSCAN_PORT"
	EnvListen   = "GOBARSCAN_LISTEN"
	EnvMockText = "GOBARSCAN_MOCK_TEXT"
)

// LoadEnv loads the given dotenv files into the process environment. Missing
// files are skipped; variables already set are not overwritten.
func LoadEnv(filenames ...string) error {
	for _, f := range filenames {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides configuration fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvPort); v != "" {
		c.Serial.Port = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Status.Listen = v
	}
	if v := os.Getenv(EnvMockText); v != "" {
		c.Mock.Text = v
	}
}
