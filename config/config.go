// Package config loads runner settings from an optional YAML file. A missing
// file is not an error: every setting has a usable default.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentbridge/logging"
)

// Settings are the process-level knobs of the runner.
type Settings struct {
	// CacheCapacity bounds the session cache (0 = unbounded).
	CacheCapacity int `yaml:"cache_capacity"`
	// GitTimeoutSeconds bounds the source-code download step.
	GitTimeoutSeconds int `yaml:"git_timeout"`
	// Logging configures the diagnostic logger on stderr.
	Logging logging.Config `yaml:"logging"`
}

// Default returns the baseline settings.
func Default() Settings {
	return Settings{
		CacheCapacity:     0,
		GitTimeoutSeconds: 300,
		Logging:           logging.DefaultConfig(),
	}
}

// GitTimeout returns the download bound as a duration.
func (s Settings) GitTimeout() time.Duration {
	return time.Duration(s.GitTimeoutSeconds) * time.Second
}

// Load reads settings from path. An empty path or a missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (Settings, error) {
	settings := Default()

	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse config: %w", err)
	}

	return settings, nil
}
