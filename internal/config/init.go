package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Example returns the configuration written by docsite init.
func Example() *Config {
	cfg := Default()
	cfg.Output.Clean = true
	cfg.Snapshots.Enabled = true
	cfg.Schedule.RebuildInterval = time.Hour
	cfg.Events.URL = "${DOCSITE_NATS_URL}"
	return cfg
}

// Init writes an example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("file", configPath).Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal example configuration").Build()
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "create configuration directory").
				WithContext("dir", dir).Build()
		}
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write configuration").
			WithContext("file", configPath).Build()
	}
	return nil
}
