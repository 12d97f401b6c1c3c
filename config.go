// Package recstore is the root package: a tiny YAML-driven entry point that
// wires internal/storage/pager's B+-tree engine together with the outer
// Table and Maintenance scheduler.
package recstore

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMaxLoadedPages mirrors pager.DefaultMaxLoadedPages so callers of
// this package don't need to import internal/storage/pager just to read
// the default.
const DefaultMaxLoadedPages = 10

// Config is the on-disk shape of a recstore YAML config file. Only
// MaxLoadedPages, MaintenanceCron, and LogInstanceTag are runtime policy;
// the page size, TABLE_MAX_PAGES, and record shape are compile-time
// constants baked into the file format itself (SPEC_FULL.md §2.1).
type Config struct {
	Path            string `yaml:"path"`
	MaxLoadedPages  int    `yaml:"max_loaded_pages"`
	MaintenanceCron string `yaml:"maintenance_cron"`

	// LogInstanceTag prefixes the storage engine's log output with its
	// short instance id (pager.Options.LogInstanceTag). Defaults to true.
	LogInstanceTag bool `yaml:"log_instance_tag"`
}

// LoadConfig reads a YAML config from path. A missing file is not an
// error — it returns the defaults (max_loaded_pages: 10, no maintenance
// schedule), the same way the engine behaves when opened with zero
// configuration at all.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Path:           "data.db",
		MaxLoadedPages: DefaultMaxLoadedPages,
		LogInstanceTag: true,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.MaxLoadedPages <= 0 {
		cfg.MaxLoadedPages = DefaultMaxLoadedPages
	}
	return cfg, nil
}
