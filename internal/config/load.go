package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the site configuration from workDir. Extra config paths are
// merged over the base file in order; a later file wins key by key at the
// top level of each section. Environment variables in the file are expanded
// before parsing.
func Load(workDir string, extra ...string) (*Config, error) {
	cfg := &Config{}

	base := filepath.Join(workDir, DefaultFileName)
	paths := make([]string, 0, len(extra)+1)
	if _, err := os.Stat(base); err == nil {
		paths = append(paths, base)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config file %s: %w", base, err)
	}
	for _, p := range extra {
		if !filepath.IsAbs(p) {
			p = filepath.Join(workDir, p)
		}
		paths = append(paths, p)
	}

	for _, p := range paths {
		if err := mergeFile(cfg, p); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
