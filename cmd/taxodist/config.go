// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// configValidate is the shared validator instance for config structs.
var configValidate = validator.New()

// Config holds run defaults loaded from an optional YAML file.
// Command-line flags override any value set here.
type Config struct {
	// Email is the caller identity for the directory service.
	Email string `yaml:"email" validate:"omitempty,email"`

	// CacheIn is a flat JSON lineage cache to preload.
	CacheIn string `yaml:"cache_in"`

	// CacheOut is where the lineage cache is persisted after the run.
	CacheOut string `yaml:"cache_out"`

	// CacheDir enables the persistent BadgerDB cache tier.
	CacheDir string `yaml:"cache_dir"`

	// BranchPenalty weights descending tree edges (1 = plain metric).
	BranchPenalty int `yaml:"branch_penalty" validate:"omitempty,gte=1"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogDir enables JSON file logging.
	LogDir string `yaml:"log_dir"`
}

// loadConfig reads and validates the YAML config file. A missing file
// yields a zero Config: the file is optional, flags can carry a full
// run on their own.
func loadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := configValidate.Struct(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// merged returns the effective run settings: every flag that was left
// at its zero value falls back to the config file.
func (c Config) merged(flags Config) Config {
	out := flags
	if out.Email == "" {
		out.Email = c.Email
	}
	if out.CacheIn == "" {
		out.CacheIn = c.CacheIn
	}
	if out.CacheOut == "" {
		out.CacheOut = c.CacheOut
	}
	if out.CacheDir == "" {
		out.CacheDir = c.CacheDir
	}
	if out.BranchPenalty == 0 {
		out.BranchPenalty = c.BranchPenalty
	}
	if out.LogLevel == "" {
		out.LogLevel = c.LogLevel
	}
	if out.LogDir == "" {
		out.LogDir = c.LogDir
	}
	return out
}
