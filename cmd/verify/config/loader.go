// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global VerifyConfig
	once   sync.Once
)

// Load ensures the config is loaded into the Global variable. An empty
// path uses ~/.aleutian/verify.yaml, created with defaults on first run.
func Load(path string) error {
	var err error
	once.Do(func() {
		err = loadInternal(path)
	})
	return err
}

func loadInternal(path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not find the user's home directory: %w", err)
		}
		path = filepath.Join(home, ".aleutian", "verify.yaml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("First run detected, creating the config at %s\n", path)
		if err := createDefault(path); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read the config file: %w", err)
	}

	Global = DefaultConfig()
	if err = yaml.Unmarshal(data, &Global); err != nil {
		return fmt.Errorf("failed to parse the config file: %w", err)
	}
	applyEnvOverrides(&Global)

	if err := validator.New().Struct(Global); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides lets deployments switch backends without editing
// the file.
func applyEnvOverrides(cfg *VerifyConfig) {
	if v := os.Getenv("ALEUTIAN_VERIFY_BACKEND"); v != "" {
		cfg.ModelBackend.Type = v
	}
	if v := os.Getenv("ALEUTIAN_VERIFY_BASE_URL"); v != "" {
		cfg.ModelBackend.BaseURL = v
	}
	if v := os.Getenv("ALEUTIAN_VERIFY_MODEL"); v != "" {
		cfg.ModelBackend.Model = v
	}
	if v := os.Getenv("ALEUTIAN_VERIFY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
