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

type VerifyConfig struct {
	// ModelBackend decides which generative backend adjudicates
	// statements.
	ModelBackend BackendConfig `yaml:"model_backend" validate:"required"`

	// Pipeline tunes fan-out and retry behavior.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Logging configures the process-wide logger.
	Logging LoggingConfig `yaml:"logging"`
}

type BackendConfig struct {
	// Type can be "gemini" or "openai" (the latter covers any
	// OpenAI-compatible endpoint such as LM Studio or vLLM).
	Type string `yaml:"type" validate:"required,oneof=gemini openai"`

	// BaseURL overrides the backend's default endpoint; required for
	// local gateways.
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`

	// Model names the model; empty falls back to the backend default.
	Model string `yaml:"model,omitempty"`
}

type PipelineConfig struct {
	// Concurrency bounds parallel adjudication calls.
	Concurrency int `yaml:"concurrency" validate:"gte=0,lte=64"`

	// MaxAttempts bounds retries of transient model failures.
	MaxAttempts int `yaml:"max_attempts" validate:"gte=0,lte=10"`

	// CallTimeoutSeconds bounds one model call.
	CallTimeoutSeconds int `yaml:"call_timeout_seconds" validate:"gte=0,lte=600"`

	// RequestIntervalMS throttles outbound model calls.
	RequestIntervalMS int `yaml:"request_interval_ms" validate:"gte=0,lte=60000"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir,omitempty"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig is what a first run writes to disk.
func DefaultConfig() VerifyConfig {
	return VerifyConfig{
		ModelBackend: BackendConfig{Type: "gemini"},
		Pipeline: PipelineConfig{
			Concurrency:        4,
			MaxAttempts:        3,
			CallTimeoutSeconds: 90,
			RequestIntervalMS:  500,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
