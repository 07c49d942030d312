// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the concierge configuration: embedded YAML defaults,
// optionally overlaid by a config file, then by environment variables, then
// validated. Configuration is read once at startup and treated as immutable
// afterwards.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultConfigYAML []byte

// Config is the full concierge configuration.
//
// Thread Safety: Immutable after Load; safe for concurrent read access.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Router  RouterConfig  `yaml:"router"`
	Tracing TracingConfig `yaml:"tracing"`
	Memory  MemoryConfig  `yaml:"memory"`
	Policy  PolicyConfig  `yaml:"policy"`
	LLM     LLMConfig     `yaml:"llm"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Port is the TCP port the gin server binds.
	Port int `yaml:"port" validate:"gt=0,lte=65535"`

	// RateLimitRPS is the sustained request rate allowed on /chat.
	RateLimitRPS float64 `yaml:"rate_limit_rps" validate:"gt=0"`

	// RateLimitBurst is the burst size allowed on /chat.
	RateLimitBurst int `yaml:"rate_limit_burst" validate:"gt=0"`
}

// RouterConfig selects the routing strategy.
type RouterConfig struct {
	// Strategy is "rules" (sequential predicates) or "graph" (explicit
	// state machine). Both produce identical output; graph is preferred
	// when more domains will be added.
	Strategy string `yaml:"strategy" validate:"oneof=rules graph"`
}

// TracingConfig selects the tracing backend variant.
type TracingConfig struct {
	// Exporter is "none", "stdout", or "otlp".
	Exporter string `yaml:"exporter" validate:"oneof=none stdout otlp"`

	// Endpoint is the OTLP/gRPC collector address. Required when
	// Exporter is "otlp".
	Endpoint string `yaml:"endpoint" validate:"required_if=Exporter otlp"`
}

// MemoryConfig configures the interaction store.
type MemoryConfig struct {
	// Dir is the BadgerDB directory. Ignored when InMemory is set.
	Dir string `yaml:"dir" validate:"required_unless=InMemory true"`

	// InMemory keeps the store in process memory. Tests and demos only.
	InMemory bool `yaml:"in_memory"`
}

// PolicyConfig holds business policy knobs.
type PolicyConfig struct {
	// GoodwillMaxUSD caps any single goodwill credit. Larger requested
	// amounts are silently clamped, never rejected.
	GoodwillMaxUSD float64 `yaml:"goodwill_max_usd" validate:"gt=0"`

	// SupportGoodwillUSD is the amount the support flow requests for a
	// delayed order.
	SupportGoodwillUSD float64 `yaml:"support_goodwill_usd" validate:"gt=0"`
}

// LLMConfig configures the language-model client.
type LLMConfig struct {
	// Model is the chat completions model name.
	Model string `yaml:"model" validate:"required"`

	// Temperature is the fixed sampling temperature for tool-calling
	// rounds. Kept low for determinism-leaning behavior.
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
}

// Load builds the effective configuration.
//
// Description:
//
//	Layering, lowest priority first: embedded defaults, the optional YAML
//	file at path, environment variables. The merged result is validated;
//	an invalid configuration fails startup rather than limping along.
//
// Environment overrides:
//
//	NESTWELL_PORT, NESTWELL_ROUTER_STRATEGY, NESTWELL_TRACING_EXPORTER,
//	NESTWELL_TRACING_ENDPOINT, NESTWELL_MEMORY_DIR, GOODWILL_MAX,
//	OPENAI_MODEL
func Load(path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing embedded defaults: %w", err)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("NESTWELL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("NESTWELL_ROUTER_STRATEGY"); v != "" {
		cfg.Router.Strategy = v
	}
	if v := os.Getenv("NESTWELL_TRACING_EXPORTER"); v != "" {
		cfg.Tracing.Exporter = v
	}
	if v := os.Getenv("NESTWELL_TRACING_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
	}
	if v := os.Getenv("NESTWELL_MEMORY_DIR"); v != "" {
		cfg.Memory.Dir = v
	}
	if v := os.Getenv("GOODWILL_MAX"); v != "" {
		if max, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Policy.GoodwillMaxUSD = max
		}
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
}
