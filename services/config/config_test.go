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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "rules", cfg.Router.Strategy)
	require.Equal(t, "none", cfg.Tracing.Exporter)
	require.Equal(t, 50.0, cfg.Policy.GoodwillMaxUSD)
	require.Equal(t, 20.0, cfg.Policy.SupportGoodwillUSD)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
}

func TestLoad_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "concierge.yaml")
	err := os.WriteFile(path, []byte("router:\n  strategy: graph\npolicy:\n  goodwill_max_usd: 25\n  support_goodwill_usd: 20\n"), 0o600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "graph", cfg.Router.Strategy)
	require.Equal(t, 25.0, cfg.Policy.GoodwillMaxUSD)
	// Untouched fields keep their defaults.
	require.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NESTWELL_PORT", "9090")
	t.Setenv("NESTWELL_ROUTER_STRATEGY", "graph")
	t.Setenv("GOODWILL_MAX", "75")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "graph", cfg.Router.Strategy)
	require.Equal(t, 75.0, cfg.Policy.GoodwillMaxUSD)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad strategy", env: map[string]string{"NESTWELL_ROUTER_STRATEGY": "coinflip"}},
		{name: "bad exporter", env: map[string]string{"NESTWELL_TRACING_EXPORTER": "jaeger2"}},
		{name: "otlp without endpoint", env: map[string]string{"NESTWELL_TRACING_EXPORTER": "otlp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
