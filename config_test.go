// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lectern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lectern/cache"
)

func TestLoadConfig(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		t.Setenv(TavilyAPIKeyEnv, "")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, cache.DefaultThreshold, cfg.Threshold)
		assert.Equal(t, "basic", cfg.Search.Depth)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lectern.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
db_path: /var/lib/lectern
threshold: 0.95
ai:
  embedding_host: http://ollama:11434
  embedding_model: nomic-embed-text
search:
  api_key: tvly-test
  depth: advanced
telemetry:
  enabled: true
  exporter: stdout
`), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/lectern", cfg.DBPath)
		assert.Equal(t, float32(0.95), cfg.Threshold)
		assert.Equal(t, "http://ollama:11434/v1", cfg.AI.EmbeddingHost)
		assert.Equal(t, "qwen2.5:3b", cfg.AI.GenerationModel)
		assert.Equal(t, "tvly-test", cfg.Search.APIKey)
		assert.Equal(t, "advanced", cfg.Search.Depth)
		assert.True(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "stdout", cfg.Telemetry.Exporter)
	})

	t.Run("api key from environment", func(t *testing.T) {
		t.Setenv(TavilyAPIKeyEnv, "tvly-env")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "tvly-env", cfg.Search.APIKey)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("threshold: [1, 2"), 0644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"threshold above one", func(c *Config) { c.Threshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Threshold = -0.2 }},
		{"negative workers", func(c *Config) { c.IngestWorkers = -1 }},
		{"unknown depth", func(c *Config) { c.Search.Depth = "deep" }},
		{"bad ai config", func(c *Config) { c.AI.Temperature = 3 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
