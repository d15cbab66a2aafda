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
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/cache"
	"github.com/poiesic/lectern/telemetry"
)

// TavilyAPIKeyEnv is consulted when the config file carries no search API key.
const TavilyAPIKeyEnv = "TAVILY_API_KEY"

// SearchConfig holds web search settings.
type SearchConfig struct {
	// APIKey is the Tavily API key. Without one every search fails and
	// answers degrade to an apology.
	APIKey string `yaml:"api_key"`

	// Endpoint overrides the Tavily search URL.
	Endpoint string `yaml:"endpoint"`

	// Depth is the Tavily search depth, "basic" or "advanced".
	Depth string `yaml:"depth"`
}

// Config is the complete lectern configuration.
type Config struct {
	// DBPath is the BadgerDB directory holding the cache and the fact store.
	DBPath string `yaml:"db_path"`

	// Threshold is the cosine similarity at or above which a new query is
	// treated as a paraphrase of a cached one.
	// Default: 0.90
	Threshold float32 `yaml:"threshold"`

	// IngestWorkers sizes the pool that embeds fresh web results.
	// Zero picks a size from the CPU count.
	IngestWorkers int `yaml:"ingest_workers"`

	AI        ai.Config        `yaml:"ai"`
	Search    SearchConfig     `yaml:"search"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// DefaultConfig returns a Config for a local OpenAI-compatible server.
func DefaultConfig() *Config {
	return &Config{
		DBPath:    "lectern.db",
		Threshold: cache.DefaultThreshold,
		AI:        *ai.DefaultConfig(),
		Search:    SearchConfig{Depth: "basic"},
		Telemetry: telemetry.Config{Exporter: "none"},
	}
}

// LoadConfig reads a YAML config file over the defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fills unset values from the environment and defaults.
func (c *Config) Normalize() {
	if c.Search.APIKey == "" {
		c.Search.APIKey = os.Getenv(TavilyAPIKeyEnv)
	}
	if c.Search.Depth == "" {
		c.Search.Depth = "basic"
	}
	if c.Threshold == 0 {
		c.Threshold = cache.DefaultThreshold
	}
	c.AI.Normalize()
}

// Validate checks that the configuration is usable.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.DBPath == "" {
		return errors.New("config: db_path is required")
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		return errors.New("config: threshold must be in (0, 1]")
	}
	if c.IngestWorkers < 0 {
		return errors.New("config: ingest_workers must not be negative")
	}
	switch c.Search.Depth {
	case "basic", "advanced":
	default:
		return fmt.Errorf("config: unknown search depth %q", c.Search.Depth)
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	return nil
}
