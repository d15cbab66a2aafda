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

package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/lectern/core"
)

// DefaultTavilyEndpoint is the Tavily search API URL.
const DefaultTavilyEndpoint = "https://api.tavily.com/search"

const maxBackoff = 30 * time.Second

// Tavily calls the Tavily search API.
type Tavily struct {
	apiKey   string
	endpoint string
	depth    string
	backoff  time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// TavilyOption configures a Tavily provider.
type TavilyOption func(*Tavily)

// WithEndpoint overrides the API URL.
func WithEndpoint(endpoint string) TavilyOption {
	return func(t *Tavily) {
		t.endpoint = endpoint
	}
}

// WithDepth sets Tavily's search depth (basic or advanced).
func WithDepth(depth string) TavilyOption {
	return func(t *Tavily) {
		t.depth = depth
	}
}

// WithHTTPClient sets the HTTP client, e.g. to change the timeout.
func WithHTTPClient(client *http.Client) TavilyOption {
	return func(t *Tavily) {
		t.client = client
	}
}

// WithBackoff sets the initial delay after a 429. It doubles on each retry up to 30s.
func WithBackoff(d time.Duration) TavilyOption {
	return func(t *Tavily) {
		t.backoff = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) TavilyOption {
	return func(t *Tavily) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTavily constructs a Tavily search provider.
func NewTavily(apiKey string, opts ...TavilyOption) *Tavily {
	t := &Tavily{
		apiKey:   apiKey,
		endpoint: DefaultTavilyEndpoint,
		depth:    "basic",
		backoff:  time.Second,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "tavily")
	return t
}

type tavilyRequest struct {
	Query       string `json:"query"`
	APIKey      string `json:"api_key"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   *string `json:"title"`
		URL     *string `json:"url"`
		Content *string `json:"content"`
	} `json:"results"`
}

// Search posts a query to Tavily, backing off and retrying while rate limited.
func (t *Tavily) Search(ctx context.Context, query string) ([]core.WebResult, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(tavilyRequest{
		Query:       query,
		APIKey:      t.apiKey,
		SearchDepth: t.depth,
		MaxResults:  MaxResults,
	})
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	delay := t.backoff
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = t.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		t.logger.Warn("rate limited, backing off", "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < maxBackoff {
			delay = min(delay*2, maxBackoff)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: "tavily", StatusCode: resp.StatusCode}
	}

	var response tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	results := make([]core.WebResult, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, core.WebResult{
			Title:   deref(r.Title),
			Content: deref(r.Content),
			URL:     deref(r.URL),
		})
		if len(results) >= MaxResults {
			break
		}
	}
	t.logger.Debug("search complete", "results", len(results))
	return results, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
