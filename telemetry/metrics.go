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

package telemetry

import "go.opentelemetry.io/otel/metric"

// Metrics holds the router's metric instruments.
type Metrics struct {
	ResolveDuration metric.Float64Histogram
	Resolutions     metric.Int64Counter
	CacheHits       metric.Int64Counter
	CacheMisses     metric.Int64Counter
	SearchErrors    metric.Int64Counter
	StepErrors      metric.Int64Counter
}

// NewMetrics creates all metric instruments from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.ResolveDuration, err = meter.Float64Histogram("lectern.resolve.duration",
		metric.WithDescription("Query resolution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.Resolutions, err = meter.Int64Counter("lectern.resolve.total",
		metric.WithDescription("Resolved queries by provenance"),
	)
	if err != nil {
		return nil, err
	}

	m.CacheHits, err = meter.Int64Counter("lectern.cache.hits",
		metric.WithDescription("Web fallbacks served from the semantic cache"),
	)
	if err != nil {
		return nil, err
	}

	m.CacheMisses, err = meter.Int64Counter("lectern.cache.misses",
		metric.WithDescription("Web fallbacks that required a fresh search"),
	)
	if err != nil {
		return nil, err
	}

	m.SearchErrors, err = meter.Int64Counter("lectern.search.errors",
		metric.WithDescription("Failed web searches"),
	)
	if err != nil {
		return nil, err
	}

	m.StepErrors, err = meter.Int64Counter("lectern.router.step_errors",
		metric.WithDescription("Router steps that failed or panicked"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
