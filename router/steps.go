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

package router

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"

	"github.com/poiesic/lectern/assemble"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/resolver"
	"github.com/poiesic/lectern/telemetry"
)

func (rn *run) start(ctx context.Context) (State, error) {
	return StateDomainLookup, nil
}

// domainLookup routes to a specialized resolver when one is triggered,
// otherwise runs the book lookup.
func (rn *run) domainLookup(ctx context.Context) (State, error) {
	if rn.classifier != nil {
		if name := rn.classifier.Classify(ctx, rn.state.Query); name != "" {
			if State(name).Builtin() {
				return "", fmt.Errorf("%w: classifier chose built-in state %q", core.ErrContractViolation, name)
			}
			rn.monitor.Classified(name)
			rn.logger.Debug("specialized resolver triggered", "resolver", name)
			return State(name), nil
		}
	}

	facts, err := rn.books.Lookup(ctx, rn.state.Query)
	if err != nil {
		rn.logger.Warn("book lookup failed, treating as no data", "err", err)
		return StateWebFallback, nil
	}
	if !facts.Found() {
		return StateWebFallback, nil
	}

	rn.state.Graph = facts
	rn.state.Provenance = core.ProvenanceGraph
	rn.state.Found = true
	return StateAssemble, nil
}

// specialized runs one topic resolver. A failure leaves an empty payload.
func (rn *run) specialized(ctx context.Context, r resolver.Specialized) (State, error) {
	rn.state.Provenance = core.ProvenanceSpecialized
	rn.state.Specialized = &core.SpecializedResult{Resolver: r.Name()}

	result, err := r.Resolve(ctx, rn.state.Query)
	if err != nil {
		rn.logger.Warn("specialized resolver failed", "resolver", r.Name(), "err", err)
		return StateAssemble, nil
	}
	if result != nil {
		rn.state.Specialized = result
	}
	rn.state.Found = !rn.state.Specialized.Empty()
	return StateAssemble, nil
}

// webFallback serves exact repeats from the cache and searches otherwise.
func (rn *run) webFallback(ctx context.Context) (State, error) {
	query := rn.state.Query

	cached, err := rn.cache.GetCachedResults(ctx, query)
	if err != nil {
		rn.logger.Warn("cache lookup failed, treating as miss", "err", err)
	}
	if len(cached) > 0 {
		rn.metrics.CacheHits.Add(ctx, 1)
		rn.monitor.CacheHit(len(cached))
		rn.state.Provenance = core.ProvenanceCache
		rn.state.Found = true
		rn.state.Results = cached
		return StateAssemble, nil
	}
	rn.metrics.CacheMisses.Add(ctx, 1)
	rn.monitor.CacheMiss()

	rn.state.Provenance = core.ProvenanceWeb
	rn.state.Results = []core.WebResult{}

	results, err := rn.searchWeb(ctx, query)
	rn.monitor.SearchCompleted(len(results), err)
	if err != nil {
		rn.metrics.SearchErrors.Add(ctx, 1)
		rn.logger.Warn("web search failed", "err", err)
		rn.state.Notice = fmt.Sprintf(searchFailureFormat, query)
		return StateAssemble, nil
	}

	if len(results) > 0 {
		rn.state.Results = results
		rn.state.Found = true
		if rn.ingester != nil {
			if err := rn.ingester.Ingest(ctx, query, results); err != nil {
				rn.logger.Warn("error caching web results", "err", err)
			}
		}
	}
	return StateAssemble, nil
}

func (rn *run) searchWeb(ctx context.Context, query string) ([]core.WebResult, error) {
	ctx, span := telemetry.StartClientSpan(ctx, rn.tracer, "websearch.search")
	defer span.End()

	results, err := rn.search.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(telemetry.AttrResults.Int(len(results)))
	return results, nil
}

func (rn *run) assembleResponse(ctx context.Context) (State, error) {
	text := rn.assembler.Assemble(ctx, rn.state)
	if text == "" {
		text = assemble.Fallback(rn.state)
	}
	rn.state.ResponseText = text
	return StateDone, nil
}
