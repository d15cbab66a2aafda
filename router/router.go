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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/poiesic/lectern/assemble"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/resolver"
	"github.com/poiesic/lectern/telemetry"
	"github.com/poiesic/lectern/websearch"
)

const (
	defaultMaxSteps     = 16
	searchFailureFormat = "I apologize, but I was unable to perform a web search for '%s'. You might want to try reformulating your question or asking something else."
)

// BookLookup is the generic graph domain lookup. *resolver.BookResolver satisfies it.
type BookLookup interface {
	Lookup(ctx context.Context, query string) (*core.GraphFacts, error)
}

// Classifier selects a specialized resolver. *resolver.Classifier satisfies it.
type Classifier interface {
	Classify(ctx context.Context, query string) string
	Resolver(name string) (resolver.Specialized, bool)
}

// Cache serves exact-match repeat lookups of earlier web results. *cache.Store satisfies it.
type Cache interface {
	GetCachedResults(ctx context.Context, query string) ([]core.WebResult, error)
}

// Ingester persists fresh web results. *ingestion.Pipeline satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, query string, results []core.WebResult) error
}

// Assembler produces the final answer text. *assemble.Assembler satisfies it.
type Assembler interface {
	Assemble(ctx context.Context, state *core.AgentState) string
}

// Router resolves queries by walking the resolver state machine.
type Router struct {
	books      BookLookup
	classifier Classifier
	cache      Cache
	search     websearch.Provider
	ingester   Ingester
	assembler  Assembler
	monitor    Monitor
	tracer     trace.Tracer
	metrics    *telemetry.Metrics
	maxSteps   int
	logger     *slog.Logger
}

// Option configures a Router.
type Option func(*Router) error

// WithClassifier sets the specialized resolver classifier. Without one no
// specialized resolver ever runs.
func WithClassifier(classifier Classifier) Option {
	return func(r *Router) error {
		r.classifier = classifier
		return nil
	}
}

// WithIngester sets where fresh web results are persisted.
func WithIngester(ingester Ingester) Option {
	return func(r *Router) error {
		r.ingester = ingester
		return nil
	}
}

// WithMonitor sets a monitor that observes every run.
func WithMonitor(monitor Monitor) Option {
	return func(r *Router) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// WithTracer sets the tracer used for run and step spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Router) error {
		if tracer != nil {
			r.tracer = tracer
		}
		return nil
	}
}

// WithMetrics sets the metric instruments.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(r *Router) error {
		if metrics != nil {
			r.metrics = metrics
		}
		return nil
	}
}

// WithMaxSteps bounds the number of transitions in one run.
func WithMaxSteps(n int) Option {
	return func(r *Router) error {
		if n < 1 {
			return fmt.Errorf("max steps must be positive, got %d", n)
		}
		r.maxSteps = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// New creates a router.
func New(books BookLookup, cache Cache, search websearch.Provider, assembler Assembler, opts ...Option) (*Router, error) {
	if books == nil {
		return nil, ErrBookResolverRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if search == nil {
		return nil, ErrSearchRequired
	}
	if assembler == nil {
		return nil, ErrAssemblerRequired
	}

	noop := telemetry.Noop()
	metrics, err := telemetry.NewMetrics(noop.Meter)
	if err != nil {
		return nil, err
	}

	r := &Router{
		books:     books,
		cache:     cache,
		search:    search,
		assembler: assembler,
		monitor:   &noopMonitor{},
		tracer:    noop.Tracer,
		metrics:   metrics,
		maxSteps:  defaultMaxSteps,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "router")
	return r, nil
}

// run is the per-call context of one Resolve.
type run struct {
	*Router
	state  *core.AgentState
	logger *slog.Logger
}

// Resolve answers query. It always returns an answer; a non-nil error wraps
// core.ErrContractViolation and means the state machine itself misbehaved.
func (r *Router) Resolve(ctx context.Context, query string) (core.Answer, error) {
	started := time.Now()
	requestID := uuid.NewString()

	ctx, span := telemetry.StartSpan(ctx, r.tracer, "router.resolve", telemetry.AttrRequestID.String(requestID))
	defer span.End()

	rn := &run{
		Router: r,
		state:  core.NewAgentState(query),
		logger: r.logger.With("request_id", requestID),
	}
	r.monitor.Start(requestID, query)
	rn.logger.Info("resolving query", "query", query)

	err := rn.drive(ctx)

	answer := core.AnswerFromState(rn.state)
	provenance := telemetry.AttrProvenance.String(string(answer.Provenance))
	r.metrics.ResolveDuration.Record(ctx, time.Since(started).Seconds(), metric.WithAttributes(provenance))
	r.metrics.Resolutions.Add(ctx, 1, metric.WithAttributes(provenance))
	span.SetAttributes(provenance)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		rn.logger.Error("router contract violation", "err", err)
	} else {
		rn.logger.Info("query resolved", "provenance", answer.Provenance, "found", rn.state.Found,
			"elapsed", time.Since(started))
	}
	r.monitor.Finish(answer)
	return answer, err
}

// drive walks the state machine from start to done.
func (rn *run) drive(ctx context.Context) error {
	current := StateStart
	for steps := 0; current != StateDone; steps++ {
		if steps >= rn.maxSteps {
			return fmt.Errorf("%w: exceeded %d steps at state %q", core.ErrContractViolation, rn.maxSteps, current)
		}

		step, ok := rn.stepFor(current)
		if !ok {
			return fmt.Errorf("%w: no transition defined for state %q", core.ErrContractViolation, current)
		}

		rn.monitor.EnterState(current)
		next, err := rn.runStep(ctx, current, step)
		if errors.Is(err, core.ErrContractViolation) {
			return err
		}
		if err != nil {
			rn.metrics.StepErrors.Add(ctx, 1, metric.WithAttributes(telemetry.AttrStep.String(string(current))))
			rn.monitor.StepFailed(current, err)
			rn.logger.Warn("router step failed", "step", current, "err", err)
			next = rn.repair(current)
		}
		rn.logger.Debug("transition", "from", current, "to", next)
		current = next
	}
	return nil
}

type stepFunc func(ctx context.Context) (State, error)

func (rn *run) stepFor(s State) (stepFunc, bool) {
	switch s {
	case StateStart:
		return rn.start, true
	case StateDomainLookup:
		return rn.domainLookup, true
	case StateWebFallback:
		return rn.webFallback, true
	case StateAssemble:
		return rn.assembleResponse, true
	}
	if rn.classifier != nil {
		if specialized, ok := rn.classifier.Resolver(string(s)); ok {
			return func(ctx context.Context) (State, error) {
				return rn.specialized(ctx, specialized)
			}, true
		}
	}
	return nil, false
}

// runStep executes one step in its own span, converting a panic into an error.
func (rn *run) runStep(ctx context.Context, s State, step stepFunc) (next State, err error) {
	ctx, span := telemetry.StartSpan(ctx, rn.tracer, "router."+string(s), telemetry.AttrStep.String(string(s)))
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %s: %v", ErrStepPanicked, s, p)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	return step(ctx)
}

// repair fixes up state after a failed step and names the state to continue from.
func (rn *run) repair(failed State) State {
	s := rn.state
	switch failed {
	case StateStart:
		return StateDomainLookup
	case StateDomainLookup:
		s.Graph = nil
		return StateWebFallback
	case StateWebFallback:
		s.Provenance = core.ProvenanceWeb
		s.Found = false
		s.Results = []core.WebResult{}
		s.Notice = fmt.Sprintf(searchFailureFormat, s.Query)
		return StateAssemble
	case StateAssemble:
		s.ResponseText = assemble.Fallback(s)
		return StateDone
	}

	// A specialized resolver failed.
	s.Provenance = core.ProvenanceSpecialized
	if s.Specialized == nil {
		s.Specialized = &core.SpecializedResult{Resolver: string(failed)}
	}
	s.Found = !s.Specialized.Empty()
	return StateAssemble
}
