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

package assemble

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
)

// Source names the data an answer is grounded in.
type Source string

const (
	SourceNone        Source = "none"
	SourceSpecialized Source = "specialized"
	SourceWeb         Source = "web"
	SourceGraph       Source = "graph"
)

// Select returns the highest priority populated source in state.
func Select(state *core.AgentState) Source {
	switch {
	case state.Specialized != nil:
		return SourceSpecialized
	case state.Provenance == core.ProvenanceCache || state.Provenance == core.ProvenanceWeb:
		return SourceWeb
	case state.Graph.Found():
		return SourceGraph
	}
	return SourceNone
}

// Assembler produces response text from router state.
type Assembler struct {
	generator ai.Generator
	logger    *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAssembler creates an assembler. A nil generator is allowed; every
// answer then comes from the deterministic fallback.
func NewAssembler(generator ai.Generator, opts ...Option) *Assembler {
	a := &Assembler{generator: generator, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "assembler")
	return a
}

// Assemble returns the answer text for state. The result is never empty.
func (a *Assembler) Assemble(ctx context.Context, state *core.AgentState) string {
	source := Select(state)

	prompt := ""
	switch source {
	case SourceSpecialized:
		if !state.Specialized.Empty() {
			prompt = groundedPrompt(state.Query, FormatSpecialized(state.Specialized), "catalog")
		}
	case SourceWeb:
		if len(state.Results) > 0 {
			prompt = webPrompt(state.Query, state.Results)
		}
	case SourceGraph:
		prompt = groundedPrompt(state.Query, FormatGraph(state.Graph), "knowledge graph")
	}

	if prompt != "" && a.generator != nil {
		text, err := a.generator.Generate(ctx, prompt)
		switch {
		case err != nil:
			a.logger.Warn("generation failed, using fallback", "source", source, "err", err)
		case strings.TrimSpace(text) == "":
			a.logger.Warn("generation returned empty text, using fallback", "source", source)
		default:
			return strings.TrimSpace(text)
		}
	}

	return Fallback(state)
}
