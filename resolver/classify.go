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

package resolver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/lectern/core"
)

// Specialized is a topic resolver that outranks the generic book lookup
// whenever its trigger matches.
type Specialized interface {
	// Name identifies the resolver and its router state.
	Name() string

	// Triggered reports whether the query belongs to this resolver's domain.
	Triggered(ctx context.Context, query string) bool

	// Resolve builds the payload. A query with no matching books yields an
	// empty payload, not an error.
	Resolve(ctx context.Context, query string) (*core.SpecializedResult, error)
}

// ReservedNames are the built-in router states. A specialized resolver
// cannot use one as its name.
var ReservedNames = []string{"start", "domain_lookup", "web_fallback", "assemble_response", "done"}

// Classifier selects at most one specialized resolver per query.
type Classifier struct {
	resolvers []Specialized
	byName    map[string]Specialized
}

// NewClassifier creates a classifier that evaluates resolvers in the given order.
func NewClassifier(resolvers ...Specialized) (*Classifier, error) {
	c := &Classifier{byName: make(map[string]Specialized, len(resolvers))}
	for _, r := range resolvers {
		if r.Name() == "" || slices.Contains(ReservedNames, r.Name()) {
			return nil, fmt.Errorf("%w: %q", ErrReservedResolverName, r.Name())
		}
		if _, exists := c.byName[r.Name()]; exists {
			return nil, ErrDuplicateResolver
		}
		c.byName[r.Name()] = r
		c.resolvers = append(c.resolvers, r)
	}
	return c, nil
}

// Classify returns the name of the first resolver whose trigger matches, or "".
func (c *Classifier) Classify(ctx context.Context, query string) string {
	for _, r := range c.resolvers {
		if r.Triggered(ctx, query) {
			return r.Name()
		}
	}
	return ""
}

// Resolver returns the resolver registered under name.
func (c *Classifier) Resolver(name string) (Specialized, bool) {
	r, ok := c.byName[name]
	return r, ok
}

// Names lists resolver names in priority order.
func (c *Classifier) Names() []string {
	names := make([]string, len(c.resolvers))
	for i, r := range c.resolvers {
		names[i] = r.Name()
	}
	return names
}

// tokens returns the normalized words of a query.
func tokens(query string) []string {
	return strings.Fields(core.Normalize(query))
}

// containsPhrase reports whether phrase occurs in normalized on word boundaries.
func containsPhrase(normalized, phrase string) bool {
	return strings.Contains(" "+normalized+" ", " "+phrase+" ")
}
