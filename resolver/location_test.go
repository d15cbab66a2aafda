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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lectern/core"
)

func TestLocationResolver_Triggered(t *testing.T) {
	r, err := NewLocationResolver(setupFacts(t))
	require.NoError(t, err)
	ctx := context.Background()

	for _, query := range []string{
		"Novels set in Paris",
		"A history of Rome",
		"good travel writing",
		"books about Paris",
	} {
		assert.True(t, r.Triggered(ctx, query), query)
	}
	for _, query := range []string{"books about dragons", "books like Dune", ""} {
		assert.False(t, r.Triggered(ctx, query), query)
	}
}

func TestLocationResolver_GroupsByGenre(t *testing.T) {
	r, err := NewLocationResolver(setupFacts(t))
	require.NoError(t, err)

	result, err := r.Resolve(context.Background(), "Books set in Paris?")
	require.NoError(t, err)
	assert.Equal(t, LocationName, result.Resolver)
	assert.Equal(t, "paris", result.Location)
	require.Len(t, result.Categories, 2)

	assert.Equal(t, "Classic", result.Categories[0].Name)
	assert.Equal(t, "Classic books connected to paris", result.Categories[0].Description)
	assert.Equal(t, []core.BookTitle{
		{Title: "Les Miserables", Author: "Victor Hugo", PublishYear: 1862},
		{Title: "The Hunchback of Notre-Dame", Author: "Victor Hugo", PublishYear: 1831},
	}, result.Categories[0].Books)

	assert.Equal(t, "Memoir", result.Categories[1].Name)
	require.Len(t, result.Categories[1].Books, 1)
	assert.Equal(t, "A Moveable Feast", result.Categories[1].Books[0].Title)
}

func TestLocationResolver_UnknownPlace(t *testing.T) {
	r, err := NewLocationResolver(setupFacts(t))
	require.NoError(t, err)

	result, err := r.Resolve(context.Background(), "the history of ancient Rome")
	require.NoError(t, err)
	assert.Equal(t, "ancient rome", result.Location)
	assert.True(t, result.Empty())
}

func TestLocationResolver_NoPlace(t *testing.T) {
	r, err := NewLocationResolver(setupFacts(t))
	require.NoError(t, err)

	result, err := r.Resolve(context.Background(), "good travel books")
	require.NoError(t, err)
	assert.Empty(t, result.Location)
	assert.True(t, result.Empty())
}

func TestClassifier(t *testing.T) {
	facts := setupFacts(t)
	trading, err := NewTradingResolver(facts)
	require.NoError(t, err)
	location, err := NewLocationResolver(facts)
	require.NoError(t, err)

	c, err := NewClassifier(trading, location)
	require.NoError(t, err)
	assert.Equal(t, []string{TradingName, LocationName}, c.Names())

	ctx := context.Background()
	assert.Equal(t, TradingName, c.Classify(ctx, "crypto books"))
	assert.Equal(t, LocationName, c.Classify(ctx, "novels set in Paris"))
	assert.Equal(t, TradingName, c.Classify(ctx, "investing books set in Paris"), "first rule wins")
	assert.Empty(t, c.Classify(ctx, "books like Dune"))
	assert.Empty(t, c.Classify(ctx, ""))

	r, ok := c.Resolver(LocationName)
	require.True(t, ok)
	assert.Same(t, location, r)

	_, ok = c.Resolver("weather")
	assert.False(t, ok)
}

func TestNewClassifier_DuplicateName(t *testing.T) {
	facts := setupFacts(t)
	a, err := NewTradingResolver(facts)
	require.NoError(t, err)
	b, err := NewTradingResolver(facts)
	require.NoError(t, err)

	_, err = NewClassifier(a, b)
	assert.ErrorIs(t, err, ErrDuplicateResolver)
}

type namedResolver struct{ name string }

func (r namedResolver) Name() string                                 { return r.name }
func (r namedResolver) Triggered(ctx context.Context, q string) bool { return true }
func (r namedResolver) Resolve(ctx context.Context, q string) (*core.SpecializedResult, error) {
	return &core.SpecializedResult{Resolver: r.name}, nil
}

func TestNewClassifier_ReservedName(t *testing.T) {
	for _, name := range append([]string{""}, ReservedNames...) {
		t.Run(name, func(t *testing.T) {
			_, err := NewClassifier(namedResolver{name: "poetry"}, namedResolver{name: name})
			assert.ErrorIs(t, err, ErrReservedResolverName)
		})
	}

	c, err := NewClassifier(namedResolver{name: "poetry"})
	require.NoError(t, err)
	assert.Equal(t, "poetry", c.Classify(context.Background(), "anything"))
}
