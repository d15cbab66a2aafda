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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lectern/ai/mock"
	"github.com/poiesic/lectern/core"
)

func graphState() *core.AgentState {
	s := core.NewAgentState("books similar to Dune")
	s.Provenance = core.ProvenanceGraph
	s.Found = true
	s.Graph = &core.GraphFacts{
		Type:       core.GraphRecommendations,
		SearchTerm: "dune",
		Recommendations: []core.Recommendation{
			{Title: "Hyperion", Author: "Dan Simmons", Rating: 4.5, MatchScore: 66},
			{Title: "The Hobbit", Author: "J.R.R. Tolkien", Rating: 4.7, MatchScore: 33},
		},
	}
	return s
}

func webState(results ...core.WebResult) *core.AgentState {
	s := core.NewAgentState("latest fantasy releases")
	s.Provenance = core.ProvenanceWeb
	s.Found = len(results) > 0
	s.Results = results
	return s
}

func TestSelect_Priority(t *testing.T) {
	s := graphState()
	assert.Equal(t, SourceGraph, Select(s))

	s.Provenance = core.ProvenanceCache
	s.Results = []core.WebResult{{Title: "x"}}
	assert.Equal(t, SourceWeb, Select(s))

	s.Specialized = &core.SpecializedResult{Resolver: "trading"}
	assert.Equal(t, SourceSpecialized, Select(s))

	assert.Equal(t, SourceNone, Select(core.NewAgentState("q")))
}

func TestAssemble_UsesGenerator(t *testing.T) {
	gen := mock.NewMockGenerator("  You might enjoy Hyperion.  ")
	a := NewAssembler(gen)

	text := a.Assemble(context.Background(), graphState())
	assert.Equal(t, "You might enjoy Hyperion.", text)
	require.Equal(t, 1, gen.CallCount())

	prompt := gen.LastPrompt()
	assert.Contains(t, prompt, `1. "Hyperion" by Dan Simmons - 66% match`)
	assert.Contains(t, prompt, `2. "The Hobbit" by J.R.R. Tolkien - 33% match`)
	assert.Contains(t, prompt, `User query: "books similar to Dune"`)
	assert.Contains(t, prompt, "DO NOT make up fake book titles or authors")
}

func TestAssemble_FallsBackOnGeneratorError(t *testing.T) {
	gen := mock.NewMockGenerator("")
	gen.Err = errors.New("model unavailable")
	a := NewAssembler(gen)

	text := a.Assemble(context.Background(), graphState())
	assert.Equal(t, `If you liked dune, you might enjoy "Hyperion" by Dan Simmons, "The Hobbit" by J.R.R. Tolkien.`, text)
}

func TestAssemble_FallsBackOnEmptyGeneration(t *testing.T) {
	a := NewAssembler(mock.NewMockGenerator("   "))
	text := a.Assemble(context.Background(), webState(
		core.WebResult{Title: "Fantasy 2025", URL: "https://a", Content: "New books."},
		core.WebResult{Title: "", URL: "https://b"},
		core.WebResult{Title: "Tor Picks", URL: "https://c"},
	))
	assert.Equal(t, "I found some information that might help with your question about 'latest fantasy releases'. I found sources including Fantasy 2025, Tor Picks.", text)
}

func TestAssemble_NilGenerator(t *testing.T) {
	a := NewAssembler(nil)
	text := a.Assemble(context.Background(), graphState())
	assert.NotEmpty(t, text)
	assert.Contains(t, text, "Hyperion")
}

func TestAssemble_WebPromptClipsAndLimits(t *testing.T) {
	gen := mock.NewMockGenerator("ok")
	a := NewAssembler(gen)

	long := strings.Repeat("é", 600)
	results := []core.WebResult{
		{Title: "One", URL: "https://1", Content: long},
		{Title: "Two", URL: "https://2"},
		{Title: "Three", URL: "https://3"},
		{Title: "Four", URL: "https://4"},
		{Title: "Five", URL: "https://5"},
	}
	a.Assemble(context.Background(), webState(results...))

	prompt := gen.LastPrompt()
	assert.Contains(t, prompt, "Source 1: One\nURL: https://1\nContent: "+strings.Repeat("é", 500)+"...\n")
	assert.Contains(t, prompt, "Source 4: Four")
	assert.NotContains(t, prompt, "Source 5")
	assert.NotContains(t, prompt, strings.Repeat("é", 501))
}

func TestAssemble_SearchFailureUsesNotice(t *testing.T) {
	gen := mock.NewMockGenerator("should not be used")
	a := NewAssembler(gen)

	s := webState()
	s.Notice = "I apologize, but I was unable to perform a web search."
	assert.Equal(t, s.Notice, a.Assemble(context.Background(), s))
	assert.Zero(t, gen.CallCount())
}

func TestAssemble_NoWebResults(t *testing.T) {
	a := NewAssembler(mock.NewMockGenerator("unused"))
	text := a.Assemble(context.Background(), webState())
	assert.Equal(t, "I couldn't find any relevant information about 'latest fantasy releases' from web searches. Could you try rephrasing your question?", text)
}

func TestAssemble_NothingFound(t *testing.T) {
	a := NewAssembler(mock.NewMockGenerator("unused"))

	text := a.Assemble(context.Background(), core.NewAgentState("  "))
	assert.NotEmpty(t, text)

	text = a.Assemble(context.Background(), core.NewAgentState("zzz"))
	assert.Equal(t, "I couldn't find relevant information about 'zzz'. Could you try rephrasing your question?", text)
}

func TestAssemble_EmptyRecommendationsAddsNote(t *testing.T) {
	gen := mock.NewMockGenerator("Sorry, nothing specific.")
	a := NewAssembler(gen)

	s := core.NewAgentState("recommend something")
	s.Provenance = core.ProvenanceGraph
	s.Graph = &core.GraphFacts{Type: core.GraphRecommendations}

	assert.Equal(t, "Sorry, nothing specific.", a.Assemble(context.Background(), s))
	assert.Contains(t, gen.LastPrompt(), "NOTE: We detected a request for book recommendations")
	assert.Contains(t, gen.LastPrompt(), "Do not invent titles.")
}

func TestFormatGraph_AuthorAndGenres(t *testing.T) {
	author := FormatGraph(&core.GraphFacts{
		Type: core.GraphAuthor,
		Author: &core.AuthorFacts{
			Name:  "Frank Herbert",
			Books: []core.BookTitle{{Title: "Dune"}, {Title: "Dune Messiah"}},
		},
	})
	assert.Contains(t, author, "Frank Herbert (Unknown-present)\n")
	assert.Contains(t, author, "Known for: Dune, Dune Messiah\n")
	assert.Contains(t, author, "Bio: No biography available\n")

	genres := FormatGraph(&core.GraphFacts{
		Type:   core.GraphGenres,
		Genres: []core.GenreShare{{Name: "Adventure", Percentage: 25}},
	})
	assert.Contains(t, genres, "1. Adventure (25% of books)\n")
}

func TestFallback_Graph(t *testing.T) {
	author := core.NewAgentState("who is frank herbert")
	author.Provenance = core.ProvenanceGraph
	author.Graph = &core.GraphFacts{
		Type: core.GraphAuthor,
		Author: &core.AuthorFacts{
			Name: "Frank Herbert", BirthYear: "1920", DeathYear: "1986", Bio: "American author.",
			Books: []core.BookTitle{{Title: "Dune"}},
		},
	}
	assert.Equal(t, "Frank Herbert (1920-1986). Known for: Dune. American author.", Fallback(author))

	genres := core.NewAgentState("genres")
	genres.Provenance = core.ProvenanceGraph
	genres.Graph = &core.GraphFacts{
		Type:   core.GraphGenres,
		Genres: []core.GenreShare{{Name: "Adventure", Percentage: 25}, {Name: "Classic", Percentage: 16}},
	}
	assert.Equal(t, "The most common genres are Adventure (25%), Classic (16%).", Fallback(genres))

	top := graphState()
	top.Graph.SearchTerm = ""
	assert.Equal(t, `Here are some highly rated books: "Hyperion" by Dan Simmons, "The Hobbit" by J.R.R. Tolkien.`, Fallback(top))
}

func TestFallback_Specialized(t *testing.T) {
	trading := core.NewAgentState("crypto books")
	trading.Provenance = core.ProvenanceSpecialized
	trading.Specialized = &core.SpecializedResult{
		Resolver: "trading",
		Topics: []core.TopicBooks{
			{Name: "Cryptocurrency", Books: []core.BookTitle{{Title: "The Bitcoin Standard"}}},
			{Name: "Forex"},
		},
	}
	assert.Equal(t, "Here are the topics and books I found: Cryptocurrency (The Bitcoin Standard).", Fallback(trading))

	trading.Specialized.Topics[0].Books = nil
	assert.Equal(t, "I know about these topics (Cryptocurrency, Forex) but couldn't find matching books in our catalog.", Fallback(trading))

	location := core.NewAgentState("books set in paris")
	location.Provenance = core.ProvenanceSpecialized
	location.Specialized = &core.SpecializedResult{
		Resolver: "location",
		Location: "paris",
		Categories: []core.TopicBooks{
			{Name: "Classic", Books: []core.BookTitle{{Title: "Les Miserables"}}},
			{Name: "Memoir", Books: []core.BookTitle{{Title: "A Moveable Feast"}}},
		},
	}
	assert.Equal(t, "Books connected to paris: Les Miserables, A Moveable Feast.", Fallback(location))

	location.Specialized.Categories = nil
	assert.Equal(t, "I couldn't find books connected to paris in our catalog.", Fallback(location))

	location.Specialized.Location = ""
	assert.Equal(t, "I couldn't tell which place you're asking about. Try naming a city or country.", Fallback(location))
}

func TestAssemble_SpecializedPrompt(t *testing.T) {
	gen := mock.NewMockGenerator("Try The Bitcoin Standard.")
	a := NewAssembler(gen)

	s := core.NewAgentState("crypto books")
	s.Provenance = core.ProvenanceSpecialized
	s.Specialized = &core.SpecializedResult{
		Resolver: "trading",
		Topics: []core.TopicBooks{{
			Name:        "Cryptocurrency",
			Description: "Digital assets.",
			Books:       []core.BookTitle{{Title: "The Bitcoin Standard", Author: "Saifedean Ammous", PublishYear: 2018}},
		}},
	}
	assert.Equal(t, "Try The Bitcoin Standard.", a.Assemble(context.Background(), s))
	assert.Contains(t, gen.LastPrompt(), "Cryptocurrency: Digital assets.\n- \"The Bitcoin Standard\" by Saifedean Ammous (2018)\n")
}
