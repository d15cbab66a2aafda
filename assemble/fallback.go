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
	"fmt"
	"strings"

	"github.com/poiesic/lectern/core"
)

const fallbackTitles = 3

// Fallback builds answer text from the structured fields of state alone.
// It never mentions a title, name or number that is not already in state.
func Fallback(state *core.AgentState) string {
	query := strings.TrimSpace(state.Query)

	switch Select(state) {
	case SourceSpecialized:
		return specializedFallback(state.Specialized)
	case SourceWeb:
		return webFallback(query, state)
	case SourceGraph:
		if text := graphFallback(state.Graph); text != "" {
			return text
		}
	}

	if state.Notice != "" {
		return state.Notice
	}
	if query == "" {
		return "I couldn't find relevant information for an empty question. Please ask me about a book, an author or a genre."
	}
	return fmt.Sprintf("I couldn't find relevant information about '%s'. Could you try rephrasing your question?", query)
}

func webFallback(query string, state *core.AgentState) string {
	if len(state.Results) == 0 {
		if state.Notice != "" {
			return state.Notice
		}
		return fmt.Sprintf("I couldn't find any relevant information about '%s' from web searches. Could you try rephrasing your question?", query)
	}

	var titles []string
	for _, r := range state.Results {
		if r.Title != "" && len(titles) < fallbackTitles {
			titles = append(titles, r.Title)
		}
	}
	if len(titles) == 0 {
		return fmt.Sprintf("I searched for information about '%s', but I'm having trouble summarizing the results.", query)
	}
	return fmt.Sprintf("I found some information that might help with your question about '%s'. I found sources including %s.",
		query, strings.Join(titles, ", "))
}

func graphFallback(g *core.GraphFacts) string {
	switch g.Type {
	case core.GraphRecommendations:
		if len(g.Recommendations) == 0 {
			return "I looked for book recommendations but didn't find specific matches in our catalog. Try naming a book or genre you enjoy."
		}
		books := make([]string, len(g.Recommendations))
		for i, r := range g.Recommendations {
			books[i] = fmt.Sprintf("%q by %s", r.Title, orDefault(r.Author, "Unknown"))
		}
		if g.SearchTerm != "" {
			return fmt.Sprintf("If you liked %s, you might enjoy %s.", g.SearchTerm, strings.Join(books, ", "))
		}
		return fmt.Sprintf("Here are some highly rated books: %s.", strings.Join(books, ", "))
	case core.GraphAuthor:
		if g.Author == nil {
			return ""
		}
		text := authorHeading(g.Author) + "."
		if len(g.Author.Books) > 0 {
			text += " Known for: " + strings.Join(bookTitleList(g.Author.Books), ", ") + "."
		}
		if g.Author.Bio != "" {
			text += " " + g.Author.Bio
		}
		return text
	case core.GraphGenres:
		if len(g.Genres) == 0 {
			return "I don't have genre information in our catalog yet."
		}
		genres := make([]string, len(g.Genres))
		for i, genre := range g.Genres {
			genres[i] = fmt.Sprintf("%s (%d%%)", genre.Name, genre.Percentage)
		}
		return "The most common genres are " + strings.Join(genres, ", ") + "."
	}
	return ""
}

func specializedFallback(s *core.SpecializedResult) string {
	if len(s.Topics) > 0 {
		var parts []string
		for _, t := range s.Topics {
			if len(t.Books) > 0 {
				parts = append(parts, fmt.Sprintf("%s (%s)", t.Name, strings.Join(bookTitleList(t.Books), ", ")))
			}
		}
		if len(parts) == 0 {
			names := make([]string, len(s.Topics))
			for i, t := range s.Topics {
				names[i] = t.Name
			}
			return fmt.Sprintf("I know about these topics (%s) but couldn't find matching books in our catalog.", strings.Join(names, ", "))
		}
		return "Here are the topics and books I found: " + strings.Join(parts, "; ") + "."
	}

	if s.Location == "" {
		return "I couldn't tell which place you're asking about. Try naming a city or country."
	}
	if s.Empty() {
		return fmt.Sprintf("I couldn't find books connected to %s in our catalog.", s.Location)
	}
	var titles []string
	for _, c := range s.Categories {
		titles = append(titles, bookTitleList(c.Books)...)
	}
	return fmt.Sprintf("Books connected to %s: %s.", s.Location, strings.Join(titles, ", "))
}
