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
	"slices"
	"strings"

	"github.com/poiesic/lectern/core"
)

const (
	maxPromptResults = 4
	maxContentRunes  = 500
)

// FormatGraph renders graph facts as grounding context.
func FormatGraph(g *core.GraphFacts) string {
	var b strings.Builder
	b.WriteString("Based on the book knowledge graph:\n\n")

	switch g.Type {
	case core.GraphRecommendations:
		if len(g.Recommendations) == 0 {
			b.WriteString("No specific book recommendations found for this query in our knowledge graph.\n")
			b.WriteString("\nNOTE: We detected a request for book recommendations but did not find specific recommendations in our database.")
			b.WriteString("\nPlease acknowledge this and suggest the user try a different query. Do not invent titles.\n")
			break
		}
		if g.SearchTerm != "" {
			fmt.Fprintf(&b, "Books similar to %q:\n", g.SearchTerm)
		} else {
			b.WriteString("Book Recommendations:\n")
		}
		for i, r := range g.Recommendations {
			fmt.Fprintf(&b, "%d. %q by %s - %d%% match\n", i+1, r.Title, orDefault(r.Author, "Unknown"), r.MatchScore)
		}
	case core.GraphAuthor:
		if g.Author == nil {
			break
		}
		fmt.Fprintf(&b, "Author Information:\n%s\n", authorHeading(g.Author))
		fmt.Fprintf(&b, "Known for: %s\n", strings.Join(bookTitleList(g.Author.Books), ", "))
		fmt.Fprintf(&b, "Bio: %s\n", orDefault(g.Author.Bio, "No biography available"))
	case core.GraphGenres:
		if len(g.Genres) == 0 {
			b.WriteString("No genre information found in our knowledge graph.\n")
			break
		}
		b.WriteString("Top Genres:\n")
		for i, genre := range g.Genres {
			fmt.Fprintf(&b, "%d. %s (%d%% of books)\n", i+1, genre.Name, genre.Percentage)
		}
	}
	return b.String()
}

// FormatSpecialized renders a specialized payload as grounding context.
func FormatSpecialized(s *core.SpecializedResult) string {
	var b strings.Builder
	if s.Location != "" {
		fmt.Fprintf(&b, "Books connected to %s:\n\n", s.Location)
	} else if len(s.Topics) > 0 {
		b.WriteString("Trading topics and books:\n\n")
	}
	for _, group := range slices.Concat(s.Topics, s.Categories) {
		fmt.Fprintf(&b, "%s: %s\n", group.Name, group.Description)
		for _, book := range group.Books {
			fmt.Fprintf(&b, "- %s\n", describeBook(book))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatWeb renders up to four results with clipped content.
func FormatWeb(results []core.WebResult) string {
	var b strings.Builder
	for i, r := range results[:min(len(results), maxPromptResults)] {
		fmt.Fprintf(&b, "Source %d: %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "URL: %s\n", r.URL)
		fmt.Fprintf(&b, "Content: %s\n\n", clip(r.Content, maxContentRunes))
	}
	return b.String()
}

func groundedPrompt(query, grounding, source string) string {
	return fmt.Sprintf(`You are a helpful assistant for Lectern, a book discovery service.

%s
User query: %q

Please respond to the user in a helpful, conversational manner using the %s data provided.
Make your response friendly and concise. If recommending books, explain briefly why they might enjoy them.

If the data above does not contain specific book recommendations or information,
DO NOT make up fake book titles or authors. Acknowledge that you don't have that information
and offer to help with a different query.
`, grounding, query, source)
}

func webPrompt(query string, results []core.WebResult) string {
	return fmt.Sprintf(`You are a helpful assistant for Lectern, a book discovery service.
The user has asked: %q

I couldn't find relevant information in our book database, but I found these web search results:

%s
Based on these search results, please provide a helpful, conversational response to the user's query.
Focus on book-related information and recommendations if available.
If the search results don't directly answer the question, say so and share the most relevant information you found.
Do not invent titles or authors that are not in the results.
`, query, FormatWeb(results))
}

func authorHeading(a *core.AuthorFacts) string {
	return fmt.Sprintf("%s (%s-%s)", a.Name, orDefault(a.BirthYear, "Unknown"), orDefault(a.DeathYear, "present"))
}

func bookTitleList(books []core.BookTitle) []string {
	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = b.Title
	}
	return titles
}

func describeBook(book core.BookTitle) string {
	s := fmt.Sprintf("%q", book.Title)
	if book.Author != "" {
		s += " by " + book.Author
	}
	if book.PublishYear != 0 {
		s += fmt.Sprintf(" (%d)", book.PublishYear)
	}
	return s
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
