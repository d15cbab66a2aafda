package core

// Provenance tags which data source grounded a response.
type Provenance string

const (
	ProvenanceNone        Provenance = "none"
	ProvenanceGraph       Provenance = "graph"
	ProvenanceCache       Provenance = "cache"
	ProvenanceWeb         Provenance = "web"
	ProvenanceSpecialized Provenance = "specialized"
)

// Valid reports whether p is one of the known provenance tags.
func (p Provenance) Valid() bool {
	switch p {
	case ProvenanceNone, ProvenanceGraph, ProvenanceCache, ProvenanceWeb, ProvenanceSpecialized:
		return true
	}
	return false
}

// GraphFactsType names the kind of answer a graph lookup produced.
type GraphFactsType string

const (
	GraphRecommendations GraphFactsType = "recommendations"
	GraphAuthor          GraphFactsType = "author"
	GraphGenres          GraphFactsType = "genres"
)

// Recommendation is a recommended book with a 0-100 match score.
type Recommendation struct {
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Rating     float64 `json:"rating"`
	MatchScore int     `json:"matchScore"`
}

// AuthorFacts is an author with the titles they wrote.
type AuthorFacts struct {
	Name      string      `json:"name"`
	BirthYear string      `json:"birthYear"`
	DeathYear string      `json:"deathYear"`
	Bio       string      `json:"bio"`
	Books     []BookTitle `json:"books"`
}

// BookTitle is the display form of a book in author facts and specialized payloads.
type BookTitle struct {
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	PublishYear int    `json:"publishYear,omitempty"`
}

// GenreShare is a genre with its share of linked books.
type GenreShare struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

// GraphFacts is the structured payload of the graph domain lookup.
// Type is empty when nothing authoritative was found.
type GraphFacts struct {
	Type            GraphFactsType   `json:"type,omitempty"`
	SearchTerm      string           `json:"search_term,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Author          *AuthorFacts     `json:"author,omitempty"`
	Genres          []GenreShare     `json:"genres,omitempty"`
}

// Found reports whether the lookup produced authoritative data.
func (g *GraphFacts) Found() bool {
	return g != nil && g.Type != ""
}

// TopicBooks groups books under a named topic or category.
type TopicBooks struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Books       []BookTitle `json:"books"`
}

// SpecializedResult is the payload of a specialized resolver.
// Trading resolvers fill Topics; location resolvers fill Location and Categories.
type SpecializedResult struct {
	Resolver   string       `json:"resolver"`
	Topics     []TopicBooks `json:"topics,omitempty"`
	Location   string       `json:"location,omitempty"`
	Categories []TopicBooks `json:"categories,omitempty"`
}

// Empty reports whether the payload carries no books.
func (s *SpecializedResult) Empty() bool {
	if s == nil {
		return true
	}
	for _, t := range s.Topics {
		if len(t.Books) > 0 {
			return false
		}
	}
	for _, c := range s.Categories {
		if len(c.Books) > 0 {
			return false
		}
	}
	return true
}

// AgentState is the context threaded through one router run.
// Exactly one of Graph, Results (cache or web) and Specialized is populated
// once a run completes; Provenance says which.
type AgentState struct {
	Query        string
	Provenance   Provenance
	Found        bool
	Graph        *GraphFacts
	Results      []WebResult
	Specialized  *SpecializedResult
	Notice       string // User-facing message set when a step degraded (e.g. search failed)
	ResponseText string
}

// NewAgentState creates the initial state for a query.
func NewAgentState(query string) *AgentState {
	return &AgentState{
		Query:      query,
		Provenance: ProvenanceNone,
	}
}

// Answer is the result of resolving a query.
// Data holds *GraphFacts, []WebResult or *SpecializedResult depending on Provenance.
type Answer struct {
	Provenance Provenance `json:"provenance"`
	Text       string     `json:"response_text"`
	Data       any        `json:"structured_data"`
}

// AnswerFromState builds the exposed answer from a completed state.
func AnswerFromState(s *AgentState) Answer {
	a := Answer{Provenance: s.Provenance, Text: s.ResponseText}
	switch s.Provenance {
	case ProvenanceGraph:
		a.Data = s.Graph
	case ProvenanceCache, ProvenanceWeb:
		results := s.Results
		if results == nil {
			results = []WebResult{}
		}
		a.Data = results
	case ProvenanceSpecialized:
		a.Data = s.Specialized
	}
	return a
}
