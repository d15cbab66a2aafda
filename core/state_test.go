package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAgentState(t *testing.T) {
	s := NewAgentState("books like dune")
	assert.Equal(t, "books like dune", s.Query)
	assert.Equal(t, ProvenanceNone, s.Provenance)
	assert.False(t, s.Found)
}

func TestProvenance_Valid(t *testing.T) {
	for _, p := range []Provenance{ProvenanceNone, ProvenanceGraph, ProvenanceCache, ProvenanceWeb, ProvenanceSpecialized} {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, Provenance("trading").Valid())
}

func TestSpecializedResult_Empty(t *testing.T) {
	var nilResult *SpecializedResult
	assert.True(t, nilResult.Empty())
	assert.True(t, (&SpecializedResult{Topics: []TopicBooks{{Name: "forex"}}}).Empty())
	assert.False(t, (&SpecializedResult{Categories: []TopicBooks{{Books: []BookTitle{{Title: "x"}}}}}).Empty())
}

func TestAnswerFromState(t *testing.T) {
	t.Run("web without results exposes empty list", func(t *testing.T) {
		s := NewAgentState("q")
		s.Provenance = ProvenanceWeb
		s.ResponseText = "sorry"
		a := AnswerFromState(s)
		assert.Equal(t, ProvenanceWeb, a.Provenance)
		assert.Equal(t, []WebResult{}, a.Data)
	})

	t.Run("graph exposes facts", func(t *testing.T) {
		s := NewAgentState("q")
		s.Provenance = ProvenanceGraph
		s.Graph = &GraphFacts{Type: GraphGenres}
		a := AnswerFromState(s)
		assert.Same(t, s.Graph, a.Data)
	})
}
