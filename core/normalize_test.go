package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "lowercases", input: "Books Like DUNE", want: "books like dune"},
		{name: "strips punctuation", input: "Who wrote 'Dune'?!", want: "who wrote dune"},
		{name: "collapses whitespace", input: "books   similar\tto\n\ndune", want: "books similar to dune"},
		{name: "trims ends", input: "   dune   ", want: "dune"},
		{name: "keeps digits and underscores", input: "top_10 books of 2023.", want: "top_10 books of 2023"},
		{name: "keeps non-ascii letters", input: "Livres sur Paris, à lire", want: "livres sur paris à lire"},
		{name: "only punctuation", input: "?!.,", want: ""},
		{name: "punctuation between words joins them", input: "sci-fi", want: "scifi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Recommend books similar to The Lord of the Rings!",
		"  What   are the TOP genres?? ",
		"Tokyo novels — set in Japan",
		"İstanbul stories",
		"___",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_CaseAndWhitespaceInvariant(t *testing.T) {
	base := Normalize("books similar to dune")
	assert.Equal(t, base, Normalize("BOOKS SIMILAR TO DUNE"))
	assert.Equal(t, base, Normalize("books    similar to   dune"))
	assert.Equal(t, base, Normalize("\tBooks Similar\nto Dune "))
}
