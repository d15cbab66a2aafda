package storage

import (
	"testing"
	"time"

	"github.com/poiesic/lectern/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalPosition(t *testing.T) {
	for _, pos := range []int{0, 1, 4, 300} {
		decoded, err := UnmarshalPosition(MarshalPosition(pos))
		require.NoError(t, err)
		assert.Equal(t, pos, decoded)
	}
}

func TestMarshalUnmarshalQueryRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("full record", func(t *testing.T) {
		record := &core.QueryRecord{
			Id:             core.QueryID("books like dune"),
			NormalizedText: "books like dune",
			OriginalText:   "Books like Dune?",
			Vector:         []float32{0.1, -0.2, 0.3},
			InsertedAt:     now,
		}

		decoded, err := UnmarshalQueryRecord(MarshalQueryRecord(record))
		require.NoError(t, err)
		assert.Equal(t, record, decoded)
	})

	t.Run("no vector", func(t *testing.T) {
		record := &core.QueryRecord{Id: 1, NormalizedText: "x", OriginalText: "X", InsertedAt: now}

		decoded, err := UnmarshalQueryRecord(MarshalQueryRecord(record))
		require.NoError(t, err)
		assert.Nil(t, decoded.Vector)
		assert.Equal(t, now, decoded.InsertedAt)
	})
}

func TestMarshalUnmarshalResultRecord(t *testing.T) {
	record := &core.ResultRecord{
		Id:        core.ResultID("https://example.com/dune"),
		URL:       "https://example.com/dune",
		Title:     "Dune",
		Content:   "Dune is a 1965 epic science fiction novel.",
		Vector:    []float32{1, 0},
		FetchedAt: time.Date(2025, 3, 1, 12, 30, 0, 123000, time.UTC),
	}

	decoded, err := UnmarshalResultRecord(MarshalResultRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestMarshalUnmarshalBook(t *testing.T) {
	book := &core.Book{
		Id:          "BOOK-1",
		Title:       "A Moveable Feast",
		Author:      "Ernest Hemingway",
		Rating:      4.05,
		PublishYear: 1964,
		Genres:      []string{"Memoir", "Classic"},
		Locations:   []string{"Paris"},
	}

	decoded, err := UnmarshalBook(MarshalBook(book))
	require.NoError(t, err)
	assert.Equal(t, book, decoded)
}

func TestMarshalUnmarshalAuthor(t *testing.T) {
	author := &core.Author{Name: "Frank Herbert", BirthYear: "1920", DeathYear: "1986", Bio: "American author."}

	decoded, err := UnmarshalAuthor(MarshalAuthor(author))
	require.NoError(t, err)
	assert.Equal(t, author, decoded)
}

func TestUnmarshal_TruncatedData(t *testing.T) {
	query := MarshalQueryRecord(&core.QueryRecord{Id: 9, NormalizedText: "q", Vector: []float32{1, 2}, InsertedAt: time.Now()})
	result := MarshalResultRecord(&core.ResultRecord{Id: 9, URL: "u", FetchedAt: time.Now()})
	book := MarshalBook(&core.Book{Id: "b", Title: "t", Locations: []string{"Paris"}})
	author := MarshalAuthor(&core.Author{Name: "n", Bio: "bio"})

	tests := []struct {
		name      string
		unmarshal func([]byte) error
		data      []byte
	}{
		{"query record", func(b []byte) error { _, err := UnmarshalQueryRecord(b); return err }, query},
		{"result record", func(b []byte) error { _, err := UnmarshalResultRecord(b); return err }, result},
		{"book", func(b []byte) error { _, err := UnmarshalBook(b); return err }, book},
		{"author", func(b []byte) error { _, err := UnmarshalAuthor(b); return err }, author},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.unmarshal(nil))
			assert.Error(t, tt.unmarshal(tt.data[:len(tt.data)-1]))
		})
	}
}

func TestUnmarshal_OversizedLength(t *testing.T) {
	// A vector length prefix larger than the remaining data
	data := MarshalQueryRecord(&core.QueryRecord{Id: 1, NormalizedText: "q"})
	offset := len(MarshalID(1)) + 2 + 1 // id, "q", ""
	data[offset] = 0x7f

	_, err := UnmarshalQueryRecord(data)
	assert.ErrorIs(t, err, ErrTruncatedData)
}
