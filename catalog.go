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

package lectern

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/lectern/core"
)

// CatalogAuthor is an author entry of a seed catalog.
type CatalogAuthor struct {
	Name      string `yaml:"name"`
	BirthYear string `yaml:"birth_year"`
	DeathYear string `yaml:"death_year"`
	Bio       string `yaml:"bio"`
}

// CatalogBook is a book entry of a seed catalog.
type CatalogBook struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Author      string   `yaml:"author"`
	Rating      float64  `yaml:"rating"`
	PublishYear int      `yaml:"publish_year"`
	Genres      []string `yaml:"genres"`
	Topics      []string `yaml:"topics"`
	Locations   []string `yaml:"locations"`
}

// Catalog is a YAML document of books and authors loaded into the fact store.
//
// Example:
//
//	authors:
//	  - name: Frank Herbert
//	    birth_year: "1920"
//	    death_year: "1986"
//	books:
//	  - id: dune
//	    title: Dune
//	    author: Frank Herbert
//	    rating: 4.3
//	    genres: [Science Fiction]
type Catalog struct {
	Authors []CatalogAuthor `yaml:"authors"`
	Books   []CatalogBook   `yaml:"books"`
}

// ParseCatalog decodes a catalog. Unknown fields are rejected.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var catalog Catalog
	if err := dec.Decode(&catalog); err != nil {
		if err == io.EOF {
			return &catalog, nil
		}
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return &catalog, nil
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

func (c *Catalog) authors() ([]*core.Author, error) {
	authors := make([]*core.Author, 0, len(c.Authors))
	for i, a := range c.Authors {
		author := &core.Author{Name: a.Name, BirthYear: a.BirthYear, DeathYear: a.DeathYear, Bio: a.Bio}
		if err := core.ValidateAuthor(author); err != nil {
			return nil, fmt.Errorf("catalog author %d: %w", i, err)
		}
		authors = append(authors, author)
	}
	return authors, nil
}

func (c *Catalog) books() ([]*core.Book, error) {
	books := make([]*core.Book, 0, len(c.Books))
	for i, b := range c.Books {
		book := &core.Book{
			Id:          b.ID,
			Title:       b.Title,
			Author:      b.Author,
			Rating:      b.Rating,
			PublishYear: b.PublishYear,
			Genres:      b.Genres,
			Topics:      b.Topics,
			Locations:   b.Locations,
		}
		if err := core.ValidateBook(book); err != nil {
			return nil, fmt.Errorf("catalog book %d: %w", i, err)
		}
		books = append(books, book)
	}
	return books, nil
}
