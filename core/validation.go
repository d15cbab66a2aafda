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

package core

import "fmt"

// ValidateQueryRecord validates a QueryRecord according to domain rules.
//
// Validation rules:
//   - NormalizedText must not be empty
//   - NormalizedText must already be in normalized form
//
// NOT validated:
//   - Vector (an embedder may legitimately return an empty vector)
func ValidateQueryRecord(record *QueryRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidQueryRecord)
	}

	if record.NormalizedText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQueryRecord, ErrEmptyNormalizedText)
	}

	if Normalize(record.NormalizedText) != record.NormalizedText {
		return fmt.Errorf("%w: text %q is not normalized", ErrInvalidQueryRecord, record.NormalizedText)
	}

	return nil
}

// ValidateResultRecord validates a ResultRecord according to domain rules.
//
// Validation rules:
//   - URL must not be empty (it is the record's identity)
func ValidateResultRecord(record *ResultRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidResultRecord)
	}

	if record.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidResultRecord, ErrEmptyURL)
	}

	return nil
}

// ValidateBook validates a Book according to domain rules.
func ValidateBook(book *Book) error {
	if book == nil {
		return fmt.Errorf("%w: book is nil", ErrInvalidBook)
	}
	if book.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidBook, ErrEmptyBookID)
	}
	if book.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidBook, ErrEmptyTitle)
	}
	return nil
}

// ValidateAuthor validates an Author. Its name is its merge key.
func ValidateAuthor(author *Author) error {
	if author == nil {
		return fmt.Errorf("%w: author is nil", ErrInvalidAuthor)
	}
	if author.Key() == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAuthor, ErrEmptyName)
	}
	return nil
}
