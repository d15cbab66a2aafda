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

import "errors"

// Domain validation errors
var (
	// ErrInvalidQueryRecord indicates a QueryRecord failed validation.
	ErrInvalidQueryRecord = errors.New("invalid query record")

	// ErrInvalidResultRecord indicates a ResultRecord failed validation.
	ErrInvalidResultRecord = errors.New("invalid result record")

	// ErrInvalidBook indicates a Book failed validation.
	ErrInvalidBook = errors.New("invalid book")

	// ErrInvalidAuthor indicates an Author failed validation.
	ErrInvalidAuthor = errors.New("invalid author")

	// ErrEmptyNormalizedText indicates the NormalizedText field is empty.
	ErrEmptyNormalizedText = errors.New("normalized text cannot be empty")

	// ErrEmptyURL indicates a result has no external identifier.
	ErrEmptyURL = errors.New("result url cannot be empty")

	// ErrEmptyTitle indicates a book has no title.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyBookID indicates a book has no unique identifier.
	ErrEmptyBookID = errors.New("book id cannot be empty")

	// ErrEmptyName indicates an author has no name.
	ErrEmptyName = errors.New("name cannot be empty")
)

// ErrContractViolation marks a programming error in the resolution workflow,
// such as a state without a defined transition. It is distinct from a
// "nothing found" answer and aborts the request.
var ErrContractViolation = errors.New("workflow contract violation")
