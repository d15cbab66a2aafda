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

package websearch

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when a provider that needs a key has none.
	ErrMissingAPIKey = errors.New("websearch: API key is missing")

	// ErrProviderRequired is returned when a decorator wraps a nil provider.
	ErrProviderRequired = errors.New("websearch: provider required")
)

// StatusError reports a non-success HTTP status from a search API.
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http %d", e.Provider, e.StatusCode)
}
