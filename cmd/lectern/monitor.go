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

package main

import (
	"fmt"
	"io"

	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/router"
)

// traceMonitor prints each router event on its own line.
type traceMonitor struct {
	w io.Writer
}

var _ router.Monitor = (*traceMonitor)(nil)

func newTraceMonitor(w io.Writer) *traceMonitor {
	return &traceMonitor{w: w}
}

func (m *traceMonitor) Start(requestID, query string) {
	fmt.Fprintf(m.w, "[%s] %q\n", requestID, query)
}

func (m *traceMonitor) EnterState(s router.State) {
	fmt.Fprintf(m.w, "  -> %s\n", s)
}

func (m *traceMonitor) Classified(name string) {
	fmt.Fprintf(m.w, "     classified as %s\n", name)
}

func (m *traceMonitor) StepFailed(s router.State, err error) {
	fmt.Fprintf(m.w, "     %s failed: %v\n", s, err)
}

func (m *traceMonitor) CacheHit(n int) {
	fmt.Fprintf(m.w, "     cache hit, %d results\n", n)
}

func (m *traceMonitor) CacheMiss() {
	fmt.Fprintln(m.w, "     cache miss")
}

func (m *traceMonitor) SearchCompleted(n int, err error) {
	if err != nil {
		fmt.Fprintf(m.w, "     search failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.w, "     search returned %d results\n", n)
}

func (m *traceMonitor) Finish(answer core.Answer) {
	fmt.Fprintf(m.w, "  done (%s)\n", answer.Provenance)
}
