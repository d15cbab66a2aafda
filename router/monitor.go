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

package router

import "github.com/poiesic/lectern/core"

// State names a router step. Specialized resolver states use the resolver's name.
type State string

const (
	StateStart        State = "start"
	StateDomainLookup State = "domain_lookup"
	StateWebFallback  State = "web_fallback"
	StateAssemble     State = "assemble_response"
	StateDone         State = "done"
)

// Builtin reports whether s is one of the fixed router states.
func (s State) Builtin() bool {
	switch s {
	case StateStart, StateDomainLookup, StateWebFallback, StateAssemble, StateDone:
		return true
	}
	return false
}

// Monitor observes a router run. Implement it to trace intermediate steps.
type Monitor interface {
	Start(requestID, query string)
	EnterState(state State)
	Classified(resolver string)
	StepFailed(state State, err error)
	CacheHit(results int)
	CacheMiss()
	SearchCompleted(results int, err error)
	Finish(answer core.Answer)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)              {}
func (n *noopMonitor) EnterState(_ State)             {}
func (n *noopMonitor) Classified(_ string)            {}
func (n *noopMonitor) StepFailed(_ State, _ error)    {}
func (n *noopMonitor) CacheHit(_ int)                 {}
func (n *noopMonitor) CacheMiss()                     {}
func (n *noopMonitor) SearchCompleted(_ int, _ error) {}
func (n *noopMonitor) Finish(_ core.Answer)           {}
