// Package router drives one query through the resolver state machine.
//
// Every run starts at domain_lookup. A specialized resolver whose trigger
// matches outranks the generic book lookup; authoritative book facts outrank
// web fallback; web fallback consults the semantic cache before searching.
// All paths converge on assemble_response and then done. Step failures and
// panics degrade the state instead of aborting the run, so every call
// produces an answer with provenance and non-empty text. The only errors
// Resolve returns wrap core.ErrContractViolation.
package router
