// Package assemble turns a completed router state into the final answer text.
//
// The Assembler picks the highest priority data source in the state
// (specialized, then cached or fresh web results, then graph facts), renders
// it as grounding context and asks the generator for prose. When there is no
// generator, or it fails or returns nothing, a deterministic summary built
// only from fields already in the state is used instead.
package assemble
