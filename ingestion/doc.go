// Package ingestion embeds freshly fetched web results and writes them to the
// semantic cache.
//
// Results are embedded concurrently on a worker pool. A result whose
// embedding fails is still cached with an empty vector; the failure is
// logged and never surfaced to the caller.
package ingestion
