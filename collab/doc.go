// Package collab is the boundary to the external reasoning collaborators
// (planner, observer, question generator, expert roles, reporter). It defines
// a provider-agnostic Client interface for structured JSON generation, typed
// transient errors, a bounded-retry decorator, a deterministic mock for
// tests, and an explicit LRU pool of configured clients keyed by their
// configuration tuple.
//
// Collaborator replies are validated against a JSON Schema before they leave
// this package, so stage code only ever sees well-formed payloads.
package collab
