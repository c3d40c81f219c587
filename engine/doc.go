// Package engine sequences the interview pipeline. The Engine routes each
// incoming step to the right stages, merges every stage patch into the
// session before the next stage runs, and decides when the session is over.
package engine
