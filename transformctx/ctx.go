// Package transformctx carries per-call, cross-cutting state through a
// single Process invocation: a small bag the processor and transform
// functions can read from or annotate, without the core ever reaching for
// a global.
package transformctx

import "github.com/google/uuid"

// Ctx is passed through document processing and into transform functions.
// It is not required reading for the core transform algorithm, but gives
// every transform a consistent place to stash correlation data (e.g. a
// per-document id for log correlation performed by an outer, non-core
// caller) without threading extra parameters through every call.
type Ctx struct {
	// CorrelationID identifies this Process call, generated once per
	// invocation if not supplied by the caller.
	CorrelationID string
	// SchemaName is the name the schema was loaded under, useful for
	// error context.
	SchemaName string
}

// New creates a Ctx with a fresh correlation id.
func New(schemaName string) *Ctx {
	return &Ctx{
		CorrelationID: uuid.NewString(),
		SchemaName:    schemaName,
	}
}
