// Package api is a thin external-boundary adapter:
// a handle-based load_schema/free_schema/process surface returning the
// stable status-code vocabulary, suitable for a C-ABI, CLI, or other
// out-of-core caller to wrap. It deliberately stops here — no file I/O, no
// cgo exports, no CLI — those boundaries are out of this module's scope.
package api

import (
	"sync"
	"sync/atomic"

	"github.com/logward/x12transform"
	"github.com/logward/x12transform/errs"
)

// Handle identifies a schema loaded via LoadSchema, valid until FreeSchema
// is called with it.
type Handle int64

var (
	registryMu sync.RWMutex
	registry   = make(map[Handle]*x12transform.Schema)
	nextHandle int64
)

// LoadSchema parses schemaJSON and registers the resulting *Schema under a
// fresh Handle. The registry serializes its own access; it is not part of
// the core's correctness contract.
func LoadSchema(schemaJSON []byte) (Handle, errs.StatusCode, error) {
	sch, err := x12transform.LoadSchema(schemaJSON)
	if err != nil {
		return 0, errs.CodeOf(err), err
	}
	h := Handle(atomic.AddInt64(&nextHandle, 1))
	registryMu.Lock()
	registry[h] = sch
	registryMu.Unlock()
	return h, errs.Success, nil
}

// FreeSchema releases the schema registered under h. Freeing an unknown or
// already-freed handle is a no-op.
func FreeSchema(h Handle) {
	registryMu.Lock()
	delete(registry, h)
	registryMu.Unlock()
}

// Process runs the schema registered under h over x12, returning its JSON
// output and a stable status code.
func Process(h Handle, x12 []byte) ([]byte, errs.StatusCode, error) {
	registryMu.RLock()
	sch, ok := registry[h]
	registryMu.RUnlock()
	if !ok {
		err := errs.New(errs.InvalidArgument, "unknown schema handle %d", h)
		return nil, err.Code, err
	}
	out, err := x12transform.Process(x12, sch)
	if err != nil {
		return nil, errs.CodeOf(err), err
	}
	return out, errs.Success, nil
}

// ErrorMessage renders a human-readable message for a status code, for
// callers that only have the numeric code (e.g. across a future C ABI).
func ErrorMessage(code errs.StatusCode) string {
	return code.String()
}
