// Package errs defines the stable status-code vocabulary and context-aware
// error type shared by every layer of x12transform, from the tokenizer up
// through the external api boundary.
package errs

import (
	"bytes"
	"errors"
	"fmt"
)

// StatusCode is a stable wire value returned across the external boundary.
// Do not renumber existing entries; append new ones at the end.
type StatusCode int

const (
	Success        StatusCode = 0
	OutOfMemory    StatusCode = 1
	InvalidISA     StatusCode = 2
	FileNotFound   StatusCode = 3
	ParseError     StatusCode = 4
	SchemaLoadError StatusCode = 5
	UnknownHLLevel  StatusCode = 6
	PathConflict    StatusCode = 7
	InvalidArgument StatusCode = 8
	UnknownError    StatusCode = 99
)

func (c StatusCode) String() string {
	switch c {
	case Success:
		return "Success"
	case OutOfMemory:
		return "OutOfMemory"
	case InvalidISA:
		return "InvalidISA"
	case FileNotFound:
		return "FileNotFound"
	case ParseError:
		return "ParseError"
	case SchemaLoadError:
		return "SchemaLoadError"
	case UnknownHLLevel:
		return "UnknownHLLevel"
	case PathConflict:
		return "PathConflict"
	case InvalidArgument:
		return "InvalidArgument"
	case UnknownError:
		return "UnknownError"
	default:
		return fmt.Sprintf("StatusCode(%d)", int(c))
	}
}

// Error is the context-aware error type propagated out of every package in
// this module. It carries a stable StatusCode plus optional diagnostic
// context (segment id, HL level code, JSON path, schema name) so callers
// can build a useful error_message(code) without the core doing any
// logging of its own.
type Error struct {
	Code    StatusCode
	Message string
	Context map[string]string
}

func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s: %s (", e.Code, e.Message)
	first := true
	for _, k := range []string{"schema", "segment", "level_code", "path", "transform"} {
		v, ok := e.Context[k]
		if !ok {
			continue
		}
		if !first {
			buf.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&buf, "%s=%s", k, v)
	}
	buf.WriteByte(')')
	return buf.String()
}

// New builds an *Error with the given code and message.
func New(code StatusCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithContext returns a copy of e with key=value added to its context.
func (e *Error) WithContext(key, value string) *Error {
	cp := *e
	cp.Context = make(map[string]string, len(e.Context)+1)
	for k, v := range e.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

// CodeOf extracts the StatusCode from err, returning UnknownError if err is
// not (or does not wrap) an *Error.
func CodeOf(err error) StatusCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return UnknownError
}
