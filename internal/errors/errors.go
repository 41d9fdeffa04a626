// Package errors defines the structured error type shared across the
// enrichment pipeline. Every failure is categorized by Kind so the CLI can
// map it to an exit code and the passes can decide between aborting and
// skipping an item.
package errors

import (
	"errors"
	"fmt"
)

// Kind is the category of a pipeline error.
type Kind int

const (
	// KindConfig - missing or invalid configuration; fatal at startup.
	KindConfig Kind = iota
	// KindGraphUnavailable - the graph database cannot be reached.
	KindGraphUnavailable
	// KindGraphQuery - a query failed; fatal to the running pass.
	KindGraphQuery
	// KindParse - a source file could not be parsed; the file is skipped.
	KindParse
	// KindLLM - a completion request failed; the item is skipped.
	KindLLM
	// KindEmbedding - an embedding request failed; the item is skipped.
	KindEmbedding
	// KindCacheRead - the on-disk cache could not be loaded.
	KindCacheRead
	// KindCacheWrite - the on-disk cache could not be persisted.
	KindCacheWrite
	// KindInternal - unexpected internal state.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "CONFIG"
	case KindGraphUnavailable:
		return "GRAPH_UNAVAILABLE"
	case KindGraphQuery:
		return "GRAPH_QUERY"
	case KindParse:
		return "PARSE"
	case KindLLM:
		return "LLM"
	case KindEmbedding:
		return "EMBEDDING"
	case KindCacheRead:
		return "CACHE_READ"
	case KindCacheWrite:
		return "CACHE_WRITE"
	case KindInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Error is a categorized error with an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two errors by Kind, so sentinel comparisons like
// errors.Is(err, &Error{Kind: KindConfig}) work across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an existing error. Returns nil for a
// nil cause so call sites can wrap unconditionally.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Wrapf is Wrap with formatting.
func Wrapf(err error, kind Kind, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// GetKind extracts the Kind from err, unwrapping as needed. Errors without a
// Kind report KindInternal.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

// Convenience constructors for the common kinds.

func ConfigErrorf(format string, args ...any) *Error {
	return Newf(KindConfig, format, args...)
}

func GraphUnavailable(err error, message string) *Error {
	return Wrap(err, KindGraphUnavailable, message)
}

func GraphQueryError(err error, message string) *Error {
	return Wrap(err, KindGraphQuery, message)
}

func ParseErrorf(err error, format string, args ...any) *Error {
	return Wrapf(err, KindParse, format, args...)
}

func LLMError(err error, message string) *Error {
	return Wrap(err, KindLLM, message)
}

func EmbeddingError(err error, message string) *Error {
	return Wrap(err, KindEmbedding, message)
}
