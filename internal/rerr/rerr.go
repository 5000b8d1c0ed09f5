// Package rerr defines the typed error kinds surfaced across the knowledge
// engine's public surface, so that callers can distinguish structural
// failures (bad input, storage outage) from expected negative results
// (signature mismatch, LWW skip) without parsing error strings.
package rerr

import "fmt"

// Kind identifies the category of a Error.
type Kind string

const (
	InvalidArgument Kind = "invalid_argument"
	NotInitialized  Kind = "not_initialized"
	Storage         Kind = "storage"
	Embedding       Kind = "embedding"
	Signature       Kind = "signature"
	Crypto          Kind = "crypto"
	Network         Kind = "network"
	ParseExternal   Kind = "parse_external"
)

// Error is a typed error carrying a Kind alongside the usual message/cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a typed error with no wrapped cause.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf("%s", msg)}
}

// Wrap attaches a Kind and an operation name to an existing error. Returns
// nil if err is nil, so call sites can write `return rerr.Wrap(...)`
// unconditionally after an `if err != nil` check without an extra branch.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ae, ok := err.(*Error); ok && ae.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
