package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotActive    = errors.New("session is not active")
	ErrStale        = errors.New("result discarded: session was replaced or disposed")
	ErrDisposed     = errors.New("session engine disposed")
)

// Kind classifies failures surfaced to hosts so they can pick copy and a
// retry affordance without string matching.
type Kind string

const (
	KindTransport            Kind = "transport"
	KindMalformed            Kind = "malformed"
	KindUnauthenticated      Kind = "unauthenticated"
	KindRejected             Kind = "rejected"
	KindLookup               Kind = "lookup"
	KindAssetMissing         Kind = "asset_missing"
	KindPlayback             Kind = "playback"
	KindSynthesisUnavailable Kind = "synthesis_unavailable"
)

// Error is the typed failure returned by gateways, the session engine, the
// membership cache and the pronunciation resolver.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
