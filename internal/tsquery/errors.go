package tsquery

import "fmt"

// Kind classifies a query failure so callers can react without parsing
// message text.
type Kind int

const (
	// KindConnection covers dial failures, timeouts and broken transports.
	KindConnection Kind = iota
	// KindAuth covers rejected logins and server selection.
	KindAuth
	// KindProtocol covers malformed or unexpected server responses,
	// including non-auth command errors reported by the server.
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection error"
	case KindAuth:
		return "authentication error"
	case KindProtocol:
		return "protocol error"
	default:
		return "query error"
	}
}

// Error is the single error type surfaced by this package. Msg is a stable,
// user-facing message; wire-level details stay in ID and the wrapped cause.
type Error struct {
	Kind Kind
	ID   int    // ServerQuery error id, 0 when the failure is local
	Msg  string // human-readable description
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s: %s (error id %d)", e.Kind, e.Msg, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func connError(msg string, err error) *Error {
	return &Error{Kind: KindConnection, Msg: msg, Err: err}
}

func protoError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindProtocol, Msg: fmt.Sprintf(format, args...)}
}
