// Package rpcerrors defines the error taxonomy from SPEC_FULL.md §7,
// shared by the RPC pool, supervisor, and query facade.
package rpcerrors

import (
	"errors"
	"fmt"
)

// transientCode and notFoundCode are the daemon's own JSON-RPC error
// codes that the pool/facade treat specially.
const (
	transientCode = -28 // "Loading block index..." / warming up
	notFoundCode  = -5  // e.g. unspent output not found
)

// RPCError wraps a daemon JSON-RPC error response, preserving its
// original numeric code. Surfaced to callers unchanged; never retried.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NewRPCError classifies a daemon error code/message, returning a
// *TransientRPCError for code -28 or the generic *RPCError otherwise.
// Network-level failures (no code available) should use
// NewTransientError directly.
func NewRPCError(code int, message string) error {
	if code == transientCode {
		return &TransientRPCError{RPCError: RPCError{Code: code, Message: message}}
	}
	return &RPCError{Code: code, Message: message}
}

// IsNotFound reports whether err is the daemon's "not found" response
// (code -5), which callers such as getSpentInfo map to an empty result
// rather than an error.
func IsNotFound(err error) bool {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code == notFoundCode
	}
	return false
}

// coder is satisfied by go-ethereum/rpc's Error interface, returned by
// (*rpc.Client).CallContext for a daemon JSON-RPC error response.
type coder interface {
	ErrorCode() int
}

// Classify converts a raw error from a JSON-RPC call into the pool's
// retry taxonomy (SPEC_FULL.md §7): a daemon error carrying a numeric
// code becomes a *TransientRPCError for code -28 (still warming up) or
// a non-retried *RPCError for every other code, preserving the code so
// callers like IsNotFound can inspect it. An error with no daemon
// code — a network-level failure such as connection refused or a
// timeout — is always transient.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var c coder
	if errors.As(err, &c) {
		return NewRPCError(c.ErrorCode(), err.Error())
	}
	return NewTransientError(err)
}

// TransientRPCError marks an error the RPC pool's tryAll combinator
// should retry against the next backend: daemon code -28 (warming up)
// or a network-level failure.
type TransientRPCError struct {
	RPCError
	Cause error
}

func (e *TransientRPCError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transient rpc error: %v", e.Cause)
	}
	return "transient " + e.RPCError.Error()
}

func (e *TransientRPCError) Unwrap() error { return e.Cause }

// NewTransientError wraps a network-level failure (connection refused,
// timeout, EOF) that carries no daemon error code.
func NewTransientError(cause error) error {
	return &TransientRPCError{Cause: cause}
}

// RangeError reports a caller-supplied range outside documented bounds
// (from/to, start/end). Returned synchronously, never retried.
type RangeError struct {
	Msg string
}

func (e *RangeError) Error() string { return "range: " + e.Msg }

// NewRangeError constructs a RangeError with a formatted message.
func NewRangeError(format string, args ...any) error {
	return &RangeError{Msg: fmt.Sprintf(format, args...)}
}

// StoppingError is returned by any retry/poll loop that observes the
// host's stopping flag; it never succeeds after this point.
type StoppingError struct{}

func (e *StoppingError) Error() string { return "host is stopping" }

// ErrStopping is the sentinel instance returned by every abort path.
var ErrStopping = &StoppingError{}

// IsStopping reports whether err is (or wraps) ErrStopping.
func IsStopping(err error) bool {
	var stopErr *StoppingError
	return errors.As(err, &stopErr)
}

// SupervisorError reports a child-process lifecycle failure: nonzero
// exit during orderly stop, or shutdown-timeout exceeded.
type SupervisorError struct {
	Msg string
}

func (e *SupervisorError) Error() string { return "supervisor: " + e.Msg }

// NewSupervisorError constructs a SupervisorError with a formatted message.
func NewSupervisorError(format string, args ...any) error {
	return &SupervisorError{Msg: fmt.Sprintf(format, args...)}
}
