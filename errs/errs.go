// Package errs defines the failure kinds reported at the tool's boundaries:
// compile, connect, sign, send and await-receipt.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrCompilation is returned for bad source or an unavailable compiler version.
	ErrCompilation = errors.New("compilation error")
	// ErrConfig is returned for missing or inconsistent configuration.
	ErrConfig = errors.New("config error")
	// ErrRPC is returned when the node is unreachable or rejects a request.
	ErrRPC = errors.New("rpc error")
	// ErrSigning is returned when the private key is absent or malformed.
	ErrSigning = errors.New("signing error")
	// ErrTimeout is returned when a receipt does not arrive in time.
	ErrTimeout = errors.New("timeout error")
)

// Error ties a failure kind to the operation that failed and its cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap returns err tagged with kind. A nil err yields a bare kind error.
func Wrap(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf is Wrap with a formatted cause.
func Errorf(kind error, op string, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf reports which of the known kinds err carries, or nil.
func KindOf(err error) error {
	for _, kind := range []error{ErrCompilation, ErrConfig, ErrRPC, ErrSigning, ErrTimeout} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
