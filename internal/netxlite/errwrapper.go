package netxlite

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/pia-wg/pia-wg/internal/model"
)

// ErrWrapper is our error wrapper for Go errors. The key objective of
// this structure is to properly set Failure, which is also returned by
// the Error() method, to be one of the failure strings.
type ErrWrapper struct {
	// Failure is the failure string. This is either one of the
	// FailureXXX strings or any other string like `unknown_failure: ...`.
	// The latter represents an error that we have not yet mapped.
	Failure string

	// Operation is the operation that failed.
	//
	// If possible, the Operation string SHOULD be a _major_
	// operation. Major operations are:
	//
	// - ConnectOperation: connecting to an IP failed
	// - TLSHandshakeOperation: TLS handshaking failed
	// - HTTPRoundTripOperation: other errors during round trip
	//
	// If an ErrWrapper referring to a major operation is wrapping
	// another ErrWrapper and such ErrWrapper already refers to
	// a major operation, then the new ErrWrapper uses the child
	// ErrWrapper major operation.
	Operation string

	// WrappedErr is the error that we're wrapping.
	WrappedErr error
}

// Error returns the failure string for this error.
func (e *ErrWrapper) Error() string {
	return e.Failure
}

// Unwrap allows to access the underlying error as well as the
// taxonomy error, i.e., either [model.ErrTLS] or [model.ErrNetwork].
func (e *ErrWrapper) Unwrap() []error {
	return []error{e.Kind(), e.WrappedErr}
}

// Kind returns [model.ErrTLS] for certificate validation failures
// and [model.ErrNetwork] for any other failure.
func (e *ErrWrapper) Kind() error {
	if strings.HasPrefix(e.Failure, "ssl_") {
		return model.ErrTLS
	}
	return model.ErrNetwork
}

// MarshalJSON converts an ErrWrapper to a JSON value.
func (e *ErrWrapper) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Failure)
}

// classifier is the type of the function that maps a Go error
// to a failure string.
type classifier func(err error) string

// NewErrWrapper creates a new ErrWrapper using the given
// classifier, operation name, and underlying error.
//
// This function panics if classifier is nil, or operation
// is the empty string or error is nil.
//
// If the err argument has already been classified, the returned
// error wrapper will use the same classification string and
// will keep the child's major operation.
func NewErrWrapper(c classifier, op string, err error) *ErrWrapper {
	var wrapper *ErrWrapper
	if errors.As(err, &wrapper) {
		return &ErrWrapper{
			Failure:    wrapper.Failure,
			Operation:  classifyOperation(wrapper, op),
			WrappedErr: wrapper.WrappedErr,
		}
	}
	if c == nil {
		panic("nil classifier")
	}
	if op == "" {
		panic("empty op")
	}
	if err == nil {
		panic("nil err")
	}
	return &ErrWrapper{
		Failure:    c(err),
		Operation:  op,
		WrappedErr: err,
	}
}

// MaybeNewErrWrapper is like NewErrWrapper except that this
// function won't panic if passed a nil error.
func MaybeNewErrWrapper(c classifier, op string, err error) error {
	if err != nil {
		return NewErrWrapper(c, op, err)
	}
	return nil
}

// NewTopLevelGenericErrWrapper wraps an error occurring at top
// level using a generic classifier as classifier. This function
// panics if err is nil.
func NewTopLevelGenericErrWrapper(err error) *ErrWrapper {
	return NewErrWrapper(ClassifyGenericError, TopLevelOperation, err)
}

func classifyOperation(ew *ErrWrapper, operation string) string {
	switch ew.Operation {
	case ConnectOperation, TLSHandshakeOperation, HTTPRoundTripOperation:
		return ew.Operation
	default:
		return operation
	}
}

const (
	// ConnectOperation is the operation where we connect.
	ConnectOperation = "connect"

	// TLSHandshakeOperation is the TLS handshake.
	TLSHandshakeOperation = "tls_handshake"

	// HTTPRoundTripOperation is the HTTP round trip.
	HTTPRoundTripOperation = "http_round_trip"

	// ReadOperation is when we read from a body.
	ReadOperation = "read"

	// TopLevelOperation is used when we don't know the operation.
	TopLevelOperation = "top_level"
)
