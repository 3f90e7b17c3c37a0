package relay

import (
	"errors"
	"fmt"
)

// ErrTemplateNotResolved means a [RequestTemplate] still had an
// unresolved {placeholder} after [RequestTemplate.Resolve] ran — a
// path, query, or header referenced a parameter the binder never
// supplied a value for.
var ErrTemplateNotResolved = errors.New("relay: request template has unresolved placeholder")

// ErrUnboundTemplateParameter means the argument binder produced a
// value for a named parameter that appears nowhere in the method's
// path, query, header, or body template.
var ErrUnboundTemplateParameter = errors.New("relay: template parameter is not referenced anywhere")

// ErrObserverMustBeLast means a method's Observer parameter was not
// declared as the final parameter.
var ErrObserverMustBeLast = errors.New("relay: observer parameter must be the last parameter")

// ErrObserverMethodMustReturnVoid means a method with an Observer
// parameter declared a non-error, non-empty return type.
var ErrObserverMethodMustReturnVoid = errors.New("relay: method with an observer parameter must return only error")

// ErrBodyFormExclusive means a method's MethodSpec declared both a
// body parameter and one or more form parameters.
var ErrBodyFormExclusive = errors.New("relay: a method cannot combine a body parameter with form parameters")

// ContractError reports that a [Contract] could not parse a method's
// [MethodSpec] into [MethodMetadata]. It is always returned at
// [New] time, never during a call.
type ContractError struct {
	Method string
	Reason error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("relay: contract: %s: %v", e.Method, e.Reason)
}

func (e *ContractError) Unwrap() error { return e.Reason }

// newContractError wraps reason with the method it was found on.
func newContractError(method string, reason error) *ContractError {
	return &ContractError{Method: method, Reason: reason}
}

// RelayErrorKind classifies where in the request pipeline a
// [RelayError] originated.
type RelayErrorKind int

const (
	// ErrExecuting means the transport failed to send the request or
	// receive a response (network error, connect/read timeout).
	ErrExecuting RelayErrorKind = iota
	// ErrReading means a response was received but the body could
	// not be decoded.
	ErrReading
)

func (k RelayErrorKind) String() string {
	switch k {
	case ErrExecuting:
		return "executing"
	case ErrReading:
		return "reading"
	default:
		return "unknown"
	}
}

// RelayError is the error type returned by a client method call that
// failed outside of the target server's own error response — a
// transport failure or a response the configured [Decoder] /
// [ObserverDecoder] could not parse. It is the renamed, Go-native
// form of the original runtime's FeignError.
type RelayError struct {
	Kind       RelayErrorKind
	ConfigKey  string
	Cause      error
	StatusCode int // zero if the transport never received a response
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay: %s %s: %v", e.ConfigKey, e.Kind, e.Cause)
}

func (e *RelayError) Unwrap() error { return e.Cause }

// StatusError is the default [ErrorDecoder]'s representation of a
// non-2xx response: the status code and, if present, the response
// body verbatim. A custom ErrorDecoder typically unmarshals the body
// into a target-specific error shape instead of returning this.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay: status %d: %s", e.Status, e.Body)
}

// RetryableError marks an error as eligible for [Retryer] to decide
// whether to retry. Decoders and the default status classification
// wrap errors this way; user-defined [ErrorDecoder]s may also return
// one directly.
type RetryableError struct {
	Cause   error
	Attempt int
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("relay: retryable (attempt %d): %v", e.Attempt, e.Cause)
}

func (e *RetryableError) Unwrap() error { return e.Cause }
