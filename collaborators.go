package relay

import (
	"context"
	"reflect"
)

// Transport sends a resolved [Request] and returns the raw
// [Response]. A [Client] built without [WithTransport] uses a minimal
// net/http-backed implementation; transport.HTTPTransport is the
// configurable alternative. The core package only depends on the
// interface.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

// Decoder turns a successful (2xx) [Response] body into a value of
// the given type, for non-streaming methods.
type Decoder interface {
	Decode(resp *Response, into reflect.Type) (any, error)
}

// ObserverDecoder turns a successful (2xx) [Response] body into a
// sequence of elements of elemType, calling observer's OnNext method
// (via reflection, since the concrete Observer[T] is only known at
// the call site) once per element. It must not call OnSuccess or
// OnFailure — the [methodHandler] owns the single terminal call.
type ObserverDecoder interface {
	Decode(ctx context.Context, resp *Response, elemType reflect.Type, observer reflect.Value) error
}

// ErrorDecoder turns a non-2xx [Response] into an error. It may
// return a [RetryableError] to make the failure eligible for a
// [Retryer] to retry.
type ErrorDecoder interface {
	Decode(resp *Response) error
}

// BodyEncoder encodes a method's body argument into request bytes and
// a Content-Type.
type BodyEncoder interface {
	Encode(value any) (body []byte, contentType string, err error)
}

// FormEncoder encodes a method's named form parameters into request
// bytes and a Content-Type — used when a [MethodSpec] declares
// FormParam roles but no BodyTemplate and no dedicated Body
// parameter.
type FormEncoder interface {
	Encode(values map[string]string) (body []byte, contentType string, err error)
}
