package relay

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
)

// Client dispatches calls to every method described by the
// [MethodSpec] table it was built with. It is the Go-native
// ClientFactory: rather than synthesizing a value that implements the
// user's interface (Go's reflect package, unlike Java's dynamic
// proxies, cannot manufacture an arbitrary interface implementation
// at runtime), Client exposes [Client.Invoke] as the low-level
// dispatch surface and expects either a hand-written adapter struct
// or one generated by cmd/relaygen to provide the typed interface
// implementation on top of it.
type Client struct {
	ifaceType reflect.Type
	metadata  map[string]*MethodMetadata
	handlers  map[string]methodHandler

	target Target

	contractOverride Contract
	transport        Transport
	decoder          Decoder
	observerDecoder  ObserverDecoder
	bodyEncoder      BodyEncoder
	formEncoder      FormEncoder
	errorDecoder     ErrorDecoder
	wire             Wire
	retryerFactory   RetryerFactory
	interceptors     []Interceptor

	defaultOptions Options
	options        map[string]Options

	executor *executor
}

// ClientOption configures a [Client] at [New] time, following the
// teacher's fluent With* configuration idiom generalized into
// functional options so zero-value defaults apply when an option is
// omitted.
type ClientOption func(*Client)

// WithTransport overrides the default net/http-backed transport.
func WithTransport(t Transport) ClientOption { return func(c *Client) { c.transport = t } }

// WithDecoder overrides the default JSON decoder.
func WithDecoder(d Decoder) ClientOption { return func(c *Client) { c.decoder = d } }

// WithObserverDecoder overrides the default streaming JSON decoder.
func WithObserverDecoder(d ObserverDecoder) ClientOption {
	return func(c *Client) { c.observerDecoder = d }
}

// WithBodyEncoder overrides the default JSON body encoder.
func WithBodyEncoder(e BodyEncoder) ClientOption { return func(c *Client) { c.bodyEncoder = e } }

// WithFormEncoder overrides the default urlencoded form encoder.
func WithFormEncoder(e FormEncoder) ClientOption { return func(c *Client) { c.formEncoder = e } }

// WithErrorDecoder overrides the default non-2xx error decoder.
func WithErrorDecoder(e ErrorDecoder) ClientOption { return func(c *Client) { c.errorDecoder = e } }

// WithWire adds an observer of every request/response attempt. Pass
// [Chain] to install more than one.
func WithWire(w Wire) ClientOption { return func(c *Client) { c.wire = w } }

// WithInterceptor adds i to the end of the interceptor chain wrapped
// around every transport round trip, including retries. Interceptors
// run in the order they were added, outermost first.
func WithInterceptor(i Interceptor) ClientOption {
	return func(c *Client) { c.interceptors = append(c.interceptors, i) }
}

// WithLogger installs a [LoggingWire] using logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.wire = NewLoggingWire(logger) }
}

// WithRetryer overrides the default retry policy, which never
// retries. A factory constructs a fresh [Retryer] per top-level call.
func WithRetryer(f RetryerFactory) ClientOption { return func(c *Client) { c.retryerFactory = f } }

// WithContract overrides [DefaultContract].
func WithContract(contract Contract) ClientOption {
	return func(c *Client) { c.contractOverride = contract }
}

// WithOptions scopes connect/read timeouts to one method, identified
// by its [ConfigKey].
func WithOptions(configKey string, o Options) ClientOption {
	return func(c *Client) { c.options[configKey] = o }
}

// WithDefaultOptions sets the connect/read timeouts used for any
// method without a more specific [WithOptions] entry.
func WithDefaultOptions(o Options) ClientOption {
	return func(c *Client) { c.defaultOptions = o }
}

// New parses specs against T's method set using [DefaultContract] (or
// an override installed via [WithContract]), builds one
// [methodHandler] per method, and returns the resulting [Client].
// Transport, Decoder, ObserverDecoder, BodyEncoder, FormEncoder, and
// ErrorDecoder each default to a minimal encoding/json- and
// net/http-backed implementation; swap in the richer, validator- and
// gorilla/schema-backed defaults from package codec (and the
// configurable transport.HTTPTransport) with the matching
// [ClientOption] when you need them.
func New[T any](target Target, specs map[string]*MethodSpec, opts ...ClientOption) (*Client, error) {
	ifaceType := reflect.TypeOf((*T)(nil)).Elem()

	c := &Client{
		ifaceType:      ifaceType,
		target:         target,
		retryerFactory: NoRetryFactory(),
		wire:           NoOpWire{},
		options:        make(map[string]Options),
		executor:       newExecutor(),
	}
	for _, opt := range opts {
		opt(c)
	}

	contract := c.contractOverride
	if contract == nil {
		contract = DefaultContract{}
	}

	metadata, err := contract.Parse(ifaceType, specs)
	if err != nil {
		return nil, err
	}
	c.metadata = metadata
	c.handlers = make(map[string]methodHandler, len(metadata))
	for name, md := range metadata {
		p := pipeline{client: c, md: md}
		if md.IsStreaming {
			c.handlers[name] = &streamMethodHandler{pipeline: p}
		} else {
			c.handlers[name] = &syncMethodHandler{pipeline: p}
		}
	}

	applyDefaults(c)
	return c, nil
}

// Invoke dispatches one call to methodName by name, binding args
// positionally after the leading context.Context. It returns the
// method's declared return values in order — (value, error) for a
// non-streaming method with a return type, or a single error
// otherwise — each as its concrete dynamic type, ready for a type
// assertion. This is the surface cmd/relaygen-generated (or
// hand-written) typed wrapper methods call into; it panics if
// methodName was not described in the specs passed to [New], the same
// programmer-error-not-runtime-error treatment the teacher's Service
// registry gives a call to an unregistered method name.
func (c *Client) Invoke(ctx context.Context, methodName string, args ...any) []any {
	md, ok := c.metadata[methodName]
	if !ok {
		panic(fmt.Sprintf("relay: %s has no method %q", c.ifaceType, methodName))
	}
	handler := c.handlers[methodName]

	values := make([]reflect.Value, len(args)+1)
	values[0] = reflect.ValueOf(ctx)
	for i, a := range args {
		paramType := md.paramTypes[i+1]
		if a == nil {
			values[i+1] = reflect.Zero(paramType)
		} else {
			values[i+1] = reflect.ValueOf(a)
		}
	}

	results := handler.Invoke(ctx, values)
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Interface()
	}
	return out
}

// Metadata returns the parsed [MethodMetadata] for methodName, or nil
// if methodName was not described. Used by cmd/relaygen and by tests
// asserting on contract-parse results directly.
func (c *Client) Metadata(methodName string) *MethodMetadata { return c.metadata[methodName] }

// Close blocks until every in-flight streaming call started before
// Close was called has delivered its terminal Observer callback, and
// rejects any call submitted afterward with [ErrRuntimeClosed]. It is
// safe to call more than once.
func (c *Client) Close() { c.executor.Close() }

func (c *Client) optionsFor(configKey string) Options {
	if o, ok := c.options[configKey]; ok {
		return o
	}
	return c.defaultOptions
}

// applyDefaults fills in every collaborator left nil after
// ClientOptions ran, matching the teacher's pattern of resolving
// NewApp()'s optional fields lazily rather than requiring every
// caller to specify them.
func applyDefaults(c *Client) {
	if c.transport == nil {
		c.transport = newStdlibTransport()
	}
	if c.decoder == nil {
		c.decoder = stdlibJSONDecoder{}
	}
	if c.observerDecoder == nil {
		c.observerDecoder = stdlibJSONObserverDecoder{}
	}
	if c.bodyEncoder == nil {
		c.bodyEncoder = stdlibJSONBodyEncoder{}
	}
	if c.formEncoder == nil {
		c.formEncoder = stdlibFormEncoder{}
	}
	if c.errorDecoder == nil {
		c.errorDecoder = stdlibErrorDecoder{}
	}
}
