package relay

import (
	"context"
	"reflect"
	"time"
)

// methodHandler is what a [Client] dispatches one interface method's
// calls to. There are exactly two implementations — syncMethodHandler
// and streamMethodHandler — selected once, at [New] time, based on
// md.IsStreaming, mirroring the original runtime's split between
// SynchronousMethodHandler and ObserverMethodHandler.
type methodHandler interface {
	Invoke(ctx context.Context, args []reflect.Value) []reflect.Value
}

// pipeline is the request-building and retry logic shared by both
// method handler variants: bind arguments, resolve the template,
// apply the target, encode a body if any, then retry the transport
// round trip against an ErrorDecoder-classified status until the
// Retryer gives up.
type pipeline struct {
	client *Client
	md     *MethodMetadata
}

// buildRequest binds args against md and turns the result into a
// concrete [Request], encoding a body from either the dedicated body
// argument or the form parameters.
func (p *pipeline) buildRequest(bound *boundArguments) (*Request, error) {
	variables := make(map[string]string, len(bound.variables)+len(bound.formValues))
	for k, v := range bound.variables {
		variables[k] = v
	}
	usingFormEncoder := len(bound.formValues) > 0 && p.md.Template.BodyTemplate == ""
	if !usingFormEncoder {
		for k, v := range bound.formValues {
			variables[k] = v
		}
	}

	resolved, err := p.md.Template.Resolve(variables, bound.nullVariables)
	if err != nil {
		return nil, err
	}

	target := p.client.target
	if bound.hasURLOverride {
		target = &explicitURLTarget{url: bound.urlOverride}
	}

	req, err := target.Apply(resolved)
	if err != nil {
		return nil, err
	}
	if p.md.Produces != "" {
		if req.Header == nil {
			req.Header = make(map[string][]string)
		}
		req.Header["Accept"] = []string{p.md.Produces}
	}

	switch {
	case bound.hasBody:
		body, contentType, err := p.client.bodyEncoder.Encode(bound.bodyValue.Interface())
		if err != nil {
			return nil, err
		}
		req.Body = body
		setContentType(req, contentType)
	case usingFormEncoder:
		body, contentType, err := p.client.formEncoder.Encode(bound.formValues)
		if err != nil {
			return nil, err
		}
		req.Body = body
		setContentType(req, contentType)
	}

	return req, nil
}

func setContentType(req *Request, contentType string) {
	if contentType == "" {
		return
	}
	if req.Header == nil {
		req.Header = make(map[string][]string)
	}
	req.Header["Content-Type"] = []string{contentType}
}

// roundTrip retries the transport call against req until the status
// classifies as success, the context is done, or retryer gives up.
// It returns the last successful response, or the terminal error.
func (p *pipeline) roundTrip(ctx context.Context, req *Request, retryer Retryer) (*Response, error) {
	ctx = withOptions(ctx, p.client.optionsFor(p.md.ConfigKey))
	send := chainInterceptors(p.client.interceptors, p.client.transport.RoundTrip)
	for {
		start := time.Now()
		resp, err := send(ctx, req)
		elapsed := time.Since(start)
		p.client.wire.Observe(ctx, p.md.ConfigKey, req, resp, err, elapsed)

		if err != nil {
			relayErr := &RelayError{Kind: ErrExecuting, ConfigKey: p.md.ConfigKey, Cause: err}
			if wait, retry := retryer.Continue(ctx, relayErr); retry {
				if wait > 0 {
					select {
					case <-time.After(wait):
					case <-ctx.Done():
						return nil, &RelayError{Kind: ErrExecuting, ConfigKey: p.md.ConfigKey, Cause: ctx.Err()}
					}
				}
				continue
			}
			return nil, relayErr
		}

		if resp.Status/100 == 2 {
			return resp, nil
		}

		decodeErr := p.client.errorDecoder.Decode(resp)
		if retryable, ok := decodeErr.(*RetryableError); ok {
			if wait, retry := retryer.Continue(ctx, retryable); retry {
				if wait > 0 {
					select {
					case <-time.After(wait):
					case <-ctx.Done():
						return nil, &RelayError{Kind: ErrExecuting, ConfigKey: p.md.ConfigKey, Cause: ctx.Err()}
					}
				}
				continue
			}
		}
		return nil, decodeErr
	}
}

// syncMethodHandler implements a non-streaming method: bind, resolve,
// retry-and-send, then decode the body once into md.ReturnType.
type syncMethodHandler struct {
	pipeline
}

func (h *syncMethodHandler) Invoke(ctx context.Context, args []reflect.Value) []reflect.Value {
	bound, err := bindArguments(h.md, args)
	if err != nil {
		return h.results(reflect.Value{}, err)
	}
	req, err := h.buildRequest(bound)
	if err != nil {
		return h.results(reflect.Value{}, err)
	}

	retryer := h.client.retryerFactory()
	resp, err := h.roundTrip(ctx, req, retryer)
	if err != nil {
		return h.results(reflect.Value{}, err)
	}

	if h.md.ReturnType == responseType {
		// Body ownership transfers to the caller; the auto-close below
		// is deliberately skipped for this path.
		return h.results(reflect.ValueOf(resp), nil)
	}
	defer resp.Body.Close()

	if h.md.ReturnType == nil {
		return h.results(reflect.Value{}, nil)
	}

	decoded, err := h.client.decoder.Decode(resp, h.md.ReturnType)
	if err != nil {
		return h.results(reflect.Value{}, &RelayError{Kind: ErrReading, ConfigKey: h.md.ConfigKey, Cause: err, StatusCode: resp.Status})
	}

	result := reflect.Zero(h.md.ReturnType)
	if decoded != nil {
		result = reflect.ValueOf(decoded)
	}
	return h.results(result, nil)
}

// results assembles the []reflect.Value that [Client.Invoke] hands
// back: (value, error) when ReturnType is set, or just (error)
// otherwise.
func (h *syncMethodHandler) results(value reflect.Value, err error) []reflect.Value {
	errVal := errorValue(err)
	if h.md.ReturnType == nil {
		return []reflect.Value{errVal}
	}
	if !value.IsValid() {
		value = reflect.Zero(h.md.ReturnType)
	}
	return []reflect.Value{value, errVal}
}

// streamMethodHandler implements a method with an Observer parameter:
// bind, resolve, retry-and-send, then iteratively decode into the
// Observer, guaranteeing exactly one terminal OnSuccess/OnFailure
// call — the client-side analogue of the teacher's SSE emitter loop
// in stream.go, run against a downloaded response instead of an
// outgoing ResponseWriter.
type streamMethodHandler struct {
	pipeline
}

// Invoke binds arguments synchronously — so a malformed call fails
// immediately, before the Observer is ever touched — then hands the
// request/retry/decode work to the client's [executor] and returns
// at once. The eventual outcome is delivered only through the
// Observer's OnSuccess/OnFailure; the returned error is nil unless
// binding failed or the executor has been closed.
func (h *streamMethodHandler) Invoke(ctx context.Context, args []reflect.Value) []reflect.Value {
	bound, err := bindArguments(h.md, args)
	if err != nil {
		return []reflect.Value{errorValue(err)}
	}

	err = h.client.executor.Go(func() {
		h.run(ctx, bound)
	})
	return []reflect.Value{errorValue(err)}
}

func (h *streamMethodHandler) run(ctx context.Context, bound *boundArguments) {
	req, err := h.buildRequest(bound)
	if err != nil {
		h.fail(bound, err)
		return
	}

	retryer := h.client.retryerFactory()
	resp, err := h.roundTrip(ctx, req, retryer)
	if err != nil {
		h.fail(bound, err)
		return
	}

	if h.md.ReturnType == responseType {
		// Body ownership transfers to the observer; no auto-close.
		bound.observerArg.MethodByName("OnNext").Call([]reflect.Value{reflect.ValueOf(resp)})
		bound.observerArg.MethodByName("OnSuccess").Call(nil)
		return
	}
	defer resp.Body.Close()

	decodeErr := h.client.observerDecoder.Decode(ctx, resp, h.md.ReturnType, bound.observerArg)
	if decodeErr != nil {
		wrapped := &RelayError{Kind: ErrReading, ConfigKey: h.md.ConfigKey, Cause: decodeErr, StatusCode: resp.Status}
		h.fail(bound, wrapped)
		return
	}

	bound.observerArg.MethodByName("OnSuccess").Call(nil)
}

func (h *streamMethodHandler) fail(bound *boundArguments, err error) {
	if bound != nil && bound.observerArg.IsValid() {
		bound.observerArg.MethodByName("OnFailure").Call([]reflect.Value{reflect.ValueOf(err)})
	}
}

// errorValue converts a Go error into the reflect.Value a
// [methodHandler] must return for a method's error result — a typed
// nil when err is nil, since a plain reflect.Zero(errorType) already
// is one.
func errorValue(err error) reflect.Value {
	if err == nil {
		return reflect.Zero(errorType)
	}
	return reflect.ValueOf(err)
}
