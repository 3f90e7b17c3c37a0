package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
)

// The types in this file are the collaborators a [Client] falls back
// to when a [ClientOption] doesn't override them: encoding/json over
// net/http, nothing more. Package codec and package transport (sibling
// packages, not imported here) provide richer alternatives — a
// validator.v10-checked [Decoder], a gorilla/schema-encoded
// [BodyEncoder], a configurable [Transport] — built against the same
// interfaces. Both sides live in this module, so keeping relay's own
// defaults stdlib-only is what keeps relay importable by codec and
// transport without an import cycle.

// newStdlibTransport returns the zero-configuration [Transport] used
// when [WithTransport] is never called.
func newStdlibTransport() Transport {
	return &stdlibTransport{client: http.DefaultClient}
}

type stdlibTransport struct {
	client *http.Client
}

func (t *stdlibTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	opts := OptionsFromContext(ctx)
	if opts.ConnectTimeout > 0 || opts.ReadTimeout > 0 {
		var cancel context.CancelFunc
		timeout := opts.ConnectTimeout + opts.ReadTimeout
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = strings.NewReader(string(req.Body))
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   httpResp.Body,
	}, nil
}

// stdlibJSONDecoder decodes a 2xx body with encoding/json.
type stdlibJSONDecoder struct{}

func (stdlibJSONDecoder) Decode(resp *Response, into reflect.Type) (any, error) {
	if into == responseType {
		return resp, nil
	}
	ptr := reflect.New(into)
	if err := json.NewDecoder(resp.Body).Decode(ptr.Interface()); err != nil {
		if errors.Is(err, io.EOF) {
			return reflect.Zero(into).Interface(), nil
		}
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// stdlibJSONObserverDecoder decodes a response body as a stream of
// newline-delimited JSON values, calling observer.OnNext once per
// decoded element.
type stdlibJSONObserverDecoder struct{}

func (stdlibJSONObserverDecoder) Decode(ctx context.Context, resp *Response, elemType reflect.Type, observer reflect.Value) error {
	dec := json.NewDecoder(resp.Body)
	onNext := observer.MethodByName("OnNext")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ptr := reflect.New(elemType)
		if err := dec.Decode(ptr.Interface()); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		onNext.Call([]reflect.Value{ptr.Elem()})
	}
}

// stdlibJSONBodyEncoder encodes a body argument with encoding/json.
type stdlibJSONBodyEncoder struct{}

func (stdlibJSONBodyEncoder) Encode(value any) ([]byte, string, error) {
	body, err := json.Marshal(value)
	if err != nil {
		return nil, "", err
	}
	return body, "application/json", nil
}

// stdlibFormEncoder encodes form parameters as
// application/x-www-form-urlencoded, the same encoding as codec's
// URLEncodedFormEncoder.
type stdlibFormEncoder struct{}

func (stdlibFormEncoder) Encode(values map[string]string) ([]byte, string, error) {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	return []byte(form.Encode()), "application/x-www-form-urlencoded", nil
}

// stdlibErrorDecoder turns any non-2xx response into a [StatusError],
// marking 429 and 5xx responses [RetryableError] so a [Retryer] can
// choose to retry them.
type stdlibErrorDecoder struct{}

func (stdlibErrorDecoder) Decode(resp *Response) error {
	body, _ := io.ReadAll(resp.Body)
	statusErr := &StatusError{Status: resp.Status, Body: body}
	if resp.Status == http.StatusTooManyRequests || resp.Status >= 500 {
		return &RetryableError{Cause: statusErr}
	}
	return statusErr
}
