// Package codec provides richer [relay.Decoder], [relay.ObserverDecoder],
// [relay.BodyEncoder], [relay.FormEncoder], and [relay.ErrorDecoder]
// implementations than the encoding/json- and net/http-only defaults
// relay's core package falls back to, grounded on the same
// go-playground/validator and gorilla/schema packages the teacher used
// server-side.
package codec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/relayhttp/relay"
)

var validate = validator.New()

// JSONDecoder decodes a 2xx response body with encoding/json and then
// runs go-playground/validator's struct-tag validation over the
// result, the client-side mirror of the teacher's
// `validate.Struct(req)` call in handler.go — there it validates an
// inbound request before a handler runs; here it validates a decoded
// response before the caller sees it. A [validator.ValidationErrors]
// is returned unwrapped so a caller can use errors.As the same way the
// teacher's DefaultErrorTransformer does.
type JSONDecoder struct {
	// SkipValidation disables the post-decode validator.Struct call,
	// for response types the target doesn't document struct tags for.
	SkipValidation bool
}

func (d JSONDecoder) Decode(resp *relay.Response, into reflect.Type) (any, error) {
	if into == reflect.TypeOf((*relay.Response)(nil)) {
		return resp, nil
	}
	ptr := reflect.New(into)
	if err := json.NewDecoder(resp.Body).Decode(ptr.Interface()); err != nil {
		if errors.Is(err, io.EOF) {
			return reflect.Zero(into).Interface(), nil
		}
		return nil, err
	}
	value := ptr.Elem()
	if !d.SkipValidation && into.Kind() == reflect.Struct {
		if err := validate.Struct(value.Interface()); err != nil {
			return nil, err
		}
	}
	return value.Interface(), nil
}

// JSONObserverDecoder streams a top-level JSON array one element at a
// time, calling observer's OnNext for each decoded element without
// ever materializing the whole array — the streaming counterpart of
// [JSONDecoder], built on encoding/json's token-level Decoder exactly
// the way the original runtime's ObserverDecoder<T> streams a Reader
// rather than buffering.
type JSONObserverDecoder struct {
	SkipValidation bool
}

func (d JSONObserverDecoder) Decode(ctx context.Context, resp *relay.Response, elemType reflect.Type, observer reflect.Value) error {
	dec := json.NewDecoder(resp.Body)

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '[' {
		return fmt.Errorf("relay/codec: expected a JSON array, got %v", tok)
	}

	onNext := observer.MethodByName("OnNext")
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return err
		}
		ptr := reflect.New(elemType)
		if err := dec.Decode(ptr.Interface()); err != nil {
			return err
		}
		if !d.SkipValidation && elemType.Kind() == reflect.Struct {
			if err := validate.Struct(ptr.Interface()); err != nil {
				return err
			}
		}
		onNext.Call([]reflect.Value{ptr.Elem()})
	}

	_, err = dec.Token() // consume closing ']'
	return err
}
