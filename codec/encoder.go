package codec

import (
	"encoding/json"
	"net/url"
	"reflect"

	"github.com/gorilla/schema"
)

// JSONBodyEncoder encodes a body argument as JSON. It is identical to
// relay's stdlib default; it lives in this package so a caller that
// has already pulled in codec for [JSONDecoder] can configure every
// collaborator from one package.
type JSONBodyEncoder struct{}

func (JSONBodyEncoder) Encode(value any) ([]byte, string, error) {
	body, err := json.Marshal(value)
	if err != nil {
		return nil, "", err
	}
	return body, "application/json", nil
}

var schemaEncoder = schema.NewEncoder()

// SchemaBodyEncoder encodes a struct-typed body argument as
// application/x-www-form-urlencoded using gorilla/schema's Encoder —
// the encode-direction counterpart of the teacher's package-level
// `schemaDecoder = schema.NewDecoder()`, used here to turn a Go struct
// argument into form values instead of populating one from them.
type SchemaBodyEncoder struct{}

func (SchemaBodyEncoder) Encode(value any) ([]byte, string, error) {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, "application/x-www-form-urlencoded", nil
		}
		v = v.Elem()
	}
	addressable := reflect.New(v.Type())
	addressable.Elem().Set(v)

	dst := url.Values{}
	if err := schemaEncoder.Encode(addressable.Interface(), dst); err != nil {
		return nil, "", err
	}
	return []byte(dst.Encode()), "application/x-www-form-urlencoded", nil
}
