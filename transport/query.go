package transport

import (
	"net/url"
	"reflect"

	"github.com/gorilla/schema"
)

var queryEncoder = schema.NewEncoder()

// QueryEncoder encodes a struct-typed argument into query parameters
// via gorilla/schema, for callers whose [relay.MethodSpec] has a
// single struct-typed query argument rather than one QueryParam per
// field. It returns the encoded parameters as url.Values; a caller
// merges them into the request in a relay.Target or relay.Interceptor.
func QueryEncoder(value any) (url.Values, error) {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return url.Values{}, nil
		}
		v = v.Elem()
	}
	addressable := reflect.New(v.Type())
	addressable.Elem().Set(v)

	dst := url.Values{}
	if err := queryEncoder.Encode(addressable.Interface(), dst); err != nil {
		return nil, err
	}
	return dst, nil
}
