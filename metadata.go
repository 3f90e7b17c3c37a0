package relay

import "reflect"

// MethodMetadata is the immutable, parsed description of one
// interface method's HTTP operation. A [Contract] produces exactly
// one per described method; a [methodHandler] is built from each and
// never mutates it. This mirrors the original runtime's
// MethodMetadata, which is likewise built once by Contract.parse and
// treated as read-only for the lifetime of the client.
type MethodMetadata struct {
	// ConfigKey is this method's [ConfigKey] string, used to key
	// per-method [Options] and to label errors and log lines.
	ConfigKey string

	// ReturnType is the method's return type, unless ObserverIndex is
	// set, in which case it is the observer's resolved element type.
	ReturnType reflect.Type

	// Template is the method's RequestTemplate, with placeholders for
	// every path/query/header parameter (and any the body template
	// carries for form parameters) but not yet resolved against call
	// arguments.
	Template *RequestTemplate

	// Produces is the Accept header value sent with every request for
	// this method, or empty to send none.
	Produces string

	URLIndex      *int
	ObserverIndex *int
	BodyIndex     *int
	FormParams    []string
	IndexToName   map[int][]string

	// IsStreaming is true when ObserverIndex is set.
	IsStreaming bool

	numIn      int
	paramTypes []reflect.Type
}
