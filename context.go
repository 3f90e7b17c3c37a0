package relay

import (
	"context"
	"time"
)

// contextKey mirrors the teacher's unexported-struct context key
// idiom, which avoids collisions with keys from other packages
// without needing a string constant per key.
type contextKey struct {
	name string
}

var optionsKey = &contextKey{"options"}

// Options bounds how long a single attempt may take connecting to and
// reading from the target, scoped per [ConfigKey] via
// [WithOptions].
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// withOptions attaches o to ctx for the duration of one transport
// round trip. A [Transport] implementation reads it back with
// [OptionsFromContext].
func withOptions(ctx context.Context, o Options) context.Context {
	return context.WithValue(ctx, optionsKey, o)
}

// ContextWithOptions is the exported form of withOptions, for a
// caller driving a [Transport] directly (outside of [Client.Invoke])
// that still wants to honor per-call Options.
func ContextWithOptions(ctx context.Context, o Options) context.Context {
	return withOptions(ctx, o)
}

// OptionsFromContext returns the [Options] relay attached to ctx for
// the in-flight call, or the zero value (no timeouts) if none were
// configured. transport.HTTPTransport uses this to set per-call
// connect/read deadlines without relay's core package needing to
// depend on net/http.
func OptionsFromContext(ctx context.Context) Options {
	if o, ok := ctx.Value(optionsKey).(Options); ok {
		return o
	}
	return Options{}
}
