package relay

import (
	"context"
	"log/slog"
	"time"
)

// Wire observes each request/response pair passing through a
// [Client], the Go-native form of the original runtime's Wire hook.
// Implementations must not block the pipeline for long or mutate req
// or resp.
type Wire interface {
	// Observe is called once per attempt, after the transport round
	// trip (or failure) completes.
	Observe(ctx context.Context, configKey string, req *Request, resp *Response, err error, elapsed time.Duration)
}

// NoOpWire is the default Wire: it does nothing.
type NoOpWire struct{}

func (NoOpWire) Observe(context.Context, string, *Request, *Response, error, time.Duration) {}

// LoggingWire logs one structured line per attempt via [log/slog],
// matching the teacher's pattern of threading a *slog.Logger through
// via a WithLogger builder rather than a package-level logger.
type LoggingWire struct {
	Logger *slog.Logger
}

// NewLoggingWire returns a LoggingWire using logger, or slog.Default()
// if logger is nil.
func NewLoggingWire(logger *slog.Logger) *LoggingWire {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingWire{Logger: logger}
}

func (w *LoggingWire) Observe(_ context.Context, configKey string, req *Request, resp *Response, err error, elapsed time.Duration) {
	attrs := []any{
		slog.String("config_key", configKey),
		slog.Duration("elapsed", elapsed),
	}
	if req != nil {
		attrs = append(attrs, slog.String("method", req.Method), slog.String("url", req.URL))
	}
	if err != nil {
		w.Logger.Error("relay request failed", append(attrs, slog.Any("error", err))...)
		return
	}
	if resp != nil {
		attrs = append(attrs, slog.Int("status", resp.Status))
	}
	w.Logger.Debug("relay request completed", attrs...)
}

// chainWire fans Observe out to every wire in order — the Wire
// analogue of the teacher's chainInterceptors, generalized from a
// single server-side interceptor chain to composing client-side
// observers.
type chainWire struct {
	wires []Wire
}

// Chain combines multiple [Wire]s into one that calls each in order.
func Chain(wires ...Wire) Wire {
	if len(wires) == 1 {
		return wires[0]
	}
	return &chainWire{wires: wires}
}

func (c *chainWire) Observe(ctx context.Context, configKey string, req *Request, resp *Response, err error, elapsed time.Duration) {
	for _, w := range c.wires {
		w.Observe(ctx, configKey, req, resp, err, elapsed)
	}
}
