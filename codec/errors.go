package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/relayhttp/relay"
)

// ErrorCode is a machine-readable error code, the client-side mirror
// of the teacher's server-side ErrorCode in errors.go.
type ErrorCode string

const (
	CodeInvalidArgument   ErrorCode = "invalid_argument"
	CodeUnauthenticated   ErrorCode = "unauthenticated"
	CodePermissionDenied  ErrorCode = "permission_denied"
	CodeNotFound          ErrorCode = "not_found"
	CodeConflict          ErrorCode = "conflict"
	CodeResourceExhausted ErrorCode = "resource_exhausted"
	CodeInternal          ErrorCode = "internal"
	CodeUnavailable       ErrorCode = "unavailable"
	CodeDeadlineExceeded  ErrorCode = "deadline_exceeded"
)

// Error is the decoded form of a target's `{"error":{"code":...,
// "message":...,"details":...}}` envelope — the client-side read of
// the same shape the teacher's errors.go writes server-side.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// retryableCodes lists the codes (resource_exhausted, unavailable,
// deadline_exceeded) treated as conditions worth a [relay.Retryer]
// retry rather than an immediate failure, whatever the status code.
var retryableCodes = map[ErrorCode]bool{
	CodeResourceExhausted: true,
	CodeUnavailable:       true,
	CodeDeadlineExceeded:  true,
}

// DefaultErrorDecoder decodes a non-2xx response body as the
// `{"error": {...}}` envelope above. A body that doesn't parse as
// that envelope falls back to [relay.StatusError], unwrapped the same
// way. 429 and 5xx responses, or a decoded code in retryableCodes, are
// returned as [relay.RetryableError].
type DefaultErrorDecoder struct{}

func (DefaultErrorDecoder) Decode(resp *relay.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var envelope struct {
		Error *Error `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		if retryableCodes[envelope.Error.Code] || resp.Status == http.StatusTooManyRequests || resp.Status >= 500 {
			return &relay.RetryableError{Cause: envelope.Error}
		}
		return envelope.Error
	}

	statusErr := &relay.StatusError{Status: resp.Status, Body: body}
	if resp.Status == http.StatusTooManyRequests || resp.Status >= 500 {
		return &relay.RetryableError{Cause: statusErr}
	}
	return statusErr
}
