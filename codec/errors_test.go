package codec

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/relayhttp/relay"
)

func statusResp(status int, body string) *relay.Response {
	return &relay.Response{Status: status, Body: io.NopCloser(bytes.NewBufferString(body))}
}

func TestDefaultErrorDecoder_ParsesErrorEnvelope(t *testing.T) {
	resp := statusResp(http.StatusNotFound, `{"error":{"code":"not_found","message":"no such repo"}}`)
	err := DefaultErrorDecoder{}.Decode(resp)

	var codecErr *Error
	if !errors.As(err, &codecErr) {
		t.Fatalf("expected a *Error, got %#v", err)
	}
	if codecErr.Code != CodeNotFound || codecErr.Message != "no such repo" {
		t.Errorf("unexpected decoded error: %+v", codecErr)
	}
}

func TestDefaultErrorDecoder_RetryableCodeWrapsInRetryableError(t *testing.T) {
	resp := statusResp(http.StatusOK, `{"error":{"code":"unavailable","message":"try later"}}`)
	err := DefaultErrorDecoder{}.Decode(resp)

	var retryable *relay.RetryableError
	if !errors.As(err, &retryable) {
		t.Fatalf("expected a *relay.RetryableError, got %#v", err)
	}
}

func TestDefaultErrorDecoder_5xxWithoutEnvelopeIsRetryableStatusError(t *testing.T) {
	resp := statusResp(http.StatusServiceUnavailable, `internal error`)
	err := DefaultErrorDecoder{}.Decode(resp)

	var retryable *relay.RetryableError
	if !errors.As(err, &retryable) {
		t.Fatalf("expected a *relay.RetryableError, got %#v", err)
	}
	var statusErr *relay.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected the retryable error to wrap a *relay.StatusError, got %#v", retryable.Cause)
	}
	if statusErr.Status != http.StatusServiceUnavailable {
		t.Errorf("unexpected status: %d", statusErr.Status)
	}
}

func TestDefaultErrorDecoder_4xxWithoutEnvelopeIsPlainStatusError(t *testing.T) {
	resp := statusResp(http.StatusBadRequest, `bad request`)
	err := DefaultErrorDecoder{}.Decode(resp)

	var retryable *relay.RetryableError
	if errors.As(err, &retryable) {
		t.Fatal("expected a 400 with no envelope to not be retryable")
	}
	var statusErr *relay.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected a *relay.StatusError, got %#v", err)
	}
}
