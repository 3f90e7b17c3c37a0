package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/relayhttp/relay"
)

func TestHTTPTransport_RoundTripSendsHeadersAndBody(t *testing.T) {
	var gotMethod, gotBody, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Test")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	tr := NewHTTPTransport(nil)
	resp, err := tr.RoundTrip(context.Background(), &relay.Request{
		Method: "POST",
		URL:    server.URL,
		Header: map[string][]string{"X-Test": {"value"}},
		Body:   []byte(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if gotMethod != "POST" {
		t.Errorf("unexpected method: %q", gotMethod)
	}
	if gotHeader != "value" {
		t.Errorf("unexpected header: %q", gotHeader)
	}
	if gotBody != `{"a":1}` {
		t.Errorf("unexpected body: %q", gotBody)
	}
	if resp.Status != http.StatusCreated {
		t.Errorf("unexpected status: %d", resp.Status)
	}
}

func TestHTTPTransport_AppliesOptionsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := NewHTTPTransport(nil)
	ctx := relay.ContextWithOptions(context.Background(), relay.Options{ConnectTimeout: time.Millisecond, ReadTimeout: time.Millisecond})

	_, err := tr.RoundTrip(ctx, &relay.Request{Method: "GET", URL: server.URL})
	if err == nil {
		t.Fatal("expected the request to fail once the combined timeout elapses")
	}
}
