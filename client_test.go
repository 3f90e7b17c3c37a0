package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

type repo struct {
	Name string `json:"name"`
}

type githubAPI interface {
	Contributors(ctx context.Context, owner, repo string) ([]string, error)
	CreateRepo(ctx context.Context, body *repo) (*repo, error)
	StreamCommits(ctx context.Context, observer Observer[string]) error
}

// fakeTransport returns a canned response (or error) for every call,
// and records the last request it was asked to send.
type fakeTransport struct {
	responses []*Response
	errs      []error
	calls     int
	lastReq   *Request
}

func (f *fakeTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	f.lastReq = req
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

func jsonResponse(status int, body string) *Response {
	return &Response{
		Status: status,
		Header: map[string][]string{"Content-Type": {"application/json"}},
		Body:   io.NopCloser(bytes.NewBufferString(body)),
	}
}

func newGithubClient(t *testing.T, transport Transport, opts ...ClientOption) *Client {
	specs := map[string]*MethodSpec{
		"Contributors": GET("/repos/{owner}/{repo}/contributors").
			PathParam(1, "owner").PathParam(2, "repo"),
		"CreateRepo": POST("/repos").Body(1),
		"StreamCommits": GET("/commits").Observer(1),
	}
	allOpts := append([]ClientOption{WithTransport(transport)}, opts...)
	c, err := New[githubAPI](NewHardCodedTarget("https://api.github.com"), specs, allOpts...)
	if err != nil {
		t.Fatalf("unexpected error from New: %v", err)
	}
	return c
}

func TestClient_InvokeDecodesSuccessResponse(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{jsonResponse(200, `["alice","bob"]`)}}
	c := newGithubClient(t, transport)

	out := c.Invoke(context.Background(), "Contributors", "broady", "tygor")
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[1] != nil {
		t.Fatalf("unexpected error: %v", out[1])
	}
	got, ok := out[0].([]string)
	if !ok || len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("unexpected result: %#v", out[0])
	}
	if transport.lastReq.URL != "https://api.github.com/repos/broady/tygor/contributors" {
		t.Errorf("unexpected request URL: %q", transport.lastReq.URL)
	}
}

func TestClient_InvokeEncodesBody(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{jsonResponse(201, `{"name":"new-repo"}`)}}
	c := newGithubClient(t, transport)

	out := c.Invoke(context.Background(), "CreateRepo", &repo{Name: "new-repo"})
	if out[1] != nil {
		t.Fatalf("unexpected error: %v", out[1])
	}
	got := out[0].(*repo)
	if got.Name != "new-repo" {
		t.Errorf("unexpected decoded repo: %#v", got)
	}
	if string(transport.lastReq.Body) != `{"name":"new-repo"}` {
		t.Errorf("unexpected encoded body: %s", transport.lastReq.Body)
	}
}

type rawResponseAPI interface {
	Download(ctx context.Context) (*Response, error)
}

func TestClient_InvokeReturnsRawResponseForResponseSentinel(t *testing.T) {
	resp := jsonResponse(200, `binary-ish payload`)
	transport := &fakeTransport{responses: []*Response{resp}}
	specs := map[string]*MethodSpec{"Download": GET("/files/archive")}
	c, err := New[rawResponseAPI](NewHardCodedTarget("https://api.example.com"), specs, WithTransport(transport))
	if err != nil {
		t.Fatalf("unexpected error from New: %v", err)
	}

	out := c.Invoke(context.Background(), "Download")
	if out[1] != nil {
		t.Fatalf("unexpected error: %v", out[1])
	}
	got, ok := out[0].(*Response)
	if !ok || got != resp {
		t.Fatalf("expected the raw *Response to be returned untouched, got %#v", out[0])
	}
	// Body ownership transferred to the caller instead of being
	// auto-closed: this would panic/error on an already-closed body.
	body, err := io.ReadAll(got.Body)
	if err != nil || string(body) != "binary-ish payload" {
		t.Errorf("expected the body to still be readable, got %q, err %v", body, err)
	}
}

func TestClient_InvokePanicsOnUnknownMethod(t *testing.T) {
	transport := &fakeTransport{}
	c := newGithubClient(t, transport)

	defer func() {
		if recover() == nil {
			t.Error("expected Invoke to panic for an unknown method name")
		}
	}()
	c.Invoke(context.Background(), "NoSuchMethod")
}

func TestClient_InvokeRetriesRetryableStatus(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{
		jsonResponse(503, `oops`),
		jsonResponse(200, `["alice"]`),
	}}
	c := newGithubClient(t, transport, WithRetryer(DefaultRetryerFactory(3, time.Millisecond, 0)))

	out := c.Invoke(context.Background(), "Contributors", "broady", "tygor")
	if out[1] != nil {
		t.Fatalf("expected the retried call to eventually succeed, got error: %v", out[1])
	}
	if transport.calls != 2 {
		t.Errorf("expected exactly 2 transport calls, got %d", transport.calls)
	}
}

func TestClient_InvokeGivesUpWithoutRetryer(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{jsonResponse(503, `oops`)}}
	c := newGithubClient(t, transport) // default retryer never retries

	out := c.Invoke(context.Background(), "Contributors", "broady", "tygor")
	if out[1] == nil {
		t.Fatal("expected an error when the only response is a 503 and retries are disabled")
	}
	if transport.calls != 1 {
		t.Errorf("expected exactly 1 transport call, got %d", transport.calls)
	}
}

func TestClient_InvokeDoesNotRetryAfterPartialRead(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{jsonResponse(200, `not valid json`)}}
	c := newGithubClient(t, transport, WithRetryer(DefaultRetryerFactory(3, time.Millisecond, 0)))

	out := c.Invoke(context.Background(), "Contributors", "broady", "tygor")
	var relayErr *RelayError
	if !errors.As(out[1].(error), &relayErr) {
		t.Fatalf("expected a *RelayError, got %#v", out[1])
	}
	if relayErr.Kind != ErrReading {
		t.Errorf("expected ErrReading, got %v", relayErr.Kind)
	}
	if transport.calls != 1 {
		t.Errorf("expected exactly 1 transport call — a decode failure after a 200 is terminal, not retryable, got %d", transport.calls)
	}
}

func TestClient_InvokeWrapsTransportFailure(t *testing.T) {
	boom := errors.New("connection refused")
	transport := &fakeTransport{errs: []error{boom}}
	c := newGithubClient(t, transport)

	out := c.Invoke(context.Background(), "Contributors", "broady", "tygor")
	var relayErr *RelayError
	if !errors.As(out[1].(error), &relayErr) {
		t.Fatalf("expected a *RelayError, got %#v", out[1])
	}
	if relayErr.Kind != ErrExecuting {
		t.Errorf("expected ErrExecuting, got %v", relayErr.Kind)
	}
}

func TestClient_StreamingMethodDeliversViaObserver(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{jsonResponse(200, `"one"` + "\n" + `"two"` + "\n")}}
	c := newGithubClient(t, transport)

	done := make(chan struct{})
	obs := &recordingObserver{done: done}

	out := c.Invoke(context.Background(), "StreamCommits", obs)
	if out[0] != nil {
		t.Fatalf("unexpected synchronous error: %v", out[0])
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the stream to complete")
	}

	if len(obs.values) != 2 || obs.values[0] != "one" || obs.values[1] != "two" {
		t.Errorf("unexpected observed values: %v", obs.values)
	}
	if !obs.succeeded {
		t.Error("expected OnSuccess to be called")
	}
}

type recordingObserver struct {
	values    []string
	succeeded bool
	failure   error
	done      chan struct{}
}

func (o *recordingObserver) OnNext(v string) { o.values = append(o.values, v) }
func (o *recordingObserver) OnSuccess()      { o.succeeded = true; close(o.done) }
func (o *recordingObserver) OnFailure(err error) {
	o.failure = err
	close(o.done)
}

func TestClient_CloseWaitsForInFlightStreams(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{jsonResponse(200, `"one"` + "\n")}}
	c := newGithubClient(t, transport)

	done := make(chan struct{})
	obs := &recordingObserver{done: done}
	c.Invoke(context.Background(), "StreamCommits", obs)

	c.Close()
	if !obs.succeeded && obs.failure == nil {
		t.Error("expected Close to block until the observer's terminal call had been made")
	}
}

func TestClient_MetadataExposesParsedMethod(t *testing.T) {
	c := newGithubClient(t, &fakeTransport{})
	md := c.Metadata("Contributors")
	if md == nil {
		t.Fatal("expected non-nil metadata for Contributors")
	}
	if md.ConfigKey != "githubAPI#Contributors(string,string)" {
		t.Errorf("unexpected ConfigKey: %q", md.ConfigKey)
	}
	if c.Metadata("NoSuchMethod") != nil {
		t.Error("expected nil metadata for an undescribed method")
	}
}

func TestNew_FailsContractValidationUpFront(t *testing.T) {
	_, err := New[githubAPI](NewHardCodedTarget("https://api.github.com"), map[string]*MethodSpec{})
	if err == nil {
		t.Fatal("expected New to fail when no MethodSpec entries are provided")
	}
}

type optionsCapturingTransport struct {
	fakeTransport
	seen Options
}

func (o *optionsCapturingTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	o.seen = OptionsFromContext(ctx)
	return o.fakeTransport.RoundTrip(ctx, req)
}

func TestClient_PerMethodOptionsReachTransport(t *testing.T) {
	transport := &optionsCapturingTransport{fakeTransport: fakeTransport{responses: []*Response{jsonResponse(200, `["alice"]`)}}}
	c := newGithubClient(t, transport, WithOptions("githubAPI#Contributors(string,string)", Options{ConnectTimeout: time.Second}))

	c.Invoke(context.Background(), "Contributors", "broady", "tygor")
	if transport.seen.ConnectTimeout != time.Second {
		t.Errorf("expected the per-method ConnectTimeout to reach the transport via context, got %v", transport.seen.ConnectTimeout)
	}
}

func TestClient_WithInterceptorWrapsEveryAttempt(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{jsonResponse(200, `["alice"]`)}}
	var sawAuth string
	auth := func(ctx context.Context, req *Request, next RequestFunc) (*Response, error) {
		if req.Header == nil {
			req.Header = make(map[string][]string)
		}
		req.Header["Authorization"] = []string{"Bearer xyz"}
		resp, err := next(ctx, req)
		sawAuth = req.Header["Authorization"][0]
		return resp, err
	}
	c := newGithubClient(t, transport, WithInterceptor(auth))

	c.Invoke(context.Background(), "Contributors", "broady", "tygor")
	if sawAuth != "Bearer xyz" {
		t.Errorf("expected the interceptor to run, got %q", sawAuth)
	}
	if transport.lastReq.Header["Authorization"][0] != "Bearer xyz" {
		t.Errorf("expected the Authorization header to reach the transport, got %v", transport.lastReq.Header)
	}
}
