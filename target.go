package relay

import (
	"net/url"
	"strings"
)

// Target turns a fully-[RequestTemplate.Resolve]d template into a
// concrete [Request], typically by prefixing a base URL. It is the
// Go-native form of the original runtime's Target<T>, kept as an
// interface so a caller can swap in service discovery or a
// load-balancing strategy without touching the rest of the pipeline.
type Target interface {
	// Apply returns the Request that should be sent for rt.
	Apply(rt *ResolvedTemplate) (*Request, error)

	// URL returns the target's base URL.
	URL() string
}

// HardCodedTarget is the default [Target]: every request is sent to
// one fixed base URL, matching the original runtime's
// Target.HardCodedTarget.
type HardCodedTarget struct {
	baseURL string
}

// NewHardCodedTarget returns a Target that prefixes every request
// path with baseURL, trimming exactly one trailing slash from baseURL
// and requiring Path to begin with a slash.
func NewHardCodedTarget(baseURL string) *HardCodedTarget {
	return &HardCodedTarget{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (t *HardCodedTarget) URL() string { return t.baseURL }

func (t *HardCodedTarget) Apply(rt *ResolvedTemplate) (*Request, error) {
	u, err := url.Parse(t.baseURL + rt.Path)
	if err != nil {
		return nil, err
	}
	query := u.Query()
	for _, name := range rt.QueryNames() {
		for _, v := range rt.QueryValues(name) {
			query.Add(name, v)
		}
	}
	u.RawQuery = query.Encode()

	header := make(map[string][]string)
	for _, name := range rt.HeaderNames() {
		header[name] = append(header[name], rt.HeaderValues(name)...)
	}

	return &Request{
		Method: rt.Method,
		URL:    u.String(),
		Header: header,
		Body:   rt.Body,
	}, nil
}

// explicitURLTarget is used internally by the argument binder when a
// method parameter is marked with [MethodSpec.URLParam]: the caller
// supplies the whole URL for that one call, overriding the Target the
// Client was built with (the original runtime's urlIndex behavior).
type explicitURLTarget struct {
	url string
}

func (t *explicitURLTarget) URL() string { return t.url }

func (t *explicitURLTarget) Apply(rt *ResolvedTemplate) (*Request, error) {
	u, err := url.Parse(t.url)
	if err != nil {
		return nil, err
	}
	query := u.Query()
	for _, name := range rt.QueryNames() {
		for _, v := range rt.QueryValues(name) {
			query.Add(name, v)
		}
	}
	u.RawQuery = query.Encode()

	header := make(map[string][]string)
	for _, name := range rt.HeaderNames() {
		header[name] = append(header[name], rt.HeaderValues(name)...)
	}

	return &Request{
		Method: rt.Method,
		URL:    u.String(),
		Header: header,
		Body:   rt.Body,
	}, nil
}
