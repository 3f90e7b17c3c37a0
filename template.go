package relay

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// placeholderPattern matches a {name} token in a path, query value,
// header value, or body template.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// orderedValues is a multimap that remembers the order keys were first
// inserted, matching the teacher's preference for deterministic
// iteration over plain Go maps (see [RequestTemplate.QueryNames]).
type orderedValues struct {
	keys   []string
	values map[string][]string
}

func newOrderedValues() orderedValues {
	return orderedValues{values: make(map[string][]string)}
}

func (o *orderedValues) add(key, value string) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = append(o.values[key], value)
}

// ensureKey records key as present with an empty value set — the
// "flag" form of a query parameter. A key whose values were all
// dropped by the null-argument query-filter rule is not recorded this
// way; it disappears from the resolved template.
func (o *orderedValues) ensureKey(key string) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
		o.values[key] = nil
	}
}

func (o orderedValues) clone() orderedValues {
	c := orderedValues{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string][]string, len(o.values)),
	}
	for k, v := range o.values {
		c.values[k] = append([]string(nil), v...)
	}
	return c
}

// RequestTemplate is a partially-bound description of an HTTP request:
// a method, a path that may still contain unresolved {placeholder}
// tokens, ordered query and header multimaps whose values may also
// contain placeholders, and an optional body or body template.
//
// The [Contract] builds one template per method. Each call resolves it
// with [RequestTemplate.Resolve], which leaves the template unchanged
// and returns a fresh [ResolvedTemplate]; a [Target] then turns that
// into a concrete [Request].
type RequestTemplate struct {
	Method       string
	Path         string
	queries      orderedValues
	headers      orderedValues
	Body         []byte
	BodyTemplate string
}

// NewRequestTemplate returns an empty template for the given method
// and path. Path may contain {name} placeholders to be filled in by
// path parameters. A literal `?k=v&k2=v2&flag` suffix is lifted out of
// path into the query multimap, preserving insertion order; a bare key
// with no `=` is recorded as present with an empty value set.
func NewRequestTemplate(method, path string) *RequestTemplate {
	base, queries := liftQueryString(path)
	return &RequestTemplate{
		Method:  strings.ToUpper(method),
		Path:    base,
		queries: queries,
		headers: newOrderedValues(),
	}
}

// liftQueryString splits a literal path's `?...` suffix, if any, into
// the bare path and an ordered query multimap.
func liftQueryString(path string) (string, orderedValues) {
	queries := newOrderedValues()
	idx := strings.IndexByte(path, '?')
	if idx < 0 {
		return path, queries
	}
	base, rawQuery := path[:idx], path[idx+1:]
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			queries.add(pair[:eq], pair[eq+1:])
		} else {
			queries.ensureKey(pair)
		}
	}
	return base, queries
}

// Clone returns a deep copy; mutating the copy leaves t unchanged.
func (t *RequestTemplate) Clone() *RequestTemplate {
	c := &RequestTemplate{
		Method:       t.Method,
		Path:         t.Path,
		queries:      t.queries.clone(),
		headers:      t.headers.clone(),
		BodyTemplate: t.BodyTemplate,
	}
	if t.Body != nil {
		c.Body = append([]byte(nil), t.Body...)
	}
	return c
}

// AppendQuery adds a query value, preserving insertion order of keys.
func (t *RequestTemplate) AppendQuery(name, value string) {
	t.queries.add(name, value)
}

// AppendHeader adds a header value, preserving insertion order of keys.
func (t *RequestTemplate) AppendHeader(name, value string) {
	t.headers.add(name, value)
}

// QueryNames returns query parameter names in insertion order.
func (t *RequestTemplate) QueryNames() []string { return t.queries.keys }

// HeaderNames returns header names in insertion order.
func (t *RequestTemplate) HeaderNames() []string { return t.headers.keys }

// ResolvedTemplate is the result of substituting all placeholders out
// of a [RequestTemplate]. It is a distinct type from RequestTemplate
// so a [Target] can never mistake a half-resolved template for a
// final one.
type ResolvedTemplate struct {
	Method string
	Path   string
	Body   []byte

	queries orderedValues
	headers orderedValues
}

// QueryNames returns query parameter names in insertion order.
func (r *ResolvedTemplate) QueryNames() []string { return r.queries.keys }

// QueryValues returns the resolved values for a query parameter name.
func (r *ResolvedTemplate) QueryValues(name string) []string { return r.queries.values[name] }

// HeaderNames returns header names in insertion order.
func (r *ResolvedTemplate) HeaderNames() []string { return r.headers.keys }

// HeaderValues returns the resolved values for a header name.
func (r *ResolvedTemplate) HeaderValues(name string) []string { return r.headers.values[name] }

// Resolve substitutes every {name} placeholder appearing in the path,
// query values, header values, and body template using variables.
// It fails with [ErrUnboundTemplateParameter] if variables contains a
// name that appears nowhere in the template, and with
// [ErrTemplateNotResolved] if any placeholder remains after
// substitution (a path/query/header referenced a variable that was
// never bound).
//
// nullVariables marks which of variables stood in for a null argument.
// A query value that is exactly a single `{name}` placeholder with a
// null-marked binding drops the entire query entry instead of
// rendering as an empty string, the optional-query-filter rule; every
// other placeholder site (path, header, a query value with surrounding
// literal text, bodyTemplate) substitutes empty string as before.
func (t *RequestTemplate) Resolve(variables map[string]string, nullVariables map[string]bool) (*ResolvedTemplate, error) {
	used := make(map[string]bool, len(variables))
	substitute := func(s string, encode func(string) string) string {
		return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
			name := token[1 : len(token)-1]
			if v, ok := variables[name]; ok {
				used[name] = true
				if encode != nil {
					return encode(v)
				}
				return v
			}
			return token
		})
	}

	// soleQueryPlaceholder reports the variable name when s is exactly
	// one placeholder with no surrounding literal text.
	soleQueryPlaceholder := func(s string) (string, bool) {
		m := placeholderPattern.FindStringSubmatch(s)
		if m == nil || m[0] != s {
			return "", false
		}
		return m[1], true
	}

	path := substitute(t.Path, url.PathEscape)

	queries := newOrderedValues()
	for _, key := range t.queries.keys {
		resolvedKey := substitute(key, nil)
		values := t.queries.values[key]
		if len(values) == 0 {
			queries.ensureKey(resolvedKey)
			continue
		}
		for _, v := range values {
			if name, ok := soleQueryPlaceholder(v); ok {
				used[name] = true
				if nullVariables[name] {
					continue // drop the query entry entirely
				}
			}
			queries.add(resolvedKey, substitute(v, url.QueryEscape))
		}
	}

	headers := newOrderedValues()
	for _, key := range t.headers.keys {
		for _, v := range t.headers.values[key] {
			headers.add(key, substitute(v, nil))
		}
	}

	var body []byte
	if t.BodyTemplate != "" {
		body = []byte(substitute(decodeLiteralBraces(t.BodyTemplate), nil))
	} else if t.Body != nil {
		body = t.Body
	}

	for name := range variables {
		if !used[name] {
			return nil, fmt.Errorf("%w: %q", ErrUnboundTemplateParameter, name)
		}
	}

	if stillUnresolved(path) || anyUnresolved(queries) || anyUnresolved(headers) || placeholderPattern.MatchString(string(body)) {
		return nil, ErrTemplateNotResolved
	}

	return &ResolvedTemplate{
		Method:  t.Method,
		Path:    path,
		Body:    body,
		queries: queries,
		headers: headers,
	}, nil
}

// decodeLiteralBraces decodes the %7B/%7D escapes a bodyTemplate uses
// to carry a literal `{`/`}` through placeholder substitution
// unscathed, a single pass before the {name} tokens are expanded.
func decodeLiteralBraces(s string) string {
	replacer := strings.NewReplacer("%7B", "{", "%7b", "{", "%7D", "}", "%7d", "}")
	return replacer.Replace(s)
}

// String renders t in the textual form used by logs and test
// assertions: "<METHOD> <url>[?<queries>] HTTP/1.1\n<headers>\n<body>".
// Placeholders that haven't been resolved yet render literally.
func (t *RequestTemplate) String() string {
	body := t.Body
	if t.BodyTemplate != "" {
		body = []byte(t.BodyTemplate)
	}
	return renderRequestText(t.Method, t.Path, t.queries, t.headers, body)
}

// String renders r the same way [RequestTemplate.String] does, with
// every placeholder already resolved.
func (r *ResolvedTemplate) String() string {
	return renderRequestText(r.Method, r.Path, r.queries, r.headers, r.Body)
}

// renderRequestText implements the shared textual form: a request
// line, one line per header value, and — only when a body is present
// — a blank line followed by the body bytes. A missing body collapses
// to a single trailing newline after the request line/headers instead
// of an empty separator line.
func renderRequestText(method, path string, queries, headers orderedValues, body []byte) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(path)
	if qs := renderQueryString(queries); qs != "" {
		b.WriteByte('?')
		b.WriteString(qs)
	}
	b.WriteString(" HTTP/1.1\n")
	for _, name := range headers.keys {
		for _, v := range headers.values[name] {
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteByte('\n')
		}
	}
	if len(body) > 0 {
		b.WriteByte('\n')
		b.Write(body)
	}
	return b.String()
}

// renderQueryString joins queries' key/value pairs as "k=v", a
// keys-only entry as just "k", in insertion order.
func renderQueryString(queries orderedValues) string {
	var parts []string
	for _, key := range queries.keys {
		values := queries.values[key]
		if len(values) == 0 {
			parts = append(parts, key)
			continue
		}
		for _, v := range values {
			parts = append(parts, key+"="+v)
		}
	}
	return strings.Join(parts, "&")
}

func stillUnresolved(s string) bool { return placeholderPattern.MatchString(s) }

func anyUnresolved(ov orderedValues) bool {
	for _, key := range ov.keys {
		if placeholderPattern.MatchString(key) {
			return true
		}
		for _, v := range ov.values[key] {
			if placeholderPattern.MatchString(v) {
				return true
			}
		}
	}
	return false
}
