package relay

import "reflect"

type paramKind int

const (
	roleNone paramKind = iota
	rolePath
	roleQuery
	roleHeader
	roleForm
	roleURL
	roleObserver
	roleBody
)

type paramRole struct {
	kind paramKind
	name string
}

// MethodSpec declaratively describes one interface method's HTTP
// operation: its verb, path template, produced media type, body
// template, and the role each Go parameter plays. It is the
// idiomatic-Go replacement for the original runtime's annotation
// processing — Go has no method-level annotations, so a MethodSpec is
// built with a small fluent API and handed to [New] alongside the
// interface type it describes, keyed by method name.
//
//	relay.GET("/repos/{owner}/{repo}/contributors").
//		PathParam(1, "owner").
//		PathParam(2, "repo")
type MethodSpec struct {
	verb         string
	path         string
	produces     string
	bodyTemplate string
	roles        map[int]paramRole
	observerType reflect.Type
}

// Verb starts a MethodSpec for an arbitrary HTTP method.
func Verb(verb, path string) *MethodSpec {
	return &MethodSpec{verb: verb, path: path, roles: make(map[int]paramRole)}
}

func GET(path string) *MethodSpec     { return Verb("GET", path) }
func POST(path string) *MethodSpec    { return Verb("POST", path) }
func PUT(path string) *MethodSpec     { return Verb("PUT", path) }
func PATCH(path string) *MethodSpec   { return Verb("PATCH", path) }
func DELETE(path string) *MethodSpec  { return Verb("DELETE", path) }
func HEAD(path string) *MethodSpec    { return Verb("HEAD", path) }
func OPTIONS(path string) *MethodSpec { return Verb("OPTIONS", path) }

// Produces sets the Accept header sent with every request for this
// method. It does not select the [Decoder] or [ObserverDecoder] used
// to read the response — that is fixed per [Client] — but lets a
// target that content-negotiates on Accept receive the right
// representation.
func (m *MethodSpec) Produces(mediaType string) *MethodSpec {
	m.produces = mediaType
	return m
}

// BodyTemplate sets a literal body template containing {name}
// placeholders, for methods that build a body without a dedicated
// body argument (spec.md scenario: form body rendering from path/query
// style named parameters).
func (m *MethodSpec) BodyTemplate(tmpl string) *MethodSpec {
	m.bodyTemplate = tmpl
	return m
}

// PathParam marks parameter i as substituting a {name} placeholder in
// the path.
func (m *MethodSpec) PathParam(i int, name string) *MethodSpec {
	m.roles[i] = paramRole{rolePath, name}
	return m
}

// QueryParam marks parameter i as a query string value named name.
func (m *MethodSpec) QueryParam(i int, name string) *MethodSpec {
	m.roles[i] = paramRole{roleQuery, name}
	return m
}

// HeaderParam marks parameter i as a header value named name.
func (m *MethodSpec) HeaderParam(i int, name string) *MethodSpec {
	m.roles[i] = paramRole{roleHeader, name}
	return m
}

// FormParam marks parameter i as a form field named name, rendered
// into the body via the method's [MethodSpec.BodyTemplate] or the
// client's [FormEncoder].
func (m *MethodSpec) FormParam(i int, name string) *MethodSpec {
	m.roles[i] = paramRole{roleForm, name}
	return m
}

// URLParam marks parameter i as supplying the entire request URL,
// overriding the [Target] for this one call — the Go analogue of the
// original runtime's urlIndex.
func (m *MethodSpec) URLParam(i int) *MethodSpec {
	m.roles[i] = paramRole{kind: roleURL}
	return m
}

// Observer marks parameter i as the [Observer] sink for a streamed
// response. It must be the method's last parameter, and the method
// must return only error.
func (m *MethodSpec) Observer(i int) *MethodSpec {
	m.roles[i] = paramRole{kind: roleObserver}
	return m
}

// ObserverType overrides the element type resolved for the Observer
// parameter, for the rare case where the declared parameter's static
// type is Observer[any] and [ObserverElementType] cannot recover a
// concrete element type — the documented escape hatch for an
// otherwise-unresolvable type parameter.
func (m *MethodSpec) ObserverType(t reflect.Type) *MethodSpec {
	m.observerType = t
	return m
}

// Body marks parameter i as the request body, encoded by the
// client's [BodyEncoder]. A method cannot combine Body with any
// FormParam.
func (m *MethodSpec) Body(i int) *MethodSpec {
	m.roles[i] = paramRole{kind: roleBody}
	return m
}
