package relay

import (
	"context"
	"fmt"
	"reflect"
)

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// responseType is the decodeInto sentinel for a method declared to
// return (*Response, error): the pipeline hands back the raw response
// untouched instead of running it through a [Decoder], and body
// ownership transfers to the caller instead of being auto-closed.
var responseType = reflect.TypeOf((*Response)(nil))

// Contract parses an interface type and its method descriptions into
// a [MethodMetadata] table, validating every rule the rest of the
// pipeline depends on holding: exactly one description per method, a
// leading context.Context, at most one body/url/observer parameter,
// body and form mutual exclusivity, and an Observer parameter that is
// both last and paired with an error-only return.
type Contract interface {
	Parse(ifaceType reflect.Type, specs map[string]*MethodSpec) (map[string]*MethodMetadata, error)
}

// DefaultContract is the only [Contract] implementation this module
// ships. A second, annotation-string-based dialect (the original
// runtime also shipped a JAX-RS contract) is explicitly out of scope.
type DefaultContract struct{}

func (DefaultContract) Parse(ifaceType reflect.Type, specs map[string]*MethodSpec) (map[string]*MethodMetadata, error) {
	if ifaceType.Kind() != reflect.Interface {
		return nil, fmt.Errorf("relay: %s is not an interface", ifaceType)
	}

	result := make(map[string]*MethodMetadata, ifaceType.NumMethod())
	for i := 0; i < ifaceType.NumMethod(); i++ {
		method := ifaceType.Method(i)
		spec, ok := specs[method.Name]
		if !ok {
			return nil, newContractError(method.Name, fmt.Errorf("no MethodSpec provided"))
		}
		md, err := parseMethod(ifaceType, method, spec)
		if err != nil {
			return nil, newContractError(method.Name, err)
		}
		result[method.Name] = md
	}
	return result, nil
}

func parseMethod(ifaceType reflect.Type, method reflect.Method, spec *MethodSpec) (*MethodMetadata, error) {
	if spec.verb == "" {
		return nil, fmt.Errorf("missing HTTP verb")
	}
	mt := method.Type
	if mt.NumIn() == 0 || mt.In(0) != contextType {
		return nil, fmt.Errorf("first parameter must be context.Context")
	}

	md := &MethodMetadata{
		Template:    NewRequestTemplate(spec.verb, spec.path),
		IndexToName: make(map[int][]string),
		numIn:       mt.NumIn(),
	}

	var formParams []string
	var bodyIndex, urlIndex, observerIndex *int

	for i := 1; i < mt.NumIn(); i++ {
		role, ok := spec.roles[i]
		if !ok {
			return nil, fmt.Errorf("parameter %d has no declared role", i)
		}
		switch role.kind {
		case rolePath:
			if !pathHasPlaceholder(spec.path, role.name) {
				return nil, fmt.Errorf("path %q has no {%s} placeholder for parameter %d", spec.path, role.name, i)
			}
			md.IndexToName[i] = append(md.IndexToName[i], role.name)
		case roleQuery:
			md.Template.AppendQuery(role.name, "{"+role.name+"}")
			md.IndexToName[i] = append(md.IndexToName[i], role.name)
		case roleHeader:
			md.Template.AppendHeader(role.name, "{"+role.name+"}")
			md.IndexToName[i] = append(md.IndexToName[i], role.name)
		case roleForm:
			formParams = append(formParams, role.name)
			md.IndexToName[i] = append(md.IndexToName[i], role.name)
		case roleURL:
			if urlIndex != nil {
				return nil, fmt.Errorf("parameters %d and %d are both marked as the URL parameter", *urlIndex, i)
			}
			idx := i
			urlIndex = &idx
		case roleObserver:
			if observerIndex != nil {
				return nil, fmt.Errorf("parameters %d and %d are both marked as the observer parameter", *observerIndex, i)
			}
			idx := i
			observerIndex = &idx
		case roleBody:
			if bodyIndex != nil {
				return nil, fmt.Errorf("parameters %d and %d are both marked as the body parameter", *bodyIndex, i)
			}
			idx := i
			bodyIndex = &idx
		default:
			return nil, fmt.Errorf("parameter %d has no declared role", i)
		}
	}

	if bodyIndex != nil && len(formParams) > 0 {
		return nil, ErrBodyFormExclusive
	}
	if observerIndex != nil && *observerIndex != mt.NumIn()-1 {
		return nil, ErrObserverMustBeLast
	}

	md.Template.BodyTemplate = spec.bodyTemplate
	md.Produces = spec.produces
	md.URLIndex = urlIndex
	md.BodyIndex = bodyIndex
	md.ObserverIndex = observerIndex
	md.FormParams = formParams

	if observerIndex != nil {
		if mt.NumOut() != 1 || mt.Out(0) != errorType {
			return nil, ErrObserverMethodMustReturnVoid
		}
		md.IsStreaming = true
		observerParamType := mt.In(*observerIndex)
		elemType := spec.observerType
		if elemType == nil {
			var err error
			elemType, err = ObserverElementType(observerParamType)
			if err != nil {
				return nil, err
			}
		}
		md.ReturnType = elemType
	} else {
		switch mt.NumOut() {
		case 1:
			if mt.Out(0) != errorType {
				return nil, fmt.Errorf("method without an observer must return error as its only or last result")
			}
		case 2:
			if mt.Out(1) != errorType {
				return nil, fmt.Errorf("method's second return value must be error")
			}
			md.ReturnType = mt.Out(0)
		default:
			return nil, fmt.Errorf("method must return (T, error) or (error)")
		}
	}

	paramTypes := make([]reflect.Type, mt.NumIn())
	for i := 0; i < mt.NumIn(); i++ {
		paramTypes[i] = mt.In(i)
	}
	md.paramTypes = paramTypes
	md.ConfigKey = ConfigKey(ifaceType, method.Name, paramTypes[1:]) // omit the leading context.Context, as the original had no equivalent parameter

	return md, nil
}

func pathHasPlaceholder(path, name string) bool {
	for _, m := range placeholderPattern.FindAllStringSubmatch(path, -1) {
		if m[1] == name {
			return true
		}
	}
	return false
}
