package relay

import (
	"fmt"
	"reflect"
)

// boundArguments is what the argument binder extracts from one call's
// arguments, ready for [RequestTemplate.Resolve] and encoding.
type boundArguments struct {
	variables      map[string]string
	nullVariables  map[string]bool
	formValues     map[string]string
	bodyValue      reflect.Value
	hasBody        bool
	observerArg    reflect.Value
	urlOverride    string
	hasURLOverride bool
}

// bindArguments walks md.IndexToName, md.BodyIndex, md.URLIndex, and
// md.ObserverIndex against one call's arguments, producing the
// template substitution variables and the raw values the codec
// interfaces need. This is the Go-native form of the original
// runtime's ArgumentBinder — a single-pass reflective scan rather than
// Java's annotation-driven apply() loop, since every role has already
// been resolved once by the Contract.
func bindArguments(md *MethodMetadata, args []reflect.Value) (*boundArguments, error) {
	if len(args) != md.numIn {
		return nil, fmt.Errorf("relay: %s: expected %d arguments, got %d", md.ConfigKey, md.numIn, len(args))
	}

	bound := &boundArguments{
		variables:     make(map[string]string),
		nullVariables: make(map[string]bool),
		formValues:    make(map[string]string),
	}

	formSet := make(map[string]bool, len(md.FormParams))
	for _, name := range md.FormParams {
		formSet[name] = true
	}

	for i, names := range md.IndexToName {
		value := toStringValue(args[i])
		isNull := isNullArgument(args[i])
		for _, name := range names {
			if formSet[name] {
				bound.formValues[name] = value
			} else {
				bound.variables[name] = value
				if isNull {
					bound.nullVariables[name] = true
				}
			}
		}
	}

	if md.BodyIndex != nil {
		bound.bodyValue = args[*md.BodyIndex]
		bound.hasBody = true
	}
	if md.URLIndex != nil {
		bound.urlOverride = toStringValue(args[*md.URLIndex])
		bound.hasURLOverride = true
	}
	if md.ObserverIndex != nil {
		bound.observerArg = args[*md.ObserverIndex]
	}

	return bound, nil
}

// isNullArgument reports whether v is a nil pointer or interface —
// the only Go shapes that stand in for the original runtime's null
// argument, since Go has no untyped null for value types.
func isNullArgument(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}

// toStringValue renders an argument for substitution into a path,
// query, or header placeholder.
func toStringValue(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprint(v.Interface())
	}
	return fmt.Sprint(v)
}
