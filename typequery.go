package relay

import (
	"fmt"
	"reflect"
)

// ObserverElementType resolves the type argument T of an
// Observer[T]-shaped type by reflecting on its OnNext method — the
// Go-native replacement for the original runtime's TypeQuery, which
// walked a generic interface's supertype chain using
// java.lang.reflect.ParameterizedType. Go's reflect package already
// exposes the full, instantiated method set of a generic interface
// type such as Observer[Foo] declared in a method signature, so this
// needs only a single method lookup rather than a supertype walk:
// OnNext's sole parameter type is exactly the T Java's algorithm was
// trying to recover, and it is resolvable once, at parse time,
// exactly as the original's MethodMetadata.decodeInto() is.
//
// Returns an error if observerType has no OnNext method (it doesn't
// satisfy [Observer]), or if the resolved element type is the
// unbound wildcard interface{} — the Go analogue of Java's
// unsupported "unbound type parameter" case.
func ObserverElementType(observerType reflect.Type) (reflect.Type, error) {
	method, ok := observerType.MethodByName("OnNext")
	if !ok {
		return nil, fmt.Errorf("relay: %s has no OnNext method", observerType)
	}
	mt := method.Type
	if mt.NumIn() != 1 {
		return nil, fmt.Errorf("relay: %s.OnNext must take exactly one argument", observerType)
	}
	elem := mt.In(0)
	if isUnboundWildcard(elem) {
		return nil, fmt.Errorf("relay: cannot resolve observer element type: %s.OnNext(any) is unbound", observerType)
	}
	return elem, nil
}

// isUnboundWildcard reports whether t is the empty interface — Go's
// rough equivalent of a wildcard whose upper bound is Object, which
// the original TypeQuery.Default explicitly rejects.
func isUnboundWildcard(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}
