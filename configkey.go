package relay

import (
	"reflect"
	"strings"
)

// ConfigKey formats an interface method into the exact
// "<SimpleInterfaceName>#<methodName>(<Params>)" form the original
// runtime's Feign.configKey produced, reproduced byte-for-byte so
// that operators used to reading the original's logs and metrics
// recognize this module's keys. Params is a comma-separated list of
// each parameter's simple type name, with no surrounding whitespace
// and no trailing comma.
func ConfigKey(ifaceType reflect.Type, methodName string, paramTypes []reflect.Type) string {
	var b strings.Builder
	b.WriteString(simpleName(ifaceType))
	b.WriteByte('#')
	b.WriteString(methodName)
	b.WriteByte('(')
	for i, pt := range paramTypes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(simpleName(pt))
	}
	b.WriteByte(')')
	return b.String()
}

// simpleName returns a type's unqualified name, unwrapping pointers
// and slices the way Java's Class.getSimpleName effectively does for
// the common cases this runtime binds parameters to.
func simpleName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return simpleName(t.Elem()) + "[]"
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
