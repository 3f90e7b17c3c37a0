package relay

import (
	"reflect"
	"testing"
)

type configKeyAPI interface {
	Contributors(owner, repo string) ([]string, error)
}

func TestConfigKey_Format(t *testing.T) {
	ifaceType := reflectTypeOf[configKeyAPI]()
	paramTypes := []reflect.Type{
		reflect.TypeOf(""),
		reflect.TypeOf(""),
	}
	got := ConfigKey(ifaceType, "Contributors", paramTypes)
	want := "configKeyAPI#Contributors(string,string)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConfigKey_NoParams(t *testing.T) {
	ifaceType := reflectTypeOf[configKeyAPI]()
	got := ConfigKey(ifaceType, "Ping", nil)
	want := "configKeyAPI#Ping()"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConfigKey_SliceParam(t *testing.T) {
	ifaceType := reflectTypeOf[configKeyAPI]()
	got := ConfigKey(ifaceType, "Batch", []reflect.Type{reflect.TypeOf([]string{})})
	want := "configKeyAPI#Batch(string[])"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConfigKey_PointerParamUnwrapped(t *testing.T) {
	type thing struct{}
	ifaceType := reflectTypeOf[configKeyAPI]()
	got := ConfigKey(ifaceType, "Update", []reflect.Type{reflect.TypeOf(&thing{})})
	want := "configKeyAPI#Update(thing)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
