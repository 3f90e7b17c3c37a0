package main

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

func TestLiteralStringKey_AcceptsQuotedStringLiteral(t *testing.T) {
	lit := &ast.BasicLit{Kind: token.STRING, Value: `"Contributors"`}
	key, ok := literalStringKey(lit)
	if !ok || key != "Contributors" {
		t.Errorf("got (%q, %v), want (\"Contributors\", true)", key, ok)
	}
}

func TestLiteralStringKey_RejectsNonStringLiteral(t *testing.T) {
	lit := &ast.BasicLit{Kind: token.INT, Value: "42"}
	if _, ok := literalStringKey(lit); ok {
		t.Error("expected a non-string literal to be rejected")
	}
}

func TestLiteralStringKey_RejectsNonLiteralExpression(t *testing.T) {
	ident := &ast.Ident{Name: "someVar"}
	if _, ok := literalStringKey(ident); ok {
		t.Error("expected a non-literal expression to be rejected")
	}
}

// newTestInterface builds a minimal go/types.Interface with the given
// method names, each with an empty func() signature — enough for
// checkSpecCoverage, which only inspects method names.
func newTestInterface(methodNames ...string) *types.Interface {
	var methods []*types.Func
	for _, name := range methodNames {
		sig := types.NewSignatureType(nil, nil, nil, nil, nil, false)
		methods = append(methods, types.NewFunc(token.NoPos, nil, name, sig))
	}
	return types.NewInterfaceType(methods, nil).Complete()
}

func TestCheckSpecCoverage_ReportsMissingMethods(t *testing.T) {
	r := &loadResult{
		pkg:           &packages.Package{PkgPath: "example.com/api"},
		ifaceName:     "API",
		iface:         newTestInterface("Get", "Create"),
		specsVarName:  "apiSpecs",
		specKeys:      []string{"Get"},
		specsVarFound: true,
	}
	err := checkSpecCoverage(r)
	if err == nil {
		t.Fatal("expected an error for the missing Create spec")
	}
	if !strings.Contains(err.Error(), "Create") {
		t.Errorf("expected the error to name the missing method, got %v", err)
	}
}

func TestCheckSpecCoverage_PassesWhenEveryMethodHasASpec(t *testing.T) {
	r := &loadResult{
		pkg:           &packages.Package{PkgPath: "example.com/api"},
		ifaceName:     "API",
		iface:         newTestInterface("Get", "Create"),
		specsVarName:  "apiSpecs",
		specKeys:      []string{"Get", "Create"},
		specsVarFound: true,
	}
	if err := checkSpecCoverage(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckSpecCoverage_FailsWhenSpecsVarNotFound(t *testing.T) {
	r := &loadResult{
		pkg:           &packages.Package{PkgPath: "example.com/api"},
		ifaceName:     "API",
		iface:         newTestInterface("Get"),
		specsVarName:  "apiSpecs",
		specsVarFound: false,
	}
	if err := checkSpecCoverage(r); err == nil {
		t.Fatal("expected an error when the specs map literal itself was never found")
	}
}

func TestDefaultOutputPath_DerivesFromPackageDir(t *testing.T) {
	r := &loadResult{
		pkg:       &packages.Package{GoFiles: []string{"/src/example/api.go"}},
		ifaceName: "API",
	}
	got := defaultOutputPath(r)
	want := "/src/example/api_relay.go"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDefaultOutputPath_FallsBackToCurrentDirWhenNoFiles(t *testing.T) {
	r := &loadResult{pkg: &packages.Package{}, ifaceName: "API"}
	got := defaultOutputPath(r)
	if got != "api_relay.go" {
		t.Errorf("got %q, want %q", got, "api_relay.go")
	}
}
