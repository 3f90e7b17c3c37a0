package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

// loadResult holds everything generate and checkSpecCoverage need out
// of one packages.Load call.
type loadResult struct {
	pkg           *packages.Package
	ifaceName     string
	iface         *types.Interface
	specsVarName  string
	specKeys      []string // method names with a MethodSpec entry, from the AST literal
	specsVarFound bool
}

// load loads pattern (an import path or directory, following `go`
// command semantics) and resolves ifaceName and specsVarName within
// it, the same packages.Load-based loading style as the teacher's
// internal/directive scanner and tygorgen's SourceProvider, repointed
// at relay contract validation instead of directive/type extraction.
func load(pattern, ifaceName, specsVarName string) (*loadResult, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
			packages.NeedSyntax | packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("relaygen: load %q: %w", pattern, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("relaygen: no package found matching %q", pattern)
	}
	if len(pkgs) > 1 {
		return nil, fmt.Errorf("relaygen: %q matched more than one package; specify a single package", pattern)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("relaygen: %s: %v", pkg.PkgPath, pkg.Errors[0])
	}

	obj := pkg.Types.Scope().Lookup(ifaceName)
	if obj == nil {
		return nil, fmt.Errorf("relaygen: %s: no such type %q", pkg.PkgPath, ifaceName)
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("relaygen: %s.%s is not a named type", pkg.PkgPath, ifaceName)
	}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return nil, fmt.Errorf("relaygen: %s.%s is not an interface", pkg.PkgPath, ifaceName)
	}

	result := &loadResult{
		pkg:          pkg,
		ifaceName:    ifaceName,
		iface:        iface,
		specsVarName: specsVarName,
	}
	result.specKeys, result.specsVarFound = findSpecKeys(pkg, specsVarName)
	return result, nil
}

// findSpecKeys walks pkg's syntax trees for a package-level
// `var specsVarName = map[string]*relay.MethodSpec{...}` declaration
// and returns the string keys of its composite literal.
func findSpecKeys(pkg *packages.Package, specsVarName string) (keys []string, found bool) {
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}
			for _, spec := range gen.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for i, name := range vs.Names {
					if name.Name != specsVarName || i >= len(vs.Values) {
						continue
					}
					lit, ok := vs.Values[i].(*ast.CompositeLit)
					if !ok {
						continue
					}
					found = true
					for _, elt := range lit.Elts {
						kv, ok := elt.(*ast.KeyValueExpr)
						if !ok {
							continue
						}
						if key, ok := literalStringKey(kv.Key); ok {
							keys = append(keys, key)
						}
					}
				}
			}
		}
	}
	return keys, found
}

func literalStringKey(expr ast.Expr) (string, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}

// checkSpecCoverage reports an error naming every method of the
// interface with no matching key in the specs literal — the
// build-time equivalent of the ContractError a Contract.Parse call
// would raise at runtime for the same gap, surfaced here before the
// program ever starts.
func checkSpecCoverage(r *loadResult) error {
	if !r.specsVarFound {
		return fmt.Errorf("relaygen: %s: no map literal found for var %s", r.pkg.PkgPath, r.specsVarName)
	}
	have := make(map[string]bool, len(r.specKeys))
	for _, k := range r.specKeys {
		have[k] = true
	}
	var missing []string
	for i := 0; i < r.iface.NumMethods(); i++ {
		name := r.iface.Method(i).Name()
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("relaygen: %s.%s: missing MethodSpec entries in %s for: %s",
			r.pkg.PkgPath, r.ifaceName, r.specsVarName, strings.Join(missing, ", "))
	}
	return nil
}

// defaultOutputPath derives the output directory from the package's
// first compiled file, since packages.Package carries no Dir field of
// its own.
func defaultOutputPath(r *loadResult) string {
	dir := "."
	if len(r.pkg.GoFiles) > 0 {
		dir = filepath.Dir(r.pkg.GoFiles[0])
	}
	return filepath.Join(dir, strings.ToLower(r.ifaceName)+"_relay.go")
}

type methodData struct {
	Name    string
	Params  []paramData
	Results []resultData
}

type paramData struct {
	Name string
	Type string
}

type resultData struct {
	Type string
}

var genTemplate = template.Must(template.New("relaygen").Parse(`// Code generated by relaygen. DO NOT EDIT.

package {{.Package}}

import (
	"context"

	"{{.RelayImportPath}}"
)

type {{.LowerName}}Client struct {
	c *relay.Client
}

// New{{.IfaceName}} returns a {{.IfaceName}} backed by c, whose
// methods were described in the {{.SpecsVarName}} table passed to
// relay.New when c was built.
func New{{.IfaceName}}(c *relay.Client) {{.IfaceName}} {
	return &{{.LowerName}}Client{c: c}
}
{{range .Methods}}
func (w *{{$.LowerName}}Client) {{.Name}}(ctx context.Context{{range .Params}}, {{.Name}} {{.Type}}{{end}}) ({{range $i, $r := .Results}}{{if $i}}, {{end}}{{$r.Type}}{{end}}) {
	out := w.c.Invoke(ctx, "{{.Name}}"{{range .Params}}, {{.Name}}{{end}})
{{range $i, $r := .Results}}	var r{{$i}} {{$r.Type}}
	if out[{{$i}}] != nil {
		r{{$i}}, _ = out[{{$i}}].({{$r.Type}})
	}
{{end}}	return {{range $i, $r := .Results}}{{if $i}}, {{end}}r{{$i}}{{end}}
}
{{end}}`))

// generate renders the wrapper struct and one method per interface
// method, each delegating to relay.Client.Invoke. Parameter and result
// types are printed with go/types.TypeString so generic and
// package-qualified types round-trip correctly; this generator
// assumes every referenced type already resolves in the target
// package's own import scope (true for any interface whose signature
// relaygen could type-check in the first place), so it does not
// attempt new import aliasing beyond the relay package itself.
func generate(r *loadResult) ([]byte, error) {
	qualifier := func(pkg *types.Package) string {
		if pkg.Path() == r.pkg.PkgPath {
			return ""
		}
		return pkg.Name()
	}

	methods := make([]methodData, 0, r.iface.NumMethods())
	for i := 0; i < r.iface.NumMethods(); i++ {
		fn := r.iface.Method(i)
		sig := fn.Type().(*types.Signature)
		params := sig.Params()

		md := methodData{Name: fn.Name()}
		for p := 1; p < params.Len(); p++ { // skip leading context.Context
			param := params.At(p)
			name := param.Name()
			if name == "" || name == "_" {
				name = fmt.Sprintf("arg%d", p)
			}
			md.Params = append(md.Params, paramData{
				Name: name,
				Type: types.TypeString(param.Type(), qualifier),
			})
		}
		results := sig.Results()
		for rI := 0; rI < results.Len(); rI++ {
			md.Results = append(md.Results, resultData{
				Type: types.TypeString(results.At(rI).Type(), qualifier),
			})
		}
		methods = append(methods, md)
	}

	data := struct {
		Package         string
		IfaceName       string
		LowerName       string
		SpecsVarName    string
		RelayImportPath string
		Methods         []methodData
	}{
		Package:         r.pkg.Name,
		IfaceName:       r.ifaceName,
		LowerName:       strings.ToLower(r.ifaceName[:1]) + r.ifaceName[1:],
		SpecsVarName:    r.specsVarName,
		RelayImportPath: "github.com/relayhttp/relay",
		Methods:         methods,
	}

	var buf bytes.Buffer
	if err := genTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("relaygen: render template: %w", err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.Bytes(), fmt.Errorf("relaygen: gofmt generated source: %w", err)
	}
	return formatted, nil
}
