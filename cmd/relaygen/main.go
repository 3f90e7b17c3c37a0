// Command relaygen loads a Go package describing a relay interface
// and its MethodSpec table, checks that every interface method has a
// matching spec entry, and generates a concrete wrapper type whose
// methods call relay.Client.Invoke — the piece that lets a caller
// write ordinary Go method calls against a relay-backed client, since
// reflect cannot synthesize an arbitrary interface implementation at
// runtime.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Gen   GenCmd   `cmd:"" help:"Generate a typed wrapper for a relay interface."`
	Check CheckCmd `cmd:"" help:"Validate that every interface method has a matching MethodSpec entry, without generating files."`
}

type GenCmd struct {
	Package   string `arg:"" help:"Import path or directory of the package declaring the interface and its specs map."`
	Interface string `help:"Name of the interface type to generate a wrapper for." required:""`
	Specs     string `help:"Name of the map[string]*relay.MethodSpec package-level variable." required:""`
	Out       string `help:"Output file path." short:"o"`
}

func (c *GenCmd) Run() error {
	result, err := load(c.Package, c.Interface, c.Specs)
	if err != nil {
		return err
	}
	if err := checkSpecCoverage(result); err != nil {
		return err
	}
	out := c.Out
	if out == "" {
		out = defaultOutputPath(result)
	}
	src, err := generate(result)
	if err != nil {
		return err
	}
	return os.WriteFile(out, src, 0o644)
}

type CheckCmd struct {
	Package   string `arg:"" help:"Import path or directory of the package declaring the interface and its specs map."`
	Interface string `help:"Name of the interface type to check." required:""`
	Specs     string `help:"Name of the map[string]*relay.MethodSpec package-level variable." required:""`
}

func (c *CheckCmd) Run() error {
	result, err := load(c.Package, c.Interface, c.Specs)
	if err != nil {
		return err
	}
	if err := checkSpecCoverage(result); err != nil {
		return err
	}
	fmt.Printf("relaygen: %s: every method of %s has a %s entry\n", c.Package, c.Interface, c.Specs)
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("relaygen"),
		kong.Description("Generates typed wrappers for relay interfaces."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
