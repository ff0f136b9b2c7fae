// Package maincmd implements the reflection-dispatched subcommand table
// cmd/karamel's main() delegates to, grounded on the teacher's
// internal/maincmd/maincmd.go. Unlike the teacher's nenuphar binary (which
// drives a full scanner+parser+resolver pipeline), this binary's commands
// stop where spec.md's hard core stops: parse, build (storage), compile,
// and dump-bytecode. Source input is read as the line-oriented token
// fixture notation (see lang/token.ParseFixture), standing in for the
// (out-of-scope, external) character tokenizer.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"
)

const binName = "karamel"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

Parser, storage-builder and compiler front-end for the %[1]s programming
language. Input files are read as the token-fixture notation (see
lang/token.ParseFixture), not raw source, since the character tokenizer is
an external collaborator this module doesn't implement.

The <command> can be one of:
       parse                     Parse token-fixture files and print the
                                  resulting AST.
       build                     Parse and run the storage builder, then
                                  print each function's constant/variable
                                  slot layout.
       compile                   Parse, build storage, and compile,
                                  printing the compiled function table.
       dump-bytecode              Parse, build storage, compile, and
                                  disassemble the resulting bytecode.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

// EnvConfig holds the debug/override knobs read from KARAMEL_*
// environment variables via github.com/caarlos0/env/v6 — a teacher
// dependency pulled in only transitively upstream; here it's decoded
// directly.
type EnvConfig struct {
	TraceStorage bool `env:"KARAMEL_TRACE_STORAGE" envDefault:"false"`
	TraceCompile bool `env:"KARAMEL_TRACE_COMPILE" envDefault:"false"`
}

// LoadEnvConfig decodes EnvConfig from the process environment.
func LoadEnvConfig() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	env EnvConfig

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}
	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	envCfg, err := LoadEnvConfig()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment: %s\n", err)
		return mainer.InvalidArgs
	}
	c.env = envCfg

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds mirrors the teacher's reflection dispatch: any exported method
// on v matching func(context.Context, mainer.Stdio, []string) error becomes
// a subcommand named after the method, lowercased, with dashes restored
// from Go's CamelCase (DumpBytecode -> dump-bytecode).
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[commandName(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}

// commandName converts a CamelCase method name (DumpBytecode) to its
// dash-separated subcommand name (dump-bytecode).
func commandName(method string) string {
	var b strings.Builder
	for i, r := range method {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
