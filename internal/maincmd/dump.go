package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/turkce-yazilim-konati/karamel/lang/compiler"
)

// DumpBytecode parses, builds storage, compiles, and disassembles each
// file's bytecode.
func (c *Cmd) DumpBytecode(ctx context.Context, stdio mainer.Stdio, args []string) error {
	modules, err := loadModules()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	var firstErr error
	for _, path := range args {
		prog, err := compileFile(path, modules)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(stdio.Stdout, "-- %s --\n", path)
		fmt.Fprint(stdio.Stdout, compiler.Disassemble(prog.Code))
	}
	return firstErr
}
