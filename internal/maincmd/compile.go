package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Compile parses, builds storage, and compiles each file, printing its
// linked function table.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
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
		fmt.Fprintf(stdio.Stdout, "code: %d bytes\n", len(prog.Code))
		for _, fn := range prog.Functions {
			fmt.Fprintf(stdio.Stdout, "func %s offset=%d argc=%d storage=%d\n",
				fn.Name, fn.Offset, fn.ArgCount, fn.StorageIndex)
		}
	}
	return firstErr
}
