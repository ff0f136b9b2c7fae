package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/turkce-yazilim-konati/karamel/lang/ast"
)

// Parse parses each token-fixture file in args and prints its AST dump.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		root, err := parseFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(stdio.Stdout, "-- %s --\n", path)
		fmt.Fprint(stdio.Stdout, ast.Dump(root))
	}
	return firstErr
}
