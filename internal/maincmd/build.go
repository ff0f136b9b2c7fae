package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Build parses each file and runs the storage builder, printing every
// storage frame's constant/variable slot counts (the "resolve" stage
// equivalent for this pipeline — named Build since what it resolves is
// memory layout, not symbol scoping).
func (c *Cmd) Build(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		_, b, err := buildStorage(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(stdio.Stdout, "-- %s --\n", path)
		for i, st := range b.Storages {
			fmt.Fprintf(stdio.Stdout, "storage %d: parent=%d constants=%d variables=%d temps=%d\n",
				i, st.Parent, st.ConstantSize(), st.VariableSize(), st.TempSize)
		}
	}
	return firstErr
}
