package maincmd_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/turkce-yazilim-konati/karamel/internal/filetest"
	"github.com/turkce-yazilim-konati/karamel/internal/maincmd"
)

// runCmd runs one of Cmd's subcommand methods against a single testdata/in
// file and diffs its stdout/stderr against the golden files recorded under
// testdata/out, named <file>.<label>.want / .err.
func runCmd(t *testing.T, label string, fn func(context.Context, mainer.Stdio, []string) error) {
	t.Helper()

	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")
	for _, fi := range filetest.SourceFiles(t, srcDir, ".tok") {
		t.Run(fi.Name(), func(t *testing.T) {
			var out, errOut bytes.Buffer
			stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}

			// error is ignored here; a failing file is expected to surface
			// through the stderr golden file instead.
			_ = fn(context.Background(), stdio, []string{filepath.Join(srcDir, fi.Name())})

			filetest.DiffCustom(t, fi, "output", "."+label+".want", out.String(), resultDir, boolPtr(false))
			filetest.DiffCustom(t, fi, "errors", "."+label+".err", errOut.String(), resultDir, boolPtr(false))
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func TestParseCommand(t *testing.T) {
	c := &maincmd.Cmd{}
	runCmd(t, "parse", c.Parse)
}

func TestBuildCommand(t *testing.T) {
	c := &maincmd.Cmd{}
	runCmd(t, "build", c.Build)
}

func TestCompileCommand(t *testing.T) {
	c := &maincmd.Cmd{}
	runCmd(t, "compile", c.Compile)
}

func TestDumpBytecodeCommand(t *testing.T) {
	c := &maincmd.Cmd{}
	runCmd(t, "dump", c.DumpBytecode)
}

func TestCommandNameDispatch(t *testing.T) {
	c := &maincmd.Cmd{}
	c.SetArgs([]string{"dump-bytecode", "testdata/in/basic.tok"})
	if err := c.Validate(); err != nil {
		t.Fatalf("dump-bytecode should resolve to a known command: %v", err)
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	c := &maincmd.Cmd{}
	c.SetArgs([]string{"not-a-real-command", "testdata/in/basic.tok"})
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for an unrecognized command name")
	}
}

func TestValidateRequiresAtLeastOneFile(t *testing.T) {
	c := &maincmd.Cmd{}
	c.SetArgs([]string{"parse"})
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error when no file is given")
	}
}
