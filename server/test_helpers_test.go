package server

import (
	"strings"
	"testing"
	"time"

	"github.com/chazu/basil/compiler"
	"github.com/chazu/basil/vm"
)

type testConsole struct {
	out strings.Builder
}

func (c *testConsole) Write(s string)           { c.out.WriteString(s) }
func (c *testConsole) ReadLine() (string, bool) { return "", false }
func (c *testConsole) Clear()                   {}

// waitTicket polls t until it completes or a second passes.
func waitTicket(t *testing.T, tk vm.CompileTicket) vm.CompileResponse {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if resp, ok := tk.Poll(); ok {
			return resp
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("ticket never completed")
	return vm.CompileResponse{}
}

// runWith compiles src locally and runs it with svc handling runtime
// compile statements.
func runWith(t *testing.T, svc vm.CompileService, src string) (string, *vm.VM) {
	t.Helper()
	prog, err := compiler.CompileSource(src, compiler.DefaultVersion)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	con := &testConsole{}
	v := vm.New(prog, vm.Host{Console: con, Compiler: svc}, vm.Options{})
	if err := v.RunToEnd(1_000_000); err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return con.out.String(), v
}

const lateSub = "compile \"sub late():print 42:end sub\"\nlate()"
