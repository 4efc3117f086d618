package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chazu/basil/compiler"
	"github.com/chazu/basil/vm"
)

func startConnect(t *testing.T) *ConnectCompiler {
	t.Helper()
	svc := New(compiler.Build)
	ts := httptest.NewServer(svc.Handler())
	t.Cleanup(func() {
		ts.Close()
		svc.Stop()
	})
	return NewConnectCompiler(ts.Client(), ts.URL, time.Second)
}

func TestConnectCompile(t *testing.T) {
	c := startConnect(t)

	resp, err := c.Compile(context.Background(), vm.CompileRequest{Version: 2, Source: "a = 1: print a"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID == "" {
		t.Error("service did not assign a request id")
	}
	if resp.Err != nil || resp.Program == nil {
		t.Errorf("resp = %+v", resp)
	}
}

func TestConnectCompilerServesVM(t *testing.T) {
	c := startConnect(t)

	out, v := runWith(t, c, "x = 3\ncompile \"sub show():print x * 2:end sub\"\nshow()")
	if out != "6\n" {
		t.Errorf("output = %q, want 6", out)
	}
	if v.State() != vm.StateComplete {
		t.Errorf("state = %s", v.State())
	}
}

func TestConnectCompilerReportsSyntaxError(t *testing.T) {
	c := startConnect(t)

	_, v := runWith(t, c, "compile \"print (\"\nprint 1")
	diags := v.Diagnostics()
	if len(diags) == 0 || diags[0].Key != vm.MsgCompileFailed {
		t.Errorf("diagnostics = %+v, want CompileFailed", diags)
	}
}
