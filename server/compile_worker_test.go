package server

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chazu/basil/compiler"
	"github.com/chazu/basil/vm"
)

func TestCompileWorkerSubmit(t *testing.T) {
	w := NewCompileWorker(compiler.Build)
	defer w.Stop()

	resp := waitTicket(t, w.Submit(vm.CompileRequest{Version: 2, Source: "print 1"}))
	if resp.ID == "" {
		t.Error("worker did not assign a request id")
	}
	if resp.Err != nil || resp.Program == nil {
		t.Fatalf("resp = %+v", resp)
	}

	resp = waitTicket(t, w.Submit(vm.CompileRequest{ID: "mine", Version: 2, Source: "print ("}))
	if resp.ID != "mine" {
		t.Errorf("id = %q, want mine", resp.ID)
	}
	if resp.Err == nil {
		t.Error("expected a syntax error")
	}
}

func TestCompileWorkerRecoversPanic(t *testing.T) {
	w := NewCompileWorker(func(vm.CompileRequest) vm.CompileResponse { panic("boom") })
	defer w.Stop()

	resp, err := w.Do(context.Background(), vm.CompileRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Err == nil || !strings.Contains(resp.Err.Msg, "boom") {
		t.Errorf("err = %v, want internal compiler error", resp.Err)
	}
}

func TestCompileWorkerStopped(t *testing.T) {
	w := NewCompileWorker(compiler.Build)
	w.Stop()

	resp, ok := w.Submit(vm.CompileRequest{Source: "print 1"}).Poll()
	if !ok {
		t.Fatal("ticket of a stopped worker should complete at once")
	}
	if resp.Err == nil || !strings.Contains(resp.Err.Msg, "stopped") {
		t.Errorf("err = %v, want stopped", resp.Err)
	}
}

func TestCompileWorkerDoHonorsContext(t *testing.T) {
	release := make(chan struct{})
	w := NewCompileWorker(func(req vm.CompileRequest) vm.CompileResponse {
		<-release
		return vm.CompileResponse{}
	})
	defer w.Stop()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Do(ctx, vm.CompileRequest{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCompileWorkerServesVM(t *testing.T) {
	w := NewCompileWorker(compiler.Build)
	defer w.Stop()

	out, v := runWith(t, w, lateSub)
	if out != "42\n" {
		t.Errorf("output = %q, want 42", out)
	}
	if v.State() != vm.StateComplete {
		t.Errorf("state = %s", v.State())
	}
}
