package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/basil/vm"
)

var log = commonlog.GetLogger("basil.server")

// compileJob is one request queued for the worker goroutine.
type compileJob struct {
	req  vm.CompileRequest
	done chan vm.CompileResponse
}

// CompileWorker runs the compile pipeline on a single goroutine. The VM
// submits requests and polls tickets between instructions, so a slow
// compile never blocks the scheduler.
type CompileWorker struct {
	build vm.CompileFunc
	jobs  chan compileJob
	quit  chan struct{}
}

// NewCompileWorker starts a worker around build.
func NewCompileWorker(build vm.CompileFunc) *CompileWorker {
	w := &CompileWorker{
		build: build,
		jobs:  make(chan compileJob, 64),
		quit:  make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *CompileWorker) loop() {
	for {
		select {
		case job := <-w.jobs:
			job.done <- w.execute(job.req)
		case <-w.quit:
			return
		}
	}
}

// execute runs one build, turning a panic into a compile error.
func (w *CompileWorker) execute(req vm.CompileRequest) (resp vm.CompileResponse) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("compile %s panicked: %v", req.ID, r)
			resp = vm.CompileResponse{ID: req.ID, Err: &vm.SyntaxError{Msg: fmt.Sprintf("internal compiler error: %v", r)}}
		}
	}()
	resp = w.build(req)
	resp.ID = req.ID
	log.Debugf("compile %s: %d bytes of source in %s", req.ID, len(req.Source), time.Since(start))
	return resp
}

// Submit implements vm.CompileService. Requests without an ID get one.
func (w *CompileWorker) Submit(req vm.CompileRequest) vm.CompileTicket {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	t := newTicket()
	select {
	case <-w.quit:
		t.done <- stoppedResponse(req.ID)
		return t
	default:
	}
	select {
	case w.jobs <- compileJob{req: req, done: t.done}:
	case <-w.quit:
		t.done <- stoppedResponse(req.ID)
	}
	return t
}

// Do compiles req and waits for the result or ctx.
func (w *CompileWorker) Do(ctx context.Context, req vm.CompileRequest) (vm.CompileResponse, error) {
	t := w.Submit(req).(*ticket)
	select {
	case resp := <-t.done:
		return resp, nil
	case <-ctx.Done():
		return vm.CompileResponse{}, ctx.Err()
	}
}

// Stop shuts down the worker goroutine. Pending tickets never complete.
func (w *CompileWorker) Stop() {
	close(w.quit)
}

func stoppedResponse(id string) vm.CompileResponse {
	return vm.CompileResponse{ID: id, Err: &vm.SyntaxError{Msg: "compile service stopped"}}
}

// ticket is a CompileTicket filled from another goroutine.
type ticket struct {
	done chan vm.CompileResponse
	resp vm.CompileResponse
	ok   bool
}

func newTicket() *ticket {
	return &ticket{done: make(chan vm.CompileResponse, 1)}
}

// Poll implements vm.CompileTicket.
func (t *ticket) Poll() (vm.CompileResponse, bool) {
	if t.ok {
		return t.resp, true
	}
	select {
	case t.resp = <-t.done:
		t.ok = true
		return t.resp, true
	default:
		return vm.CompileResponse{}, false
	}
}

// remoteCompile runs call on its own goroutine and reports transport
// failures as compile errors.
func remoteCompile(req vm.CompileRequest, timeout time.Duration, call func(context.Context, vm.CompileRequest) (vm.CompileResponse, error)) vm.CompileTicket {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	t := newTicket()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := call(ctx, req)
		if err != nil {
			log.Warningf("compile %s: %v", req.ID, err)
			resp = vm.CompileResponse{ID: req.ID, Err: &vm.SyntaxError{Msg: "compile service: " + err.Error()}}
		}
		t.done <- resp
	}()
	return t
}
