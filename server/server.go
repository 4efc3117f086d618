package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/chazu/basil/vm"
)

// CompileService serves the compile pipeline to remote VMs. Requests from
// every transport funnel through one CompileWorker.
type CompileService struct {
	worker *CompileWorker
	mux    *http.ServeMux
}

// New creates a CompileService around build.
func New(build vm.CompileFunc) *CompileService {
	s := &CompileService{
		worker: NewCompileWorker(build),
		mux:    http.NewServeMux(),
	}
	path, handler := NewConnectHandler(s)
	s.mux.Handle(path, handler)
	return s
}

// Compile implements CompileServer.
func (s *CompileService) Compile(ctx context.Context, req *vm.CompileRequest) (*vm.CompileResponse, error) {
	r := *req
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	log.Infof("compile request %s (runtime=%v, %d bytes)", r.ID, r.RuntimeRecompile, len(r.Source))
	resp, err := s.worker.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Handler returns the HTTP handler serving the Connect transport.
func (s *CompileService) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves the Connect transport on addr.
func (s *CompileService) ListenAndServe(addr string) error {
	log.Infof("Connect compile service listening on http://%s%s", addr, CompileProcedure)
	return http.ListenAndServe(addr, s.mux)
}

// Worker exposes the underlying worker so an in-process VM can share it.
func (s *CompileService) Worker() *CompileWorker {
	return s.worker
}

// Stop shuts down the worker.
func (s *CompileService) Stop() {
	s.worker.Stop()
}
