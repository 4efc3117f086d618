package session

import (
	"fmt"

	"github.com/chazu/basil/compiler"
	"github.com/chazu/basil/manifest"
	"github.com/chazu/basil/server"
	"github.com/chazu/basil/vm"
)

// DirectCompiler compiles on the calling goroutine. Its tickets are always
// ready, so a runtime compile never suspends.
type DirectCompiler struct{}

// Submit implements vm.CompileService.
func (DirectCompiler) Submit(req vm.CompileRequest) vm.CompileTicket {
	resp := compiler.Build(req)
	if resp.Err != nil {
		log.Debugf("runtime compile failed: %s", resp.Err)
	}
	return vm.ReadyTicket(resp)
}

// NewCompileService builds the service named by the manifest's [compiler]
// section. The returned func releases it.
func NewCompileService(m *manifest.Manifest) (vm.CompileService, func(), error) {
	switch m.Compiler.Mode {
	case manifest.CompilerDirect:
		return DirectCompiler{}, func() {}, nil
	case manifest.CompilerWorker:
		w := server.NewCompileWorker(compiler.Build)
		return w, w.Stop, nil
	case manifest.CompilerGRPC:
		c, err := server.DialGRPC(m.Compiler.Addr, m.CompileTimeout())
		if err != nil {
			return nil, nil, fmt.Errorf("dial compile service %s: %w", m.Compiler.Addr, err)
		}
		return c, func() { c.Close() }, nil
	case manifest.CompilerConnect:
		return server.NewConnectCompiler(nil, m.Compiler.Addr, m.CompileTimeout()), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown compiler mode %q", m.Compiler.Mode)
}
