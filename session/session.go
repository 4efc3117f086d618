// Package session wires a compiled program, its host collaborators and the
// frame scheduler into one run.
package session

import (
	"context"
	"fmt"

	"github.com/chazu/basil/catalog"
	"github.com/chazu/basil/charset"
	"github.com/chazu/basil/compiler"
	"github.com/chazu/basil/manifest"
	"github.com/chazu/basil/vm"
)

// Session runs programs against one set of host collaborators.
type Session struct {
	Version          int
	Config           Config
	VMOptions        vm.Options
	MaxMessageLength int
	Host             vm.Host

	// Report receives rendered diagnostics after each frame that produced
	// any, and the closing status line.
	Report func(Report)
}

// Report is one block of text for the user.
type Report struct {
	Text   string
	Status bool        // the closing status line
	Worst  vm.Severity // most severe diagnostic in Text
}

// FromManifest configures a session from a loaded manifest.
func FromManifest(m *manifest.Manifest, host vm.Host) *Session {
	return &Session{
		Version: m.Language.Version,
		Config:  ConfigFromManifest(m),
		VMOptions: vm.Options{
			MaxErrors: m.Diagnostics.MaxErrors,
			Seed:      m.Random.Seed,
		},
		MaxMessageLength: m.Diagnostics.MaxMessageLength,
		Host:             host,
	}
}

// Result summarizes a finished run.
type Result struct {
	State        vm.State
	Diagnostics  []vm.Diagnostic
	Frames       int
	Instructions int
	VM           *vm.VM
}

// StatusKey returns the catalog key of the closing status line.
func (r *Result) StatusKey() string {
	switch r.State {
	case vm.StateAbort:
		return vm.MsgProgramAbort
	case vm.StateError:
		return vm.MsgProgramFailed
	}
	for _, d := range r.Diagnostics {
		if d.Severity == vm.SeverityFatal {
			return vm.MsgProgramFailed
		}
	}
	return vm.MsgProgramDone
}

// Compile parses and compiles source at the session's language version.
func (s *Session) Compile(source string) (*vm.Program, error) {
	prog, err := compiler.CompileSource(source, s.Version)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return prog, nil
}

// RunSource compiles and runs source. A syntax error is returned without
// running anything.
func (s *Session) RunSource(ctx context.Context, source string) (*Result, error) {
	prog, err := s.Compile(source)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, prog)
}

// Run executes prog until it halts or ctx is cancelled.
func (s *Session) Run(ctx context.Context, prog *vm.Program) (*Result, error) {
	host := s.host()
	v := vm.New(prog, host, s.VMOptions)
	sched := NewScheduler(v, s.Config, nil)

	res := &Result{VM: v}
	var last *vm.Diagnostic
	sched.OnFrame = func(FrameStats) { last = s.flush(v, host.Catalog, res, last) }
	err := sched.Run(ctx)
	s.flush(v, host.Catalog, res, last)

	res.State = v.State()
	res.Frames = sched.Frames()
	res.Instructions = sched.Instructions()
	s.report(Report{Text: host.Catalog.Get(res.StatusKey()) + "\n", Status: true})
	return res, err
}

func (s *Session) host() vm.Host {
	h := s.Host
	if h.Catalog == nil {
		h.Catalog = catalog.English
	}
	if h.Charset == nil {
		h.Charset = charset.Latin1
	}
	if h.Compiler == nil {
		h.Compiler = DirectCompiler{}
	}
	if h.Clock == nil {
		h.Clock = vm.SystemClock
	}
	return h
}

// flush renders the diagnostics queued since the previous frame. A batch
// that opens on the line of the last rendered diagnostic, at the same or a
// lower severity, continues that entry and is not repeated. It returns the
// last rendered diagnostic.
func (s *Session) flush(v *vm.VM, cat vm.Catalog, res *Result, last *vm.Diagnostic) *vm.Diagnostic {
	diags := v.TakeDiagnostics()
	res.Diagnostics = append(res.Diagnostics, diags...)
	for last != nil && len(diags) > 0 && diags[0].Line == last.Line && diags[0].Severity <= last.Severity {
		diags = diags[1:]
	}
	if len(diags) == 0 {
		return last
	}
	r := Report{Text: vm.RenderDiagnostics(cat, diags, s.MaxMessageLength)}
	for _, d := range diags {
		if d.Severity > r.Worst {
			r.Worst = d.Severity
		}
	}
	s.report(r)
	return &diags[len(diags)-1]
}

func (s *Session) report(r Report) {
	if s.Report != nil {
		s.Report(r)
	}
}
