package compiler

import (
	"errors"

	"github.com/chazu/basil/vm"
)

// CompileSource parses and compiles a complete program.
func CompileSource(source string, version int) (*vm.Program, error) {
	tree, syms, err := Parse(source, ParseOptions{Version: version})
	if err != nil {
		return nil, err
	}
	return Compile(tree, syms, CompileOptions{})
}

// Build runs the parse/compile pipeline for one request. It is a
// vm.CompileFunc and is what every compile service ends up calling.
func Build(req vm.CompileRequest) vm.CompileResponse {
	resp := vm.CompileResponse{ID: req.ID}

	syms := vm.SymbolTableFrom(req.NumberNames, req.StringNames, req.Names)
	tree, syms, err := Parse(req.Source, ParseOptions{
		Version:          req.Version,
		KnownLabels:      req.KnownLabels,
		KnownSubroutines: req.KnownSubroutines,
		Symbols:          syms,
	})
	if err != nil {
		resp.Err = asSyntaxError(err)
		return resp
	}

	opts := CompileOptions{
		InstructionBase:  req.InstructionBase,
		DataBase:         req.DataBase,
		Labels:           make(map[string]int, len(req.KnownLabels)),
		DataLabels:       make(map[string]int, len(req.KnownLabels)),
		KnownSubroutines: req.KnownSubroutines,
	}
	for i, name := range req.KnownLabels {
		if i < len(req.LabelTargets) {
			opts.Labels[name] = req.LabelTargets[i]
		}
		if i < len(req.DataTargets) {
			opts.DataLabels[name] = req.DataTargets[i]
		}
	}

	prog, err := Compile(tree, syms, opts)
	if err != nil {
		resp.Err = asSyntaxError(err)
		return resp
	}
	resp.Program = prog
	return resp
}

func asSyntaxError(err error) *SyntaxError {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se
	}
	return &SyntaxError{Msg: err.Error()}
}

// Service is a synchronous vm.CompileService backed by Build.
type Service struct{}

// Submit implements vm.CompileService.
func (Service) Submit(req vm.CompileRequest) vm.CompileTicket {
	return vm.ReadyTicket(Build(req))
}
