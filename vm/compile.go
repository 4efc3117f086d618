package vm

import "fmt"

// ---------------------------------------------------------------------------
// Compile request/response boundary
// ---------------------------------------------------------------------------

// CompileRequest asks the parser/compiler pipeline to compile Source.
// For a runtime recompile the Base fields describe the running program so
// the new unit can be relocated and merged.
type CompileRequest struct {
	ID               string   `cbor:"id"`
	Version          int      `cbor:"version"`
	Source           string   `cbor:"source"`
	RuntimeRecompile bool     `cbor:"runtime"`
	InstructionBase  int      `cbor:"instructionBase"`
	DataBase         int      `cbor:"dataBase"`
	KnownLabels      []string `cbor:"labels"`
	LabelTargets     []int    `cbor:"labelTargets"`
	DataTargets      []int    `cbor:"dataTargets"`
	KnownSubroutines []string `cbor:"subroutines"`
	NumberNames      []string `cbor:"numberNames"`
	StringNames      []string `cbor:"stringNames"`
	Names            []string `cbor:"names"`
}

// SyntaxError is the wire form of a parse or compile failure.
type SyntaxError struct {
	Line   int    `cbor:"line"`
	Column int    `cbor:"column"`
	Near   string `cbor:"near"`
	Msg    string `cbor:"msg"`
}

func (e *SyntaxError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("line %d:%d: %s near %q", e.Line, e.Column, e.Msg, e.Near)
	}
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Msg)
}

// CompileResponse carries exactly one of Program or Err.
type CompileResponse struct {
	ID      string       `cbor:"id"`
	Program *Program     `cbor:"program,omitempty"`
	Err     *SyntaxError `cbor:"error,omitempty"`
}

// CompileTicket tracks one submitted request.
type CompileTicket interface {
	// Poll returns the response once it is available.
	Poll() (CompileResponse, bool)
}

// CompileService accepts compile requests. Implementations may answer
// synchronously or from another goroutine or process.
type CompileService interface {
	Submit(req CompileRequest) CompileTicket
}

// CompileFunc is a synchronous compile pipeline. It is injected so the
// vm package does not depend on the compiler package.
type CompileFunc func(req CompileRequest) CompileResponse

// ReadyTicket is a ticket whose response is already known.
type ReadyTicket CompileResponse

// Poll implements CompileTicket.
func (t ReadyTicket) Poll() (CompileResponse, bool) {
	return CompileResponse(t), true
}

// RecompileRequest builds a request that extends p with source.
func RecompileRequest(p *Program, source string) CompileRequest {
	req := CompileRequest{
		Version:          p.Version,
		Source:           source,
		RuntimeRecompile: true,
		InstructionBase:  len(p.Instructions),
		DataBase:         len(p.Data),
		KnownSubroutines: p.SubroutineNames(),
		NumberNames:      p.NumberNames,
		StringNames:      p.StringNames,
		Names:            p.Names,
	}
	for _, name := range p.Labels() {
		req.KnownLabels = append(req.KnownLabels, name)
		req.LabelTargets = append(req.LabelTargets, p.InstructionLabels[name])
		req.DataTargets = append(req.DataTargets, p.DataLabels[name])
	}
	return req
}
