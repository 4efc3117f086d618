package vm

import "sort"

// ParamKind is the declared type of a subroutine parameter.
type ParamKind uint8

const (
	ParamNumber ParamKind = iota
	ParamString
	ParamNumArray
	ParamStrArray
)

func (k ParamKind) String() string {
	switch k {
	case ParamNumber:
		return "number"
	case ParamString:
		return "string"
	case ParamNumArray:
		return "number()"
	case ParamStrArray:
		return "string()"
	}
	return "?"
}

// IsArray reports whether the parameter is passed by reference.
func (k ParamKind) IsArray() bool {
	return k == ParamNumArray || k == ParamStrArray
}

// Subroutine describes a compiled SUB.
type Subroutine struct {
	Name   string      `cbor:"name"`
	Params []ParamKind `cbor:"params"`
	Entry  int         `cbor:"entry"`
	Line   int         `cbor:"line"`
}

// ReturnsString reports whether the subroutine yields a string.
func (s *Subroutine) ReturnsString() bool { return IsStringName(s.Name) }

// Program is the output of the compiler. It is never mutated once
// published; runtime compilation produces a new Program via Merge.
type Program struct {
	Instructions      []Instruction          `cbor:"instructions"`
	Subroutines       map[string]*Subroutine `cbor:"subroutines"`
	InstructionLabels map[string]int         `cbor:"instructionLabels"`
	DataLabels        map[string]int         `cbor:"dataLabels"`
	Data              []Value                `cbor:"data"`
	Docs              []string               `cbor:"docs"`

	// Symbols carries the registries the unit was compiled against.
	NumberNames []string `cbor:"numberNames"`
	StringNames []string `cbor:"stringNames"`
	Names       []string `cbor:"names"`
	Version     int      `cbor:"version"`
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{
		Subroutines:       make(map[string]*Subroutine),
		InstructionLabels: make(map[string]int),
		DataLabels:        make(map[string]int),
	}
}

// Symbols rebuilds the symbol table the program was compiled against.
func (p *Program) Symbols() *SymbolTable {
	return SymbolTableFrom(p.NumberNames, p.StringNames, p.Names)
}

// SetSymbols records the registries of st on the program.
func (p *Program) SetSymbols(st *SymbolTable) {
	p.NumberNames = st.Numbers.All()
	p.StringNames = st.Strings.All()
	p.Names = st.Names.All()
}

// Labels returns all instruction label names, sorted.
func (p *Program) Labels() []string {
	out := make([]string, 0, len(p.InstructionLabels))
	for name := range p.InstructionLabels {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SubroutineNames returns all subroutine names, sorted.
func (p *Program) SubroutineNames() []string {
	out := make([]string, 0, len(p.Subroutines))
	for name := range p.Subroutines {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Merge returns a new program consisting of p followed by unit. unit must
// have been compiled with InstructionBase == len(p.Instructions) and
// DataBase == len(p.Data). Subroutines in unit replace those of the same
// name in p.
func (p *Program) Merge(unit *Program) *Program {
	out := &Program{
		Instructions:      make([]Instruction, 0, len(p.Instructions)+len(unit.Instructions)),
		Subroutines:       make(map[string]*Subroutine, len(p.Subroutines)+len(unit.Subroutines)),
		InstructionLabels: make(map[string]int, len(p.InstructionLabels)+len(unit.InstructionLabels)),
		DataLabels:        make(map[string]int, len(p.DataLabels)+len(unit.DataLabels)),
		Data:              make([]Value, 0, len(p.Data)+len(unit.Data)),
		Docs:              append(append([]string(nil), p.Docs...), unit.Docs...),
		NumberNames:       unit.NumberNames,
		StringNames:       unit.StringNames,
		Names:             unit.Names,
		Version:           p.Version,
	}
	out.Instructions = append(append(out.Instructions, p.Instructions...), unit.Instructions...)
	out.Data = append(append(out.Data, p.Data...), unit.Data...)
	for _, src := range []*Program{p, unit} {
		for k, v := range src.Subroutines {
			out.Subroutines[k] = v
		}
		for k, v := range src.InstructionLabels {
			out.InstructionLabels[k] = v
		}
		for k, v := range src.DataLabels {
			out.DataLabels[k] = v
		}
	}
	return out
}
