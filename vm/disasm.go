package vm

import (
	"fmt"
	"sort"
	"strings"
)

// Disassemble returns a human-readable listing of the program.
func (p *Program) Disassemble() string {
	return p.DisassembleWithName("")
}

// DisassembleWithName returns a listing with a name header.
func (p *Program) DisassembleWithName(name string) string {
	var sb strings.Builder

	// Header
	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; basil program, language version %d\n", p.Version))
	sb.WriteString(fmt.Sprintf("; %d instructions, %d data items\n\n", len(p.Instructions), len(p.Data)))

	// Subroutines
	if len(p.Subroutines) > 0 {
		sb.WriteString("; Subroutines:\n")
		for _, name := range p.SubroutineNames() {
			sub := p.Subroutines[name]
			params := make([]string, len(sub.Params))
			for i, k := range sub.Params {
				params[i] = k.String()
			}
			sb.WriteString(fmt.Sprintf(";   %-16s @%04d (%s)\n", name, sub.Entry, strings.Join(params, ", ")))
		}
		sb.WriteString("\n")
	}

	// Labels, by target
	labelsAt := make(map[int][]string)
	for name, at := range p.InstructionLabels {
		labelsAt[at] = append(labelsAt[at], name)
	}
	for _, names := range labelsAt {
		sort.Strings(names)
	}

	// Data
	if len(p.Data) > 0 {
		sb.WriteString("; Data:\n")
		for i, d := range p.Data {
			sb.WriteString(fmt.Sprintf(";   [%3d] %s\n", i, d))
		}
		sb.WriteString("\n")
	}

	// Code section
	sb.WriteString("; Code:\n")
	for i, in := range p.Instructions {
		for _, l := range labelsAt[i] {
			sb.WriteString(fmt.Sprintf("%s:\n", l))
		}
		marker := " "
		if in.Stmt {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%04d %s %-36s ; line %d\n", i, marker, disassembleInstruction(in), in.Line))
	}

	return sb.String()
}

// disassembleInstruction formats one instruction with its operands and
// jump targets.
func disassembleInstruction(in Instruction) string {
	info := in.Op.Info()
	switch in.Op {
	case OpDeclare:
		scope := "global"
		switch in.Arg2 {
		case ScopeLocal:
			scope = "local"
		case ScopeStatic:
			scope = "static"
		}
		return fmt.Sprintf("%s %s #%d %s", info.Name, in.Str, in.Arg, scope)
	case OpJump, OpGosub:
		if in.Str != "" {
			return fmt.Sprintf("%s ->%04d ; %s", info.Name, in.Arg, in.Str)
		}
		return fmt.Sprintf("%s ->%04d", info.Name, in.Arg)
	case OpJumpIfFalse, OpJumpIfTrue:
		return fmt.Sprintf("%s ->%04d", info.Name, in.Arg)
	case OpForCheck, OpForNext:
		return fmt.Sprintf("%s %s ->%04d", info.Name, in.Str, in.Arg2)
	case OpOnGoto, OpOnGosub:
		targets := make([]string, len(in.Targets))
		for i, t := range in.Targets {
			targets[i] = fmt.Sprintf("%04d", t)
		}
		return fmt.Sprintf("%s ->[%s]", info.Name, strings.Join(targets, " "))
	case OpBuiltin:
		return fmt.Sprintf("%s %s/%d", info.Name, Builtin(in.Arg), in.Arg2)
	case OpRestore:
		if in.Str == "" {
			return info.Name
		}
		return fmt.Sprintf("%s %s ; data %d", info.Name, in.Str, in.Arg)
	}
	return in.String()
}
