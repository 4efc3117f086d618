package vm

import (
	"math/rand"
	"strings"
	"time"

	"github.com/chazu/basil/numfmt"
)

// suspendPoll is how long RunToEnd sleeps while the VM is suspended.
const suspendPoll = time.Millisecond

func seconds(x float64) time.Duration {
	return time.Duration(x * float64(time.Second))
}

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

func (v *VM) print(x Value) {
	switch x.Kind {
	case KindString:
		v.host.Console.Write(v.host.Charset.ConsoleSafe(x.Str))
	case KindNumber, KindBoolean:
		v.host.Console.Write(numfmt.Default(x.Num))
	default:
		v.host.Console.Write(x.String())
	}
}

// printUsing pops a format string and the value pushed before it.
func (v *VM) printUsing() error {
	spec, err := v.popStr()
	if err != nil {
		return err
	}
	x, err := v.popNum()
	if err != nil {
		return err
	}
	s, err := numfmt.Format(x, spec)
	if err != nil {
		return v.raise(MsgFormatError, v.decode(spec))
	}
	v.host.Console.Write(s)
	return nil
}

// ---------------------------------------------------------------------------
// Input
// ---------------------------------------------------------------------------

// input yields the next field of the pending input line, reading a line
// first if none is buffered. Arg is 1 for a string target. Arg2 carries
// the Input* flags and Str the prompt of the first variable.
func (v *VM) input(in *Instruction) (stepResult, error) {
	if !v.haveFields {
		if in.Arg2&InputFirst != 0 && !v.prompted {
			v.host.Console.Write(v.host.Charset.ConsoleSafe(in.Str))
			v.prompted = true
		}
		line, ok := v.host.Console.ReadLine()
		if !ok {
			return stepSuspend, nil
		}
		line = v.encode(line)
		v.prompted = false
		v.haveFields = true
		if in.Arg2&InputLine != 0 {
			v.inputFields = []string{line}
		} else {
			v.inputFields = splitFields(line)
		}
	}

	field := ""
	if len(v.inputFields) > 0 {
		field = v.inputFields[0]
		v.inputFields = v.inputFields[1:]
	}
	if in.Arg2&InputLast != 0 {
		v.haveFields = false
		v.inputFields = nil
	}

	if in.Arg == 1 {
		v.push(Str(field))
	} else {
		v.push(Num(parseNumber(field)))
	}
	return stepNext, nil
}

// splitFields separates an input line at commas, trimming blanks.
func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.Trim(p, " \t")
	}
	return parts
}

// ---------------------------------------------------------------------------
// Character set boundary
// ---------------------------------------------------------------------------

// encode converts host text to the code page representation used for
// every VM string.
func (v *VM) encode(s string) string {
	return string(v.host.Charset.Encode(s))
}

// decode converts a VM string back to host text.
func (v *VM) decode(s string) string {
	return v.host.Charset.Decode([]byte(s))
}

// localize returns a copy of p whose string literals, input prompts and
// DATA strings are encoded. p itself is left alone so one compiled
// program can back several VMs.
func (v *VM) localize(p *Program) *Program {
	out := *p
	out.Instructions = make([]Instruction, len(p.Instructions))
	for i, in := range p.Instructions {
		if (in.Op == OpPushStr || in.Op == OpInput) && in.Str != "" {
			in.Str = v.encode(in.Str)
		}
		out.Instructions[i] = in
	}
	out.Data = make([]Value, len(p.Data))
	for i, x := range p.Data {
		if x.Kind == KindString {
			x = Str(v.encode(x.Str))
		}
		out.Data[i] = x
	}
	return &out
}

// ---------------------------------------------------------------------------
// DATA / READ
// ---------------------------------------------------------------------------

func (v *VM) read(wantString bool) error {
	if v.dataPtr >= len(v.prog.Data) {
		return v.raise(MsgOutOfData)
	}
	x := v.prog.Data[v.dataPtr]
	if (x.Kind == KindString) != wantString {
		return v.raise(MsgReadTypeMismatch, x.Kind.String())
	}
	v.dataPtr++
	v.push(x)
	return nil
}

// ---------------------------------------------------------------------------
// Timing and randomness
// ---------------------------------------------------------------------------

// wait suspends until the number of seconds on top of the stack has
// elapsed. The operand stays on the stack while waiting.
func (v *VM) wait() (stepResult, error) {
	now := v.host.Clock.Now()
	if !v.waiting {
		x := v.stack[len(v.stack)-1]
		if !x.Numeric() {
			v.pop()
			return stepNext, v.raise(MsgTypeMismatch, "number", x.Kind.String())
		}
		v.waiting = true
		v.waitUntil = now.Add(seconds(x.Num))
		return stepSuspend, nil
	}
	if now.Before(v.waitUntil) {
		return stepSuspend, nil
	}
	v.waiting = false
	v.pop()
	return stepNext, nil
}

func (v *VM) randomize(seeded bool) error {
	seed := v.host.Clock.Now().UnixNano()
	if seeded {
		x, err := v.popNum()
		if err != nil {
			return err
		}
		seed = int64(x)
	}
	v.rng = rand.New(rand.NewSource(seed))
	return nil
}

// ---------------------------------------------------------------------------
// Runtime compilation
// ---------------------------------------------------------------------------

// compile extends the running program with the source on top of the
// stack. The first dispatch submits the request and suspends; later
// dispatches poll until the response is in, then install the merged
// program in one assignment. Frames, variables and arrays are kept.
func (v *VM) compile() (stepResult, error) {
	if v.pending == nil {
		src := v.stack[len(v.stack)-1]
		if src.Kind != KindString {
			v.pop()
			return stepNext, v.raise(MsgTypeMismatch, "string", src.Kind.String())
		}
		if v.host.Compiler == nil {
			v.pop()
			return stepNext, v.raise(MsgCompileFailed, "no compiler available")
		}
		v.pending = v.host.Compiler.Submit(RecompileRequest(v.prog, v.decode(src.Str)))
		return stepSuspend, nil
	}

	resp, ok := v.pending.Poll()
	if !ok {
		return stepSuspend, nil
	}
	v.pending = nil
	v.pop()
	if resp.Err != nil {
		return stepNext, v.raise(MsgCompileFailed, resp.Err.Error())
	}
	if resp.Program == nil {
		return stepNext, v.raise(MsgCompileFailed, "empty response")
	}
	v.prog = v.prog.Merge(v.localize(resp.Program))
	return stepNext, nil
}
