package vm

import (
	"math/rand"
	"time"
)

// ---------------------------------------------------------------------------
// VM: The basil virtual machine
// ---------------------------------------------------------------------------

// State is the run state of a VM.
type State uint8

const (
	StateRunning State = iota
	StateComplete
	StateError
	StateAbort
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	case StateAbort:
		return "aborted"
	}
	return "?"
}

// Options tunes resource limits of a VM.
type Options struct {
	MaxCallDepth int   // frames + gosubs before a fatal StackOverflow
	MaxErrors    int   // recoverable errors before escalating to fatal
	Seed         int64 // seed for ran() and randomize without argument
}

// DefaultOptions returns the limits used when a field is zero.
func DefaultOptions() Options {
	return Options{MaxCallDepth: 10000, MaxErrors: 20, Seed: 1}
}

type callKind uint8

const (
	callGosub callKind = iota
	callSub
)

// callEntry is one call stack entry.
type callEntry struct {
	kind     callKind
	ret      int
	stmtBase int
	depth    int // operand stack depth to restore on return
}

// VM owns the runtime state of one program: operand stack, call stack,
// frames, data pointer and the collaborators it talks to. All state lives
// here; nothing is package-global.
type VM struct {
	host Host
	opts Options

	prog  *Program
	pc    int
	line  int
	state State

	stack    []Value
	stmtBase int
	calls    []callEntry
	frames   []*StackFrame

	diagnostics []Diagnostic
	errorCount  int

	dataPtr int

	// Suspension state for instructions that re-dispatch
	inputFields []string
	haveFields  bool
	prompted    bool
	waiting     bool
	waitUntil   time.Time
	keyWaiting  bool
	keyDeadline time.Time
	pending     CompileTicket

	// Graphics state
	windowOpen bool
	pen        Color
	palette    [256]Color

	rng *rand.Rand
}

// New creates a VM for prog. Missing collaborators get inert defaults;
// Catalog and Charset fall back to pass-through implementations.
func New(prog *Program, host Host, opts Options) *VM {
	def := DefaultOptions()
	if opts.MaxCallDepth == 0 {
		opts.MaxCallDepth = def.MaxCallDepth
	}
	if opts.MaxErrors == 0 {
		opts.MaxErrors = def.MaxErrors
	}
	if opts.Seed == 0 {
		opts.Seed = def.Seed
	}
	if host.Console == nil {
		host.Console = nullConsole{}
	}
	if host.Display == nil {
		host.Display = nullDisplay{}
	}
	if host.Input == nil {
		host.Input = nullInput{}
	}
	if host.Charset == nil {
		host.Charset = plainCharset{}
	}
	if host.Catalog == nil {
		host.Catalog = keyCatalog{}
	}
	if host.Clock == nil {
		host.Clock = SystemClock
	}

	v := &VM{
		host:  host,
		opts:  opts,
		stack: make([]Value, 0, 256),
		pen:   Color{255, 255, 255},
		rng:   rand.New(rand.NewSource(opts.Seed)),
	}
	v.prog = v.localize(prog)
	v.frames = []*StackFrame{newFrame("", len(prog.NumberNames), len(prog.StringNames))}
	for i := range v.palette {
		v.palette[i] = defaultPalette(i)
	}
	return v
}

// Program returns the currently installed program.
func (v *VM) Program() *Program { return v.prog }

// State returns the run state.
func (v *VM) State() State { return v.state }

// PC returns the index of the next instruction.
func (v *VM) PC() int { return v.pc }

// Line returns the source line of the last dispatched instruction.
func (v *VM) Line() int { return v.line }

// Host returns the collaborators in use.
func (v *VM) Host() Host { return v.host }

// Abort moves a running VM to StateAbort. The current instruction has
// already completed; nothing is rolled back.
func (v *VM) Abort() {
	if v.state == StateRunning {
		v.state = StateAbort
	}
}

// Halted reports whether the VM has left the running state.
func (v *VM) Halted() bool { return v.state != StateRunning }

// Suspended reports whether the VM is waiting on input, a timer, or a
// pending compile.
func (v *VM) Suspended() bool {
	return v.waiting || v.keyWaiting || v.pending != nil || v.awaitingLine()
}

func (v *VM) awaitingLine() bool {
	if v.pc >= len(v.prog.Instructions) {
		return false
	}
	return v.prog.Instructions[v.pc].Op == OpInput && !v.haveFields
}

// ---------------------------------------------------------------------------
// Operand stack
// ---------------------------------------------------------------------------

func (v *VM) push(x Value) {
	v.stack = append(v.stack, x)
}

func (v *VM) pop() Value {
	n := len(v.stack)
	if n == 0 {
		panic("vm: operand stack underflow")
	}
	x := v.stack[n-1]
	v.stack = v.stack[:n-1]
	return x
}

// popN pops n values and returns them in push order.
func (v *VM) popN(n int) []Value {
	if len(v.stack) < n {
		panic("vm: operand stack underflow")
	}
	out := make([]Value, n)
	copy(out, v.stack[len(v.stack)-n:])
	v.stack = v.stack[:len(v.stack)-n]
	return out
}

func (v *VM) popNum() (float64, error) {
	x := v.pop()
	if !x.Numeric() {
		return 0, v.raise(MsgTypeMismatch, "number", x.Kind.String())
	}
	return x.Num, nil
}

func (v *VM) popStr() (string, error) {
	x := v.pop()
	if x.Kind != KindString {
		return "", v.raise(MsgTypeMismatch, "string", x.Kind.String())
	}
	return x.Str, nil
}

// popInts pops n numbers, truncated to int, in push order.
func (v *VM) popInts(n int) ([]int, error) {
	vals := v.popN(n)
	out := make([]int, n)
	for i, x := range vals {
		if !x.Numeric() {
			return nil, v.raise(MsgTypeMismatch, "number", x.Kind.String())
		}
		out[i] = int(x.Num)
	}
	return out, nil
}

// StackDepth returns the operand stack depth.
func (v *VM) StackDepth() int { return len(v.stack) }

// CallDepth returns the call stack depth.
func (v *VM) CallDepth() int { return len(v.calls) }
