package vm

import (
	"errors"
	"math"
)

// ---------------------------------------------------------------------------
// Dispatch loop
// ---------------------------------------------------------------------------

// stepResult tells the batch loop what to do after one dispatch.
type stepResult uint8

const (
	stepNext     stepResult = iota // advance to pc+1
	stepJump                       // pc already set by the handler
	stepSuspend                    // re-dispatch the same index later
	stepEndFrame                   // advance, then yield the frame
	stepHalt                       // the VM left the running state
)

// StopReason says why Run returned.
type StopReason uint8

const (
	StopBudget  StopReason = iota // the instruction allowance ran out
	StopSuspend                   // an instruction is waiting on the host
	StopFrame                     // an instruction asked to end the frame
	StopHalt                      // the program completed, failed or was aborted
)

func (r StopReason) String() string {
	switch r {
	case StopBudget:
		return "budget"
	case StopSuspend:
		return "suspend"
	case StopFrame:
		return "frame"
	case StopHalt:
		return "halt"
	}
	return "?"
}

// Run dispatches at most n instructions and reports how many ran and why
// it stopped. Recoverable runtime errors are handled here; any error that
// is not an *Unwind is a defect and is returned after moving the VM to
// StateError.
func (v *VM) Run(n int) (int, StopReason, error) {
	for i := 0; i < n; i++ {
		if v.state != StateRunning {
			return i, StopHalt, nil
		}
		if v.pc >= len(v.prog.Instructions) {
			v.state = StateComplete
			return i, StopHalt, nil
		}

		r, err := v.step()
		if err != nil {
			var u *Unwind
			if !errors.As(err, &u) {
				v.state = StateError
				return i + 1, StopHalt, err
			}
			r = v.recoverFrom(u)
		}

		switch r {
		case stepSuspend:
			return i + 1, StopSuspend, nil
		case stepEndFrame:
			return i + 1, StopFrame, nil
		case stepHalt:
			return i + 1, StopHalt, nil
		}
	}
	return n, StopBudget, nil
}

// RunToEnd runs until the program halts, sleeping on the host clock while
// suspended. It is meant for tests and non-interactive runs.
func (v *VM) RunToEnd(maxSteps int) error {
	total := 0
	for !v.Halted() {
		n, why, err := v.Run(maxSteps - total)
		total += n
		if err != nil {
			return err
		}
		if total >= maxSteps {
			return errors.New("vm: step limit reached")
		}
		if why == StopSuspend {
			v.host.Clock.Sleep(suspendPoll)
		}
	}
	return nil
}

func (v *VM) step() (stepResult, error) {
	in := &v.prog.Instructions[v.pc]
	v.line = in.Line
	if in.Stmt {
		v.stmtBase = len(v.stack)
	}
	r, err := v.exec(in)
	if err != nil {
		return r, err
	}
	switch r {
	case stepNext, stepEndFrame:
		v.pc++
	}
	return r, nil
}

// recoverFrom abandons the current statement after a recoverable error
// and positions the VM at the next place execution can resume.
func (v *VM) recoverFrom(u *Unwind) stepResult {
	if u.Fatal() {
		v.state = StateError
		return stepHalt
	}
	v.errorCount++
	if v.errorCount > v.opts.MaxErrors {
		v.fatal(MsgTooManyErrors, v.opts.MaxErrors)
		v.state = StateError
		return stepHalt
	}

	v.clearSuspension()
	if v.stmtBase <= len(v.stack) {
		v.stack = v.stack[:v.stmtBase]
	}
	next := v.resumePoint(v.pc + 1)
	if next < 0 {
		v.state = StateComplete
		return stepHalt
	}
	v.pc = next
	return stepJump
}

// resumePoint finds where to continue after abandoning a statement. An
// abandoned loop or branch condition counts as false.
func (v *VM) resumePoint(from int) int {
	ins := v.prog.Instructions
	for i := from; i < len(ins); i++ {
		in := &ins[i]
		if in.Stmt {
			return i
		}
		switch in.Op {
		case OpJumpIfFalse:
			return in.Arg
		case OpForCheck:
			return in.Arg2
		case OpForNext:
			return i + 1
		}
	}
	return -1
}

func (v *VM) clearSuspension() {
	v.waiting = false
	v.keyWaiting = false
	v.pending = nil
	v.haveFields = false
	v.prompted = false
	v.inputFields = nil
}

// exec performs one instruction.
func (v *VM) exec(in *Instruction) (stepResult, error) {
	switch in.Op {
	case OpNOP:
		return stepNext, nil
	case OpPushNum:
		v.push(Num(in.Num))
		return stepNext, nil
	case OpPushStr:
		v.push(Str(in.Str))
		return stepNext, nil
	case OpPop:
		v.pop()
		return stepNext, nil

	// Scalars
	case OpLoadNum:
		v.push(Num(v.LoadNum(in.Arg)))
		return stepNext, nil
	case OpStoreNum:
		x, err := v.popNum()
		if err != nil {
			return stepNext, err
		}
		v.StoreNum(in.Arg, x)
		return stepNext, nil
	case OpLoadStr:
		v.push(Str(v.LoadStr(in.Arg)))
		return stepNext, nil
	case OpStoreStr:
		s, err := v.popStr()
		if err != nil {
			return stepNext, err
		}
		v.StoreStr(in.Arg, s)
		return stepNext, nil
	case OpDeclare:
		v.declare(in.Str, in.Arg, in.Arg2)
		return stepNext, nil
	case OpParam:
		return stepNext, v.bindParam(in)

	// Arrays
	case OpDim:
		return stepNext, v.dim(in.Str, in.Arg, false)
	case OpLocalArray:
		return stepNext, v.dim(in.Str, in.Arg, true)
	case OpArrayGet:
		return stepNext, v.arrayGet(in.Str, in.Arg)
	case OpArraySet:
		return stepNext, v.arraySet(in.Str, in.Arg)
	case OpPushArrayRef:
		v.push(ArrayRef(v.arrayFor(in.Str)))
		return stepNext, nil
	case OpArrayParam:
		return stepNext, v.bindArrayParam(in)
	case OpCallOrIndex:
		if sub, ok := v.prog.Subroutines[in.Str]; ok {
			return v.call(sub, in.Arg)
		}
		if _, ok := v.lookupArray(in.Str); ok {
			return stepNext, v.arrayGet(in.Str, in.Arg)
		}
		return stepNext, v.raise(MsgSubNotDefined, in.Str)

	// Arithmetic and logic
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
		return stepNext, v.arith(in.Op)
	case OpNeg:
		x, err := v.popNum()
		if err != nil {
			return stepNext, err
		}
		v.push(Num(-x))
		return stepNext, nil
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return stepNext, v.compare(in.Op)
	case OpAnd, OpOr:
		b, a := v.pop(), v.pop()
		if in.Op == OpAnd {
			v.push(Bool(a.Truthy() && b.Truthy()))
		} else {
			v.push(Bool(a.Truthy() || b.Truthy()))
		}
		return stepNext, nil
	case OpNot:
		v.push(Bool(!v.pop().Truthy()))
		return stepNext, nil

	// Control flow
	case OpJump:
		v.pc = in.Arg
		return stepJump, nil
	case OpJumpIfFalse:
		if !v.pop().Truthy() {
			v.pc = in.Arg
			return stepJump, nil
		}
		return stepNext, nil
	case OpJumpIfTrue:
		if v.pop().Truthy() {
			v.pc = in.Arg
			return stepJump, nil
		}
		return stepNext, nil
	case OpForCheck:
		return v.forLoop(in, false)
	case OpForNext:
		return v.forLoop(in, true)
	case OpGosub:
		return v.gosub(in.Arg)
	case OpOnGoto, OpOnGosub:
		return v.onJump(in)
	case OpReturn:
		return v.doReturn()
	case OpReturnValue:
		return v.returnValue()
	case OpEndSub:
		return v.endSub()
	case OpCall:
		sub, ok := v.prog.Subroutines[in.Str]
		if !ok {
			return stepNext, v.raise(MsgSubNotDefined, in.Str)
		}
		return v.call(sub, in.Arg)
	case OpBuiltin:
		return v.builtin(Builtin(in.Arg), in.Arg2)
	case OpEnd:
		v.state = StateComplete
		return stepHalt, nil

	// Input/output and runtime services
	case OpPrint:
		v.print(v.pop())
		return stepNext, nil
	case OpPrintUsing:
		return stepNext, v.printUsing()
	case OpPrintNewline:
		v.host.Console.Write("\n")
		return stepNext, nil
	case OpPrintTab:
		v.host.Console.Write("\t")
		return stepNext, nil
	case OpInput:
		return v.input(in)
	case OpCls:
		v.host.Console.Clear()
		return stepNext, nil
	case OpRead:
		return stepNext, v.read(in.Arg == 1)
	case OpRestore:
		v.dataPtr = in.Arg
		return stepNext, nil
	case OpWait:
		return v.wait()
	case OpRandomize:
		return stepNext, v.randomize(in.Arg == 1)
	case OpError:
		s, err := v.popStr()
		if err != nil {
			return stepNext, err
		}
		return stepNext, v.fatal(MsgUserError, v.decode(s))
	case OpCompile:
		return v.compile()

	// Graphics
	case OpOpenWindow, OpCloseWindow, OpClearWindow, OpColor, OpSetRGB,
		OpDot, OpLine, OpRect, OpTriangle, OpGTriangle, OpCircle, OpText,
		OpSetDrawBuf, OpSetDispBuf, OpFlip:
		return v.graphics(in)
	}
	panic("vm: unknown opcode " + in.Op.String())
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

func (v *VM) arith(op Opcode) error {
	b, a := v.pop(), v.pop()
	if op == OpAdd && a.Kind == KindString && b.Kind == KindString {
		if len(a.Str) > MaxStringLength-len(b.Str) {
			return v.fatal(MsgStringTooLong, MaxStringLength)
		}
		v.push(Str(a.Str + b.Str))
		return nil
	}
	if !a.Numeric() || !b.Numeric() {
		return v.raise(MsgTypeMismatch, "number", mismatchKind(a, b).String())
	}
	x, y := a.Num, b.Num
	var r float64
	switch op {
	case OpAdd:
		r = x + y
	case OpSub:
		r = x - y
	case OpMul:
		r = x * y
	case OpDiv:
		if y == 0 {
			return v.raise(MsgDivisionByZero)
		}
		r = x / y
	case OpMod:
		if y == 0 {
			return v.raise(MsgDivisionByZero)
		}
		r = math.Mod(x, y)
	case OpPow:
		r = math.Pow(x, y)
	}
	v.push(Num(r))
	return nil
}

func mismatchKind(a, b Value) Kind {
	if !a.Numeric() {
		return a.Kind
	}
	return b.Kind
}

func (v *VM) compare(op Opcode) error {
	b, a := v.pop(), v.pop()
	var c int
	switch {
	case a.Kind == KindString && b.Kind == KindString:
		switch {
		case a.Str < b.Str:
			c = -1
		case a.Str > b.Str:
			c = 1
		}
	case a.Numeric() && b.Numeric():
		switch {
		case a.Num < b.Num:
			c = -1
		case a.Num > b.Num:
			c = 1
		}
	default:
		return v.raise(MsgTypeMismatch, a.Kind.String(), b.Kind.String())
	}
	var r bool
	switch op {
	case OpEq:
		r = c == 0
	case OpNe:
		r = c != 0
	case OpLt:
		r = c < 0
	case OpLe:
		r = c <= 0
	case OpGt:
		r = c > 0
	case OpGe:
		r = c >= 0
	}
	v.push(Bool(r))
	return nil
}

// ---------------------------------------------------------------------------
// Loops and jumps
// ---------------------------------------------------------------------------

// forLoop handles both FOR instructions. The stack holds start, end and
// step, evaluated fresh by the preceding instructions. Arg is the loop
// variable id and Arg2 the jump target: the loop exit for OpForCheck, the
// body start for OpForNext.
func (v *VM) forLoop(in *Instruction, increment bool) (stepResult, error) {
	vals, err := v.popTriple()
	if err != nil {
		return stepNext, err
	}
	start, end, step := vals[0], vals[1], vals[2]

	x := v.LoadNum(in.Arg)
	if increment {
		x += step
		v.StoreNum(in.Arg, x)
	}

	var more bool
	switch {
	case step > 0:
		more = x <= end
	case step < 0:
		more = x >= end
	case start <= end:
		more = x <= end
	default:
		more = x >= end
	}

	if increment == more {
		v.pc = in.Arg2
		return stepJump, nil
	}
	return stepNext, nil
}

func (v *VM) popTriple() ([3]float64, error) {
	var out [3]float64
	vals := v.popN(3)
	for i, x := range vals {
		if !x.Numeric() {
			return out, v.raise(MsgTypeMismatch, "number", x.Kind.String())
		}
		out[i] = x.Num
	}
	return out, nil
}

func (v *VM) pushCall(e callEntry) error {
	if len(v.calls) >= v.opts.MaxCallDepth {
		return v.fatal(MsgStackOverflow, v.opts.MaxCallDepth)
	}
	e.stmtBase = v.stmtBase
	e.depth = len(v.stack)
	v.calls = append(v.calls, e)
	return nil
}

func (v *VM) gosub(target int) (stepResult, error) {
	if err := v.pushCall(callEntry{kind: callGosub, ret: v.pc + 1}); err != nil {
		return stepNext, err
	}
	v.pc = target
	return stepJump, nil
}

func (v *VM) onJump(in *Instruction) (stepResult, error) {
	x, err := v.popNum()
	if err != nil {
		return stepNext, err
	}
	n := int(x)
	if n < 1 || n > len(in.Targets) {
		return stepNext, nil
	}
	target := in.Targets[n-1]
	if in.Op == OpOnGosub {
		return v.gosub(target)
	}
	v.pc = target
	return stepJump, nil
}

// ---------------------------------------------------------------------------
// Subroutines
// ---------------------------------------------------------------------------

// call invokes sub with argc arguments taken from the stack.
func (v *VM) call(sub *Subroutine, argc int) (stepResult, error) {
	if argc > len(sub.Params) {
		v.popN(argc)
		return stepNext, v.raise(MsgTooManyArguments, sub.Name, len(sub.Params), argc)
	}
	args := v.popN(argc)
	for i, a := range args {
		if !paramAccepts(sub.Params[i], a) {
			return stepNext, v.raise(MsgArgumentType, sub.Name, i+1, sub.Params[i].String())
		}
	}

	if err := v.pushCall(callEntry{kind: callSub, ret: v.pc + 1}); err != nil {
		return stepNext, err
	}
	f := newFrame(sub.Name, 0, 0)
	f.ArgCount = argc
	f.args = args
	v.frames = append(v.frames, f)
	v.pc = sub.Entry
	return stepJump, nil
}

func paramAccepts(k ParamKind, a Value) bool {
	switch k {
	case ParamNumber:
		return a.Numeric()
	case ParamString:
		return a.Kind == KindString
	case ParamNumArray:
		return a.Kind == KindNumArrayRef
	case ParamStrArray:
		return a.Kind == KindStrArrayRef
	}
	return false
}

// bindParam binds argument Arg2 of the current call to the LOCAL id Arg.
// Missing arguments bind the element default.
func (v *VM) bindParam(in *Instruction) error {
	f := v.frames[len(v.frames)-1]
	v.declare(in.Str, in.Arg, ScopeLocal)
	if in.Arg2 >= len(f.args) {
		return nil
	}
	a := f.args[in.Arg2]
	if IsStringName(in.Str) {
		f.strs[in.Arg] = a.Str
	} else {
		f.nums[in.Arg] = a.Num
	}
	return nil
}

// bindArrayParam registers argument Arg of the current call under the
// parameter name. The caller's array is shared, not copied.
func (v *VM) bindArrayParam(in *Instruction) error {
	f := v.frames[len(v.frames)-1]
	if in.Arg < len(f.args) {
		f.arrays[in.Str] = f.args[in.Arg].Array()
		return nil
	}
	f.arrays[in.Str] = NewArray(in.Str)
	return nil
}

func (v *VM) declare(name string, id, scope int) {
	f := v.frames[len(v.frames)-1]
	if IsStringName(name) {
		f.declareStr(id, scope)
	} else {
		f.declareNum(id, scope)
	}
}

func (v *VM) doReturn() (stepResult, error) {
	if len(v.calls) == 0 {
		return stepNext, v.raise(MsgReturnWithoutGosub)
	}
	top := v.calls[len(v.calls)-1]
	if top.kind == callGosub {
		v.calls = v.calls[:len(v.calls)-1]
		v.pc = top.ret
		return stepJump, nil
	}
	return v.returnSub(v.defaultReturn())
}

func (v *VM) returnValue() (stepResult, error) {
	x := v.pop()
	if len(v.calls) == 0 || v.calls[len(v.calls)-1].kind != callSub {
		return stepNext, v.raise(MsgReturnValueOutsideSub)
	}
	sub := v.currentSub()
	if sub != nil && sub.ReturnsString() != (x.Kind == KindString) {
		want := "number"
		if sub.ReturnsString() {
			want = "string"
		}
		return stepNext, v.raise(MsgTypeMismatch, want, x.Kind.String())
	}
	return v.returnSub(x)
}

func (v *VM) endSub() (stepResult, error) {
	if len(v.calls) == 0 {
		return stepNext, v.raise(MsgReturnWithoutGosub)
	}
	if v.calls[len(v.calls)-1].kind == callGosub {
		return stepNext, v.raise(MsgGosubPendingAtEndSub, v.frames[len(v.frames)-1].Sub)
	}
	return v.returnSub(v.defaultReturn())
}

// returnSub pops the current subroutine activation and pushes x for the
// caller.
func (v *VM) returnSub(x Value) (stepResult, error) {
	top := v.calls[len(v.calls)-1]
	v.calls = v.calls[:len(v.calls)-1]
	v.frames = v.frames[:len(v.frames)-1]
	if top.depth <= len(v.stack) {
		v.stack = v.stack[:top.depth]
	}
	v.stmtBase = top.stmtBase
	v.push(x)
	v.pc = top.ret
	return stepJump, nil
}

func (v *VM) currentSub() *Subroutine {
	return v.prog.Subroutines[v.frames[len(v.frames)-1].Sub]
}

func (v *VM) defaultReturn() Value {
	if sub := v.currentSub(); sub != nil && sub.ReturnsString() {
		return Str("")
	}
	return Num(0)
}

// ---------------------------------------------------------------------------
// Arrays
// ---------------------------------------------------------------------------

// dim pops n upper bounds and dimensions name. Bounds are inclusive, so
// "dim a(3)" has four elements. A local dim always creates a fresh array in
// the current frame.
func (v *VM) dim(name string, n int, local bool) error {
	bounds, err := v.popInts(n)
	if err != nil {
		return err
	}
	var a *Array
	if local {
		a = NewArray(name)
		v.frames[len(v.frames)-1].arrays[name] = a
		if n == 0 {
			return nil
		}
	} else {
		a = v.arrayFor(name)
	}
	sizes := make([]int, n)
	for i, b := range bounds {
		sizes[i] = b + 1
	}
	if err := a.Dim(sizes); err != nil {
		return v.raiseArray(err)
	}
	return nil
}

func (v *VM) arrayGet(name string, n int) error {
	index, err := v.popInts(n)
	if err != nil {
		return err
	}
	x, err := v.arrayFor(name).Get(index)
	if err != nil {
		return v.raiseArray(err)
	}
	v.push(x)
	return nil
}

func (v *VM) arraySet(name string, n int) error {
	x := v.pop()
	index, err := v.popInts(n)
	if err != nil {
		return err
	}
	a := v.arrayFor(name)
	if a.IsString() != (x.Kind == KindString) {
		return v.raise(MsgTypeMismatch, elementKind(a), x.Kind.String())
	}
	if err := a.Set(index, x); err != nil {
		return v.raiseArray(err)
	}
	return nil
}

func elementKind(a *Array) string {
	if a.IsString() {
		return "string"
	}
	return "number"
}
