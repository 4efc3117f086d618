package compiler

import (
	"fmt"

	"github.com/chazu/basil/vm"
)

// ---------------------------------------------------------------------------
// Codegen: Compile AST to bytecode
// ---------------------------------------------------------------------------

// CompileOptions relocates a unit for merging into a running program.
type CompileOptions struct {
	// InstructionBase and DataBase are the sizes of the program the unit
	// will be appended to. Jump targets are absolute.
	InstructionBase int
	DataBase        int

	// Labels and DataLabels resolve references to labels of the running
	// program.
	Labels     map[string]int
	DataLabels map[string]int

	KnownSubroutines []string
}

// exprType is the static type of a compiled expression.
type exprType uint8

const (
	typeNum exprType = iota
	typeStr
	typeArray
)

func (t exprType) String() string {
	switch t {
	case typeNum:
		return "number"
	case typeStr:
		return "string"
	}
	return "array"
}

func nameType(name string) exprType {
	if vm.IsStringName(name) {
		return typeStr
	}
	return typeNum
}

// fixup is a jump operand waiting for a label or loop exit.
type fixup struct {
	index int // relative instruction index
	slot  int // Targets slot, or -1 for Arg
	label string
	data  bool
	pos   Position
}

type loopCtx struct {
	breaks    []int
	continues []int
}

// Compiler compiles a parsed unit to bytecode.
type Compiler struct {
	tree *Program
	syms *vm.SymbolTable
	opts CompileOptions
	out  *vm.Program

	knownSubs map[string]bool
	fixups    []fixup
	loops     []*loopCtx
	sub       *SubDef

	line    int
	pending bool // next instruction starts a statement
	errors  []*SyntaxError
}

// NewCompiler creates a compiler for tree. syms must be the table returned
// by Parse.
func NewCompiler(tree *Program, syms *vm.SymbolTable, opts CompileOptions) *Compiler {
	c := &Compiler{
		tree:      tree,
		syms:      syms,
		opts:      opts,
		out:       vm.NewProgram(),
		knownSubs: make(map[string]bool),
	}
	for _, s := range opts.KnownSubroutines {
		c.knownSubs[s] = true
	}
	return c
}

// Errors returns accumulated compilation errors.
func (c *Compiler) Errors() []*SyntaxError {
	return c.errors
}

// Compile compiles tree into a program. The first error is returned.
func Compile(tree *Program, syms *vm.SymbolTable, opts CompileOptions) (*vm.Program, error) {
	c := NewCompiler(tree, syms, opts)
	prog := c.CompileProgram()
	if len(c.errors) > 0 {
		return nil, c.errors[0]
	}
	return prog, nil
}

// errorf records a compilation error at pos.
func (c *Compiler) errorf(pos Position, format string, args ...any) {
	c.errors = append(c.errors, &SyntaxError{
		Line:   pos.Line,
		Column: pos.Column,
		Msg:    fmt.Sprintf(format, args...),
	})
}

// CompileProgram compiles the whole unit. Every unit ends with an END
// so control never runs off the end into a later unit.
func (c *Compiler) CompileProgram() *vm.Program {
	c.compileBlock(c.tree.Stmts)
	c.pending = true
	c.emit(vm.Instruction{Op: vm.OpEnd})
	c.resolveFixups()

	c.out.SetSymbols(c.syms)
	c.out.Version = c.tree.Version
	return c.out
}

// ---------------------------------------------------------------------------
// Emission helpers
// ---------------------------------------------------------------------------

// emit appends in and returns its relative index.
func (c *Compiler) emit(in vm.Instruction) int {
	in.Line = c.line
	if c.pending {
		in.Stmt = true
		c.pending = false
	}
	c.out.Instructions = append(c.out.Instructions, in)
	return len(c.out.Instructions) - 1
}

// here returns the absolute index of the next instruction.
func (c *Compiler) here() int {
	return c.opts.InstructionBase + len(c.out.Instructions)
}

// patch points the jump at rel to the absolute target. FOR instructions
// carry their target in Arg2.
func (c *Compiler) patch(rel, target int) {
	in := &c.out.Instructions[rel]
	switch in.Op {
	case vm.OpForCheck, vm.OpForNext:
		in.Arg2 = target
	default:
		in.Arg = target
	}
}

// startStmt marks the next instruction as the first of a statement.
func (c *Compiler) startStmt(pos Position) {
	c.line = pos.Line
	c.pending = true
}

func (c *Compiler) resolveFixups() {
	for _, f := range c.fixups {
		var (
			target int
			ok     bool
		)
		if f.data {
			if target, ok = c.out.DataLabels[f.label]; !ok {
				target, ok = c.opts.DataLabels[f.label]
			}
		} else {
			if target, ok = c.out.InstructionLabels[f.label]; !ok {
				target, ok = c.opts.Labels[f.label]
			}
		}
		if !ok {
			c.errorf(f.pos, "label %s not found", f.label)
			continue
		}
		if f.slot >= 0 {
			c.out.Instructions[f.index].Targets[f.slot] = target
		} else {
			c.patch(f.index, target)
		}
	}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (c *Compiler) compileBlock(stmts []Stmt) {
	for _, s := range stmts {
		c.compileStmt(s)
	}
}

func (c *Compiler) compileStmt(stmt Stmt) {
	c.startStmt(stmt.Pos())

	switch s := stmt.(type) {
	case *LabelStmt:
		c.out.InstructionLabels[s.Name] = c.here()
		c.out.DataLabels[s.Name] = c.opts.DataBase + len(c.out.Data)
	case *AssignStmt:
		c.compileAssign(s)
	case *PrintStmt:
		c.compilePrint(s)
	case *InputStmt:
		for i, t := range s.Targets {
			flags := 0
			if s.Line {
				flags |= vm.InputLine
			}
			if i == 0 {
				flags |= vm.InputFirst
			}
			if i == len(s.Targets)-1 {
				flags |= vm.InputLast
			}
			str := 0
			if isStringTarget(t) {
				str = 1
			}
			c.store(t, func() {
				c.emit(vm.Instruction{Op: vm.OpInput, Str: s.Prompt, Arg: str, Arg2: flags})
			})
		}
	case *IfStmt:
		c.compileIf(s)
	case *WhileStmt:
		c.compileWhile(s)
	case *RepeatStmt:
		c.compileRepeat(s)
	case *DoStmt:
		c.compileDo(s)
	case *ForStmt:
		c.compileFor(s)
	case *BreakStmt:
		if len(c.loops) == 0 {
			c.errorf(s.At, "break outside of a loop")
			return
		}
		l := c.loops[len(c.loops)-1]
		l.breaks = append(l.breaks, c.emit(vm.Instruction{Op: vm.OpJump}))
	case *ContinueStmt:
		if len(c.loops) == 0 {
			c.errorf(s.At, "continue outside of a loop")
			return
		}
		l := c.loops[len(c.loops)-1]
		l.continues = append(l.continues, c.emit(vm.Instruction{Op: vm.OpJump}))
	case *GotoStmt:
		c.jumpTo(vm.OpJump, s.Label, s.At)
	case *GosubStmt:
		c.jumpTo(vm.OpGosub, s.Label, s.At)
	case *OnStmt:
		c.numExpr(s.Index)
		op := vm.OpOnGoto
		if s.Gosub {
			op = vm.OpOnGosub
		}
		idx := c.emit(vm.Instruction{Op: op, Targets: make([]int, len(s.Labels))})
		for i, l := range s.Labels {
			c.fixups = append(c.fixups, fixup{index: idx, slot: i, label: l, pos: s.At})
		}
	case *ReturnStmt:
		c.compileReturn(s)
	case *SubDef:
		c.compileSub(s)
	case *DimStmt:
		for _, d := range s.Decls {
			c.dimension(vm.OpDim, d)
		}
	case *LocalStmt:
		c.compileLocal(s)
	case *DataStmt:
		c.out.Data = append(c.out.Data, s.Values...)
	case *ReadStmt:
		for _, t := range s.Targets {
			str := 0
			if isStringTarget(t) {
				str = 1
			}
			c.store(t, func() {
				c.emit(vm.Instruction{Op: vm.OpRead, Arg: str})
			})
		}
	case *RestoreStmt:
		idx := c.emit(vm.Instruction{Op: vm.OpRestore, Str: s.Label})
		if s.Label != "" {
			c.fixups = append(c.fixups, fixup{index: idx, slot: -1, label: s.Label, data: true, pos: s.At})
		}
	case *EndStmt:
		c.emit(vm.Instruction{Op: vm.OpEnd})
	case *ExprStmt:
		c.compileExprStmt(s)
	case *DocuStmt:
		c.out.Docs = append(c.out.Docs, s.Text)
	case *ClsStmt:
		c.emit(vm.Instruction{Op: vm.OpCls})
	case *GraphicsStmt:
		c.compileGraphics(s)
	case *CallStmt:
		c.compileCall(s.Call)
		c.emit(vm.Instruction{Op: vm.OpPop})
	default:
		c.errorf(stmt.Pos(), "unsupported statement %T", stmt)
	}
}

func (c *Compiler) jumpTo(op vm.Opcode, label string, pos Position) {
	idx := c.emit(vm.Instruction{Op: op, Str: label})
	c.fixups = append(c.fixups, fixup{index: idx, slot: -1, label: label, pos: pos})
}

// store compiles a write of the value produced by gen into target. Array
// indices are evaluated before the value.
func (c *Compiler) store(target Expr, gen func()) {
	switch t := target.(type) {
	case *VarRef:
		gen()
		id, str := c.syms.Variable(t.Name)
		if str {
			c.emit(vm.Instruction{Op: vm.OpStoreStr, Arg: id})
		} else {
			c.emit(vm.Instruction{Op: vm.OpStoreNum, Arg: id})
		}
	case *CallExpr:
		if c.isSub(t.Name) {
			c.errorf(t.At, "cannot assign to subroutine %s", t.Name)
			return
		}
		for _, a := range t.Args {
			c.numExpr(a)
		}
		gen()
		c.emit(vm.Instruction{Op: vm.OpArraySet, Str: t.Name, Arg: len(t.Args)})
	default:
		c.errorf(target.Pos(), "cannot assign to this expression")
	}
}

func (c *Compiler) compileAssign(s *AssignStmt) {
	var name string
	switch t := s.Target.(type) {
	case *VarRef:
		name = t.Name
	case *CallExpr:
		name = t.Name
	}
	c.store(s.Target, func() {
		c.typedExpr(s.Value, nameType(name))
	})
}

func (c *Compiler) compilePrint(s *PrintStmt) {
	for _, item := range s.Items {
		if item.Expr != nil {
			if item.Using != nil {
				c.typedExpr(item.Expr, typeNum)
				c.typedExpr(item.Using, typeStr)
				c.emit(vm.Instruction{Op: vm.OpPrintUsing})
			} else {
				c.compileExpr(item.Expr)
				c.emit(vm.Instruction{Op: vm.OpPrint})
			}
		}
		if item.Sep == ',' {
			c.emit(vm.Instruction{Op: vm.OpPrintTab})
		}
	}
	if n := len(s.Items); n == 0 || s.Items[n-1].Sep == 0 {
		c.emit(vm.Instruction{Op: vm.OpPrintNewline})
	}
}

// compileIf lays out
//
//	cond JUMP_IF_FALSE next; then; [stmt] JUMP end
//	next: cond JUMP_IF_FALSE next2; body; [stmt] JUMP end
//	...; else; end:
//
// Structural jumps start a statement so error recovery inside a branch
// resumes at the jump, never in the following branch.
func (c *Compiler) compileIf(s *IfStmt) {
	var ends []int
	c.numExpr(s.Cond)
	jf := c.emit(vm.Instruction{Op: vm.OpJumpIfFalse})
	c.compileBlock(s.Then)

	for _, arm := range s.ElseIfs {
		c.pending = true
		ends = append(ends, c.emit(vm.Instruction{Op: vm.OpJump}))
		c.patch(jf, c.here())
		c.startStmt(arm.Cond.Pos())
		c.numExpr(arm.Cond)
		jf = c.emit(vm.Instruction{Op: vm.OpJumpIfFalse})
		c.compileBlock(arm.Body)
	}
	if s.Else != nil {
		c.pending = true
		ends = append(ends, c.emit(vm.Instruction{Op: vm.OpJump}))
		c.patch(jf, c.here())
		c.compileBlock(s.Else)
	} else {
		c.patch(jf, c.here())
	}
	for _, e := range ends {
		c.patch(e, c.here())
	}
}

func (c *Compiler) pushLoop() *loopCtx {
	l := &loopCtx{}
	c.loops = append(c.loops, l)
	return l
}

// popLoop patches the loop's break and continue jumps.
func (c *Compiler) popLoop(cont, exit int) {
	l := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, b := range l.breaks {
		c.patch(b, exit)
	}
	for _, k := range l.continues {
		c.patch(k, cont)
	}
}

func (c *Compiler) compileWhile(s *WhileStmt) {
	top := c.here()
	c.numExpr(s.Cond)
	jf := c.emit(vm.Instruction{Op: vm.OpJumpIfFalse})
	c.pushLoop()
	c.compileBlock(s.Body)
	c.startStmt(s.End)
	c.emit(vm.Instruction{Op: vm.OpJump, Arg: top})
	c.patch(jf, c.here())
	c.popLoop(top, c.here())
}

func (c *Compiler) compileRepeat(s *RepeatStmt) {
	top := c.here()
	c.pushLoop()
	c.compileBlock(s.Body)
	c.startStmt(s.End)
	cont := c.here()
	c.numExpr(s.Cond)
	c.emit(vm.Instruction{Op: vm.OpJumpIfFalse, Arg: top})
	c.popLoop(cont, c.here())
}

func (c *Compiler) compileDo(s *DoStmt) {
	top := c.here()
	c.pushLoop()
	c.compileBlock(s.Body)
	c.startStmt(s.End)
	c.emit(vm.Instruction{Op: vm.OpJump, Arg: top})
	c.popLoop(top, c.here())
}

// compileFor lays out
//
//	start STORE v
//	start end step FOR_CHECK v exit
//	body: ...
//	cont: [stmt] start end step FOR_NEXT v body
//	exit:
//
// The bounds are evaluated where they are used, so FOR_CHECK and FOR_NEXT
// each find start, end and step on the stack.
func (c *Compiler) compileFor(s *ForStmt) {
	id, _ := c.syms.Variable(s.Var)
	bounds := func() {
		c.numExpr(s.Start)
		c.numExpr(s.Limit)
		if s.Step != nil {
			c.numExpr(s.Step)
		} else {
			c.emit(vm.Instruction{Op: vm.OpPushNum, Num: 1})
		}
	}

	c.numExpr(s.Start)
	c.emit(vm.Instruction{Op: vm.OpStoreNum, Arg: id})
	bounds()
	check := c.emit(vm.Instruction{Op: vm.OpForCheck, Str: s.Var, Arg: id})

	body := c.here()
	c.pushLoop()
	c.compileBlock(s.Body)

	c.startStmt(s.End)
	cont := c.here()
	bounds()
	c.emit(vm.Instruction{Op: vm.OpForNext, Str: s.Var, Arg: id, Arg2: body})
	exit := c.here()
	c.patch(check, exit)
	c.popLoop(cont, exit)
}

func (c *Compiler) compileReturn(s *ReturnStmt) {
	if s.Value == nil {
		c.emit(vm.Instruction{Op: vm.OpReturn})
		return
	}
	if c.sub == nil {
		c.errorf(s.At, "return with a value outside of a subroutine")
		return
	}
	c.typedExpr(s.Value, nameType(c.sub.Name))
	c.emit(vm.Instruction{Op: vm.OpReturnValue, Str: c.sub.Name})
}

// compileSub lays out
//
//	[stmt] JUMP skip
//	entry: PARAM...; body; [stmt] END_SUB
//	skip:
func (c *Compiler) compileSub(s *SubDef) {
	skip := c.emit(vm.Instruction{Op: vm.OpJump, Str: s.Name})
	sub := &vm.Subroutine{Name: s.Name, Entry: c.here(), Line: s.At.Line}
	c.out.Subroutines[s.Name] = sub

	for i, p := range s.Params {
		if p.Array {
			kind := vm.ParamNumArray
			if vm.IsStringName(p.Name) {
				kind = vm.ParamStrArray
			}
			sub.Params = append(sub.Params, kind)
			c.emit(vm.Instruction{Op: vm.OpArrayParam, Str: p.Name, Arg: i})
			continue
		}
		kind := vm.ParamNumber
		if vm.IsStringName(p.Name) {
			kind = vm.ParamString
		}
		sub.Params = append(sub.Params, kind)
		id, _ := c.syms.Variable(p.Name)
		c.emit(vm.Instruction{Op: vm.OpParam, Str: p.Name, Arg: id, Arg2: i})
	}

	c.sub = s
	outer := c.loops
	c.loops = nil
	c.compileBlock(s.Body)
	c.loops = outer
	c.sub = nil

	c.startStmt(s.End)
	c.emit(vm.Instruction{Op: vm.OpEndSub, Str: s.Name})
	c.patch(skip, c.here())
}

func (c *Compiler) compileLocal(s *LocalStmt) {
	scope := vm.ScopeLocal
	if s.Static {
		scope = vm.ScopeStatic
	}
	for _, d := range s.Decls {
		switch {
		case d.Array && s.Static:
			// Static arrays live under their qualified global name; a
			// repeated dim keeps the contents.
			if len(d.Dims) > 0 {
				c.dimension(vm.OpDim, d)
			}
		case d.Array:
			c.dimension(vm.OpLocalArray, d)
		default:
			id, _ := c.syms.Variable(d.Name)
			c.emit(vm.Instruction{Op: vm.OpDeclare, Str: d.Name, Arg: id, Arg2: scope})
		}
	}
}

func (c *Compiler) dimension(op vm.Opcode, d Decl) {
	for _, b := range d.Dims {
		c.numExpr(b)
	}
	c.emit(vm.Instruction{Op: op, Str: d.Name, Arg: len(d.Dims)})
}

func (c *Compiler) compileExprStmt(s *ExprStmt) {
	switch s.Op {
	case vm.OpError, vm.OpCompile:
		c.typedExpr(s.Value, typeStr)
		c.emit(vm.Instruction{Op: s.Op})
	case vm.OpWait:
		c.numExpr(s.Value)
		c.emit(vm.Instruction{Op: s.Op})
	case vm.OpRandomize:
		if s.Value == nil {
			c.emit(vm.Instruction{Op: s.Op})
			return
		}
		c.numExpr(s.Value)
		c.emit(vm.Instruction{Op: s.Op, Arg: 1})
	}
}

func (c *Compiler) compileGraphics(s *GraphicsStmt) {
	for i, a := range s.Args {
		if s.Op == vm.OpText && i == 2 {
			c.typedExpr(a, typeStr)
		} else {
			c.numExpr(a)
		}
	}
	in := vm.Instruction{Op: s.Op}
	switch s.Op {
	case vm.OpColor:
		in.Arg = len(s.Args)
	case vm.OpRect, vm.OpTriangle, vm.OpCircle:
		if s.Fill {
			in.Arg = 1
		}
	}
	c.emit(in)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// typedExpr compiles e and reports a mismatch against want.
func (c *Compiler) typedExpr(e Expr, want exprType) {
	if got := c.compileExpr(e); got != want {
		c.errorf(e.Pos(), "type mismatch: expected %s, got %s", want, got)
	}
}

func (c *Compiler) numExpr(e Expr) {
	c.typedExpr(e, typeNum)
}

func (c *Compiler) compileExpr(e Expr) exprType {
	switch x := e.(type) {
	case *NumberLit:
		c.emit(vm.Instruction{Op: vm.OpPushNum, Num: x.Value})
		return typeNum
	case *StringLit:
		c.emit(vm.Instruction{Op: vm.OpPushStr, Str: x.Value})
		return typeStr
	case *VarRef:
		id, str := c.syms.Variable(x.Name)
		if str {
			c.emit(vm.Instruction{Op: vm.OpLoadStr, Arg: id})
			return typeStr
		}
		c.emit(vm.Instruction{Op: vm.OpLoadNum, Arg: id})
		return typeNum
	case *UnaryExpr:
		c.numExpr(x.X)
		if x.Op == TokenMinus {
			c.emit(vm.Instruction{Op: vm.OpNeg})
		} else {
			c.emit(vm.Instruction{Op: vm.OpNot})
		}
		return typeNum
	case *BinaryExpr:
		return c.compileBinary(x)
	case *CallExpr:
		return c.compileCall(x)
	}
	c.errorf(e.Pos(), "unsupported expression %T", e)
	return typeNum
}

var binaryOps = map[TokenType]vm.Opcode{
	TokenPlus:  vm.OpAdd,
	TokenMinus: vm.OpSub,
	TokenStar:  vm.OpMul,
	TokenSlash: vm.OpDiv,
	TokenCaret: vm.OpPow,
	TokenEq:    vm.OpEq,
	TokenNe:    vm.OpNe,
	TokenLt:    vm.OpLt,
	TokenLe:    vm.OpLe,
	TokenGt:    vm.OpGt,
	TokenGe:    vm.OpGe,
}

var wordOps = map[string]vm.Opcode{
	"and": vm.OpAnd,
	"or":  vm.OpOr,
	"mod": vm.OpMod,
}

func (c *Compiler) compileBinary(x *BinaryExpr) exprType {
	op, ok := binaryOps[x.Op]
	if x.Op == TokenKeyword {
		op, ok = wordOps[x.Word]
	}
	if !ok {
		c.errorf(x.At, "unknown operator")
		return typeNum
	}

	switch op {
	case vm.OpAnd, vm.OpOr:
		c.compileExpr(x.Left)
		c.compileExpr(x.Right)
		c.emit(vm.Instruction{Op: op})
		return typeNum
	case vm.OpEq, vm.OpNe, vm.OpLt, vm.OpLe, vm.OpGt, vm.OpGe:
		l := c.compileExpr(x.Left)
		r := c.compileExpr(x.Right)
		if l != r {
			c.errorf(x.At, "type mismatch: cannot compare %s with %s", l, r)
		}
		c.emit(vm.Instruction{Op: op})
		return typeNum
	case vm.OpAdd:
		l := c.compileExpr(x.Left)
		r := c.compileExpr(x.Right)
		if l != r || l == typeArray {
			c.errorf(x.At, "type mismatch: cannot add %s and %s", l, r)
		}
		c.emit(vm.Instruction{Op: op})
		return l
	}
	c.numExpr(x.Left)
	c.numExpr(x.Right)
	c.emit(vm.Instruction{Op: op})
	return typeNum
}

func (c *Compiler) isSub(name string) bool {
	return c.tree.Subs[name] != nil || c.knownSubs[name]
}

// compileCall resolves name(args) to a built-in, a subroutine, an array
// element, or, when the name is not known at compile time, a runtime
// lookup.
func (c *Compiler) compileCall(x *CallExpr) exprType {
	if b, ok := vm.LookupBuiltin(x.Name); ok {
		info := b.Info()
		if len(x.Args) < info.MinArgs || len(x.Args) > info.MaxArgs() {
			c.errorf(x.At, "wrong number of arguments for %s", x.Name)
			return typeNum
		}
		for i, a := range x.Args {
			switch t := info.Args[i]; t {
			case 'n':
				c.numExpr(a)
			case 's':
				c.typedExpr(a, typeStr)
			default:
				c.arrayArg(a, t)
			}
		}
		c.emit(vm.Instruction{Op: vm.OpBuiltin, Arg: int(b), Arg2: len(x.Args)})
		if info.String {
			return typeStr
		}
		return typeNum
	}

	switch {
	case c.isSub(x.Name):
		for _, a := range x.Args {
			c.argument(a)
		}
		c.emit(vm.Instruction{Op: vm.OpCall, Str: x.Name, Arg: len(x.Args)})
	case c.tree.Arrays[x.Name]:
		if len(x.Args) == 0 {
			c.errorf(x.At, "missing array index for %s", x.Name)
		}
		for _, a := range x.Args {
			c.numExpr(a)
		}
		c.emit(vm.Instruction{Op: vm.OpArrayGet, Str: x.Name, Arg: len(x.Args)})
	default:
		for _, a := range x.Args {
			c.argument(a)
		}
		c.emit(vm.Instruction{Op: vm.OpCallOrIndex, Str: x.Name, Arg: len(x.Args)})
	}
	return nameType(x.Name)
}

// isArrayRef reports whether e is written as name() for an array.
func (c *Compiler) isArrayRef(e Expr) (*CallExpr, bool) {
	call, ok := e.(*CallExpr)
	if !ok || !call.Parens || len(call.Args) != 0 || c.isSub(call.Name) {
		return nil, false
	}
	if _, builtin := vm.LookupBuiltin(call.Name); builtin {
		return nil, false
	}
	return call, true
}

// argument compiles one subroutine argument. An array is passed as name().
func (c *Compiler) argument(a Expr) {
	if call, ok := c.isArrayRef(a); ok {
		c.emit(vm.Instruction{Op: vm.OpPushArrayRef, Str: call.Name})
		return
	}
	c.compileExpr(a)
}

// arrayArg compiles an array argument of a built-in. t is 'N', 'S' or
// 'A' from the built-in's signature.
func (c *Compiler) arrayArg(a Expr, t byte) {
	call, ok := c.isArrayRef(a)
	if !ok {
		c.errorf(a.Pos(), "expected an array, written as name()")
		c.compileExpr(a)
		return
	}
	str := vm.IsStringName(call.Name)
	if (t == 'N' && str) || (t == 'S' && !str) {
		c.errorf(a.Pos(), "type mismatch: %s is not a %s array", call.Name, map[byte]string{'N': "numeric", 'S': "string"}[t])
	}
	c.emit(vm.Instruction{Op: vm.OpPushArrayRef, Str: call.Name})
}
