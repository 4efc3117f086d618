package vm

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies a single instruction kind. The set is closed; the
// interpreter dispatches over it with one exhaustive switch.
type Opcode uint8

// Stack and literals
const (
	OpNOP Opcode = iota
	OpPushNum
	OpPushStr
	OpPop
)

// Scalar variables
const (
	OpLoadNum Opcode = iota + 0x10
	OpStoreNum
	OpLoadStr
	OpStoreStr
	OpDeclare // tag id with a scope in the current frame
	OpParam   // bind argument Arg2 to a fresh LOCAL
)

// Arrays
const (
	OpDim Opcode = iota + 0x20
	OpLocalArray
	OpArrayGet
	OpArraySet
	OpPushArrayRef
	OpArrayParam
	OpCallOrIndex
)

// Arithmetic and logic
const (
	OpAdd Opcode = iota + 0x30
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpNeg
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNot
)

// Control flow
const (
	OpJump Opcode = iota + 0x50
	OpJumpIfFalse
	OpJumpIfTrue
	OpForCheck
	OpForNext
	OpGosub
	OpOnGoto
	OpOnGosub
	OpReturn
	OpReturnValue
	OpEndSub
	OpCall
	OpBuiltin
	OpEnd
)

// Input/output and runtime services
const (
	OpPrint Opcode = iota + 0x70
	OpPrintUsing
	OpPrintNewline
	OpPrintTab
	OpInput
	OpCls
	OpRead
	OpRestore
	OpWait
	OpRandomize
	OpError
	OpCompile
)

// Graphics
const (
	OpOpenWindow Opcode = iota + 0x90
	OpCloseWindow
	OpClearWindow
	OpColor
	OpSetRGB
	OpDot
	OpLine
	OpRect
	OpTriangle
	OpGTriangle
	OpCircle
	OpText
	OpSetDrawBuf
	OpSetDispBuf
	OpFlip
)

// Input flags carried in Instruction.Arg2 of OpInput.
const (
	InputLine  = 1 << iota // take the whole line as one field
	InputFirst             // first variable of the statement; prints the prompt
	InputLast              // last variable; discards unread fields
)

// Declare scopes carried in Instruction.Arg2.
const (
	ScopeGlobal = iota
	ScopeLocal
	ScopeStatic
)

// ---------------------------------------------------------------------------
// Instruction
// ---------------------------------------------------------------------------

// Instruction is one compiled opcode, its operands and the source line it
// came from. Which operand fields are meaningful depends on Op; see
// opcodeTable.
type Instruction struct {
	Line    int     `cbor:"l"`
	Op      Opcode  `cbor:"o"`
	Stmt    bool    `cbor:"t,omitempty"` // first instruction of a statement
	Arg     int     `cbor:"a,omitempty"`
	Arg2    int     `cbor:"b,omitempty"`
	Num     float64 `cbor:"n,omitempty"`
	Str     string  `cbor:"s,omitempty"`
	Targets []int   `cbor:"g,omitempty"`
}

func (in Instruction) String() string {
	info := in.Op.Info()
	s := info.Name
	switch info.Operands {
	case operandNone:
	case operandNum:
		s += fmt.Sprintf(" %g", in.Num)
	case operandStr:
		s += fmt.Sprintf(" %q", in.Str)
	case operandArg:
		s += fmt.Sprintf(" %d", in.Arg)
	case operandArgs:
		s += fmt.Sprintf(" %d %d", in.Arg, in.Arg2)
	case operandName:
		s += fmt.Sprintf(" %s %d", in.Str, in.Arg)
	case operandNameArgs:
		s += fmt.Sprintf(" %s %d %d", in.Str, in.Arg, in.Arg2)
	case operandTargets:
		s += fmt.Sprintf(" %v", in.Targets)
	}
	return s
}

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

type operandKind uint8

const (
	operandNone     operandKind = iota
	operandNum                  // Num
	operandStr                  // Str
	operandArg                  // Arg
	operandArgs                 // Arg, Arg2
	operandName                 // Str, Arg
	operandNameArgs             // Str, Arg, Arg2
	operandTargets              // Targets
)

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name     string
	Operands operandKind
	Jumps    bool // Arg (or Arg2 for FOR ops) is an instruction index
}

var opcodeTable = map[Opcode]OpcodeInfo{
	OpNOP:     {"NOP", operandNone, false},
	OpPushNum: {"PUSH_NUM", operandNum, false},
	OpPushStr: {"PUSH_STR", operandStr, false},
	OpPop:     {"POP", operandNone, false},

	OpLoadNum:  {"LOAD_NUM", operandArg, false},
	OpStoreNum: {"STORE_NUM", operandArg, false},
	OpLoadStr:  {"LOAD_STR", operandArg, false},
	OpStoreStr: {"STORE_STR", operandArg, false},
	OpDeclare:  {"DECLARE", operandNameArgs, false},
	OpParam:    {"PARAM", operandNameArgs, false},

	OpDim:          {"DIM", operandName, false},
	OpLocalArray:   {"LOCAL_ARRAY", operandName, false},
	OpArrayGet:     {"ARRAY_GET", operandName, false},
	OpArraySet:     {"ARRAY_SET", operandName, false},
	OpPushArrayRef: {"PUSH_ARRAY_REF", operandStr, false},
	OpArrayParam:   {"ARRAY_PARAM", operandName, false},
	OpCallOrIndex:  {"CALL_OR_INDEX", operandName, false},

	OpAdd: {"ADD", operandNone, false},
	OpSub: {"SUB", operandNone, false},
	OpMul: {"MUL", operandNone, false},
	OpDiv: {"DIV", operandNone, false},
	OpMod: {"MOD", operandNone, false},
	OpPow: {"POW", operandNone, false},
	OpNeg: {"NEG", operandNone, false},
	OpEq:  {"EQ", operandNone, false},
	OpNe:  {"NE", operandNone, false},
	OpLt:  {"LT", operandNone, false},
	OpLe:  {"LE", operandNone, false},
	OpGt:  {"GT", operandNone, false},
	OpGe:  {"GE", operandNone, false},
	OpAnd: {"AND", operandNone, false},
	OpOr:  {"OR", operandNone, false},
	OpNot: {"NOT", operandNone, false},

	OpJump:        {"JUMP", operandName, true},
	OpJumpIfFalse: {"JUMP_IF_FALSE", operandName, true},
	OpJumpIfTrue:  {"JUMP_IF_TRUE", operandName, true},
	OpForCheck:    {"FOR_CHECK", operandNameArgs, true},
	OpForNext:     {"FOR_NEXT", operandNameArgs, true},
	OpGosub:       {"GOSUB", operandName, true},
	OpOnGoto:      {"ON_GOTO", operandTargets, false},
	OpOnGosub:     {"ON_GOSUB", operandTargets, false},
	OpReturn:      {"RETURN", operandName, false},
	OpReturnValue: {"RETURN_VALUE", operandName, false},
	OpEndSub:      {"END_SUB", operandName, false},
	OpCall:        {"CALL", operandName, false},
	OpBuiltin:     {"BUILTIN", operandArgs, false},
	OpEnd:         {"END", operandNone, false},

	OpPrint:        {"PRINT", operandNone, false},
	OpPrintUsing:   {"PRINT_USING", operandNone, false},
	OpPrintNewline: {"PRINT_NEWLINE", operandNone, false},
	OpPrintTab:     {"PRINT_TAB", operandNone, false},
	OpInput:        {"INPUT", operandNameArgs, false},
	OpCls:          {"CLS", operandNone, false},
	OpRead:         {"READ", operandArg, false},
	OpRestore:      {"RESTORE", operandName, false},
	OpWait:         {"WAIT", operandNone, false},
	OpRandomize:    {"RANDOMIZE", operandArg, false},
	OpError:        {"ERROR", operandNone, false},
	OpCompile:      {"COMPILE", operandNone, false},

	OpOpenWindow:  {"OPEN_WINDOW", operandNone, false},
	OpCloseWindow: {"CLOSE_WINDOW", operandNone, false},
	OpClearWindow: {"CLEAR_WINDOW", operandNone, false},
	OpColor:       {"COLOR", operandArg, false},
	OpSetRGB:      {"SETRGB", operandNone, false},
	OpDot:         {"DOT", operandNone, false},
	OpLine:        {"LINE", operandNone, false},
	OpRect:        {"RECT", operandArg, false},
	OpTriangle:    {"TRIANGLE", operandArg, false},
	OpGTriangle:   {"GTRIANGLE", operandNone, false},
	OpCircle:      {"CIRCLE", operandArg, false},
	OpText:        {"TEXT", operandNone, false},
	OpSetDrawBuf:  {"SETDRAWBUF", operandNone, false},
	OpSetDispBuf:  {"SETDISPBUF", operandNone, false},
	OpFlip:        {"FLIP", operandNone, false},
}

// Info returns metadata for the opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op))}
}

func (op Opcode) String() string {
	return op.Info().Name
}
