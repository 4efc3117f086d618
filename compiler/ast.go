package compiler

import "github.com/chazu/basil/vm"

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for BASIC programs
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// NumberLit represents a numeric literal.
type NumberLit struct {
	At    Position
	Value float64
}

func (n *NumberLit) Pos() Position { return n.At }
func (n *NumberLit) node()         {}
func (n *NumberLit) expr()         {}

// StringLit represents a string literal.
type StringLit struct {
	At    Position
	Value string
}

func (n *StringLit) Pos() Position { return n.At }
func (n *StringLit) node()         {}
func (n *StringLit) expr()         {}

// VarRef is a scalar variable. Name is already scope-qualified for
// static variables.
type VarRef struct {
	At   Position
	Name string
}

func (n *VarRef) Pos() Position { return n.At }
func (n *VarRef) node()         {}
func (n *VarRef) expr()         {}

// CallExpr is name(args): a built-in, a subroutine call or an array
// element. Parens is false for a built-in used without parentheses.
type CallExpr struct {
	At     Position
	Name   string
	Args   []Expr
	Parens bool
}

func (n *CallExpr) Pos() Position { return n.At }
func (n *CallExpr) node()         {}
func (n *CallExpr) expr()         {}

// UnaryExpr is -x or not x.
type UnaryExpr struct {
	At Position
	Op TokenType // TokenMinus, or TokenKeyword for not
	X  Expr
}

func (n *UnaryExpr) Pos() Position { return n.At }
func (n *UnaryExpr) node()         {}
func (n *UnaryExpr) expr()         {}

// BinaryExpr is a binary operation. Keyword operators (and, or, mod) use
// TokenKeyword with Word set.
type BinaryExpr struct {
	At    Position
	Op    TokenType
	Word  string
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Pos() Position { return n.At }
func (n *BinaryExpr) node()         {}
func (n *BinaryExpr) expr()         {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// stmtNode is embedded by every statement for its position.
type stmtNode struct {
	At Position
}

func (n *stmtNode) Pos() Position { return n.At }
func (n *stmtNode) node()         {}
func (n *stmtNode) stmt()         {}

// LabelStmt marks a jump and RESTORE target.
type LabelStmt struct {
	stmtNode
	Name string
}

// AssignStmt stores Value into Target, a *VarRef or an array *CallExpr.
type AssignStmt struct {
	stmtNode
	Target Expr
	Value  Expr
}

// PrintItem is one expression of a PRINT list. Sep is the separator
// following it: ';', ',' or 0.
type PrintItem struct {
	Expr  Expr
	Using Expr
	Sep   byte
}

// PrintStmt prints a list of items.
type PrintStmt struct {
	stmtNode
	Items []PrintItem
}

// InputStmt reads into Targets. Line is set for LINE INPUT.
type InputStmt struct {
	stmtNode
	Prompt  string
	Line    bool
	Targets []Expr
}

// ElseIf is one elseif arm.
type ElseIf struct {
	Cond Expr
	Body []Stmt
}

// IfStmt is a single- or multi-line conditional.
type IfStmt struct {
	stmtNode
	Cond    Expr
	Then    []Stmt
	ElseIfs []ElseIf
	Else    []Stmt
}

// WhileStmt is while ... wend.
type WhileStmt struct {
	stmtNode
	Cond Expr
	Body []Stmt
	End  Position
}

// RepeatStmt is repeat ... until.
type RepeatStmt struct {
	stmtNode
	Body []Stmt
	Cond Expr
	End  Position
}

// DoStmt is do ... loop.
type DoStmt struct {
	stmtNode
	Body []Stmt
	End  Position
}

// ForStmt is for ... next. Step is nil for the default step of 1.
type ForStmt struct {
	stmtNode
	Var   string
	Start Expr
	Limit Expr
	Step  Expr
	Body  []Stmt
	End   Position
}

// BreakStmt leaves the innermost loop.
type BreakStmt struct{ stmtNode }

// ContinueStmt starts the next iteration of the innermost loop.
type ContinueStmt struct{ stmtNode }

// GotoStmt jumps to Label.
type GotoStmt struct {
	stmtNode
	Label string
}

// GosubStmt calls Label as a subroutine.
type GosubStmt struct {
	stmtNode
	Label string
}

// OnStmt is on e goto/gosub l1, l2, ...
type OnStmt struct {
	stmtNode
	Index  Expr
	Gosub  bool
	Labels []string
}

// ReturnStmt returns from a gosub or a subroutine. Value may be nil.
type ReturnStmt struct {
	stmtNode
	Value Expr
}

// Param is one subroutine parameter.
type Param struct {
	Name  string
	Array bool
}

// SubDef defines a subroutine.
type SubDef struct {
	stmtNode
	Name   string
	Params []Param
	Body   []Stmt
	End    Position
}

// Decl is one name in a dim, local or static list. Dims is non-nil for
// arrays; an array declared without bounds has an empty Dims.
type Decl struct {
	At    Position
	Name  string
	Array bool
	Dims  []Expr
}

// DimStmt dimensions global (or already local) arrays.
type DimStmt struct {
	stmtNode
	Decls []Decl
}

// LocalStmt declares LOCAL or STATIC names inside a subroutine.
type LocalStmt struct {
	stmtNode
	Static bool
	Decls  []Decl
}

// DataStmt holds literal values for READ.
type DataStmt struct {
	stmtNode
	Values []vm.Value
}

// ReadStmt reads DATA into Targets.
type ReadStmt struct {
	stmtNode
	Targets []Expr
}

// RestoreStmt resets the data pointer, optionally to a label.
type RestoreStmt struct {
	stmtNode
	Label string
}

// EndStmt stops the program.
type EndStmt struct{ stmtNode }

// ExprStmt is a statement with a single operand: error, wait, randomize
// and compile. Value is nil for a bare randomize.
type ExprStmt struct {
	stmtNode
	Op    vm.Opcode
	Value Expr
}

// DocuStmt carries documentation text.
type DocuStmt struct {
	stmtNode
	Text string
}

// ClsStmt clears the text console.
type ClsStmt struct{ stmtNode }

// GraphicsStmt is a drawing or window statement.
type GraphicsStmt struct {
	stmtNode
	Op   vm.Opcode
	Args []Expr
	Fill bool
}

// CallStmt is a subroutine or built-in called for its side effects.
type CallStmt struct {
	stmtNode
	Call *CallExpr
}

// ---------------------------------------------------------------------------
// Program
// ---------------------------------------------------------------------------

// Program is a parsed compilation unit.
type Program struct {
	Stmts []Stmt
	// Subs lists every subroutine defined in the unit.
	Subs map[string]*SubDef
	// Arrays lists every array name the unit dimensions or declares.
	Arrays map[string]bool
	// Labels lists every label the unit defines.
	Labels map[string]Position
	// KnownLabels and KnownSubs come from the running program.
	KnownLabels map[string]bool
	KnownSubs   map[string]bool
	Version     int
}
