package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/basil/vm"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for BASIC
// ---------------------------------------------------------------------------

// SyntaxError is a parse or compile failure with its source position.
type SyntaxError = vm.SyntaxError

// DefaultVersion is the language version used when none is given.
const DefaultVersion = 2

// ParseOptions configures a parse.
type ParseOptions struct {
	// Version selects the keyword set (1 or 2).
	Version int
	// KnownLabels and KnownSubroutines belong to the running program when
	// compiling at runtime.
	KnownLabels      []string
	KnownSubroutines []string
	// Symbols seeds the symbol table so existing ids keep their meaning.
	Symbols *vm.SymbolTable
}

// bailout unwinds the parser after the first syntax error.
type bailout struct{}

// Parser parses BASIC source into an AST.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	syms      *vm.SymbolTable
	prog      *Program
	err       *SyntaxError

	sub     *SubDef           // subroutine being parsed
	statics map[string]string // static name -> qualified name in sub
	depth   int               // nesting of block statements
	loops   int               // nesting of loops
}

// Parse parses source into a syntax tree and the symbol table built while
// parsing. Errors are returned as *SyntaxError.
func Parse(source string, opts ParseOptions) (prog *Program, syms *vm.SymbolTable, err error) {
	if opts.Version == 0 {
		opts.Version = DefaultVersion
	}
	p := &Parser{
		lexer: NewLexer(source, opts.Version),
		syms:  opts.Symbols.Clone(),
		prog: &Program{
			Subs:        make(map[string]*SubDef),
			Arrays:      make(map[string]bool),
			Labels:      make(map[string]Position),
			KnownLabels: make(map[string]bool),
			KnownSubs:   make(map[string]bool),
			Version:     opts.Version,
		},
	}
	for _, l := range opts.KnownLabels {
		p.prog.KnownLabels[l] = true
	}
	for _, s := range opts.KnownSubroutines {
		p.prog.KnownSubs[s] = true
	}

	defer func() {
		if r := recover(); r != nil {
			prog, syms, err = nil, nil, p.fault(r)
		}
	}()

	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	p.prog.Stmts = p.parseBlock(nil, "")
	return p.prog, p.syms, nil
}

// fault converts a recovered panic into the error Parse returns. Anything
// other than a bailout is an internal fault, reported at the current token.
func (p *Parser) fault(r any) error {
	if _, ok := r.(bailout); ok && p.err != nil {
		return p.err
	}
	tok := p.curToken
	return &SyntaxError{
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column,
		Msg:    fmt.Sprintf("internal parser error: %v", r),
	}
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// expect advances if the current token matches, otherwise fails.
func (p *Parser) expect(t TokenType) Token {
	tok := p.curToken
	if tok.Type != t {
		p.failf("expected %s", t)
	}
	p.nextToken()
	return tok
}

// expectKeyword advances past keyword kw or fails.
func (p *Parser) expectKeyword(kw string) {
	if !p.curToken.Is(kw) {
		p.failf("expected %q", kw)
	}
	p.nextToken()
}

// failf records a syntax error at the current token and unwinds.
func (p *Parser) failf(format string, args ...any) {
	p.failAt(p.curToken, format, args...)
}

func (p *Parser) failAt(tok Token, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	near := tok.Literal
	switch tok.Type {
	case TokenError:
		msg, near = tok.Literal, ""
	case TokenEOF:
		near = "end of program"
	case TokenNewline:
		near = "end of line"
	}
	p.err = &SyntaxError{Line: tok.Pos.Line, Column: tok.Pos.Column, Near: near, Msg: msg}
	panic(bailout{})
}

// ---------------------------------------------------------------------------
// Blocks and statement boundaries
// ---------------------------------------------------------------------------

// parseBlock parses statements until stop reports true at a statement
// start. With a nil stop it parses to the end of input; otherwise running
// into the end of input is an error naming what was missing.
func (p *Parser) parseBlock(stop func() bool, missing string) []Stmt {
	var out []Stmt
	for {
		for p.curTokenIs(TokenColon) || p.curTokenIs(TokenNewline) {
			p.nextToken()
		}
		if p.curTokenIs(TokenEOF) {
			if stop != nil {
				p.failf("missing %s", missing)
			}
			return out
		}
		if stop != nil && stop() {
			return out
		}
		if l := p.tryLineNumber(); l != nil {
			out = append(out, l)
			if p.atStatementEnd() {
				continue
			}
			if stop != nil && stop() {
				return out
			}
		}
		out = append(out, p.parseStatement())
		p.endStatement()
	}
}

// parseInline parses ':'-separated statements up to the end of the line
// or an else keyword, for single-line IF branches.
func (p *Parser) parseInline() []Stmt {
	var out []Stmt
	for {
		for p.curTokenIs(TokenColon) {
			p.nextToken()
		}
		if p.curTokenIs(TokenNewline) || p.curTokenIs(TokenEOF) || p.curToken.Is("else") {
			return out
		}
		out = append(out, p.parseStatement())
		p.endStatement()
	}
}

func (p *Parser) atStatementEnd() bool {
	switch p.curToken.Type {
	case TokenColon, TokenNewline, TokenEOF:
		return true
	}
	return p.curToken.Is("else")
}

func (p *Parser) endStatement() {
	if !p.atStatementEnd() {
		p.failf("unexpected %s", p.curToken.Type)
	}
}

// tryLineNumber turns a number at the start of a physical line into a
// label.
func (p *Parser) tryLineNumber() Stmt {
	tok := p.curToken
	if tok.Type != TokenNumber || !tok.LineStart {
		return nil
	}
	if tok.Num != float64(int64(tok.Num)) || tok.Num < 0 {
		p.failf("line number must be a non-negative integer")
	}
	p.nextToken()
	name := labelName(tok)
	p.defineLabel(name, tok)
	return &LabelStmt{stmtNode: stmtNode{At: tok.Pos}, Name: name}
}

func labelName(tok Token) string {
	if tok.Type == TokenNumber {
		return strconv.FormatInt(int64(tok.Num), 10)
	}
	return tok.Literal
}

func (p *Parser) defineLabel(name string, tok Token) {
	if _, dup := p.prog.Labels[name]; dup || p.prog.KnownLabels[name] {
		p.failAt(tok, "duplicate label %s", name)
	}
	p.prog.Labels[name] = tok.Pos
}

// parseLabelRef reads a label reference: a line number or a name.
func (p *Parser) parseLabelRef() string {
	tok := p.curToken
	switch tok.Type {
	case TokenNumber, TokenIdent:
		p.nextToken()
		return labelName(tok)
	}
	p.failf("expected label")
	return ""
}

// ---------------------------------------------------------------------------
// Names
// ---------------------------------------------------------------------------

// resolve maps a name to its static qualification inside a subroutine.
func (p *Parser) resolve(name string) string {
	if q, ok := p.statics[name]; ok {
		return q
	}
	return name
}

func (p *Parser) variable(tok Token) *VarRef {
	name := p.resolve(tok.Literal)
	p.syms.Variable(name)
	return &VarRef{At: tok.Pos, Name: name}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() Stmt {
	tok := p.curToken
	at := stmtNode{At: tok.Pos}

	switch tok.Type {
	case TokenQuestion:
		p.nextToken()
		return p.parsePrint(at)
	case TokenIdent:
		return p.parseAssignOrCall(at)
	case TokenBuiltin:
		call, ok := p.parsePrimary().(*CallExpr)
		if !ok {
			p.failAt(tok, "unexpected %s", tok.Literal)
		}
		return &CallStmt{stmtNode: at, Call: call}
	case TokenKeyword:
	default:
		p.failf("unexpected %s", tok.Type)
	}

	switch tok.Literal {
	case "let":
		p.nextToken()
		if !p.curTokenIs(TokenIdent) {
			p.failf("expected variable after let")
		}
		return p.parseAssignOrCall(at)
	case "print":
		p.nextToken()
		return p.parsePrint(at)
	case "input":
		p.nextToken()
		return p.parseInput(at, false)
	case "line":
		p.nextToken()
		if p.curToken.Is("input") {
			p.nextToken()
			return p.parseInput(at, true)
		}
		return p.parseGraphicsArgs(at, vm.OpLine, false)
	case "if":
		return p.parseIf(at)
	case "while":
		return p.parseWhile(at)
	case "repeat":
		return p.parseRepeat(at)
	case "do":
		return p.parseDo(at)
	case "for":
		return p.parseFor(at)
	case "break", "continue":
		if p.loops == 0 {
			p.failf("%s outside of a loop", tok.Literal)
		}
		p.nextToken()
		if tok.Literal == "break" {
			return &BreakStmt{stmtNode: at}
		}
		return &ContinueStmt{stmtNode: at}
	case "goto":
		p.nextToken()
		return &GotoStmt{stmtNode: at, Label: p.parseLabelRef()}
	case "gosub":
		p.nextToken()
		return &GosubStmt{stmtNode: at, Label: p.parseLabelRef()}
	case "on":
		return p.parseOn(at)
	case "return":
		p.nextToken()
		s := &ReturnStmt{stmtNode: at}
		if !p.atStatementEnd() {
			s.Value = p.parseExpr()
		}
		return s
	case "sub":
		return p.parseSub(at)
	case "local", "static":
		return p.parseLocal(at, tok.Literal == "static")
	case "dim", "redim":
		p.nextToken()
		return p.parseDim(at)
	case "data":
		p.nextToken()
		return p.parseData(at)
	case "read":
		p.nextToken()
		s := &ReadStmt{stmtNode: at}
		s.Targets = p.parseTargets()
		return s
	case "restore":
		p.nextToken()
		s := &RestoreStmt{stmtNode: at}
		if !p.atStatementEnd() {
			s.Label = p.parseLabelRef()
		}
		return s
	case "end":
		if p.peekToken.Is("sub") || p.peekToken.Is("if") {
			p.failf("end %s without matching %s", p.peekToken.Literal, p.peekToken.Literal)
		}
		p.nextToken()
		return &EndStmt{stmtNode: at}
	case "error":
		p.nextToken()
		return &ExprStmt{stmtNode: at, Op: vm.OpError, Value: p.parseExpr()}
	case "wait", "pause":
		p.nextToken()
		return &ExprStmt{stmtNode: at, Op: vm.OpWait, Value: p.parseExpr()}
	case "randomize":
		p.nextToken()
		s := &ExprStmt{stmtNode: at, Op: vm.OpRandomize}
		if !p.atStatementEnd() {
			s.Value = p.parseExpr()
		}
		return s
	case "compile":
		p.nextToken()
		return &ExprStmt{stmtNode: at, Op: vm.OpCompile, Value: p.parseExpr()}
	case "docu":
		p.nextToken()
		return &DocuStmt{stmtNode: at, Text: tok.Text}
	case "label":
		p.nextToken()
		name := p.curToken
		s := &LabelStmt{stmtNode: at, Name: p.parseLabelRef()}
		p.defineLabel(s.Name, name)
		return s
	case "cls":
		p.nextToken()
		return &ClsStmt{stmtNode: at}
	case "clear":
		p.nextToken()
		switch {
		case p.curToken.Is("screen"):
			p.nextToken()
			return &ClsStmt{stmtNode: at}
		case p.curToken.Is("window"):
			p.nextToken()
			return &GraphicsStmt{stmtNode: at, Op: vm.OpClearWindow}
		}
		p.failf("expected screen or window after clear")
	case "open", "close":
		p.nextToken()
		p.expectKeyword("window")
		if tok.Literal == "close" {
			return &GraphicsStmt{stmtNode: at, Op: vm.OpCloseWindow}
		}
		return p.parseGraphicsArgs(at, vm.OpOpenWindow, false)
	case "fill":
		p.nextToken()
		kw := p.curToken
		p.nextToken()
		switch kw.Literal {
		case "rectangle", "box":
			return p.parseGraphicsArgs(at, vm.OpRect, true)
		case "triangle":
			return p.parseGraphicsArgs(at, vm.OpTriangle, true)
		case "circle":
			return p.parseGraphicsArgs(at, vm.OpCircle, true)
		}
		p.failAt(kw, "expected rectangle, triangle or circle after fill")
	}

	if op, ok := graphicsKeywords[tok.Literal]; ok {
		p.nextToken()
		return p.parseGraphicsArgs(at, op, false)
	}
	p.failf("unexpected %s", tok.Literal)
	return nil
}

var graphicsKeywords = map[string]vm.Opcode{
	"color":      vm.OpColor,
	"colour":     vm.OpColor,
	"setrgb":     vm.OpSetRGB,
	"dot":        vm.OpDot,
	"rectangle":  vm.OpRect,
	"box":        vm.OpRect,
	"triangle":   vm.OpTriangle,
	"gtriangle":  vm.OpGTriangle,
	"circle":     vm.OpCircle,
	"text":       vm.OpText,
	"setdrawbuf": vm.OpSetDrawBuf,
	"setdispbuf": vm.OpSetDispBuf,
	"flip":       vm.OpFlip,
}

// graphicsArity lists the accepted operand counts per statement.
var graphicsArity = map[vm.Opcode][]int{
	vm.OpOpenWindow: {2},
	vm.OpColor:      {1, 3},
	vm.OpSetRGB:     {4},
	vm.OpDot:        {2},
	vm.OpLine:       {4},
	vm.OpRect:       {4},
	vm.OpTriangle:   {6},
	vm.OpGTriangle:  {9},
	vm.OpCircle:     {3},
	vm.OpText:       {3},
	vm.OpSetDrawBuf: {1},
	vm.OpSetDispBuf: {1},
	vm.OpFlip:       {0},
}

// parseGraphicsArgs reads a comma-separated operand list. "to" is
// accepted as a separator, as in "line 0,0 to 10,10".
func (p *Parser) parseGraphicsArgs(at stmtNode, op vm.Opcode, fill bool) Stmt {
	s := &GraphicsStmt{stmtNode: at, Op: op, Fill: fill}
	for !p.atStatementEnd() {
		s.Args = append(s.Args, p.parseExpr())
		if p.curTokenIs(TokenComma) || p.curToken.Is("to") {
			p.nextToken()
			continue
		}
		break
	}
	for _, n := range graphicsArity[op] {
		if n == len(s.Args) {
			return s
		}
	}
	name := strings.ToLower(op.String())
	p.failAt(Token{Type: TokenKeyword, Pos: at.At, Literal: name}, "%s takes %v arguments, got %d",
		name, graphicsArity[op], len(s.Args))
	return nil
}

// parseAssignOrCall handles statements that start with a name.
func (p *Parser) parseAssignOrCall(at stmtNode) Stmt {
	tok := p.curToken
	if p.peekToken.Type != TokenLParen {
		p.nextToken()
		target := p.variable(tok)
		p.expect(TokenEq)
		return &AssignStmt{stmtNode: at, Target: target, Value: p.parseExpr()}
	}
	call := p.parsePrimary().(*CallExpr)
	if p.curTokenIs(TokenEq) {
		p.nextToken()
		if len(call.Args) == 0 {
			p.failAt(tok, "missing array index")
		}
		return &AssignStmt{stmtNode: at, Target: call, Value: p.parseExpr()}
	}
	return &CallStmt{stmtNode: at, Call: call}
}

func (p *Parser) parsePrint(at stmtNode) Stmt {
	s := &PrintStmt{stmtNode: at}
	for !p.atStatementEnd() {
		var item PrintItem
		if !p.curTokenIs(TokenSemicolon) && !p.curTokenIs(TokenComma) {
			item.Expr = p.parseExpr()
			if p.curToken.Is("using") {
				p.nextToken()
				item.Using = p.parseExpr()
			}
		}
		switch {
		case p.curTokenIs(TokenSemicolon):
			item.Sep = ';'
			p.nextToken()
		case p.curTokenIs(TokenComma):
			item.Sep = ','
			p.nextToken()
		default:
			s.Items = append(s.Items, item)
			return s
		}
		s.Items = append(s.Items, item)
	}
	return s
}

func (p *Parser) parseInput(at stmtNode, line bool) Stmt {
	s := &InputStmt{stmtNode: at, Prompt: "?", Line: line}
	if p.curTokenIs(TokenString) && (p.peekToken.Type == TokenSemicolon || p.peekToken.Type == TokenComma) {
		s.Prompt = p.curToken.Literal
		p.nextToken()
		p.nextToken()
	}
	s.Targets = p.parseTargets()
	if line && (len(s.Targets) != 1 || !isStringTarget(s.Targets[0])) {
		p.failAt(Token{Type: TokenKeyword, Pos: at.At}, "line input needs exactly one string variable")
	}
	return s
}

// parseTargets reads a list of assignable places: variables and array
// elements.
func (p *Parser) parseTargets() []Expr {
	var out []Expr
	for {
		tok := p.curToken
		if tok.Type != TokenIdent {
			p.failf("expected variable")
		}
		if p.peekToken.Type == TokenLParen {
			call := p.parsePrimary().(*CallExpr)
			if len(call.Args) == 0 {
				p.failAt(tok, "missing array index")
			}
			out = append(out, call)
		} else {
			p.nextToken()
			out = append(out, p.variable(tok))
		}
		if !p.curTokenIs(TokenComma) {
			return out
		}
		p.nextToken()
	}
}

func isStringTarget(e Expr) bool {
	switch t := e.(type) {
	case *VarRef:
		return vm.IsStringName(t.Name)
	case *CallExpr:
		return vm.IsStringName(t.Name)
	}
	return false
}

func (p *Parser) parseIf(at stmtNode) Stmt {
	p.nextToken()
	s := &IfStmt{stmtNode: at, Cond: p.parseExpr()}
	if p.curToken.Is("then") {
		p.nextToken()
	}

	if !p.curTokenIs(TokenNewline) && !p.curTokenIs(TokenEOF) {
		s.Then = p.parseBranch()
		if p.curToken.Is("else") {
			p.nextToken()
			s.Else = p.parseBranch()
		}
		return s
	}

	p.depth++
	defer func() { p.depth-- }()
	isEnd := func() bool {
		c := p.curToken
		return c.Is("endif") || c.Is("fi") || c.Is("end") && p.peekToken.Is("if")
	}
	stop := func() bool {
		c := p.curToken
		return c.Is("else") || c.Is("elseif") || c.Is("elsif") || isEnd()
	}
	s.Then = p.parseBlock(stop, "endif")
	for p.curToken.Is("elseif") || p.curToken.Is("elsif") {
		p.nextToken()
		arm := ElseIf{Cond: p.parseExpr()}
		if p.curToken.Is("then") {
			p.nextToken()
		}
		arm.Body = p.parseBlock(stop, "endif")
		s.ElseIfs = append(s.ElseIfs, arm)
	}
	if p.curToken.Is("else") {
		p.nextToken()
		s.Else = p.parseBlock(isEnd, "endif")
	}
	if p.curToken.Is("end") {
		p.nextToken()
	}
	p.nextToken()
	return s
}

// parseBranch parses one arm of a single-line IF. A bare line number is
// a goto.
func (p *Parser) parseBranch() []Stmt {
	if tok := p.curToken; tok.Type == TokenNumber {
		p.nextToken()
		return []Stmt{&GotoStmt{stmtNode: stmtNode{At: tok.Pos}, Label: labelName(tok)}}
	}
	return p.parseInline()
}

func (p *Parser) loopBody(stop func() bool, missing string) []Stmt {
	p.depth++
	p.loops++
	body := p.parseBlock(stop, missing)
	p.loops--
	p.depth--
	return body
}

func (p *Parser) parseWhile(at stmtNode) Stmt {
	p.nextToken()
	s := &WhileStmt{stmtNode: at, Cond: p.parseExpr()}
	s.Body = p.loopBody(func() bool { return p.curToken.Is("wend") }, "wend")
	s.End = p.curToken.Pos
	p.nextToken()
	return s
}

func (p *Parser) parseRepeat(at stmtNode) Stmt {
	p.nextToken()
	s := &RepeatStmt{stmtNode: at}
	s.Body = p.loopBody(func() bool { return p.curToken.Is("until") }, "until")
	s.End = p.curToken.Pos
	p.nextToken()
	s.Cond = p.parseExpr()
	return s
}

func (p *Parser) parseDo(at stmtNode) Stmt {
	p.nextToken()
	s := &DoStmt{stmtNode: at}
	s.Body = p.loopBody(func() bool { return p.curToken.Is("loop") }, "loop")
	s.End = p.curToken.Pos
	p.nextToken()
	return s
}

func (p *Parser) parseFor(at stmtNode) Stmt {
	p.nextToken()
	tok := p.curToken
	if tok.Type != TokenIdent || vm.IsStringName(tok.Literal) {
		p.failf("expected numeric loop variable")
	}
	p.nextToken()
	s := &ForStmt{stmtNode: at, Var: p.variable(tok).Name}
	p.expect(TokenEq)
	s.Start = p.parseExpr()
	p.expectKeyword("to")
	s.Limit = p.parseExpr()
	if p.curToken.Is("step") {
		p.nextToken()
		s.Step = p.parseExpr()
	}
	s.Body = p.loopBody(func() bool { return p.curToken.Is("next") }, "next")
	s.End = p.curToken.Pos
	p.nextToken()
	if p.curTokenIs(TokenIdent) {
		if p.resolve(p.curToken.Literal) != s.Var {
			p.failf("next %s does not match for %s", p.curToken.Literal, tok.Literal)
		}
		p.nextToken()
	}
	return s
}

func (p *Parser) parseOn(at stmtNode) Stmt {
	p.nextToken()
	s := &OnStmt{stmtNode: at, Index: p.parseExpr()}
	switch {
	case p.curToken.Is("goto"):
	case p.curToken.Is("gosub"):
		s.Gosub = true
	default:
		p.failf("expected goto or gosub")
	}
	p.nextToken()
	for {
		s.Labels = append(s.Labels, p.parseLabelRef())
		if !p.curTokenIs(TokenComma) {
			return s
		}
		p.nextToken()
	}
}

func (p *Parser) parseSub(at stmtNode) Stmt {
	if p.sub != nil || p.depth > 0 {
		p.failf("subroutine definitions cannot be nested")
	}
	p.nextToken()
	nameTok := p.curToken
	if nameTok.Type != TokenIdent {
		p.failf("expected subroutine name")
	}
	if _, dup := p.prog.Subs[nameTok.Literal]; dup {
		p.failf("subroutine %s already defined", nameTok.Literal)
	}
	p.nextToken()
	s := &SubDef{stmtNode: at, Name: nameTok.Literal}
	p.syms.Names.Intern(s.Name)
	p.prog.Subs[s.Name] = s

	p.expect(TokenLParen)
	for !p.curTokenIs(TokenRParen) {
		tok := p.expect(TokenIdent)
		prm := Param{Name: tok.Literal}
		if p.curTokenIs(TokenLParen) && p.peekToken.Type == TokenRParen {
			p.nextToken()
			p.nextToken()
			prm.Array = true
			p.syms.Names.Intern(prm.Name)
			p.prog.Arrays[prm.Name] = true
		} else {
			p.syms.Variable(prm.Name)
		}
		s.Params = append(s.Params, prm)
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(TokenRParen)

	p.sub = s
	p.statics = make(map[string]string)
	s.Body = p.parseBlock(func() bool {
		return p.curToken.Is("end") && p.peekToken.Is("sub")
	}, "end sub")
	s.End = p.curToken.Pos
	p.nextToken()
	p.nextToken()
	p.sub = nil
	p.statics = nil
	return s
}

func (p *Parser) parseLocal(at stmtNode, static bool) Stmt {
	kw := p.curToken.Literal
	if p.sub == nil {
		p.failf("%s outside of a subroutine", kw)
	}
	p.nextToken()
	s := &LocalStmt{stmtNode: at, Static: static}
	for {
		d := p.parseDecl(false)
		if static {
			q := p.sub.Name + "." + d.Name
			p.statics[d.Name] = q
			d.Name = q
		}
		if d.Array {
			p.syms.Names.Intern(d.Name)
			p.prog.Arrays[d.Name] = true
		} else {
			p.syms.Variable(d.Name)
		}
		s.Decls = append(s.Decls, d)
		if !p.curTokenIs(TokenComma) {
			return s
		}
		p.nextToken()
	}
}

func (p *Parser) parseDim(at stmtNode) Stmt {
	s := &DimStmt{stmtNode: at}
	for {
		d := p.parseDecl(true)
		d.Name = p.resolve(d.Name)
		p.syms.Names.Intern(d.Name)
		p.prog.Arrays[d.Name] = true
		s.Decls = append(s.Decls, d)
		if !p.curTokenIs(TokenComma) {
			return s
		}
		p.nextToken()
	}
}

// parseDecl reads name, name(), or name(bounds...). needDims requires an
// array with at least one bound.
func (p *Parser) parseDecl(needDims bool) Decl {
	tok := p.expect(TokenIdent)
	d := Decl{At: tok.Pos, Name: tok.Literal}
	if p.curTokenIs(TokenLParen) {
		p.nextToken()
		d.Array = true
		d.Dims = []Expr{}
		for !p.curTokenIs(TokenRParen) {
			d.Dims = append(d.Dims, p.parseExpr())
			if !p.curTokenIs(TokenComma) {
				break
			}
			p.nextToken()
		}
		p.expect(TokenRParen)
	}
	if needDims && len(d.Dims) == 0 {
		p.failAt(tok, "dim needs array bounds")
	}
	if len(d.Dims) > vm.MaxArrayDims {
		p.failAt(tok, "too many dimensions for %s", d.Name)
	}
	return d
}

func (p *Parser) parseData(at stmtNode) Stmt {
	s := &DataStmt{stmtNode: at}
	for {
		neg := false
		if p.curTokenIs(TokenMinus) {
			neg = true
			p.nextToken()
		}
		tok := p.curToken
		switch {
		case tok.Type == TokenNumber && neg:
			s.Values = append(s.Values, vm.Num(-tok.Num))
		case tok.Type == TokenNumber:
			s.Values = append(s.Values, vm.Num(tok.Num))
		case tok.Type == TokenString && !neg:
			s.Values = append(s.Values, vm.Str(tok.Literal))
		default:
			p.failf("data items must be literals")
		}
		p.nextToken()
		if !p.curTokenIs(TokenComma) {
			return s
		}
		p.nextToken()
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *Parser) parseExpr() Expr {
	return p.parseOr()
}

func (p *Parser) binaryKeyword(word string, next func() Expr) Expr {
	left := next()
	for p.curToken.Is(word) {
		tok := p.curToken
		p.nextToken()
		left = &BinaryExpr{At: tok.Pos, Op: TokenKeyword, Word: word, Left: left, Right: next()}
	}
	return left
}

func (p *Parser) parseOr() Expr {
	return p.binaryKeyword("or", p.parseAnd)
}

func (p *Parser) parseAnd() Expr {
	return p.binaryKeyword("and", p.parseNot)
}

func (p *Parser) parseNot() Expr {
	if tok := p.curToken; tok.Is("not") {
		p.nextToken()
		return &UnaryExpr{At: tok.Pos, Op: TokenKeyword, X: p.parseNot()}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() Expr {
	left := p.parseAdditive()
	for {
		tok := p.curToken
		switch tok.Type {
		case TokenEq, TokenNe, TokenLt, TokenLe, TokenGt, TokenGe:
			p.nextToken()
			left = &BinaryExpr{At: tok.Pos, Op: tok.Type, Left: left, Right: p.parseAdditive()}
		default:
			return left
		}
	}
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for {
		tok := p.curToken
		switch tok.Type {
		case TokenPlus, TokenMinus:
			p.nextToken()
			left = &BinaryExpr{At: tok.Pos, Op: tok.Type, Left: left, Right: p.parseMultiplicative()}
		default:
			return left
		}
	}
}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parseUnary()
	for {
		tok := p.curToken
		switch {
		case tok.Type == TokenStar || tok.Type == TokenSlash:
			p.nextToken()
			left = &BinaryExpr{At: tok.Pos, Op: tok.Type, Left: left, Right: p.parseUnary()}
		case tok.Is("mod"):
			p.nextToken()
			left = &BinaryExpr{At: tok.Pos, Op: TokenKeyword, Word: "mod", Left: left, Right: p.parseUnary()}
		default:
			return left
		}
	}
}

func (p *Parser) parseUnary() Expr {
	tok := p.curToken
	switch tok.Type {
	case TokenMinus:
		p.nextToken()
		return &UnaryExpr{At: tok.Pos, Op: TokenMinus, X: p.parseUnary()}
	case TokenPlus:
		p.nextToken()
		return p.parseUnary()
	}
	return p.parsePower()
}

// parsePower binds tighter than unary minus and is right associative.
func (p *Parser) parsePower() Expr {
	base := p.parsePrimary()
	if tok := p.curToken; tok.Type == TokenCaret {
		p.nextToken()
		return &BinaryExpr{At: tok.Pos, Op: TokenCaret, Left: base, Right: p.parseUnary()}
	}
	return base
}

func (p *Parser) parsePrimary() Expr {
	tok := p.curToken
	switch tok.Type {
	case TokenNumber:
		p.nextToken()
		return &NumberLit{At: tok.Pos, Value: tok.Num}
	case TokenString:
		p.nextToken()
		return &StringLit{At: tok.Pos, Value: tok.Literal}
	case TokenLParen:
		p.nextToken()
		e := p.parseExpr()
		p.expect(TokenRParen)
		return e
	case TokenIdent:
		p.nextToken()
		if !p.curTokenIs(TokenLParen) {
			return p.variable(tok)
		}
		name := p.resolve(tok.Literal)
		p.syms.Names.Intern(name)
		return &CallExpr{At: tok.Pos, Name: name, Args: p.parseArgs(), Parens: true}
	case TokenBuiltin:
		p.nextToken()
		b, _ := vm.LookupBuiltin(tok.Literal)
		info := b.Info()
		call := &CallExpr{At: tok.Pos, Name: tok.Literal}
		if p.curTokenIs(TokenLParen) {
			call.Parens = true
			call.Args = p.parseArgs()
		}
		if len(call.Args) < info.MinArgs || len(call.Args) > info.MaxArgs() {
			p.failAt(tok, "wrong number of arguments for %s", tok.Literal)
		}
		return call
	case TokenError:
		p.failf("%s", tok.Literal)
	}
	p.failf("unexpected %s", tok.Type)
	return nil
}

// parseArgs reads a parenthesized, comma-separated argument list.
func (p *Parser) parseArgs() []Expr {
	p.expect(TokenLParen)
	var args []Expr
	for !p.curTokenIs(TokenRParen) {
		args = append(args, p.parseExpr())
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(TokenRParen)
	return args
}
