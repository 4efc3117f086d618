package compiler

import (
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for BASIC source
// ---------------------------------------------------------------------------

// Lexer tokenizes BASIC source code. The source is treated as bytes; the
// language's character set is 8-bit.
type Lexer struct {
	input     string
	pos       int  // current position in input
	line      int  // current line (1-based)
	lineStart int  // offset of current line start
	fresh     bool // nothing but blanks seen on this line yet
	version   int
}

// NewLexer creates a new lexer for the given input and language version.
func NewLexer(input string, version int) *Lexer {
	return &Lexer{
		input:   input,
		line:    1,
		fresh:   true,
		version: version,
	}
}

func (l *Lexer) peek(off int) byte {
	if l.pos+off >= len(l.input) {
		return 0
	}
	return l.input[l.pos+off]
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.pos - l.lineStart + 1,
	}
}

func (l *Lexer) skipToEOL() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.pos++
	}
}

// skipBlanksAndComments skips spaces, tabs, carriage returns and comments.
// Newlines are tokens and are never skipped here.
func (l *Lexer) skipBlanksAndComments() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#' && l.fresh:
			l.skipToEOL()
		case c == '\'':
			l.skipToEOL()
		case c == '/' && l.peek(1) == '/':
			l.skipToEOL()
		case (c == 'r' || c == 'R') && l.isRem():
			l.skipToEOL()
		default:
			return
		}
	}
}

func (l *Lexer) isRem() bool {
	if len(l.input)-l.pos < 3 || !strings.EqualFold(l.input[l.pos:l.pos+3], "rem") {
		return false
	}
	if l.pos > 0 && isWordByte(l.input[l.pos-1]) {
		return false
	}
	next := l.peek(3)
	return !isWordByte(next) && next != '$'
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipBlanksAndComments()

	pos := l.position()
	lineStart := l.fresh
	tok := func(t TokenType, lit string) Token {
		l.fresh = t == TokenNewline
		return Token{Type: t, Literal: lit, Pos: pos, LineStart: lineStart}
	}

	if l.pos >= len(l.input) {
		return tok(TokenEOF, "")
	}

	c := l.input[l.pos]
	switch c {
	case '\n':
		l.pos++
		l.line++
		l.lineStart = l.pos
		return tok(TokenNewline, "\n")
	case ':':
		l.pos++
		return tok(TokenColon, ":")
	case ';':
		l.pos++
		return tok(TokenSemicolon, ";")
	case ',':
		l.pos++
		return tok(TokenComma, ",")
	case '(':
		l.pos++
		return tok(TokenLParen, "(")
	case ')':
		l.pos++
		return tok(TokenRParen, ")")
	case '?':
		l.pos++
		return tok(TokenQuestion, "?")
	case '+':
		l.pos++
		return tok(TokenPlus, "+")
	case '-':
		l.pos++
		return tok(TokenMinus, "-")
	case '*':
		l.pos++
		return tok(TokenStar, "*")
	case '/':
		l.pos++
		return tok(TokenSlash, "/")
	case '^':
		l.pos++
		return tok(TokenCaret, "^")
	case '=':
		l.pos++
		return tok(TokenEq, "=")
	case '<':
		l.pos++
		switch l.peek(0) {
		case '>':
			l.pos++
			return tok(TokenNe, "<>")
		case '=':
			l.pos++
			return tok(TokenLe, "<=")
		}
		return tok(TokenLt, "<")
	case '>':
		l.pos++
		if l.peek(0) == '=' {
			l.pos++
			return tok(TokenGe, ">=")
		}
		return tok(TokenGt, ">")
	case '"':
		s, ok := l.readString()
		if !ok {
			return tok(TokenError, "unterminated string")
		}
		return tok(TokenString, s)
	}

	if isDigit(c) || (c == '.' && isDigit(l.peek(1))) {
		start := l.pos
		x, ok := l.readNumber()
		t := tok(TokenNumber, l.input[start:l.pos])
		if !ok {
			t.Type = TokenError
			t.Literal = "malformed number " + t.Literal
		}
		t.Num = x
		return t
	}

	if isLetter(c) {
		start := l.pos
		for l.pos < len(l.input) && isWordByte(l.input[l.pos]) {
			l.pos++
		}
		if l.peek(0) == '$' {
			l.pos++
		}
		typ, lit := classifyWord(l.input[start:l.pos], l.version)
		t := tok(typ, lit)
		if typ == TokenKeyword && lit == "docu" {
			from := l.pos
			l.skipToEOL()
			t.Text = strings.TrimSpace(l.input[from:l.pos])
		}
		return t
	}

	l.pos++
	return tok(TokenError, "unexpected character "+strconv.QuoteRune(rune(c)))
}

// readString reads a double-quoted string with backslash escapes.
func (l *Lexer) readString() (string, bool) {
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case '"':
			l.pos++
			return sb.String(), true
		case '\n':
			return "", false
		case '\\':
			l.pos++
			switch l.peek(0) {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte('\\')
				continue
			}
			l.pos++
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return "", false
}

// readNumber reads a decimal or 0x-prefixed hexadecimal number.
func (l *Lexer) readNumber() (float64, bool) {
	start := l.pos
	if l.peek(0) == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') {
		l.pos += 2
		for isHexDigit(l.peek(0)) {
			l.pos++
		}
		n, err := strconv.ParseUint(l.input[start+2:l.pos], 16, 64)
		return float64(n), err == nil
	}
	for isDigit(l.peek(0)) {
		l.pos++
	}
	if l.peek(0) == '.' {
		l.pos++
		for isDigit(l.peek(0)) {
			l.pos++
		}
	}
	if e := l.peek(0); e == 'e' || e == 'E' {
		off := 1
		if s := l.peek(1); s == '+' || s == '-' {
			off = 2
		}
		if isDigit(l.peek(off)) {
			l.pos += off
			for isDigit(l.peek(0)) {
				l.pos++
			}
		}
	}
	x, err := strconv.ParseFloat(l.input[start:l.pos], 64)
	return x, err == nil
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isLetter(c byte) bool   { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isWordByte(c byte) bool { return isLetter(c) || isDigit(c) || c == '_' }

func isHexDigit(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
