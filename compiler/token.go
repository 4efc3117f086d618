package compiler

import (
	"fmt"
	"strings"

	"github.com/chazu/basil/vm"
)

// ---------------------------------------------------------------------------
// Token types for the BASIC lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError
	TokenNewline

	// Literals and names
	TokenNumber  // 42, 1.5, .5, 1e-3, 0xFF
	TokenString  // "hello"
	TokenIdent   // foo, name$
	TokenKeyword // print, for, ... (Literal is lower-cased)
	TokenBuiltin // sin, left$, ... (Literal is lower-cased)

	// Delimiters
	TokenColon     // :
	TokenSemicolon // ;
	TokenComma     // ,
	TokenLParen    // (
	TokenRParen    // )
	TokenQuestion  // ? (print)

	// Operators
	TokenPlus  // +
	TokenMinus // -
	TokenStar  // *
	TokenSlash // /
	TokenCaret // ^
	TokenEq    // =
	TokenNe    // <>
	TokenLt    // <
	TokenLe    // <=
	TokenGt    // >
	TokenGe    // >=
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenError:     "ERROR",
	TokenNewline:   "NEWLINE",
	TokenNumber:    "NUMBER",
	TokenString:    "STRING",
	TokenIdent:     "IDENT",
	TokenKeyword:   "KEYWORD",
	TokenBuiltin:   "BUILTIN",
	TokenColon:     ":",
	TokenSemicolon: ";",
	TokenComma:     ",",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenQuestion:  "?",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenCaret:     "^",
	TokenEq:        "=",
	TokenNe:        "<>",
	TokenLt:        "<",
	TokenLe:        "<=",
	TokenGt:        ">",
	TokenGe:        ">=",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text; decoded value for strings
	Text    string   // raw rest of line after docu
	Num     float64  // value of number tokens
	Pos     Position // start position

	// LineStart is set when no other token precedes this one on its
	// physical line.
	LineStart bool
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Is reports whether t is the keyword kw.
func (t Token) Is(kw string) bool {
	return t.Type == TokenKeyword && t.Literal == kw
}

// Reserved words mapped to the language version that introduced them.
var keywords = map[string]int{
	"and": 1, "or": 1, "not": 1, "mod": 1,
	"let": 1, "print": 1, "input": 1, "line": 1, "using": 1,
	"if": 1, "then": 1, "else": 1, "elseif": 1, "elsif": 1, "endif": 1, "fi": 1, "end": 1,
	"while": 1, "wend": 1, "do": 1, "loop": 1,
	"for": 1, "to": 1, "step": 1, "next": 1,
	"goto": 1, "gosub": 1, "on": 1, "return": 1, "label": 1,
	"sub": 1, "local": 1, "dim": 1, "redim": 1,
	"data": 1, "read": 1, "restore": 1,
	"error": 1, "wait": 1, "pause": 1, "randomize": 1,
	"clear": 1, "screen": 1, "cls": 1,
	"open": 1, "close": 1, "window": 1, "color": 1, "colour": 1, "setrgb": 1,
	"dot": 1, "rectangle": 1, "box": 1, "triangle": 1, "fill": 1, "circle": 1, "text": 1,
	"setdrawbuf": 1, "setdispbuf": 1, "flip": 1,

	"repeat": 2, "until": 2, "compile": 2, "static": 2,
	"break": 2, "continue": 2, "gtriangle": 2, "docu": 2,
}

// Keywords returns the reserved words active at version, for tooling.
func Keywords(version int) []string {
	var out []string
	for kw, since := range keywords {
		if since <= version {
			out = append(out, kw)
		}
	}
	return out
}

// classifyWord decides whether word is a keyword, a built-in function or
// an identifier at the given language version.
func classifyWord(word string, version int) (TokenType, string) {
	lower := strings.ToLower(word)
	if since, ok := keywords[lower]; ok && since <= version {
		return TokenKeyword, lower
	}
	if _, ok := vm.LookupBuiltin(lower); ok {
		return TokenBuiltin, lower
	}
	return TokenIdent, word
}
