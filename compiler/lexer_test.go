package compiler

import "testing"

func lexAll(input string, version int) []Token {
	l := NewLexer(input, version)
	var out []Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return out
		}
	}
}

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		input string
		types []TokenType
	}{
		{"print 1+2", []TokenType{TokenKeyword, TokenNumber, TokenPlus, TokenNumber, TokenEOF}},
		{"a$ = \"x\"", []TokenType{TokenIdent, TokenEq, TokenString, TokenEOF}},
		{"x <> y <= z >= w", []TokenType{TokenIdent, TokenNe, TokenIdent, TokenLe, TokenIdent, TokenGe, TokenIdent, TokenEOF}},
		{"a:b;c,d", []TokenType{TokenIdent, TokenColon, TokenIdent, TokenSemicolon, TokenIdent, TokenComma, TokenIdent, TokenEOF}},
		{"? sin(x)", []TokenType{TokenQuestion, TokenBuiltin, TokenLParen, TokenIdent, TokenRParen, TokenEOF}},
		{"1\n2", []TokenType{TokenNumber, TokenNewline, TokenNumber, TokenEOF}},
	}

	for _, tc := range tests {
		toks := lexAll(tc.input, 2)
		if len(toks) != len(tc.types) {
			t.Errorf("%q: got %d tokens %v, want %d", tc.input, len(toks), toks, len(tc.types))
			continue
		}
		for i, tok := range toks {
			if tok.Type != tc.types[i] {
				t.Errorf("%q: token %d = %s, want %s", tc.input, i, tok.Type, tc.types[i])
			}
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"42", 42},
		{"1.5", 1.5},
		{".25", 0.25},
		{"1e3", 1000},
		{"2.5E-1", 0.25},
		{"0xff", 255},
		{"0X10", 16},
	}

	for _, tc := range tests {
		tok := NewLexer(tc.input, 2).NextToken()
		if tok.Type != TokenNumber {
			t.Errorf("%q: type = %s, want NUMBER", tc.input, tok.Type)
			continue
		}
		if tok.Num != tc.want {
			t.Errorf("%q: value = %g, want %g", tc.input, tok.Num, tc.want)
		}
	}
}

func TestLexerMalformedNumber(t *testing.T) {
	tok := NewLexer("0x", 2).NextToken()
	if tok.Type != TokenError {
		t.Errorf("0x: type = %s, want ERROR", tok.Type)
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"say \"hi\""`, `say "hi"`},
		{`"back\\slash"`, `back\slash`},
		{`"c:\dir"`, `c:\dir`},
	}

	for _, tc := range tests {
		tok := NewLexer(tc.input, 2).NextToken()
		if tok.Type != TokenString || tok.Literal != tc.want {
			t.Errorf("%s: got %s %q, want %q", tc.input, tok.Type, tok.Literal, tc.want)
		}
	}

	if tok := NewLexer("\"open\nx", 2).NextToken(); tok.Type != TokenError {
		t.Errorf("unterminated string: type = %s, want ERROR", tok.Type)
	}
}

func TestLexerComments(t *testing.T) {
	tests := []struct {
		input string
		want  int // tokens before EOF
	}{
		{"rem anything goes", 0},
		{"REM shouting", 0},
		{"print 1 ' trailing", 2},
		{"print 1 // trailing", 2},
		{"# hash comment", 0},
		{"print 1 # not a comment here", 3},
		{"remark = 1", 3},
	}

	for _, tc := range tests {
		toks := lexAll(tc.input, 2)
		got := len(toks) - 1
		if toks[len(toks)-1].Type == TokenError {
			got = len(toks)
		}
		if got != tc.want {
			t.Errorf("%q: got %d tokens %v, want %d", tc.input, got, toks, tc.want)
		}
	}
}

func TestLexerKeywordsByVersion(t *testing.T) {
	if tok := NewLexer("repeat", 1).NextToken(); tok.Type != TokenIdent {
		t.Errorf("version 1: repeat = %s, want IDENT", tok.Type)
	}
	if tok := NewLexer("repeat", 2).NextToken(); tok.Type != TokenKeyword {
		t.Errorf("version 2: repeat = %s, want KEYWORD", tok.Type)
	}
	if tok := NewLexer("PRINT", 1).NextToken(); tok.Literal != "print" {
		t.Errorf("keywords are lower-cased: got %q", tok.Literal)
	}
	if tok := NewLexer("Left$", 2).NextToken(); tok.Type != TokenBuiltin || tok.Literal != "left$" {
		t.Errorf("Left$ = %s %q, want BUILTIN left$", tok.Type, tok.Literal)
	}
	if tok := NewLexer("Count", 2).NextToken(); tok.Literal != "Count" {
		t.Errorf("identifiers keep their case: got %q", tok.Literal)
	}
}

func TestLexerLineStart(t *testing.T) {
	toks := lexAll("10 print 20\n  30 end", 2)
	want := map[int]bool{0: true, 1: false, 2: false, 4: true, 5: false}
	for i, ls := range want {
		if toks[i].LineStart != ls {
			t.Errorf("token %d (%s): LineStart = %v, want %v", i, toks[i], toks[i].LineStart, ls)
		}
	}
}

func TestLexerDocu(t *testing.T) {
	toks := lexAll("docu  draws a box \nprint", 2)
	if toks[0].Type != TokenKeyword || toks[0].Text != "draws a box" {
		t.Errorf("docu text = %q", toks[0].Text)
	}
	if toks[1].Type != TokenNewline {
		t.Errorf("after docu: %s, want NEWLINE", toks[1].Type)
	}
}

func TestLexerPositions(t *testing.T) {
	toks := lexAll("a\n  b", 2)
	b := toks[2]
	if b.Pos.Line != 2 || b.Pos.Column != 3 {
		t.Errorf("b at %d:%d, want 2:3", b.Pos.Line, b.Pos.Column)
	}
}
