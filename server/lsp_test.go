package server

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ---------------------------------------------------------------------------
// LSP text extraction helpers
// ---------------------------------------------------------------------------

func TestExtractPrefix_SimpleWord(t *testing.T) {
	text := "print lef"
	pos := protocol.Position{Line: 0, Character: 9}
	if prefix := extractPrefix(text, pos); prefix != "lef" {
		t.Errorf("extractPrefix = %q, want %q", prefix, "lef")
	}
}

func TestExtractPrefix_StringSuffix(t *testing.T) {
	text := "a$ = left$"
	pos := protocol.Position{Line: 0, Character: 10}
	if prefix := extractPrefix(text, pos); prefix != "left$" {
		t.Errorf("extractPrefix = %q, want %q", prefix, "left$")
	}
}

func TestExtractPrefix_EmptyLine(t *testing.T) {
	pos := protocol.Position{Line: 0, Character: 0}
	if prefix := extractPrefix("", pos); prefix != "" {
		t.Errorf("extractPrefix = %q, want empty string", prefix)
	}
}

func TestExtractPrefix_MultiLine(t *testing.T) {
	text := "first line\nsecond line\nwhi"
	pos := protocol.Position{Line: 2, Character: 3}
	if prefix := extractPrefix(text, pos); prefix != "whi" {
		t.Errorf("extractPrefix = %q, want %q", prefix, "whi")
	}
}

func TestExtractPrefix_LineBeyondDocument(t *testing.T) {
	pos := protocol.Position{Line: 5, Character: 0}
	if prefix := extractPrefix("single line", pos); prefix != "" {
		t.Errorf("extractPrefix beyond doc = %q, want empty string", prefix)
	}
}

func TestExtractWord_Middle(t *testing.T) {
	text := "gosub draw_box"
	pos := protocol.Position{Line: 0, Character: 9}
	if word := extractWord(text, pos); word != "draw_box" {
		t.Errorf("extractWord = %q, want %q", word, "draw_box")
	}
}

func TestExtractWord_AtEnd(t *testing.T) {
	text := "hello world"
	pos := protocol.Position{Line: 0, Character: 5}
	if word := extractWord(text, pos); word != "hello" {
		t.Errorf("extractWord = %q, want %q", word, "hello")
	}
}

func TestExtractWord_EmptyLine(t *testing.T) {
	pos := protocol.Position{Line: 0, Character: 0}
	if word := extractWord("", pos); word != "" {
		t.Errorf("extractWord = %q, want empty string", word)
	}
}

// ---------------------------------------------------------------------------
// Language features
// ---------------------------------------------------------------------------

const lspDoc = `sub area(w, h)
  return w * h
end sub
label start
print area(2, 3)
goto start`

func newTestLSP(t *testing.T) *LspServer {
	t.Helper()
	s := NewLSP(0)
	t.Cleanup(s.worker.Stop)
	return s
}

func TestLSPCheck(t *testing.T) {
	s := newTestLSP(t)

	if diags := s.check(lspDoc); len(diags) != 0 {
		t.Errorf("clean document: %+v", diags)
	}

	diags := s.check("print 1\nwhile 1\nprint 2")
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	if diags[0].Range.Start.Line != 2 {
		t.Errorf("diagnostic on line %d, want 2", diags[0].Range.Start.Line)
	}
	if !strings.Contains(diags[0].Message, "wend") {
		t.Errorf("message = %q", diags[0].Message)
	}
}

func TestLSPComplete(t *testing.T) {
	s := newTestLSP(t)

	labels := func(items []protocol.CompletionItem) map[string]bool {
		m := make(map[string]bool)
		for _, it := range items {
			m[it.Label] = true
		}
		return m
	}

	got := labels(s.complete(lspDoc, "wh"))
	if !got["while"] {
		t.Errorf("keyword while missing: %v", got)
	}
	got = labels(s.complete(lspDoc, "LE"))
	if !got["left$"] || !got["len"] {
		t.Errorf("built-ins missing: %v", got)
	}
	got = labels(s.complete(lspDoc, "ar"))
	if !got["area"] || !got["arraydim"] {
		t.Errorf("sub or built-in missing: %v", got)
	}
}

func TestLSPHover(t *testing.T) {
	s := newTestLSP(t)

	h := s.hover(lspDoc, "mid$")
	if h == nil || !strings.Contains(h.Contents.(protocol.MarkupContent).Value, "mid$(s$, n, [n])") {
		t.Errorf("hover mid$ = %+v", h)
	}
	h = s.hover(lspDoc, "area")
	if h == nil || !strings.Contains(h.Contents.(protocol.MarkupContent).Value, "sub area(w, h)") {
		t.Errorf("hover area = %+v", h)
	}
	if h := s.hover(lspDoc, "nothing"); h != nil {
		t.Errorf("hover on unknown word = %+v", h)
	}
}

func TestLSPDefinition(t *testing.T) {
	s := newTestLSP(t)
	uri := protocol.DocumentUri("file:///a.bas")

	loc := s.definition(uri, lspDoc, "area")
	if loc == nil || loc.Range.Start.Line != 0 {
		t.Errorf("definition of area = %+v", loc)
	}
	loc = s.definition(uri, lspDoc, "start")
	if loc == nil || loc.Range.Start.Line != 3 {
		t.Errorf("definition of start = %+v", loc)
	}
	if loc := s.definition(uri, lspDoc, "x"); loc != nil {
		t.Errorf("definition of x = %+v", loc)
	}
}
