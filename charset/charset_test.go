package charset

import (
	"bytes"
	"testing"
)

func TestCase(t *testing.T) {
	tests := []struct {
		cs    *Charset
		in    string
		upper string
		lower string
	}{
		{Latin1, "abc XyZ", "ABC XYZ", "abc xyz"},
		{Latin1, "äöü", "ÄÖÜ", "äöü"},
		{Latin1, "straße", "STRAßE", "straße"},
		{Latin1, "ÿ", "ÿ", "ÿ"},
		{Latin9, "ÿ", "Ÿ", "ÿ"},
	}

	for _, tc := range tests {
		in := string(tc.cs.Encode(tc.in))
		upper := tc.cs.ToUpper(in)
		if got := tc.cs.Decode([]byte(upper)); got != tc.upper {
			t.Errorf("%s ToUpper(%q) = %q, want %q", tc.cs.Name(), tc.in, got, tc.upper)
		}
		if got := tc.cs.Decode([]byte(tc.cs.ToLower(upper))); got != tc.lower {
			t.Errorf("%s ToLower(%q) = %q, want %q", tc.cs.Name(), tc.upper, got, tc.lower)
		}
	}
}

func TestCaseWorksOnBytes(t *testing.T) {
	if got := Latin1.ToUpper("\xe9t\xe9"); got != "\xc9T\xc9" {
		t.Errorf("ToUpper = %q, want %q", got, "\xc9T\xc9")
	}
	if got := Latin1.ToLower("\xc9"); got != "\xe9" {
		t.Errorf("ToLower = %q, want %q", got, "\xe9")
	}
}

func TestTrim(t *testing.T) {
	if got := Latin1.TrimStart(" \t a b \n"); got != "a b \n" {
		t.Errorf("TrimStart = %q", got)
	}
	if got := Latin1.TrimEnd("\n a b \t "); got != "\n a b" {
		t.Errorf("TrimEnd = %q", got)
	}
	if got := Latin1.TrimEnd("\xa0 "); got != "\xa0" {
		t.Errorf("TrimEnd kept %q, want the no-break space", got)
	}
}

func TestEncodeDecode(t *testing.T) {
	got := Latin1.Encode("aé€")
	want := []byte{'a', 0xe9, '?'}
	if !bytes.Equal(got, want) {
		t.Errorf("Latin1.Encode = %v, want %v", got, want)
	}
	if s := Latin1.Decode([]byte{'a', 0xe9}); s != "aé" {
		t.Errorf("Decode = %q", s)
	}
	if got := Latin9.Encode("€"); !bytes.Equal(got, []byte{0xa4}) {
		t.Errorf("Latin9.Encode(€) = %v", got)
	}
	if got := CP437.Encode("─"); !bytes.Equal(got, []byte{0xc4}) {
		t.Errorf("CP437.Encode(─) = %v", got)
	}
	if s := CP437.Decode([]byte{0xc4}); s != "─" {
		t.Errorf("CP437.Decode = %q", s)
	}
}

func TestSafe(t *testing.T) {
	if got := Latin1.ConsoleSafe("a\x07b\nc\xe9\x85"); got != "a?b\ncé?" {
		t.Errorf("ConsoleSafe = %q", got)
	}
	if got := Latin1.GraphicsSafe("a\nb\x07c\xe9"); got != "a bcé" {
		t.Errorf("GraphicsSafe = %q", got)
	}
	if got := Latin9.ConsoleSafe("\xa4"); got != "€" {
		t.Errorf("Latin9.ConsoleSafe = %q", got)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"latin1", "ISO-8859-1", "cp437", "Latin9"} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) failed", name)
		}
	}
	if _, ok := Lookup("ebcdic"); ok {
		t.Error("Lookup(ebcdic) succeeded")
	}
}
