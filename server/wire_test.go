package server

import (
	"bytes"
	"testing"

	"github.com/chazu/basil/compiler"
	"github.com/chazu/basil/vm"
)

func TestWireRequestIsCanonical(t *testing.T) {
	req := &vm.CompileRequest{
		ID:          "r1",
		Version:     2,
		Source:      "print x",
		KnownLabels: []string{"a", "b"},
		NumberNames: []string{"x"},
	}
	a, err := MarshalRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Codec{}.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("MarshalRequest and Codec disagree")
	}
	back, err := UnmarshalRequest(a)
	if err != nil {
		t.Fatal(err)
	}
	if back.Source != req.Source || len(back.KnownLabels) != 2 || back.NumberNames[0] != "x" {
		t.Errorf("decoded %+v", back)
	}
}

// A program that crossed the wire still runs.
func TestWireProgramRuns(t *testing.T) {
	resp := compiler.Build(vm.CompileRequest{
		Version: 2,
		Source:  "data 1, \"b\"\nread n, s$\nfor i = 1 to n + 1: print s$;: next",
	})
	if resp.Err != nil {
		t.Fatal(resp.Err)
	}
	data, err := MarshalResponse(&resp)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalResponse(data)
	if err != nil {
		t.Fatal(err)
	}

	con := &testConsole{}
	v := vm.New(back.Program, vm.Host{Console: con}, vm.Options{})
	if err := v.RunToEnd(10_000); err != nil {
		t.Fatal(err)
	}
	if got := con.out.String(); got != "bb" {
		t.Errorf("output = %q, want bb", got)
	}
}

func TestWireSyntaxError(t *testing.T) {
	resp := vm.CompileResponse{ID: "x", Err: &vm.SyntaxError{Line: 3, Column: 4, Near: "wend", Msg: "unexpected wend"}}
	data, err := MarshalResponse(&resp)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalResponse(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Program != nil || back.Err == nil || *back.Err != *resp.Err {
		t.Errorf("decoded %+v", back)
	}
}

func TestWireRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalResponse([]byte{0xff, 0x00}); err == nil {
		t.Error("expected an error")
	}
}
