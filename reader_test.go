package lisp

import (
	"os"
	"testing"

	"github.com/sreader/lisp/ast"
)

func TestLispParseReturnsAllForms(t *testing.T) {
	r := New()
	forms, err := r.LispParse("test", "(a) (b c)")
	if err != nil {
		t.Fatalf("LispParse error: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("got %d forms, want 2: %v", len(forms), forms)
	}
}

func TestStreamRegistryRoundTrip(t *testing.T) {
	r := New()
	stream := new(struct{ dummy int })
	p := r.NewParser("test", []byte("(a)"))
	RegisterStream(stream, p)

	got, ok := ParserForStream(stream)
	if !ok || got != p {
		t.Fatalf("ParserForStream = (%v, %v), want the registered parser", got, ok)
	}
}

func TestParserForStreamMissReturnsFalse(t *testing.T) {
	stream := new(struct{ dummy int })
	if _, ok := ParserForStream(stream); ok {
		t.Errorf("ParserForStream on an unregistered stream = true, want false")
	}
}

func TestReadCompiledFileFallsBackToSourceLastForm(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/prog.tl"
	if err := os.WriteFile(path, []byte("(a) (b c)"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New()
	v, err := r.ReadCompiledFile(path, nil)
	if err != nil {
		t.Fatalf("ReadCompiledFile error: %v", err)
	}
	cons, ok := v.(*ast.Cons)
	if !ok {
		t.Fatalf("expected the last form to be a *ast.Cons, got %T", v)
	}
	sym, ok := cons.Car.(*ast.Symbol)
	if !ok || sym.Name != "b" {
		t.Errorf("last form's head = %v, want Symbol(b)", cons.Car)
	}
}
