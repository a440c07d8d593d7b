package complete

import (
	"testing"

	"github.com/sreader/lisp/ast"
)

func names(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Name
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func buildScope() *ast.Scope {
	s := ast.NewScope(nil)
	s.Insert(&ast.Object{Kind: ast.FuncObj, Name: "print"})
	s.Insert(&ast.Object{Kind: ast.FuncObj, Name: "princ"})
	s.Insert(&ast.Object{Kind: ast.VarObj, Name: "private-var"})
	return s
}

func TestPrefixCallablePosition(t *testing.T) {
	prefix, role := Prefix("(pri", 4)
	if prefix != "pri" {
		t.Fatalf("prefix = %q, want %q", prefix, "pri")
	}
	if role != RoleCallable {
		t.Errorf("role = %v, want RoleCallable", role)
	}
}

func TestCompleteCallableExcludesVariables(t *testing.T) {
	scope := buildScope()
	_, role := Prefix("(pri", 4)
	cands := names(Complete(scope, "pri", role))
	if !contains(cands, "print") || !contains(cands, "princ") {
		t.Errorf("candidates = %v, want print and princ", cands)
	}
	if contains(cands, "private-var") {
		t.Errorf("candidates = %v, want private-var excluded in callable position", cands)
	}
}

func TestCompleteUnrestrictedIncludesVariables(t *testing.T) {
	scope := buildScope()
	prefix, role := Prefix("pri", 3)
	if role != RoleAny {
		t.Fatalf("role = %v, want RoleAny", role)
	}
	cands := names(Complete(scope, prefix, role))
	if !contains(cands, "private-var") {
		t.Errorf("candidates = %v, want private-var included unrestricted", cands)
	}
}

func TestPrefixSlotPosition(t *testing.T) {
	prefix, role := Prefix("foo.", 4)
	if prefix != "" || role != RoleSlot {
		t.Errorf("Prefix(%q) = (%q, %v), want (\"\", RoleSlot)", "foo.", prefix, role)
	}
}

func TestPrefixMethodPosition(t *testing.T) {
	_, role := Prefix("foo.(le", 7)
	if role != RoleMethod {
		t.Errorf("role = %v, want RoleMethod", role)
	}
}

func TestPrefixIndexablePosition(t *testing.T) {
	prefix, role := Prefix("[pri", 4)
	if prefix != "pri" || role != RoleIndexable {
		t.Errorf("Prefix(%q) = (%q, %v), want (pri, RoleIndexable)", "[pri", prefix, role)
	}
}

func TestPrefixQuotedListIsNotCallable(t *testing.T) {
	for _, line := range []string{"'(pri", "#(pri", "^(pri"} {
		if _, role := Prefix(line, len(line)); role != RoleAny {
			t.Errorf("Prefix(%q) role = %v, want RoleAny (quoted head)", line, role)
		}
	}
}

func TestPrefixPackageQualifier(t *testing.T) {
	prefix, _ := Prefix("(sys:fo", 7)
	if prefix != "sys:fo" {
		t.Errorf("prefix = %q, want the whole qualified run %q", prefix, "sys:fo")
	}
}

func TestCompleteIndexableIncludesVariables(t *testing.T) {
	scope := buildScope()
	prefix, role := Prefix("[pri", 4)
	cands := names(Complete(scope, prefix, role))
	for _, want := range []string{"print", "princ", "private-var"} {
		if !contains(cands, want) {
			t.Errorf("candidates = %v, want %q included in indexable position", cands, want)
		}
	}
}

func TestCompleteQualifiedCandidatesKeepQualifier(t *testing.T) {
	scope := buildScope()
	cands := names(Complete(scope, "sys:pri", RoleAny))
	if !contains(cands, "sys:print") {
		t.Errorf("candidates = %v, want sys:print rendered with its qualifier", cands)
	}
}

func TestCompleteExcludesExactMatch(t *testing.T) {
	scope := buildScope()
	cands := names(Complete(scope, "print", RoleAny))
	if contains(cands, "print") {
		t.Errorf("candidates = %v, want the already-typed name excluded", cands)
	}
}

func TestCompleteSubstr(t *testing.T) {
	scope := buildScope()
	cands := names(CompleteSubstr(scope, "var", RoleAny))
	if !contains(cands, "private-var") {
		t.Errorf("candidates = %v, want private-var by substring match", cands)
	}
}

func TestCompleteSlots(t *testing.T) {
	types := []*ast.StructType{
		{Name: "point", Slots: []string{"x", "y"}},
		{Name: "line", Slots: []string{"x1", "x2"}},
	}
	got := CompleteSlots(types, "x")
	want := []string{"x1", "x2"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("CompleteSlots = %v, want %v (x itself excluded as exact)", got, want)
	}
}

func TestPackagePrefix(t *testing.T) {
	pkg, name, ok := PackagePrefix("sys:foo")
	if !ok || pkg != "sys" || name != "foo" {
		t.Errorf("PackagePrefix(%q) = (%q, %q, %v), want (sys, foo, true)", "sys:foo", pkg, name, ok)
	}
	if _, _, ok := PackagePrefix("foo"); ok {
		t.Errorf("PackagePrefix(%q) ok = true, want false", "foo")
	}
}

func TestCompleteShadowsOuterScope(t *testing.T) {
	outer := ast.NewScope(nil)
	outer.Insert(&ast.Object{Kind: ast.VarObj, Name: "xs"})
	inner := ast.NewScope(outer)
	inner.Insert(&ast.Object{Kind: ast.FuncObj, Name: "xs"})

	cands := Complete(inner, "x", RoleAny)
	if len(cands) != 1 {
		t.Fatalf("candidates = %v, want exactly one (shadowed)", cands)
	}
	if cands[0].Kind != ast.FuncObj {
		t.Errorf("shadowed candidate kind = %v, want FuncObj (inner binding wins)", cands[0].Kind)
	}
}
