package ast

import "testing"

func list(elems ...Value) Value {
	var head Value = Nil
	for i := len(elems) - 1; i >= 0; i-- {
		head = &Cons{Car: elems[i], Cdr: head}
	}
	return head
}

func TestWalkVisitsEveryNode(t *testing.T) {
	tree := list(&Symbol{Name: "a"}, &Number{IsInt: true, Int: 1}, &Vector{Elems: []Value{&Symbol{Name: "b"}}})

	var kinds []Kind
	Inspect(tree, func(v Value) bool {
		kinds = append(kinds, v.Kind())
		return true
	})

	// Three Cons cells + Nil terminator + two leaves + a Vector + its one
	// element: eight nodes total.
	if len(kinds) != 8 {
		t.Fatalf("visited %d nodes, want 8: %v", len(kinds), kinds)
	}
}

func TestWalkSkipChildren(t *testing.T) {
	tree := &Cons{Car: &Symbol{Name: "skip-me"}, Cdr: Nil}

	var visited []Kind
	Walk(VisitorFunc(func(v Value) Visitor {
		if v == nil {
			return nil
		}
		visited = append(visited, v.Kind())
		if v.Kind() == ConsKind {
			return nil // returning nil from the pre-order call skips children
		}
		return VisitorFunc(func(v Value) Visitor { return nil })
	}), tree)

	if len(visited) != 1 || visited[0] != ConsKind {
		t.Errorf("visited = %v, want only the root Cons", visited)
	}
}

func TestScopeLookupChain(t *testing.T) {
	outer := NewScope(nil)
	outer.Insert(&Object{Kind: VarObj, Name: "x"})

	inner := NewScope(outer)
	inner.Insert(&Object{Kind: FuncObj, Name: "f"})

	if obj := inner.Lookup("x"); obj == nil || obj.Kind != VarObj {
		t.Errorf("Lookup(%q) in inner = %v, want outer's VarObj", "x", obj)
	}
	if obj := inner.LookupLocal("x"); obj != nil {
		t.Errorf("LookupLocal(%q) in inner = %v, want nil", "x", obj)
	}
	if obj := outer.Lookup("f"); obj != nil {
		t.Errorf("Lookup(%q) in outer = %v, want nil (not visible from outer)", "f", obj)
	}
}

func TestScopeInsertShadows(t *testing.T) {
	s := NewScope(nil)
	first := &Object{Kind: VarObj, Name: "x"}
	second := &Object{Kind: VarObj, Name: "x"}

	if prev := s.Insert(first); prev != nil {
		t.Fatalf("Insert on empty scope returned %v, want nil", prev)
	}
	if prev := s.Insert(second); prev != first {
		t.Errorf("Insert returned %v, want previous binding %v", prev, first)
	}
	if s.Lookup("x") != second {
		t.Errorf("Lookup(%q) = %v, want the most recent binding", "x", s.Lookup("x"))
	}
}
