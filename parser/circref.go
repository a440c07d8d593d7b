package parser

import (
	"github.com/sreader/lisp/ast"
)

// resolveChain follows a run of already-bound CircRef placeholders to the
// value they ultimately stand for, stopping as soon as it reaches a
// non-CircRef or an unbound placeholder. It does not itself guard against
// cycles among CircRefs, since #n= is only ever bound to one concrete
// value; a chain of pure CircRef-to-CircRef bindings cannot occur from the
// grammar as written.
func resolveChain(v ast.Value) ast.Value {
	for {
		ref, ok := v.(*ast.CircRef)
		if !ok || ref.Value == nil {
			return v
		}
		v = ref.Value
	}
}

// backpatch runs after a top-level form is fully parsed. It reports
// dangling references (#n# with no matching #n=), reports an absurd
// self-reference (#n=#n# with nothing in between), and then rewrites every
// reachable edge that still points at a resolved CircRef placeholder to
// point directly at the value it was defined to stand for.
func (p *Parser) backpatch(root ast.Value) {
	for label, ref := range p.circDefs {
		if ref.Value == nil {
			p.error(ref.RefPos, "dangling circular reference #"+label+"#")
			continue
		}
		if ref.Value == ast.Value(ref) {
			p.error(ref.RefPos, "absurd circular reference #"+label+"=#"+label+"#")
		}
	}
	if len(p.circDefs) == 0 {
		return
	}

	// Visited set doubles as the cycle breaker: a structure that is
	// genuinely, and intentionally, circular is entered exactly once.
	seen := make(map[ast.Value]bool)
	p.backpatchValue(root, seen)

	// Reset for the next top-level form; a fresh Parser.circDefs map would
	// also work, but reusing the map avoids an allocation per read.
	for label := range p.circDefs {
		delete(p.circDefs, label)
	}
}

// backpatchValue descends into node's mutable fields, replacing any child
// that is a resolved CircRef with the value it stands for, then recursing
// into the replacement.
func (p *Parser) backpatchValue(node ast.Value, seen map[ast.Value]bool) {
	if node == nil || seen[node] {
		return
	}
	seen[node] = true

	switch n := node.(type) {
	case *ast.Cons:
		// Chase cdr iteratively so a long list does not recurse once per
		// element.
		for {
			n.Car = p.patchEdge(n.Car, seen)
			n.Cdr = resolveChain(n.Cdr)
			next, ok := n.Cdr.(*ast.Cons)
			if !ok {
				p.backpatchValue(n.Cdr, seen)
				return
			}
			if seen[next] {
				return
			}
			seen[next] = true
			n = next
		}
	case *ast.Vector:
		for i, e := range n.Elems {
			n.Elems[i] = p.patchEdge(e, seen)
		}
	case *ast.Range:
		n.From = p.patchEdge(n.From, seen)
		n.To = p.patchEdge(n.To, seen)
	case *ast.HashTable:
		// Torn down and rebuilt rather than patched in place: a key whose
		// identity changes under patching must be re-hashed, so the whole
		// key/value correspondence is collected, cleared, and reinserted.
		keys := make([]ast.Value, len(n.Keys))
		vals := make([]ast.Value, len(n.Vals))
		for i, k := range n.Keys {
			keys[i] = p.patchEdge(k, seen)
		}
		for i, v := range n.Vals {
			vals[i] = p.patchEdge(v, seen)
		}
		n.Keys = keys
		n.Vals = vals
	case *ast.Struct:
		for i, v := range n.Vals {
			n.Vals[i] = p.patchEdge(v, seen)
		}
	case *ast.Lambda:
		n.Params = p.patchEdge(n.Params, seen)
		n.Body = p.patchEdge(n.Body, seen)
	case *ast.Quoted:
		n.X = p.patchEdge(n.X, seen)
	case *ast.Str:
		// A quasi-string's embeds are parsed mid-form and may hold
		// placeholders for labels whose definitions complete later.
		for i, e := range n.Embeds {
			n.Embeds[i] = p.patchEdge(e, seen)
		}
	case *ast.CircRef:
		// A CircRef's own Value is deliberately not descended into here: any
		// outgoing edge that points at this CircRef is patched by patchEdge
		// before we would ever get here through a live (non-placeholder) edge.
	}
}

// patchEdge resolves child if it is a bound CircRef placeholder, recurses
// into whichever value results, and returns the value the caller's field
// should now hold.
func (p *Parser) patchEdge(child ast.Value, seen map[ast.Value]bool) ast.Value {
	resolved := resolveChain(child)
	p.backpatchValue(resolved, seen)
	return resolved
}
