package ast

// WalkStatus names traversal outcomes. Walk and Visitor do not use it: a
// Visitor controls traversal through the Visitor its Visit call returns.
type WalkStatus int

const (
	WalkStop WalkStatus = iota
	WalkContinue
	WalkSkipChildren
)

// Visitor is called once with a node before its children are visited and,
// if that call returned a non-nil Visitor, once more with nil after them
// (that call's return value is ignored). A Visit call that returns nil
// skips the node's children but continues the walk elsewhere.
type Visitor interface {
	Visit(v Value) (w Visitor)
}

// VisitorFunc adapts a plain function to the Visitor interface, for callers
// that only need the pre-order call.
type VisitorFunc func(v Value) Visitor

func (f VisitorFunc) Visit(v Value) Visitor { return f(v) }

// Walk traverses the value graph rooted at root in depth-first order,
// calling v.Visit(node) before descending into node's children and
// v.Visit(nil) after. If v.Visit(node) returns nil, node's children are not
// visited.
//
// Walk does not guard against cycles: callers that may be handed a graph
// containing CircRef back-references (package parser's back-patch pass, in
// particular) must track visited nodes themselves, since which nodes
// constitute a "repeat" depends on the traversal's own purpose.
func Walk(v Visitor, node Value) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Cons:
		Walk(v, n.Car)
		Walk(v, n.Cdr)
	case *NilValue:
		// leaf
	case *Vector:
		for _, e := range n.Elems {
			Walk(v, e)
		}
	case *Range:
		Walk(v, n.From)
		Walk(v, n.To)
	case *HashTable:
		for _, k := range n.Keys {
			Walk(v, k)
		}
		for _, val := range n.Vals {
			Walk(v, val)
		}
	case *Struct:
		for _, val := range n.Vals {
			Walk(v, val)
		}
	case *Lambda:
		Walk(v, n.Params)
		Walk(v, n.Body)
	case *Quoted:
		Walk(v, n.X)
	case *Str:
		for _, e := range n.Embeds {
			Walk(v, e)
		}
	case *CircRef:
		// Do not descend into Value: that edge is exactly the back-reference
		// a caller doing cycle-sensitive work must special-case.
	case *Symbol, *Number, *Regexp, *CharLit, *BufLit, *BadExpr:
		// leaves
	}

	v.Visit(nil)
}

// Inspect traverses the value graph rooted at root, calling f before each
// node's children are visited. If f returns false, Inspect does not
// descend into node's children.
func Inspect(node Value, f func(Value) bool) {
	Walk(inspector(f), node)
}

type inspector func(Value) bool

func (f inspector) Visit(node Value) Visitor {
	if node == nil {
		return nil
	}
	if f(node) {
		return f
	}
	return nil
}
