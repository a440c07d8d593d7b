package ast

// ObjKind classifies what a Scope Object denotes, for the completion
// engine's lexical-role filtering (callable vs indexable vs slot vs plain
// binding).
type ObjKind int

const (
	BadObj ObjKind = iota
	VarObj
	FuncObj
	MacroObj
	PackageObj
)

func (k ObjKind) String() string {
	switch k {
	case VarObj:
		return "var"
	case FuncObj:
		return "func"
	case MacroObj:
		return "macro"
	case PackageObj:
		return "package"
	default:
		return "bad"
	}
}

// Object represents a named entity: a variable, function, macro, or
// package, bound in some Scope.
type Object struct {
	Kind ObjKind
	Name string
	Decl Value
}

// Scope is a lexical symbol table with outer-scope chaining, mirroring
// package scoping: a Lookup walks outward through Outer until a name is
// found or the chain is exhausted.
type Scope struct {
	Outer   *Scope
	Objects map[string]*Object
}

// NewScope creates a new scope nested within outer. outer may be nil for a
// top-level (package) scope.
func NewScope(outer *Scope) *Scope {
	return &Scope{Outer: outer, Objects: make(map[string]*Object)}
}

// Lookup returns the object bound to name in s or any enclosing scope, or
// nil if name is not bound anywhere in the chain.
func (s *Scope) Lookup(name string) *Object {
	for scope := s; scope != nil; scope = scope.Outer {
		if obj, ok := scope.Objects[name]; ok {
			return obj
		}
	}
	return nil
}

// LookupLocal returns the object bound to name directly in s, without
// consulting Outer.
func (s *Scope) LookupLocal(name string) *Object {
	return s.Objects[name]
}

// Insert binds obj in s, shadowing (not replacing) any binding of the same
// name in an outer scope. It returns the object previously bound to
// obj.Name directly in s, if any, so callers can detect redefinition.
func (s *Scope) Insert(obj *Object) (prev *Object) {
	prev = s.Objects[obj.Name]
	s.Objects[obj.Name] = obj
	return prev
}
