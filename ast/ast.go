// Package ast defines the value representation produced by the parser:
// the node kinds a reader can hand back to a caller, plus a scope/object
// table for tracking visible symbols and a generic Walk over the node
// graph.
package ast

import (
	gotok "go/token"
)

// Kind identifies the concrete type of a Value.
type Kind int

const (
	BadKind Kind = iota
	ConsKind
	VectorKind
	RangeKind
	HashTableKind
	StructKind
	LambdaKind
	SymbolKind
	NumberKind
	StrKind
	RegexpKind
	CharLitKind
	BufLitKind
	QuotedKind
	CircRefKind
	UnsetKind
)

// Value is the capability interface every reader-produced node satisfies.
// Nodes are compared for identity with ==, which is why all constructors
// return pointers.
type Value interface {
	Kind() Kind
	Pos() gotok.Pos
}

// QuoteForm distinguishes the four forms the quote family desugars to.
type QuoteForm int

const (
	Quote QuoteForm = iota
	Quasiquote
	Unquote
	UnquoteSplice
)

// Cons is a mutable pair. A proper list is a chain of Cons terminated by
// Nil; an improper (dotted) list terminates in some other Value.
type Cons struct {
	ConsPos  gotok.Pos
	Car, Cdr Value
}

func (c *Cons) Kind() Kind     { return ConsKind }
func (c *Cons) Pos() gotok.Pos { return c.ConsPos }

// Nil is the canonical empty list. It is its own Cons-compatible terminator;
// callers test for it with ==.
var Nil = &NilValue{}

// NilValue is the type of Nil. It reports ConsKind (the empty list is
// list-kinded) but is a distinct type, so list-walking code can stop on an
// identity check instead of a type switch on Cons with both fields unset.
type NilValue struct{}

func (n *NilValue) Kind() Kind     { return ConsKind }
func (n *NilValue) Pos() gotok.Pos { return gotok.NoPos }

// Vector is a mutable fixed-length sequence, #( ... ).
type Vector struct {
	VecPos gotok.Pos
	Elems  []Value
}

func (v *Vector) Kind() Kind     { return VectorKind }
func (v *Vector) Pos() gotok.Pos { return v.VecPos }

// Range is a mutable a..b range literal.
type Range struct {
	RangePos gotok.Pos
	From, To Value
}

func (r *Range) Kind() Kind     { return RangeKind }
func (r *Range) Pos() gotok.Pos { return r.RangePos }

// HashTable is a mutable hash table literal, #H((hashed-keys) pairs...).
// Keys is kept alongside Vals so a back-patch that mutates a key can tear
// the table down and rebuild it under the corrected hash.
type HashTable struct {
	HashPos gotok.Pos
	Hashed  bool
	Keys    []Value
	Vals    []Value
}

func (h *HashTable) Kind() Kind     { return HashTableKind }
func (h *HashTable) Pos() gotok.Pos { return h.HashPos }

// StructType enumerates the slot names of a struct literal's named type, in
// declaration order, so a back-patch traversal can walk slots positionally.
type StructType struct {
	Name  string
	Slots []string
}

// Struct is a struct literal, #S(type slot val ...).
type Struct struct {
	StructPos gotok.Pos
	Type      *StructType
	Vals      []Value
}

func (s *Struct) Kind() Kind     { return StructKind }
func (s *Struct) Pos() gotok.Pos { return s.StructPos }

// Lambda is an interpreted function: a parameter list and a body, both
// walkable so circular references reachable through either get patched.
type Lambda struct {
	LambdaPos gotok.Pos
	Params    Value
	Body      Value
}

func (l *Lambda) Kind() Kind     { return LambdaKind }
func (l *Lambda) Pos() gotok.Pos { return l.LambdaPos }

// Symbol is an interned identifier, optionally package-qualified.
type Symbol struct {
	SymPos  gotok.Pos
	Package string
	Name    string
}

func (s *Symbol) Kind() Kind     { return SymbolKind }
func (s *Symbol) Pos() gotok.Pos { return s.SymPos }

// Number is a numeric literal in its original textual form plus a parsed
// kind tag; the reader does not evaluate arithmetic, so the text is kept
// verbatim alongside whichever of Int/Float/Ratio is populated.
type Number struct {
	NumPos gotok.Pos
	Text   string
	IsInt  bool
	Int    int64
	Float  float64
}

func (n *Number) Kind() Kind     { return NumberKind }
func (n *Number) Pos() gotok.Pos { return n.NumPos }

// Str is a string or quasi-string literal. Quasi is true for backtick
// quasi-strings, which may carry embedded unquoted expressions in Embeds.
type Str struct {
	StrPos gotok.Pos
	Value  string
	Quasi  bool
	Embeds []Value
}

func (s *Str) Kind() Kind     { return StrKind }
func (s *Str) Pos() gotok.Pos { return s.StrPos }

// Regexp is a #/.../ regex literal, kept as source text; the reader does
// not compile it.
type Regexp struct {
	RegexpPos gotok.Pos
	Source    string
}

func (r *Regexp) Kind() Kind     { return RegexpKind }
func (r *Regexp) Pos() gotok.Pos { return r.RegexpPos }

// CharLit is a #\x character literal.
type CharLit struct {
	CharPos gotok.Pos
	Name    string
	Rune    rune
}

func (c *CharLit) Kind() Kind     { return CharLitKind }
func (c *CharLit) Pos() gotok.Pos { return c.CharPos }

// BufLit is a #b'...' buffer literal.
type BufLit struct {
	BufPos gotok.Pos
	Bytes  []byte
}

func (b *BufLit) Kind() Kind     { return BufLitKind }
func (b *BufLit) Pos() gotok.Pos { return b.BufPos }

// Quoted wraps an expression in one of the quote family forms.
type Quoted struct {
	QuotedPos gotok.Pos
	Form      QuoteForm
	X         Value
}

func (q *Quoted) Kind() Kind     { return QuotedKind }
func (q *Quoted) Pos() gotok.Pos { return q.QuotedPos }

// CircRef is the placeholder object a forward #n# reference resolves to
// until back-patching replaces every pointer to it with the real value.
// Label is the declared number n; Value is filled in once #n= is parsed.
type CircRef struct {
	RefPos   gotok.Pos
	Label    string
	Value    Value
	Suppress bool
}

func (c *CircRef) Kind() Kind     { return CircRefKind }
func (c *CircRef) Pos() gotok.Pos { return c.RefPos }

// BadExpr is a placeholder for a syntactically malformed expression, so
// that parsing can continue past an error and still report a tree shape.
type BadExpr struct {
	From, To gotok.Pos
}

func (b *BadExpr) Kind() Kind     { return BadKind }
func (b *BadExpr) Pos() gotok.Pos { return b.From }

type unsetType struct{}

func (u *unsetType) Kind() Kind     { return UnsetKind }
func (u *unsetType) Pos() gotok.Pos { return gotok.NoPos }

// UNSET is the sentinel a Parser's top-level syntax tree field holds before
// any form has primed or after a read has been fully consumed; it is
// distinct from Nil and from any parsed value.
var UNSET Value = &unsetType{}

// ListElems collects a proper list's elements into a slice in order. ok is
// false if v is not Nil and not a chain of Cons cells terminated by Nil (a
// dotted list or any other value), in which case elems holds whatever
// proper prefix was collected before the mismatch.
func ListElems(v Value) (elems []Value, ok bool) {
	for {
		switch n := v.(type) {
		case *NilValue:
			return elems, true
		case *Cons:
			elems = append(elems, n.Car)
			v = n.Cdr
		default:
			return elems, false
		}
	}
}
