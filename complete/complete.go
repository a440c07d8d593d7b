// Package complete implements symbol completion: given a line of input
// and a cursor offset, find the symbol prefix ending at the cursor,
// classify the lexical position it sits in, and list every visible
// binding that matches it.
package complete

import (
	"sort"
	"strings"

	"github.com/sreader/lisp/ast"
	"github.com/sreader/lisp/scanner"
)

// Role classifies the lexical position a prefix was found in, so callers
// can filter completions to only the kinds of binding that make sense
// there (a callable in head position, a slot name after a dot, and so on).
type Role int

const (
	RoleAny Role = iota
	RoleCallable
	RoleIndexable
	RoleSlot
	RoleMethod
)

// Prefix returns the symbol-constituent run ending at offset in line,
// along with the role implied by what precedes it. A package qualifier
// ("pkg:" immediately before the run) is part of the prefix; the role is
// judged from the character before the whole qualified run:
//
//	foo.pre   -> RoleSlot      (slot access)
//	foo.(pre  -> RoleMethod    (method position inside a dotted call)
//	[pre      -> RoleIndexable (index/call position of a bracket form)
//	(pre      -> RoleCallable  (head of a list, unless the list is quoted)
//	pre       -> RoleAny
func Prefix(line string, offset int) (prefix string, role Role) {
	if offset > len(line) {
		offset = len(line)
	}
	start := offset
	for start > 0 && scanner.IsSymbolConstituent(rune(line[start-1])) {
		start--
	}
	prefix = line[start:offset]

	// A ':' just before the run is a package qualifier; absorb it and the
	// qualifier run into the prefix, then judge the role from what precedes
	// the qualifier. A bare leading ':' qualifies into the keyword package.
	qstart := start
	if qstart > 0 && line[qstart-1] == ':' {
		qstart--
		for qstart > 0 && scanner.IsSymbolConstituent(rune(line[qstart-1])) {
			qstart--
		}
		prefix = line[qstart:offset]
	}

	var prev, pprev byte
	if qstart > 0 {
		prev = line[qstart-1]
	}
	if qstart > 1 {
		pprev = line[qstart-2]
	}

	role = RoleAny
	switch {
	case prev == '.':
		role = RoleSlot
	case pprev == '.' && (prev == '(' || prev == '['):
		role = RoleMethod
	case prev == '[':
		role = RoleIndexable
	case prev == '(' && pprev != '\'' && pprev != '#' && pprev != '^':
		role = RoleCallable
	}
	return prefix, role
}

// Candidate is one completion result: a bound name plus the kind of
// binding it is.
type Candidate struct {
	Name string
	Kind ast.ObjKind
}

// Complete walks scope and every enclosing scope, collecting every visible
// binding whose name starts with prefix, filtered by role and sorted by
// name. A name bound in an inner scope shadows the same name further out.
// Candidates identical to the prefix are excluded: there is nothing left
// to complete.
func Complete(scope *ast.Scope, prefix string, role Role) []Candidate {
	return collect(scope, prefix, role, strings.HasPrefix)
}

// CompleteSubstr is Complete in substring mode: a candidate matches when
// its name contains prefix anywhere, not only at the start.
func CompleteSubstr(scope *ast.Scope, prefix string, role Role) []Candidate {
	return collect(scope, prefix, role, strings.Contains)
}

func collect(scope *ast.Scope, prefix string, role Role, match func(name, prefix string) bool) []Candidate {
	qual, bare := splitQualifier(prefix)

	seen := make(map[string]*ast.Object)
	for s := scope; s != nil; s = s.Outer {
		for name, obj := range s.Objects {
			if _, ok := seen[name]; ok {
				continue
			}
			if !match(name, bare) || name == bare {
				continue
			}
			seen[name] = obj
		}
	}

	out := make([]Candidate, 0, len(seen))
	for name, obj := range seen {
		if !roleMatches(role, obj.Kind) {
			continue
		}
		if qual != "" {
			name = qual + ":" + name
		}
		out = append(out, Candidate{Name: name, Kind: obj.Kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CompleteSlots enumerates the slot names of types matching prefix, for
// RoleSlot and RoleMethod positions where the candidate set is struct
// slots rather than scope bindings.
func CompleteSlots(types []*ast.StructType, prefix string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, st := range types {
		for _, slot := range st.Slots {
			if !strings.HasPrefix(slot, prefix) || slot == prefix || seen[slot] {
				continue
			}
			seen[slot] = true
			out = append(out, slot)
		}
	}
	sort.Strings(out)
	return out
}

func roleMatches(role Role, kind ast.ObjKind) bool {
	switch role {
	case RoleCallable, RoleMethod:
		return kind == ast.FuncObj || kind == ast.MacroObj
	case RoleIndexable:
		return kind == ast.VarObj || kind == ast.FuncObj
	case RoleSlot:
		return kind == ast.VarObj
	default:
		return true
	}
}

func splitQualifier(prefix string) (qual, bare string) {
	if idx := strings.IndexByte(prefix, ':'); idx >= 0 {
		return prefix[:idx], prefix[idx+1:]
	}
	return "", prefix
}

// PackagePrefix splits a possibly package-qualified prefix ("pkg:foo") into
// its package and bare-name parts. ok is false when prefix has no colon.
func PackagePrefix(prefix string) (pkg, name string, ok bool) {
	idx := strings.IndexByte(prefix, ':')
	if idx < 0 {
		return "", prefix, false
	}
	return prefix[:idx], prefix[idx+1:], true
}
