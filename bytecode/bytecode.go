// Package bytecode implements the compiled top-level loader: it parses a
// ".tlo" file as ordinary S-expressions (a version header followed by a
// list of procedure descriptors), validates the header, byte-swaps any
// descriptor's bytecode buffer when the file's recorded endianness
// disagrees with the host's, and submits each descriptor to a VM.
package bytecode

import (
	gotok "go/token"

	"github.com/sreader/lisp/ast"
	"github.com/sreader/lisp/parser"
)

// Header is the first form of a compiled top-level file: (major minor
// big-endian? ...). Only Major, Minor and BigEndian are interpreted by the
// loader; any trailing elements are accepted and ignored, matching the
// spec's "..." tail.
type Header struct {
	Major     int
	Minor     int
	BigEndian bool
}

// supportedMajors lists the major version numbers this loader accepts.
var supportedMajors = map[int]bool{1: true, 2: true}

// ParseHeader validates and extracts a Header from the compiled file's
// first top-level form.
func ParseHeader(form ast.Value) (Header, error) {
	elems, ok := ast.ListElems(form)
	if !ok || len(elems) < 2 {
		return Header{}, &FormatError{Msg: "malformed compiled-file header"}
	}
	major, ok := intOf(elems[0])
	if !ok {
		return Header{}, &FormatError{Msg: "compiled-file header major version is not an integer"}
	}
	minor, ok := intOf(elems[1])
	if !ok {
		return Header{}, &FormatError{Msg: "compiled-file header minor version is not an integer"}
	}
	if !supportedMajors[major] {
		return Header{}, &FormatError{Msg: "version number mismatch"}
	}
	h := Header{Major: major, Minor: minor}
	if len(elems) >= 3 {
		h.BigEndian = truthy(elems[2])
	}
	return h, nil
}

// ProcDescriptor is one compiled procedure: (nlevels nregs bytecode datavec
// funvec). Bytecode is the raw instruction buffer (a BufLit in source
// form); Datavec and Funvec are carried through uninterpreted, since their
// contents are VM-internal values the reader core does not otherwise
// model.
type ProcDescriptor struct {
	Pos     gotok.Pos
	NLevels int
	NRegs   int
	Code    []byte
	Datavec ast.Value
	Funvec  ast.Value
}

// FormatError reports a malformed compiled-file form.
type FormatError struct{ Msg string }

func (e *FormatError) Error() string { return "bytecode: " + e.Msg }

// ParseDescriptor extracts a ProcDescriptor from one procedure descriptor
// (one element of a post-header top-level form), byte-swapping its bytecode buffer in 32-bit words if
// fileBigEndian disagrees with the host's native order.
func ParseDescriptor(form ast.Value, fileBigEndian bool) (*ProcDescriptor, error) {
	elems, ok := ast.ListElems(form)
	if !ok || len(elems) < 5 {
		return nil, &FormatError{Msg: "malformed procedure descriptor"}
	}
	nlevels, ok := intOf(elems[0])
	if !ok {
		return nil, &FormatError{Msg: "procedure descriptor nlevels is not an integer"}
	}
	nregs, ok := intOf(elems[1])
	if !ok {
		return nil, &FormatError{Msg: "procedure descriptor nregs is not an integer"}
	}
	buf, ok := elems[2].(*ast.BufLit)
	if !ok {
		return nil, &FormatError{Msg: "procedure descriptor bytecode is not a buffer literal"}
	}

	code := append([]byte(nil), buf.Bytes...)
	if fileBigEndian != hostBigEndian {
		SwapWords32(code)
	}

	return &ProcDescriptor{
		Pos:     form.Pos(),
		NLevels: nlevels,
		NRegs:   nregs,
		Code:    code,
		Datavec: elems[3],
		Funvec:  elems[4],
	}, nil
}

// VM is the capability the loader needs from the evaluator: submit one
// compiled procedure descriptor for top-level invocation. The reader core
// does not implement a VM; callers supply one.
type VM interface {
	Submit(desc *ProcDescriptor) error
}

// Load parses a compiled top-level file from path, validates its header,
// and submits every procedure descriptor it contains to vm in order,
// stopping at the first error. Each top-level form after the header is a
// list of descriptors, so one form may carry any number of procedures.
func Load(path string, vm VM) (Header, error) {
	fset := gotok.NewFileSet()
	forms, err := parser.LispParse(fset, path, nil, 0)
	if err != nil {
		return Header{}, err
	}
	if len(forms) == 0 {
		return Header{}, &FormatError{Msg: "empty compiled-file"}
	}

	header, err := ParseHeader(forms[0])
	if err != nil {
		return Header{}, err
	}

	for _, form := range forms[1:] {
		descs, ok := ast.ListElems(form)
		if !ok {
			return header, &FormatError{Msg: "malformed procedure descriptor list"}
		}
		for _, elem := range descs {
			desc, err := ParseDescriptor(elem, header.BigEndian)
			if err != nil {
				return header, err
			}
			if err := vm.Submit(desc); err != nil {
				return header, err
			}
		}
	}
	return header, nil
}

func intOf(v ast.Value) (int, bool) {
	n, ok := v.(*ast.Number)
	if !ok || !n.IsInt {
		return 0, false
	}
	return int(n.Int), true
}

// truthy reports whether v represents a non-nil value: any symbol other
// than nil (e.g. "t") counts as true, while ast.Nil (the empty list) and
// the unqualified symbol nil count as false, mirroring the target
// language's own truthiness rule.
func truthy(v ast.Value) bool {
	if sym, ok := v.(*ast.Symbol); ok && sym.Package == "" && sym.Name == "nil" {
		return false
	}
	_, isNil := v.(*ast.NilValue)
	return !isNil
}
