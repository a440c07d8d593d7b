// Package parser implements the reader's Parser object: a stateful,
// single-use driver over a scanner that accumulates circular-reference
// definitions, diagnostics, and (after priming) one parsed top-level form
// at a time.
package parser

import (
	goscan "go/scanner"
	gotok "go/token"

	"github.com/rwxrob/structs/qstack"

	"github.com/sreader/lisp/ast"
	"github.com/sreader/lisp/scanner"
	"github.com/sreader/lisp/token"
)

// Mode is a set of flags (or 0) controlling parser behavior.
type Mode uint

const (
	// Trace causes the parser to print a trace of parsed productions, for
	// grammar debugging.
	Trace Mode = 1 << iota
	// AllErrors disables LispParse's bailout after more than 10 errors,
	// reporting every diagnostic found.
	AllErrors
)

// pushed is one saved lookahead token, used by the bounded token-pushback
// stack. Kept as a pointer type so qstack.Pop's nil-on-empty contract is
// usable as an "is there anything pushed back" check.
type pushed struct {
	pos gotok.Pos
	tok token.Token
	lit string
}

// primeMode selects which of the three start productions Read should
// drive, mirroring the three ways a top-level read can be primed.
type primeMode int

const (
	primeLisp primeMode = iota
	primeInteractive
	primeRegex
)

// Parser is the reader's stateful driver over one source unit: it is
// constructed, primed, and driven one top-level form per Read until its
// source is exhausted, accumulating diagnostics and circular-reference
// bookkeeping as it goes. Once SyntaxTree comes back as ast.UNSET at EOF,
// a fresh Parser is required to read further input.
type Parser struct {
	file    *gotok.File
	scanner scanner.Scanner
	mode    Mode

	errors goscan.ErrorList

	pos gotok.Pos
	tok token.Token
	lit string

	pushback *qstack.QS[*pushed]

	syncPos gotok.Pos
	syncCnt int

	quasiLevel int

	// circDefs accumulates every #n= definition and #n# placeholder seen
	// while parsing one top-level form, keyed by label text, for the
	// back-patch pass that runs once the form is fully read.
	circDefs map[string]*ast.CircRef

	// structTypes records slot layouts discovered from earlier struct
	// literals in the same source unit, keyed by type name, so repeated
	// literals of the same type share a *ast.StructType.
	structTypes map[string]*ast.StructType

	// SyntaxTree holds the most recently completed top-level form, or
	// ast.UNSET if none has been primed yet or the previous one has already
	// been consumed by the caller.
	SyntaxTree ast.Value

	// prime records which start production is in effect, set by whichever
	// of PrimeLisp/PrimeInteractive/PrimeRegex was last called.
	prime primeMode

	trace  bool
	indent int
}

// New creates a Parser reading src (already decoded into bytes) under the
// given name, recording positions in fset. Diagnostics are collected in
// the Parser's own error list rather than reported through a callback.
func New(fset *gotok.FileSet, filename string, src []byte, mode Mode) *Parser {
	p := &Parser{
		mode:        mode,
		pushback:    qstack.New[*pushed](),
		circDefs:    make(map[string]*ast.CircRef),
		structTypes: make(map[string]*ast.StructType),
		SyntaxTree:  ast.UNSET,
		trace:       mode&Trace != 0,
	}
	p.file = fset.AddFile(filename, -1, len(src))
	p.scanner.Init(p.file, src, p.errorHandler, 0)
	p.next()
	return p
}

func (p *Parser) errorHandler(pos gotok.Position, msg string) {
	p.errors.Add(pos, msg)
}

func (p *Parser) error(pos gotok.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
}

func (p *Parser) errorExpected(pos gotok.Pos, msg string) {
	msg = "expected " + msg
	if pos == p.pos {
		switch {
		case p.tok == token.Illegal:
		default:
			msg += ", found " + p.tok.String()
			if p.tok.IsLiteral() {
				msg += " " + p.lit
			}
		}
	}
	p.error(pos, msg)
}

func (p *Parser) expect(tok token.Token) gotok.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorExpected(pos, "'"+tok.String()+"'")
	}
	p.next()
	return pos
}

// Reset abandons an in-flight form, for callers that caught a panic (or
// otherwise aborted) mid-parse and want to keep reading from the same
// Parser: the pushback stack, circular-reference table, and quasiquote
// depth are cleared, and the syntax tree returns to UNSET. The scanner's
// cursor is left where it stopped, so the next Read resumes at the
// following token rather than re-reading consumed input.
func (p *Parser) Reset() {
	p.pushback = qstack.New[*pushed]()
	for k := range p.circDefs {
		delete(p.circDefs, k)
	}
	p.quasiLevel = 0
	p.SyntaxTree = ast.UNSET
}

// Errors returns every diagnostic accumulated so far, sorted by position.
func (p *Parser) Errors() goscan.ErrorList {
	p.errors.Sort()
	return p.errors
}

// next advances to the next token, consulting the pushback stack first so
// that a token pushed back with unread is delivered again before the
// scanner is asked for more.
func (p *Parser) next() {
	if top := p.pushback.Pop(); top != nil {
		p.pos, p.tok, p.lit = top.pos, top.tok, top.lit
		return
	}
	p.pos, p.tok, p.lit = p.scanner.Scan()
}

// unread pushes the current lookahead back onto the pushback stack and
// replaces it with prev, so that the next call to next() returns to the
// current token. No production in grammar.go calls it; the dotted-pair
// case in parseList needs no lookahead past the Dot token.
func (p *Parser) unread(prevPos gotok.Pos, prevTok token.Token, prevLit string) {
	p.pushback.Push(&pushed{pos: p.pos, tok: p.tok, lit: p.lit})
	p.pos, p.tok, p.lit = prevPos, prevTok, prevLit
}

// advance consumes tokens until it finds one in the to set, or reaches
// EOF, guarding against non-terminating recovery by refusing to report an
// error at the same position more than 10 times.
func (p *Parser) advance(to map[token.Token]bool) {
	for ; p.tok != token.EOF; p.next() {
		if to[p.tok] {
			if p.pos == p.syncPos && p.syncCnt < 10 {
				p.syncCnt++
				return
			}
			if p.pos > p.syncPos {
				p.syncPos = p.pos
				p.syncCnt = 0
				return
			}
		}
	}
}

var stmtStart = map[token.Token]bool{
	token.LParen:   true,
	token.LBracket: true,
}

func (p *Parser) printTrace(a ...interface{}) {
	if !p.trace {
		return
	}
	const dots = ". . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . ."
	pos := p.file.Position(p.pos)
	fprintIndent(pos, p.indent, dots, a...)
}

func (p *Parser) tracef(msg string) func() {
	if !p.trace {
		return func() {}
	}
	p.printTrace(msg, "(")
	p.indent++
	return func() {
		p.indent--
		p.printTrace(")")
	}
}
