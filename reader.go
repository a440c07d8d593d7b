// Package lisp is the reader core of an S-expression language runtime: a
// parser object with circular-reference support, a top-level driver, a
// balanced-input checker and completion engine for interactive use, and
// spec-file and compiled-file loaders. It wires together the token,
// scanner, ast, parser, balance, complete, specfile, bytecode, and replio
// packages behind a small functional-options facade, in the same shape as
// a root Biber type wiring a parser and a set of resolvers.
package lisp

import (
	"errors"
	gotok "go/token"
	"runtime"
	"sync"
	"weak"

	"github.com/sreader/lisp/ast"
	"github.com/sreader/lisp/bytecode"
	"github.com/sreader/lisp/parser"
	"github.com/sreader/lisp/specfile"
)

// Option configures a Reader built by New.
type Option func(*Reader)

// WithMode sets the parser.Mode flags every Parser the Reader constructs
// is initialized with.
func WithMode(mode parser.Mode) Option {
	return func(r *Reader) { r.mode = mode }
}

// WithTrace enables grammar tracing on every Parser the Reader constructs.
func WithTrace() Option {
	return func(r *Reader) { r.mode |= parser.Trace }
}

// WithFileSet supplies a *token.FileSet for the Reader to record positions
// in, instead of the fresh one New creates by default. Sharing a FileSet
// across Readers keeps position reporting consistent when forms from
// several files are compared or printed together.
func WithFileSet(fset *gotok.FileSet) Option {
	return func(r *Reader) { r.fset = fset }
}

// Reader is the facade over every reader-core component. The zero value is
// not ready to use; construct one with New.
type Reader struct {
	fset *gotok.FileSet
	mode parser.Mode
}

// New creates a Reader configured by opts.
func New(opts ...Option) *Reader {
	r := &Reader{fset: gotok.NewFileSet()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FileSet returns the Reader's token.FileSet, for callers that need to
// turn a token.Pos from a returned value into a token.Position.
func (r *Reader) FileSet() *gotok.FileSet { return r.fset }

// LispParse reads every top-level form from src under the Lisp start
// production. src may be a string, []byte, *bytes.Buffer, io.Reader, or
// nil (meaning "read filename from disk").
func (r *Reader) LispParse(filename string, src interface{}) ([]ast.Value, error) {
	return parser.LispParse(r.fset, filename, src, r.mode)
}

// NewParser constructs a Parser over src for incremental (NRead/IRead)
// driving. Callers holding a stream object can additionally associate it
// with the Parser via RegisterStream, so later reads against the same
// stream find the parser (and its unconsumed lookahead) again.
func (r *Reader) NewParser(filename string, src []byte) *parser.Parser {
	return parser.New(r.fset, filename, src, r.mode)
}

// NRead performs one normal read from p.
func (r *Reader) NRead(p *parser.Parser) (ast.Value, error) { return parser.NRead(p) }

// IRead performs one interactive read from p.
func (r *Reader) IRead(p *parser.Parser) (ast.Value, error) { return parser.IRead(p) }

// RegexParse parses str as a single regex-embedded expression.
func (r *Reader) RegexParse(str string) (ast.Value, error) {
	return parser.RegexParse(r.fset, str)
}

// ReadEvalStream reads successive top-level forms from src and invokes
// eval on each.
func (r *Reader) ReadEvalStream(filename string, src interface{}, eval func(ast.Value) error) error {
	return parser.ReadEvalStream(r.fset, filename, src, r.mode, eval)
}

// ReadCompiledFile resolves path (trying it bare, then as .txr/.tlo/.tl).
// If the resolved file is a compiled top-level (".tlo"), its header is
// validated and every procedure descriptor it contains is submitted to vm
// in turn; vm may be nil when the caller only wants the last form of a
// plain source file. If the resolved file is Lisp source, it is parsed in
// full and the last top-level form is returned, matching the REPL's
// "load a file, evaluate and return its last result" convention.
func (r *Reader) ReadCompiledFile(path string, vm bytecode.VM) (ast.Value, error) {
	resolved, err := specfile.Resolve(path)
	if err != nil {
		return nil, err
	}
	if specfile.IsCompiled(resolved) {
		if vm == nil {
			return nil, errors.New("lisp: compiled file " + resolved + " requires a VM")
		}
		_, err := bytecode.Load(resolved, vm)
		return ast.Nil, err
	}
	forms, err := r.LispParse(resolved, nil)
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return ast.Nil, nil
	}
	return forms[len(forms)-1], nil
}

// streamRegistry maps a stream identity (as a weak pointer, so the map key
// never keeps the stream itself reachable) to a weak reference to its
// Parser: once the caller drops both its *Parser and its stream, both
// become collectible, and the registry entry is removed by the stream's
// cleanup rather than leaking for the life of the process.
var streamRegistry sync.Map // map[weak.Pointer[S]]weak.Pointer[parser.Parser]

// RegisterStream installs stream -> p in the process-wide registry and
// arranges for the entry to be removed once stream becomes unreachable.
// Weak pointers made from the same stream compare equal, which is what
// makes the weak key usable for lookup.
func RegisterStream[S any](stream *S, p *parser.Parser) {
	key := weak.Make(stream)
	streamRegistry.Store(key, weak.Make(p))
	runtime.AddCleanup(stream, cleanupStream, any(key))
}

func cleanupStream(key any) {
	streamRegistry.Delete(key)
}

// ParserForStream looks up the Parser previously registered against
// stream, returning false if none was registered or the parser has since
// been collected.
func ParserForStream[S any](stream *S) (*parser.Parser, bool) {
	key := weak.Make(stream)
	v, ok := streamRegistry.Load(key)
	if !ok {
		return nil, false
	}
	wp := v.(weak.Pointer[parser.Parser])
	p := wp.Value()
	if p == nil {
		streamRegistry.Delete(key)
		return nil, false
	}
	return p, true
}
