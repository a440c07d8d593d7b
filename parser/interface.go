package parser

import (
	"bytes"
	"fmt"
	gotok "go/token"
	"io"
	"os"

	"github.com/sreader/lisp/ast"
)

// readSource normalizes the many shapes a caller may hand in as source
// text, mirroring go/parser's own readSource: a string or []byte is used
// directly, a *bytes.Buffer or io.Reader is drained, and nil means "read
// filename from disk".
func readSource(filename string, src interface{}) ([]byte, error) {
	if src != nil {
		switch s := src.(type) {
		case string:
			return []byte(s), nil
		case []byte:
			return s, nil
		case *bytes.Buffer:
			if s != nil {
				return s.Bytes(), nil
			}
		case io.Reader:
			return io.ReadAll(s)
		default:
			return nil, fmt.Errorf("parser: invalid source type %T", src)
		}
	}
	return os.ReadFile(filename)
}

// bailout is panicked by LispParse once more than 10 errors have
// accumulated (unless AllErrors is set), in the spirit of go/parser's
// early-exit behavior for badly malformed input.
type bailout struct{}

// LispParse reads every top-level form from src under the Lisp start
// production, returning them in order along with any accumulated
// diagnostics. It is the entry point the non-interactive evaluator uses to
// load a whole file or string.
func LispParse(fset *gotok.FileSet, filename string, src interface{}, mode Mode) (forms []ast.Value, err error) {
	text, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}
	p := New(fset, filename, text, mode)

	defer func() {
		if e := recover(); e != nil {
			if _, ok := e.(bailout); !ok {
				panic(e)
			}
		}
		p.errors.Sort()
		err = p.errors.Err()
	}()

	for {
		v := p.Read()
		if v == ast.UNSET && p.AtEOF() {
			break
		}
		forms = append(forms, v)
		if mode&AllErrors == 0 && len(p.errors) > 10 {
			panic(bailout{})
		}
	}
	return forms, err
}

// NRead performs one normal (non-interactive) read from an already
// constructed Parser, returning ast.UNSET once p is exhausted.
func NRead(p *Parser) (ast.Value, error) {
	p.PrimeLisp()
	v := p.Read()
	p.errors.Sort()
	return v, p.errors.Err()
}

// IRead performs one interactive read from p, suitable for driving a REPL
// one form at a time against a persistent input stream.
func IRead(p *Parser) (ast.Value, error) {
	p.PrimeInteractive()
	v := p.Read()
	p.errors.Sort()
	return v, p.errors.Err()
}

// RegexParse parses str as a single regex-embedded expression, the start
// production used when a regex literal's interpolated portion recurses
// into the reader.
func RegexParse(fset *gotok.FileSet, str string) (ast.Value, error) {
	p := New(fset, "<regex>", []byte(str), 0)
	p.PrimeRegex()
	v := p.Read()
	p.errors.Sort()
	return v, p.errors.Err()
}

// ReadEvalStream reads successive top-level forms from src and invokes eval
// on each in turn, stopping at the first eval error or at end of input.
// This is the shape of a file- or stdin-driven top-level loop once an
// evaluator is plugged in; the reader itself never evaluates.
func ReadEvalStream(fset *gotok.FileSet, filename string, src interface{}, mode Mode, eval func(ast.Value) error) error {
	text, err := readSource(filename, src)
	if err != nil {
		return err
	}
	p := New(fset, filename, text, mode)
	for {
		v := p.Read()
		if v == ast.UNSET && p.AtEOF() {
			break
		}
		if err := p.errors.Err(); err != nil {
			return err
		}
		if err := eval(v); err != nil {
			return err
		}
	}
	return p.errors.Err()
}
