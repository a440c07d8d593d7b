package parser

import (
	"github.com/sreader/lisp/ast"
	"github.com/sreader/lisp/token"
)

// PrimeLisp selects the ordinary Lisp start production, the default for a
// fresh Parser; callers needing the interactive or regex start symbols
// call PrimeInteractive/PrimeRegex before the next Read instead.
func (p *Parser) PrimeLisp() { p.prime = primeLisp }

// PrimeInteractive selects the interactive-read start production: a single
// top-level form, with an immediately following line comment treated as
// trailing rather than leading the next form.
func (p *Parser) PrimeInteractive() { p.prime = primeInteractive }

// PrimeRegex selects the regex-embedded-expression start production, used
// when a regex literal's interpolated portion recurses back into the
// reader.
func (p *Parser) PrimeRegex() { p.prime = primeRegex }

// Read drives the Parser through whichever start production is primed,
// retrying while the result is ast.UNSET (a priming attempt that consumed
// only comments or pure whitespace) and while input remains. It returns
// ast.UNSET once the underlying source is exhausted.
func (p *Parser) Read() ast.Value {
	for {
		if p.tok == token.EOF {
			p.SyntaxTree = ast.UNSET
			return ast.UNSET
		}

		var v ast.Value
		switch p.prime {
		case primeInteractive:
			v = p.readInteractive()
		case primeRegex:
			v = p.readRegex()
		default:
			v = p.parseTopLevel()
		}

		p.SyntaxTree = v
		if v == ast.UNSET {
			if p.tok == token.EOF {
				return ast.UNSET
			}
			continue
		}
		return v
	}
}

// readInteractive reads a single top-level form. The scanner consumes a
// trailing line comment together with the rest of its line, so an
// interactive read never leaves comment lookahead to leak into the next
// prompt; nothing beyond the plain top-level production is needed.
func (p *Parser) readInteractive() ast.Value {
	return p.parseTopLevel()
}

// readRegex primes the regex-embedded-expression start production: exactly
// one expression, with no circular-reference bookkeeping (a regex
// interpolation cannot itself define or use #n= labels).
func (p *Parser) readRegex() ast.Value {
	if p.tok == token.EOF {
		return ast.UNSET
	}
	return p.parseExpr()
}

// AtEOF reports whether the Parser has consumed all of its source.
func (p *Parser) AtEOF() bool { return p.tok == token.EOF }
