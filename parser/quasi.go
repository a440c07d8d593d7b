package parser

import (
	gotok "go/token"

	"github.com/sreader/lisp/ast"
	"github.com/sreader/lisp/scanner"
)

// parseQuasiStr turns the raw text of a backtick-delimited quasi-string
// literal into an ast.Str, with every "@name" or "@(expr)" embed pulled out
// into Embeds in left-to-right order. The embeds are parsed independently
// of the enclosing form (their own positions are relative to a throwaway
// file), since splicing their source text back into the parent file's
// token stream would require the scanner to re-enter mid-literal.
func (p *Parser) parseQuasiStr() ast.Value {
	pos := p.pos
	raw := p.lit
	p.next()

	p.quasiLevel++
	embeds := p.splitQuasiEmbeds(pos, raw)
	p.quasiLevel--

	return &ast.Str{StrPos: pos, Value: raw, Quasi: true, Embeds: embeds}
}

// splitQuasiEmbeds scans raw for "@(" ... ")" groups (tracking paren
// nesting so an embed may itself contain parenthesized subexpressions) and
// bare "@name" runs, parsing each into a Value.
func (p *Parser) splitQuasiEmbeds(pos gotok.Pos, raw string) []ast.Value {
	var embeds []ast.Value
	i := 0
	for i < len(raw) {
		if raw[i] != '@' || i+1 >= len(raw) {
			i++
			continue
		}
		switch {
		case raw[i+1] == '(':
			depth := 1
			j := i + 2
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			end := j - 1
			if end < i+2 {
				end = i + 2
			}
			embeds = append(embeds, p.parseEmbedded(pos, raw[i+2:end]))
			i = j
		case scanner.IsSymbolConstituent(rune(raw[i+1])):
			j := i + 1
			for j < len(raw) && scanner.IsSymbolConstituent(rune(raw[j])) {
				j++
			}
			embeds = append(embeds, &ast.Symbol{Name: raw[i+1 : j]})
			i = j
		default:
			i++
		}
	}
	return embeds
}

// parseEmbedded parses text as a single expression with a throwaway
// sub-parser that shares this parser's circular-reference and struct-type
// tables: an embed that references a #n= label bound by the enclosing form
// observes the same binding instead of reporting a fresh dangling
// reference. Diagnostics from the embed are re-reported against the
// enclosing quasi-string's position, since the sub-parser's own positions
// are relative to a throwaway file.
func (p *Parser) parseEmbedded(pos gotok.Pos, text string) ast.Value {
	fset := gotok.NewFileSet()
	sub := New(fset, "<embed>", []byte(text), 0)
	sub.circDefs = p.circDefs
	sub.structTypes = p.structTypes
	v := sub.parseExpr()
	for _, e := range sub.errors {
		p.error(pos, "in quasi-string embed: "+e.Msg)
	}
	return v
}
