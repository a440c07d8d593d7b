package parser

import (
	"strconv"
	"strings"

	"github.com/sreader/lisp/ast"
	"github.com/sreader/lisp/token"
)

// parseTopLevel parses one top-level form and runs the back-patch pass
// over it before returning. Every public reader function in interface.go
// except RegexParse (which reads through readRegex) funnels through it.
func (p *Parser) parseTopLevel() ast.Value {
	if p.mode&Trace != 0 {
		defer p.tracef("TopLevel")()
	}
	p.skipDatumComments()
	if p.tok == token.EOF {
		return ast.UNSET
	}
	v := p.parseExpr()
	if _, bad := v.(*ast.BadExpr); bad {
		p.advance(stmtStart)
	}
	p.backpatch(v)
	return v
}

// skipDatumComments consumes any run of #; prefixes, each discarding the
// expression that follows it. Datum comments may appear anywhere an
// element could, including immediately before a closing bracket.
func (p *Parser) skipDatumComments() {
	for p.tok == token.DatumComment {
		p.next()
		if p.tok != token.EOF {
			p.parseExpr()
		}
	}
}

func (p *Parser) parseExpr() ast.Value {
	switch p.tok {
	case token.LParen:
		return p.maybeRange(p.parseList())
	case token.LBracket:
		return p.maybeRange(p.parseBracketList())
	case token.HashLParen:
		return p.parseVector()
	case token.HashH:
		return p.parseHashTable()
	case token.HashS:
		return p.parseStruct()
	case token.Quote:
		return p.parseQuoted(ast.Quote)
	case token.Backquote:
		return p.parseQuoted(ast.Quasiquote)
	case token.Comma:
		return p.parseQuoted(ast.Unquote)
	case token.CommaAt:
		return p.parseQuoted(ast.UnquoteSplice)
	case token.DatumComment:
		return p.parseDatumComment()
	case token.CircDef:
		return p.parseCircDef()
	case token.CircRef:
		return p.parseCircRef()
	case token.Ident:
		return p.maybeRange(p.parseSymbol())
	case token.Number:
		return p.maybeRange(p.parseNumber())
	case token.String:
		return p.parseStr(false)
	case token.QuasiString:
		return p.parseQuasiStr()
	case token.Regexp:
		return p.parseRegexp()
	case token.CharLit:
		return p.parseCharLit()
	case token.BufLit:
		return p.parseBufLit()
	default:
		pos := p.pos
		p.errorExpected(pos, "expression")
		p.next()
		return &ast.BadExpr{From: pos, To: p.pos}
	}
}

// maybeRange turns "a..b" into an ast.Range when the parsed expression x is
// immediately followed by the range operator.
func (p *Parser) maybeRange(x ast.Value) ast.Value {
	if p.tok != token.DotDot {
		return x
	}
	pos := p.pos
	p.next()
	to := p.parseExpr()
	return &ast.Range{RangePos: pos, From: x, To: to}
}

func (p *Parser) parseList() ast.Value {
	lparen := p.expect(token.LParen)
	if p.tok == token.RParen {
		p.next()
		return ast.Nil
	}

	head := &ast.Cons{ConsPos: lparen}
	tail := head
	first := true

	for p.tok != token.RParen && p.tok != token.EOF {
		if p.tok == token.DatumComment {
			p.skipDatumComments()
			continue
		}
		if p.tok == token.Dot {
			p.next()
			tail.Cdr = p.parseExpr()
			break
		}
		elem := p.parseExpr()
		if first {
			head.Car = elem
			first = false
		} else {
			next := &ast.Cons{ConsPos: p.pos, Car: elem}
			tail.Cdr = next
			tail = next
		}
	}
	if tail.Cdr == nil {
		tail.Cdr = ast.Nil
	}
	p.expect(token.RParen)
	return head
}

// parseBracketList parses a square-bracket list, the alternate call/index
// syntax, into the same Cons representation as a parenthesized list.
func (p *Parser) parseBracketList() ast.Value {
	lbrack := p.expect(token.LBracket)
	if p.tok == token.RBracket {
		p.next()
		return ast.Nil
	}

	head := &ast.Cons{ConsPos: lbrack}
	tail := head
	first := true
	for p.tok != token.RBracket && p.tok != token.EOF {
		if p.tok == token.DatumComment {
			p.skipDatumComments()
			continue
		}
		elem := p.parseExpr()
		if first {
			head.Car = elem
			first = false
		} else {
			next := &ast.Cons{ConsPos: p.pos, Car: elem}
			tail.Cdr = next
			tail = next
		}
	}
	if tail.Cdr == nil {
		tail.Cdr = ast.Nil
	}
	p.expect(token.RBracket)
	return head
}

func (p *Parser) parseVector() ast.Value {
	pos := p.pos
	p.next() // consume '#('
	var elems []ast.Value
	for p.tok != token.RParen && p.tok != token.EOF {
		if p.tok == token.DatumComment {
			p.skipDatumComments()
			continue
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RParen)
	return &ast.Vector{VecPos: pos, Elems: elems}
}

// parseHashTable parses #H((hashed-keys) pairs...). The first sublist names
// which keys participate in hashing; it is consumed structurally but not
// separately recorded, since nothing downstream of the reader consults it.
func (p *Parser) parseHashTable() ast.Value {
	pos := p.pos
	p.next() // consume '#H('
	if p.tok == token.LParen {
		p.parseList()
	}
	h := &ast.HashTable{HashPos: pos, Hashed: true}
	for p.tok != token.RParen && p.tok != token.EOF {
		if p.tok != token.LParen {
			h.Keys = append(h.Keys, p.parseExpr())
			continue
		}
		pair := p.parseList()
		if cons, ok := pair.(*ast.Cons); ok {
			h.Keys = append(h.Keys, cons.Car)
			if cdrCons, ok := cons.Cdr.(*ast.Cons); ok {
				h.Vals = append(h.Vals, cdrCons.Car)
			} else {
				h.Vals = append(h.Vals, cons.Cdr)
			}
		}
	}
	p.expect(token.RParen)
	return h
}

func (p *Parser) parseStruct() ast.Value {
	pos := p.pos
	p.next() // consume '#S('
	name := ""
	if p.tok == token.Ident {
		name = p.lit
		p.next()
	}
	st, ok := p.structTypes[name]
	if !ok {
		st = &ast.StructType{Name: name}
		p.structTypes[name] = st
	}
	var vals []ast.Value
	slotIdx := 0
	for p.tok != token.RParen && p.tok != token.EOF {
		if p.tok == token.Ident {
			slot := p.lit
			p.next()
			if slotIdx < len(st.Slots) {
				st.Slots[slotIdx] = slot
			} else {
				st.Slots = append(st.Slots, slot)
			}
			slotIdx++
		}
		vals = append(vals, p.parseExpr())
	}
	p.expect(token.RParen)
	return &ast.Struct{StructPos: pos, Type: st, Vals: vals}
}

func (p *Parser) parseQuoted(form ast.QuoteForm) ast.Value {
	pos := p.pos
	p.next()

	entered := false
	switch form {
	case ast.Quasiquote:
		p.quasiLevel++
		entered = true
	case ast.Unquote, ast.UnquoteSplice:
		if p.quasiLevel == 0 {
			p.error(pos, "unquote outside quasiquote")
		} else {
			p.quasiLevel--
			entered = true
		}
	}

	x := p.parseExpr()

	if entered {
		switch form {
		case ast.Quasiquote:
			p.quasiLevel--
		case ast.Unquote, ast.UnquoteSplice:
			p.quasiLevel++
		}
	}
	return &ast.Quoted{QuotedPos: pos, Form: form, X: x}
}

func (p *Parser) parseDatumComment() ast.Value {
	p.next() // consume '#;'
	p.parseExpr()
	return p.parseExpr()
}

func (p *Parser) parseCircDef() ast.Value {
	pos := p.pos
	label := p.lit
	p.next()

	placeholder, exists := p.circDefs[label]
	if !exists {
		placeholder = &ast.CircRef{RefPos: pos, Label: label}
		p.circDefs[label] = placeholder
	} else if placeholder.Value != nil {
		p.error(pos, "duplicate circular reference definition #"+label+"=")
	}

	v := p.parseExpr()
	placeholder.Value = v
	return v
}

func (p *Parser) parseCircRef() ast.Value {
	pos := p.pos
	label := p.lit
	p.next()

	if ref, ok := p.circDefs[label]; ok {
		if ref.Value != nil {
			return ref.Value
		}
		return ref
	}

	ref := &ast.CircRef{RefPos: pos, Label: label}
	p.circDefs[label] = ref
	return ref
}

func (p *Parser) parseSymbol() ast.Value {
	pos := p.pos
	name := p.lit
	p.next()

	pkg := ""
	if idx := strings.IndexByte(name, ':'); idx >= 0 && idx < len(name)-1 {
		pkg, name = name[:idx], name[idx+1:]
	}
	return &ast.Symbol{SymPos: pos, Package: pkg, Name: name}
}

func (p *Parser) parseNumber() ast.Value {
	pos := p.pos
	text := p.lit
	p.next()

	n := &ast.Number{NumPos: pos, Text: text}
	if strings.ContainsAny(text, "./eE") && !strings.Contains(text, "/") {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			n.Float = f
			return n
		}
	}
	if strings.Contains(text, "/") {
		n.Float = parseRatio(text)
		return n
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		n.IsInt = true
		n.Int = i
		return n
	}
	p.error(pos, "malformed number literal "+strconv.Quote(text))
	return n
}

func parseRatio(text string) float64 {
	idx := strings.IndexByte(text, '/')
	num, _ := strconv.ParseFloat(text[:idx], 64)
	den, _ := strconv.ParseFloat(text[idx+1:], 64)
	if den == 0 {
		return 0
	}
	return num / den
}

func (p *Parser) parseStr(quasi bool) ast.Value {
	pos := p.pos
	val := p.lit
	p.next()
	return &ast.Str{StrPos: pos, Value: val, Quasi: quasi}
}

func (p *Parser) parseRegexp() ast.Value {
	pos := p.pos
	src := p.lit
	p.next()
	return &ast.Regexp{RegexpPos: pos, Source: src}
}

var charNames = map[string]rune{
	"space":   ' ',
	"newline": '\n',
	"tab":     '\t',
	"nul":     0,
	"return":  '\r',
}

func (p *Parser) parseCharLit() ast.Value {
	pos := p.pos
	name := p.lit
	p.next()

	r, ok := charNames[name]
	if !ok {
		runes := []rune(name)
		if len(runes) == 1 {
			r = runes[0]
			ok = true
		}
	}
	if !ok {
		p.error(pos, "unknown character literal #\\"+name)
	}
	return &ast.CharLit{CharPos: pos, Name: name, Rune: r}
}

func (p *Parser) parseBufLit() ast.Value {
	pos := p.pos
	hex := p.lit
	p.next()

	hex = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' {
			return -1
		}
		return r
	}, hex)
	if len(hex)%2 != 0 {
		p.error(pos, "buffer literal has odd number of hex digits")
		hex = hex[:len(hex)-1]
	}
	buf := make([]byte, 0, len(hex)/2)
	for i := 0; i+1 < len(hex); i += 2 {
		b, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			p.error(pos, "invalid hex byte "+hex[i:i+2]+" in buffer literal")
			continue
		}
		buf = append(buf, byte(b))
	}
	return &ast.BufLit{BufPos: pos, Bytes: buf}
}
