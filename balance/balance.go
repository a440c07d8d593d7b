// Package balance implements an incremental finite-state automaton that
// decides whether a run of text read so far forms a balanced, submittable
// top-level form: every opening bracket, string, regex, character, and
// buffer literal has been closed. It is driven one line at a time so a
// line editor can ask "is this enough input yet?" without re-scanning
// everything typed so far.
package balance

import (
	"github.com/rwxrob/structs/qstack"
)

// State names the lexical context the automaton is currently inside.
type State int

const (
	Code State = iota
	InString
	InStringEscape
	InQuasiString
	InQuasiStringEscape
	InRegex
	InRegexEscape
	InBufLit
	InCharLit
	InLineComment
	InDatumPrefix
)

// frame records one open bracket-like context so its matching close can be
// checked. Close is the rune that ends this frame. quasiReturn marks the
// frame opened by an "@(" quasi-string embed: popping it returns the
// automaton to InQuasiString rather than leaving it in Code, so text after
// the embed's closing paren is again scanned as quasi-string content
// instead of code.
type frame struct {
	open        rune
	close       rune
	quasiReturn bool
}

// maxDepth is the deepest nesting the automaton tracks honestly. Past it,
// the input is declared balanced so the editor submits the mess to the real
// parser for a definitive diagnosis.
const maxDepth = 30

// Automaton tracks balance across incremental chunks of input. The zero
// value is ready to use.
type Automaton struct {
	state  State
	frames *qstack.QS[*frame]
	depth  int
	// pending remembers the state to return to once a one-character literal
	// (a character literal's single rune) has been consumed.
	pending State
	// forced latches once the input stops being honestly trackable (an
	// unmatched close bracket or nesting past maxDepth); from then on
	// IsBalanced reports true, forcing a submit.
	forced bool
}

// New creates a ready-to-drive Automaton.
func New() *Automaton {
	return &Automaton{state: Code, frames: qstack.New[*frame]()}
}

// Depth reports how many nested bracket-like frames are currently open.
func (a *Automaton) Depth() int { return a.depth }

func (a *Automaton) push(open, close rune) {
	a.frames.Push(&frame{open: open, close: close})
	a.depth++
	if a.depth > maxDepth {
		a.forced = true
	}
}

// pushQuasiEmbed opens the frame for an "@(" embed's parenthesis, so its
// matching close returns the automaton to InQuasiString instead of Code.
func (a *Automaton) pushQuasiEmbed() {
	a.frames.Push(&frame{open: '(', close: ')', quasiReturn: true})
	a.depth++
	if a.depth > maxDepth {
		a.forced = true
	}
}

func (a *Automaton) popExpect(close rune) bool {
	top := a.frames.Pop()
	if top == nil {
		return false
	}
	a.depth--
	if top.close != close {
		return false
	}
	if top.quasiReturn {
		a.state = InQuasiString
	}
	return true
}

// Feed processes one line of input (without its trailing newline) and
// updates the automaton's state. It returns an error only for a close
// bracket that does not match the innermost open one; unmatched opens are
// simply reflected in IsBalanced returning false.
func (a *Automaton) Feed(line string) error {
	// A line comment left open by the previous line ended at that line's
	// newline, so this line starts fresh in Code.
	if a.state == InLineComment {
		a.state = Code
	}
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch a.state {
		case InLineComment:
			// The rest of the line is comment text.
			continue

		case InStringEscape:
			a.state = InString
			continue

		case InString:
			switch ch {
			case '\\':
				a.state = InStringEscape
			case '"':
				a.state = Code
			}
			continue

		case InQuasiStringEscape:
			a.state = InQuasiString
			continue

		case InQuasiString:
			switch {
			case ch == '\\':
				a.state = InQuasiStringEscape
			case ch == '`':
				a.state = Code
			case ch == '@' && i+1 < len(runes) && runes[i+1] == '(':
				a.pushQuasiEmbed()
				a.state = Code
				i++
			}
			continue

		case InRegexEscape:
			a.state = InRegex
			continue

		case InRegex:
			switch ch {
			case '\\':
				a.state = InRegexEscape
			case '/':
				a.state = Code
			}
			continue

		case InBufLit:
			if ch == '\'' {
				a.state = Code
			}
			continue

		case InCharLit:
			a.state = a.pending
			continue

		case InDatumPrefix:
			a.state = Code
			i--
			continue
		}

		switch ch {
		case '(':
			a.push('(', ')')
		case '[':
			a.push('[', ']')
		case ')', ']':
			if !a.popExpect(ch) {
				// Whether the rest even parses is unknowable from here, so
				// force a submit and let the parser produce the diagnosis.
				a.forced = true
				return errUnmatchedClose(ch)
			}
		case '"':
			a.state = InString
		case '`':
			// A backtick directly followed by '(' quasiquotes an expression;
			// the '(' is then handled on the next iteration as an ordinary
			// bracket. Any other following character starts a quasi-string.
			if !(i+1 < len(runes) && runes[i+1] == '(') {
				a.state = InQuasiString
			}
		case ';':
			a.state = InLineComment
		case '#':
			if i+1 < len(runes) {
				switch runes[i+1] {
				case '(':
					a.push('(', ')')
					i++
				case 'H', 'S':
					if i+2 < len(runes) && runes[i+2] == '(' {
						a.push('(', ')')
						i += 2
					}
				case '\\':
					a.pending = Code
					a.state = InCharLit
					i++
				case '/':
					a.state = InRegex
					i++
				case ';':
					a.state = InDatumPrefix
					i++
				case 'b':
					if i+2 < len(runes) && runes[i+2] == '\'' {
						a.state = InBufLit
						i += 2
					}
				}
			}
		}
	}
	return nil
}

type unmatchedCloseError struct{ ch rune }

func (e *unmatchedCloseError) Error() string {
	return "unmatched closing '" + string(e.ch) + "'"
}

func errUnmatchedClose(ch rune) error { return &unmatchedCloseError{ch: ch} }

// IsBalanced reports whether the input fed so far forms a complete,
// submittable top-level form: no open frames remain and the automaton is
// back in plain code (not mid-string, mid-regex, or mid-literal). A
// trailing line comment without its newline counts as closed, since the
// newline the editor is about to append would close it anyway. Input that
// overflowed the depth limit or closed an unopened bracket is reported
// balanced so it reaches the parser.
func (a *Automaton) IsBalanced() bool {
	if a.forced {
		return true
	}
	return (a.state == Code || a.state == InLineComment) && a.depth == 0
}

// Reset returns the automaton to its initial state, ready to check the
// next top-level form.
func (a *Automaton) Reset() {
	a.state = Code
	a.depth = 0
	a.frames = qstack.New[*frame]()
	a.forced = false
}
