package parser

import (
	"fmt"
	gotok "go/token"
)

// fprintIndent prints a trace line of the form "line:col  dots  a...",
// with 2*indent bytes of dots (repeating dots when that is longer than
// it), in the style of go/parser's trace.go.
func fprintIndent(pos gotok.Position, indent int, dots string, a ...interface{}) {
	fmt.Printf("%5d:%3d: ", pos.Line, pos.Column)
	i := 2 * indent
	for i > len(dots) {
		fmt.Print(dots)
		i -= len(dots)
	}
	fmt.Print(dots[0:i])
	fmt.Println(a...)
}
