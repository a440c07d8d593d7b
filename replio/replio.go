// Package replio adapts the reader's balanced-input and completion
// engines, plus a small amount of REPL bookkeeping (history, RC-file
// permission checks, interrupt handling), to the shape a terminal
// line-editor library expects. It does not implement a line editor
// itself: raw-mode terminal I/O remains the caller's concern, reached only
// through the narrow interfaces below. History persistence to a file is
// provided by History's LoadHistory and SaveHistory.
package replio

import (
	"bufio"
	"fmt"
	gotok "go/token"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/sreader/lisp/ast"
	"github.com/sreader/lisp/balance"
	"github.com/sreader/lisp/complete"
	"github.com/sreader/lisp/parser"
)

// uname returns the running kernel's sysname field, the same field the
// CYGNAL-prefix check in homeDir consults. It calls syscall.Uname
// directly, so this file builds only where that call exists (Linux). If
// the call fails, its error is returned and homeDir does not consult
// USERPROFILE.
func uname() (string, error) {
	var buf syscall.Utsname
	if err := syscall.Uname(&buf); err != nil {
		return "", err
	}
	b := make([]byte, 0, len(buf.Sysname))
	for _, c := range buf.Sysname {
		if c == 0 {
			break
		}
		b = append(b, byte(c))
	}
	return string(b), nil
}

// homeDir resolves the directory the history and RC files live under. HOME
// is authoritative; USERPROFILE is consulted as a fallback only when the
// running kernel reports itself as a Cygwin-family environment, since that
// is the one platform where HOME is not reliably set for a native Windows
// process.
func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	if uname, err := uname(); err == nil && strings.HasPrefix(uname, "CYGNAL") {
		if up := os.Getenv("USERPROFILE"); up != "" {
			return up
		}
	}
	return ""
}

// HistoryPath returns the path of the persistent REPL history file,
// $HOME/.txr_history, or "" if no home directory can be determined.
func HistoryPath() string {
	if h := homeDir(); h != "" {
		return h + "/.txr_history"
	}
	return ""
}

// RCPath returns the path of the REPL start-up file, $HOME/.txr_profile, or
// "" if no home directory can be determined.
func RCPath() string {
	if h := homeDir(); h != "" {
		return h + "/.txr_profile"
	}
	return ""
}

// Stream is the minimal surface a line-editor library must provide for the
// reader to drive it: read one physical line at a time, without the
// trailing newline.
type Stream interface {
	ReadLine() (string, error)
}

// BalancedChecker adapts package balance's incremental automaton to the
// "is this enough input yet" question a line editor asks after every
// physical line, so it knows whether to keep prompting for continuation
// lines or submit the accumulated input.
type BalancedChecker struct {
	auto *balance.Automaton
}

// NewBalancedChecker creates a checker ready to accumulate lines for one
// top-level form.
func NewBalancedChecker() *BalancedChecker {
	return &BalancedChecker{auto: balance.New()}
}

// Feed adds one physical line and reports whether the input accumulated so
// far is a balanced, submittable top-level form.
func (b *BalancedChecker) Feed(line string) (balanced bool, err error) {
	err = b.auto.Feed(line)
	return b.auto.IsBalanced(), err
}

// Reset prepares the checker for the next top-level form.
func (b *BalancedChecker) Reset() { b.auto.Reset() }

// CompleteFunc is the shape most line-editor libraries want for a
// completion callback: given the full line and the cursor offset, return
// the candidate replacements for whatever is being typed at the cursor.
type CompleteFunc func(line string, cursor int) []string

// NewCompleter adapts package complete's scope-aware completion to a
// CompleteFunc, resolving the current scope and known struct types at
// call time via scopeAt and typesAt (the caller supplies these because
// only the embedding evaluator knows which scope is current and which
// struct types exist). Slot and method positions complete against struct
// slot names; every other position completes against visible bindings.
// Either callback may be nil, in which case its positions yield no
// candidates.
func NewCompleter(scopeAt func() *ast.Scope, typesAt func() []*ast.StructType) CompleteFunc {
	return func(line string, cursor int) []string {
		prefix, role := complete.Prefix(line, cursor)

		switch role {
		case complete.RoleSlot, complete.RoleMethod:
			if typesAt == nil {
				return nil
			}
			return complete.CompleteSlots(typesAt(), prefix)
		}

		if scopeAt == nil {
			return nil
		}
		scope := scopeAt()
		if scope == nil {
			return nil
		}
		cands := complete.Complete(scope, prefix, role)
		out := make([]string, len(cands))
		for i, c := range cands {
			out[i] = c.Name
		}
		return out
	}
}

// Atom supports editor-side paste expansion: it parses line as Lisp and
// returns the whole form when the form is already atomic, or the n-th
// leaf (zero-based, left to right) of the form's traversal otherwise. ok
// is false when line does not parse or n is out of range.
func Atom(line string, n int) (v ast.Value, ok bool) {
	fset := gotok.NewFileSet()
	forms, err := parser.LispParse(fset, "<line>", line, 0)
	if err != nil || len(forms) == 0 {
		return nil, false
	}
	form := forms[0]
	if isAtom(form) {
		return form, true
	}

	var leaves []ast.Value
	ast.Inspect(form, func(node ast.Value) bool {
		if isAtom(node) {
			if _, isNil := node.(*ast.NilValue); !isNil {
				leaves = append(leaves, node)
			}
			return false
		}
		return true
	})
	if n < 0 || n >= len(leaves) {
		return nil, false
	}
	return leaves[n], true
}

func isAtom(v ast.Value) bool {
	switch v.(type) {
	case *ast.Cons, *ast.Vector, *ast.HashTable, *ast.Struct, *ast.Lambda,
		*ast.Quoted, *ast.Range:
		return false
	}
	return true
}

// History is a bounded ring of previously submitted top-level forms, kept
// as their source text rather than parsed values so it can be persisted
// and reloaded independent of any particular evaluator session.
type History struct {
	mu      sync.Mutex
	entries []string
	max     int
}

// NewHistory creates a History that retains at most max entries, discarding
// the oldest when full.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 1
	}
	return &History{max: max}
}

// Add appends line to the history, evicting the oldest entry if the
// history is already at capacity.
func (h *History) Add(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, line)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
}

// Entries returns a copy of the history in oldest-first order.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// LoadHistory reads up to h's capacity of the most recent lines from path
// (line-oriented, one entry per line, as written by SaveHistory), replacing
// whatever entries h already holds. A missing file is not an error: a
// fresh installation simply starts with empty history.
func (h *History) LoadHistory(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(lines) > h.max {
		lines = lines[len(lines)-h.max:]
	}
	h.entries = lines
	return nil
}

// SaveHistory writes every entry in h to path, one per line, truncating
// any existing file.
func (h *History) SaveHistory(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range h.Entries() {
		if _, err := w.WriteString(e); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// CheckRCPermissions refuses to load a start-up RC file that is writable
// by anyone other than its owner, the same refusal a shell applies to a
// dotfile found group- or world-writable.
func CheckRCPermissions(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.Mode().Perm()&0o022 != 0 {
		return fmt.Errorf("replio: refusing to load %s: group or world writable (mode %v)", path, fi.Mode().Perm())
	}
	return nil
}

// Interrupt is the exception value delivered to a blocked read when the
// process receives SIGINT, mirroring the line editor's own "intr"
// condition: a read is abandoned, not the whole process.
type Interrupt struct{}

func (Interrupt) Error() string { return "interrupted" }

// InterruptWatcher delivers an Interrupt on C to every blocked read until
// Stop is called.
type InterruptWatcher struct {
	sigs chan os.Signal
	C    <-chan Interrupt
	done chan struct{}
}

// WatchInterrupts installs a SIGINT handler and returns a watcher whose C
// channel receives one Interrupt per SIGINT until Stop is called.
func WatchInterrupts() *InterruptWatcher {
	sigs := make(chan os.Signal, 1)
	out := make(chan Interrupt)
	signal.Notify(sigs, syscall.SIGINT)

	w := &InterruptWatcher{sigs: sigs, C: out, done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-sigs:
				select {
				case out <- Interrupt{}:
				case <-w.done:
					return
				}
			case <-w.done:
				return
			}
		}
	}()
	return w
}

// Stop releases the SIGINT handler and terminates the watcher's goroutine.
func (w *InterruptWatcher) Stop() {
	signal.Stop(w.sigs)
	close(w.done)
}
