// Package specfile resolves a bare module path to the actual file that
// should be loaded for it, trying the path as given and then a fixed set
// of suffixes in order.
package specfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Suffixes lists the extensions tried, in order, after the literal path
// itself: source form, compiled object, and literal-source-forced form.
var Suffixes = []string{".txr", ".tlo", ".tl"}

// Resolve finds the file that path names: first the path exactly as given
// (if it names a regular file), then path+".txr", then path+".tlo", then
// path+".tl". The suffix retries apply only to a path with no recognized
// suffix of its own: a path already naming one of the three flavors fails
// as soon as it is missing rather than growing a second extension. Resolve
// returns the resolved path, or an error naming every candidate tried if
// none exist.
func Resolve(path string) (string, error) {
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return path, nil
	}

	tried := []string{path}
	if !hasKnownSuffix(path) {
		for _, suf := range Suffixes {
			candidate := path + suf
			tried = append(tried, candidate)
			if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", &NotFoundError{Path: path, Tried: tried}
}

func hasKnownSuffix(path string) bool {
	ext := filepath.Ext(path)
	for _, suf := range Suffixes {
		if ext == suf {
			return true
		}
	}
	return false
}

// NotFoundError reports that none of the candidates Resolve tried exist.
type NotFoundError struct {
	Path  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("specfile: no source found for %q (tried %v)", e.Path, e.Tried)
}

// IsCompiled reports whether path names a compiled top-level (".tlo") by
// its resolved suffix, the signal the root package's ReadCompiledFile uses
// to decide whether to parse source text or load a compiled image.
func IsCompiled(path string) bool {
	return filepath.Ext(path) == ".tlo"
}
