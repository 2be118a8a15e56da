// Package invariant provides a panic-on-programmer-error helper
// (SPEC_FULL.md §2.2); no package in this module calls it at present. It is reserved
// for violations that can only come from a bug in this module's own code,
// never from data a map author or config could have supplied validly —
// those go through config.ValidationError instead.
package invariant

import "fmt"

// Check panics with a formatted message if cond is false.
func Check(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
