package utils

import "fmt"

// AssertInvariant panics if the given condition is false.
// Used for conditions that can only be false through a programming error.
func AssertInvariant(condition bool, message string) {
	if !condition {
		panic(fmt.Sprintf("invariant violated: %s", message))
	}
}
