package domain

import "fmt"

// SequentialIDs makes block ids predictable ("b1", "b2", …) for the
// duration of a test.
func SequentialIDs() (restore func()) {
	prev := newID
	n := 0
	newID = func() string {
		n++
		return fmt.Sprintf("b%d", n)
	}
	return func() { newID = prev }
}
