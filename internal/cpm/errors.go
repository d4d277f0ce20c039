package cpm

import "fmt"

// InvariantError signals a defect in the passes: total float computed from
// the start dates disagrees with total float computed from the finish dates.
// It never describes a property of the caller's input.
type InvariantError struct {
	ActivityID string
	ByStart    int // LS - ES
	ByFinish   int // LF - EF
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("internal invariant violated for %q: LS-ES=%d but LF-EF=%d", e.ActivityID, e.ByStart, e.ByFinish)
}
