package network

import (
	"fmt"
	"strings"
)

// ValidationError reports structurally invalid input: unknown activity
// references, self-loops, duplicate ids, negative durations or unknown kinds.
// It is detected before any scheduling pass runs.
type ValidationError struct {
	Reason     string
	ActivityID string
	Dependency *Dependency
}

func (e *ValidationError) Error() string {
	switch {
	case e.Dependency != nil:
		return fmt.Sprintf("invalid dependency %s: %s", e.Dependency, e.Reason)
	case e.ActivityID != "":
		return fmt.Sprintf("invalid activity %q: %s", e.ActivityID, e.Reason)
	}
	return "invalid network: " + e.Reason
}

// CircularDependencyError reports a cycle in the dependency graph. Path is a
// closed walk: it starts and ends at the same activity id.
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	return "circular dependency: " + strings.Join(e.Path, " → ")
}
