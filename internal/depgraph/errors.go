package depgraph

import (
	"fmt"
	"strings"
)

// CycleError rejects a graph edit that would create a dependency cycle.
type CycleError struct {
	// Path is the would-be cycle, prerequisite-first.
	Path []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Path, " -> ")
}

// DuplicateEdgeError rejects inserting an edge that already exists.
type DuplicateEdgeError struct {
	Prereq    string
	Dependent string
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("edge %s -> %s already exists", e.Prereq, e.Dependent)
}
