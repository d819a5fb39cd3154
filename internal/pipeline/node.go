// Package pipeline implements the Workflow Builder and Runner
// (SPEC_FULL.md §4.6, component C8): compiles the configuration's named
// chains into a flat node vector and drives a record through it.
// Grounded on original_source/src/domain/workflow.rs's index-arena design,
// expressed in the teacher's (haukened-gone) composition style: a thin
// struct wrapping a slice, built once at startup and run per record.
package pipeline

import "github.com/stefal/pyruse-go/internal/registry"

// terminal marks a then/else edge that ends traversal.
const terminal = -1

// node is one compiled step: a boxed filter or action plus the node indices
// to follow depending on its result.
type node struct {
	name     string
	module   registry.Module
	thenDest int
	elseDest int
}

// Workflow is the compiled, flat directed graph of nodes produced by Build.
// Every non-terminal thenDest/elseDest is guaranteed to be a valid index
// into nodes (SPEC_FULL.md §8: "workflow build is total").
type Workflow struct {
	nodes   []node
	Metrics *Metrics
}

// Len reports the number of compiled nodes, mostly useful to tests.
func (w *Workflow) Len() int { return len(w.nodes) }
