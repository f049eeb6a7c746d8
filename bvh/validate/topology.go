// Package validate checks that a completed hierarchy is structurally and
// geometrically well-formed before it is used for traversal.
//
// All checks are pure: they never modify the hierarchy, hold no state and
// may be called concurrently.
package validate

import "github.com/jimbok8/lbvh-1/bvh"

// CheckTopology verifies that the root is never referenced and that every
// other internal node and every leaf is referenced exactly once.
//
// In FailFast mode the returned slice holds at most the first violation.
// A nil result means the topology is sound.
func CheckTopology(h bvh.Hierarchy, mode Mode) []TopologyError {
	if len(h) == 0 {
		return nil
	}

	nodeCounts := make([]uint32, len(h))
	leafCounts := make([]uint32, h.PrimitiveCount())

	var errs []TopologyError
	emit := func(err TopologyError) bool {
		errs = append(errs, err)
		return mode == FailFast
	}

	count := func(parent int, child bvh.ChildRef) bool {
		table := nodeCounts
		if child.Leaf {
			table = leafCounts
		}
		if int(child.Index) >= len(table) {
			return emit(TopologyError{Kind: InvalidReference, Index: uint32(parent), ObservedCount: child.Index})
		}
		table[child.Index]++
		return false
	}

	for i := range h {
		if count(i, h[i].Left) || count(i, h[i].Right) {
			return errs
		}
	}

	if nodeCounts[0] > 0 {
		if emit(TopologyError{Kind: RootReferenced, Index: 0, ObservedCount: nodeCounts[0]}) {
			return errs
		}
	}

	for i := 1; i < len(nodeCounts); i++ {
		if kind, bad := classify(nodeCounts[i], OrphanNode, DuplicateReference); bad {
			if emit(TopologyError{Kind: kind, Index: uint32(i), ObservedCount: nodeCounts[i]}) {
				return errs
			}
		}
	}

	for i, n := range leafCounts {
		if kind, bad := classify(n, OrphanLeaf, DuplicateLeafReference); bad {
			if emit(TopologyError{Kind: kind, Index: uint32(i), ObservedCount: n}) {
				return errs
			}
		}
	}

	return errs
}

// Map a reference count to the matching violation kind.
func classify(n uint32, orphan, duplicate Kind) (Kind, bool) {
	switch {
	case n == 0:
		return orphan, true
	case n > 1:
		return duplicate, true
	}
	return 0, false
}
