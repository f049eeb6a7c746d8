package validate

import (
	"github.com/jimbok8/lbvh-1/bvh"
	"github.com/jimbok8/lbvh-1/types"
)

// Volume returns the product of the box extents. It is used as a cheap
// monotonicity proxy for containment; boxes with zero or negative extents
// make the comparison unreliable.
func Volume(box types.AABB) float32 {
	size := box.Size()
	return size[0] * size[1] * size[2]
}

// CheckVolumes walks the hierarchy from the root in pre-order and reports
// every internal child whose box volume exceeds its parent's. Leaf children
// are not checked.
//
// The walk interprets child references as indices and must only run on a
// hierarchy that passed CheckTopology. In FailFast mode the walk stops at
// the first violation; in CollectAll mode every subtree is visited.
func CheckVolumes(h bvh.Hierarchy, mode Mode) []ContainmentError {
	if len(h) == 0 {
		return nil
	}

	var errs []ContainmentError
	stack := make([]uint32, 1, h.Depth()+1)
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &h[index]
		parentVolume := Volume(node.Box)

		for _, child := range [2]bvh.ChildRef{node.Left, node.Right} {
			if child.Leaf {
				continue
			}

			childVolume := Volume(h[child.Index].Box)
			if parentVolume < childVolume {
				errs = append(errs, ContainmentError{
					ParentIndex:  index,
					ChildIndex:   child.Index,
					ParentVolume: parentVolume,
					ChildVolume:  childVolume,
				})
				if mode == FailFast {
					return errs
				}
			}
		}

		// Push right first so the left subtree is visited first.
		if !node.IsRightLeaf() {
			stack = append(stack, node.RightIndex())
		}
		if !node.IsLeftLeaf() {
			stack = append(stack, node.LeftIndex())
		}
	}

	return errs
}
