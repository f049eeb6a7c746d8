// Package bvhtest provides hand-built hierarchies for tests.
package bvhtest

import (
	"github.com/jimbok8/lbvh-1/bvh"
	"github.com/jimbok8/lbvh-1/types"
)

// LeafBox returns the box used for leaf i: a unit cube at x = i.
func LeafBox(i int) types.AABB {
	x := float32(i)
	return types.AABB{Min: types.XYZ(x, 0, 0), Max: types.XYZ(x+1, 1, 1)}
}

// Balanced builds a well-formed hierarchy over n leaves by recursively
// halving the leaf range. Nodes are stored in pre-order. Returns nil for
// n < 2.
func Balanced(n int) bvh.Hierarchy {
	if n < 2 {
		return nil
	}

	h := make(bvh.Hierarchy, 0, n-1)
	var build func(first, last int) (bvh.ChildRef, types.AABB)
	build = func(first, last int) (bvh.ChildRef, types.AABB) {
		if first == last {
			return bvh.LeafRef(uint32(first)), LeafBox(first)
		}

		index := len(h)
		h = append(h, bvh.Node{})

		mid := (first + last) / 2
		left, leftBox := build(first, mid)
		right, rightBox := build(mid+1, last)

		box := leftBox.Union(rightBox)
		h[index] = bvh.Node{Box: box, Left: left, Right: right}
		return bvh.NodeRef(uint32(index)), box
	}

	build(0, n-1)
	return h
}

// Skewed builds a well-formed hierarchy shaped as a chain: node i holds
// leaf i on the left and node i+1 on the right; the last node holds the
// two final leaves. Its depth equals n-1.
func Skewed(n int) bvh.Hierarchy {
	if n < 2 {
		return nil
	}

	h := make(bvh.Hierarchy, n-1)
	last := n - 2
	h[last] = bvh.Node{
		Box:   LeafBox(last).Union(LeafBox(last + 1)),
		Left:  bvh.LeafRef(uint32(last)),
		Right: bvh.LeafRef(uint32(last + 1)),
	}
	for i := last - 1; i >= 0; i-- {
		h[i] = bvh.Node{
			Box:   LeafBox(i).Union(h[i+1].Box),
			Left:  bvh.LeafRef(uint32(i)),
			Right: bvh.NodeRef(uint32(i + 1)),
		}
	}
	return h
}
