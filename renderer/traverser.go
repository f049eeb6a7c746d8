package renderer

import (
	"math"

	"github.com/jimbok8/lbvh-1/bvh"
	"github.com/jimbok8/lbvh-1/types"
)

// Intersection describes the closest primitive hit along a ray.
type Intersection struct {
	// Distance along the ray.
	T float32

	// Barycentric coordinates of the hit point.
	U, V float32

	// Handle of the primitive that was hit.
	Primitive uint32
}

// Hit returns true if the intersection refers to an actual primitive.
func (i Intersection) Hit() bool {
	return !math.IsInf(float64(i.T), 1)
}

// The Intersector interface is implemented by primitive sets that can be
// intersected by a traverser.
type Intersector interface {
	// Intersect the ray with a primitive. Returns the hit distance and
	// barycentric coordinates if the primitive is hit closer than tMax.
	Intersect(handle uint32, r types.Ray, tMax float32) (t, u, v float32, hit bool)
}

// Traverser finds the closest primitive hit by a ray using a hierarchy.
// Leaf k of the hierarchy maps to handles[k].
type Traverser struct {
	hierarchy bvh.Hierarchy
	handles   []uint32
}

// Create a traverser. The hierarchy must have passed validation.
func NewTraverser(h bvh.Hierarchy, handles []uint32) *Traverser {
	return &Traverser{hierarchy: h, handles: handles}
}

// Find the closest intersection along r. Misses return an Intersection
// with T set to +Inf.
func (tr *Traverser) Trace(r types.Ray, isect Intersector) Intersection {
	closest := Intersection{T: float32(math.Inf(1))}

	testLeaf := func(leaf uint32) {
		handle := tr.handles[leaf]
		if t, u, v, hit := isect.Intersect(handle, r, closest.T); hit {
			closest = Intersection{T: t, U: u, V: v, Primitive: handle}
		}
	}

	// A single primitive has no internal nodes.
	if len(tr.hierarchy) == 0 {
		if len(tr.handles) == 1 {
			testLeaf(0)
		}
		return closest
	}

	var stackBuf [64]uint32
	stack := append(stackBuf[:0], 0)
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &tr.hierarchy[index]
		if _, hit := node.Box.Hit(r, 0, closest.T); !hit {
			continue
		}

		for _, child := range [2]bvh.ChildRef{node.Left, node.Right} {
			if child.Leaf {
				testLeaf(child.Index)
			} else {
				stack = append(stack, child.Index)
			}
		}
	}

	return closest
}
