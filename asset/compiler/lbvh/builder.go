// Package lbvh builds linear bounding volume hierarchies.
//
// Primitives are sorted along a Z-order curve using 30-bit Morton codes of
// their box centers; the internal nodes are then emitted independently of
// each other by locating the highest differing bit in each key range
// (Karras, "Maximizing Parallelism in the Construction of BVHs, Octrees,
// and k-d Trees", 2012). A hierarchy over N primitives always has N-1
// internal nodes and every primitive becomes exactly one leaf.
package lbvh

import (
	"math/bits"
	"sort"
	"sync/atomic"
	"time"

	"github.com/jimbok8/lbvh-1/bvh"
	"github.com/jimbok8/lbvh-1/log"
	"github.com/jimbok8/lbvh-1/tracer"
	"github.com/jimbok8/lbvh-1/types"
)

type builder struct {
	logger    log.Logger
	scheduler *tracer.Scheduler

	// Primitive handles; reordered by Morton code during the build.
	handles []uint32
	boxes   []types.AABB
	codes   []uint32

	nodes []bvh.Node

	// Parent node for each internal node and each leaf.
	nodeParents []uint32
	leafParents []uint32

	// Arrival counters used while fitting node boxes.
	visits []int32
}

// Build constructs a hierarchy over the primitives in handles using up to
// workers workers (values < 1 are treated as 1).
//
// The handles slice is reordered in place: after Build returns, leaf k of the
// hierarchy refers to handles[k]. An input with fewer than two primitives
// yields an empty hierarchy.
func Build(handles []uint32, convert bvh.BoxConverter, workers int) bvh.Hierarchy {
	n := len(handles)
	if n < 2 {
		return bvh.Hierarchy{}
	}

	b := &builder{
		logger:      log.New("lbvh builder"),
		scheduler:   tracer.NewScheduler(workers),
		handles:     handles,
		boxes:       make([]types.AABB, n),
		codes:       make([]uint32, n),
		nodes:       make([]bvh.Node, n-1),
		nodeParents: make([]uint32, n-1),
		leafParents: make([]uint32, n),
		visits:      make([]int32, n-1),
	}

	start := time.Now()
	b.encode(convert)
	b.sort()
	b.scheduler.Run(b.emitNodes)
	b.scheduler.Run(b.fitBoxes)

	b.logger.Debugf(
		"built hierarchy for %d primitives in %d ms using %d worker(s)",
		n, time.Since(start).Nanoseconds()/1e6, b.scheduler.Workers(),
	)
	return b.nodes
}

// Compute primitive boxes and the Morton codes of their centers.
func (b *builder) encode(convert bvh.BoxConverter) {
	b.scheduler.Run(func(div tracer.WorkDivision, _ ...interface{}) {
		begin, end := div.Range(len(b.handles))
		for i := begin; i < end; i++ {
			b.boxes[i] = convert(b.handles[i])
		}
	})

	centers := types.EmptyAABB()
	for _, box := range b.boxes {
		centers = centers.Extend(box.Center())
	}

	extent := centers.Size()
	b.scheduler.Run(func(div tracer.WorkDivision, _ ...interface{}) {
		begin, end := div.Range(len(b.handles))
		for i := begin; i < end; i++ {
			c := b.boxes[i].Center().Sub(centers.Min)
			var norm types.Vec3
			for axis := 0; axis < 3; axis++ {
				if extent[axis] > 0 {
					norm[axis] = c[axis] / extent[axis]
				}
			}
			b.codes[i] = MortonCode(norm)
		}
	})
}

// Sort handles, boxes and codes by Morton code. Equal codes keep their
// input order.
func (b *builder) sort() {
	sort.Stable(byCode{b})
}

type byCode struct{ b *builder }

func (s byCode) Len() int           { return len(s.b.codes) }
func (s byCode) Less(i, j int) bool { return s.b.codes[i] < s.b.codes[j] }
func (s byCode) Swap(i, j int) {
	s.b.codes[i], s.b.codes[j] = s.b.codes[j], s.b.codes[i]
	s.b.handles[i], s.b.handles[j] = s.b.handles[j], s.b.handles[i]
	s.b.boxes[i], s.b.boxes[j] = s.b.boxes[j], s.b.boxes[i]
}

// Length of the common key prefix of leaves i and j, or -1 if j is out of
// range. Duplicate codes are disambiguated by the leaf index.
func (b *builder) delta(i, j int) int {
	if j < 0 || j >= len(b.codes) {
		return -1
	}
	if b.codes[i] == b.codes[j] {
		return 32 + bits.LeadingZeros32(uint32(i^j))
	}
	return bits.LeadingZeros32(b.codes[i] ^ b.codes[j])
}

// Emit the internal nodes of this division. Each node only writes its own
// entry and the parent entries of its two children.
func (b *builder) emitNodes(div tracer.WorkDivision, _ ...interface{}) {
	begin, end := div.Range(len(b.nodes))
	for i := begin; i < end; i++ {
		first, last := b.determineRange(i)
		split := b.findSplit(first, last)

		node := &b.nodes[i]
		if split == first {
			node.Left = bvh.LeafRef(uint32(split))
			b.leafParents[split] = uint32(i)
		} else {
			node.Left = bvh.NodeRef(uint32(split))
			b.nodeParents[split] = uint32(i)
		}

		if split+1 == last {
			node.Right = bvh.LeafRef(uint32(split + 1))
			b.leafParents[split+1] = uint32(i)
		} else {
			node.Right = bvh.NodeRef(uint32(split + 1))
			b.nodeParents[split+1] = uint32(i)
		}
	}
}

// Find the range of leaves covered by internal node i.
func (b *builder) determineRange(i int) (first, last int) {
	if i == 0 {
		return 0, len(b.codes) - 1
	}

	d := 1
	if b.delta(i, i+1) < b.delta(i, i-1) {
		d = -1
	}

	deltaMin := b.delta(i, i-d)
	lMax := 2
	for b.delta(i, i+lMax*d) > deltaMin {
		lMax *= 2
	}

	l := 0
	for t := lMax / 2; t >= 1; t /= 2 {
		if b.delta(i, i+(l+t)*d) > deltaMin {
			l += t
		}
	}

	j := i + l*d
	if j < i {
		return j, i
	}
	return i, j
}

// Find the position of the highest differing bit within [first, last]. The
// returned split is the last leaf of the left half.
func (b *builder) findSplit(first, last int) int {
	common := b.delta(first, last)

	split := first
	step := last - first
	for step > 1 {
		step = (step + 1) / 2
		if candidate := split + step; candidate < last && b.delta(first, candidate) > common {
			split = candidate
		}
	}
	return split
}

// Fit node boxes bottom-up. Each leaf walks towards the root; the first
// worker to reach a node stops and the second one, which is guaranteed to
// see both child boxes, computes the union and continues upwards.
func (b *builder) fitBoxes(div tracer.WorkDivision, _ ...interface{}) {
	begin, end := div.Range(len(b.handles))
	for leaf := begin; leaf < end; leaf++ {
		node := b.leafParents[leaf]
		for atomic.AddInt32(&b.visits[node], 1) == 2 {
			n := &b.nodes[node]
			n.Box = b.childBox(n.Left).Union(b.childBox(n.Right))
			if node == 0 {
				break
			}
			node = b.nodeParents[node]
		}
	}
}

func (b *builder) childBox(ref bvh.ChildRef) types.AABB {
	if ref.Leaf {
		return b.boxes[ref.Index]
	}
	return b.nodes[ref.Index].Box
}
