// Package sah builds bounding volume hierarchies top-down by recursively
// partitioning primitives along the split plane with the best surface area
// heuristic score.
package sah

import (
	"math"
	"sort"
	"time"

	"github.com/jimbok8/lbvh-1/bvh"
	"github.com/jimbok8/lbvh-1/log"
	"github.com/jimbok8/lbvh-1/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// The builder will not evaluate split candidates along an axis if the
	// extent of the primitive centers along it is less than this threshold.
	minSideLength float32 = 1e-5

	// Number of evenly spaced split planes evaluated per axis.
	splitCandidates = 8
)

// A split scoring strategy that uses the surface area heuristic (SAH).
var surfaceAreaHeuristic = sahStrategy{}

// A primitive being partitioned.
type item struct {
	handle uint32
	box    types.AABB
	center types.Vec3
}

// A split scoring strategy. Lower scores are better.
type scoreStrategy interface {
	// Calculate a score for splitting workList at splitPoint along a particular Axis.
	ScoreSplit(workList []item, splitAxis Axis, splitPoint float32) (leftCount, rightCount int, score float32)
}

type splitScore struct {
	axis       Axis
	splitPoint float32

	leftCount, rightCount int
	score                 float32
}

type stats struct {
	nodes       int
	leafs       int
	maxDepth    int
	medianSplit int
}

type builder struct {
	logger log.Logger

	// Bvh nodes stored as a contiguous list in pre-order.
	nodes bvh.Hierarchy

	// Handles in leaf order.
	leafHandles []uint32

	// Score axes concurrently.
	parallel bool

	// A channel for receiving the best split of each axis.
	scoreChan chan splitScore

	// The split scoring strategy to use.
	scoreStrategy scoreStrategy

	// Stats
	stats stats
}

// Build constructs a hierarchy with one primitive per leaf using the
// surface area heuristic. If workers is greater than one, the split
// candidates of the three axes are scored concurrently.
//
// The handles slice is reordered in place: after Build returns, leaf k of the
// hierarchy refers to handles[k]. An input with fewer than two primitives
// yields an empty hierarchy.
func Build(handles []uint32, convert bvh.BoxConverter, workers int) bvh.Hierarchy {
	if len(handles) < 2 {
		return bvh.Hierarchy{}
	}

	workList := make([]item, len(handles))
	for index, handle := range handles {
		box := convert(handle)
		workList[index] = item{handle: handle, box: box, center: box.Center()}
	}

	b := &builder{
		logger:        log.New("sah builder"),
		nodes:         make(bvh.Hierarchy, 0, len(handles)-1),
		leafHandles:   handles[:0],
		parallel:      workers > 1,
		scoreChan:     make(chan splitScore, 3),
		scoreStrategy: surfaceAreaHeuristic,
	}

	start := time.Now()
	b.partition(workList, 0)
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d, median splits: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.maxDepth, b.stats.nodes, b.stats.leafs, b.stats.medianSplit,
	)
	return b.nodes
}

// Partition worklist and return a reference to the created node or leaf.
func (b *builder) partition(workList []item, depth int) bvh.ChildRef {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	if len(workList) == 1 {
		return b.createLeaf(workList[0])
	}

	node := bvh.Node{Box: types.EmptyAABB()}
	centers := types.EmptyAABB()
	for _, it := range workList {
		node.Box = node.Box.Union(it.box)
		centers = centers.Extend(it.center)
	}

	leftWorkList, rightWorkList := b.split(workList, centers)

	// Add node to list before its children so nodes are laid out in pre-order
	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, node)
	b.stats.nodes++

	left := b.partition(leftWorkList, depth+1)
	right := b.partition(rightWorkList, depth+1)
	b.nodes[nodeIndex].Left = left
	b.nodes[nodeIndex].Right = right

	return bvh.NodeRef(uint32(nodeIndex))
}

// Split the work list in two non-empty halves. The best scoring split plane
// is used if one exists; otherwise the items are split at the median of
// the longest center axis.
func (b *builder) split(workList []item, centers types.AABB) (left, right []item) {
	side := centers.Size()

	pendingScores := 0
	for axis := XAxis; axis <= ZAxis; axis++ {
		// Skip axis if the center spread is too small
		if side[axis] < minSideLength {
			continue
		}

		pendingScores++
		if b.parallel {
			go b.scoreAxis(workList, axis, centers.Min[axis], side[axis])
		} else {
			b.scoreAxis(workList, axis, centers.Min[axis], side[axis])
		}
	}

	// Process all scores and pick the best split
	var bestSplit *splitScore
	for ; pendingScores > 0; pendingScores-- {
		candidate := <-b.scoreChan
		if candidate.score == math.MaxFloat32 {
			continue
		}
		if bestSplit == nil || candidate.score < bestSplit.score ||
			(candidate.score == bestSplit.score && candidate.axis < bestSplit.axis) {
			bestSplit = &candidate
		}
	}

	if bestSplit == nil {
		return b.medianSplit(workList, side)
	}

	left = make([]item, 0, bestSplit.leftCount)
	right = make([]item, 0, bestSplit.rightCount)
	for _, it := range workList {
		if it.center[bestSplit.axis] < bestSplit.splitPoint {
			left = append(left, it)
		} else {
			right = append(right, it)
		}
	}
	return left, right
}

// Score the split candidates along an axis and publish the best one.
func (b *builder) scoreAxis(workList []item, axis Axis, origin, extent float32) {
	best := splitScore{axis: axis, score: math.MaxFloat32}
	splitStep := extent / float32(splitCandidates+1)
	for candidate := 1; candidate <= splitCandidates; candidate++ {
		splitPoint := origin + splitStep*float32(candidate)
		lCount, rCount, score := b.scoreStrategy.ScoreSplit(workList, axis, splitPoint)
		if score < best.score {
			best = splitScore{
				axis:       axis,
				splitPoint: splitPoint,

				leftCount:  lCount,
				rightCount: rCount,
				score:      score,
			}
		}
	}
	b.scoreChan <- best
}

// Sort items by their center along the longest axis and split them in half.
func (b *builder) medianSplit(workList []item, side types.Vec3) (left, right []item) {
	b.stats.medianSplit++

	axis := XAxis
	if side[YAxis] > side[axis] {
		axis = YAxis
	}
	if side[ZAxis] > side[axis] {
		axis = ZAxis
	}

	sorted := make([]item, len(workList))
	copy(sorted, workList)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].center[axis] < sorted[j].center[axis]
	})

	mid := len(sorted) / 2
	return sorted[:mid], sorted[mid:]
}

// Append a leaf for a single item and return a reference to it.
func (b *builder) createLeaf(it item) bvh.ChildRef {
	leafIndex := len(b.leafHandles)
	b.leafHandles = append(b.leafHandles, it.handle)
	b.stats.leafs++

	return bvh.LeafRef(uint32(leafIndex))
}

// A score implementation that uses surface area heuristic for calculating split scores.
type sahStrategy struct{}

// Score a BVH split based on the surface area heuristic. The SAH calculates
// the split score using the formula (lower score is better):
//
// left count * left BBOX area + rightCount * right BBOX area.
//
// SAH avoids splits that generate empty partitions by assigning the worst
// possible score (MaxFloat32) when it enounters such cases.
func (h sahStrategy) ScoreSplit(workList []item, axis Axis, splitPoint float32) (leftCount, rightCount int, score float32) {
	lbox := types.EmptyAABB()
	rbox := types.EmptyAABB()

	for _, it := range workList {
		if it.center[axis] < splitPoint {
			leftCount++
			lbox = lbox.Union(it.box)
		} else {
			rightCount++
			rbox = rbox.Union(it.box)
		}
	}

	// Make sure that we don't generate empty partitions
	if leftCount == 0 || rightCount == 0 {
		return leftCount, rightCount, math.MaxFloat32
	}

	return leftCount, rightCount, float32(leftCount)*halfArea(lbox) + float32(rightCount)*halfArea(rbox)
}

func halfArea(box types.AABB) float32 {
	side := box.Size()
	return side[0]*side[1] + side[1]*side[2] + side[0]*side[2]
}
