// Package bvh defines the flattened bounding volume hierarchy layout shared
// by the builder, the validator and the traverser.
//
// A hierarchy over N primitives is stored as N-1 internal nodes; node 0 is
// the root. Leaves are not materialized: a child reference tagged as a leaf
// holds the index of a primitive in [0, N).
package bvh

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/jimbok8/lbvh-1/types"
	"github.com/olekukonko/tablewriter"
)

// A ChildRef points either to another internal node or to a leaf.
type ChildRef struct {
	Index uint32
	Leaf  bool
}

// Create a reference to the internal node at index.
func NodeRef(index uint32) ChildRef {
	return ChildRef{Index: index}
}

// Create a reference to the leaf at index.
func LeafRef(index uint32) ChildRef {
	return ChildRef{Index: index, Leaf: true}
}

func (c ChildRef) String() string {
	if c.Leaf {
		return fmt.Sprintf("leaf %d", c.Index)
	}
	return fmt.Sprintf("node %d", c.Index)
}

// An internal hierarchy node. Box is expected to be the union of the boxes
// of both children.
type Node struct {
	Box   types.AABB
	Left  ChildRef
	Right ChildRef
}

// Returns true if the left child is a leaf.
func (n *Node) IsLeftLeaf() bool {
	return n.Left.Leaf
}

// Returns true if the right child is a leaf.
func (n *Node) IsRightLeaf() bool {
	return n.Right.Leaf
}

// Get the internal node index of the left child. Only valid if
// IsLeftLeaf returns false.
func (n *Node) LeftIndex() uint32 {
	return n.Left.Index
}

// Get the internal node index of the right child. Only valid if
// IsRightLeaf returns false.
func (n *Node) RightIndex() uint32 {
	return n.Right.Index
}

// Get the leaf index of the left child. Only valid if IsLeftLeaf returns true.
func (n *Node) LeftLeafIndex() uint32 {
	return n.Left.Index
}

// Get the leaf index of the right child. Only valid if IsRightLeaf returns true.
func (n *Node) RightLeafIndex() uint32 {
	return n.Right.Index
}

// Hierarchy is the ordered list of internal nodes.
type Hierarchy []Node

// A BoxConverter returns the bounding box of a primitive handle.
type BoxConverter func(handle uint32) types.AABB

// A Builder constructs a hierarchy over a set of primitive handles using up
// to workers workers. Builders reorder handles in place so that leaf k of
// the returned hierarchy refers to handles[k].
type Builder func(handles []uint32, convert BoxConverter, workers int) Hierarchy

// Get the number of primitives (leaves) covered by the hierarchy.
func (h Hierarchy) PrimitiveCount() int {
	if len(h) == 0 {
		return 0
	}
	return len(h) + 1
}

// Get the bounding box of the whole hierarchy.
func (h Hierarchy) Bounds() types.AABB {
	if len(h) == 0 {
		return types.EmptyAABB()
	}
	return h[0].Box
}

// Clone returns a deep copy of the hierarchy.
func (h Hierarchy) Clone() Hierarchy {
	out := make(Hierarchy, len(h))
	copy(out, h)
	return out
}

// Depth returns the number of internal nodes on the longest root-to-leaf
// path. It assumes a topologically sound hierarchy; references that point
// outside the node list are ignored.
func (h Hierarchy) Depth() int {
	if len(h) == 0 {
		return 0
	}

	type entry struct {
		index uint32
		depth int
	}

	maxDepth := 0
	stack := []entry{{0, 1}}
	for visited := 0; len(stack) > 0 && visited < len(h); visited++ {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.depth > maxDepth {
			maxDepth = top.depth
		}

		node := &h[top.index]
		for _, child := range [2]ChildRef{node.Left, node.Right} {
			if !child.Leaf && int(child.Index) < len(h) {
				stack = append(stack, entry{child.Index, top.depth + 1})
			}
		}
	}
	return maxDepth
}

// Build a tabular representation of hierarchy statistics.
func (h Hierarchy) Stats() string {
	bounds := h.Bounds()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Primitives", fmt.Sprintf("%d", h.PrimitiveCount())})
	table.Append([]string{"Internal nodes", fmt.Sprintf("%d", len(h))})
	table.Append([]string{"Depth", fmt.Sprintf("%d", h.Depth())})
	if len(h) != 0 {
		table.Append([]string{"Bounds", fmt.Sprintf("%v - %v", bounds.Min, bounds.Max)})
	}
	table.SetFooter([]string{"Size", strings.TrimLeft(fmtSize(h), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
