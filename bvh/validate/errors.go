package validate

import "fmt"

// Mode selects how much of the hierarchy is scanned once a violation is
// found.
type Mode uint8

const (
	// Stop at the first violation.
	FailFast Mode = iota

	// Scan everything and report every violation.
	CollectAll
)

func (m Mode) String() string {
	switch m {
	case FailFast:
		return "fail-fast"
	case CollectAll:
		return "collect-all"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// The kind of a reference-count violation.
type Kind uint8

const (
	// The root node is referenced as a child.
	RootReferenced Kind = iota

	// A non-root internal node is never referenced.
	OrphanNode

	// A non-root internal node is referenced more than once.
	DuplicateReference

	// A leaf is never referenced.
	OrphanLeaf

	// A leaf is referenced more than once.
	DuplicateLeafReference

	// A child reference points outside the node or leaf index space.
	InvalidReference
)

var kindNames = map[Kind]string{
	RootReferenced:         "RootReferenced",
	OrphanNode:             "OrphanNode",
	DuplicateReference:     "DuplicateReference",
	OrphanLeaf:             "OrphanLeaf",
	DuplicateLeafReference: "DuplicateLeafReference",
	InvalidReference:       "InvalidReference",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// A TopologyError reports a node or leaf whose reference count is not the
// expected one.
//
// For InvalidReference errors Index is the referencing node and
// ObservedCount holds the out-of-range child index.
type TopologyError struct {
	Kind          Kind
	Index         uint32
	ObservedCount uint32
}

func (e TopologyError) Error() string {
	switch e.Kind {
	case RootReferenced:
		return fmt.Sprintf("root node was referenced %d times", e.ObservedCount)
	case OrphanNode, DuplicateReference:
		return fmt.Sprintf("%s: node %d was referenced %d times", e.Kind, e.Index, e.ObservedCount)
	case OrphanLeaf, DuplicateLeafReference:
		return fmt.Sprintf("%s: leaf %d was referenced %d times", e.Kind, e.Index, e.ObservedCount)
	case InvalidReference:
		return fmt.Sprintf("%s: node %d references out of range child %d", e.Kind, e.Index, e.ObservedCount)
	}
	return fmt.Sprintf("%s at index %d (count %d)", e.Kind, e.Index, e.ObservedCount)
}

// A ContainmentError reports an internal child whose box volume exceeds the
// volume of its parent's box.
type ContainmentError struct {
	ParentIndex  uint32
	ChildIndex   uint32
	ParentVolume float32
	ChildVolume  float32
}

func (e ContainmentError) Error() string {
	return fmt.Sprintf(
		"parent node %d volume %8.04f is less than sub node %d volume %8.04f",
		e.ParentIndex, e.ParentVolume, e.ChildIndex, e.ChildVolume,
	)
}
