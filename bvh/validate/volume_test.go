package validate

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jimbok8/lbvh-1/bvh"
	"github.com/jimbok8/lbvh-1/bvh/bvhtest"
	"github.com/jimbok8/lbvh-1/types"
)

var unitCube = types.AABB{Min: types.XYZ(0, 0, 0), Max: types.XYZ(1, 1, 1)}

func TestVolume(t *testing.T) {
	type spec struct {
		box types.AABB
		exp float32
	}
	specs := []spec{
		{unitCube, 1},
		{types.AABB{Min: types.XYZ(-1, -2, -3), Max: types.XYZ(1, 2, 3)}, 48},
		// Degenerate boxes are not special-cased.
		{types.AABB{Min: types.XYZ(0, 0, 0), Max: types.XYZ(5, 5, 0)}, 0},
		{types.AABB{Min: types.XYZ(1, 0, 0), Max: types.XYZ(0, 1, 1)}, -1},
	}

	for index, s := range specs {
		if got := Volume(s.box); got != s.exp {
			t.Fatalf("[spec %d] expected volume %f; got %f", index, s.exp, got)
		}
	}
}

func TestWellFormedVolumes(t *testing.T) {
	for n := 2; n <= 8; n++ {
		for _, h := range []bvh.Hierarchy{bvhtest.Balanced(n), bvhtest.Skewed(n)} {
			if errs := CheckVolumes(h, CollectAll); len(errs) != 0 {
				t.Fatalf("[n %d] expected no containment errors; got %v", n, errs)
			}
		}
	}
}

func TestShrunkParent(t *testing.T) {
	// Balanced(3): root -> (node 1 over leaves 0,1; leaf 2).
	h := bvhtest.Balanced(3)
	h[0].Box = unitCube

	if errs := CheckTopology(h, FailFast); len(errs) != 0 {
		t.Fatalf("expected topology to remain valid; got %v", errs)
	}

	exp := []ContainmentError{{ParentIndex: 0, ChildIndex: 1, ParentVolume: 1, ChildVolume: 2}}
	for _, mode := range []Mode{FailFast, CollectAll} {
		if diff := cmp.Diff(exp, CheckVolumes(h, mode)); diff != "" {
			t.Fatalf("[%s] containment mismatch (-want +got):\n%s", mode, diff)
		}
	}
}

func TestCollectAllVisitsBothSubtrees(t *testing.T) {
	// Balanced(8): node 1 -> (2, 3) and node 4 -> (5, 6), each child spanning
	// two unit cubes.
	h := bvhtest.Balanced(8)
	h[1].Box = unitCube
	h[4].Box = unitCube

	exp := []ContainmentError{
		{ParentIndex: 1, ChildIndex: 2, ParentVolume: 1, ChildVolume: 2},
		{ParentIndex: 1, ChildIndex: 3, ParentVolume: 1, ChildVolume: 2},
		{ParentIndex: 4, ChildIndex: 5, ParentVolume: 1, ChildVolume: 2},
		{ParentIndex: 4, ChildIndex: 6, ParentVolume: 1, ChildVolume: 2},
	}
	if diff := cmp.Diff(exp, CheckVolumes(h, CollectAll)); diff != "" {
		t.Fatalf("collect-all mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(exp[:1], CheckVolumes(h, FailFast)); diff != "" {
		t.Fatalf("fail-fast mismatch (-want +got):\n%s", diff)
	}

	// A violation in the left subtree alone must not hide one on the right.
	h = bvhtest.Balanced(8)
	h[1].Box = unitCube
	h[4].Box = unitCube
	h[3].Box = types.AABB{}
	got := CheckVolumes(h, CollectAll)
	if len(got) != 3 || got[2].ParentIndex != 4 {
		t.Fatalf("expected right subtree violations to be reported; got %v", got)
	}
}

func TestDeepHierarchy(t *testing.T) {
	h := bvhtest.Skewed(100000)
	if errs := Check(h, CollectAll).Errors(); len(errs) != 0 {
		t.Fatalf("expected no errors for a deep chain; got %d", len(errs))
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	h := bvhtest.Balanced(8)
	h[1].Box = unitCube
	snapshot := h.Clone()

	first := Check(h, CollectAll)
	second := Check(h, CollectAll)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("expected repeated checks to match (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(snapshot, h); diff != "" {
		t.Fatalf("expected hierarchy to be left untouched (-want +got):\n%s", diff)
	}
}

func TestCheckSkipsVolumesOnTopologyFailure(t *testing.T) {
	h := bvhtest.Balanced(3)
	h[0].Box = unitCube
	h[0].Right = bvh.LeafRef(0)

	res := Check(h, CollectAll)
	if res.VolumesChecked {
		t.Fatal("expected volume check to be skipped")
	}
	if len(res.Containment) != 0 {
		t.Fatalf("expected no containment findings; got %v", res.Containment)
	}
	if res.Ok() {
		t.Fatal("expected result to report violations")
	}
	if got := len(res.Errors()); got != len(res.Topology) {
		t.Fatalf("expected %d errors; got %d", len(res.Topology), got)
	}
}

func TestCheckTable(t *testing.T) {
	h := bvhtest.Balanced(3)
	h[0].Box = unitCube

	res := Check(h, FailFast)
	if !res.VolumesChecked || res.Ok() {
		t.Fatalf("expected a containment violation; got %+v", res)
	}

	table := res.Table()
	for _, exp := range []string{"Containment", "0 -> 1", "fail-fast", "1 violation(s)"} {
		if !strings.Contains(table, exp) {
			t.Fatalf("expected table to contain %q; got:\n%s", exp, table)
		}
	}
}
