package renderer

import (
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jimbok8/lbvh-1/asset/compiler/lbvh"
	"github.com/jimbok8/lbvh-1/asset/wavefront"
	"github.com/jimbok8/lbvh-1/bvh"
	"github.com/jimbok8/lbvh-1/types"
)

// A quad in the z = 0 plane split into two triangles plus a smaller
// triangle in front of it at z = 1.
func testModel() *wavefront.Model {
	return &wavefront.Model{
		Name: "test",
		Vertices: []types.Vec3{
			types.XYZ(-2, -2, 0), types.XYZ(2, -2, 0), types.XYZ(2, 2, 0), types.XYZ(-2, 2, 0),
			types.XYZ(-0.5, -0.5, 1), types.XYZ(0.5, -0.5, 1), types.XYZ(0, 0.5, 1),
		},
		Faces: [][3]uint32{{0, 1, 2}, {0, 2, 3}, {4, 5, 6}},
	}
}

func buildScene(m *wavefront.Model, workers int) (bvh.Hierarchy, []uint32) {
	handles := m.FaceIndices()
	h := lbvh.Build(handles, m.FaceBBox, workers)
	return h, handles
}

func TestTraverserClosestHit(t *testing.T) {
	m := testModel()
	h, handles := buildScene(m, 2)
	tr := NewTraverser(h, handles)
	isect := NewModelIntersector(m)

	type spec struct {
		origin  types.Vec3
		expHit  bool
		expT    float32
		expPrim uint32
	}
	specs := []spec{
		{types.XYZ(0, 0, 5), true, 4, 2},
		{types.XYZ(-1.5, 1, 5), true, 5, 1},
		{types.XYZ(1.5, -1.5, 5), true, 5, 0},
		{types.XYZ(3, 3, 5), false, 0, 0},
	}

	for index, s := range specs {
		hit := tr.Trace(types.NewRay(s.origin, types.XYZ(0, 0, -1)), isect)
		if hit.Hit() != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %+v", index, s.expHit, hit)
		}
		if !s.expHit {
			continue
		}
		if math.Abs(float64(hit.T-s.expT)) > 1e-5 || hit.Primitive != s.expPrim {
			t.Fatalf("[spec %d] expected primitive %d at t=%f; got %+v", index, s.expPrim, s.expT, hit)
		}
	}
}

func TestTraverserMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := &wavefront.Model{}
	for i := 0; i < 120; i++ {
		base := types.XYZ(rng.Float32()*8-4, rng.Float32()*8-4, rng.Float32()*8-4)
		for k := 0; k < 3; k++ {
			m.Vertices = append(m.Vertices, base.Add(types.XYZ(rng.Float32(), rng.Float32(), rng.Float32())))
		}
		m.Faces = append(m.Faces, [3]uint32{uint32(3 * i), uint32(3*i + 1), uint32(3*i + 2)})
	}

	h, handles := buildScene(m, 4)
	tr := NewTraverser(h, handles)
	isect := NewModelIntersector(m)

	for i := 0; i < 500; i++ {
		origin := types.XYZ(rng.Float32()*4-2, rng.Float32()*4-2, 10)
		dir := types.XYZ(rng.Float32()*0.8-0.4, rng.Float32()*0.8-0.4, -1)
		r := types.NewRay(origin, dir)

		expT := float32(math.Inf(1))
		for face := range m.Faces {
			if tHit, _, _, hit := isect.Intersect(uint32(face), r, expT); hit {
				expT = tHit
			}
		}

		if got := tr.Trace(r, isect); got.T != expT {
			t.Fatalf("[ray %d] expected closest hit at %f; got %f", i, expT, got.T)
		}
	}
}

func TestTraverserSinglePrimitive(t *testing.T) {
	m := &wavefront.Model{
		Vertices: []types.Vec3{types.XYZ(-1, -1, 0), types.XYZ(1, -1, 0), types.XYZ(0, 1, 0)},
		Faces:    [][3]uint32{{0, 1, 2}},
	}
	h, handles := buildScene(m, 1)
	if len(h) != 0 {
		t.Fatalf("expected no internal nodes; got %d", len(h))
	}

	hit := NewTraverser(h, handles).Trace(types.NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1)), NewModelIntersector(m))
	if !hit.Hit() || hit.T != 5 {
		t.Fatalf("expected hit at t=5; got %+v", hit)
	}
}

func TestRenderFrame(t *testing.T) {
	m := testModel()
	h, handles := buildScene(m, 2)

	opts := DefaultOptions()
	opts.FrameW, opts.FrameH = 32, 24
	opts.Workers = 5
	opts.FitCamera(m.Bounds())

	frame, stats, err := Render(h, handles, NewModelIntersector(m), opts)
	if err != nil {
		t.Fatal(err)
	}

	if len(stats.Workers) != 5 {
		t.Fatalf("expected stats for 5 workers; got %d", len(stats.Workers))
	}
	var rows uint32
	for index, stat := range stats.Workers {
		if stat.Index != index || stat.BlockY != rows {
			t.Fatalf("expected worker %d to start at row %d; got %+v", index, rows, stat)
		}
		rows += stat.BlockH
	}
	if rows != opts.FrameH {
		t.Fatalf("expected workers to cover %d rows; got %d", opts.FrameH, rows)
	}

	if stats.Rays != 32*24 || stats.Hits == 0 || stats.Hits > stats.Rays {
		t.Fatalf("unexpected ray stats: %+v", stats)
	}

	// Every pixel must have been written.
	for y := 0; y < int(opts.FrameH); y++ {
		for x := 0; x < int(opts.FrameW); x++ {
			if frame.RGBAAt(x, y).A != 255 {
				t.Fatalf("expected pixel (%d, %d) to be written", x, y)
			}
		}
	}

	if table := stats.Table(); !strings.Contains(table, "TOTAL") {
		t.Fatalf("expected stats table footer; got:\n%s", table)
	}

	imgFile := filepath.Join(t.TempDir(), "frame.png")
	if err := SaveFrame(frame, imgFile); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(imgFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Fatalf("expected 32x24 image; got %v", b)
	}
}

func TestRenderErrors(t *testing.T) {
	m := testModel()
	h, handles := buildScene(m, 1)

	opts := DefaultOptions()
	opts.FrameW = 0
	if _, _, err := Render(h, handles, NewModelIntersector(m), opts); err != ErrInvalidFrame {
		t.Fatalf("expected ErrInvalidFrame; got %v", err)
	}

	opts = DefaultOptions()
	if _, _, err := Render(nil, nil, NewModelIntersector(m), opts); err != ErrEmptyScene {
		t.Fatalf("expected ErrEmptyScene; got %v", err)
	}
}
