package renderer

import (
	"github.com/jimbok8/lbvh-1/asset/wavefront"
	"github.com/jimbok8/lbvh-1/types"
)

const intersectEpsilon float32 = 1e-7

// ModelIntersector intersects rays with the triangles of a model.
type ModelIntersector struct {
	model *wavefront.Model
}

// Create an intersector for the faces of m.
func NewModelIntersector(m *wavefront.Model) *ModelIntersector {
	return &ModelIntersector{model: m}
}

// Intersect the ray with a model face using the Moller-Trumbore algorithm.
func (mi *ModelIntersector) Intersect(face uint32, r types.Ray, tMax float32) (t, u, v float32, hit bool) {
	tri := mi.model.Triangle(face)
	return intersectTriangle(tri, r, tMax)
}

func intersectTriangle(tri [3]types.Vec3, r types.Ray, tMax float32) (t, u, v float32, hit bool) {
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])

	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if det > -intersectEpsilon && det < intersectEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1 / det

	s := r.Origin.Sub(tri[0])
	u = s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(e1)
	v = r.Dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = e2.Dot(q) * invDet
	if t <= intersectEpsilon || t >= tMax {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
