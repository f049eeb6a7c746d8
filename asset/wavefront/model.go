package wavefront

import (
	"errors"

	"github.com/jimbok8/lbvh-1/types"
)

var ErrNoGeometry = errors.New("wavefront: model does not contain any faces")

// A triangulated model.
type Model struct {
	// The resource path the model was read from.
	Name string

	Vertices []types.Vec3

	// Each face stores three indices into Vertices.
	Faces [][3]uint32
}

// Get the number of triangles in the model.
func (m *Model) FaceCount() int {
	return len(m.Faces)
}

// Get the vertices of a face.
func (m *Model) Triangle(face uint32) [3]types.Vec3 {
	f := m.Faces[face]
	return [3]types.Vec3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// Get the bounding box of a face.
func (m *Model) FaceBBox(face uint32) types.AABB {
	tri := m.Triangle(face)
	return types.AABBFromPoints(tri[0], tri[1], tri[2])
}

// Get the bounding box of the whole model.
func (m *Model) Bounds() types.AABB {
	box := types.EmptyAABB()
	for _, f := range m.Faces {
		for _, v := range f {
			box = box.Extend(m.Vertices[v])
		}
	}
	return box
}

// FaceIndices returns the handles [0, FaceCount) used to refer to the
// model's faces from the hierarchy builder and the traverser.
func (m *Model) FaceIndices() []uint32 {
	out := make([]uint32, len(m.Faces))
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}
