package types

// A ray with a cached reciprocal direction for slab tests.
type Ray struct {
	Origin Vec3
	Dir    Vec3

	invDir Vec3
}

// Create a new ray.
func NewRay(origin, dir Vec3) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		invDir: Vec3{1, 1, 1}.Div(dir),
	}
}
