package renderer

import "github.com/jimbok8/lbvh-1/types"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Tangent of half the vertical field of view.
	FOV float32

	// Camera position. The camera always looks down the -Z axis.
	Eye types.Vec3

	// Number of workers used to trace the frame rows.
	Workers int
}

// Default smoke-test options: a 1000x1000 frame seen from (0, 0, 5).
func DefaultOptions() Options {
	return Options{
		FrameW:  1000,
		FrameH:  1000,
		FOV:     0.75,
		Eye:     types.XYZ(0, 0, 5),
		Workers: 1,
	}
}

// FitCamera moves the eye so that a box is in front of the camera and fills
// most of the frame.
func (o *Options) FitCamera(bounds types.AABB) {
	size := bounds.Size()
	halfExtent := 0.5 * size.MaxComponent()
	center := bounds.Center()

	distance := halfExtent / o.FOV
	if distance <= 0 {
		distance = 1
	}
	o.Eye = types.XYZ(center[0], center[1], bounds.Max[2]+distance*1.25)
}
