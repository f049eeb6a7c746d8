package lbvh

import (
	"math"

	"github.com/jimbok8/lbvh-1/types"
)

// Spread the lower 10 bits of v so that there are two zero bits between
// each original bit.
func expandBits(v uint32) uint32 {
	v = (v * 0x00010001) & 0xFF0000FF
	v = (v * 0x00000101) & 0x0F00F00F
	v = (v * 0x00000011) & 0xC30C30C3
	v = (v * 0x00000005) & 0x49249249
	return v
}

// Quantize a coordinate in [0, 1] to 10 bits.
func quantize(f float32) uint32 {
	f *= 1024
	switch {
	case f < 0 || math.IsNaN(float64(f)):
		return 0
	case f > 1023:
		return 1023
	}
	return uint32(f)
}

// MortonCode returns the 30-bit Morton code of a point whose coordinates are
// normalized to [0, 1]. Coordinates outside that range are clamped.
func MortonCode(p types.Vec3) uint32 {
	x := expandBits(quantize(p[0]))
	y := expandBits(quantize(p[1]))
	z := expandBits(quantize(p[2]))
	return x<<2 | y<<1 | z
}
