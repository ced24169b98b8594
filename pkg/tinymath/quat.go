package tinymath

import "math"

// Quatd is a double-precision quaternion stored as (x, y, z, w), the
// layout spec.md requires internally regardless of the USD wire order.
type Quatd struct {
	X, Y, Z, W float64
}

func IdentityQuat() Quatd { return Quatd{0, 0, 0, 1} }

func (q Quatd) Normalized() Quatd {
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n == 0 {
		return IdentityQuat()
	}
	return Quatd{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

// Mul returns the Hamilton product q·r. Under Matrix4dFromQuat's
// row-vector matrices this rotation applies r first, then q.
func (q Quatd) Mul(r Quatd) Quatd {
	return Quatd{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// QuatFromAxisAngle builds a quaternion rotating by angleRad around axis.
func QuatFromAxisAngle(axis Vec3d, angleRad float64) Quatd {
	axis = axis.Normalized()
	s := math.Sin(angleRad / 2)
	return Quatd{axis[0] * s, axis[1] * s, axis[2] * s, math.Cos(angleRad / 2)}
}

// Quatf is the float32 (x, y, z, w) quaternion, the precision Tydra
// emits for GPU-ready skinning/animation buffers.
type Quatf struct {
	X, Y, Z, W float32
}

func (q Quatf) ToQuatd() Quatd {
	return Quatd{float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)}
}

func QuatdToQuatf(q Quatd) Quatf {
	return Quatf{float32(q.X), float32(q.Y), float32(q.Z), float32(q.W)}
}
