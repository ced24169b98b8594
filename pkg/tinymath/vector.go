// Package tinymath provides the vector/matrix/quaternion math shared by
// the xform evaluator (C7) and the Tydra mesh/material pipeline (C8).
// It follows the teacher math package's array-backed value types
// (here with value-receiver methods that return new values rather
// than mutating the receiver) but adopts USD's own conventions: row-major matrices,
// post-multiply composition (p' = p·M), and (x,y,z,w) quaternions.
package tinymath

import "math"

// Vec2d, Vec3d, Vec4d are double-precision vectors, the USD-native
// precision for points, vectors and normals authored as `double*`.
type Vec2d [2]float64
type Vec3d [3]float64
type Vec4d [4]float64

// Vec2f, Vec3f, Vec4f mirror the float32 USD value kinds (`float*`)
// and are what Tydra emits for GPU-ready buffers.
type Vec2f [2]float32
type Vec3f [3]float32
type Vec4f [4]float32

func (v Vec3d) Add(o Vec3d) Vec3d { return Vec3d{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3d) Sub(o Vec3d) Vec3d { return Vec3d{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3d) Scale(s float64) Vec3d { return Vec3d{v[0] * s, v[1] * s, v[2] * s} }
func (v Vec3d) Dot(o Vec3d) float64 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }
func (v Vec3d) Cross(o Vec3d) Vec3d {
	return Vec3d{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}
func (v Vec3d) Length() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3d) Normalized() Vec3d {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1.0 / l)
}

func (v Vec3f) ToVec3d() Vec3d { return Vec3d{float64(v[0]), float64(v[1]), float64(v[2])} }
func (v Vec3d) ToVec3f() Vec3f { return Vec3f{float32(v[0]), float32(v[1]), float32(v[2])} }
