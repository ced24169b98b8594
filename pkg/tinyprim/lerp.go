package tinyprim

import (
	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

// Lerp linearly interpolates between two Values of the same lerpable
// TypeId. Returns ok=false for any kind not covered here (the caller
// degrades to Held, per §9's interpolability predicate). Vector,
// matrix and quaternion TypeIds always store the matching tinymath
// type, never a bare array (see vec3dFromValue in xformop.go).
func Lerp(a, b tinyvalue.Value, alpha float64) (tinyvalue.Value, bool) {
	if a.TypeId() != b.TypeId() {
		return tinyvalue.Value{}, false
	}
	id := a.TypeId()
	switch id {
	case tinyvalue.Float:
		av, _ := tinyvalue.As[float32](a)
		bv, _ := tinyvalue.As[float32](b)
		return tinyvalue.New(id, lerpF32(av, bv, alpha)), true
	case tinyvalue.Double:
		av, _ := tinyvalue.As[float64](a)
		bv, _ := tinyvalue.As[float64](b)
		return tinyvalue.New(id, lerpF64(av, bv, alpha)), true
	case tinyvalue.Vec2f:
		av, _ := tinyvalue.As[tinymath.Vec2f](a)
		bv, _ := tinyvalue.As[tinymath.Vec2f](b)
		return tinyvalue.New(id, tinymath.Vec2f{lerpF32(av[0], bv[0], alpha), lerpF32(av[1], bv[1], alpha)}), true
	case tinyvalue.Vec3f:
		av, _ := tinyvalue.As[tinymath.Vec3f](a)
		bv, _ := tinyvalue.As[tinymath.Vec3f](b)
		return tinyvalue.New(id, tinymath.Vec3f{
			lerpF32(av[0], bv[0], alpha), lerpF32(av[1], bv[1], alpha), lerpF32(av[2], bv[2], alpha),
		}), true
	case tinyvalue.Vec4f:
		av, _ := tinyvalue.As[tinymath.Vec4f](a)
		bv, _ := tinyvalue.As[tinymath.Vec4f](b)
		return tinyvalue.New(id, tinymath.Vec4f{
			lerpF32(av[0], bv[0], alpha), lerpF32(av[1], bv[1], alpha),
			lerpF32(av[2], bv[2], alpha), lerpF32(av[3], bv[3], alpha),
		}), true
	case tinyvalue.Vec3d:
		av, _ := tinyvalue.As[tinymath.Vec3d](a)
		bv, _ := tinyvalue.As[tinymath.Vec3d](b)
		return tinyvalue.New(id, tinymath.Vec3d{
			lerpF64(av[0], bv[0], alpha), lerpF64(av[1], bv[1], alpha), lerpF64(av[2], bv[2], alpha),
		}), true
	case tinyvalue.Vec2d:
		av, _ := tinyvalue.As[tinymath.Vec2d](a)
		bv, _ := tinyvalue.As[tinymath.Vec2d](b)
		return tinyvalue.New(id, tinymath.Vec2d{lerpF64(av[0], bv[0], alpha), lerpF64(av[1], bv[1], alpha)}), true
	case tinyvalue.Vec4d:
		av, _ := tinyvalue.As[tinymath.Vec4d](a)
		bv, _ := tinyvalue.As[tinymath.Vec4d](b)
		return tinyvalue.New(id, tinymath.Vec4d{
			lerpF64(av[0], bv[0], alpha), lerpF64(av[1], bv[1], alpha),
			lerpF64(av[2], bv[2], alpha), lerpF64(av[3], bv[3], alpha),
		}), true
	case tinyvalue.Matrix4d:
		av, _ := tinyvalue.As[tinymath.Matrix4d](a)
		bv, _ := tinyvalue.As[tinymath.Matrix4d](b)
		var out tinymath.Matrix4d
		for i := range out {
			out[i] = lerpF64(av[i], bv[i], alpha)
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.Quatf:
		av, _ := tinyvalue.As[tinymath.Quatf](a)
		bv, _ := tinyvalue.As[tinymath.Quatf](b)
		return tinyvalue.New(id, tinymath.Quatf{
			X: lerpF32(av.X, bv.X, alpha), Y: lerpF32(av.Y, bv.Y, alpha),
			Z: lerpF32(av.Z, bv.Z, alpha), W: lerpF32(av.W, bv.W, alpha),
		}), true
	case tinyvalue.Quatd:
		av, _ := tinyvalue.As[tinymath.Quatd](a)
		bv, _ := tinyvalue.As[tinymath.Quatd](b)
		return tinyvalue.New(id, tinymath.Quatd{
			X: lerpF64(av.X, bv.X, alpha), Y: lerpF64(av.Y, bv.Y, alpha),
			Z: lerpF64(av.Z, bv.Z, alpha), W: lerpF64(av.W, bv.W, alpha),
		}), true

	// Array kinds lerp element-by-element, per §4.1's "their arrays of
	// equal length" rule; mismatched lengths fall through to false so
	// the caller degrades to Held rather than panicking.
	case tinyvalue.FloatArrayID:
		av, _ := tinyvalue.As[[]float32](a)
		bv, _ := tinyvalue.As[[]float32](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]float32, len(av))
		for i := range av {
			out[i] = lerpF32(av[i], bv[i], alpha)
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.DoubleArrayID:
		av, _ := tinyvalue.As[[]float64](a)
		bv, _ := tinyvalue.As[[]float64](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]float64, len(av))
		for i := range av {
			out[i] = lerpF64(av[i], bv[i], alpha)
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.Vec2fArrayID:
		av, _ := tinyvalue.As[[]tinymath.Vec2f](a)
		bv, _ := tinyvalue.As[[]tinymath.Vec2f](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]tinymath.Vec2f, len(av))
		for i := range av {
			out[i] = tinymath.Vec2f{lerpF32(av[i][0], bv[i][0], alpha), lerpF32(av[i][1], bv[i][1], alpha)}
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.Vec3fArrayID:
		av, _ := tinyvalue.As[[]tinymath.Vec3f](a)
		bv, _ := tinyvalue.As[[]tinymath.Vec3f](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]tinymath.Vec3f, len(av))
		for i := range av {
			out[i] = tinymath.Vec3f{
				lerpF32(av[i][0], bv[i][0], alpha), lerpF32(av[i][1], bv[i][1], alpha), lerpF32(av[i][2], bv[i][2], alpha),
			}
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.Vec4fArrayID:
		av, _ := tinyvalue.As[[]tinymath.Vec4f](a)
		bv, _ := tinyvalue.As[[]tinymath.Vec4f](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]tinymath.Vec4f, len(av))
		for i := range av {
			out[i] = tinymath.Vec4f{
				lerpF32(av[i][0], bv[i][0], alpha), lerpF32(av[i][1], bv[i][1], alpha),
				lerpF32(av[i][2], bv[i][2], alpha), lerpF32(av[i][3], bv[i][3], alpha),
			}
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.Vec2dArrayID:
		av, _ := tinyvalue.As[[]tinymath.Vec2d](a)
		bv, _ := tinyvalue.As[[]tinymath.Vec2d](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]tinymath.Vec2d, len(av))
		for i := range av {
			out[i] = tinymath.Vec2d{lerpF64(av[i][0], bv[i][0], alpha), lerpF64(av[i][1], bv[i][1], alpha)}
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.Vec3dArrayID:
		av, _ := tinyvalue.As[[]tinymath.Vec3d](a)
		bv, _ := tinyvalue.As[[]tinymath.Vec3d](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]tinymath.Vec3d, len(av))
		for i := range av {
			out[i] = tinymath.Vec3d{
				lerpF64(av[i][0], bv[i][0], alpha), lerpF64(av[i][1], bv[i][1], alpha), lerpF64(av[i][2], bv[i][2], alpha),
			}
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.Vec4dArrayID:
		av, _ := tinyvalue.As[[]tinymath.Vec4d](a)
		bv, _ := tinyvalue.As[[]tinymath.Vec4d](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]tinymath.Vec4d, len(av))
		for i := range av {
			out[i] = tinymath.Vec4d{
				lerpF64(av[i][0], bv[i][0], alpha), lerpF64(av[i][1], bv[i][1], alpha),
				lerpF64(av[i][2], bv[i][2], alpha), lerpF64(av[i][3], bv[i][3], alpha),
			}
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.QuatfArrayID:
		av, _ := tinyvalue.As[[]tinymath.Quatf](a)
		bv, _ := tinyvalue.As[[]tinymath.Quatf](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]tinymath.Quatf, len(av))
		for i := range av {
			out[i] = tinymath.Quatf{
				X: lerpF32(av[i].X, bv[i].X, alpha), Y: lerpF32(av[i].Y, bv[i].Y, alpha),
				Z: lerpF32(av[i].Z, bv[i].Z, alpha), W: lerpF32(av[i].W, bv[i].W, alpha),
			}
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.QuatdArrayID:
		av, _ := tinyvalue.As[[]tinymath.Quatd](a)
		bv, _ := tinyvalue.As[[]tinymath.Quatd](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]tinymath.Quatd, len(av))
		for i := range av {
			out[i] = tinymath.Quatd{
				X: lerpF64(av[i].X, bv[i].X, alpha), Y: lerpF64(av[i].Y, bv[i].Y, alpha),
				Z: lerpF64(av[i].Z, bv[i].Z, alpha), W: lerpF64(av[i].W, bv[i].W, alpha),
			}
		}
		return tinyvalue.New(id, out), true
	case tinyvalue.Matrix4dArrayID:
		av, _ := tinyvalue.As[[]tinymath.Matrix4d](a)
		bv, _ := tinyvalue.As[[]tinymath.Matrix4d](b)
		if len(av) != len(bv) {
			return tinyvalue.Value{}, false
		}
		out := make([]tinymath.Matrix4d, len(av))
		for i := range av {
			for k := range out[i] {
				out[i][k] = lerpF64(av[i][k], bv[i][k], alpha)
			}
		}
		return tinyvalue.New(id, out), true
	default:
		return tinyvalue.Value{}, false
	}
}

func lerpF32(a, b float32, alpha float64) float32 {
	return a + float32(alpha)*(b-a)
}

func lerpF64(a, b float64, alpha float64) float64 {
	return a + alpha*(b-a)
}
