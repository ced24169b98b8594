package tinymath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity4dIsMulNeutral(t *testing.T) {
	id := Identity4d()
	m := NewTranslate(Vec3d{1, 2, 3})
	assert.Equal(t, m, id.Mul(m))
	assert.Equal(t, m, m.Mul(id))
}

func TestTransformPointTranslate(t *testing.T) {
	m := NewTranslate(Vec3d{1, 2, 3})
	p := m.TransformPoint(Vec3d{0, 0, 0})
	assert.Equal(t, Vec3d{1, 2, 3}, p)
}

func TestTransformVectorIgnoresTranslation(t *testing.T) {
	m := NewTranslate(Vec3d{10, 10, 10})
	v := m.TransformVector(Vec3d{1, 0, 0})
	assert.Equal(t, Vec3d{1, 0, 0}, v)
}

func TestTransformPointScale(t *testing.T) {
	m := NewScale(Vec3d{2, 3, 4})
	p := m.TransformPoint(Vec3d{1, 1, 1})
	assert.Equal(t, Vec3d{2, 3, 4}, p)
}

func TestConcatXformOpsOrder(t *testing.T) {
	scale := NewScale(Vec3d{2, 2, 2})
	translate := NewTranslate(Vec3d{1, 0, 0})

	m := ConcatXformOps([]Matrix4d{scale, translate})
	p := m.TransformPoint(Vec3d{1, 0, 0})
	assert.Equal(t, Vec3d{3, 0, 0}, p)
}

func TestRotateZQuarterTurn(t *testing.T) {
	m := NewRotateZ(math.Pi / 2)
	p := m.TransformPoint(Vec3d{1, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-9)
	assert.InDelta(t, 1, p[1], 1e-9)
}

func TestInverseRoundTrip(t *testing.T) {
	m := NewTranslate(Vec3d{1, 2, 3}).Mul(NewScale(Vec3d{2, 3, 4}))
	inv, ok := m.Inverse()
	require.True(t, ok)

	p := Vec3d{5, -1, 7}
	back := inv.TransformPoint(m.TransformPoint(p))
	assert.InDelta(t, p[0], back[0], 1e-9)
	assert.InDelta(t, p[1], back[1], 1e-9)
	assert.InDelta(t, p[2], back[2], 1e-9)
}

func TestInverseSingularReturnsFalse(t *testing.T) {
	var zero Matrix4d
	_, ok := zero.Inverse()
	assert.False(t, ok)
}

func TestDeterminantOfIdentity(t *testing.T) {
	assert.Equal(t, float64(1), Identity4d().Determinant())
}

func TestTranspose(t *testing.T) {
	m := NewTranslate(Vec3d{1, 2, 3})
	tr := m.Transpose()
	assert.Equal(t, m, tr.Transpose())
}

func TestMatrix4dFromQuatMatchesAxisRotation(t *testing.T) {
	q := QuatFromAxisAngle(Vec3d{0, 0, 1}, math.Pi/2)
	fromQuat := Matrix4dFromQuat(q)
	fromEuler := NewRotateZ(math.Pi / 2)

	p := Vec3d{1, 0, 0}
	a := fromQuat.TransformPoint(p)
	b := fromEuler.TransformPoint(p)
	assert.InDelta(t, a[0], b[0], 1e-9)
	assert.InDelta(t, a[1], b[1], 1e-9)
	assert.InDelta(t, a[2], b[2], 1e-9)
}

func TestNewRotateEulerInvertReversesOrderAndAngles(t *testing.T) {
	fwd := NewRotateEuler("XYZ", Vec3d{0.3, 0.5, 0.7}, false)
	fwdInv, ok := fwd.Inverse()
	require.True(t, ok)

	inv := NewRotateEuler("XYZ", Vec3d{0.3, 0.5, 0.7}, true)

	p := Vec3d{1, 2, 3}
	a := fwdInv.TransformPoint(p)
	b := inv.TransformPoint(p)
	assert.InDelta(t, a[0], b[0], 1e-6)
	assert.InDelta(t, a[1], b[1], 1e-6)
	assert.InDelta(t, a[2], b[2], 1e-6)
}

func TestTexcoordTransformIdentity(t *testing.T) {
	m := NewTexcoordTransform(Vec2d{1, 1}, 0, Vec2d{0, 0})
	p := m.TransformPoint2(Vec2d{0.5, 0.25})
	assert.InDelta(t, 0.5, p[0], 1e-9)
	assert.InDelta(t, 0.25, p[1], 1e-9)
}

func TestTexcoordTransformTranslation(t *testing.T) {
	m := NewTexcoordTransform(Vec2d{1, 1}, 0, Vec2d{0.5, 0.5})
	p := m.TransformPoint2(Vec2d{0, 0})
	assert.InDelta(t, 0.5, p[0], 1e-9)
	assert.InDelta(t, 0.5, p[1], 1e-9)
}
