package tinymath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3dArithmetic(t *testing.T) {
	a := Vec3d{1, 2, 3}
	b := Vec3d{4, 5, 6}

	assert.Equal(t, Vec3d{5, 7, 9}, a.Add(b))
	assert.Equal(t, Vec3d{-3, -3, -3}, a.Sub(b))
	assert.Equal(t, Vec3d{2, 4, 6}, a.Scale(2))
	assert.Equal(t, float64(32), a.Dot(b))
}

func TestVec3dCross(t *testing.T) {
	x := Vec3d{1, 0, 0}
	y := Vec3d{0, 1, 0}
	assert.Equal(t, Vec3d{0, 0, 1}, x.Cross(y))
}

func TestVec3dLengthAndNormalized(t *testing.T) {
	v := Vec3d{3, 4, 0}
	assert.Equal(t, float64(5), v.Length())

	n := v.Normalized()
	assert.InDelta(t, 1.0, n.Length(), 1e-9)
}

func TestVec3dNormalizedZeroVector(t *testing.T) {
	var zero Vec3d
	assert.Equal(t, zero, zero.Normalized())
}

func TestVec3fVec3dRoundTrip(t *testing.T) {
	d := Vec3d{1.5, -2.25, 3.0}
	f := d.ToVec3f()
	back := f.ToVec3d()
	assert.InDelta(t, d[0], back[0], 1e-6)
	assert.InDelta(t, d[1], back[1], 1e-6)
	assert.InDelta(t, d[2], back[2], 1e-6)
}

func TestVec3dLengthMatchesMathHypot(t *testing.T) {
	v := Vec3d{1, 2, 2}
	assert.InDelta(t, math.Sqrt(1+4+4), v.Length(), 1e-9)
}
