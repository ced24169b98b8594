package tinyprim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

func TestPrimVarScalarReturnedAtDefault(t *testing.T) {
	pv := NewScalarPrimVar(tinyvalue.New(tinyvalue.Float, float32(3)))
	v, ok := pv.GetInterpolatedValue(Default, Held)
	require.True(t, ok)
	f, _ := tinyvalue.As[float32](v)
	assert.Equal(t, float32(3), f)
}

// Scenario 2: time-sampled opacity.
func TestTimeSampledOpacityInterpolation(t *testing.T) {
	var ts tinyvalue.TimeSamples
	ts.Add(0, tinyvalue.New(tinyvalue.Float, float32(0.0)))
	ts.Add(10, tinyvalue.New(tinyvalue.Float, float32(1.0)))
	pv := NewTimeSamplesPrimVar(ts)

	v, ok := pv.GetInterpolatedValue(At(5), Linear)
	require.True(t, ok)
	f, _ := tinyvalue.As[float32](v)
	assert.InDelta(t, 0.5, f, 1e-6)

	v, ok = pv.GetInterpolatedValue(Default, Held)
	require.True(t, ok)
	f, _ = tinyvalue.As[float32](v)
	assert.Equal(t, float32(0.0), f)

	v, ok = pv.GetInterpolatedValue(At(20), Linear)
	require.True(t, ok)
	f, _ = tinyvalue.As[float32](v)
	assert.Equal(t, float32(1.0), f)
}

// Scenario 3: Held fallback for non-lerpable types (tokens).
func TestHeldFallbackForTokens(t *testing.T) {
	var ts tinyvalue.TimeSamples
	ts.Add(0, tinyvalue.New(tinyvalue.Token, tinyvalue.Intern("a")))
	ts.Add(10, tinyvalue.New(tinyvalue.Token, tinyvalue.Intern("b")))
	pv := NewTimeSamplesPrimVar(ts)

	v, ok := pv.GetInterpolatedValue(At(5), Linear)
	require.True(t, ok)
	tok, _ := tinyvalue.As[tinyvalue.Token](v)
	assert.Equal(t, "a", tok.String())
}

func TestBlockedPrimVarHasNoValue(t *testing.T) {
	pv := NewBlockedPrimVar()
	_, ok := pv.GetInterpolatedValue(Default, Held)
	assert.False(t, ok)
	assert.True(t, pv.IsBlocked())
}

// Scenario 6: RotateXYZ(0,0,-65.66769deg).
func TestRotateXYZMatrix(t *testing.T) {
	op := XformOp{
		OpType: RotateXYZ,
		Value:  NewScalarPrimVar(tinyvalue.New(tinyvalue.Vec3d, tinymath.Vec3d{0, 0, -65.66769})),
	}

	m, err := op.EvaluateMatrix(Default, Held)
	require.NoError(t, err)
	assert.InDelta(t, 0.4120, m[0], 1e-4)
	assert.InDelta(t, -0.9112, m[1], 1e-4)
	assert.InDelta(t, 0.0, m[2], 1e-4)
	assert.InDelta(t, 0.0, m[3], 1e-4)
}

func TestResetXformStackMustLead(t *testing.T) {
	ops := []XformOp{
		{OpType: Translate, Value: NewScalarPrimVar(tinyvalue.New(tinyvalue.Vec3d, tinymath.Vec3d{1, 0, 0}))},
		{OpType: ResetXformStack},
	}
	_, _, err := EvaluateXformOps(ops, Default, Held)
	assert.Error(t, err)
}

func TestResetXformStackLeading(t *testing.T) {
	ops := []XformOp{
		{OpType: ResetXformStack},
		{OpType: Translate, Value: NewScalarPrimVar(tinyvalue.New(tinyvalue.Vec3d, tinymath.Vec3d{1, 2, 3}))},
	}
	m, reset, err := EvaluateXformOps(ops, Default, Held)
	require.NoError(t, err)
	assert.True(t, reset)
	assert.InDelta(t, 1.0, m[12], 1e-9)
}
