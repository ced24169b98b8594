package tinyvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueRoundTrip(t *testing.T) {
	v := New(Float, float32(1.5))
	f, ok := As[float32](v)
	require.True(t, ok)
	assert.Equal(t, float32(1.5), f)

	roundTripped := New(v.TypeId(), f)
	assert.Equal(t, v.TypeId(), roundTripped.TypeId())
}

func TestValueAsMismatchReturnsFalse(t *testing.T) {
	v := New(Float, float32(1.5))
	_, ok := As[string](v)
	assert.False(t, ok)
}

func TestTypeRegistryArrayVsScalar(t *testing.T) {
	assert.False(t, Float.IsArray())
	assert.True(t, FloatArrayID.IsArray())
	assert.Equal(t, "float", Float.TypeName())
	assert.Equal(t, "float[]", FloatArrayID.TypeName())
	assert.Equal(t, Float, FloatArrayID.ScalarTypeId())
}

func TestLerpablePredicate(t *testing.T) {
	assert.True(t, Float.Lerpable())
	assert.True(t, Matrix4d.Lerpable())
	assert.False(t, Token.Lerpable())
	assert.False(t, String.Lerpable())
	assert.False(t, Bool.Lerpable())
}

func TestTypeByName(t *testing.T) {
	id, ok := TypeByName("float3")
	require.True(t, ok)
	assert.Equal(t, Vec3f, id)

	_, ok = TypeByName("not-a-type")
	assert.False(t, ok)
}

func TestTokenInterningEquality(t *testing.T) {
	a := Intern("diffuseColor")
	b := Intern("diffuseColor")
	c := Intern("roughness")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "diffuseColor", a.String())
}

func TestDictCustomDataByPath(t *testing.T) {
	d := NewDict()
	ok := d.SetByPath("a:b:c", New(Int, int32(42)))
	assert.True(t, ok)

	v, ok := d.GetByPath("a:b:c")
	require.True(t, ok)
	n, ok := As[int32](v)
	require.True(t, ok)
	assert.Equal(t, int32(42), n)

	assert.True(t, d.HasKeyPath("a:b:c"))
	assert.False(t, d.HasKeyPath("a:x:c"))
}

func TestTimeSamplesBracket(t *testing.T) {
	var ts TimeSamples
	ts.Add(0, New(Float, float32(0)))
	ts.Add(10, New(Float, float32(1)))

	lo, hi := ts.Bracket(5)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 1, hi)

	lo, hi = ts.Bracket(-1)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)

	lo, hi = ts.Bracket(20)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 1, hi)
}
