// Package tinyprim implements the Prim/Property data model (C2 Prim,
// C3 Property model): Attribute, Relationship, Property, PrimVar and
// XformOp, plus the Prim scene-graph node itself.
package tinyprim

import "github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"

// TimeCode is a finite double or the sentinel Default.
type TimeCode struct {
	t         float64
	isDefault bool
}

// Default is the sentinel TimeCode meaning "use the authored default,
// or the first time sample".
var Default = TimeCode{isDefault: true}

func At(t float64) TimeCode { return TimeCode{t: t} }

func (tc TimeCode) IsDefault() bool { return tc.isDefault }
func (tc TimeCode) Value() float64  { return tc.t }

type InterpolationType int

const (
	Held InterpolationType = iota
	Linear
)

// primVarKind tags which of the three PrimVar states is populated.
type primVarKind int

const (
	pvEmpty primVarKind = iota
	pvScalar
	pvTimeSamples
	pvBlocked
)

// PrimVar holds either a scalar default value, a time-sampled track,
// or the "blocked" (None) state, per spec §4.3.
type PrimVar struct {
	kind    primVarKind
	scalar  tinyvalue.Value
	samples tinyvalue.TimeSamples
}

func NewScalarPrimVar(v tinyvalue.Value) PrimVar {
	return PrimVar{kind: pvScalar, scalar: v}
}

func NewTimeSamplesPrimVar(ts tinyvalue.TimeSamples) PrimVar {
	return PrimVar{kind: pvTimeSamples, samples: ts}
}

func NewBlockedPrimVar() PrimVar { return PrimVar{kind: pvBlocked} }

func (pv PrimVar) IsEmpty() bool       { return pv.kind == pvEmpty }
func (pv PrimVar) IsBlocked() bool     { return pv.kind == pvBlocked }
func (pv PrimVar) HasScalar() bool     { return pv.kind == pvScalar }
func (pv PrimVar) HasTimeSamples() bool { return pv.kind == pvTimeSamples }

func (pv PrimVar) Scalar() tinyvalue.Value { return pv.scalar }

func (pv PrimVar) TimeSamples() tinyvalue.TimeSamples { return pv.samples }

// TypeId returns the TypeId this PrimVar would evaluate to.
func (pv PrimVar) TypeId() tinyvalue.TypeId {
	switch pv.kind {
	case pvScalar:
		return pv.scalar.TypeId()
	case pvTimeSamples:
		return pv.samples.TypeId()
	default:
		return tinyvalue.Invalid
	}
}

// GetInterpolatedValue implements §4.3's PrimVar::get_interpolated_value.
func (pv PrimVar) GetInterpolatedValue(tc TimeCode, interp InterpolationType) (tinyvalue.Value, bool) {
	switch pv.kind {
	case pvBlocked, pvEmpty:
		return tinyvalue.Value{}, false
	case pvScalar:
		// Default and no time samples exist: always return the scalar,
		// regardless of requested interpolation or time.
		return pv.scalar, true
	case pvTimeSamples:
		return evalTimeSamples(pv.samples, tc, interp)
	}
	return tinyvalue.Value{}, false
}

func evalTimeSamples(ts tinyvalue.TimeSamples, tc TimeCode, interp InterpolationType) (tinyvalue.Value, bool) {
	if ts.Len() == 0 {
		return tinyvalue.Value{}, false
	}
	if tc.IsDefault() {
		// No scalar default: use the value at the smallest authored time.
		return ts.Values[0], true
	}

	t := tc.Value()
	if t <= ts.Times[0] {
		return ts.Values[0], true
	}
	if t >= ts.Times[len(ts.Times)-1] {
		return ts.Values[len(ts.Values)-1], true
	}

	lo, hi := ts.Bracket(t)
	if lo == hi {
		return ts.Values[lo], true
	}

	typeID := ts.Values[lo].TypeId()
	if interp == Held || !typeID.Lerpable() {
		return ts.Values[lo], true
	}

	t0, t1 := ts.Times[lo], ts.Times[hi]
	alpha := (t - t0) / (t1 - t0)
	v, ok := Lerp(ts.Values[lo], ts.Values[hi], alpha)
	if !ok {
		// Degrade to Held if the concrete lerp isn't implemented for
		// this type, rather than failing the whole evaluation.
		return ts.Values[lo], true
	}
	return v, true
}
