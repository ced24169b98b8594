package tinyprim

import (
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

// OpType enumerates the kinds of XformOp, grounded directly on
// original_source/src/xform.hh's Xformable op set.
type OpType int

const (
	ResetXformStack OpType = iota
	Transform
	Translate
	Scale
	RotateX
	RotateY
	RotateZ
	RotateXYZ
	RotateXZY
	RotateYXZ
	RotateYZX
	RotateZXY
	RotateZYX
	Orient // quaternion rotation
)

// XformOp is one element of a Prim's transform stack (§3).
type XformOp struct {
	OpType    OpType
	Suffix    string // optional namespace suffix, e.g. "xformOp:translate:pivot"
	Inverted  bool
	Value     PrimVar
}

func eulerOrder(op OpType) (string, bool) {
	switch op {
	case RotateXYZ:
		return "XYZ", true
	case RotateXZY:
		return "XZY", true
	case RotateYXZ:
		return "YXZ", true
	case RotateYZX:
		return "YZX", true
	case RotateZXY:
		return "ZXY", true
	case RotateZYX:
		return "ZYX", true
	default:
		return "", false
	}
}

const degToRad = 3.14159265358979323846 / 180.0

// EvaluateMatrix computes this op's contribution to the local
// transform matrix at tc, per §4.8. Dispatch is purely on OpType, not
// on the Suffix token, per the REDESIGN FLAG in spec §9 (the original
// source sometimes mislabels RotateY/RotateYZ via the suffix token).
func (op XformOp) EvaluateMatrix(tc TimeCode, interp InterpolationType) (tinymath.Matrix4d, error) {
	v, ok := op.Value.GetInterpolatedValue(tc, interp)
	if !ok && op.OpType != ResetXformStack {
		return tinymath.Identity4d(), fmt.Errorf("xformOp %v has no value", op.OpType)
	}

	switch op.OpType {
	case ResetXformStack:
		return tinymath.Identity4d(), nil
	case Transform:
		m, ok := tinyvalue.As[tinymath.Matrix4d](v)
		if !ok {
			return tinymath.Identity4d(), fmt.Errorf("transform xformOp: expected matrix4d")
		}
		return m, nil
	case Translate:
		t, ok := vec3dFromValue(v)
		if !ok {
			return tinymath.Identity4d(), fmt.Errorf("translate xformOp: expected double3")
		}
		m := tinymath.NewTranslate(t)
		return invertIfNeeded(m, op.Inverted), nil
	case Scale:
		s, ok := vec3dFromValue(v)
		if !ok {
			return tinymath.Identity4d(), fmt.Errorf("scale xformOp: expected double3")
		}
		m := tinymath.NewScale(s)
		return invertIfNeeded(m, op.Inverted), nil
	case RotateX, RotateY, RotateZ:
		angle, ok := scalarDegrees(v)
		if !ok {
			return tinymath.Identity4d(), fmt.Errorf("rotate xformOp: expected scalar angle")
		}
		if op.Inverted {
			angle = -angle
		}
		rad := angle * degToRad
		switch op.OpType {
		case RotateX:
			return tinymath.NewRotateX(rad), nil
		case RotateY:
			return tinymath.NewRotateY(rad), nil
		default:
			return tinymath.NewRotateZ(rad), nil
		}
	case RotateXYZ, RotateXZY, RotateYXZ, RotateYZX, RotateZXY, RotateZYX:
		order, _ := eulerOrder(op.OpType)
		angles, ok := vec3dFromValue(v)
		if !ok {
			return tinymath.Identity4d(), fmt.Errorf("%v xformOp: expected float3/double3", op.OpType)
		}
		rad := tinymath.Vec3d{angles[0] * degToRad, angles[1] * degToRad, angles[2] * degToRad}
		return tinymath.NewRotateEuler(order, rad, op.Inverted), nil
	case Orient:
		q, ok := quatdFromValue(v)
		if !ok {
			return tinymath.Identity4d(), fmt.Errorf("orient xformOp: expected quatf/quatd")
		}
		m := tinymath.Matrix4dFromQuat(q)
		return invertIfNeeded(m, op.Inverted), nil
	default:
		return tinymath.Identity4d(), fmt.Errorf("unknown xformOp type %v", op.OpType)
	}
}

func invertIfNeeded(m tinymath.Matrix4d, inverted bool) tinymath.Matrix4d {
	if !inverted {
		return m
	}
	inv, ok := m.Inverse()
	if !ok {
		return tinymath.Identity4d()
	}
	return inv
}

// vec3dFromValue reads a Vec3d/Vec3f-typed Value. Values of vector,
// matrix and quaternion TypeIds always store the corresponding
// tinymath type directly (never a bare array), so the USDA/Crate
// readers and this evaluator agree on one representation.
func vec3dFromValue(v tinyvalue.Value) (tinymath.Vec3d, bool) {
	switch v.TypeId() {
	case tinyvalue.Vec3d:
		vec, ok := tinyvalue.As[tinymath.Vec3d](v)
		return vec, ok
	case tinyvalue.Vec3f:
		vec, ok := tinyvalue.As[tinymath.Vec3f](v)
		if !ok {
			return tinymath.Vec3d{}, false
		}
		return vec.ToVec3d(), true
	default:
		return tinymath.Vec3d{}, false
	}
}

func scalarDegrees(v tinyvalue.Value) (float64, bool) {
	switch v.TypeId() {
	case tinyvalue.Double:
		f, ok := tinyvalue.As[float64](v)
		return f, ok
	case tinyvalue.Float:
		f, ok := tinyvalue.As[float32](v)
		return float64(f), ok
	default:
		return 0, false
	}
}

func quatdFromValue(v tinyvalue.Value) (tinymath.Quatd, bool) {
	switch v.TypeId() {
	case tinyvalue.Quatd:
		q, ok := tinyvalue.As[tinymath.Quatd](v)
		return q, ok
	case tinyvalue.Quatf:
		q, ok := tinyvalue.As[tinymath.Quatf](v)
		if !ok {
			return tinymath.Quatd{}, false
		}
		return q.ToQuatd(), true
	default:
		return tinymath.Quatd{}, false
	}
}

// EvaluateXformOps concatenates ops in order (M = ops[0]·ops[1]·...),
// per §4.8, returning resetXformStack=true when ops[0] is
// ResetXformStack. A ResetXformStack elsewhere in the list is a
// ParseError per the REDESIGN FLAG in §9 (reject, don't silently
// ignore).
func EvaluateXformOps(ops []XformOp, tc TimeCode, interp InterpolationType) (m tinymath.Matrix4d, resetXformStack bool, err error) {
	m = tinymath.Identity4d()
	for i, op := range ops {
		if op.OpType == ResetXformStack {
			if i != 0 {
				return tinymath.Identity4d(), false, fmt.Errorf("%w: !resetXformStack! must be the first xformOp, found at index %d", tinyerr.ErrParse, i)
			}
			resetXformStack = true
			continue
		}
		opM, evalErr := op.EvaluateMatrix(tc, interp)
		if evalErr != nil {
			return tinymath.Identity4d(), false, evalErr
		}
		m = m.Mul(opM)
	}
	return m, resetXformStack, nil
}

// GlobalMatrix computes Global = Local x Parent in concatenation
// order, i.e. Parent applied after Local for the row-vector
// convention (a point first transforms by the child's local matrix,
// then by its ancestors') — see §4.8 "Global = Parent x Local" in the
// original, restated here in the row-vector convention this port
// uses throughout.
func GlobalMatrix(parent, local tinymath.Matrix4d, resetXformStack bool) tinymath.Matrix4d {
	if resetXformStack {
		return local
	}
	return local.Mul(parent)
}
