package stage

import (
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

// TerminalValue is the result of EvaluateAttribute: a concrete Value
// plus the original attribute's metadata and variability, per §4.7 —
// no connection and no time samples survive past this function.
type TerminalValue struct {
	Value       tinyvalue.Value
	Meta        tinyprim.AttributeMeta
	Variability tinyprim.Variability
}

// maxConnectionChainDepth guards against malformed inputs that would
// otherwise need a visited-set of unbounded size; real USD connection
// chains are never this long.
const maxConnectionChainDepth = 1024

// EvaluateAttribute implements §4.7's evaluate_attribute: looks up
// attrName on prim, rejects Relationships and missing/blocked
// attributes, follows a single connection chain with cycle detection,
// and otherwise interpolates the PrimVar at tc using interp.
func (s *Stage) EvaluateAttribute(prim *tinyprim.Prim, attrName string, tc tinyprim.TimeCode, interp tinyprim.InterpolationType) (TerminalValue, error) {
	if s.dirty {
		s.rebuildCache()
	}
	return s.evaluateAttribute(prim, attrName, tc, interp, make(map[string]bool))
}

func (s *Stage) evaluateAttribute(prim *tinyprim.Prim, attrName string, tc tinyprim.TimeCode, interp tinyprim.InterpolationType, visited map[string]bool) (TerminalValue, error) {
	prop, ok := prim.GetProperty(attrName)
	if !ok {
		return TerminalValue{}, fmt.Errorf("%w: %q on prim %q", tinyerr.ErrAttributeNotFound, attrName, prim.AbsPath())
	}
	if prop.Kind == tinyprim.PropertyRelationship {
		return TerminalValue{}, fmt.Errorf("%w: %q is a relationship, not an attribute", tinyerr.ErrTypeMismatch, attrName)
	}
	attr := prop.Attribute

	switch attr.State() {
	case tinyprim.StateBlocked:
		return TerminalValue{}, fmt.Errorf("%w: %q on prim %q", tinyerr.ErrAttributeBlocked, attrName, prim.AbsPath())
	case tinyprim.StateConnection:
		return s.followConnection(prim, attrName, attr, tc, interp, visited)
	default:
		v, ok := attr.Var.GetInterpolatedValue(tc, interp)
		if !ok {
			return TerminalValue{}, fmt.Errorf("%w: %q on prim %q has no authored value", tinyerr.ErrAttributeNotFound, attrName, prim.AbsPath())
		}
		return TerminalValue{Value: v, Meta: attr.Meta, Variability: attr.Variability}, nil
	}
}

func (s *Stage) followConnection(prim *tinyprim.Prim, attrName string, attr *tinyprim.Attribute, tc tinyprim.TimeCode, interp tinyprim.InterpolationType, visited map[string]bool) (TerminalValue, error) {
	key := prim.AbsPath() + "." + attrName
	if visited[key] {
		return TerminalValue{}, fmt.Errorf("%w: %q", tinyerr.ErrConnectionCycle, key)
	}
	if len(visited) >= maxConnectionChainDepth {
		return TerminalValue{}, fmt.Errorf("%w: connection chain exceeded %d hops", tinyerr.ErrConnectionCycle, maxConnectionChainDepth)
	}
	visited[key] = true

	target := attr.Connections[0]
	if !target.IsAbsolute() || !target.HasProperty() {
		return TerminalValue{}, fmt.Errorf("%w: connection target %q must be an absolute attribute path", tinyerr.ErrConnectionTargetMissing, target.String())
	}
	targetPrimPath, ok := tinypath.Parse(target.PrimPart())
	if !ok {
		return TerminalValue{}, fmt.Errorf("%w: invalid connection target prim path %q", tinyerr.ErrConnectionTargetMissing, target.PrimPart())
	}
	targetPrim, err := s.FindPrimAtPath(targetPrimPath)
	if err != nil {
		return TerminalValue{}, fmt.Errorf("%w: connection target prim %q not found", tinyerr.ErrConnectionTargetMissing, target.PrimPart())
	}
	targetProp, ok := targetPrim.GetProperty(target.PropPart())
	if !ok || targetProp.Kind != tinyprim.PropertyAttribute {
		return TerminalValue{}, fmt.Errorf("%w: connection target %q is not an attribute", tinyerr.ErrConnectionTargetMissing, target.String())
	}
	return s.evaluateAttribute(targetPrim, target.PropPart(), tc, interp, visited)
}
