package tydra

import (
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
)

// interpolation is a primvar's authored variability, per §4.8 step 5.
type interpolation int

const (
	interpConstant interpolation = iota
	interpUniform
	interpVarying
	interpVertex
	interpFaceVarying
)

func parseInterpolation(s string) interpolation {
	switch s {
	case "uniform":
		return interpUniform
	case "varying":
		return interpVarying
	case "vertex":
		return interpVertex
	case "faceVarying":
		return interpFaceVarying
	default:
		return interpConstant
	}
}

// vec3fVariability converts a primvar authored with the given
// interpolation into either a per-vertex or per-facevertex array,
// implementing the conversions §4.8 step 5 lists as supported.
// faceVarying→vertex is intentionally absent: the spec names it a
// required error (ErrVertexVariabilityUnsup), not a silently degraded
// conversion.
func vec3fVariability(values []tinymath.Vec3f, from interpolation, toFaceVarying bool, vertexCount int, faceVertexCounts, faceVertexIndices []int32) ([]tinymath.Vec3f, error) {
	switch {
	case from == interpConstant && len(values) >= 1:
		n := vertexCount
		if toFaceVarying {
			n = len(faceVertexIndices)
		}
		out := make([]tinymath.Vec3f, n)
		for i := range out {
			out[i] = values[0]
		}
		return out, nil
	case (from == interpUniform || from == interpVarying) && !toFaceVarying:
		return expandUniformToVertex3f(values, faceVertexCounts, faceVertexIndices, vertexCount)
	case (from == interpUniform || from == interpVarying) && toFaceVarying:
		return replicateUniformToFaceVarying3f(values, faceVertexCounts), nil
	case (from == interpVertex || from == interpVarying) && toFaceVarying:
		return gatherVertexToFaceVarying3f(values, faceVertexIndices), nil
	case from == interpVertex && !toFaceVarying:
		return values, nil
	case from == interpFaceVarying && toFaceVarying:
		return values, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %v to facevarying=%v", tinyerr.ErrVertexVariabilityUnsup, from, toFaceVarying)
	}
}

func expandUniformToVertex3f(perFace []tinymath.Vec3f, faceVertexCounts, faceVertexIndices []int32, vertexCount int) ([]tinymath.Vec3f, error) {
	out := make([]tinymath.Vec3f, vertexCount)
	set := make([]bool, vertexCount)
	idx := 0
	for faceIdx, count := range faceVertexCounts {
		if faceIdx >= len(perFace) {
			return nil, fmt.Errorf("%w: uniform primvar has fewer entries than faces", tinyerr.ErrVertexVariabilityUnsup)
		}
		for i := 0; i < int(count); i++ {
			v := int(faceVertexIndices[idx+i])
			if v < 0 || v >= vertexCount {
				return nil, fmt.Errorf("%w: faceVertexIndices out of range", tinyerr.ErrSubsetValidationFailed)
			}
			out[v] = perFace[faceIdx]
			set[v] = true
		}
		idx += int(count)
	}
	return out, nil
}

func replicateUniformToFaceVarying3f(perFace []tinymath.Vec3f, faceVertexCounts []int32) []tinymath.Vec3f {
	var out []tinymath.Vec3f
	for faceIdx, count := range faceVertexCounts {
		if faceIdx >= len(perFace) {
			break
		}
		for i := 0; i < int(count); i++ {
			out = append(out, perFace[faceIdx])
		}
	}
	return out
}

func gatherVertexToFaceVarying3f(perVertex []tinymath.Vec3f, faceVertexIndices []int32) []tinymath.Vec3f {
	out := make([]tinymath.Vec3f, len(faceVertexIndices))
	for i, v := range faceVertexIndices {
		if int(v) < len(perVertex) {
			out[i] = perVertex[v]
		}
	}
	return out
}

// vec2fVariability is vec3fVariability's texcoord analogue, used for
// primvars:st/primvars:uv conversion in §4.8 step 5.
func vec2fVariability(values []tinymath.Vec2f, from interpolation, toFaceVarying bool, vertexCount int, faceVertexCounts, faceVertexIndices []int32) ([]tinymath.Vec2f, error) {
	switch {
	case from == interpConstant && len(values) >= 1:
		n := vertexCount
		if toFaceVarying {
			n = len(faceVertexIndices)
		}
		out := make([]tinymath.Vec2f, n)
		for i := range out {
			out[i] = values[0]
		}
		return out, nil
	case (from == interpUniform || from == interpVarying) && !toFaceVarying:
		return expandUniformToVertex2f(values, faceVertexCounts, faceVertexIndices, vertexCount)
	case (from == interpUniform || from == interpVarying) && toFaceVarying:
		return replicateUniformToFaceVarying2f(values, faceVertexCounts), nil
	case (from == interpVertex || from == interpVarying) && toFaceVarying:
		return gatherVertexToFaceVarying2f(values, faceVertexIndices), nil
	case from == interpVertex && !toFaceVarying:
		return values, nil
	case from == interpFaceVarying && toFaceVarying:
		return values, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert uv interpolation %v to facevarying=%v", tinyerr.ErrVertexVariabilityUnsup, from, toFaceVarying)
	}
}

func expandUniformToVertex2f(perFace []tinymath.Vec2f, faceVertexCounts, faceVertexIndices []int32, vertexCount int) ([]tinymath.Vec2f, error) {
	out := make([]tinymath.Vec2f, vertexCount)
	idx := 0
	for faceIdx, count := range faceVertexCounts {
		if faceIdx >= len(perFace) {
			return nil, fmt.Errorf("%w: uniform primvar has fewer entries than faces", tinyerr.ErrVertexVariabilityUnsup)
		}
		for i := 0; i < int(count); i++ {
			v := int(faceVertexIndices[idx+i])
			if v < 0 || v >= vertexCount {
				return nil, fmt.Errorf("%w: faceVertexIndices out of range", tinyerr.ErrSubsetValidationFailed)
			}
			out[v] = perFace[faceIdx]
		}
		idx += int(count)
	}
	return out, nil
}

func replicateUniformToFaceVarying2f(perFace []tinymath.Vec2f, faceVertexCounts []int32) []tinymath.Vec2f {
	var out []tinymath.Vec2f
	for faceIdx, count := range faceVertexCounts {
		if faceIdx >= len(perFace) {
			break
		}
		for i := 0; i < int(count); i++ {
			out = append(out, perFace[faceIdx])
		}
	}
	return out
}

func gatherVertexToFaceVarying2f(perVertex []tinymath.Vec2f, faceVertexIndices []int32) []tinymath.Vec2f {
	out := make([]tinymath.Vec2f, len(faceVertexIndices))
	for i, v := range faceVertexIndices {
		if int(v) < len(perVertex) {
			out[i] = perVertex[v]
		}
	}
	return out
}

// remapFaceVaryingVec3f regathers a facevarying array
// authored against the original faces onto the post-triangulation
// facevertex slots, per §4.8 step 4's per-facevertex primvar remap.
func remapFaceVaryingVec3f(values []tinymath.Vec3f, origSlot []int32) []tinymath.Vec3f {
	out := make([]tinymath.Vec3f, len(origSlot))
	for i, slot := range origSlot {
		if int(slot) < len(values) {
			out[i] = values[slot]
		}
	}
	return out
}

func remapFaceVaryingFloat32(values []float32, origSlot []int32) []float32 {
	out := make([]float32, len(origSlot))
	for i, slot := range origSlot {
		if int(slot) < len(values) {
			out[i] = values[slot]
		}
	}
	return out
}

func remapFaceVaryingVec2f(values []tinymath.Vec2f, origSlot []int32) []tinymath.Vec2f {
	out := make([]tinymath.Vec2f, len(origSlot))
	for i, slot := range origSlot {
		if int(slot) < len(values) {
			out[i] = values[slot]
		}
	}
	return out
}
