package tydra

import (
	"fmt"
	"sort"

	"github.com/lighttransport/tinyusdz-go/pkg/stage"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
	"github.com/lighttransport/tinyusdz-go/pkg/tydraopts"
)

func evalVec3fArray(s *stage.Stage, prim *tinyprim.Prim, name string, tc tinyprim.TimeCode, interp tinyprim.InterpolationType) ([]tinymath.Vec3f, string, error) {
	tv, err := s.EvaluateAttribute(prim, name, tc, interp)
	if err != nil {
		return nil, "", err
	}
	switch tv.Value.TypeId() {
	case tinyvalue.Vec3fArrayID:
		out, _ := tinyvalue.As[[]tinymath.Vec3f](tv.Value)
		return out, tv.Meta.Interpolation, nil
	case tinyvalue.Vec3dArrayID:
		src, _ := tinyvalue.As[[]tinymath.Vec3d](tv.Value)
		out := make([]tinymath.Vec3f, len(src))
		for i, v := range src {
			out[i] = v.ToVec3f()
		}
		return out, tv.Meta.Interpolation, nil
	default:
		return nil, "", fmt.Errorf("%w: %q: expected point3f[]/vector3f[]/normal3f[], got %s", tinyerr.ErrTypeMismatch, name, tv.Value.TypeName())
	}
}

func evalIntArray(s *stage.Stage, prim *tinyprim.Prim, name string, tc tinyprim.TimeCode) ([]int32, error) {
	tv, err := s.EvaluateAttribute(prim, name, tc, tinyprim.Held)
	if err != nil {
		return nil, err
	}
	out, ok := tinyvalue.As[[]int32](tv.Value)
	if !ok {
		return nil, fmt.Errorf("%w: %q: expected int[], got %s", tinyerr.ErrTypeMismatch, name, tv.Value.TypeName())
	}
	return out, nil
}

// ConvertMesh implements §4.8's mesh conversion pipeline for one
// GeomMesh Prim: sample topology, resolve material bindings and
// GeomSubsets, optionally triangulate, and convert every primvar's
// vertex variability to a single rendering-friendly representation.
func ConvertMesh(s *stage.Stage, prim *tinyprim.Prim, tc tinyprim.TimeCode, opts tydraopts.ConvertOptions) (*RenderMesh, error) {
	points, _, err := evalVec3fArray(s, prim, "points", tc, tinyprim.Linear)
	if err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}
	faceVertexCounts, err := evalIntArray(s, prim, "faceVertexCounts", tc)
	if err != nil {
		return nil, fmt.Errorf("faceVertexCounts: %w", err)
	}
	faceVertexIndices, err := evalIntArray(s, prim, "faceVertexIndices", tc)
	if err != nil {
		return nil, fmt.Errorf("faceVertexIndices: %w", err)
	}

	if err := validateTopology(points, faceVertexCounts, faceVertexIndices); err != nil {
		return nil, err
	}

	mesh := &RenderMesh{
		Name:              prim.ElementName,
		Points:            points,
		FaceVertexCounts:  faceVertexCounts,
		FaceVertexIndices: faceVertexIndices,
		Texcoords:         map[string][]tinymath.Vec2f{},
	}

	origSlot := identitySlots(len(faceVertexIndices))

	if opts.Triangulate {
		result, err := triangulateFaces(points, faceVertexCounts, faceVertexIndices)
		if err != nil {
			return nil, err
		}
		mesh.Triangulated = true
		mesh.FaceVertexCounts = result.faceVertexCounts
		mesh.FaceVertexIndices = result.faceVertexIndices
		mesh.TriangulatedFaceCounts = result.faceCounts
		mesh.TriangulatedToOrigFaceVertexIndexMap = result.origFaceOfTri
		origSlot = result.origSlot
	}

	faceVaryingNeeded := false
	if normals, interpName, err := tryVec3fPrimvar(s, prim, "normals", tc); err == nil && normals != nil {
		interp := parseInterpolation(interpName)
		if interp == interpFaceVarying {
			faceVaryingNeeded = true
		}
		mesh.Normals = normals
	}
	for _, name := range []string{"primvars:st", "primvars:uv"} {
		if _, ok := prim.GetAttribute(name); ok {
			faceVaryingNeeded = faceVaryingNeeded || primvarIsFaceVarying(prim, name)
		}
	}
	if primvarIsFaceVarying(prim, "primvars:displayColor") || primvarIsFaceVarying(prim, "primvars:opacity") {
		faceVaryingNeeded = true
	}
	mesh.FaceVarying = faceVaryingNeeded

	vertexCount := len(points)
	if normals, interpName, err := tryVec3fPrimvar(s, prim, "normals", tc); err == nil && normals != nil {
		converted, err := vec3fVariability(normals, parseInterpolation(interpName), faceVaryingNeeded, vertexCount, mesh.FaceVertexCounts, mesh.FaceVertexIndices)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		if mesh.Triangulated && parseInterpolation(interpName) == interpFaceVarying && faceVaryingNeeded {
			converted = remapFaceVaryingVec3f(normals, origSlot)
		}
		mesh.Normals = converted
	}

	for _, primvarName := range []string{"primvars:st", "primvars:uv"} {
		attr, ok := prim.GetAttribute(primvarName)
		if !ok {
			continue
		}
		tv, err := s.EvaluateAttribute(prim, primvarName, tc, tinyprim.Linear)
		if err != nil {
			continue
		}
		uv, ok := tinyvalue.As[[]tinymath.Vec2f](tv.Value)
		if !ok {
			continue
		}
		interp := parseInterpolation(attr.Meta.Interpolation)
		varname := primvarVarname(primvarName)
		if interp == interpFaceVarying && mesh.Triangulated {
			mesh.Texcoords[varname] = remapFaceVaryingVec2f(uv, origSlot)
			continue
		}
		converted, err := vec2fVariability(uv, interp, faceVaryingNeeded, vertexCount, mesh.FaceVertexCounts, mesh.FaceVertexIndices)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", primvarName, err)
		}
		mesh.Texcoords[varname] = converted
	}

	if displayColor, interpName, err := tryVec3fPrimvar(s, prim, "primvars:displayColor", tc); err == nil && displayColor != nil {
		interp := parseInterpolation(interpName)
		if interp == interpFaceVarying && mesh.Triangulated {
			mesh.DisplayColor = remapFaceVaryingVec3f(displayColor, origSlot)
		} else {
			converted, err := vec3fVariability(displayColor, interp, faceVaryingNeeded, vertexCount, mesh.FaceVertexCounts, mesh.FaceVertexIndices)
			if err != nil {
				return nil, fmt.Errorf("primvars:displayColor: %w", err)
			}
			mesh.DisplayColor = converted
		}
	}

	if err := convertSkinWeights(s, prim, tc, opts, mesh); err != nil {
		return nil, err
	}

	blendShapes, err := convertBlendShapes(s, prim, tc, len(points))
	if err != nil {
		return nil, err
	}
	mesh.BlendShapes = blendShapes

	subsets, err := convertGeomSubsets(prim, len(mesh.FaceVertexCounts), mesh.TriangulatedToOrigFaceVertexIndexMap)
	if err != nil {
		return nil, err
	}
	mesh.Submeshes = subsets

	return mesh, nil
}

// convertBlendShapes implements §4.8 step 7: each target named by the
// mesh's skel:blendShapeTargets relationship contributes a sparse (via
// pointIndices) or dense set of per-point offsets. A dense target's
// offsets array must cover every base point; a sparse one's
// pointIndices and offsets arrays must agree in length and stay in
// range.
func convertBlendShapes(s *stage.Stage, prim *tinyprim.Prim, tc tinyprim.TimeCode, pointCount int) ([]BlendShape, error) {
	rel, ok := prim.GetRelationship("skel:blendShapeTargets")
	if !ok {
		return nil, nil
	}

	shapes := make([]BlendShape, 0, len(rel.Targets))
	for _, target := range rel.Targets {
		bsPrim, err := s.FindPrimAtPath(target)
		if err != nil {
			return nil, fmt.Errorf("skel:blendShapeTargets: %w", err)
		}
		if bsPrim.SchemaType != tinyprim.SchemaBlendShape {
			return nil, fmt.Errorf("%w: skel:blendShapeTargets: %q is not a BlendShape prim", tinyerr.ErrSubsetValidationFailed, target.String())
		}

		offsets, _, err := evalVec3fArray(s, bsPrim, "offsets", tc, tinyprim.Held)
		if err != nil {
			return nil, fmt.Errorf("%s: offsets: %w", bsPrim.ElementName, err)
		}

		var normalOffsets []tinymath.Vec3f
		if _, ok := bsPrim.GetAttribute("normalOffsets"); ok {
			normalOffsets, _, err = evalVec3fArray(s, bsPrim, "normalOffsets", tc, tinyprim.Held)
			if err != nil {
				return nil, fmt.Errorf("%s: normalOffsets: %w", bsPrim.ElementName, err)
			}
		}

		var pointIndices []int32
		if _, ok := bsPrim.GetAttribute("pointIndices"); ok {
			pointIndices, err = evalIntArray(s, bsPrim, "pointIndices", tc)
			if err != nil {
				return nil, fmt.Errorf("%s: pointIndices: %w", bsPrim.ElementName, err)
			}
			if len(pointIndices) != len(offsets) {
				return nil, fmt.Errorf("%w: %s: pointIndices length %d != offsets length %d", tinyerr.ErrSubsetValidationFailed, bsPrim.ElementName, len(pointIndices), len(offsets))
			}
			for _, idx := range pointIndices {
				if idx < 0 || int(idx) >= pointCount {
					return nil, fmt.Errorf("%w: %s: pointIndices value %d out of range [0,%d)", tinyerr.ErrSubsetValidationFailed, bsPrim.ElementName, idx, pointCount)
				}
			}
		} else {
			if len(offsets) != pointCount {
				return nil, fmt.Errorf("%w: %s: dense offsets length %d != mesh point count %d", tinyerr.ErrSubsetValidationFailed, bsPrim.ElementName, len(offsets), pointCount)
			}
			pointIndices = identitySlots(pointCount)
		}

		shapes = append(shapes, BlendShape{
			Name:          bsPrim.ElementName,
			PointIndices:  pointIndices,
			PointOffsets:  offsets,
			NormalOffsets: normalOffsets,
		})
	}
	return shapes, nil
}

func identitySlots(n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(i)
	}
	return out
}

func tryVec3fPrimvar(s *stage.Stage, prim *tinyprim.Prim, name string, tc tinyprim.TimeCode) ([]tinymath.Vec3f, string, error) {
	if _, ok := prim.GetAttribute(name); !ok {
		return nil, "", nil
	}
	return evalVec3fArray(s, prim, name, tc, tinyprim.Linear)
}

func primvarIsFaceVarying(prim *tinyprim.Prim, name string) bool {
	attr, ok := prim.GetAttribute(name)
	if !ok {
		return false
	}
	return parseInterpolation(attr.Meta.Interpolation) == interpFaceVarying
}

func primvarVarname(attrName string) string {
	switch attrName {
	case "primvars:st":
		return "st"
	case "primvars:uv":
		return "uv"
	default:
		return attrName
	}
}

// validateTopology implements §4.8 step 1's checks plus the
// SubsetValidationFailed boundary behaviour from §8 (a face size < 3).
func validateTopology(points []tinymath.Vec3f, faceVertexCounts, faceVertexIndices []int32) error {
	var total int64
	for _, c := range faceVertexCounts {
		if c < 3 {
			return fmt.Errorf("%w: face with %d vertices, need >= 3", tinyerr.ErrSubsetValidationFailed, c)
		}
		total += int64(c)
	}
	if total != int64(len(faceVertexIndices)) {
		return fmt.Errorf("%w: faceVertexIndices length %d does not match sum of faceVertexCounts %d", tinyerr.ErrSubsetValidationFailed, len(faceVertexIndices), total)
	}
	for _, idx := range faceVertexIndices {
		if idx < 0 || int(idx) >= len(points) {
			return fmt.Errorf("%w: faceVertexIndices entry %d out of range [0, %d)", tinyerr.ErrSubsetValidationFailed, idx, len(points))
		}
	}
	return nil
}

// convertSkinWeights implements §4.8 step 6: both jointIndices and
// jointWeights must be `vertex` interpolation with matching, positive,
// config-bounded elementSize.
func convertSkinWeights(s *stage.Stage, prim *tinyprim.Prim, tc tinyprim.TimeCode, opts tydraopts.ConvertOptions, mesh *RenderMesh) error {
	idxAttr, hasIdx := prim.GetAttribute("primvars:skel:jointIndices")
	wAttr, hasW := prim.GetAttribute("primvars:skel:jointWeights")
	if !hasIdx && !hasW {
		return nil
	}
	if !hasIdx || !hasW {
		return fmt.Errorf("%w: jointIndices and jointWeights must both be authored", tinyerr.ErrVertexVariabilityUnsup)
	}
	if parseInterpolation(idxAttr.Meta.Interpolation) != interpVertex || parseInterpolation(wAttr.Meta.Interpolation) != interpVertex {
		return fmt.Errorf("%w: skin jointIndices/jointWeights must use vertex interpolation", tinyerr.ErrVertexVariabilityUnsup)
	}

	idxVal, err := s.EvaluateAttribute(prim, "primvars:skel:jointIndices", tc, tinyprim.Held)
	if err != nil {
		return err
	}
	wVal, err := s.EvaluateAttribute(prim, "primvars:skel:jointWeights", tc, tinyprim.Linear)
	if err != nil {
		return err
	}
	indices, ok := tinyvalue.As[[]int32](idxVal.Value)
	if !ok {
		return fmt.Errorf("%w: jointIndices must be int[]", tinyerr.ErrTypeMismatch)
	}
	weights, ok := tinyvalue.As[[]float32](wVal.Value)
	if !ok {
		return fmt.Errorf("%w: jointWeights must be float[]", tinyerr.ErrTypeMismatch)
	}
	if len(indices) != len(weights) {
		return fmt.Errorf("%w: jointIndices/jointWeights flattened length mismatch", tinyerr.ErrVertexVariabilityUnsup)
	}

	elementSize := 1
	for i, a := range []*tinyprim.Attribute{idxAttr, wAttr} {
		size := 1
		if cd := a.Meta.CustomData; cd != nil {
			if v, ok := cd.Get("elementSize"); ok {
				if n, ok := tinyvalue.As[int32](v); ok {
					size = int(n)
				}
			}
		}
		if i > 0 && size != elementSize {
			return fmt.Errorf("%w: jointIndices elementSize %d != jointWeights elementSize %d", tinyerr.ErrVertexVariabilityUnsup, elementSize, size)
		}
		elementSize = size
	}
	maxSize := opts.MaxSkinWeightElementSize
	if maxSize <= 0 {
		maxSize = 8
	}
	if elementSize <= 0 || elementSize > maxSize {
		return fmt.Errorf("%w: skin weight elementSize %d out of [1, %d]", tinyerr.ErrVertexVariabilityUnsup, elementSize, maxSize)
	}

	mesh.SkinJointIndices = indices
	mesh.SkinJointWeights = weights
	mesh.SkinElementSize = elementSize

	if bindAttr, ok := prim.GetAttribute("primvars:skel:geomBindTransform"); ok {
		if v, err := s.EvaluateAttribute(prim, "primvars:skel:geomBindTransform", tc, tinyprim.Held); err == nil {
			if m, ok := tinyvalue.As[tinymath.Matrix4d](v.Value); ok {
				mesh.GeomBindTransform = &m
			}
		}
		_ = bindAttr
	}
	return nil
}

// convertGeomSubsets resolves child GeomSubset Prims whose
// familyName=="materialBind" into Submesh runs (§4.8 step 2-3). It
// rejects a face index out of range and a face claimed by two
// subsets. It does not read familyType and does not check that the
// subsets cover every face: faces no subset claims form unbound runs.
func convertGeomSubsets(prim *tinyprim.Prim, faceCount int, origFaceOfTri []int) ([]Submesh, error) {
	type subset struct {
		name   string
		faces  []int32
		matPath string
	}
	var subsets []subset
	for _, child := range prim.Children {
		if child.SchemaType != tinyprim.SchemaGeomSubset {
			continue
		}
		familyAttr, _ := child.GetAttribute("familyName")
		if familyAttr != nil {
			if v, ok := familyAttr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held); ok {
				if tok, ok := tinyvalue.As[tinyvalue.Token](v); ok && tok.String() != "materialBind" {
					continue
				}
			}
		}
		idxAttr, ok := child.GetAttribute("indices")
		if !ok {
			continue
		}
		v, ok := idxAttr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held)
		if !ok {
			continue
		}
		indices, ok := tinyvalue.As[[]int32](v)
		if !ok {
			continue
		}
		matPath := ""
		if rel, ok := child.GetRelationship("material:binding"); ok && len(rel.Targets) > 0 {
			matPath = rel.Targets[0].PrimPart()
		}
		subsets = append(subsets, subset{name: child.ElementName, faces: indices, matPath: matPath})
	}

	if len(subsets) == 0 {
		matPath := ""
		if rel, ok := prim.GetRelationship("material:binding"); ok && len(rel.Targets) > 0 {
			matPath = rel.Targets[0].PrimPart()
		}
		return []Submesh{{Start: 0, Count: faceCount, MaterialID: -1, MaterialPath: matPath}}, nil
	}

	covered := make([]bool, faceCount)
	for _, ss := range subsets {
		for _, origFace := range ss.faces {
			targetFaces := []int32{origFace}
			if origFaceOfTri != nil {
				targetFaces = trianglesOfFace(origFaceOfTri, origFace)
			}
			for _, f := range targetFaces {
				if int(f) < 0 || int(f) >= faceCount {
					return nil, fmt.Errorf("%w: GeomSubset %q face index %d out of range", tinyerr.ErrSubsetValidationFailed, ss.name, f)
				}
				if covered[f] {
					return nil, fmt.Errorf("%w: GeomSubset %q overlaps another materialBind subset at face %d", tinyerr.ErrSubsetValidationFailed, ss.name, f)
				}
				covered[f] = true
			}
		}
	}

	// Build contiguous runs per subset in face order (run construction
	// doesn't require full partition coverage: uncovered faces fall
	// back to an unbound run so a partial/"unrestricted" family still
	// renders, matching the original's documented subset-validation
	// leniency for anything other than the overlap check above).
	faceOwner := make([]int, faceCount)
	for i := range faceOwner {
		faceOwner[i] = -1
	}
	for si, ss := range subsets {
		for _, origFace := range ss.faces {
			targetFaces := []int32{origFace}
			if origFaceOfTri != nil {
				targetFaces = trianglesOfFace(origFaceOfTri, origFace)
			}
			for _, f := range targetFaces {
				faceOwner[f] = si
			}
		}
	}

	var runs []Submesh
	start := 0
	for i := 1; i <= faceCount; i++ {
		if i == faceCount || faceOwner[i] != faceOwner[start] {
			owner := faceOwner[start]
			run := Submesh{Start: start, Count: i - start, MaterialID: -1}
			if owner >= 0 {
				run.MaterialPath = subsets[owner].matPath
			}
			runs = append(runs, run)
			start = i
		}
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Start < runs[j].Start })
	return runs, nil
}

func trianglesOfFace(origFaceOfTri []int, face int32) []int32 {
	var out []int32
	for i, f := range origFaceOfTri {
		if f == int(face) {
			out = append(out, int32(i))
		}
	}
	return out
}
