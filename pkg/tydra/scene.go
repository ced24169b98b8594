package tydra

import (
	"fmt"
	"strings"

	"github.com/lighttransport/tinyusdz-go/pkg/stage"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyhandle"
	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
	"github.com/lighttransport/tinyusdz-go/pkg/tydraopts"
)

// ConvertToRenderScene lowers a composed Stage into a RenderScene,
// walking RootPrims depth-first, converting each Xform-bearing Prim
// into a Node, each GeomMesh into a RenderMesh, and each bound Material
// into a RenderMaterial, per §4.8. Non-fatal per-node problems are
// recorded on diags rather than aborting the whole scene; only a
// structural failure (a malformed xformOpOrder) returns an error.
func ConvertToRenderScene(s *stage.Stage, opts tydraopts.ConvertOptions, resolver stage.AssetResolver, loader stage.ImageLoader, tc tinyprim.TimeCode) (*RenderScene, *tinyerr.Diagnostics, error) {
	scene := &RenderScene{}
	diags := &tinyerr.Diagnostics{}
	materialIndex := map[string]int{}
	handles := tinyhandle.NewAllocator()

	for _, root := range s.RootPrims {
		if _, err := convertNode(s, root, tinymath.Identity4d(), tc, opts, resolver, loader, scene, diags, materialIndex, handles); err != nil {
			return nil, diags, err
		}
	}

	resolveSubmeshMaterials(scene, materialIndex)
	return scene, diags, nil
}

func convertNode(s *stage.Stage, prim *tinyprim.Prim, parent tinymath.Matrix4d, tc tinyprim.TimeCode, opts tydraopts.ConvertOptions, resolver stage.AssetResolver, loader stage.ImageLoader, scene *RenderScene, diags *tinyerr.Diagnostics, materialIndex map[string]int, handles *tinyhandle.Allocator) (int, error) {
	ops, err := buildXformOps(prim)
	if err != nil {
		return -1, fmt.Errorf("prim %q: %w", prim.ElementName, err)
	}
	local, resetXformStack, err := tinyprim.EvaluateXformOps(ops, tc, tinyprim.Linear)
	if err != nil {
		return -1, fmt.Errorf("prim %q: %w", prim.ElementName, err)
	}
	global := tinyprim.GlobalMatrix(parent, local, resetXformStack)

	handle, _ := handles.Allocate()
	node := Node{Name: prim.ElementName, LocalMatrix: local, GlobalMatrix: global, MeshID: -1, Handle: handle}

	switch prim.SchemaType {
	case tinyprim.SchemaGeomMesh:
		mesh, err := ConvertMesh(s, prim, tc, opts)
		if err != nil {
			diags.Warnf(prim.ElementName, err)
		} else {
			bindMeshMaterials(prim, mesh, materialIndex, scene, s, resolver, loader, opts, diags)
			scene.Meshes = append(scene.Meshes, *mesh)
			node.MeshID = len(scene.Meshes) - 1
		}
	case tinyprim.SchemaSkelAnimation:
		anim, err := ConvertSkelAnimation(s, prim)
		if err != nil {
			diags.Warnf(prim.ElementName, err)
		} else {
			scene.Animations = append(scene.Animations, *anim)
		}
	}

	nodeIdx := len(scene.Nodes)
	scene.Nodes = append(scene.Nodes, node)

	for _, child := range prim.Children {
		if child.SchemaType == tinyprim.SchemaGeomSubset {
			continue // consumed directly by ConvertMesh, not a scene Node
		}
		childIdx, err := convertNode(s, child, global, tc, opts, resolver, loader, scene, diags, materialIndex, handles)
		if err != nil {
			return -1, err
		}
		scene.Nodes[nodeIdx].Children = append(scene.Nodes[nodeIdx].Children, childIdx)
	}

	return nodeIdx, nil
}

// bindMeshMaterials converts and interns every distinct material path a
// mesh's submeshes reference (the mesh's own material:binding, plus any
// per-GeomSubset override), filling each Submesh.MaterialID as the
// material is resolved.
func bindMeshMaterials(prim *tinyprim.Prim, mesh *RenderMesh, materialIndex map[string]int, scene *RenderScene, s *stage.Stage, resolver stage.AssetResolver, loader stage.ImageLoader, opts tydraopts.ConvertOptions, diags *tinyerr.Diagnostics) {
	for i := range mesh.Submeshes {
		ss := &mesh.Submeshes[i]
		if ss.MaterialPath == "" {
			continue
		}
		if idx, ok := materialIndex[ss.MaterialPath]; ok {
			ss.MaterialID = idx
			continue
		}
		path, ok := tinypath.Parse(ss.MaterialPath)
		if !ok {
			continue
		}
		matPrim, err := s.FindPrimAtPath(path)
		if err != nil {
			diags.Warnf(ss.MaterialPath, err)
			continue
		}
		mat := ConvertMaterial(s, matPrim, resolver, loader, opts, scene, diags)
		scene.Materials = append(scene.Materials, mat)
		idx := len(scene.Materials) - 1
		materialIndex[ss.MaterialPath] = idx
		ss.MaterialID = idx
	}
}

func resolveSubmeshMaterials(scene *RenderScene, materialIndex map[string]int) {
	for mi := range scene.Meshes {
		for si := range scene.Meshes[mi].Submeshes {
			ss := &scene.Meshes[mi].Submeshes[si]
			if ss.MaterialID >= 0 || ss.MaterialPath == "" {
				continue
			}
			if idx, ok := materialIndex[ss.MaterialPath]; ok {
				ss.MaterialID = idx
			}
		}
	}
}

// buildXformOps reads a Prim's xformOpOrder attribute (a token[]
// naming, in evaluation order, the xformOp:* attributes to apply) and
// resolves each into a tinyprim.XformOp, per §4.8's transform
// evaluation. A Prim with no xformOpOrder (e.g. a plain Scope) yields
// an empty, identity-matrix op list.
func buildXformOps(prim *tinyprim.Prim) ([]tinyprim.XformOp, error) {
	orderAttr, ok := prim.GetAttribute("xformOpOrder")
	if !ok {
		return nil, nil
	}
	v, ok := orderAttr.Var.GetInterpolatedValue(tinyprim.Default, tinyprim.Held)
	if !ok {
		return nil, nil
	}
	names, ok := tokenArrayToStrings(v)
	if !ok {
		return nil, fmt.Errorf("xformOpOrder: expected token[]")
	}

	ops := make([]tinyprim.XformOp, 0, len(names))
	for _, name := range names {
		if name == "!resetXformStack!" {
			ops = append(ops, tinyprim.XformOp{OpType: tinyprim.ResetXformStack})
			continue
		}
		inverted := strings.HasPrefix(name, "!invert!")
		attrName := strings.TrimPrefix(name, "!invert!")
		attr, ok := prim.GetAttribute(attrName)
		if !ok {
			return nil, fmt.Errorf("xformOpOrder names %q but the attribute is missing", attrName)
		}
		opType, suffix, ok := parseXformOpName(attrName)
		if !ok {
			return nil, fmt.Errorf("xformOpOrder names unrecognized op %q", attrName)
		}
		ops = append(ops, tinyprim.XformOp{OpType: opType, Suffix: suffix, Inverted: inverted, Value: attr.Var})
	}
	return ops, nil
}

func tokenArrayToStrings(v tinyvalue.Value) ([]string, bool) {
	switch v.TypeId() {
	case tinyvalue.TokenArrayID:
		toks, ok := tinyvalue.As[[]tinyvalue.Token](v)
		if !ok {
			return nil, false
		}
		out := make([]string, len(toks))
		for i, t := range toks {
			out[i] = t.String()
		}
		return out, true
	case tinyvalue.StringArrayID:
		return tinyvalue.As[[]string](v)
	default:
		return nil, false
	}
}

// parseXformOpName maps a "xformOp:translate" / "xformOp:rotateXYZ:pivot"
// style attribute name to its OpType and optional namespace suffix.
func parseXformOpName(attrName string) (tinyprim.OpType, string, bool) {
	rest := strings.TrimPrefix(attrName, "xformOp:")
	if rest == attrName {
		return 0, "", false
	}
	parts := strings.SplitN(rest, ":", 2)
	kind := parts[0]
	suffix := ""
	if len(parts) == 2 {
		suffix = parts[1]
	}
	switch kind {
	case "transform":
		return tinyprim.Transform, suffix, true
	case "translate":
		return tinyprim.Translate, suffix, true
	case "scale":
		return tinyprim.Scale, suffix, true
	case "rotateX":
		return tinyprim.RotateX, suffix, true
	case "rotateY":
		return tinyprim.RotateY, suffix, true
	case "rotateZ":
		return tinyprim.RotateZ, suffix, true
	case "rotateXYZ":
		return tinyprim.RotateXYZ, suffix, true
	case "rotateXZY":
		return tinyprim.RotateXZY, suffix, true
	case "rotateYXZ":
		return tinyprim.RotateYXZ, suffix, true
	case "rotateYZX":
		return tinyprim.RotateYZX, suffix, true
	case "rotateZXY":
		return tinyprim.RotateZXY, suffix, true
	case "rotateZYX":
		return tinyprim.RotateZYX, suffix, true
	case "orient":
		return tinyprim.Orient, suffix, true
	default:
		return 0, "", false
	}
}
