// Package tydra implements the render-data converter (C8): it lowers a
// resolved Stage into GPU-ready RenderMesh/RenderMaterial data,
// following g3n-engine's geometry.Geometry (per-submesh Group list) and
// material.Standard (named-channel uniform bundle) shapes, generalized
// from a fixed OpenGL vertex pipeline to USD's variable vertex
// variability and UsdPreviewSurface shader graph.
package tydra

import (
	"github.com/lighttransport/tinyusdz-go/pkg/tinyhandle"
	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
)

// Submesh mirrors geometry.Group's (Start, Count, Matindex) triple: one
// contiguous run of the mesh's index buffer bound to one material.
type Submesh struct {
	Start      int
	Count      int
	MaterialID int // index into RenderScene.Materials, -1 if unbound

	// MaterialPath is the bound Material's Prim path, used by
	// ConvertToRenderScene to resolve MaterialID once the scene's
	// global Materials list exists; it is kept after resolution.
	MaterialPath string
}

// BlendShape is one converted BlendShape target (§4.8 step 7): indices
// into the base mesh's point array plus per-index offsets.
type BlendShape struct {
	Name          string
	PointIndices  []int32
	PointOffsets  []tinymath.Vec3f
	NormalOffsets []tinymath.Vec3f
}

// RenderMesh is one GeomMesh lowered to GPU-ready form.
type RenderMesh struct {
	Name string

	Points []tinymath.Vec3f

	// Normals/Texcoords/DisplayColor/Opacity are either per-vertex
	// (indexed by FaceVertexIndices same as Points, when FaceVarying
	// is false) or per-facevertex (one entry per FaceVertexIndices
	// slot, when FaceVarying is true), per §4.8 step 5.
	FaceVarying  bool
	Normals      []tinymath.Vec3f
	Texcoords    map[string][]tinymath.Vec2f
	DisplayColor []tinymath.Vec3f
	Opacity      []float32

	FaceVertexCounts []int32
	FaceVertexIndices []int32

	// TriangulatedFaceCounts[i] is the number of triangles the i'th
	// original face split into; TriangulatedToOrigFaceVertexIndexMap
	// maps each post-triangulation face back to its original face
	// index, both per §4.8 step 4.
	Triangulated                         bool
	TriangulatedFaceCounts                []int
	TriangulatedToOrigFaceVertexIndexMap []int

	Submeshes []Submesh

	SkinJointIndices  []int32
	SkinJointWeights  []float32
	SkinElementSize   int
	GeomBindTransform *tinymath.Matrix4d

	BlendShapes []BlendShape
}

// WrapMode is a UsdUVTexture wrap mode, mapped per §4.8's table.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapMirror
	WrapClampToEdge
	WrapClampToBorder
)

// ParseWrapMode maps a UsdUVTexture wrap token to a WrapMode, defaulting
// unrecognized tokens to ClampToEdge per §4.8's "other -> CLAMP_TO_EDGE"
// rule.
func ParseWrapMode(token string) WrapMode {
	switch token {
	case "repeat":
		return WrapRepeat
	case "mirror":
		return WrapMirror
	case "clamp":
		return WrapClampToEdge
	case "black":
		return WrapClampToBorder
	default:
		return WrapClampToEdge
	}
}

// TextureImage is one decoded, converted texel buffer (§4.8 material
// conversion's texel-storage step). Exactly one of Pixels8/PixelsF32 is
// populated depending on whether the conversion widened to float32.
type TextureImage struct {
	Width, Height, Channels int
	ColorSpace              string // load-time color-space hint: "sRGB" or "raw"
	Pixels8                 []uint8
	PixelsF32               []float32
}

// UVTexture is a resolved UsdUVTexture node: which decoded image it
// reads, which primvar (or UsdTransform2d-transformed primvar) feeds
// its texture coordinates, and which output channel was connected.
type UVTexture struct {
	ImageID           int
	VarnameUV         string
	OutputChannel     string // "rgb", "r", "g", "b", or "a"
	WrapS, WrapT      WrapMode
	TexcoordTransform tinymath.Matrix3d
}

// ShaderParam is one UsdPreviewSurface input: either an authored
// constant or a connection to a UsdUVTexture, per §4.8.
type ShaderParam struct {
	IsTexture bool
	Value     tinymath.Vec4f // constant value when !IsTexture
	TextureID int            // index into RenderScene.Textures when IsTexture, else -1
}

func constParam(v tinymath.Vec4f) ShaderParam { return ShaderParam{Value: v, TextureID: -1} }

// UsdPreviewSurfaceShader carries each of the preview surface's named
// channels as a ShaderParam, matching material.Standard's udata bundle
// of named uniform channels generalized from a fixed Phong set to
// UsdPreviewSurface's set.
type UsdPreviewSurfaceShader struct {
	DiffuseColor       ShaderParam
	EmissiveColor      ShaderParam
	SpecularColor      ShaderParam
	Metallic           ShaderParam
	Roughness          ShaderParam
	Clearcoat          ShaderParam
	ClearcoatRoughness ShaderParam
	Opacity            ShaderParam
	OpacityThreshold   ShaderParam
	IOR                ShaderParam
	Displacement       ShaderParam
	Occlusion          ShaderParam
	Normal             ShaderParam
}

// RenderMaterial is one converted Material Prim, restricted to the
// UsdPreviewSurface graph per §4.8.
type RenderMaterial struct {
	Name          string
	SurfaceShader UsdPreviewSurfaceShader
}

// Node is one converted Xform-bearing Prim in the scene graph, carrying
// its resolved local/global transform and an optional mesh binding.
type Node struct {
	Name         string
	Path         string
	LocalMatrix  tinymath.Matrix4d
	GlobalMatrix tinymath.Matrix4d
	MeshID       int // -1 if this node has no bound mesh
	Children     []int

	// Handle is a stable identifier for this node, distinct from its
	// position in RenderScene.Nodes. Unlike the slice index, it never
	// gets reassigned if nodes are later removed or reordered, so a
	// renderer can hold onto it across scene edits.
	Handle tinyhandle.Handle
}

// JointAnimation is one converted SkelAnimation's per-joint rotation
// track, per §4.8 point 6 (usdSkel.hh grounding). Translation/scale
// tracks follow the same per-joint-per-time shape and are omitted here
// since no End-to-end Scenario exercises them; ConvertSkelAnimation
// only populates what it can verify against §8's testable properties.
type JointAnimation struct {
	JointName string
	Times     []float64
	Rotations []tinymath.Quatf
}

// Animation is one converted SkelAnimation Prim.
type Animation struct {
	Name   string
	Joints []JointAnimation
}

// RenderScene is the root output of ConvertToRenderScene.
type RenderScene struct {
	Meshes     []RenderMesh
	Materials  []RenderMaterial
	Textures   []UVTexture
	Images     []TextureImage
	Nodes      []Node
	Animations []Animation
}
