package usda

import (
	"testing"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseEmptyCube covers spec Scenario 1: a bare Xform containing a
// single childless Cube yields exactly two Prims, nested one level.
func TestParseEmptyCube(t *testing.T) {
	src := `#usda 1.0
def Xform "X"
{
    def Cube "C"
    {
    }
}
`
	layer, err := Parse("empty_cube.usda", src)
	require.NoError(t, err)
	require.Len(t, layer.RootPrims, 1)

	x := layer.RootPrims[0]
	assert.Equal(t, "X", x.ElementName)
	assert.Equal(t, "Xform", x.TypeName())
	require.Len(t, x.Children, 1)

	c := x.Children[0]
	assert.Equal(t, "C", c.ElementName)
	assert.Equal(t, "Cube", c.TypeName())
	assert.Empty(t, c.Children)
}

func TestParseLayerMetadata(t *testing.T) {
	src := `#usda 1.0
(
    upAxis = "Y"
    metersPerUnit = 0.01
    defaultPrim = "World"
)
def Xform "World"
{
}
`
	layer, err := Parse("meta.usda", src)
	require.NoError(t, err)
	assert.Equal(t, "Y", layer.UpAxis)
	assert.Equal(t, "World", layer.DefaultPrim)
	assert.InDelta(t, 0.01, layer.MetersPerUnit, 1e-9)
}

// TestParseTimeSamples covers Scenario 2/3's animated-attribute
// authoring syntax.
func TestParseTimeSamples(t *testing.T) {
	src := `#usda 1.0
def Xform "X"
{
    double xformOp:rotateX.timeSamples = {
        0: 0,
        10: 90,
    }
}
`
	layer, err := Parse("timesamples.usda", src)
	require.NoError(t, err)
	require.Len(t, layer.RootPrims, 1)

	attr, ok := layer.RootPrims[0].GetAttribute("xformOp:rotateX")
	require.True(t, ok)
	require.True(t, attr.Var.HasTimeSamples())

	ts := attr.Var.TimeSamples()
	require.Equal(t, 2, ts.Len())
	assert.Equal(t, []float64{0, 10}, ts.Times)

	f0, ok := tinyvalue.As[float64](ts.Values[0])
	require.True(t, ok)
	assert.Equal(t, 0.0, f0)

	f10, ok := tinyvalue.As[float64](ts.Values[1])
	require.True(t, ok)
	assert.Equal(t, 90.0, f10)
}

// TestParseConnectAndAssetPath covers Scenario 5's shading-graph wiring
// syntax: an attribute connected to another attribute's path, plus an
// asset-path-valued attribute on a texture-reading shader.
func TestParseConnectAndAssetPath(t *testing.T) {
	src := `#usda 1.0
def Material "M"
{
    def Shader "surface"
    {
        color3f inputs:diffuseColor.connect = </M/texture.outputs:rgb>
    }
    def Shader "texture"
    {
        asset inputs:file = @textures/albedo.png@
    }
}
`
	layer, err := Parse("shading.usda", src)
	require.NoError(t, err)
	require.Len(t, layer.RootPrims, 1)
	mat := layer.RootPrims[0]
	require.Len(t, mat.Children, 2)

	surface := mat.Children[0]
	assert.Equal(t, "Shader", surface.TypeName())
	diffuse, ok := surface.GetAttribute("inputs:diffuseColor")
	require.True(t, ok)
	assert.True(t, diffuse.IsConnection())
	require.Len(t, diffuse.Connections, 1)
	assert.Equal(t, "/M/texture.outputs:rgb", diffuse.Connections[0].String())

	texture := mat.Children[1]
	fileAttr, ok := texture.GetAttribute("inputs:file")
	require.True(t, ok)
	require.True(t, fileAttr.Var.HasScalar())
	path, ok := tinyvalue.As[string](fileAttr.Var.Scalar())
	require.True(t, ok)
	assert.Equal(t, "textures/albedo.png", path)
}

func TestParseArrayAndTupleValues(t *testing.T) {
	src := `#usda 1.0
def Mesh "M"
{
    point3f[] points = [(0, 0, 0), (1, 0, 0), (1, 1, 0)]
    int[] faceVertexCounts = [3]
    int[] faceVertexIndices = [0, 1, 2]
}
`
	layer, err := Parse("mesh.usda", src)
	require.NoError(t, err)
	mesh := layer.RootPrims[0]

	points, ok := mesh.GetAttribute("points")
	require.True(t, ok)
	require.True(t, points.Var.HasScalar())

	counts, ok := mesh.GetAttribute("faceVertexCounts")
	require.True(t, ok)
	countsVal, ok := tinyvalue.As[[]int32](counts.Var.Scalar())
	require.True(t, ok)
	assert.Equal(t, []int32{3}, countsVal)

	indices, ok := mesh.GetAttribute("faceVertexIndices")
	require.True(t, ok)
	idxVal, ok := tinyvalue.As[[]int32](indices.Var.Scalar())
	require.True(t, ok)
	assert.Equal(t, []int32{0, 1, 2}, idxVal)
}

func TestParseRelationship(t *testing.T) {
	src := `#usda 1.0
def Material "M"
{
}
def Mesh "Geo"
{
    rel material:binding = </M>
}
`
	layer, err := Parse("binding.usda", src)
	require.NoError(t, err)
	require.Len(t, layer.RootPrims, 2)
	geo := layer.RootPrims[1]
	rel, ok := geo.GetRelationship("material:binding")
	require.True(t, ok)
	require.Len(t, rel.Targets, 1)
	assert.Equal(t, "/M", rel.Targets[0].String())
}

func TestParseMissingHeaderIsError(t *testing.T) {
	_, err := Parse("bad.usda", "def Xform \"X\" {}\n")
	assert.Error(t, err)
}

func TestParseCommentsDoNotConfuseHeader(t *testing.T) {
	src := `#usda 1.0
# a plain comment line, not a second header
def Xform "X"
{
    # another comment, inside the prim body
}
`
	layer, err := Parse("comments.usda", src)
	require.NoError(t, err)
	require.Len(t, layer.RootPrims, 1)
	assert.Equal(t, "X", layer.RootPrims[0].ElementName)
}
