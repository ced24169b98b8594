package tydra

import (
	"testing"

	"github.com/lighttransport/tinyusdz-go/pkg/stage"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
	"github.com/lighttransport/tinyusdz-go/pkg/tydraopts"
	"github.com/lighttransport/tinyusdz-go/pkg/usda"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompose(t *testing.T, src string) *stage.Stage {
	t.Helper()
	layer, err := usda.Parse("test.usda", src)
	require.NoError(t, err)
	s, err := stage.Compose(stage.FromUSDA(layer), nil)
	require.NoError(t, err)
	return s
}

// TestConvertMeshTriangulatesQuad is spec Scenario 4: a single quad
// face splits along its 0-2 diagonal into two triangles, with
// faceVertexIndices remapped accordingly.
func TestConvertMeshTriangulatesQuad(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Mesh "Quad"
{
    point3f[] points = [(0,0,0), (1,0,0), (1,1,0), (0,1,0)]
    int[] faceVertexCounts = [4]
    int[] faceVertexIndices = [0, 1, 2, 3]
}
`)
	prim, err := s.FindPrimAtPath(tinypath.MustParse("/Quad"))
	require.NoError(t, err)

	opts := tydraopts.DefaultConvertOptions()
	opts.Triangulate = true

	mesh, err := ConvertMesh(s, prim, tinyprim.Default, opts)
	require.NoError(t, err)

	assert.True(t, mesh.Triangulated)
	assert.Equal(t, []int32{3, 3}, mesh.FaceVertexCounts)
	assert.Equal(t, []int32{0, 1, 2, 0, 2, 3}, mesh.FaceVertexIndices)
	assert.Equal(t, []int{2}, mesh.TriangulatedFaceCounts)
}

// TestConvertMeshRejectsBadFaceSize covers §4.8's topology validation:
// a face with fewer than 3 vertices is a hard error, not silently
// dropped.
func TestConvertMeshRejectsBadFaceSize(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Mesh "Bad"
{
    point3f[] points = [(0,0,0), (1,0,0)]
    int[] faceVertexCounts = [2]
    int[] faceVertexIndices = [0, 1]
}
`)
	prim, err := s.FindPrimAtPath(tinypath.MustParse("/Bad"))
	require.NoError(t, err)

	_, err = ConvertMesh(s, prim, tinyprim.Default, tydraopts.DefaultConvertOptions())
	assert.Error(t, err)
	assert.ErrorIs(t, err, tinyerr.ErrSubsetValidationFailed)
}

// TestConvertMaterialUsdPreviewSurfaceTexture is spec Scenario 5: a
// UsdPreviewSurface's diffuseColor is connected to a UsdUVTexture whose
// texture coordinates come from a UsdPrimvarReader_float2 naming the
// "st" primvar.
func TestConvertMaterialUsdPreviewSurfaceTexture(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Material "M"
{
    token outputs:surface.connect = </M/PreviewSurface.outputs:surface>

    def Shader "PreviewSurface"
    {
        uniform token info:id = "UsdPreviewSurface"
        color3f inputs:diffuseColor.connect = </M/DiffuseTexture.outputs:rgb>
        token outputs:surface
    }

    def Shader "DiffuseTexture"
    {
        uniform token info:id = "UsdUVTexture"
        asset inputs:file = @textures/albedo.png@
        float2 inputs:st.connect = </M/TexCoordReader.outputs:result>
        token inputs:wrapS = "repeat"
        token inputs:wrapT = "repeat"
        float3 outputs:rgb
    }

    def Shader "TexCoordReader"
    {
        uniform token info:id = "UsdPrimvarReader_float2"
        token inputs:varname = "st"
        float2 outputs:result
    }
}
`)
	matPrim, err := s.FindPrimAtPath(tinypath.MustParse("/M"))
	require.NoError(t, err)

	resolver := fakeResolver{}
	loader := fakeImageLoader{}
	diags := &tinyerr.Diagnostics{}

	mat := ConvertMaterial(s, matPrim, resolver, loader, tydraopts.DefaultConvertOptions(), &RenderScene{}, diags)

	require.True(t, mat.SurfaceShader.DiffuseColor.IsTexture)
	assert.GreaterOrEqual(t, mat.SurfaceShader.DiffuseColor.TextureID, 0)
}

type fakeResolver struct{}

func (fakeResolver) Resolve(identifier string) (string, error) { return identifier, nil }
func (fakeResolver) Read(path string) ([]byte, error)          { return []byte("fake-png-bytes"), nil }

type fakeImageLoader struct{}

func (fakeImageLoader) Load(data []byte, hints stage.ImageHints) (stage.Image, error) {
	return stage.Image{Width: 2, Height: 2, Channels: 4, Pixels: make([]byte, 2*2*4)}, nil
}
