package stage

import (
	"testing"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
	"github.com/lighttransport/tinyusdz-go/pkg/usda"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompose(t *testing.T, src string) *Stage {
	t.Helper()
	layer, err := usda.Parse("test.usda", src)
	require.NoError(t, err)
	s, err := Compose(FromUSDA(layer), nil)
	require.NoError(t, err)
	return s
}

// TestEmptyCubeScenario is spec Scenario 1: two Prims, nested, with
// the inner one's type_name() reporting "Cube".
func TestEmptyCubeScenario(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Xform "X"
{
    def Cube "C"
    {
    }
}
`)
	x, err := s.FindPrimAtPath(tinypath.MustParse("/X"))
	require.NoError(t, err)
	assert.Equal(t, "X", x.ElementName)

	c, err := s.FindPrimAtPath(tinypath.MustParse("/X/C"))
	require.NoError(t, err)
	assert.Equal(t, "Cube", c.TypeName())

	_, err = s.FindPrimAtPath(tinypath.MustParse("/Y"))
	assert.Error(t, err)
}

func TestFindPrimAtPathRejectsRelative(t *testing.T) {
	s := mustCompose(t, "#usda 1.0\ndef Xform \"X\" {}\n")
	rel, _ := tinypath.Parse("X")
	_, err := s.FindPrimAtPath(rel)
	assert.ErrorIs(t, err, tinyerr.ErrPathInvalid)
}

func TestFindPrimFromRelativePath(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Xform "World"
{
    def Cube "Box"
    {
    }
}
`)
	world, err := s.FindPrimAtPath(tinypath.MustParse("/World"))
	require.NoError(t, err)
	rel, _ := tinypath.Parse("Box")
	box, err := s.FindPrimFromRelativePath(world, rel)
	require.NoError(t, err)
	assert.Equal(t, "Box", box.ElementName)
}

// TestEvaluateAttributeTimeSamples covers §4.7 evaluating a
// time-sampled attribute with Linear interpolation.
func TestEvaluateAttributeTimeSamples(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Xform "X"
{
    double xformOp:rotateX.timeSamples = {
        0: 0,
        10: 100,
    }
}
`)
	x, err := s.FindPrimAtPath(tinypath.MustParse("/X"))
	require.NoError(t, err)

	tv, err := s.EvaluateAttribute(x, "xformOp:rotateX", tinyprim.At(5), tinyprim.Linear)
	require.NoError(t, err)
	f, ok := tinyvalue.As[float64](tv.Value)
	require.True(t, ok)
	assert.InDelta(t, 50.0, f, 1e-9)
}

func TestEvaluateAttributeBlocked(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Xform "X"
{
    double foo = None
}
`)
	x, err := s.FindPrimAtPath(tinypath.MustParse("/X"))
	require.NoError(t, err)
	_, err = s.EvaluateAttribute(x, "foo", tinyprim.Default, tinyprim.Held)
	assert.ErrorIs(t, err, tinyerr.ErrAttributeBlocked)
}

func TestEvaluateAttributeFollowsConnection(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Material "M"
{
    def Shader "src"
    {
        float outputs:r = 0.5
    }
    def Shader "dst"
    {
        float inputs:r.connect = </M/src.outputs:r>
    }
}
`)
	dst, err := s.FindPrimAtPath(tinypath.MustParse("/M/dst"))
	require.NoError(t, err)
	tv, err := s.EvaluateAttribute(dst, "inputs:r", tinyprim.Default, tinyprim.Held)
	require.NoError(t, err)
	f, ok := tinyvalue.As[float32](tv.Value)
	require.True(t, ok)
	assert.Equal(t, float32(0.5), f)
}

func TestEvaluateAttributeRejectsRelationship(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Material "M"
{
}
def Mesh "G"
{
    rel material:binding = </M>
}
`)
	g, err := s.FindPrimAtPath(tinypath.MustParse("/G"))
	require.NoError(t, err)
	_, err = s.EvaluateAttribute(g, "material:binding", tinyprim.Default, tinyprim.Held)
	assert.Error(t, err)
}

// TestOverMergesIntoDef exercises same-layer def/over composition: an
// `over` block for an already-declared prim name adds a property
// rather than creating a second sibling.
func TestOverMergesIntoDef(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Xform "X"
{
    double foo = 1
}
over "X"
{
    double bar = 2
}
`)
	require.Len(t, s.RootPrims, 1)
	x, err := s.FindPrimAtPath(tinypath.MustParse("/X"))
	require.NoError(t, err)
	_, ok := x.GetAttribute("foo")
	assert.True(t, ok)
	_, ok = x.GetAttribute("bar")
	assert.True(t, ok)
}

func TestExportToStringContainsPrimsAndTypes(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Xform "X"
{
    def Cube "C"
    {
    }
}
`)
	out := s.ExportToString()
	assert.Contains(t, out, "#usda 1.0")
	assert.Contains(t, out, `def Xform "X"`)
	assert.Contains(t, out, `def Cube "C"`)
}
