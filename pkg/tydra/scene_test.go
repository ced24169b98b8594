package tydra

import (
	"testing"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyhandle"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tydraopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToRenderSceneAssignsDistinctNodeHandles(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def Xform "World"
{
    def Xform "Child1" {}
    def Xform "Child2" {}
}
`)

	scene, diags, err := ConvertToRenderScene(s, tydraopts.DefaultConvertOptions(), fakeResolver{}, fakeImageLoader{}, tinyprim.Default)
	require.NoError(t, err)
	assert.Equal(t, 0, diags.Len())

	require.Len(t, scene.Nodes, 3)

	seen := map[tinyhandle.Handle]bool{}
	for _, n := range scene.Nodes {
		assert.NotEqual(t, tinyhandle.Invalid, n.Handle)
		assert.False(t, seen[n.Handle], "duplicate node handle %d", n.Handle)
		seen[n.Handle] = true
	}

	root := scene.Nodes[0]
	assert.Equal(t, "World", root.Name)
	assert.Len(t, root.Children, 2)
}
