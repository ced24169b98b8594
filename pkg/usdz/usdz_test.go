package usdz

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
)

// buildSyntheticUsdz assembles an in-memory uncompressed zip archive
// with a root "model.usda" layer and one packed side asset, the way a
// real usdz bundles a default layer plus its referenced textures.
func buildSyntheticUsdz(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"model.usda", "textures/albedo.png"} {
		body, ok := entries[name]
		if !ok {
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestOpenFindsRootLayerAndAssets(t *testing.T) {
	data := buildSyntheticUsdz(t, map[string]string{
		"model.usda":          "#usda 1.0\ndef Xform \"World\" {}\n",
		"textures/albedo.png": "fake-png-bytes",
	})

	pkg, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, "model.usda", pkg.RootName)
	assert.Contains(t, pkg.AssetNames(), "textures/albedo.png")

	resolved, err := pkg.Resolve("./textures/albedo.png")
	require.NoError(t, err)
	data2, err := pkg.Read(resolved)
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(data2))
}

func TestOpenRejectsCompressedEntries(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "model.usda", Method: zip.Deflate})
	require.NoError(t, err)
	_, err = w.Write([]byte("#usda 1.0\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Open(buf.Bytes())
	assert.Error(t, err)
}

func TestLoadStageComposesRootUsdaLayer(t *testing.T) {
	data := buildSyntheticUsdz(t, map[string]string{
		"model.usda": "#usda 1.0\ndef Xform \"World\" {}\n",
	})

	s, err := LoadStage(data)
	require.NoError(t, err)

	prim, err := s.FindPrimAtPath(tinypath.MustParse("/World"))
	require.NoError(t, err)
	assert.Equal(t, "World", prim.ElementName)
}
