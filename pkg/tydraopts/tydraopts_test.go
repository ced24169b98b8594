package tydraopts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConvertOptionsOverridesDefaults(t *testing.T) {
	opts, err := ParseConvertOptions([]byte("triangulate: false\nmaxSkinWeightElementSize: 4\n"))
	require.NoError(t, err)
	assert.False(t, opts.Triangulate)
	assert.Equal(t, 4, opts.MaxSkinWeightElementSize)
	// Untouched fields keep their default.
	assert.True(t, opts.LinearizeColorSpace)
	assert.True(t, opts.AllowTextureLoadFailure)
}

func TestParseConvertOptionsEmptyDocKeepsDefaults(t *testing.T) {
	opts, err := ParseConvertOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConvertOptions(), opts)
}
