// Package tydraopts holds the configuration knobs for the Tydra
// render-data conversion pass (C8), loadable from a YAML description the
// way the teacher's gui.Builder loads panel descriptions: a plain
// exported struct, unmarshaled with yaml.v2, no generated schema.
package tydraopts

import "gopkg.in/yaml.v2"

// ConvertOptions controls pkg/tydra's ConvertToRenderScene.
type ConvertOptions struct {
	// Triangulate requests mesh triangulation (§4.8 step 4). Meshes
	// already triangle-only pass through unchanged either way.
	Triangulate bool `yaml:"triangulate"`

	// LinearizeColorSpace requests sRGB->Linear texel conversion for
	// textures tagged sRGB (§4.8 material conversion).
	LinearizeColorSpace bool `yaml:"linearizeColorSpace"`

	// PreserveTexelBitdepth keeps an 8-bit sRGB texture 8-bit after
	// linearizing, instead of widening to float32.
	PreserveTexelBitdepth bool `yaml:"preserveTexelBitdepth"`

	// AllowTextureLoadFailure additionally records a failed texture
	// load as an ErrTextureLoadFailed warning. With or without it, a
	// failed load leaves that shader input at its default value and
	// material conversion carries on; it never aborts.
	AllowTextureLoadFailure bool `yaml:"allowTextureLoadFailure"`

	// MaxSkinWeightElementSize bounds primvars:skel:jointWeights'
	// elementSize per Prim, per §4.8 step 6.
	MaxSkinWeightElementSize int `yaml:"maxSkinWeightElementSize"`

	// GenerateMipmaps requests a full mip chain per loaded RGBA texture
	// via golang.org/x/image/draw's bilinear scaler (§4.8 material
	// conversion's ImageHints.WantMips).
	GenerateMipmaps bool `yaml:"generateMipmaps"`
}

// DefaultConvertOptions mirrors the original's default behavior: do the
// useful work (triangulate, linearize) but never fail hard on a bad
// texture.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		Triangulate:              true,
		LinearizeColorSpace:      true,
		PreserveTexelBitdepth:    false,
		AllowTextureLoadFailure:  true,
		MaxSkinWeightElementSize: 8,
		GenerateMipmaps:          false,
	}
}

// ParseConvertOptions unmarshals a YAML document into a ConvertOptions,
// seeded with DefaultConvertOptions so an omitted field keeps its
// default rather than zeroing out.
func ParseConvertOptions(doc []byte) (ConvertOptions, error) {
	opts := DefaultConvertOptions()
	if err := yaml.Unmarshal(doc, &opts); err != nil {
		return ConvertOptions{}, err
	}
	return opts, nil
}
