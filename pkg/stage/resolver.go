package stage

import "io"

// AssetResolver locates and reads referenced assets (sublayers,
// references, payloads, textures) by the identifier authored in a
// USD file, per spec §6. Grounded on the teacher's GLB loader reading
// from a caller-supplied io.Reader rather than hardcoding a
// filesystem path, widened here to a two-step resolve/read so a
// caller can cache or rewrite identifiers (e.g. a package-relative
// asset inside a .usdz) before the bytes are actually read.
type AssetResolver interface {
	Resolve(identifier string) (string, error)
	Read(path string) ([]byte, error)
}

// ImageLoader decodes a texture asset's bytes into an Image, used by
// pkg/tydra's material conversion (§6). Kept in pkg/stage alongside
// AssetResolver since both are the narrow collaborator seams named by
// spec §6 EXTERNAL INTERFACES, independent of which package ends up
// driving them.
type ImageLoader interface {
	Load(data []byte, hints ImageHints) (Image, error)
}

// ImageHints carries the caller's expectations about how a texture
// will be sampled, letting a loader pick an appropriate decode path
// (e.g. sRGB vs. linear) without inspecting file contents.
type ImageHints struct {
	ColorSpace string // "sRGB" | "raw"
	WantMips   bool
}

// Image is a decoded texture: width/height/channel count plus
// tightly-packed row-major pixel data, enough for pkg/tydra's
// RenderMaterial texture slots without pulling image.Image's
// interface (and its per-pixel method-call overhead) into the
// renderer-data path.
type Image struct {
	Width, Height, Channels int
	Pixels                  []byte
}

// StreamReader is a seekable byte source for Crate files, widened
// from the teacher's forward-only GLB io.Reader chunk stream because
// Crate's table-of-contents requires random access to named sections
// rather than a single linear chunk walk.
type StreamReader interface {
	io.ReadSeeker
	Tell() (int64, error)
	EOF() bool
}
