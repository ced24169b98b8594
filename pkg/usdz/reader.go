// Package usdz reads the USDZ archive format: an uncompressed ZIP
// whose entries are a root Crate or USDA layer plus whatever assets
// (textures, additional layers) that layer references, per spec §6's
// "zero-copy archive USDZ". Grounded on the teacher's GLB loader
// treating a container format as a named-chunk lookup rather than a
// filesystem, but built on stdlib archive/zip since no zip library
// appears anywhere in the retrieval pack.
package usdz

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lighttransport/tinyusdz-go/pkg/crate"
	"github.com/lighttransport/tinyusdz-go/pkg/stage"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/usda"
)

var crateMagic = [8]byte{'P', 'X', 'R', '-', 'U', 'S', 'D', 'C'}

// Package is an opened .usdz archive: every entry's raw bytes, indexed
// by its in-archive name, plus the identifier of the default root
// layer (the first usda/usdc/usd entry in archive order, per the usdz
// convention that the root layer comes first).
type Package struct {
	RootName string
	entries  map[string][]byte
	// order preserves the archive's entry order for diagnostics and
	// for picking the root layer deterministically.
	order []string
}

// Open parses a .usdz archive's bytes into a Package. Every entry must
// be stored uncompressed (zip.Store); a deflated entry is rejected
// since usdz's whole point is letting a consumer mmap an asset in
// place rather than inflate it.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tinyerr.ErrUsdzFormat, err)
	}

	pkg := &Package{entries: map[string][]byte{}}
	for _, f := range zr.File {
		if f.Method != zip.Store {
			return nil, fmt.Errorf("%w: entry %q is compressed, usdz requires uncompressed (Store) entries", tinyerr.ErrUsdzFormat, f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", tinyerr.ErrUsdzFormat, f.Name, err)
		}
		buf := make([]byte, f.UncompressedSize64)
		_, err = io.ReadFull(rc, buf)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", tinyerr.ErrUsdzFormat, f.Name, err)
		}
		name := strings.TrimPrefix(f.Name, "./")
		pkg.entries[name] = buf
		pkg.order = append(pkg.order, name)
	}

	if len(pkg.order) == 0 {
		return nil, fmt.Errorf("%w: empty archive", tinyerr.ErrUsdzFormat)
	}

	root, ok := findRootLayer(pkg.order)
	if !ok {
		return nil, fmt.Errorf("%w: no .usd/.usda/.usdc entry found", tinyerr.ErrUsdzFormat)
	}
	pkg.RootName = root
	return pkg, nil
}

// findRootLayer picks the first entry (in archive order) with a
// recognized USD extension, matching the usdz convention that the
// default layer is packed first.
func findRootLayer(order []string) (string, bool) {
	for _, name := range order {
		switch ext(name) {
		case ".usd", ".usda", ".usdc":
			return name, true
		}
	}
	return "", false
}

func ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i:])
}

// AssetNames lists every entry this package carries, sorted by name.
func (p *Package) AssetNames() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	sort.Strings(out)
	return out
}

// Resolve implements stage.AssetResolver: a .usdz's assets are
// referenced by their in-archive name, optionally "./"-prefixed, so
// resolution is just existence-checking the identifier as-is.
func (p *Package) Resolve(identifier string) (string, error) {
	name := strings.TrimPrefix(identifier, "./")
	if _, ok := p.entries[name]; !ok {
		return "", fmt.Errorf("%w: asset %q not found in package", tinyerr.ErrUsdzFormat, identifier)
	}
	return name, nil
}

// Read implements stage.AssetResolver, returning the raw bytes Resolve
// already confirmed exist.
func (p *Package) Read(path string) ([]byte, error) {
	data, ok := p.entries[path]
	if !ok {
		return nil, fmt.Errorf("%w: asset %q not found in package", tinyerr.ErrUsdzFormat, path)
	}
	return data, nil
}

// isCrate reports whether data opens with Crate's "PXR-USDC" magic,
// distinguishing a packed .usdc root layer from a packed .usda one.
func isCrate(data []byte) bool {
	return len(data) >= 8 && [8]byte(data[0:8]) == crateMagic
}

// LoadStage opens a .usdz archive and composes its root layer into a
// Stage, resolving any further sublayer/reference/payload arcs against
// the package itself so a single self-contained .usdz never needs an
// external filesystem resolver.
func LoadStage(data []byte) (*stage.Stage, error) {
	pkg, err := Open(data)
	if err != nil {
		return nil, err
	}

	root := pkg.entries[pkg.RootName]

	var src *stage.SourceLayer
	if isCrate(root) {
		r, err := crate.NewReader(root)
		if err != nil {
			return nil, fmt.Errorf("usdz root layer %q: %w", pkg.RootName, err)
		}
		src, err = stage.FromCrate(r)
		if err != nil {
			return nil, fmt.Errorf("usdz root layer %q: %w", pkg.RootName, err)
		}
	} else {
		layer, err := usda.Parse(pkg.RootName, string(root))
		if err != nil {
			return nil, fmt.Errorf("usdz root layer %q: %w", pkg.RootName, err)
		}
		src = stage.FromUSDA(layer)
	}

	return stage.Compose(src, pkg)
}
