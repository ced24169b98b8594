package crate

import (
	"encoding/binary"
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
)

// magic is the 8-byte Crate file signature, "PXR-USDC".
var magic = [8]byte{'P', 'X', 'R', '-', 'U', 'S', 'D', 'C'}

// MaxSupportedVersion bounds the (major, minor) version this reader
// understands; anything newer is rejected rather than misparsed, per
// §7's CrateVersionUnsupported.
var MaxSupportedVersion = [2]uint8{0, 10}

const bootstrapSize = 88

// Bootstrap is Crate's fixed-size 88-byte file header: magic, version
// triple, and the byte offset of the table of contents.
type Bootstrap struct {
	VersionMajor uint8
	VersionMinor uint8
	VersionPatch uint8
	TOCOffset    int64
}

// ReadBootstrap parses the leading bootstrapSize bytes of a Crate file.
func ReadBootstrap(data []byte) (Bootstrap, error) {
	if len(data) < bootstrapSize {
		return Bootstrap{}, fmt.Errorf("%w: file shorter than bootstrap header (%d bytes)", tinyerr.ErrCrateFormat, len(data))
	}
	var b Bootstrap
	if [8]byte(data[0:8]) != magic {
		return Bootstrap{}, fmt.Errorf("%w: bad magic", tinyerr.ErrCrateFormat)
	}
	b.VersionMajor = data[8]
	b.VersionMinor = data[9]
	b.VersionPatch = data[10]
	if b.VersionMajor > MaxSupportedVersion[0] ||
		(b.VersionMajor == MaxSupportedVersion[0] && b.VersionMinor > MaxSupportedVersion[1]) {
		return Bootstrap{}, fmt.Errorf("%w: version %d.%d.%d", tinyerr.ErrCrateVersionUnsupported, b.VersionMajor, b.VersionMinor, b.VersionPatch)
	}
	b.TOCOffset = int64(binary.LittleEndian.Uint64(data[16:24]))
	if b.TOCOffset <= 0 || int(b.TOCOffset) >= len(data) {
		return Bootstrap{}, fmt.Errorf("%w: toc offset %d out of range", tinyerr.ErrCrateFormat, b.TOCOffset)
	}
	return b, nil
}

// WriteBootstrap serializes a Bootstrap into an 88-byte header, used
// by tests that build synthetic Crate buffers.
func WriteBootstrap(b Bootstrap) []byte {
	out := make([]byte, bootstrapSize)
	copy(out[0:8], magic[:])
	out[8] = b.VersionMajor
	out[9] = b.VersionMinor
	out[10] = b.VersionPatch
	binary.LittleEndian.PutUint64(out[16:24], uint64(b.TOCOffset))
	return out
}
