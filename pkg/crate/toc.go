package crate

import (
	"encoding/binary"
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
)

const sectionNameSize = 16

// Section names the reader looks for in the TOC.
const (
	SectionTokens    = "TOKENS"
	SectionStrings   = "STRINGS"
	SectionFields    = "FIELDS"
	SectionFieldSets = "FIELDSETS"
	SectionPaths     = "PATHS"
	SectionSpecs     = "SPECS"
)

// SectionInfo is one TOC entry: a fixed-width name plus byte offset
// and size into the file.
type SectionInfo struct {
	Name   string
	Start  int64
	Size   int64
}

// TOC is the table of contents: a count-prefixed array of
// SectionInfo, read from the offset in the Bootstrap.
type TOC struct {
	Sections []SectionInfo
}

func (t TOC) Find(name string) (SectionInfo, bool) {
	for _, s := range t.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return SectionInfo{}, false
}

// ReadTOC parses the section table starting at off.
func ReadTOC(data []byte, off int64) (TOC, error) {
	if off < 0 || int(off)+8 > len(data) {
		return TOC{}, fmt.Errorf("%w: toc offset out of range", tinyerr.ErrCrateFormat)
	}
	count := binary.LittleEndian.Uint64(data[off : off+8])
	pos := off + 8
	entrySize := int64(sectionNameSize + 16)
	if count > 1<<20 {
		return TOC{}, fmt.Errorf("%w: implausible toc section count %d", tinyerr.ErrCrateSizeExceeded, count)
	}
	needed := pos + int64(count)*entrySize
	if needed > int64(len(data)) {
		return TOC{}, fmt.Errorf("%w: toc extends past end of file", tinyerr.ErrCrateFormat)
	}

	toc := TOC{Sections: make([]SectionInfo, 0, count)}
	for i := uint64(0); i < count; i++ {
		nameBytes := data[pos : pos+sectionNameSize]
		name := nameFromBytes(nameBytes)
		start := int64(binary.LittleEndian.Uint64(data[pos+sectionNameSize : pos+sectionNameSize+8]))
		size := int64(binary.LittleEndian.Uint64(data[pos+sectionNameSize+8 : pos+sectionNameSize+16]))
		if start < 0 || size < 0 || start+size > int64(len(data)) {
			return TOC{}, fmt.Errorf("%w: section %q out of range", tinyerr.ErrCrateFormat, name)
		}
		toc.Sections = append(toc.Sections, SectionInfo{Name: name, Start: start, Size: size})
		pos += entrySize
	}
	return toc, nil
}

func nameFromBytes(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// WriteTOC serializes a TOC for synthetic test buffers.
func WriteTOC(t TOC) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(len(t.Sections)))
	for _, s := range t.Sections {
		entry := make([]byte, sectionNameSize+16)
		copy(entry, s.Name)
		binary.LittleEndian.PutUint64(entry[sectionNameSize:sectionNameSize+8], uint64(s.Start))
		binary.LittleEndian.PutUint64(entry[sectionNameSize+8:sectionNameSize+16], uint64(s.Size))
		out = append(out, entry...)
	}
	return out
}
