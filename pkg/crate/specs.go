package crate

import (
	"encoding/binary"
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
)

// SpecType tags what one SPECS entry describes: a prim, a property, or
// the pseudo-root.
type SpecType int32

const (
	SpecTypePrim SpecType = iota
	SpecTypeProperty
	SpecTypePseudoRoot
)

// Spec is one SPECS entry: a path, the field-set holding its
// metadata/value fields, and its kind.
type Spec struct {
	PathIndex    int32
	FieldSetIndex int32
	Type         SpecType
}

// ReadSpecs parses SPECS: a uint64 count followed by that many
// (pathIndex int32, fieldSetIndex int32, specType int32) triples.
func ReadSpecs(section []byte) ([]Spec, error) {
	if len(section) < 8 {
		return nil, fmt.Errorf("%w: specs section too small", tinyerr.ErrCrateFormat)
	}
	count := binary.LittleEndian.Uint64(section[0:8])
	pos := 8
	need := pos + int(count)*12
	if count > 1<<24 || need > len(section) {
		return nil, fmt.Errorf("%w: specs section truncated (n=%d)", tinyerr.ErrCrateFormat, count)
	}
	out := make([]Spec, 0, count)
	for i := uint64(0); i < count; i++ {
		path := int32(binary.LittleEndian.Uint32(section[pos : pos+4]))
		fset := int32(binary.LittleEndian.Uint32(section[pos+4 : pos+8]))
		typ := int32(binary.LittleEndian.Uint32(section[pos+8 : pos+12]))
		out = append(out, Spec{PathIndex: path, FieldSetIndex: fset, Type: SpecType(typ)})
		pos += 12
	}
	return out, nil
}

func WriteSpecs(specs []Spec) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(len(specs)))
	for _, s := range specs {
		buf := make([]byte, 12)
		binary.LittleEndian.PutUint32(buf[0:4], uint32(s.PathIndex))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(s.FieldSetIndex))
		binary.LittleEndian.PutUint32(buf[8:12], uint32(s.Type))
		out = append(out, buf...)
	}
	return out
}
