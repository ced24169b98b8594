package crate

import (
	"encoding/binary"
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
)

// isPropertyElementFlag is set in an element-token index to mark that
// element as a property component (joined with '.') rather than a
// prim component (joined with '/').
const isPropertyElementFlag = int32(1) << 30

// ReadPaths decodes the PATHS section into one tinypath.Path per
// entry, indexed the same way SPECS.pathIndex refers to them.
//
// Layout: uint64 count n, then two DecodeInts-coded int32 arrays of
// length n: parentIndexes (index of the parent entry, -1 for the
// root, always < the child's own index since entries are stored in
// preorder) and elementTokenIndexes (index into the token table,
// with isPropertyElementFlag marking property vs. prim components).
// This flattened preorder-plus-parent-index scheme reuses the same
// DecodeInts coder as compressed int arrays (§9's "implemented once,
// shared" note) without assuming byte-for-byte compatibility with
// upstream internals not present in the retrieved source.
func ReadPaths(section []byte, tokens []string) ([]tinypath.Path, error) {
	if len(section) < 8 {
		return nil, fmt.Errorf("%w: paths section too small", tinyerr.ErrCrateFormat)
	}
	n := int(binary.LittleEndian.Uint64(section[0:8]))
	rest := section[8:]

	parentVals, rest, err := decodeIntsPrefixed(rest, n)
	if err != nil {
		return nil, fmt.Errorf("%w: paths parentIndexes: %v", tinyerr.ErrCrateFormat, err)
	}
	elemVals, _, err := decodeIntsPrefixed(rest, n)
	if err != nil {
		return nil, fmt.Errorf("%w: paths elementTokenIndexes: %v", tinyerr.ErrCrateFormat, err)
	}

	paths := make([]tinypath.Path, n)
	root, _ := tinypath.Parse("/")
	for i := 0; i < n; i++ {
		parentIdx := int32(parentVals[i])
		elemRaw := int32(elemVals[i])
		isProp := elemRaw&isPropertyElementFlag != 0
		tokIdx := int(elemRaw &^ isPropertyElementFlag)
		if tokIdx < 0 || tokIdx >= len(tokens) {
			return nil, fmt.Errorf("%w: path element token index %d out of range", tinyerr.ErrCrateFormat, tokIdx)
		}
		elemName := tokens[tokIdx]

		if parentIdx < 0 {
			paths[i] = root
			continue
		}
		if int(parentIdx) >= i {
			return nil, fmt.Errorf("%w: path entry %d has non-preorder parent %d", tinyerr.ErrCrateFormat, i, parentIdx)
		}
		parent := paths[parentIdx]
		var p tinypath.Path
		var ok bool
		if isProp {
			p, ok = parent.AppendProperty(elemName)
		} else {
			p, ok = parent.AppendPrim(elemName)
		}
		if !ok {
			return nil, fmt.Errorf("%w: cannot append element %q to path %q", tinyerr.ErrCrateFormat, elemName, parent.String())
		}
		paths[i] = p
	}
	return paths, nil
}

// decodeIntsPrefixed reads one DecodeInts-coded array of n values
// from the front of data and returns the remaining bytes, by probing
// group boundaries the same way DecodeInts itself walks them.
func decodeIntsPrefixed(data []byte, n int) ([]int64, []byte, error) {
	consumed, err := intCodingSize(data, n)
	if err != nil {
		return nil, nil, err
	}
	vals, err := DecodeInts(data[:consumed], n)
	if err != nil {
		return nil, nil, err
	}
	return vals, data[consumed:], nil
}

// intCodingSize walks the group descriptors of a DecodeInts buffer to
// determine how many bytes the encoding of n values actually occupies,
// without materializing the decoded values twice.
func intCodingSize(data []byte, n int) (int, error) {
	pos := 0
	numGroups := (n + groupSize - 1) / groupSize
	for g := 0; g < numGroups; g++ {
		if pos+4 > len(data) {
			return 0, fmt.Errorf("%w: truncated width descriptor", tinyerr.ErrCrateFormat)
		}
		descriptor := binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4
		remaining := n - g*groupSize
		count := groupSize
		if remaining < groupSize {
			count = remaining
		}
		for i := 0; i < count; i++ {
			code := (descriptor >> uint(2*i)) & 0x3
			switch code {
			case 0:
			case 1:
				pos++
			case 2:
				pos += 2
			case 3:
				pos += 4
			}
		}
		if pos > len(data) {
			return 0, fmt.Errorf("%w: truncated int coding payload", tinyerr.ErrCrateFormat)
		}
	}
	return pos, nil
}

// WritePaths serializes a parent-index/element-token encoding for
// synthetic test buffers; paired 1:1 with ReadPaths's layout.
func WritePaths(parentIdx []int32, elemTok []int32) []byte {
	n := len(parentIdx)
	head := make([]byte, 8)
	binary.LittleEndian.PutUint64(head, uint64(n))

	pvals := make([]int64, n)
	evals := make([]int64, n)
	for i := range parentIdx {
		pvals[i] = int64(parentIdx[i])
		evals[i] = int64(elemTok[i])
	}
	out := append(head, EncodeInts(pvals)...)
	out = append(out, EncodeInts(evals)...)
	return out
}
