package crate

import (
	"encoding/binary"
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
)

// ReadTokens parses the TOKENS section: a uint64 count followed by
// that many NUL-terminated UTF-8 strings packed back to back. Token
// index i in FIELDS/PATHS refers to tokens[i].
func ReadTokens(section []byte) ([]string, error) {
	if len(section) < 8 {
		return nil, fmt.Errorf("%w: tokens section too small", tinyerr.ErrCrateFormat)
	}
	count := binary.LittleEndian.Uint64(section[0:8])
	if count > 1<<24 {
		return nil, fmt.Errorf("%w: implausible token count %d", tinyerr.ErrCrateSizeExceeded, count)
	}
	tokens := make([]string, 0, count)
	pos := 8
	for i := uint64(0); i < count; i++ {
		start := pos
		for pos < len(section) && section[pos] != 0 {
			pos++
		}
		if pos >= len(section) {
			return nil, fmt.Errorf("%w: unterminated token at index %d", tinyerr.ErrCrateFormat, i)
		}
		tokens = append(tokens, string(section[start:pos]))
		pos++ // skip NUL
	}
	return tokens, nil
}

// WriteTokens serializes a token table for synthetic test buffers.
func WriteTokens(tokens []string) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(len(tokens)))
	for _, t := range tokens {
		out = append(out, []byte(t)...)
		out = append(out, 0)
	}
	return out
}
