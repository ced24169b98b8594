// Package tinypath implements Path parsing and manipulation (C2),
// grounded on spec §4.2's grammar and validity invariants.
package tinypath

import "strings"

// ElementKind classifies one component of a parsed Path, mirrored from
// the original implementation's Path introspection so the CLI dumper
// can describe a path shape without re-deriving it from the string.
type ElementKind int

const (
	ElementRoot ElementKind = iota
	ElementPrim
	ElementProperty
	ElementRelational
)

// Path is a scene-graph address: an absolute-or-relative, slash
// separated prim part, optionally followed by a single '.'-prefixed
// property part.
type Path struct {
	primPart string // e.g. "/a/b" or "a/b" or ""
	propPart string // e.g. "points" or "" (no leading dot stored)
	valid    bool
}

// InvalidPath is the canonical invalid Path value, returned by Parse
// on malformed input instead of panicking.
var InvalidPath = Path{valid: false}

// Parse validates and constructs a Path from its string form.
// It never panics; on malformed input it returns (InvalidPath, false).
func Parse(s string) (Path, bool) {
	if s == "" {
		return InvalidPath, false
	}

	// A relative property-only path starts with '.', e.g. ".points",
	// and must contain no '/'.
	if strings.HasPrefix(s, ".") {
		prop := s[1:]
		if prop == "" || strings.Contains(prop, "/") || !isLegalPropertyElement(prop) {
			return InvalidPath, false
		}
		return Path{primPart: "", propPart: prop, valid: true}, true
	}

	// At most one '.' separating prim part from property part.
	dotCount := strings.Count(s, ".")
	if dotCount > 1 {
		return InvalidPath, false
	}

	primPart := s
	propPart := ""
	if dotCount == 1 {
		idx := strings.IndexByte(s, '.')
		primPart = s[:idx]
		propPart = s[idx+1:]
		if propPart == "" || strings.Contains(propPart, "/") {
			return InvalidPath, false
		}
		if !isLegalPropertyElement(propPart) {
			return InvalidPath, false
		}
	}

	if primPart == "" {
		return InvalidPath, false
	}

	if primPart != "/" {
		segs := strings.Split(strings.TrimPrefix(primPart, "/"), "/")
		for _, seg := range segs {
			if seg == "" {
				return InvalidPath, false
			}
			if strings.ContainsAny(seg, "{}") {
				// Variant-selector element syntax is recognized but
				// rejected in this position, per spec §4.2.
				return InvalidPath, false
			}
			if !isLegalElement(seg) {
				return InvalidPath, false
			}
		}
	}

	return Path{primPart: primPart, propPart: propPart, valid: true}, true
}

// MustParse is a test/CLI convenience that panics on malformed input.
func MustParse(s string) Path {
	p, ok := Parse(s)
	if !ok {
		panic("tinypath: invalid path " + s)
	}
	return p
}

// isLegalElement validates a prim element name: ASCII alphanumeric
// plus '_', first character non-digit, per §4.2.
func isLegalElement(name string) bool {
	return isLegalIdent(name, false)
}

// isLegalPropertyElement additionally allows ':' to separate
// namespaces in property names (e.g. "primvars:st"), which USD uses
// pervasively but which spec's prim-element grammar does not.
func isLegalPropertyElement(name string) bool {
	return isLegalIdent(name, true)
}

func isLegalIdent(name string, allowColon bool) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		isUnderscore := r == '_'
		isColon := allowColon && r == ':'
		if i == 0 && r >= '0' && r <= '9' {
			return false
		}
		if !isAlnum && !isUnderscore && !isColon {
			return false
		}
	}
	return true
}

func (p Path) IsValid() bool { return p.valid }

func (p Path) IsAbsolute() bool { return p.valid && strings.HasPrefix(p.primPart, "/") }

func (p Path) IsEmpty() bool { return p.primPart == "" && p.propPart == "" }

func (p Path) PrimPart() string { return p.primPart }

func (p Path) PropPart() string { return p.propPart }

func (p Path) HasProperty() bool { return p.propPart != "" }

// String reconstructs the canonical textual form of p.
func (p Path) String() string {
	if !p.valid {
		return "<invalid-path>"
	}
	if p.primPart == "" {
		return "." + p.propPart
	}
	if p.propPart == "" {
		return p.primPart
	}
	return p.primPart + "." + p.propPart
}

// AppendPrim returns a new Path with elem appended as a new prim
// component. p must be a prim-only path (no property part).
func (p Path) AppendPrim(elem string) (Path, bool) {
	if !p.valid || p.propPart != "" || !isLegalElement(elem) {
		return InvalidPath, false
	}
	if p.primPart == "/" {
		return Path{primPart: "/" + elem, valid: true}, true
	}
	return Path{primPart: p.primPart + "/" + elem, valid: true}, true
}

// AppendProperty returns a new Path with elem set as the property
// part. p must not already carry a property part.
func (p Path) AppendProperty(elem string) (Path, bool) {
	if !p.valid || p.propPart != "" || !isLegalPropertyElement(elem) {
		return InvalidPath, false
	}
	return Path{primPart: p.primPart, propPart: elem, valid: true}, true
}

// SplitAtRoot returns (/firstComponent, rest) for an absolute path,
// e.g. "/a/b/c" -> ("/a", "b/c"). Only valid for absolute paths.
func (p Path) SplitAtRoot() (Path, string, bool) {
	if !p.IsAbsolute() {
		return InvalidPath, "", false
	}
	trimmed := strings.TrimPrefix(p.primPart, "/")
	idx := strings.IndexByte(trimmed, '/')
	if idx < 0 {
		return Path{primPart: "/" + trimmed, valid: true}, "", true
	}
	return Path{primPart: "/" + trimmed[:idx], valid: true}, trimmed[idx+1:], true
}

// ParentPrimPath trims the last '/' segment, e.g. "/a/b/c" -> "/a/b".
// Returns (InvalidPath, false) for the root path "/" or non-absolute
// paths.
func (p Path) ParentPrimPath() (Path, bool) {
	if !p.IsAbsolute() || p.primPart == "/" {
		return InvalidPath, false
	}
	idx := strings.LastIndexByte(p.primPart, '/')
	if idx <= 0 {
		return Path{primPart: "/", valid: true}, true
	}
	return Path{primPart: p.primPart[:idx], valid: true}, true
}

// PrimElements splits the prim part into its slash-separated element
// names, e.g. "/a/b/c" -> ["a","b","c"].
func (p Path) PrimElements() []string {
	trimmed := strings.TrimPrefix(p.primPart, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// LessThan implements the element-wise lexicographic ordering of
// §4.2. Both paths must be valid and absolute; returns false for any
// other (incomparable) shape, rather than erroring.
func LessThan(a, b Path) bool {
	if !a.valid || !b.valid || !a.IsAbsolute() || !b.IsAbsolute() {
		return false
	}
	ae, be := a.PrimElements(), b.PrimElements()
	n := len(ae)
	if len(be) < n {
		n = len(be)
	}
	for i := 0; i < n; i++ {
		if ae[i] != be[i] {
			return ae[i] < be[i]
		}
	}
	if len(ae) != len(be) {
		return len(ae) < len(be)
	}
	return a.propPart < b.propPart
}

// Join concatenates a root path with a relative path, used by
// find_prim_from_relative_path (§4.6).
func Join(root Path, rel Path) (Path, bool) {
	if !root.valid || !rel.valid || rel.IsAbsolute() {
		return InvalidPath, false
	}
	cur := root
	for _, elem := range rel.PrimElements() {
		var ok bool
		cur, ok = cur.AppendPrim(elem)
		if !ok {
			return InvalidPath, false
		}
	}
	if rel.propPart != "" {
		return cur.AppendProperty(rel.propPart)
	}
	return cur, true
}
