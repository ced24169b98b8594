// Package crate decodes the binary Crate (.usdc) file format: a
// table-of-contents-driven container of tokens, fields, fieldsets,
// paths and specs that together describe an unresolved USD Layer,
// mirroring the role pkg/usda plays for the text format. Grounded on
// the shared integer-coding scheme referenced by
// original_source/tests/fuzzer/intCoding_fuzzmain.cc and on
// g3n-engine/loader/gltf's chunked-binary-container reading style
// (magic + TOC + named sections), generalized from GLB's two fixed
// chunks to Crate's named, arbitrary-count section table.
package crate

import (
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

// Reader holds one fully-parsed Crate file's sections, ready for
// Prim-tree reconstruction.
type Reader struct {
	Bootstrap Bootstrap
	TOC       TOC
	Tokens    []string
	Fields    []FieldValuePair
	FieldSets [][]int32
	Paths     []tinypath.Path
	Specs     []Spec

	// data is the whole file buffer, kept around so out-of-line
	// ValueRep payloads (§4.5) can be resolved by absolute byte
	// offset, the same offsets SectionInfo already uses (see toc.go).
	data []byte
}

// NewReader parses a complete in-memory Crate file.
func NewReader(data []byte) (*Reader, error) {
	boot, err := ReadBootstrap(data)
	if err != nil {
		return nil, err
	}
	toc, err := ReadTOC(data, boot.TOCOffset)
	if err != nil {
		return nil, err
	}

	r := &Reader{Bootstrap: boot, TOC: toc, data: data}

	tokensSec, ok := toc.Find(SectionTokens)
	if !ok {
		return nil, fmt.Errorf("%w: missing TOKENS section", tinyerr.ErrCrateFormat)
	}
	r.Tokens, err = ReadTokens(data[tokensSec.Start : tokensSec.Start+tokensSec.Size])
	if err != nil {
		return nil, err
	}

	if sec, ok := toc.Find(SectionFields); ok {
		r.Fields, err = ReadFields(data[sec.Start : sec.Start+sec.Size])
		if err != nil {
			return nil, err
		}
	}
	if sec, ok := toc.Find(SectionFieldSets); ok {
		r.FieldSets, err = ReadFieldSets(data[sec.Start : sec.Start+sec.Size])
		if err != nil {
			return nil, err
		}
	}
	if sec, ok := toc.Find(SectionPaths); ok {
		r.Paths, err = ReadPaths(data[sec.Start:sec.Start+sec.Size], r.Tokens)
		if err != nil {
			return nil, err
		}
	}
	if sec, ok := toc.Find(SectionSpecs); ok {
		r.Specs, err = ReadSpecs(data[sec.Start : sec.Start+sec.Size])
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ReadValue resolves a ValueRep to a tinyvalue.Value. Inlined scalars
// decode directly from the ValueRep's own payload bits; everything
// else (arrays, large scalars, dictionaries, time samples, relationship
// target lists) is read out-of-line at the file offset the payload
// holds, per §4.5 and valuearray.go's decode paths.
func (r *Reader) ReadValue(v ValueRep) (tinyvalue.Value, error) {
	if v.IsInlined() {
		if v.IsArray() {
			return tinyvalue.Value{}, fmt.Errorf("%w: an inlined value cannot also be an array", tinyerr.ErrCrateFormat)
		}
		return DecodeInlinedScalar(v, r.Tokens)
	}
	off := int(v.Payload())
	if v.IsArray() {
		return r.decodeArrayValue(v, off)
	}
	return r.decodeOutOfLineScalar(v, off)
}

// fieldName resolves a field's token index to its string name.
func (r *Reader) fieldName(idx int32) (string, error) {
	if idx < 0 || int(idx) >= len(r.Tokens) {
		return "", fmt.Errorf("%w: field token index %d out of range", tinyerr.ErrCrateFormat, idx)
	}
	return r.Tokens[idx], nil
}

// well-known field names recognized while reconstructing Prims.
const (
	fieldTypeName  = "typeName"
	fieldSpecifier = "specifier"
	fieldActive    = "active"
	fieldKind      = "kind"
	fieldHidden    = "hidden"
)

// well-known field names recognized while reconstructing Properties
// (SpecTypeProperty), mirroring the vocabulary pkg/usda/parser.go's
// parseProperty/parseRelationship use for the textual format.
const (
	fieldVariability   = "variability"
	fieldCustom        = "custom"
	fieldInterpolation = "interpolation"
	fieldDefault       = "default"
	fieldTimeSamples   = "timeSamples"
	fieldTargetPaths   = "targetPaths"
)

// BuildLayer reconstructs an unresolved Prim forest from the Specs
// table: one tinyprim.Prim per SpecTypePrim entry, parented by Path
// prefix, with its FIELDS entries folded into the Prim's metadata
// where recognized — the binary-format counterpart of usda.Parse's
// text-format Layer construction (§4.5 -> §3 handoff).
func (r *Reader) BuildLayer() ([]*tinyprim.Prim, error) {
	byPath := make(map[string]*tinyprim.Prim)
	var roots []*tinyprim.Prim

	for _, spec := range r.Specs {
		if spec.Type != SpecTypePrim {
			continue
		}
		if int(spec.PathIndex) < 0 || int(spec.PathIndex) >= len(r.Paths) {
			return nil, fmt.Errorf("%w: spec references out-of-range path index %d", tinyerr.ErrCrateFormat, spec.PathIndex)
		}
		path := r.Paths[spec.PathIndex]
		elems := path.PrimElements()
		elementName := ""
		if len(elems) > 0 {
			elementName = elems[len(elems)-1]
		}

		prim := tinyprim.NewPrim(elementName, tinyprim.SpecifierDef, "")
		if int(spec.FieldSetIndex) >= 0 && int(spec.FieldSetIndex) < len(r.FieldSets) {
			if err := r.applyFields(prim, r.FieldSets[spec.FieldSetIndex]); err != nil {
				return nil, err
			}
		}
		prim.SetPaths(path.String(), elementName)
		byPath[path.String()] = prim

		if parent, ok := path.ParentPrimPath(); ok {
			if parentPrim, ok := byPath[parent.String()]; ok {
				parentPrim.AddChild(prim)
				continue
			}
		}
		roots = append(roots, prim)
	}

	for _, spec := range r.Specs {
		if spec.Type != SpecTypeProperty {
			continue
		}
		if err := r.applyProperty(byPath, spec); err != nil {
			return nil, err
		}
	}

	return roots, nil
}

// applyProperty resolves one SpecTypeProperty entry into an Attribute
// or Relationship on its owning Prim (already built by the Prim pass
// above), the binary-format counterpart of parseProperty/
// parseRelationship in pkg/usda/parser.go.
func (r *Reader) applyProperty(byPath map[string]*tinyprim.Prim, spec Spec) error {
	if int(spec.PathIndex) < 0 || int(spec.PathIndex) >= len(r.Paths) {
		return fmt.Errorf("%w: property spec references out-of-range path index %d", tinyerr.ErrCrateFormat, spec.PathIndex)
	}
	path := r.Paths[spec.PathIndex]
	if !path.HasProperty() {
		return fmt.Errorf("%w: property spec path %q has no property part", tinyerr.ErrCrateFormat, path.String())
	}
	prim, ok := byPath[path.PrimPart()]
	if !ok {
		return fmt.Errorf("%w: property spec %q references unknown prim %q", tinyerr.ErrCrateFormat, path.String(), path.PrimPart())
	}

	var fieldIdxs []int32
	if int(spec.FieldSetIndex) >= 0 && int(spec.FieldSetIndex) < len(r.FieldSets) {
		fieldIdxs = r.FieldSets[spec.FieldSetIndex]
	}
	prop, err := r.buildProperty(fieldIdxs)
	if err != nil {
		return fmt.Errorf("property %q: %w", path.String(), err)
	}
	prim.SetProperty(path.PropPart(), prop)
	return nil
}

// buildProperty folds one property spec's fields into a Property: a
// targetPaths field makes it a Relationship, otherwise an Attribute
// carrying whichever of default/timeSamples the fields provide.
func (r *Reader) buildProperty(fieldIdxs []int32) (tinyprim.Property, error) {
	var (
		typeName        string
		variability     = tinyprim.Varying
		custom          bool
		interpolation   string
		haveDefault     bool
		defaultVal      tinyvalue.Value
		haveTimeSamples bool
		ts              tinyvalue.TimeSamples
		haveTargets     bool
		targets         []tinypath.Path
	)

	for _, fi := range fieldIdxs {
		if int(fi) < 0 || int(fi) >= len(r.Fields) {
			return tinyprim.Property{}, fmt.Errorf("%w: fieldset references out-of-range field %d", tinyerr.ErrCrateFormat, fi)
		}
		fv := r.Fields[fi]
		name, err := r.fieldName(fv.TokenIndex)
		if err != nil {
			return tinyprim.Property{}, err
		}
		switch name {
		case fieldTypeName:
			val, err := r.ReadValue(fv.Value)
			if err == nil {
				if tok, ok := tinyvalue.As[tinyvalue.Token](val); ok {
					typeName = tok.String()
				}
			}
		case fieldVariability:
			val, err := r.ReadValue(fv.Value)
			if err == nil {
				if n, ok := tinyvalue.As[int32](val); ok && tinyprim.Variability(n) == tinyprim.Uniform {
					variability = tinyprim.Uniform
				}
			}
		case fieldCustom:
			val, err := r.ReadValue(fv.Value)
			if err == nil {
				if b, ok := tinyvalue.As[bool](val); ok {
					custom = b
				}
			}
		case fieldInterpolation:
			val, err := r.ReadValue(fv.Value)
			if err == nil {
				if tok, ok := tinyvalue.As[tinyvalue.Token](val); ok {
					interpolation = tok.String()
				}
			}
		case fieldDefault:
			v, err := r.ReadValue(fv.Value)
			if err != nil {
				return tinyprim.Property{}, err
			}
			defaultVal = v
			haveDefault = true
		case fieldTimeSamples:
			v, err := r.ReadValue(fv.Value)
			if err != nil {
				return tinyprim.Property{}, err
			}
			tsv, ok := tinyvalue.As[tinyvalue.TimeSamples](v)
			if !ok {
				return tinyprim.Property{}, fmt.Errorf("%w: timeSamples field is not a time samples value", tinyerr.ErrCrateFormat)
			}
			ts = tsv
			haveTimeSamples = true
		case fieldTargetPaths:
			v, err := r.ReadValue(fv.Value)
			if err != nil {
				return tinyprim.Property{}, err
			}
			ps, ok := tinyvalue.As[[]tinypath.Path](v)
			if !ok {
				return tinyprim.Property{}, fmt.Errorf("%w: targetPaths field is not a path vector", tinyerr.ErrCrateFormat)
			}
			targets = ps
			haveTargets = true
		}
	}

	if haveTargets {
		rel := tinyprim.NewRelationship()
		rel.Targets = targets
		return tinyprim.Property{Kind: tinyprim.PropertyRelationship, Relationship: rel, Custom: custom}, nil
	}

	attr := tinyprim.NewAttribute(typeName, variability)
	attr.Meta.Interpolation = interpolation
	switch {
	case haveTimeSamples:
		attr.SetTimeSamples(ts)
	case haveDefault:
		attr.SetScalar(defaultVal)
	}
	return tinyprim.Property{Kind: tinyprim.PropertyAttribute, Attribute: attr, Custom: custom}, nil
}

func (r *Reader) applyFields(prim *tinyprim.Prim, fieldIdxs []int32) error {
	for _, fi := range fieldIdxs {
		if int(fi) < 0 || int(fi) >= len(r.Fields) {
			return fmt.Errorf("%w: fieldset references out-of-range field %d", tinyerr.ErrCrateFormat, fi)
		}
		fv := r.Fields[fi]
		name, err := r.fieldName(fv.TokenIndex)
		if err != nil {
			return err
		}
		switch name {
		case fieldTypeName:
			val, err := r.ReadValue(fv.Value)
			if err == nil {
				if tok, ok := tinyvalue.As[tinyvalue.Token](val); ok {
					prim.SchemaName = tok.String()
					prim.SchemaType = tinyprim.SchemaTypeByName(tok.String())
				}
			}
		case fieldSpecifier:
			val, err := r.ReadValue(fv.Value)
			if err == nil {
				if n, ok := tinyvalue.As[int32](val); ok {
					prim.Specifier = tinyprim.Specifier(n)
				}
			}
		case fieldActive:
			val, err := r.ReadValue(fv.Value)
			if err == nil {
				if b, ok := tinyvalue.As[bool](val); ok {
					prim.Meta.Active = b
				}
			}
		case fieldHidden:
			val, err := r.ReadValue(fv.Value)
			if err == nil {
				if b, ok := tinyvalue.As[bool](val); ok {
					prim.Meta.Hidden = b
				}
			}
		case fieldKind:
			val, err := r.ReadValue(fv.Value)
			if err == nil {
				if tok, ok := tinyvalue.As[tinyvalue.Token](val); ok {
					prim.Meta.Kind = tok.String()
				}
			}
		}
	}
	return nil
}
