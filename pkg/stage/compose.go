package stage

import (
	"fmt"
	"path"
	"strings"

	"github.com/lighttransport/tinyusdz-go/pkg/crate"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/usda"
)

// maxCompositionDepth bounds recursive layer loading across
// subLayers/references/payloads arcs, per
// spec §4.6 and original_source/src/prim-composition.hh.
const maxCompositionDepth = 1024

// SourceLayer is the minimal shape pkg/usda.Layer and a pkg/crate
// Reader's reconstructed forest both present to the composer, letting
// Compose stay agnostic to which C4/C5 reader produced the input.
type SourceLayer struct {
	UpAxis             string
	DefaultPrim        string
	MetersPerUnit      float64
	TimeCodesPerSecond float64
	StartTimeCode      float64
	EndTimeCode        float64
	SubLayers          []string
	RootPrims          []*tinyprim.Prim
}

// FromUSDA adapts a parsed USDA Layer to a SourceLayer.
func FromUSDA(l *usda.Layer) *SourceLayer {
	return &SourceLayer{
		UpAxis:             l.UpAxis,
		DefaultPrim:        l.DefaultPrim,
		MetersPerUnit:      l.MetersPerUnit,
		TimeCodesPerSecond: l.TimeCodesPerSecond,
		StartTimeCode:      l.StartTimeCode,
		EndTimeCode:        l.EndTimeCode,
		SubLayers:          l.SubLayers,
		RootPrims:          l.RootPrims,
	}
}

// FromCrate adapts a Crate Reader's reconstructed Prim forest to a
// SourceLayer. Crate files carry no StageMetas-shaped metadata section
// distinct from Prim fields in this port's coverage (see pkg/crate's
// DESIGN.md entry), so only RootPrims is populated.
func FromCrate(r *crate.Reader) (*SourceLayer, error) {
	roots, err := r.BuildLayer()
	if err != nil {
		return nil, err
	}
	return &SourceLayer{RootPrims: roots}, nil
}

// Compose builds a Stage from a root layer, applying composition in
// the order subLayers → variantSets → references → payloads, with
// same-layer def/over merging folded in at every step. Inherits and
// specializes arcs are recorded in PrimMeta but are not walked.
//
// This port's composition is scoped to what a single-binary, no
// filesystem-writes CLI needs: same-layer def/over merging and
// selected variantSet branches always apply; the resolver-backed arcs
// (subLayers/references/payloads) run only when resolver is non-nil,
// since they require loading another asset by identifier. Passing a nil resolver
// is valid and composes exactly the opinions authored in the root
// layer itself — the common case for a single self-contained USDA/
// USDC file (spec's Scenarios 1-6 are all single-file).
func Compose(root *SourceLayer, resolver AssetResolver) (*Stage, error) {
	s := New()
	s.Metas.UpAxis = root.UpAxis
	s.Metas.DefaultPrim = root.DefaultPrim
	if root.MetersPerUnit != 0 {
		s.Metas.MetersPerUnit = root.MetersPerUnit
	}
	if root.TimeCodesPerSecond != 0 {
		s.Metas.TimeCodesPerSecond = root.TimeCodesPerSecond
	}
	s.Metas.StartTimeCode = root.StartTimeCode
	s.Metas.EndTimeCode = root.EndTimeCode
	s.Metas.SubLayers = root.SubLayers

	prims := mergeSiblings(root.RootPrims)

	if resolver != nil {
		var sub []*tinyprim.Prim
		for i := len(root.SubLayers) - 1; i >= 0; i-- {
			layerPrims, err := loadLayerPrims(root.SubLayers[i], resolver, 1)
			if err != nil {
				s.log.Warnf("sublayer %q: %v", root.SubLayers[i], err)
				continue
			}
			sub = mergeSiblings(append(sub, layerPrims...))
		}
		prims = mergeSiblings(append(sub, prims...))
	}

	for _, p := range prims {
		if err := composeArcs(p, resolver, 1); err != nil {
			return nil, err
		}
	}

	s.RootPrims = prims
	s.MarkDirty()
	return s, nil
}

// mergeSiblings groups a Prim slice by ElementName in first-occurrence
// order, merging same-named entries (e.g. a `def` followed later by an
// `over` of the same name) into one Prim. Later entries are the
// stronger opinion: their authored properties and metadata fields win,
// children are merged recursively by name, and unset metadata fields
// (zero values) fall back to the earlier entry rather than clobbering
// it. This is the simplification this port uses in place of Pixar's
// full per-field strength-ordering (LIVRPS) composition arc
// machinery, documented here and in DESIGN.md.
func mergeSiblings(prims []*tinyprim.Prim) []*tinyprim.Prim {
	order := make([]string, 0, len(prims))
	byName := make(map[string]*tinyprim.Prim, len(prims))
	for _, p := range prims {
		if existing, ok := byName[p.ElementName]; ok {
			mergePrim(existing, p)
			continue
		}
		byName[p.ElementName] = p
		order = append(order, p.ElementName)
	}
	out := make([]*tinyprim.Prim, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

// mergePrim folds stronger's opinions into target in place.
func mergePrim(target, stronger *tinyprim.Prim) {
	if stronger.SchemaName != "" {
		target.SchemaName = stronger.SchemaName
		target.SchemaType = stronger.SchemaType
	}
	if stronger.Specifier == tinyprim.SpecifierDef {
		target.Specifier = tinyprim.SpecifierDef
	}
	for _, name := range stronger.PropertyNames() {
		prop, _ := stronger.GetProperty(name)
		target.SetProperty(name, prop)
	}
	if stronger.Meta.Kind != "" {
		target.Meta.Kind = stronger.Meta.Kind
	}
	if stronger.Meta.Doc != "" {
		target.Meta.Doc = stronger.Meta.Doc
	}
	if stronger.Meta.DisplayName != "" {
		target.Meta.DisplayName = stronger.Meta.DisplayName
	}
	target.Meta.Hidden = target.Meta.Hidden || stronger.Meta.Hidden
	target.Meta.References = append(target.Meta.References, stronger.Meta.References...)
	target.Meta.Payload = append(target.Meta.Payload, stronger.Meta.Payload...)
	target.Meta.Inherits = append(target.Meta.Inherits, stronger.Meta.Inherits...)
	target.Meta.Specializes = append(target.Meta.Specializes, stronger.Meta.Specializes...)
	target.Meta.VariantSets = append(target.Meta.VariantSets, stronger.Meta.VariantSets...)
	target.Children = mergeSiblings(append(target.Children, stronger.Children...))
}

// composeArcs applies a Prim's selected variantSet branches and, when
// resolver is non-nil, its references/payloads arcs (weaker than its
// own local opinions, per §4.6's ordering), recursing into
// already-merged children. Inherits and specializes arcs are not
// walked.
func composeArcs(p *tinyprim.Prim, resolver AssetResolver, depth int) error {
	if depth > maxCompositionDepth {
		return fmt.Errorf("%w: composition depth exceeded %d", tinyerr.ErrInternal, maxCompositionDepth)
	}

	for _, vs := range p.Meta.VariantSets {
		if vs.Selection == "" {
			continue
		}
		if branch, ok := vs.Variants[vs.Selection]; ok {
			p.Children = mergeSiblings(append(branch, p.Children...))
		}
	}

	var arcs []tinyprim.ReferenceArc
	if resolver != nil {
		arcs = append(append(arcs, p.Meta.References...), p.Meta.Payload...)
	}
	for _, arc := range arcs {
		weak, err := loadArcPrim(arc, resolver, depth)
		if err != nil {
			return err
		}
		if weak == nil {
			continue
		}
		// weak holds the referenced layer's opinions; p's own
		// (already-authored, local) opinions are stronger, so fold p
		// into weak and adopt the result. weak is a private copy
		// returned by loadArcPrim, safe to mutate.
		mergePrim(weak, p)
		if weak.SchemaName != "" {
			p.SchemaName = weak.SchemaName
			p.SchemaType = weak.SchemaType
		}
		for _, name := range weak.PropertyNames() {
			prop, _ := weak.GetProperty(name)
			p.SetProperty(name, prop)
		}
		p.Children = weak.Children
	}

	for _, child := range p.Children {
		if err := composeArcs(child, resolver, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// loadArcPrim resolves one reference/payload arc: loads the target
// layer, then locates the arc's target prim (or the layer's
// defaultPrim when PrimPath is empty).
func loadArcPrim(arc tinyprim.ReferenceArc, resolver AssetResolver, depth int) (*tinyprim.Prim, error) {
	layer, err := loadLayer(arc.AssetPath, resolver, depth)
	if err != nil {
		return nil, err
	}
	targetName := arc.PrimPath
	if targetName == "" {
		targetName = layer.DefaultPrim
	}
	targetName = strings.TrimPrefix(targetName, "/")
	for _, root := range layer.RootPrims {
		if root.ElementName == targetName || targetName == "" {
			return root, nil
		}
	}
	return nil, fmt.Errorf("%w: referenced prim %q not found in %q", tinyerr.ErrPathInvalid, arc.PrimPath, arc.AssetPath)
}

func loadLayerPrims(identifier string, resolver AssetResolver, depth int) ([]*tinyprim.Prim, error) {
	layer, err := loadLayer(identifier, resolver, depth)
	if err != nil {
		return nil, err
	}
	return layer.RootPrims, nil
}

// loadLayer resolves and parses a single referenced asset (USDA or
// Crate, detected by extension) into a SourceLayer.
func loadLayer(identifier string, resolver AssetResolver, depth int) (*SourceLayer, error) {
	if depth > maxCompositionDepth {
		return nil, fmt.Errorf("%w: composition depth exceeded %d loading %q", tinyerr.ErrInternal, maxCompositionDepth, identifier)
	}
	resolved, err := resolver.Resolve(identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %q: %v", tinyerr.ErrIO, identifier, err)
	}
	data, err := resolver.Read(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %v", tinyerr.ErrIO, resolved, err)
	}

	switch strings.ToLower(path.Ext(resolved)) {
	case ".usdc":
		r, err := crate.NewReader(data)
		if err != nil {
			return nil, err
		}
		return FromCrate(r)
	default:
		l, err := usda.Parse(resolved, string(data))
		if err != nil {
			return nil, err
		}
		return FromUSDA(l), nil
	}
}
