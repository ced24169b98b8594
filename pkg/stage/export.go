package stage

import (
	"fmt"
	"strings"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

// ExportToString serializes the Stage to USDA 1.0 text in the stable
// order stage.hh's ExportToString promises: metadata block, then root
// prims depth-first, then per-prim properties in authored order.
func (s *Stage) ExportToString() string {
	var b strings.Builder
	b.WriteString("#usda 1.0\n")
	writeLayerMeta(&b, s.Metas)
	for _, p := range s.RootPrims {
		writePrim(&b, p, 0)
	}
	return b.String()
}

func writeLayerMeta(b *strings.Builder, m StageMetas) {
	b.WriteString("(\n")
	if m.UpAxis != "" {
		fmt.Fprintf(b, "    upAxis = %q\n", m.UpAxis)
	}
	if m.DefaultPrim != "" {
		fmt.Fprintf(b, "    defaultPrim = %q\n", m.DefaultPrim)
	}
	fmt.Fprintf(b, "    metersPerUnit = %v\n", m.MetersPerUnit)
	fmt.Fprintf(b, "    timeCodesPerSecond = %v\n", m.TimeCodesPerSecond)
	if m.Doc != "" {
		fmt.Fprintf(b, "    doc = %q\n", m.Doc)
	}
	b.WriteString(")\n")
}

func writePrim(b *strings.Builder, p *tinyprim.Prim, depth int) {
	indent := strings.Repeat("    ", depth)
	specifier := "def"
	switch p.Specifier {
	case tinyprim.SpecifierOver:
		specifier = "over"
	case tinyprim.SpecifierClass:
		specifier = "class"
	}
	fmt.Fprintf(b, "%s%s %s %q\n%s{\n", indent, specifier, p.TypeName(), p.ElementName, indent)

	for _, name := range p.PropertyNames() {
		prop, _ := p.GetProperty(name)
		writeProperty(b, name, prop, depth+1)
	}
	for _, child := range p.Children {
		writePrim(b, child, depth+1)
	}
	fmt.Fprintf(b, "%s}\n", indent)
}

func writeProperty(b *strings.Builder, name string, prop tinyprim.Property, depth int) {
	indent := strings.Repeat("    ", depth)
	if prop.Kind == tinyprim.PropertyRelationship {
		targets := make([]string, len(prop.Relationship.Targets))
		for i, t := range prop.Relationship.Targets {
			targets[i] = "<" + t.String() + ">"
		}
		fmt.Fprintf(b, "%srel %s = [%s]\n", indent, name, strings.Join(targets, ", "))
		return
	}

	attr := prop.Attribute
	switch attr.State() {
	case tinyprim.StateConnection:
		fmt.Fprintf(b, "%s%s %s.connect = <%s>\n", indent, attr.TypeName, name, attr.Connections[0].String())
	case tinyprim.StateBlocked:
		fmt.Fprintf(b, "%s%s %s = None\n", indent, attr.TypeName, name)
	case tinyprim.StateValuedScalar:
		fmt.Fprintf(b, "%s%s %s = %s\n", indent, attr.TypeName, name, formatValue(attr.Var.Scalar()))
	case tinyprim.StateValuedTimeSamples:
		fmt.Fprintf(b, "%s%s %s.timeSamples = {\n", indent, attr.TypeName, name)
		ts := attr.Var.TimeSamples()
		for i, t := range ts.Times {
			fmt.Fprintf(b, "%s    %v: %s,\n", indent, t, formatValue(ts.Values[i]))
		}
		fmt.Fprintf(b, "%s}\n", indent)
	default:
		fmt.Fprintf(b, "%s%s %s\n", indent, attr.TypeName, name)
	}
}

// formatValue renders a Value as a USDA literal. This covers the
// scalar/vector/string/token/asset kinds this port's parser accepts;
// anything else falls back to Value.String()'s debug form, which is
// round-trip-lossy but never panics, favoring a readable dump over a
// failed export.
func formatValue(v tinyvalue.Value) string {
	switch v.TypeId() {
	case tinyvalue.String:
		s, _ := tinyvalue.As[string](v)
		return fmt.Sprintf("%q", s)
	case tinyvalue.AssetPath:
		s, _ := tinyvalue.As[string](v)
		return "@" + s + "@"
	case tinyvalue.Token:
		tok, _ := tinyvalue.As[tinyvalue.Token](v)
		return fmt.Sprintf("%q", tok.String())
	default:
		return fmt.Sprintf("%v", v.Raw())
	}
}
