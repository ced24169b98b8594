package tinyprim

import "github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"

// Specifier is the USD def/over/class qualifier on a Prim.
type Specifier int

const (
	SpecifierDef Specifier = iota
	SpecifierOver
	SpecifierClass
)

// SchemaType is the concrete schema kind of a Prim, a closed tagged
// union per spec §9's "avoid virtual dispatch" design note. Model is
// the catch-all for unrecognized/unknown schema type names.
type SchemaType int

const (
	SchemaModel SchemaType = iota
	SchemaXform
	SchemaScope
	SchemaGeomMesh
	SchemaGeomSubset
	SchemaGeomSphere
	SchemaGeomCube
	SchemaGeomCapsule
	SchemaGeomCylinder
	SchemaGeomBasisCurves
	SchemaGeomPoints
	SchemaMaterial
	SchemaShader
	SchemaNodeGraph
	SchemaSkelRoot
	SchemaSkeleton
	SchemaSkelAnimation
	SchemaBlendShape
	SchemaDomeLight
	SchemaSphereLight
	SchemaRectLight
	SchemaDiskLight
	SchemaDistantLight
	SchemaCamera
	SchemaPointInstancer
)

var schemaTypeNames = map[SchemaType]string{
	SchemaModel:           "Model",
	SchemaXform:           "Xform",
	SchemaScope:           "Scope",
	SchemaGeomMesh:        "Mesh",
	SchemaGeomSubset:      "GeomSubset",
	SchemaGeomSphere:      "Sphere",
	SchemaGeomCube:        "Cube",
	SchemaGeomCapsule:     "Capsule",
	SchemaGeomCylinder:    "Cylinder",
	SchemaGeomBasisCurves: "BasisCurves",
	SchemaGeomPoints:      "Points",
	SchemaMaterial:        "Material",
	SchemaShader:          "Shader",
	SchemaNodeGraph:       "NodeGraph",
	SchemaSkelRoot:        "SkelRoot",
	SchemaSkeleton:        "Skeleton",
	SchemaSkelAnimation:   "SkelAnimation",
	SchemaBlendShape:      "BlendShape",
	SchemaDomeLight:       "DomeLight",
	SchemaSphereLight:     "SphereLight",
	SchemaRectLight:       "RectLight",
	SchemaDiskLight:       "DiskLight",
	SchemaDistantLight:    "DistantLight",
	SchemaCamera:          "Camera",
	SchemaPointInstancer:  "PointInstancer",
}

var schemaTypeByName = func() map[string]SchemaType {
	m := make(map[string]SchemaType, len(schemaTypeNames))
	for k, v := range schemaTypeNames {
		m[v] = k
	}
	return m
}()

func SchemaTypeName(t SchemaType) string {
	if n, ok := schemaTypeNames[t]; ok {
		return n
	}
	return "Model"
}

func SchemaTypeByName(name string) SchemaType {
	if t, ok := schemaTypeByName[name]; ok {
		return t
	}
	return SchemaModel
}

// ReferenceArc is one entry of a references/payloads list-op.
type ReferenceArc struct {
	AssetPath string
	PrimPath  string // target prim path within the referenced layer, "" means defaultPrim
	LayerOffset float64
	LayerScale  float64
}

// VariantSet is an unresolved named set of variant branches, each a
// list of child Prims (no property overrides), composed later by C6.
type VariantSet struct {
	Name      string
	Variants  map[string][]*Prim
	Selection string
	Order     []string // authored variant name order, for export stability
}

// PrimMeta carries a Prim's scene-graph metadata (§3).
type PrimMeta struct {
	AssetInfo    *tinyvalue.Dict
	CustomData   *tinyvalue.Dict
	Kind         string
	Hidden       bool
	Active       bool
	References   []ReferenceArc
	ReferencesOp ListEditOp
	Payload      []ReferenceArc
	PayloadOp    ListEditOp
	Inherits     []string
	Specializes  []string
	VariantSets  []VariantSet
	Doc          string
	DisplayName  string
}

func NewPrimMeta() PrimMeta {
	return PrimMeta{Active: true}
}

// Prim is a scene-graph node: an element name, specifier, schema
// variant, property map, metadata, and ordered children, per §3.
type Prim struct {
	ElementName string
	Specifier   Specifier
	SchemaType  SchemaType
	SchemaName  string // raw authored type name, preserved even for SchemaModel

	properties     map[string]Property
	propertyOrder  []string

	Meta     PrimMeta
	Children []*Prim

	absPath   string // set once the Prim is attached to a Stage/parent chain
	elemPath  string
}

func NewPrim(elementName string, specifier Specifier, schemaName string) *Prim {
	return &Prim{
		ElementName: elementName,
		Specifier:   specifier,
		SchemaType:  SchemaTypeByName(schemaName),
		SchemaName:  schemaName,
		properties:  make(map[string]Property),
		Meta:        NewPrimMeta(),
	}
}

func (p *Prim) TypeName() string {
	if p.SchemaName != "" {
		return p.SchemaName
	}
	return SchemaTypeName(p.SchemaType)
}

func (p *Prim) SetProperty(name string, prop Property) {
	if _, exists := p.properties[name]; !exists {
		p.propertyOrder = append(p.propertyOrder, name)
	}
	p.properties[name] = prop
}

func (p *Prim) GetProperty(name string) (Property, bool) {
	prop, ok := p.properties[name]
	return prop, ok
}

func (p *Prim) GetAttribute(name string) (*Attribute, bool) {
	prop, ok := p.properties[name]
	if !ok || prop.Kind != PropertyAttribute {
		return nil, false
	}
	return prop.Attribute, true
}

func (p *Prim) GetRelationship(name string) (*Relationship, bool) {
	prop, ok := p.properties[name]
	if !ok || prop.Kind != PropertyRelationship {
		return nil, false
	}
	return prop.Relationship, true
}

// PropertyNames returns property names in declared (authored) order,
// per spec §5's ordering rule.
func (p *Prim) PropertyNames() []string {
	return p.propertyOrder
}

func (p *Prim) AddChild(child *Prim) {
	p.Children = append(p.Children, child)
}

// AbsPath/ElemPath hold the Path this Prim was attached at. They are
// set by the owning Stage (pkg/stage), never by the Prim itself: a
// Prim only owns its element name, per §9's "parent pointers" design
// note (reconstruct relationships by path lookup, don't store a
// parent pointer).
func (p *Prim) AbsPath() string  { return p.absPath }
func (p *Prim) ElemPath() string { return p.elemPath }

func (p *Prim) SetPaths(abs, elem string) {
	p.absPath = abs
	p.elemPath = elem
}
