package tinyprim

import (
	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

// Variability classifies how an attribute's value may change.
type Variability int

const (
	Uniform Variability = iota
	Varying
)

// AttributeState is the observable state of an Attribute, per §3: an
// attribute is exactly one of these five.
type AttributeState int

const (
	StateUndefined AttributeState = iota
	StateDefineOnly
	StateValuedScalar
	StateValuedTimeSamples
	StateBlocked
	StateConnection
)

// AttributeMeta carries the metadata an Attribute can be authored with.
type AttributeMeta struct {
	Interpolation string // "constant" | "uniform" | "varying" | "vertex" | "faceVarying"
	DisplayName   string
	ColorSpace    string
	Doc           string
	CustomData    *tinyvalue.Dict
	AssetInfo     *tinyvalue.Dict
	Hidden        bool
}

// Attribute is a PrimVar plus type, variability, blocked flag,
// metadata and optional connection targets, per §3.
type Attribute struct {
	TypeName    string
	Variability Variability
	Var         PrimVar
	Meta        AttributeMeta
	Connections []tinypath.Path
	defined     bool
}

// NewAttribute creates a define-only attribute of the given type name.
func NewAttribute(typeName string, variability Variability) *Attribute {
	return &Attribute{TypeName: typeName, Variability: variability, defined: true}
}

func (a *Attribute) SetScalar(v tinyvalue.Value) {
	a.Var = NewScalarPrimVar(v)
	a.Connections = nil
}

func (a *Attribute) SetTimeSamples(ts tinyvalue.TimeSamples) {
	a.Var = NewTimeSamplesPrimVar(ts)
	a.Connections = nil
}

func (a *Attribute) Block() {
	a.Var = NewBlockedPrimVar()
	a.Connections = nil
}

func (a *Attribute) Connect(target tinypath.Path) {
	a.Connections = []tinypath.Path{target}
	a.Var = PrimVar{}
}

// State classifies the attribute into one of the five §3 states.
func (a *Attribute) State() AttributeState {
	if a == nil || !a.defined {
		return StateUndefined
	}
	if len(a.Connections) > 0 {
		return StateConnection
	}
	switch {
	case a.Var.IsBlocked():
		return StateBlocked
	case a.Var.HasScalar():
		return StateValuedScalar
	case a.Var.HasTimeSamples():
		return StateValuedTimeSamples
	default:
		return StateDefineOnly
	}
}

func (a *Attribute) IsConnection() bool { return a.State() == StateConnection }
func (a *Attribute) IsBlocked() bool    { return a.State() == StateBlocked }

// Relationship is a typed, non-valued edge: target paths plus a
// list-edit qualifier, per §3.
type ListEditOp int

const (
	ListEditExplicit ListEditOp = iota
	ListEditAdd
	ListEditAppend
	ListEditPrepend
	ListEditDelete
	ListEditReset
)

type Relationship struct {
	Targets []tinypath.Path
	Op      ListEditOp
	Meta    AttributeMeta
}

func NewRelationship() *Relationship { return &Relationship{} }

// Property is an Attribute ⊕ Relationship tagged union plus a custom
// flag, per §3.
type PropertyKind int

const (
	PropertyAttribute PropertyKind = iota
	PropertyRelationship
)

type Property struct {
	Kind         PropertyKind
	Attribute    *Attribute
	Relationship *Relationship
	Custom       bool
}

func NewAttributeProperty(a *Attribute) Property {
	return Property{Kind: PropertyAttribute, Attribute: a}
}

func NewRelationshipProperty(r *Relationship) Property {
	return Property{Kind: PropertyRelationship, Relationship: r}
}
