// Package tinyvalue implements the type-erased Value variant (C1):
// a closed set of ~90 concrete value kinds with a stable TypeId,
// canonical type name, array/scalar duality and introspection,
// grounded on original_source/src/prim-types.hh's ValueTypeId
// enumeration.
package tinyvalue

// TypeId is a stable numeric identifier for a concrete value kind.
// Values mirror the ValueTypeId enum order of the original
// implementation so that any doc/spec referencing a numeric id stays
// meaningful.
type TypeId uint32

const (
	Invalid TypeId = iota

	Bool
	UChar
	Int
	UInt
	Int64
	UInt64

	Half
	Float
	Double

	String
	Token
	AssetPath

	Matrix2d
	Matrix3d
	Matrix4d

	Quatd
	Quatf
	Quath

	Vec2d
	Vec2f
	Vec2h
	Vec2i

	Vec3d
	Vec3f
	Vec3h
	Vec3i

	Vec4d
	Vec4f
	Vec4h
	Vec4i

	Dictionary
	TokenListOp
	StringListOp
	PathListOp
	ReferenceListOp
	IntListOp
	Int64ListOp
	UIntListOp
	UInt64ListOp

	PathVector
	TokenVector

	Specifier
	Permission
	Variability

	VariantSelectionMap
	TimeSamplesType
	Payload
	DoubleVector
	LayerOffsetVector
	StringVector
	ValueBlock
	GenericValue
	UnregisteredValue
	UnregisteredValueListOp
	PayloadListOp
	TimeCode
)

// Array kinds get their own ids (rather than a boolean tag on the
// scalar id) so that TypeId alone determines layout, per the Value
// invariant in spec §3.
const (
	BoolArrayID TypeId = 1000 + iota
	UCharArrayID
	IntArrayID
	UIntArrayID
	Int64ArrayID
	UInt64ArrayID
	HalfArrayID
	FloatArrayID
	DoubleArrayID
	StringArrayID
	TokenArrayID
	AssetPathArrayID
	Matrix2dArrayID
	Matrix3dArrayID
	Matrix4dArrayID
	QuatdArrayID
	QuatfArrayID
	QuathArrayID
	Vec2dArrayID
	Vec2fArrayID
	Vec2hArrayID
	Vec2iArrayID
	Vec3dArrayID
	Vec3fArrayID
	Vec3hArrayID
	Vec3iArrayID
	Vec4dArrayID
	Vec4fArrayID
	Vec4hArrayID
	Vec4iArrayID
	DictionaryArrayID
)

type typeInfo struct {
	name     string
	isArray  bool
	size     int // byte size of one scalar element; 0 for variable-size kinds
	scalarOf TypeId
}

var registry = map[TypeId]typeInfo{
	Invalid:    {"invalid", false, 0, Invalid},
	Bool:       {"bool", false, 1, Invalid},
	UChar:      {"uchar", false, 1, Invalid},
	Int:        {"int", false, 4, Invalid},
	UInt:       {"uint", false, 4, Invalid},
	Int64:      {"int64", false, 8, Invalid},
	UInt64:     {"uint64", false, 8, Invalid},
	Half:       {"half", false, 2, Invalid},
	Float:      {"float", false, 4, Invalid},
	Double:     {"double", false, 8, Invalid},
	String:     {"string", false, 0, Invalid},
	Token:      {"token", false, 0, Invalid},
	AssetPath:  {"asset", false, 0, Invalid},
	Matrix2d:   {"matrix2d", false, 32, Invalid},
	Matrix3d:   {"matrix3d", false, 72, Invalid},
	Matrix4d:   {"matrix4d", false, 128, Invalid},
	Quatd:      {"quatd", false, 32, Invalid},
	Quatf:      {"quatf", false, 16, Invalid},
	Quath:      {"quath", false, 8, Invalid},
	Vec2d:      {"double2", false, 16, Invalid},
	Vec2f:      {"float2", false, 8, Invalid},
	Vec2h:      {"half2", false, 4, Invalid},
	Vec2i:      {"int2", false, 8, Invalid},
	Vec3d:      {"double3", false, 24, Invalid},
	Vec3f:      {"float3", false, 12, Invalid},
	Vec3h:      {"half3", false, 6, Invalid},
	Vec3i:      {"int3", false, 12, Invalid},
	Vec4d:      {"double4", false, 32, Invalid},
	Vec4f:      {"float4", false, 16, Invalid},
	Vec4h:      {"half4", false, 8, Invalid},
	Vec4i:      {"int4", false, 16, Invalid},
	Dictionary: {"dictionary", false, 0, Invalid},

	TokenListOp:             {"tokenListOp", false, 0, Invalid},
	StringListOp:            {"stringListOp", false, 0, Invalid},
	PathListOp:              {"pathListOp", false, 0, Invalid},
	ReferenceListOp:         {"referenceListOp", false, 0, Invalid},
	IntListOp:               {"intListOp", false, 0, Invalid},
	Int64ListOp:             {"int64ListOp", false, 0, Invalid},
	UIntListOp:              {"uintListOp", false, 0, Invalid},
	UInt64ListOp:            {"uint64ListOp", false, 0, Invalid},
	PathVector:              {"pathVector", false, 0, Invalid},
	TokenVector:             {"tokenVector", false, 0, Invalid},
	Specifier:               {"specifier", false, 4, Invalid},
	Permission:              {"permission", false, 4, Invalid},
	Variability:             {"variability", false, 4, Invalid},
	VariantSelectionMap:     {"variantSelectionMap", false, 0, Invalid},
	TimeSamplesType:         {"timeSamples", false, 0, Invalid},
	Payload:                 {"payload", false, 0, Invalid},
	DoubleVector:            {"doubleVector", false, 0, Invalid},
	LayerOffsetVector:       {"layerOffsetVector", false, 0, Invalid},
	StringVector:            {"stringVector", false, 0, Invalid},
	ValueBlock:              {"valueBlock", false, 0, Invalid},
	GenericValue:            {"value", false, 0, Invalid},
	UnregisteredValue:       {"unregisteredValue", false, 0, Invalid},
	UnregisteredValueListOp: {"unregisteredValueListOp", false, 0, Invalid},
	PayloadListOp:           {"payloadListOp", false, 0, Invalid},
	TimeCode:                {"timecode", false, 8, Invalid},

	BoolArrayID:      {"bool[]", true, 1, Bool},
	UCharArrayID:     {"uchar[]", true, 1, UChar},
	IntArrayID:       {"int[]", true, 4, Int},
	UIntArrayID:      {"uint[]", true, 4, UInt},
	Int64ArrayID:     {"int64[]", true, 8, Int64},
	UInt64ArrayID:    {"uint64[]", true, 8, UInt64},
	HalfArrayID:      {"half[]", true, 2, Half},
	FloatArrayID:     {"float[]", true, 4, Float},
	DoubleArrayID:    {"double[]", true, 8, Double},
	StringArrayID:    {"string[]", true, 0, String},
	TokenArrayID:     {"token[]", true, 0, Token},
	AssetPathArrayID: {"asset[]", true, 0, AssetPath},
	Matrix2dArrayID:  {"matrix2d[]", true, 32, Matrix2d},
	Matrix3dArrayID:  {"matrix3d[]", true, 72, Matrix3d},
	Matrix4dArrayID:  {"matrix4d[]", true, 128, Matrix4d},
	QuatdArrayID:     {"quatd[]", true, 32, Quatd},
	QuatfArrayID:     {"quatf[]", true, 16, Quatf},
	QuathArrayID:     {"quath[]", true, 8, Quath},
	Vec2dArrayID:     {"double2[]", true, 16, Vec2d},
	Vec2fArrayID:     {"float2[]", true, 8, Vec2f},
	Vec2hArrayID:     {"half2[]", true, 4, Vec2h},
	Vec2iArrayID:     {"int2[]", true, 8, Vec2i},
	Vec3dArrayID:     {"double3[]", true, 24, Vec3d},
	Vec3fArrayID:     {"float3[]", true, 12, Vec3f},
	Vec3hArrayID:     {"half3[]", true, 6, Vec3h},
	Vec3iArrayID:     {"int3[]", true, 12, Vec3i},
	Vec4dArrayID:     {"double4[]", true, 32, Vec4d},
	Vec4fArrayID:     {"float4[]", true, 16, Vec4f},
	Vec4hArrayID:     {"half4[]", true, 8, Vec4h},
	Vec4iArrayID:     {"int4[]", true, 16, Vec4i},
	DictionaryArrayID: {"dictionary[]", true, 0, Dictionary},
}

// TypeName returns the canonical type name for id, or "" if unknown.
func (id TypeId) TypeName() string {
	if info, ok := registry[id]; ok {
		return info.name
	}
	return ""
}

// IsArray reports whether id denotes an array kind.
func (id TypeId) IsArray() bool {
	return registry[id].isArray
}

// ElementSize returns the byte size of one scalar element of id (for
// array kinds, the size of one element; for scalar kinds, the size of
// the whole value). 0 means variable-size (strings, dictionaries...).
func (id TypeId) ElementSize() int {
	return registry[id].size
}

// ScalarTypeId returns the scalar TypeId backing an array kind, or
// Invalid if id is not an array kind.
func (id TypeId) ScalarTypeId() TypeId {
	return registry[id].scalarOf
}

// Lerpable reports whether time-sample interpolation may linearly
// interpolate values of this kind, per §4.1's LERP support predicate.
// Non-lerpable kinds always degrade to Held interpolation.
//
// Array kinds are lerpable element-wise ("their arrays of equal
// length", §4.1) exactly for the element types tinyprim.Lerp actually
// implements. Half-precision and Matrix2d/Matrix3d arrays are left out
// here even though their scalar counterparts appear above: no
// concrete Go representation for them exists anywhere in this port
// (no Half type, and nothing ever constructs a []tinymath.Matrix3d),
// so claiming them lerpable would be an unreachable, untestable
// promise rather than an honest one.
func (id TypeId) Lerpable() bool {
	switch id {
	case Float, Double, Half,
		Vec2f, Vec3f, Vec4f, Vec2d, Vec3d, Vec4d, Vec2h, Vec3h, Vec4h,
		Quatf, Quatd, Quath,
		Matrix2d, Matrix3d, Matrix4d,
		FloatArrayID, DoubleArrayID,
		Vec2fArrayID, Vec3fArrayID, Vec4fArrayID,
		Vec2dArrayID, Vec3dArrayID, Vec4dArrayID,
		QuatfArrayID, QuatdArrayID,
		Matrix4dArrayID:
		return true
	default:
		return false
	}
}

// TypeByName resolves a canonical type name back to a TypeId, used by
// the USDA parser when it reads a typed property declaration like
// `float3 points`.
func TypeByName(name string) (TypeId, bool) {
	for id, info := range registry {
		if info.name == name {
			return id, true
		}
	}
	return Invalid, false
}
