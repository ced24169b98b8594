package crate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyprim"
	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

// buildSyntheticCrate assembles a minimal but complete in-memory
// Crate file: pseudoroot + /World (Xform) + /World/Cube (Cube), with
// a typeName field on each real prim.
func buildSyntheticCrate(t *testing.T) []byte {
	t.Helper()

	tokens := []string{"World", "Cube", "typeName", "Xform"}
	tokensSec := WriteTokens(tokens)

	fields := []FieldValuePair{
		{TokenIndex: 2, Value: MakeValueRep(tinyvalue.Token, false, true, false, 3)}, // typeName -> "Xform"
		{TokenIndex: 2, Value: MakeValueRep(tinyvalue.Token, false, true, false, 1)}, // typeName -> "Cube"
	}
	fieldsSec := WriteFields(fields)

	fieldSets := [][]int32{{0}, {1}}
	fieldSetsSec := WriteFieldSets(fieldSets)

	pathsSec := WritePaths(
		[]int32{-1, 0, 1},
		[]int32{0, 0, 1}, // root's element token is unused; World=tok0, Cube=tok1
	)

	specs := []Spec{
		{PathIndex: 0, FieldSetIndex: -1, Type: SpecTypePseudoRoot},
		{PathIndex: 1, FieldSetIndex: 0, Type: SpecTypePrim},
		{PathIndex: 2, FieldSetIndex: 1, Type: SpecTypePrim},
	}
	specsSec := WriteSpecs(specs)

	body := append([]byte{}, bootstrapPlaceholder()...)
	sections := []struct {
		name string
		data []byte
	}{
		{SectionTokens, tokensSec},
		{SectionFields, fieldsSec},
		{SectionFieldSets, fieldSetsSec},
		{SectionPaths, pathsSec},
		{SectionSpecs, specsSec},
	}

	var toc TOC
	for _, s := range sections {
		start := int64(len(body))
		body = append(body, s.data...)
		toc.Sections = append(toc.Sections, SectionInfo{Name: s.name, Start: start, Size: int64(len(s.data))})
	}

	tocOffset := int64(len(body))
	body = append(body, WriteTOC(toc)...)

	boot := Bootstrap{VersionMajor: 0, VersionMinor: 8, VersionPatch: 0, TOCOffset: tocOffset}
	copy(body[0:bootstrapSize], WriteBootstrap(boot))
	return body
}

func bootstrapPlaceholder() []byte {
	return make([]byte, bootstrapSize)
}

func TestReaderParsesBootstrapAndTOC(t *testing.T) {
	data := buildSyntheticCrate(t)
	r, err := NewReader(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(8), r.Bootstrap.VersionMinor)
	assert.Len(t, r.Tokens, 4)
	assert.Len(t, r.Specs, 3)
}

func TestReaderBuildLayerReconstructsPrimTree(t *testing.T) {
	data := buildSyntheticCrate(t)
	r, err := NewReader(data)
	require.NoError(t, err)

	roots, err := r.BuildLayer()
	require.NoError(t, err)
	require.Len(t, roots, 1)

	world := roots[0]
	assert.Equal(t, "World", world.ElementName)
	assert.Equal(t, "Xform", world.SchemaName)
	assert.Equal(t, "/World", world.AbsPath())
	require.Len(t, world.Children, 1)

	cube := world.Children[0]
	assert.Equal(t, "Cube", cube.ElementName)
	assert.Equal(t, "Cube", cube.SchemaName)
	assert.Equal(t, "/World/Cube", cube.AbsPath())
}

func TestReaderRejectsBadMagic(t *testing.T) {
	data := buildSyntheticCrate(t)
	data[0] = 'X'
	_, err := NewReader(data)
	assert.Error(t, err)
}

func TestReaderRejectsFutureVersion(t *testing.T) {
	data := buildSyntheticCrate(t)
	data[8] = 99
	_, err := NewReader(data)
	assert.Error(t, err)
}

// buildCrateForValueTests assembles a minimal crate file (just a
// TOKENS section and a TOC) with payload embedded right after the
// TOKENS section, returning the Reader and payload's absolute byte
// offset for use as a ValueRep's out-of-line payload.
func buildCrateForValueTests(t *testing.T, tokens []string, payload []byte) (*Reader, int) {
	t.Helper()

	tokensSec := WriteTokens(tokens)
	body := append([]byte{}, bootstrapPlaceholder()...)

	var toc TOC
	start := int64(len(body))
	body = append(body, tokensSec...)
	toc.Sections = append(toc.Sections, SectionInfo{Name: SectionTokens, Start: start, Size: int64(len(tokensSec))})

	payloadOffset := len(body)
	body = append(body, payload...)

	tocOffset := int64(len(body))
	body = append(body, WriteTOC(toc)...)

	boot := Bootstrap{VersionMajor: 0, VersionMinor: 8, VersionPatch: 0, TOCOffset: tocOffset}
	copy(body[0:bootstrapSize], WriteBootstrap(boot))

	r, err := NewReader(body)
	require.NoError(t, err)
	return r, payloadOffset
}

func TestReaderDecodesOutOfLineDoubleScalar(t *testing.T) {
	r, off := buildCrateForValueTests(t, nil, WriteOutOfLineDouble(3.25))

	v := MakeValueRep(tinyvalue.Double, false, false, false, uint64(off))
	val, err := r.ReadValue(v)
	require.NoError(t, err)
	d, ok := tinyvalue.As[float64](val)
	require.True(t, ok)
	assert.InDelta(t, 3.25, d, 1e-9)
}

func TestReaderDecodesOutOfLineString(t *testing.T) {
	r, off := buildCrateForValueTests(t, nil, WriteOutOfLineString("hello crate"))

	v := MakeValueRep(tinyvalue.String, false, false, false, uint64(off))
	val, err := r.ReadValue(v)
	require.NoError(t, err)
	s, ok := tinyvalue.As[string](val)
	require.True(t, ok)
	assert.Equal(t, "hello crate", s)
}

func TestReaderDecodesBoolArray(t *testing.T) {
	r, off := buildCrateForValueTests(t, nil, WriteArrayBool([]bool{true, false, true, true, false, false, false, true, true}))

	v := MakeValueRep(tinyvalue.Bool, true, false, false, uint64(off))
	val, err := r.ReadValue(v)
	require.NoError(t, err)
	out, ok := tinyvalue.As[[]bool](val)
	require.True(t, ok)
	assert.Equal(t, []bool{true, false, true, true, false, false, false, true, true}, out)
}

func TestReaderDecodesIntArray(t *testing.T) {
	r, off := buildCrateForValueTests(t, nil, WriteIntCodedArray([]int64{1, 2, 3, 4, -5, 100}))

	v := MakeValueRep(tinyvalue.Int, true, false, false, uint64(off))
	val, err := r.ReadValue(v)
	require.NoError(t, err)
	out, ok := tinyvalue.As[[]int32](val)
	require.True(t, ok)
	assert.Equal(t, []int32{1, 2, 3, 4, -5, 100}, out)
}

func TestReaderDecodesTokenArray(t *testing.T) {
	tokens := []string{"foo", "bar", "baz"}
	r, off := buildCrateForValueTests(t, tokens, WriteIntCodedArray([]int64{0, 1, 2, 1}))

	v := MakeValueRep(tinyvalue.Token, true, false, false, uint64(off))
	val, err := r.ReadValue(v)
	require.NoError(t, err)
	out, ok := tinyvalue.As[[]tinyvalue.Token](val)
	require.True(t, ok)
	require.Len(t, out, 4)
	assert.Equal(t, "foo", out[0].String())
	assert.Equal(t, "bar", out[1].String())
	assert.Equal(t, "baz", out[2].String())
	assert.Equal(t, "bar", out[3].String())
}

func TestReaderDecodesVec3fArray(t *testing.T) {
	points := []tinymath.Vec3f{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	r, off := buildCrateForValueTests(t, nil, WriteArrayVec3f(points))

	v := MakeValueRep(tinyvalue.Vec3f, true, false, false, uint64(off))
	val, err := r.ReadValue(v)
	require.NoError(t, err)
	out, ok := tinyvalue.As[[]tinymath.Vec3f](val)
	require.True(t, ok)
	assert.Equal(t, points, out)
}

func TestReaderDecodesStringArray(t *testing.T) {
	r, off := buildCrateForValueTests(t, nil, WriteArrayString([]string{"a", "bb", "ccc"}))

	v := MakeValueRep(tinyvalue.String, true, false, false, uint64(off))
	val, err := r.ReadValue(v)
	require.NoError(t, err)
	out, ok := tinyvalue.As[[]string](val)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "bb", "ccc"}, out)
}

func TestReaderDecodesNestedDictionary(t *testing.T) {
	tokens := []string{"inner", "outer"}
	innerPayload := WriteOutOfLineDouble(9.5)
	// Build the two payload blobs back to back and resolve offsets by
	// hand, since DictEntry values need a ValueRep pointing at the
	// inner dictionary's own payload.
	tokensSec := WriteTokens(tokens)
	body := append([]byte{}, bootstrapPlaceholder()...)
	var toc TOC
	start := int64(len(body))
	body = append(body, tokensSec...)
	toc.Sections = append(toc.Sections, SectionInfo{Name: SectionTokens, Start: start, Size: int64(len(tokensSec))})

	innerOff := len(body)
	body = append(body, innerPayload...)

	innerDict := WriteDictionary([]DictEntry{
		{TokenIndex: 0, Value: MakeValueRep(tinyvalue.Double, false, false, false, uint64(innerOff))},
	})
	outerDictInnerOff := len(body)
	body = append(body, innerDict...)

	outerDict := WriteDictionary([]DictEntry{
		{TokenIndex: 1, Value: MakeValueRep(tinyvalue.Dictionary, false, false, false, uint64(outerDictInnerOff))},
	})
	outerOff := len(body)
	body = append(body, outerDict...)

	tocOffset := int64(len(body))
	body = append(body, WriteTOC(toc)...)
	boot := Bootstrap{VersionMajor: 0, VersionMinor: 8, VersionPatch: 0, TOCOffset: tocOffset}
	copy(body[0:bootstrapSize], WriteBootstrap(boot))

	r, err := NewReader(body)
	require.NoError(t, err)

	v := MakeValueRep(tinyvalue.Dictionary, false, false, false, uint64(outerOff))
	val, err := r.ReadValue(v)
	require.NoError(t, err)
	outer, ok := tinyvalue.As[*tinyvalue.Dict](val)
	require.True(t, ok)

	innerVal, ok := outer.Get("outer")
	require.True(t, ok)
	inner, ok := tinyvalue.As[*tinyvalue.Dict](innerVal)
	require.True(t, ok)

	leaf, ok := inner.Get("inner")
	require.True(t, ok)
	d, ok := tinyvalue.As[float64](leaf)
	require.True(t, ok)
	assert.InDelta(t, 9.5, d, 1e-9)
}

func TestReaderDecodesTimeSamples(t *testing.T) {
	body := append([]byte{}, bootstrapPlaceholder()...)
	tokensSec := WriteTokens(nil)
	var toc TOC
	start := int64(len(body))
	body = append(body, tokensSec...)
	toc.Sections = append(toc.Sections, SectionInfo{Name: SectionTokens, Start: start, Size: int64(len(tokensSec))})

	off0 := len(body)
	body = append(body, WriteOutOfLineDouble(10.0)...)
	off1 := len(body)
	body = append(body, WriteOutOfLineDouble(20.0)...)

	tsOff := len(body)
	body = append(body, WriteTimeSamples(
		[]float64{1.0, 2.0},
		[]ValueRep{
			MakeValueRep(tinyvalue.Double, false, false, false, uint64(off0)),
			MakeValueRep(tinyvalue.Double, false, false, false, uint64(off1)),
		},
	)...)

	tocOffset := int64(len(body))
	body = append(body, WriteTOC(toc)...)
	boot := Bootstrap{VersionMajor: 0, VersionMinor: 8, VersionPatch: 0, TOCOffset: tocOffset}
	copy(body[0:bootstrapSize], WriteBootstrap(boot))

	r, err := NewReader(body)
	require.NoError(t, err)

	v := MakeValueRep(tinyvalue.TimeSamplesType, false, false, false, uint64(tsOff))
	val, err := r.ReadValue(v)
	require.NoError(t, err)
	ts, ok := tinyvalue.As[tinyvalue.TimeSamples](val)
	require.True(t, ok)
	require.Equal(t, []float64{1.0, 2.0}, ts.Times)
	require.Len(t, ts.Values, 2)
	d0, _ := tinyvalue.As[float64](ts.Values[0])
	d1, _ := tinyvalue.As[float64](ts.Values[1])
	assert.InDelta(t, 10.0, d0, 1e-9)
	assert.InDelta(t, 20.0, d1, 1e-9)
}

// buildSyntheticCrateWithProperties extends buildSyntheticCrate with a
// time-sampled point3f[] attribute and a relationship on /World/Cube,
// exercising BuildLayer's SpecTypeProperty pass end-to-end.
func buildSyntheticCrateWithProperties(t *testing.T) []byte {
	t.Helper()

	tokens := []string{
		"World", "Cube", "typeName", "Xform", // 0-3
		"points", "point3f[]", "default", "timeSamples", "variability", "custom", // 4-9
		"material", "targetPaths", "interpolation", "vertex", // 10-13
	}
	tokensSec := WriteTokens(tokens)

	body := append([]byte{}, bootstrapPlaceholder()...)
	var toc TOC
	appendSection := func(name string, data []byte) {
		start := int64(len(body))
		body = append(body, data...)
		toc.Sections = append(toc.Sections, SectionInfo{Name: name, Start: start, Size: int64(len(data))})
	}
	appendSection(SectionTokens, tokensSec)

	pointsA := []tinymath.Vec3f{{0, 0, 0}, {1, 0, 0}}
	pointsB := []tinymath.Vec3f{{0, 0, 0}, {2, 0, 0}}
	offA := len(body)
	body = append(body, WriteArrayVec3f(pointsA)...)
	offB := len(body)
	body = append(body, WriteArrayVec3f(pointsB)...)
	tsOff := len(body)
	body = append(body, WriteTimeSamples(
		[]float64{0, 1},
		[]ValueRep{
			MakeValueRep(tinyvalue.Vec3f, true, false, false, uint64(offA)),
			MakeValueRep(tinyvalue.Vec3f, true, false, false, uint64(offB)),
		},
	)...)

	targetsOff := len(body)
	body = append(body, WritePathVector([]string{"/World/Looks/Mat"})...)

	fields := []FieldValuePair{
		{TokenIndex: 2, Value: MakeValueRep(tinyvalue.Token, false, true, false, 3)}, // World.typeName -> "Xform"
		{TokenIndex: 2, Value: MakeValueRep(tinyvalue.Token, false, true, false, 1)}, // Cube.typeName -> "Cube"
		{TokenIndex: 2, Value: MakeValueRep(tinyvalue.Token, false, true, false, 5)}, // points.typeName -> "point3f[]"
		{TokenIndex: 7, Value: MakeValueRep(tinyvalue.TimeSamplesType, false, false, false, uint64(tsOff))}, // points.timeSamples
		{TokenIndex: 12, Value: MakeValueRep(tinyvalue.Token, false, true, false, 13)}, // points.interpolation -> "vertex"
		{TokenIndex: 11, Value: MakeValueRep(tinyvalue.PathVector, false, false, false, uint64(targetsOff))}, // material.targetPaths
	}
	fieldsSec := WriteFields(fields)
	appendSection(SectionFields, fieldsSec)

	fieldSets := [][]int32{{0}, {1}, {2, 3, 4}, {5}}
	fieldSetsSec := WriteFieldSets(fieldSets)
	appendSection(SectionFieldSets, fieldSetsSec)

	pathsSec := WritePaths(
		[]int32{-1, 0, 1, 2, 2},
		[]int32{0, 0, 1, 4 | isPropertyElementFlag, 10 | isPropertyElementFlag},
	)
	appendSection(SectionPaths, pathsSec)

	specs := []Spec{
		{PathIndex: 0, FieldSetIndex: -1, Type: SpecTypePseudoRoot},
		{PathIndex: 1, FieldSetIndex: 0, Type: SpecTypePrim},
		{PathIndex: 2, FieldSetIndex: 1, Type: SpecTypePrim},
		{PathIndex: 3, FieldSetIndex: 2, Type: SpecTypeProperty},
		{PathIndex: 4, FieldSetIndex: 3, Type: SpecTypeProperty},
	}
	specsSec := WriteSpecs(specs)
	appendSection(SectionSpecs, specsSec)

	tocOffset := int64(len(body))
	body = append(body, WriteTOC(toc)...)
	boot := Bootstrap{VersionMajor: 0, VersionMinor: 8, VersionPatch: 0, TOCOffset: tocOffset}
	copy(body[0:bootstrapSize], WriteBootstrap(boot))
	return body
}

func TestReaderBuildLayerWiresProperties(t *testing.T) {
	data := buildSyntheticCrateWithProperties(t)
	r, err := NewReader(data)
	require.NoError(t, err)

	roots, err := r.BuildLayer()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	cube := roots[0].Children[0]
	require.Equal(t, "Cube", cube.ElementName)

	pointsProp, ok := cube.GetProperty("points")
	require.True(t, ok)
	require.Equal(t, tinyprim.PropertyAttribute, pointsProp.Kind)
	assert.Equal(t, "point3f[]", pointsProp.Attribute.TypeName)
	assert.Equal(t, "vertex", pointsProp.Attribute.Meta.Interpolation)
	require.True(t, pointsProp.Attribute.Var.HasTimeSamples())
	ts := pointsProp.Attribute.Var.TimeSamples()
	require.Len(t, ts.Times, 2)
	p0, ok := tinyvalue.As[[]tinymath.Vec3f](ts.Values[0])
	require.True(t, ok)
	assert.Equal(t, []tinymath.Vec3f{{0, 0, 0}, {1, 0, 0}}, p0)

	matProp, ok := cube.GetProperty("material")
	require.True(t, ok)
	require.Equal(t, tinyprim.PropertyRelationship, matProp.Kind)
	require.Len(t, matProp.Relationship.Targets, 1)
	assert.Equal(t, tinypath.MustParse("/World/Looks/Mat"), matProp.Relationship.Targets[0])
}
