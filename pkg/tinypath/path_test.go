package tinypath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{"/", "/a", "/a/b", "/a/b.points", ".points", "a/b"}
	for _, s := range cases {
		p, ok := Parse(s)
		require.True(t, ok, s)
		assert.Equal(t, s, p.String(), s)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []string{"", "/a.b.c", "/a/.prop", "/a{sel=red}", "/1a", "/a//b"}
	for _, s := range cases {
		_, ok := Parse(s)
		assert.False(t, ok, s)
	}
}

func TestAppendPrimAndProperty(t *testing.T) {
	root := MustParse("/X")
	child, ok := root.AppendPrim("C")
	require.True(t, ok)
	assert.Equal(t, "/X/C", child.String())

	attr, ok := child.AppendProperty("primvars:st")
	require.True(t, ok)
	assert.Equal(t, "/X/C.primvars:st", attr.String())
}

func TestSplitAtRoot(t *testing.T) {
	p := MustParse("/a/b/c")
	first, rest, ok := p.SplitAtRoot()
	require.True(t, ok)
	assert.Equal(t, "/a", first.String())
	assert.Equal(t, "b/c", rest)
}

func TestParentPrimPath(t *testing.T) {
	p := MustParse("/a/b/c")
	parent, ok := p.ParentPrimPath()
	require.True(t, ok)
	assert.Equal(t, "/a/b", parent.String())

	root := MustParse("/")
	_, ok = root.ParentPrimPath()
	assert.False(t, ok)
}

func TestLessThan(t *testing.T) {
	a := MustParse("/a/b")
	b := MustParse("/a/c")
	assert.True(t, LessThan(a, b))
	assert.False(t, LessThan(b, a))

	rel := MustParse("a/b")
	assert.False(t, LessThan(a, rel))
}

func TestJoin(t *testing.T) {
	root := MustParse("/X")
	rel := MustParse("C.points")
	joined, ok := Join(root, rel)
	require.True(t, ok)
	assert.Equal(t, "/X/C.points", joined.String())
}
