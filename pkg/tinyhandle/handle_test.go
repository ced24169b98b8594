package tinyhandle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorHandsOutMonotonicHandles(t *testing.T) {
	a := NewAllocator()

	h1, ok := a.Allocate()
	require.True(t, ok)
	assert.Equal(t, Handle(1), h1)

	h2, ok := a.Allocate()
	require.True(t, ok)
	assert.Equal(t, Handle(2), h2)
}

func TestAllocatorNeverHandsOutInvalid(t *testing.T) {
	a := NewAllocator()
	h, ok := a.Allocate()
	require.True(t, ok)
	assert.NotEqual(t, Invalid, h)
}

func TestReleaseMostRecentRewindsCounter(t *testing.T) {
	a := NewAllocator()
	h1, _ := a.Allocate()
	h2, _ := a.Allocate()

	require.True(t, a.Release(h2))

	h3, ok := a.Allocate()
	require.True(t, ok)
	assert.Equal(t, h2, h3, "releasing the most recent handle should rewind and reissue it")
	assert.NotEqual(t, h1, h3)
}

func TestReleaseNonRecentGoesToFreeList(t *testing.T) {
	a := NewAllocator()
	h1, _ := a.Allocate()
	h2, _ := a.Allocate()
	h3, _ := a.Allocate()

	require.True(t, a.Release(h1))

	// h3 is still the most recently allocated handle, so the next
	// Allocate recycles h1 from the free list instead of rewinding.
	next, ok := a.Allocate()
	require.True(t, ok)
	assert.Equal(t, h1, next)

	_ = h2
	_ = h3
}

func TestReleaseInvalidHandleFails(t *testing.T) {
	a := NewAllocator()
	assert.False(t, a.Release(Invalid))
}

func TestAllocatorRecyclesAcrossManyReleases(t *testing.T) {
	a := NewAllocator()
	var handles []Handle
	for i := 0; i < 10; i++ {
		h, ok := a.Allocate()
		require.True(t, ok)
		handles = append(handles, h)
	}

	for _, h := range handles {
		require.True(t, a.Release(h))
	}

	seen := map[Handle]bool{}
	for i := 0; i < 10; i++ {
		h, ok := a.Allocate()
		require.True(t, ok)
		assert.False(t, seen[h], "handle %d reissued twice", h)
		seen[h] = true
	}
}
