package tydra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lighttransport/tinyusdz-go/pkg/tinypath"
)

func TestConvertSkelAnimationBuildsPerJointRotationTracks(t *testing.T) {
	s := mustCompose(t, `#usda 1.0
def SkelAnimation "Anim"
{
    uniform token[] joints = ["root", "root/arm"]
    quatf[] rotations.timeSamples = {
        0: [(0, 0, 0, 1), (0, 0, 0, 1)],
        10: [(0, 0, 0.7071, 0.7071), (0, 0, 0, 1)],
    }
}
`)
	prim, err := s.FindPrimAtPath(tinypath.MustParse("/Anim"))
	require.NoError(t, err)

	anim, err := ConvertSkelAnimation(s, prim)
	require.NoError(t, err)

	require.Len(t, anim.Joints, 2)
	assert.Equal(t, "root", anim.Joints[0].JointName)
	assert.Equal(t, "root/arm", anim.Joints[1].JointName)
	assert.Equal(t, []float64{0, 10}, anim.Joints[0].Times)
	require.Len(t, anim.Joints[0].Rotations, 2)
	assert.InDelta(t, 0.7071, anim.Joints[0].Rotations[1].Z, 1e-4)
	assert.InDelta(t, 0, anim.Joints[1].Rotations[1].Z, 1e-4)
}
