package gpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/particles/sim"
)

func TestComputeSourceDeclaresUniforms(t *testing.T) {
	names := []string{
		sim.BufPositions, sim.BufVelocities,
		sim.UniParticleCount, sim.UniDeltaTime, sim.UniParticleRadius,
		sim.UniCollisionDamp, sim.UniGravity, sim.UniBoundsSize,
		sim.UniObstacleSize, sim.UniObstacleCentre, sim.UniForceModel,
		sim.UniForceCutoff, sim.UniInfluenceRadius, sim.UniForceMultiplier,
		sim.UniStiffness, sim.UniLJSigma, sim.UniLJEpsilon,
	}
	for _, name := range names {
		assert.Contains(t, computeSource, name)
	}
	assert.Contains(t, computeSource, "local_size_x = 64")
}

func TestMaterialSourcesShareBindings(t *testing.T) {
	for _, src := range []string{computeSource, vertexSource} {
		assert.Contains(t, src, "binding = 0) ")
		assert.Contains(t, src, "binding = 1) ")
	}
	assert.Equal(t, uint32(0), storageBindings[sim.BufPositions])
	assert.Equal(t, uint32(1), storageBindings[sim.BufVelocities])

	assert.Contains(t, vertexSource, sim.UniMaxSpeed)
	assert.Contains(t, vertexSource, UniViewProj)
}

func TestSourcesTargetGL43(t *testing.T) {
	for stage, src := range Sources() {
		assert.True(t, strings.HasPrefix(src, "#version 430"), "%s stage version", stage)
	}
}
