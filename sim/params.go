package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/config"
)

// ForceModel selects the pairwise interaction the kernel applies.
type ForceModel int32

const (
	ForceNone ForceModel = iota
	ForceInfluence
	ForceStiffness
	ForceLennardJones
)

func (m ForceModel) String() string {
	switch m {
	case ForceNone:
		return config.ForceNone
	case ForceInfluence:
		return config.ForceInfluence
	case ForceStiffness:
		return config.ForceStiffness
	case ForceLennardJones:
		return config.ForceLennardJones
	default:
		return fmt.Sprintf("ForceModel(%d)", int32(m))
	}
}

// ParseForceModel maps a config name to a ForceModel.
func ParseForceModel(name string) (ForceModel, error) {
	switch name {
	case config.ForceNone:
		return ForceNone, nil
	case config.ForceInfluence:
		return ForceInfluence, nil
	case config.ForceStiffness:
		return ForceStiffness, nil
	case config.ForceLennardJones:
		return ForceLennardJones, nil
	}
	return ForceNone, fmt.Errorf("%w: forces.model %q", config.ErrInvalid, name)
}

// Params is the static parameter set pushed to the kernel and material on Init.
type Params struct {
	ParticleRadius   float32
	CollisionDamping float32
	Gravity          float32
	BoundsSize       mgl32.Vec2
	ObstacleSize     mgl32.Vec2
	ObstacleCentre   mgl32.Vec2

	Model           ForceModel
	ForceCutoff     float32
	InfluenceRadius float32
	ForceMultiplier float32
	Stiffness       float32
	Sigma           float32
	Epsilon         float32

	// Substeps splits each frame's delta-time into this many dispatches.
	Substeps int

	// MaxSpeed is the speed the material maps to the hottest colour.
	MaxSpeed float32
}

// ParamsFromConfig builds Params from the loaded config.
func ParamsFromConfig(cfg *config.Config) (Params, error) {
	model, err := ParseForceModel(cfg.Forces.Model)
	if err != nil {
		return Params{}, err
	}
	return Params{
		ParticleRadius:   cfg.Particle.Radius,
		CollisionDamping: cfg.Physics.CollisionDamping,
		Gravity:          cfg.Physics.Gravity,
		BoundsSize:       cfg.Physics.BoundsSize,
		ObstacleSize:     cfg.Physics.ObstacleSize,
		ObstacleCentre:   cfg.Physics.ObstacleCentre,
		Model:            model,
		ForceCutoff:      cfg.Forces.Cutoff,
		InfluenceRadius:  cfg.Forces.InfluenceRadius,
		ForceMultiplier:  cfg.Forces.Multiplier,
		Stiffness:        cfg.Forces.Stiffness,
		Sigma:            cfg.Forces.Sigma,
		Epsilon:          cfg.Forces.Epsilon,
		Substeps:         cfg.Physics.Substeps,
		MaxSpeed:         cfg.Render.MaxSpeed,
	}, nil
}

// apply pushes the static parameters into k.
func (p Params) apply(k Kernel, particleCount int) {
	k.SetInt(UniParticleCount, int32(particleCount))
	k.SetFloat(UniParticleRadius, p.ParticleRadius)
	k.SetFloat(UniCollisionDamp, p.CollisionDamping)
	k.SetFloat(UniGravity, p.Gravity)
	k.SetVector(UniBoundsSize, p.BoundsSize)
	k.SetVector(UniObstacleSize, p.ObstacleSize)
	k.SetVector(UniObstacleCentre, p.ObstacleCentre)
	k.SetInt(UniForceModel, int32(p.Model))
	k.SetFloat(UniForceCutoff, p.ForceCutoff)
	k.SetFloat(UniInfluenceRadius, p.InfluenceRadius)
	k.SetFloat(UniForceMultiplier, p.ForceMultiplier)
	k.SetFloat(UniStiffness, p.Stiffness)
	k.SetFloat(UniLJSigma, p.Sigma)
	k.SetFloat(UniLJEpsilon, p.Epsilon)
}
