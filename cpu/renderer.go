package cpu

import (
	"fmt"

	"github.com/pthm-cable/particles/mesh"
	"github.com/pthm-cable/particles/sim"
)

// CountingRenderer records draw calls instead of rasterising. Headless runs
// use it so the driver exercises its full frame path.
type CountingRenderer struct {
	positions  *Buffer
	velocities *Buffer
	maxSpeed   float32

	Draws     int
	Instances uint64
	LastArgs  sim.IndirectArgs
}

// NewCountingRenderer creates an empty renderer.
func NewCountingRenderer() *CountingRenderer {
	return &CountingRenderer{}
}

func (r *CountingRenderer) SetBuffer(name string, b sim.Buffer) error {
	hb, ok := b.(*Buffer)
	if !ok {
		return fmt.Errorf("cpu: cannot bind %T as %s", b, name)
	}
	switch name {
	case sim.BufPositions:
		r.positions = hb
	case sim.BufVelocities:
		r.velocities = hb
	default:
		return fmt.Errorf("%w: %q", sim.ErrUnknownBinding, name)
	}
	return nil
}

func (r *CountingRenderer) SetFloat(name string, v float32) {
	if name == sim.UniMaxSpeed {
		r.maxSpeed = v
	}
}

// DrawIndirect validates the bindings against the args record and counts the draw.
func (r *CountingRenderer) DrawIndirect(m *mesh.Mesh, args sim.Buffer) error {
	ab, ok := args.(*Buffer)
	if !ok || ab.kind != sim.BufferIndirectArgs {
		return fmt.Errorf("%w: draw needs an indirect args buffer", sim.ErrBufferSize)
	}
	if ab.released {
		return sim.ErrReleased
	}
	if len(ab.args) == 0 {
		return fmt.Errorf("%w: empty indirect args buffer", sim.ErrBufferSize)
	}
	if r.positions == nil || r.velocities == nil {
		return ErrUnbound
	}

	a := ab.args[0]
	if a.IndexCountPerInstance != m.IndexCount() {
		return fmt.Errorf("%w: args index count %d, mesh has %d",
			sim.ErrBufferSize, a.IndexCountPerInstance, m.IndexCount())
	}
	if int(a.InstanceCount) > r.positions.count {
		return fmt.Errorf("%w: %d instances for %d positions",
			sim.ErrBufferSize, a.InstanceCount, r.positions.count)
	}

	r.Draws++
	r.Instances += uint64(a.InstanceCount)
	r.LastArgs = a
	return nil
}

// MaxSpeed returns the colour-scale speed last set on the material.
func (r *CountingRenderer) MaxSpeed() float32 { return r.maxSpeed }
