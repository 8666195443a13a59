package cpu

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/particles/sim"
)

// parallelThreshold is the minimum particle count for the force pass to fan
// out across workers. Below this the goroutine overhead dominates.
const parallelThreshold = 256

// Neighbour grid cell budget. Sparse arenas get coarser cells instead of
// allocating memory proportional to (bounds/cutoff)^2.
const (
	minGridCells         = 4096
	gridCellsPerParticle = 4
)

// ljMinFactor clamps the Lennard-Jones distance below at this multiple of sigma.
const ljMinFactor = 0.8

// ErrUnbound is returned by Dispatch when a required buffer was never bound.
var ErrUnbound = errors.New("cpu: kernel buffer not bound")

// Kernel is the Go implementation of CSMain. Uniforms and buffers are set by
// name; unknown uniform names are ignored.
type Kernel struct {
	count          int32
	dt             float32
	radius         float32
	damping        float32
	gravity        float32
	bounds         mgl32.Vec2
	obstacleSize   mgl32.Vec2
	obstacleCentre mgl32.Vec2

	model           sim.ForceModel
	cutoff          float32
	influenceRadius float32
	multiplier      float32
	stiffness       float32
	sigma           float32
	epsilon         float32

	positions  *Buffer
	velocities *Buffer

	grid      *SpatialGrid
	gridKey   [4]float32
	accel     []mgl32.Vec3
	scratches [][]Neighbor
	workers   int
}

// NewKernel creates a kernel with every uniform zeroed.
func NewKernel() *Kernel {
	workers := runtime.GOMAXPROCS(0)
	scratches := make([][]Neighbor, workers)
	for i := range scratches {
		scratches[i] = make([]Neighbor, 0, MaxQueryResults)
	}
	return &Kernel{workers: workers, scratches: scratches}
}

func (k *Kernel) SetInt(name string, v int32) {
	switch name {
	case sim.UniParticleCount:
		k.count = v
	case sim.UniForceModel:
		k.model = sim.ForceModel(v)
	}
}

func (k *Kernel) SetFloat(name string, v float32) {
	switch name {
	case sim.UniDeltaTime:
		k.dt = v
	case sim.UniParticleRadius:
		k.radius = v
	case sim.UniCollisionDamp:
		k.damping = v
	case sim.UniGravity:
		k.gravity = v
	case sim.UniForceCutoff:
		k.cutoff = v
	case sim.UniInfluenceRadius:
		k.influenceRadius = v
	case sim.UniForceMultiplier:
		k.multiplier = v
	case sim.UniStiffness:
		k.stiffness = v
	case sim.UniLJSigma:
		k.sigma = v
	case sim.UniLJEpsilon:
		k.epsilon = v
	}
}

func (k *Kernel) SetVector(name string, v mgl32.Vec2) {
	switch name {
	case sim.UniBoundsSize:
		k.bounds = v
	case sim.UniObstacleSize:
		k.obstacleSize = v
	case sim.UniObstacleCentre:
		k.obstacleCentre = v
	}
}

// SetBuffer binds a host buffer created by this package's Device.
func (k *Kernel) SetBuffer(name string, b sim.Buffer) error {
	hb, ok := b.(*Buffer)
	if !ok {
		return fmt.Errorf("cpu: cannot bind %T as %s", b, name)
	}
	if hb.kind != sim.BufferStructured {
		return fmt.Errorf("%w: %s needs a structured buffer, got %s", sim.ErrBufferSize, name, hb.kind)
	}
	switch name {
	case sim.BufPositions:
		k.positions = hb
	case sim.BufVelocities:
		k.velocities = hb
	default:
		return fmt.Errorf("%w: %q", sim.ErrUnknownBinding, name)
	}
	return nil
}

// Dispatch runs one integration step over the particles covered by the
// requested work groups.
func (k *Kernel) Dispatch(groupsX, groupsY, groupsZ int) error {
	if groupsX < 1 || groupsY < 1 || groupsZ < 1 {
		return fmt.Errorf("cpu: invalid dispatch %dx%dx%d", groupsX, groupsY, groupsZ)
	}
	if k.positions == nil || k.velocities == nil {
		return ErrUnbound
	}
	if k.positions.released || k.velocities.released {
		return sim.ErrReleased
	}

	pos := k.positions.vec3
	vel := k.velocities.vec3

	total := min(int(k.count), len(pos), len(vel))
	if total <= 0 {
		return nil
	}
	n := min(groupsX*groupsY*groupsZ*sim.ThreadGroupSize, total)

	if cap(k.accel) < total {
		k.accel = make([]mgl32.Vec3, total)
	}
	accel := k.accel[:n]

	if err := k.computeForces(pos[:total], accel); err != nil {
		return err
	}

	// Semi-implicit Euler: v += a*dt, then p += v*dt.
	av := flatten(accel)
	vv := flatten(vel[:n])
	pv := flatten(pos[:n])
	blas32.Axpy(k.dt, av, vv)
	blas32.Axpy(k.dt, vv, pv)

	for i := 0; i < n; i++ {
		k.collide(&pos[i], &vel[i])
	}
	return nil
}

// computeForces fills accel[i] for every i < len(accel). All reads come from
// pos, which is not written until every acceleration is known.
func (k *Kernel) computeForces(pos, accel []mgl32.Vec3) error {
	base := mgl32.Vec3{0, k.gravity, 0}
	if k.model == sim.ForceNone || k.cutoff <= 0 {
		for i := range accel {
			accel[i] = base
		}
		return nil
	}

	grid := k.buildGrid(pos)

	if len(accel) < parallelThreshold || k.workers < 2 {
		k.forceRange(grid, pos, accel, 0, len(accel), 0, base)
		return nil
	}

	chunk := (len(accel) + k.workers - 1) / k.workers
	var g errgroup.Group
	for w := 0; w < k.workers; w++ {
		start := w * chunk
		if start >= len(accel) {
			break
		}
		end := min(start+chunk, len(accel))
		g.Go(func() error {
			k.forceRange(grid, pos, accel, start, end, w, base)
			return nil
		})
	}
	return g.Wait()
}

func (k *Kernel) forceRange(grid *SpatialGrid, pos, accel []mgl32.Vec3, start, end, worker int, base mgl32.Vec3) {
	scratch := k.scratches[worker]
	for i := start; i < end; i++ {
		a := base
		p := pos[i]
		scratch = grid.QueryRadiusInto(scratch[:0], p.X(), p.Y(), k.cutoff, int32(i), pos)
		for _, nb := range scratch {
			if nb.DistSq == 0 {
				continue
			}
			r := float32(math.Sqrt(float64(nb.DistSq)))
			f := k.PairForce(r)
			if f == 0 {
				continue
			}
			// Positive f pushes i away from j.
			a[0] -= nb.DX / r * f
			a[1] -= nb.DY / r * f
		}
		accel[i] = a
	}
	k.scratches[worker] = scratch
}

// PairForce returns the scalar force between two particles r apart. Positive
// values are repulsive.
func (k *Kernel) PairForce(r float32) float32 {
	switch k.model {
	case sim.ForceInfluence:
		if r >= k.influenceRadius {
			return 0
		}
		return k.multiplier * (1 - r/k.influenceRadius)
	case sim.ForceStiffness:
		overlap := 2*k.radius - r
		if overlap <= 0 {
			return 0
		}
		return k.stiffness * overlap
	case sim.ForceLennardJones:
		rc := max(r, ljMinFactor*k.sigma)
		s := k.sigma / rc
		sr6 := s * s * s * s * s * s
		return 24 * k.epsilon / rc * (2*sr6*sr6 - sr6)
	}
	return 0
}

// gridCells returns the cell budget of the neighbour grid for n particles.
func gridCells(n int) int {
	return max(minGridCells, gridCellsPerParticle*n)
}

// buildGrid rebuilds the neighbour grid from pos, reallocating only when the
// bounds, cutoff or particle count change.
func (k *Kernel) buildGrid(pos []mgl32.Vec3) *SpatialGrid {
	key := [4]float32{k.bounds.X(), k.bounds.Y(), k.cutoff, float32(len(pos))}
	if k.grid == nil || key != k.gridKey {
		k.grid = NewSpatialGrid(k.bounds.X(), k.bounds.Y(), k.cutoff, gridCells(len(pos)))
		k.gridKey = key
	}
	k.grid.Clear()
	for i, p := range pos {
		k.grid.Insert(int32(i), p.X(), p.Y())
	}
	return k.grid
}

// collide resolves bounds and obstacle contacts for one particle.
func (k *Kernel) collide(p, v *mgl32.Vec3) {
	for axis := 0; axis < 2; axis++ {
		half := k.bounds[axis]/2 - k.radius
		if abs(p[axis]) > half {
			p[axis] = half * sign(p[axis])
			v[axis] *= -k.damping
		}
	}

	halfObs := k.obstacleSize.Mul(0.5)
	var pen [2]float32
	for axis := 0; axis < 2; axis++ {
		d := p[axis] - k.obstacleCentre[axis]
		pen[axis] = halfObs[axis] + k.radius - abs(d)
		if pen[axis] <= 0 {
			return
		}
	}

	axis := 0
	if pen[1] < pen[0] {
		axis = 1
	}
	d := p[axis] - k.obstacleCentre[axis]
	p[axis] = k.obstacleCentre[axis] + (halfObs[axis]+k.radius)*sign(d)
	v[axis] *= -k.damping
}

// flatten views a Vec3 slice as a contiguous float32 vector.
func flatten(s []mgl32.Vec3) blas32.Vector {
	if len(s) == 0 {
		return blas32.Vector{N: 0, Inc: 1}
	}
	data := unsafe.Slice(&s[0][0], 3*len(s))
	return blas32.Vector{N: len(data), Data: data, Inc: 1}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// sign returns -1 for negative x and 1 otherwise.
func sign(x float32) float32 {
	if x < 0 {
		return -1
	}
	return 1
}
