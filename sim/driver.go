// Package sim drives the particle simulation: it owns the device buffers,
// configures the compute kernel and issues one indirect draw per frame.
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/particles/mesh"
	"github.com/pthm-cable/particles/spawn"
)

// State is the driver lifecycle state.
type State uint8

const (
	Uninitialized State = iota
	Initialized
	Running
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

var (
	ErrNotInitialized = errors.New("sim: driver not initialized")
	ErrDestroyed      = errors.New("sim: driver destroyed")
	ErrAlreadyInit    = errors.New("sim: driver already initialized")
	ErrLengthMismatch = errors.New("sim: position and velocity lengths differ")
	ErrBadSubsteps    = errors.New("sim: substeps must be at least 1")
)

// Driver owns the particle buffers for its Initialized..Destroyed span.
type Driver struct {
	device   Device
	renderer Renderer
	params   Params
	logger   *slog.Logger

	state State

	positions  Buffer
	velocities Buffer
	argsBuf    Buffer
	kernel     Kernel
	mesh       *mesh.Mesh
	args       IndirectArgs

	particleCount int
	groups        int

	frames     uint64
	dispatches uint64
}

// NewDriver creates an uninitialized driver. A nil logger uses slog.Default().
func NewDriver(device Device, renderer Renderer, params Params, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		device:   device,
		renderer: renderer,
		params:   params,
		logger:   logger,
	}
}

// Init allocates the buffers, uploads the initial state and pushes the static
// parameters. On failure everything allocated so far is released and the
// driver stays Uninitialized.
func (d *Driver) Init(data spawn.InitialData, m *mesh.Mesh) (err error) {
	switch d.state {
	case Initialized, Running:
		return ErrAlreadyInit
	case Destroyed:
		return ErrDestroyed
	}
	if len(data.Positions) != len(data.Velocities) {
		return fmt.Errorf("%w: %d positions, %d velocities",
			ErrLengthMismatch, len(data.Positions), len(data.Velocities))
	}
	if d.params.Substeps < 1 {
		return fmt.Errorf("%w: got %d", ErrBadSubsteps, d.params.Substeps)
	}

	defer func() {
		if err != nil {
			d.release()
		}
	}()

	n := data.Len()

	if d.positions, err = d.device.NewBuffer(BufferStructured, n, Vec3Stride); err != nil {
		return fmt.Errorf("allocating position buffer: %w", err)
	}
	if d.velocities, err = d.device.NewBuffer(BufferStructured, n, Vec3Stride); err != nil {
		return fmt.Errorf("allocating velocity buffer: %w", err)
	}
	if err = d.positions.SetData(data.Positions); err != nil {
		return fmt.Errorf("uploading positions: %w", err)
	}
	if err = d.velocities.SetData(data.Velocities); err != nil {
		return fmt.Errorf("uploading velocities: %w", err)
	}

	if d.kernel, err = d.device.FindKernel(KernelName); err != nil {
		return fmt.Errorf("finding kernel %s: %w", KernelName, err)
	}
	d.params.apply(d.kernel, n)
	if err = d.kernel.SetBuffer(BufPositions, d.positions); err != nil {
		return fmt.Errorf("binding kernel positions: %w", err)
	}
	if err = d.kernel.SetBuffer(BufVelocities, d.velocities); err != nil {
		return fmt.Errorf("binding kernel velocities: %w", err)
	}

	d.args = NewIndirectArgs(m, n)
	if d.argsBuf, err = d.device.NewBuffer(BufferIndirectArgs, 1, IndirectArgsStride); err != nil {
		return fmt.Errorf("allocating indirect args buffer: %w", err)
	}
	if err = d.argsBuf.SetData([]IndirectArgs{d.args}); err != nil {
		return fmt.Errorf("uploading indirect args: %w", err)
	}

	if err = d.renderer.SetBuffer(BufPositions, d.positions); err != nil {
		return fmt.Errorf("binding material positions: %w", err)
	}
	if err = d.renderer.SetBuffer(BufVelocities, d.velocities); err != nil {
		return fmt.Errorf("binding material velocities: %w", err)
	}
	d.renderer.SetFloat(UniMaxSpeed, d.params.MaxSpeed)

	d.mesh = m
	d.particleCount = n
	d.groups = ThreadGroups(n)
	d.state = Initialized

	d.logger.Info("simulation initialized",
		"particles", n,
		"groups", d.groups,
		"substeps", d.params.Substeps,
		"force_model", d.params.Model.String(),
		"mesh_indices", m.IndexCount(),
	)
	return nil
}

// Frame advances the simulation by dt split across the configured substeps
// and draws all particles once.
func (d *Driver) Frame(dt float32) error {
	switch d.state {
	case Uninitialized:
		return ErrNotInitialized
	case Destroyed:
		return ErrDestroyed
	}

	step := dt / float32(d.params.Substeps)
	d.kernel.SetFloat(UniDeltaTime, step)
	for i := 0; i < d.params.Substeps; i++ {
		if err := d.kernel.Dispatch(d.groups, 1, 1); err != nil {
			return fmt.Errorf("dispatching %s: %w", KernelName, err)
		}
		d.dispatches++
	}

	if err := d.renderer.DrawIndirect(d.mesh, d.argsBuf); err != nil {
		return fmt.Errorf("drawing particles: %w", err)
	}

	d.frames++
	d.state = Running
	return nil
}

// Redraw issues the indirect draw without advancing the simulation.
func (d *Driver) Redraw() error {
	switch d.state {
	case Uninitialized:
		return ErrNotInitialized
	case Destroyed:
		return ErrDestroyed
	}
	if err := d.renderer.DrawIndirect(d.mesh, d.argsBuf); err != nil {
		return fmt.Errorf("drawing particles: %w", err)
	}
	return nil
}

// Shutdown releases every buffer. It is safe to call in any state and more
// than once.
func (d *Driver) Shutdown() {
	if d.state == Destroyed {
		return
	}
	d.release()
	d.logger.Info("simulation shut down", "frames", d.frames, "dispatches", d.dispatches)
	d.state = Destroyed
}

func (d *Driver) release() {
	for _, b := range []*Buffer{&d.positions, &d.velocities, &d.argsBuf} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
	d.kernel = nil
}

// SetSubsteps changes how many dispatches split each subsequent frame.
func (d *Driver) SetSubsteps(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrBadSubsteps, n)
	}
	d.params.Substeps = n
	return nil
}

// State returns the lifecycle state.
func (d *Driver) State() State { return d.state }

// ParticleCount returns the number of particles the buffers were sized for.
func (d *Driver) ParticleCount() int { return d.particleCount }

// Args returns the indirect draw arguments built on Init.
func (d *Driver) Args() IndirectArgs { return d.args }

// Params returns the static parameters.
func (d *Driver) Params() Params { return d.params }

// Frames returns the number of completed frames.
func (d *Driver) Frames() uint64 { return d.frames }

// Dispatches returns the number of kernel dispatches issued.
func (d *Driver) Dispatches() uint64 { return d.dispatches }

// Buffers exposes the position and velocity buffers, nil outside the
// Initialized..Running span.
func (d *Driver) Buffers() (positions, velocities Buffer) {
	return d.positions, d.velocities
}
