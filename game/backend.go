package game

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/cpu"
	"github.com/pthm-cable/particles/gpu"
	"github.com/pthm-cable/particles/sim"
)

// Backend names.
const (
	BackendCPU = "cpu"
	BackendGPU = "gl43"
)

var errUnknownBuffer = errors.New("game: buffer does not belong to the active backend")

// backend pairs a device with its renderer.
type backend struct {
	name     string
	device   sim.Device
	renderer sim.Renderer

	cpuDevice   *cpu.Device
	gpuDevice   *gpu.Device
	gpuRenderer *gpu.Renderer
}

// newCPUBackend runs the Go reference kernel and counts draws.
func newCPUBackend() *backend {
	dev := cpu.NewDevice()
	return &backend{
		name:      BackendCPU,
		device:    dev,
		renderer:  cpu.NewCountingRenderer(),
		cpuDevice: dev,
	}
}

// newGPUBackend loads GL into the current context and compiles the
// particle material.
func newGPUBackend() (*backend, error) {
	if err := gpu.Init(); err != nil {
		return nil, err
	}
	dev := gpu.NewDevice()
	r, err := gpu.NewRenderer()
	if err != nil {
		dev.Unload()
		return nil, err
	}
	return &backend{
		name:        BackendGPU,
		device:      dev,
		renderer:    r,
		gpuDevice:   dev,
		gpuRenderer: r,
	}, nil
}

// read copies a structured buffer into dst.
func (b *backend) read(buf sim.Buffer, dst []mgl32.Vec3) error {
	switch v := buf.(type) {
	case *cpu.Buffer:
		copy(dst, v.Vec3s())
		return nil
	case *gpu.Buffer:
		return v.Read(dst)
	default:
		return fmt.Errorf("%w: %T", errUnknownBuffer, buf)
	}
}

// live returns the number of unreleased buffers.
func (b *backend) live() int {
	switch {
	case b.cpuDevice != nil:
		return b.cpuDevice.Live()
	case b.gpuDevice != nil:
		return b.gpuDevice.Live()
	}
	return 0
}

func (b *backend) unload() {
	if b.gpuRenderer != nil {
		b.gpuRenderer.Unload()
		b.gpuRenderer = nil
	}
	if b.gpuDevice != nil {
		b.gpuDevice.Unload()
		b.gpuDevice = nil
	}
}
