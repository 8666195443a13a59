// Shader debug tool - compiles the particle shaders in a hidden window,
// reports compile and link errors, and optionally renders a few simulated
// frames to a PNG file for inspection.
//
// Usage: go run -tags opengl43 ./cmd/shaderdebug -frames 60 -out debug.png
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particles/camera"
	"github.com/pthm-cable/particles/config"
	"github.com/pthm-cable/particles/gpu"
	"github.com/pthm-cable/particles/mesh"
	"github.com/pthm-cable/particles/sim"
	"github.com/pthm-cable/particles/spawn"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "", "Output PNG path (empty = compile only)")
	frames := flag.Int("frames", 60, "Frames to simulate before capture")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("loading config: %v", err)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	if err := gpu.Init(); err != nil {
		fail("%v", err)
	}
	fmt.Printf("GL version: %s\n", gpu.Version())

	src := gpu.Sources()
	compute, err := gpu.NewComputeProgram(src["compute"])
	if err != nil {
		fail("%v", err)
	}
	fmt.Println("compute: ok")
	render, err := gpu.NewRenderProgram(src["vertex"], src["fragment"])
	if err != nil {
		fail("%v", err)
	}
	fmt.Println("vertex+fragment: ok")
	gpu.DeletePrograms(compute, render)

	if *outPath == "" {
		return
	}
	if err := capture(cfg, *outPath, *frames, int32(*width), int32(*height)); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Particles rendered to: %s (%dx%d, %d frames)\n", *outPath, *width, *height, *frames)
}

// capture simulates frames into a render texture and exports the last one.
func capture(cfg *config.Config, outPath string, frames int, width, height int32) error {
	data, err := spawn.Generate(cfg.Spawn, cfg.Derived.GridSpacing, rand.New(rand.NewSource(1)))
	if err != nil {
		return err
	}
	params, err := sim.ParamsFromConfig(cfg)
	if err != nil {
		return err
	}

	dev := gpu.NewDevice()
	defer dev.Unload()
	r, err := gpu.NewRenderer()
	if err != nil {
		return err
	}
	defer r.Unload()

	d := sim.NewDriver(dev, r, params, nil)
	if err := d.Init(data, mesh.Circle(cfg.Particle.Segments, cfg.Particle.Radius)); err != nil {
		return err
	}
	defer d.Shutdown()

	cam := camera.New(float32(width), float32(height),
		cfg.Physics.BoundsSize.X(), cfg.Physics.BoundsSize.Y(), cfg.Render.ViewMargin)
	r.SetViewProjection(cam.ViewProjection())

	// Create render texture
	target := rl.LoadRenderTexture(width, height)
	defer rl.UnloadRenderTexture(target)

	for i := 0; i < frames; i++ {
		rl.BeginTextureMode(target)
		rl.ClearBackground(rl.Black)
		rl.DrawRenderBatchActive()
		if err := d.Frame(cfg.Physics.FixedDT); err != nil {
			rl.EndTextureMode()
			return err
		}
		rl.EndTextureMode()
	}

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)
	defer rl.UnloadImage(img)

	if !rl.ExportImage(*img, outPath) {
		return fmt.Errorf("exporting %s failed", outPath)
	}
	return nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
