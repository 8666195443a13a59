// Force preview tool - interactive plot of the pairwise force curve with
// sliders for every force model parameter.
//
// Usage: go run ./cmd/forcepreview -config config.yaml
package main

import (
	"flag"
	"fmt"
	"log"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particles/config"
	"github.com/pthm-cable/particles/cpu"
	"github.com/pthm-cable/particles/sim"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	plotSize     = 560
	panelWidth   = windowWidth - plotSize - 40
	samples      = 256
)

// slider describes one adjustable parameter.
type slider struct {
	label    string
	value    *float32
	min, max float32
	format   string
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	params, err := sim.ParamsFromConfig(cfg)
	if err != nil {
		log.Fatalf("invalid force parameters: %v", err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Force Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	kernel := cpu.NewKernel()
	curve := make([]float32, samples)

	sliders := []slider{
		{"Particle radius", &params.ParticleRadius, 0.01, 0.2, "%.3f"},
		{"Cutoff", &params.ForceCutoff, 0.05, 1.0, "%.3f"},
		{"Influence radius", &params.InfluenceRadius, 0.01, 0.5, "%.3f"},
		{"Multiplier", &params.ForceMultiplier, 0, 10, "%.2f"},
		{"Stiffness", &params.Stiffness, 10, 3000, "%.0f"},
		{"LJ sigma", &params.Sigma, 0.01, 0.3, "%.3f"},
		{"LJ epsilon", &params.Epsilon, 0.001, 1, "%.3f"},
	}

	for !rl.WindowShouldClose() {
		configure(kernel, params)
		rMax := 1.5 * params.ForceCutoff
		lo, hi := sampleCurve(kernel, curve, rMax, params.ForceCutoff)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawPlot(curve, rMax, lo, hi, params)

		// Control panel
		panelX := float32(plotSize + 30)
		panelY := float32(10)

		rl.DrawText("Force Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for m := sim.ForceNone; m <= sim.ForceLennardJones; m++ {
			text := m.String()
			if m == params.Model {
				text = "[" + text + "]"
			}
			col := float32(int(m) % 2)
			row := float32(int(m) / 2)
			if gui.Button(rl.Rectangle{X: panelX + col*(panelWidth/2), Y: panelY + row*34, Width: panelWidth/2 - 10, Height: 28}, text) {
				params.Model = m
			}
		}
		panelY += 80

		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			*s.value = gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				*s.value, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *s.value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			panelY += 35
		}

		rl.DrawText(fmt.Sprintf("f range: [%.3g, %.3g]", lo, hi), int32(panelX), int32(panelY), 16, rl.DarkGray)

		rl.EndDrawing()
	}
}

// configure pushes the force parameters into k.
func configure(k *cpu.Kernel, p sim.Params) {
	k.SetInt(sim.UniForceModel, int32(p.Model))
	k.SetFloat(sim.UniParticleRadius, p.ParticleRadius)
	k.SetFloat(sim.UniForceCutoff, p.ForceCutoff)
	k.SetFloat(sim.UniInfluenceRadius, p.InfluenceRadius)
	k.SetFloat(sim.UniForceMultiplier, p.ForceMultiplier)
	k.SetFloat(sim.UniStiffness, p.Stiffness)
	k.SetFloat(sim.UniLJSigma, p.Sigma)
	k.SetFloat(sim.UniLJEpsilon, p.Epsilon)
}

// sampleCurve fills curve with f(r) for r in (0, rMax], zero beyond cutoff,
// and returns the value range.
func sampleCurve(k *cpu.Kernel, curve []float32, rMax, cutoff float32) (lo, hi float32) {
	for i := range curve {
		r := rMax * float32(i+1) / float32(len(curve))
		var f float32
		if r <= cutoff {
			f = k.PairForce(r)
		}
		curve[i] = f
		lo, hi = min(lo, f), max(hi, f)
	}
	return lo, hi
}

// drawPlot renders the force curve with the zero axis, the contact
// distance 2R and the cutoff.
func drawPlot(curve []float32, rMax, lo, hi float32, p sim.Params) {
	const x0, y0 = 10, 10
	rl.DrawRectangleLines(x0, y0, plotSize, plotSize, rl.DarkGray)

	span := hi - lo
	if span == 0 {
		span = 1
	}
	toY := func(f float32) float32 {
		return y0 + plotSize - (f-lo)/span*plotSize
	}
	toX := func(r float32) float32 {
		return x0 + r/rMax*plotSize
	}

	zero := toY(0)
	rl.DrawLineV(rl.Vector2{X: x0, Y: zero}, rl.Vector2{X: x0 + plotSize, Y: zero}, rl.LightGray)

	contact := toX(2 * p.ParticleRadius)
	rl.DrawLineV(rl.Vector2{X: contact, Y: y0}, rl.Vector2{X: contact, Y: y0 + plotSize}, rl.SkyBlue)
	rl.DrawText("2R", int32(contact)+4, y0+4, 14, rl.SkyBlue)

	cut := toX(p.ForceCutoff)
	rl.DrawLineV(rl.Vector2{X: cut, Y: y0}, rl.Vector2{X: cut, Y: y0 + plotSize}, rl.Orange)
	rl.DrawText("cutoff", int32(cut)+4, y0+20, 14, rl.Orange)

	for i := 1; i < len(curve); i++ {
		r0 := rMax * float32(i) / float32(len(curve))
		r1 := rMax * float32(i+1) / float32(len(curve))
		rl.DrawLineV(
			rl.Vector2{X: toX(r0), Y: toY(curve[i-1])},
			rl.Vector2{X: toX(r1), Y: toY(curve[i])},
			rl.Maroon,
		)
	}

	rl.DrawText(fmt.Sprintf("r: 0 .. %.3f   model: %s   (positive = repulsive)", rMax, p.Model), x0, y0+plotSize+10, 16, rl.DarkGray)
}
