package game

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particles/components"
	"github.com/pthm-cable/particles/metrics"
	"github.com/pthm-cable/particles/renderer"
	"github.com/pthm-cable/particles/telemetry"
)

// Update processes input for the next graphical frame.
func (g *Game) Update() {
	g.handleInput()
}

// UpdateHeadless advances one frame at the fixed delta-time without
// touching the window.
func (g *Game) UpdateHeadless() error {
	g.perf.StartFrame()
	if err := g.simulate(g.fixedDT); err != nil {
		return err
	}
	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perf.EndFrame()
	return nil
}

// Draw renders one graphical frame. Unless paused, the simulation advances
// by the raylib frame time.
func (g *Game) Draw() error {
	g.perf.StartFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	g.background.Draw(g.camera)

	// Flush raylib's batch before issuing raw GL.
	rl.DrawRenderBatchActive()
	g.backend.gpuRenderer.SetViewProjection(g.camera.ViewProjection())

	var simErr error
	if g.paused {
		g.perf.StartPhase(telemetry.PhaseSimulate)
		simErr = g.driver.Redraw()
	} else {
		simErr = g.simulate(rl.GetFrameTime())
	}

	g.perf.StartPhase(telemetry.PhaseOverlay)
	if g.showOverlays {
		renderer.DrawOutlines(g.camera, g.scene.Outlines(), true)
		renderer.DrawHoverLabel(g.camera, g.scene)
	}

	g.perf.StartPhase(telemetry.PhaseHUD)
	if g.showHUD {
		g.applyHUD(renderer.DrawHUD(g.hudData(), int32(g.width), int32(g.height)))
	}

	rl.EndDrawing()

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perf.EndFrame()
	g.perf.Present()
	return simErr
}

// simulate runs one driver frame and records it.
func (g *Game) simulate(dt float32) error {
	g.perf.StartPhase(telemetry.PhaseSimulate)
	start := time.Now()
	before := g.driver.Dispatches()
	if err := g.driver.Frame(dt); err != nil {
		return fmt.Errorf("frame %d: %w", g.Frame(), err)
	}
	g.simTime += float64(dt)
	metrics.ObserveFrame(time.Since(start), int(g.driver.Dispatches()-before))
	return nil
}

// setSubsteps applies a new substep count, clamped to the HUD range.
func (g *Game) setSubsteps(n int) {
	n = min(max(n, 1), renderer.MaxSubsteps)
	if n == g.driver.Params().Substeps {
		return
	}
	if err := g.driver.SetSubsteps(n); err != nil {
		g.logger.Error("failed to set substeps", "error", err)
		return
	}
	g.logger.Info("substeps changed", "substeps", n)
}

func (g *Game) hudData() renderer.HUDData {
	data := renderer.HUDData{
		Title:      g.cfg.Screen.Title,
		Backend:    g.backend.name,
		Particles:  g.driver.ParticleCount(),
		Frames:     g.driver.Frames(),
		Dispatches: g.driver.Dispatches(),
		SimTime:    float32(g.simTime),
		Substeps:   g.driver.Params().Substeps,
		ForceModel: g.driver.Params().Model.String(),
		FPS:        rl.GetFPS(),
		Paused:     g.paused,
	}
	for l := components.Layer(0); l < components.LayerCount; l++ {
		data.Layers[l] = g.scene.Visible(l)
	}
	return data
}

func (g *Game) applyHUD(a renderer.HUDActions) {
	if a.TogglePause {
		g.paused = !g.paused
	}
	if a.ResetCamera {
		g.camera.Reset()
	}
	g.setSubsteps(a.Substeps)
	for l, toggle := range a.ToggleLayer {
		if toggle {
			layer := components.Layer(l)
			g.scene.SetVisible(layer, !g.scene.Visible(layer))
		}
	}
}
