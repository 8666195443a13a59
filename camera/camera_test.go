package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewFitsBounds(t *testing.T) {
	cam := New(1280, 720, 16, 9, 0.5)

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected camera at origin, got (%f, %f)", cam.X, cam.Y)
	}

	// Height is the tighter axis: 720 / (9 + 1) = 72.
	if math.Abs(float64(cam.Zoom-72)) > 1e-4 {
		t.Errorf("expected zoom 72, got %f", cam.Zoom)
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minX > -8.5 || maxX < 8.5 || minY > -5 || maxY < 5 {
		t.Errorf("bounds plus margin not visible: (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}

func TestWorldToScreenFlipsY(t *testing.T) {
	cam := New(1280, 720, 16, 9, 0.5)

	sx, sy := cam.WorldToScreen(0, 0)
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}

	_, syUp := cam.WorldToScreen(0, 1)
	if syUp >= sy {
		t.Errorf("world up should move toward the top of the screen, got %f >= %f", syUp, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 16, 9, 0.5)
	cam.Pan(37, -12)
	cam.ZoomBy(1.7)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestZoomClamping(t *testing.T) {
	cam := New(1280, 720, 16, 9, 0.5)
	fit := cam.FitZoom()

	cam.SetZoom(fit * 100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}

	cam.SetZoom(0)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}

	cam.Reset()
	if cam.Zoom != fit {
		t.Errorf("expected reset zoom %f, got %f", fit, cam.Zoom)
	}
}

func TestPanStaysInBounds(t *testing.T) {
	cam := New(1280, 720, 16, 9, 0.5)
	cam.Pan(-1e6, 1e6)

	if cam.X != 8 || cam.Y != 4.5 {
		t.Errorf("expected centre clamped to (8, 4.5), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 16, 9, 0.5)

	if !cam.IsVisible(0, 0, 0.05) {
		t.Error("origin should be visible")
	}
	if cam.IsVisible(100, 0, 0.05) {
		t.Error("far point should not be visible")
	}
}

func TestViewProjectionMatchesScreen(t *testing.T) {
	cam := New(1280, 720, 16, 9, 0.5)
	vp := cam.ViewProjection()

	testCases := []mgl32.Vec2{{0, 0}, {3, -2}, {-7.5, 4}}
	for _, w := range testCases {
		clip := vp.Mul4x1(mgl32.Vec4{w.X(), w.Y(), 0, 1})
		// NDC to screen with y down.
		sx := (clip.X() + 1) / 2 * cam.ViewportW
		sy := (1 - clip.Y()) / 2 * cam.ViewportH
		ex, ey := cam.WorldToScreen(w.X(), w.Y())
		if math.Abs(float64(sx-ex)) > 0.05 || math.Abs(float64(sy-ey)) > 0.05 {
			t.Errorf("world %v: clip gives (%f,%f), WorldToScreen gives (%f,%f)", w, sx, sy, ex, ey)
		}
	}
}

func TestResizeKeepsRelativeZoom(t *testing.T) {
	cam := New(1280, 720, 16, 9, 0.5)
	cam.ZoomBy(2)
	cam.Resize(640, 360)

	if math.Abs(float64(cam.Zoom-2*cam.FitZoom())) > 1e-4 {
		t.Errorf("expected zoom %f after resize, got %f", 2*cam.FitZoom(), cam.Zoom)
	}
}
