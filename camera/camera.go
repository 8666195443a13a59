// Package camera provides a 2D camera that frames the simulation bounds.
package camera

import "github.com/go-gl/mathgl/mgl32"

// Camera maps world coordinates (y up, origin at the centre of the bounds)
// to screen pixels (y down, origin top-left).
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom is pixels per world unit.
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Bounds is the simulation box the camera fits on Reset.
	BoundsW, BoundsH float32
	Margin           float32

	// Zoom constraints, relative to the fitted zoom.
	MinZoom, MaxZoom float32
}

// New creates a camera that fits a boundsW x boundsH box plus margin into the viewport.
func New(viewportW, viewportH, boundsW, boundsH, margin float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		BoundsW:   boundsW,
		BoundsH:   boundsH,
		Margin:    margin,
	}
	c.Reset()
	return c
}

// FitZoom returns the zoom at which the bounds plus margin exactly fit the viewport.
func (c *Camera) FitZoom() float32 {
	zx := c.ViewportW / (c.BoundsW + 2*c.Margin)
	zy := c.ViewportH / (c.BoundsH + 2*c.Margin)
	return min(zx, zy)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// WorldLength converts a world distance to pixels.
func (c *Camera) WorldLength(d float32) float32 {
	return d * c.Zoom
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx+radius >= minX && wx-radius <= maxX &&
		wy+radius >= minY && wy-radius <= maxY
}

// Resize updates viewport dimensions and refits the zoom limits.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	rel := c.Zoom / c.FitZoom()
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	fit := c.FitZoom()
	c.MinZoom = fit * 0.5
	c.MaxZoom = fit * 8
	c.SetZoom(fit * rel)
}

// Pan moves the camera by the given delta in screen pixels. The centre
// stays inside the bounds.
func (c *Camera) Pan(dx, dy float32) {
	c.X = clamp(c.X-dx/c.Zoom, -c.BoundsW/2, c.BoundsW/2)
	c.Y = clamp(c.Y+dy/c.Zoom, -c.BoundsH/2, c.BoundsH/2)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centres the camera on the bounds at the fitted zoom.
func (c *Camera) Reset() {
	fit := c.FitZoom()
	c.X, c.Y = 0, 0
	c.MinZoom = fit * 0.5
	c.MaxZoom = fit * 8
	c.Zoom = fit
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

// ViewProjection returns the orthographic world-to-clip matrix for the
// visible area.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return mgl32.Ortho2D(minX, maxX, minY, maxY)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
