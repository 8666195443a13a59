package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particles/camera"
	"github.com/pthm-cable/particles/components"
	"github.com/pthm-cable/particles/scene"
)

// DrawOutlines draws the scene overlay entities in screen space.
func DrawOutlines(cam *camera.Camera, outlines []scene.Outline, labels bool) {
	for _, o := range outlines {
		color := rl.NewColor(o.Style.Color[0], o.Style.Color[1], o.Style.Color[2], o.Style.Color[3])
		cx, cy := cam.WorldToScreen(o.Position.X, o.Position.Y)

		var labelX, labelY float32
		switch o.Shape.Kind {
		case components.ShapeCircle:
			r := cam.WorldLength(o.Shape.Radius)
			rl.DrawCircleLines(int32(cx), int32(cy), r, color)
			labelX, labelY = cx-r, cy-r-16
		default:
			hw := cam.WorldLength(o.Shape.HalfW)
			hh := cam.WorldLength(o.Shape.HalfH)
			rec := rl.Rectangle{X: cx - hw, Y: cy - hh, Width: 2 * hw, Height: 2 * hh}
			rl.DrawRectangleLinesEx(rec, o.Style.Thickness, color)
			labelX, labelY = rec.X+4, rec.Y+4
		}

		if labels && o.Label != "" {
			rl.DrawText(o.Label, int32(labelX), int32(labelY), 14, color)
		}
	}
}

// DrawHoverLabel draws the label of the overlay under the mouse cursor.
func DrawHoverLabel(cam *camera.Camera, sc *scene.Scene) {
	mouse := rl.GetMousePosition()
	wx, wy := cam.ScreenToWorld(mouse.X, mouse.Y)
	label, ok := sc.Hit(wx, wy)
	if !ok {
		return
	}
	rl.DrawText(label, int32(mouse.X)+14, int32(mouse.Y)+4, 14, rl.RayWhite)
}
