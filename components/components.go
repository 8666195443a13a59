// Package components defines ECS components for the scene overlays.
package components

// Layer groups overlay entities so they can be toggled together.
type Layer uint8

const (
	LayerBounds Layer = iota
	LayerObstacle
	LayerSpawn
)

func (l Layer) String() string {
	switch l {
	case LayerBounds:
		return "bounds"
	case LayerObstacle:
		return "obstacle"
	case LayerSpawn:
		return "spawn"
	default:
		return "unknown"
	}
}

// LayerCount is the number of overlay layers.
const LayerCount = 3

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// ShapeKind is the outline primitive an entity draws.
type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeCircle
)

// Shape is the outline geometry around Position, in world units.
type Shape struct {
	Kind   ShapeKind
	HalfW  float32 // box half-extents
	HalfH  float32
	Radius float32 // circle radius
}

// Contains reports whether a point relative to the shape centre is inside.
func (s Shape) Contains(dx, dy float32) bool {
	switch s.Kind {
	case ShapeCircle:
		return dx*dx+dy*dy <= s.Radius*s.Radius
	default:
		return dx >= -s.HalfW && dx <= s.HalfW && dy >= -s.HalfH && dy <= s.HalfH
	}
}

// Style controls how an outline is drawn.
type Style struct {
	Layer     Layer
	Color     [4]uint8 // RGBA
	Thickness float32  // pixels
}

// Label is text drawn next to the outline.
type Label struct {
	Text string
}
