// Package scene keeps the static overlay entities (bounds, obstacle and
// spawn region) in an ECS world.
package scene

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/particles/components"
	"github.com/pthm-cable/particles/config"
)

var (
	colorBounds   = [4]uint8{200, 200, 210, 255}
	colorObstacle = [4]uint8{255, 150, 40, 255}
	colorSpawn    = [4]uint8{90, 160, 255, 140}
)

// Scene owns the overlay world.
type Scene struct {
	world *ecs.World

	mapper *ecs.Map4[
		components.Position,
		components.Shape,
		components.Style,
		components.Label,
	]
	filter *ecs.Filter4[
		components.Position,
		components.Shape,
		components.Style,
		components.Label,
	]

	hidden [components.LayerCount]bool
}

// New builds the overlay entities described by cfg.
func New(cfg *config.Config) *Scene {
	world := ecs.NewWorld()
	s := &Scene{
		world: world,
		mapper: ecs.NewMap4[
			components.Position,
			components.Shape,
			components.Style,
			components.Label,
		](world),
		filter: ecs.NewFilter4[
			components.Position,
			components.Shape,
			components.Style,
			components.Label,
		](world),
	}

	bounds := cfg.Physics.BoundsSize
	s.add(
		components.Position{},
		components.Shape{Kind: components.ShapeBox, HalfW: bounds.X() / 2, HalfH: bounds.Y() / 2},
		components.Style{Layer: components.LayerBounds, Color: colorBounds, Thickness: 2},
		fmt.Sprintf("bounds %.1fx%.1f", bounds.X(), bounds.Y()),
	)

	obs := cfg.Physics.ObstacleSize
	if obs.X() > 0 && obs.Y() > 0 {
		c := cfg.Physics.ObstacleCentre
		s.add(
			components.Position{X: c.X(), Y: c.Y()},
			components.Shape{Kind: components.ShapeBox, HalfW: obs.X() / 2, HalfH: obs.Y() / 2},
			components.Style{Layer: components.LayerObstacle, Color: colorObstacle, Thickness: 2},
			"obstacle",
		)
	}

	s.addSpawnRegion(cfg)
	return s
}

func (s *Scene) addSpawnRegion(cfg *config.Config) {
	sp := cfg.Spawn
	style := components.Style{Layer: components.LayerSpawn, Color: colorSpawn, Thickness: 1}

	switch sp.Policy {
	case config.PolicyDisk:
		s.add(
			components.Position{X: sp.Centre.X(), Y: sp.Centre.Y()},
			components.Shape{Kind: components.ShapeCircle, Radius: sp.Radius},
			style,
			fmt.Sprintf("spawn disk (%d)", sp.Count),
		)
	case config.PolicyGrid:
		if sp.Count == 0 {
			return
		}
		root := int(math.Ceil(math.Sqrt(float64(sp.Count))))
		half := float32(root-1) * cfg.Derived.GridSpacing / 2
		s.add(
			components.Position{X: sp.Centre.X() + half, Y: sp.Centre.Y() + half},
			components.Shape{Kind: components.ShapeBox, HalfW: half, HalfH: half},
			style,
			fmt.Sprintf("spawn grid %dx%d", root, root),
		)
	}
}

func (s *Scene) add(pos components.Position, shape components.Shape, style components.Style, label string) ecs.Entity {
	lbl := components.Label{Text: label}
	return s.mapper.NewEntity(&pos, &shape, &style, &lbl)
}

// Outline is one visible overlay entity.
type Outline struct {
	Position components.Position
	Shape    components.Shape
	Style    components.Style
	Label    string
}

// Outlines returns the visible overlay entities.
func (s *Scene) Outlines() []Outline {
	var out []Outline
	query := s.filter.Query()
	for query.Next() {
		pos, shape, style, label := query.Get()
		if s.hidden[style.Layer] {
			continue
		}
		out = append(out, Outline{Position: *pos, Shape: *shape, Style: *style, Label: label.Text})
	}
	return out
}

// Hit returns the label of the innermost visible overlay containing the
// world point. Higher layers are nested inside lower ones.
func (s *Scene) Hit(wx, wy float32) (string, bool) {
	var best string
	bestLayer := -1
	query := s.filter.Query()
	for query.Next() {
		pos, shape, style, label := query.Get()
		if s.hidden[style.Layer] {
			continue
		}
		if shape.Contains(wx-pos.X, wy-pos.Y) && int(style.Layer) > bestLayer {
			best = label.Text
			bestLayer = int(style.Layer)
		}
	}
	return best, bestLayer >= 0
}

// SetVisible shows or hides a layer.
func (s *Scene) SetVisible(layer components.Layer, visible bool) {
	s.hidden[layer] = !visible
}

// Visible reports whether a layer is shown.
func (s *Scene) Visible(layer components.Layer) bool {
	return !s.hidden[layer]
}

// Len returns the number of overlay entities, visible or not.
func (s *Scene) Len() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}
