// Package canvas holds the drop handling and layout bookkeeping that sit between
// the rendering surface and the graph store. Painting and hit-testing are left to
// the rendering engine; this package only sees coordinates and node identities.
package canvas

import "github.com/dshills/logicflow/pkg/graph"

// Zoom limits
const (
	MinZoom = 0.5
	MaxZoom = 2.0
)

// Point is a client-space coordinate
type Point struct {
	X float64
	Y float64
}

// Projector converts client coordinates into graph coordinates. It is the
// capability the rendering engine hands to the drop handler.
type Projector interface {
	Project(p Point) graph.Position
}

// Viewport describes how the graph is laid over the rendering surface
type Viewport struct {
	// Left and Top are the surface's offset within the client area
	Left float64
	Top  float64
	// PanX and PanY are the translation of the graph origin on the surface
	PanX float64
	PanY float64
	// Zoom is the scale factor, kept between MinZoom and MaxZoom
	Zoom float64
}

var _ Projector = (*Viewport)(nil)

// NewViewport creates an unpanned viewport at zoom 1 whose surface starts at (left, top)
func NewViewport(left, top float64) *Viewport {
	return &Viewport{Left: left, Top: top, Zoom: 1.0}
}

// Project maps a client point onto graph coordinates
func (v *Viewport) Project(p Point) graph.Position {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1.0
	}
	return graph.Position{
		X: (p.X - v.Left - v.PanX) / zoom,
		Y: (p.Y - v.Top - v.PanY) / zoom,
	}
}

// Pan moves the graph by (dx, dy) surface units
func (v *Viewport) Pan(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// SetZoom sets the zoom factor, clamped to the supported range
func (v *Viewport) SetZoom(zoom float64) {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	v.Zoom = zoom
}
