package graphview

import (
	"errors"
	"fmt"
	"math"

	"graphdoc/domain/graph"
)

// ErrSuperseded is returned by Load when another load was issued while the
// fetch was in flight; the newer request's result owns the view.
var ErrSuperseded = errors.New("graphview: load superseded by a newer request")

// NodeView is one node's screen state for a single frame.
type NodeView struct {
	Hid   string     `json:"hid"`
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	Kind  graph.Kind `json:"-"`
	Label string     `json:"label,omitempty"`
}

// EdgeView is one edge's rendered path for a single frame. Path is empty
// when either endpoint failed to resolve.
type EdgeView struct {
	Reason graph.Reason `json:"reason"`
	Path   string       `json:"path,omitempty"`
}

// Frame is the full geometry of one simulation tick.
type Frame struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// ArcPath builds the SVG path for a directed edge: a circular arc from
// (x1,y1) to (x2,y2) whose radius equals the chord length, so curvature is
// fixed regardless of zoom.
func ArcPath(x1, y1, x2, y2 float64) string {
	dx := x2 - x1
	dy := y2 - y1
	r := math.Sqrt(dx*dx + dy*dy)
	return fmt.Sprintf("M%g,%g A%g,%g 0 0,1 %g,%g", x1, y1, r, r, x2, y2)
}
