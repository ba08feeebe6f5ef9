package layout

import "math"

// jiggle breaks exact coincidence between two bodies with a tiny
// deterministic offset so force magnitudes stay finite.
func jiggle(seed int) float64 {
	return (float64(seed%13)/13 - 0.5) * 1e-6
}

// Link is a simulated spring between two bodies, resolved by id against the
// bound body set when the force initializes.
type Link struct {
	SourceID string
	TargetID string

	source *Body
	target *Body
}

// LinkForce pulls connected body pairs toward a target separation distance.
// Per-link strength is weighted down for high-degree endpoints so that hubs
// do not collapse their neighborhoods.
type LinkForce struct {
	Distance float64
	links    []*Link
	count    map[string]int
}

// NewLinkForce creates a link force with the given target separation.
func NewLinkForce(links []*Link, distance float64) *LinkForce {
	return &LinkForce{Distance: distance, links: links}
}

// SetLinks rebinds the link set; resolution happens on Initialize.
func (f *LinkForce) SetLinks(links []*Link) {
	f.links = links
}

func (f *LinkForce) Initialize(bodies []*Body) {
	byID := make(map[string]*Body, len(bodies))
	for _, b := range bodies {
		byID[b.ID] = b
	}
	f.count = make(map[string]int, len(bodies))
	for _, l := range f.links {
		l.source = byID[l.SourceID]
		l.target = byID[l.TargetID]
		if l.source != nil && l.target != nil {
			f.count[l.SourceID]++
			f.count[l.TargetID]++
		}
	}
}

func (f *LinkForce) Apply(alpha float64) {
	for i, l := range f.links {
		// An unresolved endpoint means a dangling reference in the source
		// document; the link silently exerts no force.
		if l.source == nil || l.target == nil {
			continue
		}
		x := l.target.X + l.target.VX - l.source.X - l.source.VX
		y := l.target.Y + l.target.VY - l.source.Y - l.source.VY
		if x == 0 {
			x = jiggle(i)
		}
		if y == 0 {
			y = jiggle(i + 7)
		}
		dist := math.Sqrt(x*x + y*y)
		strength := 1 / float64(min(f.count[l.SourceID], f.count[l.TargetID]))
		k := (dist - f.Distance) / dist * alpha * strength

		bias := float64(f.count[l.SourceID]) /
			float64(f.count[l.SourceID]+f.count[l.TargetID])
		l.target.VX -= x * k * bias
		l.target.VY -= y * k * bias
		l.source.VX += x * k * (1 - bias)
		l.source.VY += y * k * (1 - bias)
	}
}

// ManyBodyForce applies pairwise charge repulsion between all bodies. The
// interaction is computed exactly; history graphs are small enough that the
// quadratic cost never shows.
type ManyBodyForce struct {
	Strength float64
	bodies   []*Body
}

// NewManyBodyForce creates a repulsive charge force. Strength is negative
// for repulsion.
func NewManyBodyForce(strength float64) *ManyBodyForce {
	return &ManyBodyForce{Strength: strength}
}

func (f *ManyBodyForce) Initialize(bodies []*Body) {
	f.bodies = bodies
}

func (f *ManyBodyForce) Apply(alpha float64) {
	for i, a := range f.bodies {
		for j, b := range f.bodies {
			if i == j {
				continue
			}
			x := b.X - a.X
			y := b.Y - a.Y
			if x == 0 {
				x = jiggle(i*31 + j)
			}
			if y == 0 {
				y = jiggle(i*31 + j + 7)
			}
			l := x*x + y*y
			w := f.Strength * alpha / l
			a.VX += x * w
			a.VY += y * w
		}
	}
}

// CenterForce translates the whole layout so its centroid tracks a fixed
// point, typically the viewport midpoint. It adjusts positions directly
// rather than velocities.
type CenterForce struct {
	X, Y   float64
	bodies []*Body
}

// NewCenterForce creates a centering force toward (x, y).
func NewCenterForce(x, y float64) *CenterForce {
	return &CenterForce{X: x, Y: y}
}

func (f *CenterForce) Initialize(bodies []*Body) {
	f.bodies = bodies
}

func (f *CenterForce) Apply(alpha float64) {
	if len(f.bodies) == 0 {
		return
	}
	var sx, sy float64
	for _, b := range f.bodies {
		sx += b.X
		sy += b.Y
	}
	sx = sx/float64(len(f.bodies)) - f.X
	sy = sy/float64(len(f.bodies)) - f.Y
	for _, b := range f.bodies {
		if b.FX == nil {
			b.X -= sx
		}
		if b.FY == nil {
			b.Y -= sy
		}
	}
}
