// Package layout implements a force-directed placement engine in the style
// of velocity-Verlet graph simulators: attraction along links, pairwise
// repulsion, and a centering pull, iterated while an annealing coefficient
// (alpha) stays above a quiescence threshold.
package layout

import "math"

const (
	initialRadius = 10.0
	initialAngle  = math.Pi * (3 - 2.23606797749979) // golden angle, sqrt(5)
)

// Body is a simulated particle. Position and velocity are owned by the
// simulation; a non-nil FX/FY pins the body to that point, overriding the
// physics for that body only.
type Body struct {
	ID     string
	X, Y   float64
	VX, VY float64
	FX, FY *float64
}

// Pin fixes the body at the given position.
func (b *Body) Pin(x, y float64) {
	b.FX, b.FY = &x, &y
}

// Unpin releases the body back to free simulation.
func (b *Body) Unpin() {
	b.FX, b.FY = nil, nil
}

// Force perturbs body velocities (or positions) once per tick.
type Force interface {
	Initialize(bodies []*Body)
	Apply(alpha float64)
}

// Simulation anneals a set of bodies under named forces. Rebinding the body
// set with SetBodies keeps the configured forces and their parameters.
type Simulation struct {
	bodies []*Body
	forces []namedForce

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
}

type namedForce struct {
	name  string
	force Force
}

// New creates a simulation at full heat with the standard annealing schedule:
// alpha starts at 1 and decays toward alphaMin over roughly 300 ticks.
func New() *Simulation {
	alphaMin := 0.001
	return &Simulation{
		alpha:         1,
		alphaMin:      alphaMin,
		alphaDecay:    1 - math.Pow(alphaMin, 1.0/300),
		velocityDecay: 0.4,
	}
}

// AddForce registers a force under a name, replacing any force previously
// registered under the same name.
func (s *Simulation) AddForce(name string, f Force) {
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			f.Initialize(s.bodies)
			return
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
	f.Initialize(s.bodies)
}

// SetBodies rebinds the simulated body set. Bodies at the origin and not
// pinned are seeded on a phyllotaxis spiral so that no two start coincident.
func (s *Simulation) SetBodies(bodies []*Body) {
	s.bodies = bodies
	for i, b := range bodies {
		if b.FX != nil {
			b.X = *b.FX
		}
		if b.FY != nil {
			b.Y = *b.FY
		}
		if b.X == 0 && b.Y == 0 && b.FX == nil && b.FY == nil {
			radius := initialRadius * math.Sqrt(0.5+float64(i))
			angle := float64(i) * initialAngle
			b.X = radius * math.Cos(angle)
			b.Y = radius * math.Sin(angle)
		}
	}
	for _, nf := range s.forces {
		nf.force.Initialize(bodies)
	}
}

// Bodies returns the currently bound body set.
func (s *Simulation) Bodies() []*Body {
	return s.bodies
}

// Step advances the simulation by one tick: alpha moves toward its target,
// every force applies, and velocities integrate into positions with decay.
// Pinned bodies snap to their fixed point with zero velocity.
func (s *Simulation) Step() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, nf := range s.forces {
		nf.force.Apply(s.alpha)
	}

	for _, b := range s.bodies {
		if b.FX == nil {
			b.VX *= 1 - s.velocityDecay
			b.X += b.VX
		} else {
			b.X = *b.FX
			b.VX = 0
		}
		if b.FY == nil {
			b.VY *= 1 - s.velocityDecay
			b.Y += b.VY
		} else {
			b.Y = *b.FY
			b.VY = 0
		}
	}
}

// Alpha reports the current annealing coefficient.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// SetAlpha resets the annealing coefficient, reheating or cooling the layout.
func (s *Simulation) SetAlpha(a float64) {
	s.alpha = a
}

// AlphaTarget sets the value alpha converges to. A positive target keeps the
// simulation heated (used while dragging); zero lets it cool back to rest.
func (s *Simulation) AlphaTarget(t float64) {
	s.alphaTarget = t
}

// Restart brings a settled simulation back above the quiescence threshold so
// that stepping resumes visible motion.
func (s *Simulation) Restart() {
	if s.alpha < s.alphaMin {
		s.alpha = s.alphaMin
	}
}

// Active reports whether the simulation is still in motion: either alpha has
// not yet decayed to the quiescence threshold, or a positive target holds it
// heated.
func (s *Simulation) Active() bool {
	return s.alpha >= s.alphaMin || s.alphaTarget > 0
}
