// Package graphview drives the interactive history-graph diagram: it owns
// the current graph document, binds it to a force simulation, and turns
// simulated positions into renderable frames under user drag input.
package graphview

import (
	"context"
	"sync"

	"graphdoc/domain/graph"
	"graphdoc/domain/layout"
)

// Force configuration bound to the diagram contract: connected pairs settle
// at this separation, all pairs repel, and the layout is pulled toward the
// viewport midpoint.
const (
	LinkDistance   = 100.0
	ChargeStrength = -30.0
	dragHeatTarget = 0.3
)

// Client fetches a graph document for an opaque history identifier.
type Client interface {
	FetchGraph(ctx context.Context, id string) (graph.Document, error)
}

// Session owns one view's document, simulation and bound render elements
// for the lifetime between loads. All state is replaced wholesale by Load;
// positions are mutated only by the simulation and the drag handlers.
type Session struct {
	mu sync.Mutex

	client Client
	width  float64
	height float64

	sim    *layout.Simulation
	linkF  *layout.LinkForce

	doc    graph.Document
	bodies []*layout.Body
	byID   map[string]*layout.Body
	loaded bool

	generation  uint64
	activeDrags int
}

// NewSession creates a view session over a drawing surface of the given
// extent. Force parameters are configured once and persist across loads;
// only the node and link sets are rebound.
func NewSession(client Client, width, height float64) *Session {
	s := &Session{
		client: client,
		width:  width,
		height: height,
		sim:    layout.New(),
		linkF:  layout.NewLinkForce(nil, LinkDistance),
		byID:   map[string]*layout.Body{},
	}
	s.sim.AddForce("link", s.linkF)
	s.sim.AddForce("charge", layout.NewManyBodyForce(ChargeStrength))
	s.sim.AddForce("center", layout.NewCenterForce(width/2, height/2))
	return s
}

// Load fetches, normalizes and binds the graph for id. The previous render
// state is cleared before the fetch resolves, so a failed fetch leaves the
// view empty rather than showing stale bindings. Overlapping loads are
// guarded by a generation counter: a completion is applied only when it is
// still the latest request issued.
func (s *Session) Load(ctx context.Context, id string) error {
	s.mu.Lock()
	s.clearLocked()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	doc, err := s.client.FetchGraph(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	s.bindLocked(graph.Normalize(doc, s.width, s.height))
	return nil
}

func (s *Session) clearLocked() {
	s.doc = graph.Document{}
	s.bodies = nil
	s.byID = map[string]*layout.Body{}
	s.loaded = false
	s.linkF.SetLinks(nil)
	s.sim.SetBodies(nil)
}

func (s *Session) bindLocked(doc graph.Document) {
	s.doc = doc
	s.bodies = make([]*layout.Body, len(doc.Nodes))
	s.byID = make(map[string]*layout.Body, len(doc.Nodes))
	for i, n := range doc.Nodes {
		b := &layout.Body{ID: n.Hid, X: n.X, Y: n.Y}
		s.bodies[i] = b
		s.byID[n.Hid] = b
	}
	links := make([]*layout.Link, len(doc.Edges))
	for i, e := range doc.Edges {
		links[i] = &layout.Link{SourceID: e.Source, TargetID: e.Target}
	}
	s.linkF.SetLinks(links)
	s.sim.SetBodies(s.bodies)
	s.sim.SetAlpha(1)
	s.loaded = true
}

// Loaded reports whether a document is currently bound. The reload control
// stays disabled until the first successful load.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Document returns the currently bound, normalized document.
func (s *Session) Document() graph.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Active reports whether the simulation still has visible motion.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Active()
}

// Tick advances the simulation one frame and recomputes screen geometry for
// every node, label and edge. Edges render as circular arcs whose radius
// equals the straight-line distance between their endpoints, giving a fixed
// curvature. An edge with a dangling endpoint yields no path.
func (s *Session) Tick() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Step()
	return s.frameLocked()
}

// Frame returns the current geometry without advancing the simulation.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

func (s *Session) frameLocked() Frame {
	f := Frame{
		Nodes: make([]NodeView, 0, len(s.doc.Nodes)),
		Edges: make([]EdgeView, 0, len(s.doc.Edges)),
	}
	for _, n := range s.doc.Nodes {
		b := s.byID[n.Hid]
		f.Nodes = append(f.Nodes, NodeView{
			Hid:   n.Hid,
			X:     b.X,
			Y:     b.Y,
			Kind:  n.Kind,
			Label: graph.Label(n),
		})
	}
	for _, e := range s.doc.Edges {
		src, sok := s.byID[e.Source]
		dst, tok := s.byID[e.Target]
		ev := EdgeView{Reason: e.Reason}
		if sok && tok {
			ev.Path = ArcPath(src.X, src.Y, dst.X, dst.Y)
		}
		f.Edges = append(f.Edges, ev)
	}
	return f
}

// DragStart begins a drag gesture on a node: the first active gesture
// reheats a settled simulation so dragging one node perturbs the whole
// layout, and the node is pinned to the pointer.
func (s *Session) DragStart(id string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return
	}
	if s.activeDrags == 0 {
		s.sim.AlphaTarget(dragHeatTarget)
		s.sim.Restart()
	}
	s.activeDrags++
	b.Pin(x, y)
}

// Drag tracks the pointer, updating the pinned position.
func (s *Session) Drag(id string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.byID[id]; ok && b.FX != nil {
		b.Pin(x, y)
	}
}

// DragEnd releases the gesture: when no other interaction keeps the
// simulation heated it cools back to rest, and the node resumes free
// simulation.
func (s *Session) DragEnd(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return
	}
	if s.activeDrags > 0 {
		s.activeDrags--
	}
	if s.activeDrags == 0 {
		s.sim.AlphaTarget(0)
	}
	b.Unpin()
}
