package graphview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphdoc/domain/graph"
)

func strptr(s string) *string { return &s }

// fakeClient serves canned documents and can block the fetch of one id
// until released, which is how the tests interleave overlapping loads.
type fakeClient struct {
	docs    map[string]graph.Document
	err     error
	blockOn string
	started chan struct{}
	release chan struct{}
}

func (c *fakeClient) FetchGraph(ctx context.Context, id string) (graph.Document, error) {
	if id == c.blockOn && c.release != nil {
		close(c.started)
		<-c.release
	}
	if c.err != nil {
		return graph.Document{}, c.err
	}
	doc, ok := c.docs[id]
	if !ok {
		return graph.Document{}, errors.New("no such graph")
	}
	return doc, nil
}

func testDoc() graph.Document {
	return graph.Document{
		Nodes: []graph.Node{
			{Hid: "a", Pid: strptr("1"), Title: "first"},
			{Hid: "b", Pid: strptr("2"), Title: "second"},
		},
		Edges: []graph.Edge{
			{Parent: nil, Hist: "a", Reason: graph.ReasonInsert},
			{Parent: strptr("a"), Hist: "b", Reason: graph.ReasonUpdate},
		},
	}
}

func TestSession_LoadBindsNormalizedDocument(t *testing.T) {
	client := &fakeClient{docs: map[string]graph.Document{"g": testDoc()}}
	s := NewSession(client, 960, 600)

	require.NoError(t, s.Load(context.Background(), "g"))
	require.True(t, s.Loaded())

	doc := s.Document()
	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, "empty-before-0", doc.Nodes[2].Hid)

	frame := s.Frame()
	require.Len(t, frame.Nodes, 3)
	require.Len(t, frame.Edges, 2)
	assert.Equal(t, "[1] first", frame.Nodes[0].Label)
	assert.Equal(t, graph.KindLeaf, frame.Nodes[1].Kind)
	assert.Equal(t, graph.KindSynthetic, frame.Nodes[2].Kind)
	assert.Equal(t, graph.ReasonInsert, frame.Edges[0].Reason)
	assert.NotEmpty(t, frame.Edges[0].Path)
}

func TestSession_FailedLoadLeavesViewEmpty(t *testing.T) {
	client := &fakeClient{docs: map[string]graph.Document{"g": testDoc()}}
	s := NewSession(client, 960, 600)
	require.NoError(t, s.Load(context.Background(), "g"))
	require.True(t, s.Loaded())

	// The view clears before the fetch resolves, so a failure leaves an
	// empty canvas rather than the previous graph.
	client.err = errors.New("server unreachable")
	require.Error(t, s.Load(context.Background(), "g"))

	assert.False(t, s.Loaded())
	frame := s.Frame()
	assert.Empty(t, frame.Nodes)
	assert.Empty(t, frame.Edges)
}

func TestSession_OverlappingLoadIsSuperseded(t *testing.T) {
	slowDoc := testDoc()
	fastDoc := graph.Document{
		Nodes: []graph.Node{{Hid: "z"}},
		Edges: []graph.Edge{{Parent: nil, Hist: "z", Reason: graph.ReasonInsert}},
	}

	client := &fakeClient{
		docs:    map[string]graph.Document{"slow": slowDoc, "fast": fastDoc},
		blockOn: "slow",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSession(client, 960, 600)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background(), "slow") }()
	<-client.started

	// Issue a second load while the first fetch is still in flight; the
	// later request owns the view no matter which response lands first.
	require.NoError(t, s.Load(context.Background(), "fast"))

	close(client.release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	// The stale completion did not overwrite the newer document.
	doc := s.Document()
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "z", doc.Nodes[0].Hid)
}

func TestSession_DragHeatsAndCools(t *testing.T) {
	client := &fakeClient{docs: map[string]graph.Document{"g": testDoc()}}
	s := NewSession(client, 960, 600)
	require.NoError(t, s.Load(context.Background(), "g"))

	for s.Active() {
		s.Tick()
	}
	require.False(t, s.Active())

	s.DragStart("a", 100, 100)
	assert.True(t, s.Active())

	s.Drag("a", 120, 130)
	frame := s.Tick()
	assert.Equal(t, 120.0, frame.Nodes[0].X)
	assert.Equal(t, 130.0, frame.Nodes[0].Y)

	s.DragEnd("a")
	for i := 0; i < 2000 && s.Active(); i++ {
		s.Tick()
	}
	assert.False(t, s.Active())
}

func TestSession_SecondDragKeepsHeatUntilLastEnds(t *testing.T) {
	client := &fakeClient{docs: map[string]graph.Document{"g": testDoc()}}
	s := NewSession(client, 960, 600)
	require.NoError(t, s.Load(context.Background(), "g"))

	s.DragStart("a", 10, 10)
	s.DragStart("b", 20, 20)
	s.DragEnd("a")

	for i := 0; i < 2000; i++ {
		s.Tick()
	}
	// One gesture is still active, so the simulation must not settle.
	assert.True(t, s.Active())

	s.DragEnd("b")
	for i := 0; i < 2000 && s.Active(); i++ {
		s.Tick()
	}
	assert.False(t, s.Active())
}

func TestSession_DragUnknownNodeIsIgnored(t *testing.T) {
	client := &fakeClient{docs: map[string]graph.Document{"g": testDoc()}}
	s := NewSession(client, 960, 600)
	require.NoError(t, s.Load(context.Background(), "g"))

	for s.Active() {
		s.Tick()
	}
	s.DragStart("nope", 0, 0)
	assert.False(t, s.Active())
}

func TestArcPath_RadiusEqualsChord(t *testing.T) {
	assert.Equal(t, "M0,0 A5,5 0 0,1 3,4", ArcPath(0, 0, 3, 4))
}
