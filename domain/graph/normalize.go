package graph

import "fmt"

// SyntheticIDFormat is the identifier scheme for placeholder source nodes,
// numbered in edge order starting at zero.
const SyntheticIDFormat = "empty-before-%d"

// Normalize derives the renderable form of a raw document: it materializes
// one synthetic source node per parentless edge, resolves every edge's
// Source/Target ids, and classifies each node as synthetic, leaf or internal.
//
// The input is not modified; repeated normalization of the same raw document
// yields identical output, synthetic id assignment included. Width and height
// give the canvas extent used to seed synthetic node positions: offset to one
// side horizontally, vertically centered.
func Normalize(doc Document, width, height float64) Document {
	nodes := make([]Node, len(doc.Nodes), len(doc.Nodes)+len(doc.Edges))
	copy(nodes, doc.Nodes)
	edges := make([]Edge, len(doc.Edges))
	copy(edges, doc.Edges)

	synthetic := 0
	for i := range edges {
		if edges[i].Parent == nil {
			id := fmt.Sprintf(SyntheticIDFormat, synthetic)
			synthetic++
			nodes = append(nodes, Node{
				Hid:   id,
				Empty: true,
				Kind:  KindSynthetic,
				X:     width / 10,
				Y:     height / 2,
			})
			edges[i].Source = id
		} else {
			edges[i].Source = *edges[i].Parent
		}
		edges[i].Target = edges[i].Hist
	}

	// A node is a leaf iff its id never appears as any edge's parent.
	// Synthetic nodes can never be a parent, so they are skipped outright.
	parents := make(map[string]bool, len(edges))
	for _, e := range edges {
		if e.Parent != nil {
			parents[*e.Parent] = true
		}
	}
	for i := range nodes {
		if nodes[i].Empty {
			continue
		}
		nodes[i].Leaf = !parents[nodes[i].Hid]
		if nodes[i].Leaf {
			nodes[i].Kind = KindLeaf
		} else {
			nodes[i].Kind = KindInternal
		}
	}

	return Document{Nodes: nodes, Edges: edges}
}
