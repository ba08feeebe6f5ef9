// Package graph holds the history-graph document model: the node and edge
// sets fetched from the server and their normalized, renderable form.
package graph

// Reason classifies the mutation that produced a child revision.
type Reason string

const (
	ReasonInsert Reason = "insert"
	ReasonUpdate Reason = "update"
)

// Kind is the render classification of a node, computed once per
// normalization pass and carried as data.
type Kind int

const (
	KindInternal Kind = iota
	KindLeaf
	KindSynthetic
)

// String returns the style class name for a node kind.
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindSynthetic:
		return "empty"
	default:
		return "internal"
	}
}

// Node is one historical revision. Pid is a pointer so that an absent field
// and an empty string render differently in labels.
type Node struct {
	Hid   string  `json:"hid"`
	Pid   *string `json:"pid,omitempty"`
	Title string  `json:"title,omitempty"`

	// Derived during normalization, never present in the source document.
	Leaf  bool `json:"-"`
	Empty bool `json:"-"`
	Kind  Kind `json:"-"`

	// Initial canvas position for synthetic nodes; zero for source nodes,
	// which the simulation places itself.
	X float64 `json:"-"`
	Y float64 `json:"-"`
}

// Edge is a parent/child relation between revisions. Parent is nil when the
// mutation had no recorded parent. Source and Target are resolved node ids,
// filled in by normalization.
type Edge struct {
	Parent *string `json:"parent"`
	Hist   string  `json:"hist"`
	Reason Reason  `json:"reason"`

	Source string `json:"-"`
	Target string `json:"-"`
}

// Document is one graph as received from the server. Sequence order is
// semantically irrelevant but fixed at fetch time.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
