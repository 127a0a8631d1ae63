package parse

// RootName is the tag of the synthetic element wrapping every document.
const RootName = "fntverify-root"

// Node is one parsed element. Children are owned by their parent; Parent
// is a back-reference only. The tree is built once during parsing and never
// mutated afterwards.
type Node struct {
	Name     string
	Line     int
	Column   int
	Parent   *Node
	Children []*Node

	// EndLine and EndColumn locate the end tag, or the self-closing tag
	// itself.
	EndLine   int
	EndColumn int
}

// IsRoot reports whether n is the synthetic document root.
func (n *Node) IsRoot() bool {
	return n.Parent == nil && n.Name == RootName
}

// ParentName returns the tag of n's immediate parent, or "" when the
// parent is the synthetic root.
func (n *Node) ParentName() string {
	if n.Parent == nil || n.Parent.IsRoot() {
		return ""
	}
	return n.Parent.Name
}

// Tree is a parsed document under its synthetic root.
type Tree struct {
	Root *Node
}

// EventKind distinguishes start and end events of a depth-first walk.
type EventKind int

const (
	Start EventKind = iota
	End
)

func (k EventKind) String() string {
	if k == Start {
		return "start"
	}
	return "end"
}

// Event is one step of a depth-first walk.
type Event struct {
	Kind EventKind
	Node *Node
}

// Line returns the source line of the tag the event stands for.
func (e Event) Line() int {
	if e.Kind == End {
		return e.Node.EndLine
	}
	return e.Node.Line
}

// Column returns the source column of the tag the event stands for.
func (e Event) Column() int {
	if e.Kind == End {
		return e.Node.EndColumn
	}
	return e.Node.Column
}

// Walk calls fn for every element below the synthetic root in document
// order, once on the way in and once on the way out.
func (t *Tree) Walk(fn func(Event)) {
	if t == nil || t.Root == nil {
		return
	}
	for _, c := range t.Root.Children {
		walk(c, fn)
	}
}

func walk(n *Node, fn func(Event)) {
	fn(Event{Kind: Start, Node: n})
	for _, c := range n.Children {
		walk(c, fn)
	}
	fn(Event{Kind: End, Node: n})
}

// Events returns the depth-first start/end sequence of the tree.
func (t *Tree) Events() []Event {
	var events []Event
	t.Walk(func(e Event) { events = append(events, e) })
	return events
}

// Nodes returns every element below the synthetic root in document order.
func (t *Tree) Nodes() []*Node {
	var nodes []*Node
	t.Walk(func(e Event) {
		if e.Kind == Start {
			nodes = append(nodes, e.Node)
		}
	})
	return nodes
}
