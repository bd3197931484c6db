package roadmap

// Attr is a named attribute of a Node. Order is preserved on the wire.
type Attr struct {
	Name  string
	Value string
}

// Node is an ordered element tree as exchanged with the routing backend.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []Node
}

// ResultDocument is the raw `result` output of the backend: roadmap steps in
// travel order followed by the overview path as the last element.
type ResultDocument []Node

// Leaf returns a text-only node.
func Leaf(tag, text string) Node {
	return Node{Tag: tag, Text: text}
}

// Attr returns the value of the named attribute.
func (n Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child with the given tag.
func (n Node) Child(tag string) (Node, bool) {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c, true
		}
	}
	return Node{}, false
}

// ChildrenByTag returns all children with the given tag, in order.
func (n Node) ChildrenByTag(tag string) []Node {
	var out []Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}
