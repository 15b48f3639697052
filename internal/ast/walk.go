package ast

// Inspect walks the subtree rooted at n in document order. Returning false
// from fn skips the children of the visited node. leave, when non-nil, is
// called after the children of a node were visited.
func (t *Tree) Inspect(n *Node, fn func(*Node) bool, leave func(*Node)) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, id := range t.children[n.ID] {
		t.Inspect(&t.nodes[id], fn, leave)
	}
	if leave != nil {
		leave(n)
	}
}

// Ancestors returns the chain of parents of n, nearest first.
func (t *Tree) Ancestors(n *Node) []*Node {
	var out []*Node
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		out = append(out, p)
	}
	return out
}

// Find returns the first node in document order for which match is true.
func (t *Tree) Find(match func(*Node) bool) *Node {
	var found *Node
	t.Inspect(t.Root(), func(n *Node) bool {
		if found != nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	}, nil)
	return found
}

// FindAll returns every node of kind k in document order.
func (t *Tree) FindAll(k Kind) []*Node {
	var out []*Node
	t.Inspect(t.Root(), func(n *Node) bool {
		if n.Kind == k {
			out = append(out, n)
		}
		return true
	}, nil)
	return out
}
