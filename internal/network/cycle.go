package network

const (
	white = 0 // unvisited
	gray  = 1 // on the DFS stack
	black = 2 // finished
)

// walk runs one depth-first traversal over the network in node order. It
// returns the reverse post-order (a topological order) when the graph is
// acyclic, or the first cycle found as a closed walk of node indices.
func (n *Network) walk() (order []int, cycle []int) {
	color := make([]int, len(n.Activities))
	parent := make([]int, len(n.Activities))
	post := make([]int, 0, len(n.Activities))

	var dfs func(node int) []int
	dfs = func(node int) []int {
		color[node] = gray
		for _, ei := range n.Out[node] {
			next := n.Edges[ei].To
			switch color[next] {
			case gray:
				// Unwind parents from node back to next.
				c := []int{next, node}
				for cur := node; cur != next; {
					cur = parent[cur]
					c = append(c, cur)
				}
				for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
					c[i], c[j] = c[j], c[i]
				}
				return c
			case white:
				parent[next] = node
				if c := dfs(next); c != nil {
					return c
				}
			}
		}
		color[node] = black
		post = append(post, node)
		return nil
	}

	for i := range n.Activities {
		if color[i] == white {
			if c := dfs(i); c != nil {
				return nil, c
			}
		}
	}

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post, nil
}

// DetectCycle returns the activity ids of one cycle, starting and ending at
// the same id, or nil if the network is acyclic.
func (n *Network) DetectCycle() []string {
	_, cycle := n.walk()
	if cycle == nil {
		return nil
	}
	return n.ids(cycle)
}

// TopoOrder returns node indices ordered so that every predecessor comes
// before its successors. A cyclic network yields a *CircularDependencyError.
func (n *Network) TopoOrder() ([]int, error) {
	order, cycle := n.walk()
	if cycle != nil {
		return nil, &CircularDependencyError{Path: n.ids(cycle)}
	}
	return order, nil
}

func (n *Network) ids(nodes []int) []string {
	ids := make([]string, len(nodes))
	for i, node := range nodes {
		ids[i] = n.ID(node)
	}
	return ids
}
