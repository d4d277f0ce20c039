package network

import "fmt"

type edgeKey struct {
	from, to int
	rel      Relation
}

// Build constructs a Network from caller-supplied activities and
// dependencies. It rejects invalid input with a *ValidationError but does not
// check for cycles; see DetectCycle and TopoOrder.
//
// Repeated dependencies with the same endpoints and relation are collapsed,
// keeping the largest lag. Input slices are never modified.
func Build(activities []Activity, deps []Dependency) (*Network, error) {
	n := &Network{
		Activities: make([]Activity, 0, len(activities)),
		Index:      make(map[string]int, len(activities)),
	}

	for _, a := range activities {
		if a.ID == "" {
			return nil, &ValidationError{Reason: "activity id is empty"}
		}
		if _, dup := n.Index[a.ID]; dup {
			return nil, &ValidationError{Reason: "duplicate activity id", ActivityID: a.ID}
		}
		if a.Duration < 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("negative duration %d", a.Duration), ActivityID: a.ID}
		}
		kind, err := ParseConstraintKind(string(a.Constraint.Kind))
		if err != nil {
			return nil, &ValidationError{Reason: err.Error(), ActivityID: a.ID}
		}
		a.Constraint.Kind = kind
		if a.Constraint.Dated() && a.Constraint.Date < 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("negative %s date %d", kind, a.Constraint.Date), ActivityID: a.ID}
		}
		if !a.Constraint.Dated() {
			a.Constraint.Date = 0
		}

		n.Index[a.ID] = len(n.Activities)
		n.Activities = append(n.Activities, a)
	}

	n.Out = make([][]int, len(n.Activities))
	n.In = make([][]int, len(n.Activities))

	edgeSet := make(map[edgeKey]int)
	for i := range deps {
		d := deps[i]
		rel, err := ParseRelation(string(d.Relation))
		if err != nil {
			return nil, &ValidationError{Reason: err.Error(), Dependency: &d}
		}
		d.Relation = rel

		from, ok := n.Index[d.Predecessor]
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("unknown predecessor %q", d.Predecessor), Dependency: &d}
		}
		to, ok := n.Index[d.Successor]
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("unknown successor %q", d.Successor), Dependency: &d}
		}
		if from == to {
			return nil, &ValidationError{Reason: "activity cannot depend on itself", Dependency: &d}
		}

		key := edgeKey{from: from, to: to, rel: rel}
		if idx, seen := edgeSet[key]; seen {
			if d.Lag > n.Edges[idx].Lag {
				n.Edges[idx].Lag = d.Lag
			}
			continue
		}
		edgeSet[key] = len(n.Edges)
		n.Out[from] = append(n.Out[from], len(n.Edges))
		n.In[to] = append(n.In[to], len(n.Edges))
		n.Edges = append(n.Edges, Edge{From: from, To: to, Relation: rel, Lag: d.Lag})
	}

	for i := range n.Activities {
		if len(n.In[i]) == 0 {
			n.Roots = append(n.Roots, i)
		}
		if len(n.Out[i]) == 0 {
			n.Leaves = append(n.Leaves, i)
		}
	}

	return n, nil
}

// BuildProgram builds the network of a loaded program.
func BuildProgram(p *Program) (*Network, error) {
	return Build(p.Activities, p.Dependencies)
}

// ActivityCount returns the number of activities in the network.
func (n *Network) ActivityCount() int {
	return len(n.Activities)
}

// ID returns the activity id of node i.
func (n *Network) ID(i int) string {
	return n.Activities[i].ID
}

// Successors returns the ids of the activities that id precedes, in edge order.
// An id appears once per relation linking the pair.
func (n *Network) Successors(id string) []string {
	i, ok := n.Index[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(n.Out[i]))
	for _, ei := range n.Out[i] {
		out = append(out, n.ID(n.Edges[ei].To))
	}
	return out
}

// Predecessors returns the ids of the activities that precede id, in edge order.
func (n *Network) Predecessors(id string) []string {
	i, ok := n.Index[id]
	if !ok {
		return nil
	}
	in := make([]string, 0, len(n.In[i]))
	for _, ei := range n.In[i] {
		in = append(in, n.ID(n.Edges[ei].From))
	}
	return in
}
