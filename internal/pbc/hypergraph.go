package pbc

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Hypergraph is the pins/x_pins encoding of the residual formula restricted
// to one scope: nets are the still-unsatisfied constraints in that scope,
// vertices are its unassigned variables. Net i's pins are
// Pins[XPins[i]:XPins[i+1]], the same prefix-offset layout the original
// partitioner uses so large scopes can be rebuilt without per-net slices.
type Hypergraph struct {
	NetConstraints []int // constraint index (into scope) for each net
	Pins           []VarID
	XPins          []int // len(NetConstraints)+1
}

// BuildHypergraph restricts f to the constraints named by constraintIdx,
// keeping only those still unsatisfied (satisfied constraints contribute no
// incidence and would only connect variables that no longer interact).
func BuildHypergraph(f *Formula, constraintIdx []int) *Hypergraph {
	h := &Hypergraph{XPins: []int{0}}
	for _, ci := range constraintIdx {
		c := f.Constraints[ci]
		if !c.IsUnsatisfied() {
			continue
		}
		vars := make([]VarID, 0, len(c.Unassigned))
		for v := range c.Unassigned {
			vars = append(vars, v)
		}
		sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
		h.NetConstraints = append(h.NetConstraints, ci)
		h.Pins = append(h.Pins, vars...)
		h.XPins = append(h.XPins, len(h.Pins))
	}
	return h
}

// netPins returns the pin slice of net i.
func (h *Hypergraph) netPins(i int) []VarID {
	return h.Pins[h.XPins[i]:h.XPins[i+1]]
}

// cliqueExpansion builds the hypergraph's clique-expansion graph over
// scopeVars: one node per variable, and a clique of edges over each net's
// pins (so two variables are adjacent iff some active constraint mentions
// both). This is the shared representation both ConnectedComponents (via
// gonum/graph/topo) and the bisector partition against.
func cliqueExpansion(h *Hypergraph, scopeVars []VarID) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for _, v := range scopeVars {
		g.AddNode(simple.Node(v))
	}
	for i := range h.NetConstraints {
		pins := h.netPins(i)
		for a := 0; a < len(pins); a++ {
			for b := a + 1; b < len(pins); b++ {
				na, nb := simple.Node(pins[a]), simple.Node(pins[b])
				if !g.HasEdgeBetween(na.ID(), nb.ID()) {
					g.SetEdge(simple.Edge{F: na, T: nb})
				}
			}
		}
	}
	return g
}

// ConnectedComponents splits scope into its independent pieces: variables
// reachable from one another only through shared nets end up in the same
// Component, and every remaining free variable (one that touches no active
// net at all) is folded into a single shared component, matching the
// partitioner's treatment of variables with no remaining constraints. The
// natural-split check itself is gonum's graph/topo.ConnectedComponents over
// the clique-expansion graph, rather than a hand-rolled traversal: a net's
// pins form a clique, so "reachable through shared nets" is exactly graph
// connectivity on that expansion.
func ConnectedComponents(h *Hypergraph, scopeVars []VarID) []Component {
	varToNets := make(map[VarID][]int, len(scopeVars))
	for _, v := range scopeVars {
		varToNets[v] = nil
	}
	for i := range h.NetConstraints {
		for _, v := range h.netPins(i) {
			varToNets[v] = append(varToNets[v], i)
		}
	}

	g := cliqueExpansion(h, scopeVars)
	groups := topo.ConnectedComponents(g)

	var components []Component
	var freeVars []VarID

	for _, group := range groups {
		if len(group) == 1 && len(varToNets[VarID(group[0].ID())]) == 0 {
			freeVars = append(freeVars, VarID(group[0].ID()))
			continue
		}

		compVars := make([]VarID, len(group))
		for i, n := range group {
			compVars[i] = VarID(n.ID())
		}
		sort.Slice(compVars, func(i, j int) bool { return compVars[i] < compVars[j] })

		netSeen := make(map[int]bool)
		var compNets []int
		for _, v := range compVars {
			for _, ni := range varToNets[v] {
				if !netSeen[ni] {
					netSeen[ni] = true
					compNets = append(compNets, ni)
				}
			}
		}
		sort.Ints(compNets)
		constraintIndices := make([]int, len(compNets))
		for i, ni := range compNets {
			constraintIndices[i] = h.NetConstraints[ni]
		}

		components = append(components, Component{
			Variables:         compVars,
			ConstraintIndices: constraintIndices,
			UnassignedVars:    len(compVars),
			UnsatConstraints:  len(constraintIndices),
		})
	}

	if len(freeVars) > 0 {
		sort.Slice(freeVars, func(i, j int) bool { return freeVars[i] < freeVars[j] })
		components = append(components, Component{
			Variables:        freeVars,
			UnassignedVars:   len(freeVars),
			UnsatConstraints: 0,
		})
	}

	return components
}

// Partitioner approximates a balanced 2-way split of a hypergraph's
// vertices, used only to pick a good branching order inside a component
// too large to fully decompose; unlike ConnectedComponents it is not part
// of the soundness argument, so a weak partitioner costs performance, not
// correctness.
type Partitioner interface {
	Partition(h *Hypergraph) (cutSize int, side map[VarID]bool)
}

// bfsBisector is a from-scratch vertex-level partitioner: it builds the
// hypergraph's clique-expansion graph with gonum/graph/simple and grows one
// side of the cut by breadth-first layers from an arbitrary seed, stopping
// once the side holds half the vertices.
type bfsBisector struct{}

// NewBFSBisector returns the default Partitioner.
func NewBFSBisector() Partitioner { return bfsBisector{} }

func (bfsBisector) Partition(h *Hypergraph) (int, map[VarID]bool) {
	var scopeVars []VarID
	seen := make(map[VarID]bool)
	for i := range h.NetConstraints {
		for _, v := range h.netPins(i) {
			if !seen[v] {
				seen[v] = true
				scopeVars = append(scopeVars, v)
			}
		}
	}
	g := cliqueExpansion(h, scopeVars)

	nodes := graph.NodesOf(g.Nodes())
	if len(nodes) == 0 {
		return 0, nil
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })

	target := (len(nodes) + 1) / 2
	side := make(map[VarID]bool, len(nodes))
	var queue []graph.Node
	queue = append(queue, nodes[0])
	side[VarID(nodes[0].ID())] = true
	placed := 1

	for placed < target {
		if len(queue) == 0 {
			for _, n := range nodes {
				if !side[VarID(n.ID())] {
					queue = append(queue, n)
					side[VarID(n.ID())] = true
					placed++
					break
				}
			}
			if len(queue) == 0 {
				break
			}
			continue
		}
		n := queue[0]
		queue = queue[1:]
		to := g.From(n.ID())
		for to.Next() {
			nb := to.Node()
			if !side[VarID(nb.ID())] {
				side[VarID(nb.ID())] = true
				queue = append(queue, nb)
				placed++
				if placed >= target {
					break
				}
			}
		}
	}

	cut := 0
	edges := graph.EdgesOf(g.Edges())
	for _, e := range edges {
		a, b := side[VarID(e.From().ID())], side[VarID(e.To().ID())]
		if a != b {
			cut++
		}
	}
	return cut, side
}
