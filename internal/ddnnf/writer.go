package ddnnf

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// Write serializes the DAG rooted at root in the line-oriented text format:
// one header line per node (`t id 0`, `f id 0`, `a id 0`, `o id 0`) followed
// by one line per edge carrying that edge's forced literals
// (`from to lit1 lit2 ... 0`, literals signed as +var/-var; an edge with no
// forced literals is just `from to 0`). Nodes keep the ids the Builder gave
// them; header lines follow a post-order traversal so every child is
// printed before its parent, and each node's
// outgoing edges are emitted in the order that traversal first reaches
// them — deterministic given the Node/Edge construction order the search
// controller used to build the DAG.
func Write(w io.Writer, root *Node) error {
	bw := bufio.NewWriter(w)

	order, childEdges := postOrder(root)

	for _, n := range order {
		if _, err := fmt.Fprintf(bw, "%s %d 0\n", n.Kind, n.ID); err != nil {
			return err
		}
	}

	for _, n := range order {
		for _, e := range childEdges[n.ID] {
			if _, err := fmt.Fprintf(bw, "%d %d %s\n", n.ID, e.Child.ID, litList(e.Lits)); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

func litList(lits []SignedLit) string {
	sorted := append([]SignedLit(nil), lits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Var < sorted[j].Var })
	s := ""
	for _, l := range sorted {
		sign := int64(l.Var)
		if !l.Positive {
			sign = -sign
		}
		s += fmt.Sprintf("%d ", sign)
	}
	return s + "0"
}

// postOrder returns every reachable node in child-before-parent order
// (each node appears once, at its first-visited position) together with
// the per-parent list of outgoing edges in construction order.
func postOrder(root *Node) ([]*Node, map[int][]Edge) {
	visited := make(map[int]bool)
	var order []*Node
	edges := make(map[int][]Edge)

	var visit func(n *Node)
	visit = func(n *Node) {
		if visited[n.ID] {
			return
		}
		visited[n.ID] = true
		for _, e := range n.Children {
			edges[n.ID] = append(edges[n.ID], e)
			visit(e.Child)
		}
		order = append(order, n)
	}
	visit(root)
	return order, edges
}
