package pbc

// Component is one connected piece of the residual formula's hypergraph:
// a set of variables and the unsatisfied constraints touching them, whose
// model count can be computed independently and multiplied into the
// parent's result (spec.md §4.4).
type Component struct {
	Variables         []VarID
	ConstraintIndices []int
	UnassignedVars    int
	UnsatConstraints  int
}
