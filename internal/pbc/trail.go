package pbc

// TrailFrame is the trail entry of spec.md §3: one variable assignment.
// solveComponent's component-split loop and branch's decision recursion
// use Go's own call stack to remember which component or branch to resume
// once a sub-problem is solved, rather than pushing a separate bookkeeping
// frame onto this trail — see DESIGN.md.
type TrailFrame interface {
	isTrailFrame()
}

// AssignmentFrame records one variable's assignment: a decision (first or
// second branch) or a propagation forced by some constraint.
type AssignmentFrame struct {
	Var    VarID
	Sign   bool
	Level  int
	Kind   AssignmentKind
	Reason ConstraintIndex // meaningful only when Kind == Propagated
}

func (AssignmentFrame) isTrailFrame() {}
