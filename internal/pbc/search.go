package pbc

import (
	"math/big"

	"github.com/pbcount/ddnnfc/internal/ddnnf"
)

// Option configures a Search at construction time, the same functional-
// options pattern the teacher uses for its Solver.
type Option func(*Search)

// WithTracer installs a Tracer the search reports its position to on every
// cache hit or miss, component split and conflict.
func WithTracer(t Tracer) Option {
	return func(s *Search) { s.tracer = t }
}

// Search is the component-caching DPLL controller: it counts a Formula's
// satisfying assignments while building the equivalent d-DNNF DAG in lock
// step, exactly the dual computation spec.md §4 describes. Each recursive
// call to solveComponent corresponds to one frame of that specification's
// conceptual result/ddnnf stacks; Go's call stack plays that role here
// (see DESIGN.md for why this reads more clearly than an explicit stack
// machine without changing the computation it performs).
type Search struct {
	f        *Formula
	cache    *Cache
	scorer   *VarScorer
	conflict *ConflictAnalyzer
	builder  *ddnnf.Builder
	tracer   Tracer

	assignInfo   map[VarID]AssignmentInfo
	trail        []TrailFrame
	lastConflict *Constraint

	partitioner Partitioner
}

// NewSearch builds a Search over f.
func NewSearch(f *Formula, opts ...Option) *Search {
	s := &Search{
		f:          f,
		cache:      NewCache(),
		scorer:     NewVarScorer(f),
		conflict:   NewConflictAnalyzer(),
		builder:    ddnnf.NewBuilder(),
		assignInfo:  make(map[VarID]AssignmentInfo),
		tracer:      DefaultTracer{},
		partitioner: NewBFSBisector(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Count runs the search to completion, returning the exact model count
// and the root of the compiled d-DNNF.
func (s *Search) Count() (*big.Int, *ddnnf.Node, error) {
	vars := make([]VarID, s.f.NumVariables)
	for i := range vars {
		vars[i] = VarID(i)
	}
	constraintIdx := make([]int, len(s.f.Constraints))
	for i := range constraintIdx {
		constraintIdx[i] = i
	}
	constraintIdx = filterUnsatisfied(s.f, constraintIdx)

	s.tracer.SolveStart()
	count, edge, err := s.solveComponent(vars, constraintIdx, 0)
	if err != nil {
		return nil, nil, err
	}
	s.tracer.SolveFinish(count)
	return count, edge.Child, nil
}

// Stats reports the component cache's hit/miss counters.
func (s *Search) Stats() Stats { return s.cache.Stats() }

// Trail and ConflictConstraint implement SearchPosition for Tracer.
func (s *Search) Trail() []TrailFrame          { return s.trail }
func (s *Search) ConflictConstraint() *Constraint { return s.lastConflict }

// InfoOf implements AssignmentLookup for the conflict analyzer.
func (s *Search) InfoOf(v VarID) (AssignmentInfo, bool) {
	info, ok := s.assignInfo[v]
	return info, ok
}

// solveComponent counts and compiles one residual sub-problem: the formula
// restricted to scopeVars (still unassigned) and scopeConstraints (still
// unsatisfied, indices into Formula.Constraints only — learned clauses
// never participate in decomposition, see DESIGN.md).
func (s *Search) solveComponent(scopeVars []VarID, scopeConstraints []int, level int) (*big.Int, ddnnf.Edge, error) {
	fp := ComputeFingerprint(s.f, scopeVars, scopeConstraints)
	if entry, ok := s.cache.Lookup(fp); ok {
		s.tracer.Trace(s, EventCacheHit)
		return new(big.Int).Set(entry.Count), ddnnf.Edge{Child: entry.Node}, nil
	}
	s.tracer.Trace(s, EventCacheMiss)

	h := BuildHypergraph(s.f, scopeConstraints)
	components := ConnectedComponents(h, scopeVars)

	if len(components) == 0 {
		count := big.NewInt(1)
		edge := s.builder.TrueEdge()
		return new(big.Int).Set(count), edge, nil
	}

	if len(components) == 1 && components[0].UnsatConstraints == 0 {
		count := new(big.Int).Lsh(big.NewInt(1), uint(len(components[0].Variables)))
		edge := s.freeVarsEdge(components[0].Variables)
		return new(big.Int).Set(count), edge, nil
	}

	if len(components) > 1 {
		s.tracer.Trace(s, EventComponentSplit)
		total := big.NewInt(1)
		edges := make([]ddnnf.Edge, 0, len(components))
		for _, comp := range components {
			c, e, err := s.solveComponent(comp.Variables, comp.ConstraintIndices, level)
			if err != nil {
				return nil, ddnnf.Edge{}, err
			}
			total.Mul(total, c)
			edges = append(edges, e)
		}
		edge := s.builder.Close(s.builder.ComposeConjunction(edges))
		return new(big.Int).Set(total), edge, nil
	}

	comp := components[0]
	v := s.scorer.Best(s.branchCandidates(comp))

	countT, edgeT, err := s.branch(comp, v, true, level+1)
	if err != nil {
		return nil, ddnnf.Edge{}, err
	}
	countF, edgeF, err := s.branch(comp, v, false, level+1)
	if err != nil {
		return nil, ddnnf.Edge{}, err
	}

	total := new(big.Int).Add(countT, countF)
	edge := s.builder.Close(s.builder.ComposeDisjunction(edgeT, edgeF))
	s.cache.Insert(fp, CacheEntry{Count: total, Node: edge.Child})
	return new(big.Int).Set(total), edge, nil
}

// branchCandidates narrows a component down to the variables worth scoring
// for the next decision. For components small enough that a cut can't help
// (or with no partitioner installed) every variable is a candidate; above
// that size the hypergraph bisector's cut side is preferred, since branching
// on a variable the cut already isolates tends to split the remaining
// residual formula into smaller components sooner. This is a branching-order
// heuristic only — any non-empty candidate set still decomposes the search
// to the same, correct model count.
func (s *Search) branchCandidates(comp Component) []VarID {
	if s.partitioner == nil || len(comp.Variables) <= 3 {
		return comp.Variables
	}
	h := BuildHypergraph(s.f, comp.ConstraintIndices)
	_, side := s.partitioner.Partition(h)
	if len(side) == 0 {
		return comp.Variables
	}
	candidates := make([]VarID, 0, len(comp.Variables))
	for _, v := range comp.Variables {
		if side[v] {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return comp.Variables
	}
	return candidates
}

// branch assigns v to sign as a decision, propagates to a fixpoint, and
// either reports the conflict it ran into (count 0) or recurses into the
// remaining sub-problem — folding every literal this branch forced, in
// reverse order, onto the returned edge before undoing its own state
// mutations.
func (s *Search) branch(comp Component, v VarID, sign bool, level int) (*big.Int, ddnnf.Edge, error) {
	mark := len(s.trail)
	kind := FirstDecision
	if !sign {
		kind = SecondDecision
	}

	conflicted, err := s.propagate([]pendingAssign{{Var: v, Sign: sign, Kind: kind}}, level)
	if err != nil {
		s.undoTo(mark)
		return nil, ddnnf.Edge{}, err
	}
	if conflicted != nil {
		s.lastConflict = conflicted
		s.tracer.Trace(s, EventConflict)
		lits, _ := s.conflict.Analyze(conflicted, s.f, s, level)
		if len(lits) > 0 {
			BuildLearnedClause(s.f, lits)
			for _, l := range lits {
				s.scorer.Bump(l.Var, conflicted)
			}
		}
		s.scorer.ConflictOccurred()
		s.undoTo(mark)
		return big.NewInt(0), s.builder.FalseEdge(), nil
	}

	forced := append([]TrailFrame(nil), s.trail[mark:]...)

	remVars := filterUnassigned(comp.Variables, s.assignInfo)
	remConstraints := filterUnsatisfied(s.f, comp.ConstraintIndices)

	count, edge, err := s.solveComponent(remVars, remConstraints, level)
	if err != nil {
		s.undoTo(mark)
		return nil, ddnnf.Edge{}, err
	}

	for i := len(forced) - 1; i >= 0; i-- {
		af, ok := forced[i].(AssignmentFrame)
		if !ok {
			continue
		}
		edge = ddnnf.ExtendWithLiteral(edge, uint32(af.Var)+1, af.Sign)
	}

	s.undoTo(mark)
	return count, edge, nil
}

// freeVarsEdge builds the trivial DAG for a set of variables with no
// remaining active constraint: an AND of per-variable binary choices, each
// a deterministic OR between the True leaf annotated positively and the
// True leaf annotated negatively.
func (s *Search) freeVarsEdge(vars []VarID) ddnnf.Edge {
	if len(vars) == 0 {
		return s.builder.TrueEdge()
	}
	edges := make([]ddnnf.Edge, len(vars))
	for i, v := range vars {
		pos := ddnnf.ExtendWithLiteral(s.builder.TrueEdge(), uint32(v)+1, true)
		neg := ddnnf.ExtendWithLiteral(s.builder.TrueEdge(), uint32(v)+1, false)
		edges[i] = ddnnf.Edge{Child: s.builder.Or(pos, neg)}
	}
	return s.builder.ComposeConjunction(edges)
}

type pendingAssign struct {
	Var    VarID
	Sign   bool
	Kind   AssignmentKind
	Reason ConstraintIndex
}

// assign records v's assignment both in the fast lookup map the conflict
// analyzer uses and on the undo trail.
func (s *Search) assign(v VarID, sign bool, kind AssignmentKind, level int, reason ConstraintIndex, hasReason bool) {
	s.assignInfo[v] = AssignmentInfo{Level: level, Sign: sign, Kind: kind, Reason: reason, HasReason: hasReason}
	s.trail = append(s.trail, AssignmentFrame{Var: v, Sign: sign, Level: level, Kind: kind, Reason: reason})
}

// undoTo pops and reverts trail frames down to mark, restoring every
// constraint's Propagate side effects via Undo.
func (s *Search) undoTo(mark int) {
	for len(s.trail) > mark {
		last := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		af, ok := last.(AssignmentFrame)
		if !ok {
			continue
		}
		delete(s.assignInfo, af.Var)
		for _, ci := range s.f.ConstraintsOf(af.Var) {
			s.f.Constraints[ci].Undo(af.Var, af.Sign)
		}
		for _, li := range s.f.LearnedConstraintsOf(af.Var) {
			s.f.Learned[li].Undo(af.Var, af.Sign)
		}
	}
}

// constraintsTouching returns every constraint (normal or learned) that
// mentions v.
func (s *Search) constraintsTouching(v VarID) []*Constraint {
	idx := s.f.ConstraintsOf(v)
	learnedIdx := s.f.LearnedConstraintsOf(v)
	out := make([]*Constraint, 0, len(idx)+len(learnedIdx))
	for _, ci := range idx {
		out = append(out, s.f.Constraints[ci])
	}
	for _, li := range learnedIdx {
		out = append(out, s.f.Learned[li])
	}
	return out
}

// propagate drains queue to a fixpoint, assigning every literal it forces.
// It returns the first constraint it finds violated, or nil if the
// fixpoint was reached without conflict.
func (s *Search) propagate(queue []pendingAssign, level int) (*Constraint, error) {
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if _, already := s.assignInfo[p.Var]; already {
			continue
		}
		hasReason := p.Kind == Propagated
		s.assign(p.Var, p.Sign, p.Kind, level, p.Reason, hasReason)

		for _, c := range s.constraintsTouching(p.Var) {
			res := c.Propagate(p.Var, p.Sign, p.Kind, level)
			switch res.Kind {
			case PRUnsatisfied:
				return c, nil
			case PRImpliedLiteral, PRImpliedLiteralList:
				for _, lit := range res.Literals {
					queue = append(queue, pendingAssign{Var: lit.Var, Sign: lit.Positive, Kind: Propagated, Reason: c.Index})
				}
			}
		}
	}
	return nil, nil
}

func filterUnassigned(vars []VarID, info map[VarID]AssignmentInfo) []VarID {
	out := make([]VarID, 0, len(vars))
	for _, v := range vars {
		if _, assigned := info[v]; !assigned {
			out = append(out, v)
		}
	}
	return out
}

func filterUnsatisfied(f *Formula, idx []int) []int {
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		if f.Constraints[i].IsUnsatisfied() {
			out = append(out, i)
		}
	}
	return out
}
