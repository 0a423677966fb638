package pbc

import "sort"

// AssignmentInfo is what the conflict analyzer needs to know about one
// assigned variable: the decision level it was assigned at, the sign it
// was assigned, and — if it was propagated rather than decided — the
// constraint whose Propagate call forced it.
type AssignmentInfo struct {
	Level      int
	Sign       bool
	Kind       AssignmentKind
	Reason     ConstraintIndex
	HasReason  bool
}

// AssignmentLookup resolves a variable's current AssignmentInfo and exposes
// the trail itself, in assignment order; the search controller satisfies
// it.
type AssignmentLookup interface {
	InfoOf(v VarID) (AssignmentInfo, bool)
	Trail() []TrailFrame
}

// ConflictAnalyzer walks constraint reasons backward from a violated
// constraint to its first unique implication point, the same shape as a
// clause-learning CDCL solver's conflict analysis but over PB reason
// entries instead of CNF antecedents.
type ConflictAnalyzer struct {
	seen map[VarID]bool
}

func NewConflictAnalyzer() *ConflictAnalyzer {
	return &ConflictAnalyzer{seen: make(map[VarID]bool)}
}

func (a *ConflictAnalyzer) reset() {
	for k := range a.seen {
		delete(a.seen, k)
	}
}

// Analyze resolves the conflicting constraint's violated literals back
// through propagation reasons until exactly one literal from the current
// decision level remains (first-UIP), returning the learned clause's
// literals (as the negation of each contributing assignment, one factor
// each, degree 1 — a boolean no-good over PB constraints) and the level to
// backtrack to. A current-level-0 conflict returns (nil, -1): the formula
// is unsatisfiable.
func (a *ConflictAnalyzer) Analyze(conflicted *Constraint, f *Formula, trail AssignmentLookup, currentLevel int) ([]SignedLit, int) {
	if currentLevel == 0 {
		return nil, -1
	}
	a.reset()

	working := map[VarID]bool{}
	for v := range conflicted.Assignments {
		working[v] = true
		a.seen[v] = true
	}

	countAtLevel := func() int {
		n := 0
		for v := range working {
			if info, ok := trail.InfoOf(v); ok && info.Level == currentLevel {
				n++
			}
		}
		return n
	}

	for countAtLevel() > 1 {
		v, ok := mostRecentAtLevel(working, trail, currentLevel)
		if !ok {
			break
		}
		info, ok := trail.InfoOf(v)
		if !ok || info.Kind != Propagated || !info.HasReason {
			break
		}
		delete(working, v)
		reasonConstraint := f.Constraint(info.Reason)
		for _, r := range reasonConstraint.CalculateReason(v) {
			if a.seen[r.Var] {
				continue
			}
			a.seen[r.Var] = true
			working[r.Var] = true
		}
	}

	levels := make(map[int]bool)
	lits := make([]SignedLit, 0, len(working))
	for v := range working {
		info, ok := trail.InfoOf(v)
		if !ok {
			continue
		}
		levels[info.Level] = true
		lits = append(lits, SignedLit{Var: v, Positive: !info.Sign})
	}
	sort.Slice(lits, func(i, j int) bool { return lits[i].Var < lits[j].Var })

	backtrack := 0
	for lvl := range levels {
		if lvl != currentLevel && lvl > backtrack {
			backtrack = lvl
		}
	}
	return lits, backtrack
}

// mostRecentAtLevel walks the real trail backward from its most recent
// entry and returns the first variable in working assigned at level,
// i.e. the last one the search assigned at that level — the true
// recency spec.md §4.6 resolves toward, rather than a VarID-based proxy.
func mostRecentAtLevel(working map[VarID]bool, trail AssignmentLookup, level int) (VarID, bool) {
	frames := trail.Trail()
	for i := len(frames) - 1; i >= 0; i-- {
		af, ok := frames[i].(AssignmentFrame)
		if !ok || af.Level != level || !working[af.Var] {
			continue
		}
		return af.Var, true
	}
	return VarID(0), false
}

// BuildLearnedClause turns the analyzer's output literals into a new
// Constraint (a unit-factor GreaterEqual-1 clause: at least one of the
// negated conflicting assignments must hold) and registers it with f.
func BuildLearnedClause(f *Formula, lits []SignedLit) *Constraint {
	idx := ConstraintIndex{Learned: true, Index: len(f.Learned)}
	c := NewConstraint(idx, GreaterEqual, bigOne())
	for _, l := range lits {
		c.AddLiteral(Literal{Var: l.Var, Factor: bigOne(), Positive: l.Positive})
	}
	f.AddLearned(c)
	return c
}
