package pbc

import "math/big"

// VarScorer ranks unassigned variables for the search's next-decision
// choice, combining two signals per spec.md §4.5: a VSIDS-style bump of
// factor/(degree-sum_true) for every literal a just-learned clause
// touches, decayed by 0.8 on a fixed cadence, plus a DLCS-style score
// computed live from the same ratio summed across every unsatisfied
// constraint the variable currently appears in.
type VarScorer struct {
	f *Formula

	score      map[VarID]float64
	conflicts  int
	decayEvery int
}

// NewVarScorer builds a scorer over f's variables. decayEvery is the
// number of conflicts between score decays; 64 matches the cadence
// SPEC_FULL.md §C.1 settled on after original_source/ showed the
// reference decaying far too aggressively to reproduce directly.
func NewVarScorer(f *Formula) *VarScorer {
	return &VarScorer{
		f:          f,
		score:      make(map[VarID]float64, f.NumVariables),
		decayEvery: 64,
	}
}

// contribution computes factor/(degree-sum_true) for v's literal in c, the
// ratio spec.md §4.5 uses for both the VSIDS bump and the DLCS score: the
// tighter a constraint is on v (the closer degree-sum_true is to v's own
// factor), the more weight v gets. A non-positive denominator means c is
// already satisfied or violated independent of v, so it contributes nothing.
func contribution(c *Constraint, v VarID) float64 {
	lit, ok := c.Literals[v]
	if !ok {
		return 0
	}
	denom := new(big.Int).Sub(c.Degree, c.SumTrue)
	if denom.Sign() <= 0 {
		return 0
	}
	return ratToFloat(lit.Factor, denom)
}

// Bump increases v's VSIDS score as if v had just participated in a
// learned clause derived while analyzing conflicted.
func (s *VarScorer) Bump(v VarID, conflicted *Constraint) {
	s.score[v] += contribution(conflicted, v)
}

// ConflictOccurred records one conflict, decaying every VSIDS score by a
// factor of 0.8 once decayEvery conflicts have accumulated.
func (s *VarScorer) ConflictOccurred() {
	s.conflicts++
	if s.conflicts%s.decayEvery != 0 {
		return
	}
	for v := range s.score {
		s.score[v] *= 0.8
	}
}

// dlcs sums factor/(degree-sum_true) for v across every constraint (normal
// or learned) that still mentions it and is currently unsatisfied, the
// DLCS half of spec.md §4.5's combined ranking.
func (s *VarScorer) dlcs(v VarID) float64 {
	total := 0.0
	for _, ci := range s.f.ConstraintsOf(v) {
		c := s.f.Constraints[ci]
		if c.IsUnsatisfied() {
			total += contribution(c, v)
		}
	}
	for _, li := range s.f.LearnedConstraintsOf(v) {
		c := s.f.Learned[li]
		if c.IsUnsatisfied() {
			total += contribution(c, v)
		}
	}
	return total
}

// Best returns the candidate with the highest combined VSIDS+DLCS score,
// breaking ties by the lowest VarID for determinism. Panics if candidates
// is empty.
func (s *VarScorer) Best(candidates []VarID) VarID {
	rank := func(v VarID) float64 { return s.score[v] + s.dlcs(v) }

	best := candidates[0]
	bestScore := rank(best)
	for _, v := range candidates[1:] {
		sc := rank(v)
		if sc > bestScore || (sc == bestScore && v < best) {
			best, bestScore = v, sc
		}
	}
	return best
}
