package pbc

import (
	"math/big"
	"sort"
)

// Normalize runs the deterministic pipeline from spec.md §4.1 over a single
// parsed equation, reducing it to one or two GreaterEqual / NotEqual
// equations with non-negative factors and a non-negative degree. Feeding its
// output back in is not a no-op when that output holds a negated literal:
// on input, Positive=false is read as a negative coefficient (see
// signedFactor), so such a summand is flipped again and the degree grows by
// its factor.
func Normalize(eq Equation) []Equation {
	var out []Equation
	switch eq.Relation {
	case RelEq:
		out = []Equation{
			{LHS: eq.LHS, RHS: eq.RHS, Relation: RelGe},
			{LHS: eq.LHS, RHS: eq.RHS, Relation: RelLe},
		}
	default:
		out = []Equation{eq}
	}

	for i, e := range out {
		out[i] = replaceLe(e)
	}
	for i, e := range out {
		out[i] = replaceLt(e)
	}
	for i, e := range out {
		out[i] = replaceGt(e)
	}
	for i, e := range out {
		out[i] = mergeSameVariable(e)
	}
	for i, e := range out {
		out[i] = replaceNegativeFactors(e)
	}
	for i, e := range out {
		out[i] = clampDegree(e)
	}
	return out
}

// replaceLe turns `sum <= rhs` into `-sum >= -rhs`.
func replaceLe(eq Equation) Equation {
	if eq.Relation != RelLe {
		return eq
	}
	return Equation{LHS: negateLHS(eq.LHS), RHS: new(big.Int).Neg(eq.RHS), Relation: RelGe}
}

// replaceLt turns `sum < rhs` into `-sum > -rhs`.
func replaceLt(eq Equation) Equation {
	if eq.Relation != RelLt {
		return eq
	}
	return Equation{LHS: negateLHS(eq.LHS), RHS: new(big.Int).Neg(eq.RHS), Relation: RelGt}
}

// replaceGt turns `sum > rhs` into `sum >= rhs+1`.
func replaceGt(eq Equation) Equation {
	if eq.Relation != RelGt {
		return eq
	}
	return Equation{LHS: eq.LHS, RHS: new(big.Int).Add(eq.RHS, big.NewInt(1)), Relation: RelGe}
}

func negateLHS(lhs []Summand) []Summand {
	out := make([]Summand, len(lhs))
	for i, s := range lhs {
		out[i] = Summand{Var: s.Var, Factor: new(big.Int).Neg(s.Factor), Positive: s.Positive}
	}
	return out
}

// mergeSameVariable sums coefficients of repeated variable occurrences in a
// single left-to-right pass, visiting each distinct variable exactly once
// (see SPEC_FULL.md §D for why this, rather than the double-visit the
// reference implementation's comments flagged as unconfirmed, was chosen).
// Each merged summand carries its signed factor with Positive set, so a
// negative result is left for replaceNegativeFactors to flip together with
// the matching right-hand-side adjustment.
func mergeSameVariable(eq Equation) Equation {
	order := make([]VarID, 0, len(eq.LHS))
	merged := make(map[VarID]Summand, len(eq.LHS))
	for _, s := range eq.LHS {
		if existing, ok := merged[s.Var]; ok {
			existing.Factor = new(big.Int).Add(existing.Factor, signedFactor(s))
			merged[s.Var] = existing
			continue
		}
		order = append(order, s.Var)
		merged[s.Var] = Summand{Var: s.Var, Factor: new(big.Int).Set(signedFactor(s)), Positive: true}
	}
	out := make([]Summand, 0, len(order))
	for _, v := range order {
		out = append(out, merged[v])
	}
	return Equation{LHS: out, RHS: eq.RHS, Relation: eq.Relation}
}

// signedFactor returns a summand's factor with sign folded in, so that
// merging same-variable summands of opposite polarity is a plain addition.
func signedFactor(s Summand) *big.Int {
	if s.Positive {
		return s.Factor
	}
	return new(big.Int).Neg(s.Factor)
}

// replaceNegativeFactors rewrites `-k*L` as `+k*~L`, adding k to the
// right-hand side for every summand it flips.
func replaceNegativeFactors(eq Equation) Equation {
	out := make([]Summand, 0, len(eq.LHS))
	rhs := new(big.Int).Set(eq.RHS)
	for _, s := range eq.LHS {
		if s.Factor.Sign() < 0 {
			out = append(out, Summand{Var: s.Var, Factor: new(big.Int).Neg(s.Factor), Positive: !s.Positive})
			rhs.Add(rhs, new(big.Int).Neg(s.Factor))
		} else {
			out = append(out, s)
		}
	}
	return Equation{LHS: out, RHS: rhs, Relation: eq.Relation}
}

// clampDegree floors a negative right-hand side to 0, per spec.md §4.1: the
// constraint becomes trivially true but is kept to preserve the
// variable-constraint incidence used by the component decomposer.
func clampDegree(eq Equation) Equation {
	if eq.RHS.Sign() < 0 {
		return Equation{LHS: eq.LHS, RHS: big.NewInt(0), Relation: eq.Relation}
	}
	return eq
}

// BuildConstraint converts one fully-normalized equation into a Constraint.
// The caller is responsible for ensuring eq came out of Normalize.
func BuildConstraint(index int, eq Equation) *Constraint {
	kind := GreaterEqual
	if eq.Relation == RelNotEq {
		kind = NotEqual
	}
	c := NewConstraint(ConstraintIndex{Index: index}, kind, new(big.Int).Set(eq.RHS))
	lits := append([]Summand(nil), eq.LHS...)
	sort.Slice(lits, func(i, j int) bool { return lits[i].Var < lits[j].Var })
	for _, s := range lits {
		c.AddLiteral(Literal{Var: s.Var, Factor: new(big.Int).Set(s.Factor), Positive: s.Positive})
	}
	return c
}
