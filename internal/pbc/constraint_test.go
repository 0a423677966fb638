package pbc

import (
	"math/big"
	"testing"
)

func newTestConstraint(kind Kind, degree int64, lits ...Literal) *Constraint {
	c := NewConstraint(ConstraintIndex{Index: 0}, kind, big.NewInt(degree))
	for _, l := range lits {
		c.AddLiteral(l)
	}
	return c
}

func lit(v VarID, factor int64, positive bool) Literal {
	return Literal{Var: v, Factor: big.NewInt(factor), Positive: positive}
}

func TestPropagateImpliedLiteral(t *testing.T) {
	// 3*x0 + 1*x1 + 1*x2 >= 3: once x1 is assigned false, x0 must be true
	// (the remaining slack 4 is below degree plus the max factor, 6).
	c := newTestConstraint(GreaterEqual, 3, lit(0, 3, true), lit(1, 1, true), lit(2, 1, true))
	res := c.Propagate(1, false, FirstDecision, 1)
	if res.Kind != PRImpliedLiteral {
		t.Fatalf("expected PRImpliedLiteral, got %v", res.Kind)
	}
	if len(res.Literals) != 1 || res.Literals[0].Var != 0 || !res.Literals[0].Positive {
		t.Fatalf("expected implied x0=true, got %+v", res.Literals)
	}
}

func TestPropagateSatisfiedThenAlreadySatisfied(t *testing.T) {
	c := newTestConstraint(GreaterEqual, 1, lit(0, 1, true), lit(1, 1, true))
	res := c.Propagate(0, true, FirstDecision, 1)
	if res.Kind != PRSatisfied {
		t.Fatalf("expected PRSatisfied, got %v", res.Kind)
	}
	res = c.Propagate(1, true, FirstDecision, 1)
	if res.Kind != PRAlreadySatisfied {
		t.Fatalf("expected PRAlreadySatisfied, got %v", res.Kind)
	}
}

func TestPropagateUnsatisfied(t *testing.T) {
	// degree 3 over two unit-factor literals can never reach 3: the very
	// first assignment already makes the remaining slack insufficient.
	c := newTestConstraint(GreaterEqual, 3, lit(0, 1, true), lit(1, 1, true))
	res := c.Propagate(0, true, FirstDecision, 1)
	if res.Kind != PRUnsatisfied {
		t.Fatalf("expected PRUnsatisfied, got %v", res.Kind)
	}
}

func TestUndoRestoresState(t *testing.T) {
	c := newTestConstraint(GreaterEqual, 1, lit(0, 1, true), lit(1, 1, true))
	beforeSum := new(big.Int).Set(c.SumUnassigned)

	c.Propagate(0, true, FirstDecision, 1)
	if _, stillUnassigned := c.Unassigned[0]; stillUnassigned {
		t.Fatalf("expected x0 removed from Unassigned after Propagate")
	}

	transitioned := c.Undo(0, true)
	if !transitioned {
		t.Fatalf("expected Undo to report satisfied->active transition")
	}
	if c.SumUnassigned.Cmp(beforeSum) != 0 {
		t.Fatalf("SumUnassigned not restored: got %s, want %s", c.SumUnassigned, beforeSum)
	}
	if _, ok := c.Unassigned[0]; !ok {
		t.Fatalf("expected x0 restored to Unassigned after Undo")
	}
}

func TestNotEqualConstraint(t *testing.T) {
	c := newTestConstraint(NotEqual, 1, lit(0, 1, true), lit(1, 1, true))
	res := c.Propagate(0, true, FirstDecision, 1)
	if res.Kind != PRNothingToPropagate {
		t.Fatalf("expected PRNothingToPropagate while still partially assigned, got %v", res.Kind)
	}
	// x0=true, x1=false makes sum_true (1) equal the forbidden degree (1):
	// the disequality is violated.
	res = c.Propagate(1, false, FirstDecision, 1)
	if res.Kind != PRUnsatisfied {
		t.Fatalf("expected PRUnsatisfied when sum_true equals degree, got %v", res.Kind)
	}
}

func TestHashStableUntilMutation(t *testing.T) {
	c := newTestConstraint(GreaterEqual, 1, lit(0, 1, true), lit(1, 1, true))
	h1 := c.Hash()
	h2 := c.Hash()
	if h1 != h2 {
		t.Fatalf("expected stable hash across no-op calls, got %d then %d", h1, h2)
	}
	c.Propagate(0, true, FirstDecision, 1)
	h3 := c.Hash()
	if h3 == h1 {
		t.Fatalf("expected hash to change after a mutating Propagate")
	}
}
