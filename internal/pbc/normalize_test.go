package pbc

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func bi(n int64) *big.Int { return big.NewInt(n) }

func summand(v VarID, factor int64, positive bool) Summand {
	return Summand{Var: v, Factor: bi(factor), Positive: positive}
}

func TestNormalizeRelations(t *testing.T) {
	tc := []struct {
		name string
		in   Equation
		want []Equation
	}{
		{
			name: "already greater-equal is passed through",
			in:   Equation{LHS: []Summand{summand(0, 1, true)}, RHS: bi(1), Relation: RelGe},
			want: []Equation{{LHS: []Summand{summand(0, 1, true)}, RHS: bi(1), Relation: RelGe}},
		},
		{
			name: "less-equal becomes negated greater-equal",
			in:   Equation{LHS: []Summand{summand(0, 2, true)}, RHS: bi(3), Relation: RelLe},
			want: []Equation{{LHS: []Summand{summand(0, 2, false)}, RHS: bi(0), Relation: RelGe}},
		},
		{
			name: "strictly-greater becomes degree+1",
			in:   Equation{LHS: []Summand{summand(0, 1, true)}, RHS: bi(1), Relation: RelGt},
			want: []Equation{{LHS: []Summand{summand(0, 1, true)}, RHS: bi(2), Relation: RelGe}},
		},
		{
			name: "equality splits into two constraints",
			in:   Equation{LHS: []Summand{summand(0, 1, true)}, RHS: bi(1), Relation: RelEq},
			want: []Equation{
				{LHS: []Summand{summand(0, 1, true)}, RHS: bi(1), Relation: RelGe},
				{LHS: []Summand{summand(0, 1, false)}, RHS: bi(0), Relation: RelGe},
			},
		},
	}

	for _, c := range tc {
		t.Run(c.name, func(t *testing.T) {
			got := Normalize(c.in)
			if diff := cmp.Diff(c.want, got, bigIntComparer()); diff != "" {
				t.Errorf("Normalize(%+v) mismatch (-want +got):\n%s", c.in, diff)
			}
		})
	}
}

func bigIntComparer() cmp.Option {
	return cmp.Comparer(func(a, b *big.Int) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Cmp(b) == 0
	})
}

func TestMergeSameVariableSinglePass(t *testing.T) {
	eq := Equation{
		LHS: []Summand{
			summand(0, 3, true),
			summand(1, 2, true),
			summand(0, 5, true),
		},
		RHS:      bi(4),
		Relation: RelGe,
	}
	got := mergeSameVariable(eq)
	if len(got.LHS) != 2 {
		t.Fatalf("expected 2 merged summands, got %d: %+v", len(got.LHS), got.LHS)
	}
	for _, s := range got.LHS {
		if s.Var == 0 && s.Factor.Cmp(bi(8)) != 0 {
			t.Errorf("variable 0: expected merged factor 8, got %s", s.Factor)
		}
	}
}

func TestReplaceNegativeFactors(t *testing.T) {
	eq := Equation{
		LHS:      []Summand{summand(0, -3, true)},
		RHS:      bi(1),
		Relation: RelGe,
	}
	got := replaceNegativeFactors(eq)
	if got.LHS[0].Positive != false || got.LHS[0].Factor.Cmp(bi(3)) != 0 {
		t.Fatalf("unexpected summand after flip: %+v", got.LHS[0])
	}
}

func TestClampDegree(t *testing.T) {
	eq := Equation{RHS: bi(-5), Relation: RelGe}
	got := clampDegree(eq)
	if got.RHS.Sign() != 0 {
		t.Fatalf("expected degree clamped to 0, got %s", got.RHS)
	}
}

func TestBuildConstraintSortsLiterals(t *testing.T) {
	eq := Equation{
		LHS: []Summand{
			summand(2, 1, true),
			summand(0, 1, true),
			summand(1, 1, true),
		},
		RHS:      bi(1),
		Relation: RelGe,
	}
	c := BuildConstraint(0, eq)
	if len(c.Literals) != 3 {
		t.Fatalf("expected 3 literals, got %d", len(c.Literals))
	}
}
