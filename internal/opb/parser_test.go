package opb

import (
	"strings"
	"testing"

	"github.com/pbcount/ddnnfc/internal/pbc"
)

func TestParseHeaderAndComments(t *testing.T) {
	doc := `* #variable= 3 #constraint= 1
* a comment line with no header fields
min: +1 x1;
1 x1 1 x2 >= 1;
`
	res, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.NumVariables != 3 {
		t.Fatalf("expected declared NumVariables=3, got %d", res.NumVariables)
	}
	if len(res.Equations) == 0 {
		t.Fatalf("expected at least one normalized equation")
	}
}

func TestParseInfersVariableCountWithoutHeader(t *testing.T) {
	doc := `1 x1 1 x4 >= 1;`
	res, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.NumVariables != 4 {
		t.Fatalf("expected inferred NumVariables=4 (max var x4), got %d", res.NumVariables)
	}
}

func TestParseRelationalOperators(t *testing.T) {
	for _, tc := range []struct {
		line string
		rel  pbc.Relation
	}{
		{"1 x1 = 1;", pbc.RelEq},
		{"1 x1 <= 1;", pbc.RelLe},
		{"1 x1 >= 1;", pbc.RelGe},
		{"1 x1 < 1;", pbc.RelLt},
		{"1 x1 > 1;", pbc.RelGt},
		{"1 x1 != 1;", pbc.RelNotEq},
	} {
		eq, maxVar, err := parseConstraintLine(tc.line)
		if err != nil {
			t.Fatalf("line %q: parseConstraintLine error: %v", tc.line, err)
		}
		if eq.Relation != tc.rel {
			t.Errorf("line %q: expected relation %v, got %v", tc.line, tc.rel, eq.Relation)
		}
		if maxVar != 1 {
			t.Errorf("line %q: expected maxVar=1, got %d", tc.line, maxVar)
		}
	}
}

func TestParseNegativeCoefficient(t *testing.T) {
	eq, _, err := parseConstraintLine("-2 x1 +1 x2 >= -1;")
	if err != nil {
		t.Fatalf("parseConstraintLine error: %v", err)
	}
	if len(eq.LHS) != 2 {
		t.Fatalf("expected 2 summands, got %d", len(eq.LHS))
	}
	if eq.LHS[0].Positive {
		t.Errorf("expected first summand negative (factor -2), got positive")
	}
	if eq.LHS[0].Factor.Int64() != 2 {
		t.Errorf("expected abs factor 2, got %s", eq.LHS[0].Factor)
	}
	if eq.RHS.Int64() != -1 {
		t.Errorf("expected RHS -1, got %s", eq.RHS)
	}
}

func TestParseVarTokenRejectsZeroAndNonPositive(t *testing.T) {
	if _, err := parseVarToken("x0"); err == nil {
		t.Fatalf("expected error for x0 (1-based indices only)")
	}
	if _, err := parseVarToken("x-1"); err == nil {
		t.Fatalf("expected error for negative variable index")
	}
	v, err := parseVarToken("x3")
	if err != nil {
		t.Fatalf("parseVarToken error: %v", err)
	}
	if v != 2 {
		t.Fatalf("expected 0-based VarID 2 for x3, got %d", v)
	}
}

func TestParseMissingRelationalOperator(t *testing.T) {
	if _, _, err := parseConstraintLine("1 x1 1;"); err == nil {
		t.Fatalf("expected error for a line with no relational operator")
	}
}

func TestParseSkipsObjectiveLine(t *testing.T) {
	doc := `max: +1 x1 +1 x2;
1 x1 1 x2 >= 1;
`
	res, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(res.Equations) == 0 {
		t.Fatalf("expected the constraint line to still be parsed")
	}
}
