package pbc

import "math/big"

// Relation is the comparison operator an unnormalized OPB equation uses.
// The OPB parser (internal/opb) is the sole producer of Equation values;
// Normalize (see normalize.go) reduces every Relation down to GreaterEqual
// or NotEqual.
type Relation int

const (
	RelEq Relation = iota
	RelLe
	RelGe
	RelLt
	RelGt
	RelNotEq
)

// Summand is one signed, signed-factor term of an equation's left-hand
// side, as produced directly by the OPB parser before normalization folds
// duplicate variables and negative factors away.
type Summand struct {
	Var      VarID
	Factor   *big.Int
	Positive bool
}

// Equation is a single parsed OPB constraint line, prior to normalization.
type Equation struct {
	LHS      []Summand
	RHS      *big.Int
	Relation Relation
}
