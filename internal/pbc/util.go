package pbc

import "math/big"

// bigOne returns a fresh *big.Int(1); every call gets its own instance
// since big.Int is mutated in place elsewhere (e.g. Constraint.Propagate).
func bigOne() *big.Int {
	return big.NewInt(1)
}

// ratToFloat renders num/den as a float64 via big.Rat, for the variable
// scorer's arbitrary-precision factor/degree ratios (see varscore.go).
func ratToFloat(num, den *big.Int) float64 {
	f, _ := new(big.Rat).SetFrac(num, den).Float64()
	return f
}
