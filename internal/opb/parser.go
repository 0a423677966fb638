// Package opb parses the OPB (pseudo-Boolean) input format into the
// normalized constraint set internal/pbc operates on.
package opb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/pbcount/ddnnfc/internal/pbc"
)

// Result is a parsed OPB instance: the variable count declared or inferred,
// and the fully normalized equation list ready for pbc.NewFormula.
type Result struct {
	NumVariables int
	Equations    []pbc.Equation
}

// Parse reads an OPB document. As with cespare-saturday's DIMACS CNF
// reader, a few tolerant, non-standard variations are accepted: the
// `* #variable= ... #constraint= ...` header is optional, comment lines
// (`*`) and blank lines may appear anywhere, and a leading objective line
// (`min:` or `max:`) is skipped rather than rejected, since it plays no
// role in model counting (SPEC_FULL.md §C.4).
func Parse(r io.Reader) (*Result, error) {
	var declaredVars int
	maxVarSeen := 0
	var rawEquations []pbc.Equation

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "*") {
			if n, ok := parseHeaderVarCount(line); ok {
				declaredVars = n
			}
			continue
		}
		if strings.HasPrefix(line, "min:") || strings.HasPrefix(line, "max:") {
			continue
		}

		eq, maxVar, err := parseConstraintLine(line)
		if err != nil {
			return nil, err
		}
		rawEquations = append(rawEquations, eq)
		if maxVar > maxVarSeen {
			maxVarSeen = maxVar
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	numVars := declaredVars
	if maxVarSeen > numVars {
		numVars = maxVarSeen
	}

	normalized := make([]pbc.Equation, 0, len(rawEquations))
	for _, eq := range rawEquations {
		normalized = append(normalized, pbc.Normalize(eq)...)
	}

	return &Result{NumVariables: numVars, Equations: normalized}, nil
}

// parseHeaderVarCount extracts N from a `* #variable= N #constraint= M`
// style comment line, if present.
func parseHeaderVarCount(line string) (int, bool) {
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == "#variable=" && i+1 < len(fields) {
			n, err := strconv.Atoi(fields[i+1])
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// parseConstraintLine parses one `<term>... <relop> <rhs> ;` line into an
// Equation with a 0-based VarID for every `xN` token (N is 1-based in the
// file), returning the largest 1-based variable number it saw.
func parseConstraintLine(line string) (pbc.Equation, int, error) {
	line = strings.TrimSuffix(strings.TrimSpace(line), ";")
	fields := strings.Fields(line)

	relops := map[string]pbc.Relation{
		"=":  pbc.RelEq,
		"==": pbc.RelEq,
		"<=": pbc.RelLe,
		">=": pbc.RelGe,
		"<":  pbc.RelLt,
		">":  pbc.RelGt,
		"!=": pbc.RelNotEq,
	}

	relIdx := -1
	var rel pbc.Relation
	for i, f := range fields {
		if r, ok := relops[f]; ok {
			relIdx = i
			rel = r
			break
		}
	}
	if relIdx == -1 {
		return pbc.Equation{}, 0, fmt.Errorf("opb: no relational operator in line %q", line)
	}
	if relIdx+1 >= len(fields) {
		return pbc.Equation{}, 0, fmt.Errorf("opb: missing right-hand side in line %q", line)
	}

	rhs, ok := new(big.Int).SetString(fields[relIdx+1], 10)
	if !ok {
		return pbc.Equation{}, 0, fmt.Errorf("opb: malformed right-hand side %q", fields[relIdx+1])
	}

	termFields := fields[:relIdx]
	summands, maxVar, err := parseTerms(termFields)
	if err != nil {
		return pbc.Equation{}, 0, err
	}

	return pbc.Equation{LHS: summands, RHS: rhs, Relation: rel}, maxVar, nil
}

// parseTerms parses a sequence of `[+-]N xM` pairs into Summands.
func parseTerms(fields []string) ([]pbc.Summand, int, error) {
	var out []pbc.Summand
	maxVar := 0
	i := 0
	for i < len(fields) {
		factorTok := fields[i]
		i++
		if i >= len(fields) {
			return nil, 0, errors.New("opb: dangling coefficient with no variable")
		}
		varTok := fields[i]
		i++

		factor, ok := new(big.Int).SetString(factorTok, 10)
		if !ok {
			return nil, 0, fmt.Errorf("opb: malformed coefficient %q", factorTok)
		}
		v, err := parseVarToken(varTok)
		if err != nil {
			return nil, 0, err
		}
		if v+1 > maxVar {
			maxVar = v + 1
		}

		positive := factor.Sign() >= 0
		abs := new(big.Int).Abs(factor)
		out = append(out, pbc.Summand{Var: pbc.VarID(v), Factor: abs, Positive: positive})
	}
	return out, maxVar, nil
}

// parseVarToken turns `xN` (or bare `N`) into a 0-based VarID.
func parseVarToken(tok string) (int, error) {
	tok = strings.TrimPrefix(tok, "x")
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("opb: malformed variable token %q", tok)
	}
	if n <= 0 {
		return 0, fmt.Errorf("opb: variable index must be >= 1, got %d", n)
	}
	return n - 1, nil
}
