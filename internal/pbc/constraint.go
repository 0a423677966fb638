package pbc

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Kind distinguishes the two normalized constraint shapes the solver ever
// sees: a greater-or-equal inequality, or a disequality.
type Kind int

const (
	GreaterEqual Kind = iota
	NotEqual
)

func (k Kind) String() string {
	switch k {
	case GreaterEqual:
		return ">="
	case NotEqual:
		return "!="
	default:
		return "?"
	}
}

// ConstraintIndex tags a constraint as belonging to the formula's original,
// normalized equation list or to the arena of clauses the conflict analyzer
// has learned. The two index spaces are kept separate so a learned clause's
// contribution can be excluded from the cache fingerprint (see cache.go).
type ConstraintIndex struct {
	Learned bool
	Index   int
}

func (i ConstraintIndex) String() string {
	if i.Learned {
		return fmt.Sprintf("learned#%d", i.Index)
	}
	return fmt.Sprintf("normal#%d", i.Index)
}

// AssignmentKind records how a variable came to be assigned within a
// constraint: as the first (true) or second (false) branch of a decision,
// or as a forced consequence of propagation.
type AssignmentKind int

const (
	FirstDecision AssignmentKind = iota
	SecondDecision
	Propagated
)

func (k AssignmentKind) String() string {
	switch k {
	case FirstDecision:
		return "first-decision"
	case SecondDecision:
		return "second-decision"
	case Propagated:
		return "propagated"
	default:
		return "?"
	}
}

// assignmentRecord is the per-constraint bookkeeping entry stored for every
// assigned variable, mirroring Constraint.assignments in §3 of the design:
// (sign_chosen, kind, decision_level).
type assignmentRecord struct {
	Sign  bool
	Kind  AssignmentKind
	Level int
}

// ReasonEntry is one element of the implication reason a constraint can
// produce for a variable it forced; the conflict analyzer walks these
// backward to build a 1-UIP learned clause (see conflict.go).
type ReasonEntry struct {
	Var   VarID
	Sign  bool
	Kind  AssignmentKind
	Level int
}

// PropResultKind enumerates the outcomes Constraint.Propagate can report.
type PropResultKind int

const (
	PRNothingToPropagate PropResultKind = iota
	PRSatisfied
	PRAlreadySatisfied
	PRUnsatisfied
	PRImpliedLiteral
	PRImpliedLiteralList
)

// PropagationResult is the tagged outcome of propagating a single literal
// into a constraint. Literals is populated only for the two implied-literal
// kinds.
type PropagationResult struct {
	Kind     PropResultKind
	Literals []Literal
}

// Constraint is a normalized pseudo-Boolean inequality: sum(factor_i * lit_i)
// >= degree (GreaterEqual) or sum(...) != degree (NotEqual), with all
// factors and degree non-negative. See SPEC_FULL.md §B for why factors are
// math/big.Int rather than a fixed-width integer.
type Constraint struct {
	Index      ConstraintIndex
	Kind       Kind
	Literals   map[VarID]Literal
	Unassigned map[VarID]Literal
	Degree     *big.Int

	SumTrue       *big.Int
	SumUnassigned *big.Int
	FactorSum     *big.Int

	Assignments map[VarID]assignmentRecord
	MaxLiteral  Literal

	hashValue uint64
	hashStale bool
}

// NewConstraint builds an empty constraint of the given kind and degree;
// callers add literals with AddLiteral before it is used.
func NewConstraint(index ConstraintIndex, kind Kind, degree *big.Int) *Constraint {
	return &Constraint{
		Index:         index,
		Kind:          kind,
		Literals:      make(map[VarID]Literal),
		Unassigned:    make(map[VarID]Literal),
		Degree:        degree,
		SumTrue:       big.NewInt(0),
		SumUnassigned: big.NewInt(0),
		FactorSum:     big.NewInt(0),
		Assignments:   make(map[VarID]assignmentRecord),
		MaxLiteral:    Literal{Factor: big.NewInt(0)},
		hashStale:     true,
	}
}

// AddLiteral inserts a literal into the constraint's initial (fully
// unassigned) state. Must only be called during construction, before any
// Propagate/Undo call.
func (c *Constraint) AddLiteral(l Literal) {
	c.Literals[l.Var] = l
	c.Unassigned[l.Var] = l
	c.SumUnassigned.Add(c.SumUnassigned, l.Factor)
	c.FactorSum.Add(c.FactorSum, l.Factor)
	if l.Factor.Cmp(c.MaxLiteral.Factor) > 0 {
		c.MaxLiteral = l
	}
	c.hashStale = true
}

// alreadySatisfied reports whether the constraint is satisfied in its
// current state, per the invariants in SPEC_FULL.md / spec.md §3.
func (c *Constraint) alreadySatisfied() bool {
	if c.Kind == GreaterEqual {
		return c.SumTrue.Cmp(c.Degree) >= 0
	}
	return len(c.Unassigned) == 0 && c.SumTrue.Cmp(c.Degree) != 0
}

// IsUnsatisfied reports whether the constraint is currently violated or
// still active (i.e. not satisfied); used by the component decomposer to
// decide which constraints remain "in scope".
func (c *Constraint) IsUnsatisfied() bool {
	return !c.alreadySatisfied()
}

// Propagate applies a newly assigned literal (v, sign) to the constraint,
// classifying the result per spec.md §4.1. The constraint's bookkeeping
// fields are always updated to keep the §8 partition invariant
// (|Unassigned| + |Assignments| = |Literals|) regardless of whether the
// constraint was already satisfied before this call — see DESIGN.md's
// Open Question decisions for why this differs from the reference
// implementation's early return.
func (c *Constraint) Propagate(v VarID, sign bool, kind AssignmentKind, level int) PropagationResult {
	if rec, ok := c.Assignments[v]; ok {
		if rec.Sign == sign {
			return PropagationResult{Kind: PRNothingToPropagate}
		}
		return PropagationResult{Kind: PRUnsatisfied}
	}

	wasSatisfied := c.alreadySatisfied()

	lit, ok := c.Literals[v]
	if !ok {
		panic(fmt.Sprintf("pbc: Propagate called on constraint %s for variable %d it does not contain", c.Index, v))
	}

	if lit.Positive == sign {
		c.SumTrue.Add(c.SumTrue, lit.Factor)
	}
	c.SumUnassigned.Sub(c.SumUnassigned, lit.Factor)
	delete(c.Unassigned, v)
	c.Assignments[v] = assignmentRecord{Sign: sign, Kind: kind, Level: level}
	c.hashStale = true

	if v == c.MaxLiteral.Var {
		c.recomputeMaxLiteral()
	}

	if c.Kind == NotEqual {
		if len(c.Unassigned) != 0 {
			return PropagationResult{Kind: PRNothingToPropagate}
		}
		if c.SumTrue.Cmp(c.Degree) != 0 {
			if wasSatisfied {
				return PropagationResult{Kind: PRAlreadySatisfied}
			}
			return PropagationResult{Kind: PRSatisfied}
		}
		return PropagationResult{Kind: PRUnsatisfied}
	}

	sumBoth := new(big.Int).Add(c.SumTrue, c.SumUnassigned)
	switch {
	case c.SumTrue.Cmp(c.Degree) >= 0:
		if wasSatisfied {
			return PropagationResult{Kind: PRAlreadySatisfied}
		}
		return PropagationResult{Kind: PRSatisfied}
	case sumBoth.Cmp(c.Degree) < 0:
		return PropagationResult{Kind: PRUnsatisfied}
	case sumBoth.Cmp(c.Degree) == 0:
		implied := make([]Literal, 0, len(c.Unassigned))
		for _, u := range c.Unassigned {
			implied = append(implied, u)
		}
		sortLiterals(implied)
		return PropagationResult{Kind: PRImpliedLiteralList, Literals: implied}
	default:
		threshold := new(big.Int).Add(c.Degree, c.MaxLiteral.Factor)
		if sumBoth.Cmp(threshold) < 0 {
			return PropagationResult{Kind: PRImpliedLiteral, Literals: []Literal{c.MaxLiteral}}
		}
	}
	return PropagationResult{Kind: PRNothingToPropagate}
}

// Undo reverses a prior Propagate call for variable v, which was assigned
// sign. It reports whether the constraint transitioned from satisfied to
// active, so the caller can adjust a global unsatisfied-constraint count.
func (c *Constraint) Undo(v VarID, sign bool) bool {
	rec, ok := c.Assignments[v]
	if !ok {
		return false
	}
	_ = rec
	lit := c.Literals[v]

	satisfiedBefore := c.alreadySatisfied()

	c.Unassigned[v] = lit
	delete(c.Assignments, v)
	c.SumUnassigned.Add(c.SumUnassigned, lit.Factor)
	if lit.Positive == sign {
		c.SumTrue.Sub(c.SumTrue, lit.Factor)
	}
	c.hashStale = true

	if lit.Factor.Cmp(c.MaxLiteral.Factor) > 0 {
		c.MaxLiteral = lit
	}

	satisfiedAfter := c.alreadySatisfied()
	return satisfiedBefore && !satisfiedAfter
}

// recomputeMaxLiteral rescans Unassigned for the literal with the largest
// factor. Called only when the previous max literal was just assigned.
func (c *Constraint) recomputeMaxLiteral() {
	max := Literal{Factor: big.NewInt(0)}
	for _, l := range c.Unassigned {
		if l.Factor.Cmp(max.Factor) > 0 {
			max = l
		}
	}
	c.MaxLiteral = max
}

// CalculateReason returns the implication reason for the given propagated
// variable: every other currently-assigned literal in the constraint, which
// together are sufficient to explain why that variable was forced.
func (c *Constraint) CalculateReason(propagated VarID) []ReasonEntry {
	result := make([]ReasonEntry, 0, len(c.Assignments))
	for v, rec := range c.Assignments {
		if v == propagated {
			continue
		}
		result = append(result, ReasonEntry{Var: v, Sign: rec.Sign, Kind: rec.Kind, Level: rec.Level})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Var < result[j].Var })
	return result
}

// Hash returns a cache-friendly fingerprint contribution for this
// constraint, memoized until the next mutation (the hash_cache field of
// spec.md §3). It folds in the constraint's identity and its current
// sum_true, which is exactly the per-constraint contribution the overall
// residual-formula fingerprint needs (see cache.go).
func (c *Constraint) Hash() uint64 {
	if !c.hashStale {
		return c.hashValue
	}
	h := xxhash.New()
	var buf [8]byte
	putUint32 := func(v uint32) {
		buf[0] = byte(v)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v >> 16)
		buf[3] = byte(v >> 24)
		h.Write(buf[:4])
	}
	putUint32(uint32(c.Index.Index))
	if c.Index.Learned {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	h.Write(c.SumTrue.Bytes())
	c.hashValue = h.Sum64()
	c.hashStale = false
	return c.hashValue
}

func sortLiterals(lits []Literal) {
	sort.Slice(lits, func(i, j int) bool { return lits[i].Var < lits[j].Var })
}
