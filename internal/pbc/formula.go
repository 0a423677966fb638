package pbc

// Formula is the normalized, ordered constraint list produced from parsed
// OPB equations, together with the inverted variable -> constraint index
// used by propagation and the component decomposer.
type Formula struct {
	Constraints  []*Constraint
	NumVariables int
	byVariable   [][]int // normal constraint indices, indexed by VarID

	Learned         []*Constraint
	learnedByVariable map[VarID][]int
}

// NewFormula builds a Formula from a fully normalized equation list.
func NewFormula(numVariables int, equations []Equation) *Formula {
	f := &Formula{
		NumVariables:      numVariables,
		byVariable:        make([][]int, numVariables),
		learnedByVariable: make(map[VarID][]int),
	}
	for i, eq := range equations {
		c := BuildConstraint(i, eq)
		f.Constraints = append(f.Constraints, c)
		for v := range c.Literals {
			f.byVariable[v] = append(f.byVariable[v], i)
		}
	}
	return f
}

// ConstraintsOf returns the normal-constraint indices that mention v.
func (f *Formula) ConstraintsOf(v VarID) []int {
	if int(v) >= len(f.byVariable) {
		return nil
	}
	return f.byVariable[v]
}

// LearnedConstraintsOf returns the learned-clause indices that mention v.
func (f *Formula) LearnedConstraintsOf(v VarID) []int {
	return f.learnedByVariable[v]
}

// AddLearned registers a new learned clause in the arena and indexes it by
// the variables it mentions.
func (f *Formula) AddLearned(c *Constraint) {
	idx := len(f.Learned)
	c.Index = ConstraintIndex{Learned: true, Index: idx}
	f.Learned = append(f.Learned, c)
	for v := range c.Literals {
		f.learnedByVariable[v] = append(f.learnedByVariable[v], idx)
	}
}

// Constraint resolves a ConstraintIndex to its *Constraint, regardless of
// which arena (normal or learned) it belongs to.
func (f *Formula) Constraint(idx ConstraintIndex) *Constraint {
	if idx.Learned {
		return f.Learned[idx.Index]
	}
	return f.Constraints[idx.Index]
}
