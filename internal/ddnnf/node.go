// Package ddnnf implements the deterministic decomposable negation normal
// form DAG that the search controller builds in lock-step with counting
// (spec.md §3, §4.7): true/false leaves and AND/OR nodes, shared across the
// DAG via node ids rather than duplicated per use site.
package ddnnf

// Kind distinguishes a node's role. There is no dedicated literal-leaf
// kind: a literal is represented as an Edge into a True node annotated
// with exactly that one literal (see Edge), which is also how the output
// format of spec.md §6 expresses it — an edge's forced-literal list, not a
// node of its own.
type Kind int

const (
	KindTrue Kind = iota
	KindFalse
	KindAnd
	KindOr
)

func (k Kind) String() string {
	switch k {
	case KindTrue:
		return "t"
	case KindFalse:
		return "f"
	case KindAnd:
		return "a"
	case KindOr:
		return "o"
	default:
		return "?"
	}
}

// Node is one DAG vertex. AND children must have pairwise-disjoint variable
// supports (decomposability); OR nodes have exactly two children whose
// edges disagree on the branch variable (determinism).
type Node struct {
	ID       int
	Kind     Kind
	Children []Edge
}

// SignedLit names a variable and the polarity an edge forces it to. It is
// deliberately untyped with respect to internal/pbc.VarID so this package
// has no dependency on the solver core; callers convert at the boundary,
// passing the 1-based variable number (0-based VarID plus one) that the
// writer prints as the literal id.
type SignedLit struct {
	Var      uint32
	Positive bool
}

// Edge is a parent -> child reference annotated with the literals the
// search forced along that particular path. Edge, not Node, is what the
// search's ddnnf_stack actually holds (see spec.md §4.2's composition
// rules): the same node can be reached via different edges with different
// forced literals at different use sites, which is exactly how cached
// subtrees get reused with fresh context.
type Edge struct {
	Child *Node
	Lits  []SignedLit
}

// Builder hands out monotonically increasing node ids and owns the True/
// False singleton leaves.
type Builder struct {
	nextID     int
	trueNode   *Node
	falseNode  *Node
}

func NewBuilder() *Builder {
	b := &Builder{nextID: 1}
	b.trueNode = &Node{ID: b.allocID(), Kind: KindTrue}
	b.falseNode = &Node{ID: b.allocID(), Kind: KindFalse}
	return b
}

func (b *Builder) allocID() int {
	id := b.nextID
	b.nextID++
	return id
}

// True returns the shared TrueLeaf node.
func (b *Builder) True() *Node { return b.trueNode }

// False returns the shared FalseLeaf node.
func (b *Builder) False() *Node { return b.falseNode }

// TrueEdge returns a fresh edge to the TrueLeaf with no forced literals,
// the base case pushed whenever a sub-problem has zero unsatisfied
// constraints.
func (b *Builder) TrueEdge() Edge { return Edge{Child: b.trueNode} }

// FalseEdge returns a fresh edge to the FalseLeaf, pushed on conflict.
func (b *Builder) FalseEdge() Edge { return Edge{Child: b.falseNode} }

// And allocates a new AND node over the given children.
func (b *Builder) And(children []Edge) *Node {
	return &Node{ID: b.allocID(), Kind: KindAnd, Children: children}
}

// Or allocates a new OR node; its two children must already carry the
// decision literal that distinguishes them on their respective edges.
func (b *Builder) Or(left, right Edge) *Node {
	return &Node{ID: b.allocID(), Kind: KindOr, Children: []Edge{left, right}}
}

// withLit returns e with lit appended to its forced-literal list, leaving
// the original edge (and its slice backing array) untouched.
func withLit(e Edge, lit SignedLit) Edge {
	lits := make([]SignedLit, len(e.Lits), len(e.Lits)+1)
	copy(lits, e.Lits)
	lits = append(lits, lit)
	return Edge{Child: e.Child, Lits: lits}
}

// ExtendWithLiteral appends a forced literal onto e's annotation, unless e
// already leads to False — in which case nothing can make it more or less
// false, so the edge is returned unchanged (the "FALSE-short-circuit" of
// spec.md §4.2).
func ExtendWithLiteral(e Edge, v uint32, positive bool) Edge {
	if e.Child.Kind == KindFalse {
		return e
	}
	return withLit(e, SignedLit{Var: v, Positive: positive})
}

// ComposeDisjunction implements the SecondDecision backtrack composition
// rule of spec.md §4.2: combine the two branch edges (true-branch and
// false-branch of one decision variable), each already carrying its own
// decision literal and every literal propagation forced along that branch
// (the caller folds those in with ExtendWithLiteral before calling this).
func (b *Builder) ComposeDisjunction(first, second Edge) Edge {
	firstFalse := first.Child.Kind == KindFalse
	secondFalse := second.Child.Kind == KindFalse

	switch {
	case firstFalse && secondFalse:
		return b.FalseEdge()
	case firstFalse:
		return second
	case secondFalse:
		return first
	default:
		return Edge{Child: b.Or(first, second)}
	}
}

// ComposeConjunction implements the ComponentBranch backtrack composition
// rule: AND together every component's edge, short-circuiting to False if
// any component's edge already is.
func (b *Builder) ComposeConjunction(edges []Edge) Edge {
	if len(edges) == 1 {
		return edges[0]
	}
	for _, e := range edges {
		if e.Child.Kind == KindFalse {
			return b.FalseEdge()
		}
	}
	return Edge{Child: b.And(edges)}
}

// Close returns a context-free form of e: one with no forced-literal
// annotation of its own, safe to store in the component cache and reuse
// from an arbitrary future call site. An edge with forced literals only
// means something relative to whoever holds it (the literals a parent
// decision forced along this path); to persist that meaning independent
// of any particular parent, the literals are folded into the DAG itself
// as a real AND with a literal-carrying edge into True, rather than left
// as metadata that caching would otherwise silently discard.
func (b *Builder) Close(e Edge) Edge {
	if len(e.Lits) == 0 || e.Child.Kind == KindFalse {
		return Edge{Child: e.Child}
	}
	bare := Edge{Child: e.Child}
	litEdge := Edge{Child: b.trueNode, Lits: append([]SignedLit(nil), e.Lits...)}
	return Edge{Child: b.And([]Edge{bare, litEdge})}
}
