package ddnnf

import "testing"

func TestExtendWithLiteralShortCircuitsFalse(t *testing.T) {
	b := NewBuilder()
	e := ExtendWithLiteral(b.FalseEdge(), 0, true)
	if e.Child.Kind != KindFalse {
		t.Fatalf("expected False to stay False, got kind %v", e.Child.Kind)
	}
	if len(e.Lits) != 0 {
		t.Fatalf("expected no literals folded onto a False edge, got %v", e.Lits)
	}
}

func TestExtendWithLiteralAccumulates(t *testing.T) {
	b := NewBuilder()
	e := b.TrueEdge()
	e = ExtendWithLiteral(e, 0, true)
	e = ExtendWithLiteral(e, 1, false)
	if len(e.Lits) != 2 {
		t.Fatalf("expected 2 accumulated literals, got %d", len(e.Lits))
	}
	if e.Lits[0].Var != 0 || !e.Lits[0].Positive {
		t.Errorf("expected first literal +0, got %+v", e.Lits[0])
	}
	if e.Lits[1].Var != 1 || e.Lits[1].Positive {
		t.Errorf("expected second literal -1, got %+v", e.Lits[1])
	}
}

func TestExtendWithLiteralDoesNotMutateOriginal(t *testing.T) {
	b := NewBuilder()
	base := ExtendWithLiteral(b.TrueEdge(), 0, true)
	_ = ExtendWithLiteral(base, 1, true)
	if len(base.Lits) != 1 {
		t.Fatalf("expected original edge's literal slice untouched, got %d entries", len(base.Lits))
	}
}

func TestComposeDisjunctionBothFalse(t *testing.T) {
	b := NewBuilder()
	e := b.ComposeDisjunction(b.FalseEdge(), b.FalseEdge())
	if e.Child.Kind != KindFalse {
		t.Fatalf("expected False when both branches are False, got %v", e.Child.Kind)
	}
}

func TestComposeDisjunctionOneFalsePassesOther(t *testing.T) {
	b := NewBuilder()
	other := ExtendWithLiteral(b.TrueEdge(), 0, true)
	e := b.ComposeDisjunction(b.FalseEdge(), other)
	if e.Child != other.Child {
		t.Fatalf("expected the non-False branch's child to pass through unchanged")
	}
	if len(e.Lits) != 1 {
		t.Fatalf("expected the non-False branch's literals preserved, got %v", e.Lits)
	}
}

func TestComposeDisjunctionBothLive(t *testing.T) {
	b := NewBuilder()
	first := ExtendWithLiteral(b.TrueEdge(), 0, true)
	second := ExtendWithLiteral(b.TrueEdge(), 0, false)
	e := b.ComposeDisjunction(first, second)
	if e.Child.Kind != KindOr {
		t.Fatalf("expected an OR node for two live branches, got %v", e.Child.Kind)
	}
	if len(e.Lits) != 0 {
		t.Fatalf("expected the combined edge to carry no literals of its own, got %v", e.Lits)
	}
}

func TestComposeConjunctionShortCircuitsFalse(t *testing.T) {
	b := NewBuilder()
	live := ExtendWithLiteral(b.TrueEdge(), 0, true)
	e := b.ComposeConjunction([]Edge{live, b.FalseEdge()})
	if e.Child.Kind != KindFalse {
		t.Fatalf("expected False when any component is False, got %v", e.Child.Kind)
	}
}

func TestComposeConjunctionSingleEdgePassesThrough(t *testing.T) {
	b := NewBuilder()
	live := ExtendWithLiteral(b.TrueEdge(), 0, true)
	e := b.ComposeConjunction([]Edge{live})
	if e.Child != live.Child || len(e.Lits) != len(live.Lits) {
		t.Fatalf("expected a single-edge conjunction to pass through unchanged, got %+v", e)
	}
}

func TestComposeConjunctionBuildsAnd(t *testing.T) {
	b := NewBuilder()
	a := ExtendWithLiteral(b.TrueEdge(), 0, true)
	c := ExtendWithLiteral(b.TrueEdge(), 1, true)
	e := b.ComposeConjunction([]Edge{a, c})
	if e.Child.Kind != KindAnd {
		t.Fatalf("expected an AND node, got %v", e.Child.Kind)
	}
	if len(e.Child.Children) != 2 {
		t.Fatalf("expected 2 AND children, got %d", len(e.Child.Children))
	}
}

func TestCloseNoLitsIsNoOp(t *testing.T) {
	b := NewBuilder()
	bare := b.TrueEdge()
	closed := b.Close(bare)
	if closed.Child != bare.Child {
		t.Fatalf("expected Close to leave a Lits-free edge's child unchanged")
	}
	if len(closed.Lits) != 0 {
		t.Fatalf("expected Close to return no Lits, got %v", closed.Lits)
	}
}

func TestCloseFalseIsNoOp(t *testing.T) {
	b := NewBuilder()
	e := ExtendWithLiteral(b.FalseEdge(), 0, true)
	closed := b.Close(e)
	if closed.Child.Kind != KindFalse {
		t.Fatalf("expected Close(False) to stay False, got %v", closed.Child.Kind)
	}
}

func TestCloseMaterializesLiteralsIntoAndNode(t *testing.T) {
	b := NewBuilder()
	e := ExtendWithLiteral(b.TrueEdge(), 3, true)
	closed := b.Close(e)

	if len(closed.Lits) != 0 {
		t.Fatalf("expected a closed edge to carry no annotation of its own, got %v", closed.Lits)
	}
	if closed.Child.Kind != KindAnd {
		t.Fatalf("expected Close to materialize the literal into an AND node, got %v", closed.Child.Kind)
	}
	if len(closed.Child.Children) != 2 {
		t.Fatalf("expected the AND to have 2 children (bare + literal edge), got %d", len(closed.Child.Children))
	}

	var sawLitEdge bool
	for _, child := range closed.Child.Children {
		if len(child.Lits) == 1 && child.Lits[0].Var == 3 && child.Lits[0].Positive {
			sawLitEdge = true
		}
	}
	if !sawLitEdge {
		t.Fatalf("expected one child edge to carry the forced literal +3, got %+v", closed.Child.Children)
	}
}

func TestCloseIsIdempotentOnReClose(t *testing.T) {
	b := NewBuilder()
	e := ExtendWithLiteral(b.TrueEdge(), 3, true)
	once := b.Close(e)
	twice := b.Close(once)
	if twice.Child != once.Child {
		t.Fatalf("expected re-closing an already-closed edge to be a no-op")
	}
}
