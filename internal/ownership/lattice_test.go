package ownership

import (
	"testing"

	"borrowck/internal/cfg"
	"borrowck/internal/ir"
)

func pl(base ir.LocalID, fields ...string) ir.Place {
	p := ir.Place{Base: base}
	for _, f := range fields {
		p.Proj = append(p.Proj, ir.Proj{Kind: ir.ProjField, Field: f})
	}
	return p
}

func TestJoinKeepsDefiniteOnlyWhenMovedEverywhere(t *testing.T) {
	at := ir.Point{Block: 1, Stmt: 0}
	x := pl(0)

	left := moveSet{}
	left.markMoved(x, at)
	right := moveSet{}
	right.markMoved(x, ir.Point{Block: 2, Stmt: 0})

	joined := joinMoveSets([]moveSet{left, right})
	e, ok := joined.movedOverlapping(x)
	if !ok {
		t.Fatal("expected x moved after join")
	}
	if e.maybe {
		t.Fatal("moved on every edge must stay definite")
	}
	if e.at != at {
		t.Fatalf("expected earliest move point %s, got %s", at, e.at)
	}
}

func TestJoinDemotesPartialMoveToMaybe(t *testing.T) {
	x := pl(0)
	left := moveSet{}
	left.markMoved(x, ir.Point{Block: 1, Stmt: 0})

	joined := joinMoveSets([]moveSet{left, {}})
	e, ok := joined.movedOverlapping(x)
	if !ok {
		t.Fatal("expected a maybe entry after one-sided join")
	}
	if !e.maybe {
		t.Fatal("moved on some-but-not-all edges must become maybe")
	}
}

func TestHealClearsMovedSubPaths(t *testing.T) {
	s := moveSet{}
	s.markMoved(pl(0, "a"), ir.Point{})
	s.markMoved(pl(0, "b"), ir.Point{})

	s.heal(pl(0))
	if _, ok := s.movedOverlapping(pl(0)); ok {
		t.Fatal("reassignment of the root must heal all sub-paths")
	}
}

func TestMovedOverlappingIgnoresSiblings(t *testing.T) {
	s := moveSet{}
	s.markMoved(pl(0, "a"), ir.Point{})

	if _, ok := s.movedOverlapping(pl(0, "b")); ok {
		t.Fatal("sibling path must not be affected")
	}
	if _, ok := s.movedOverlapping(pl(0)); !ok {
		t.Fatal("parent read must see the moved sub-path")
	}
	if _, ok := s.movedOverlapping(pl(0, "a", "inner")); !ok {
		t.Fatal("path below the moved one must see the move")
	}
}

func TestPointLiveEndsAtLastUse(t *testing.T) {
	b := newFn("liveness")
	s := b.local("s", ir.LocalFlagOwn)
	r := b.local("r", ir.LocalFlagRef)
	b.block(ret(),
		borrow(r, s, ir.BorrowShared),
		useCopy(r),
		assignConst(s, "1"),
	)
	fn := b.build(t)
	g := cfg.Build(fn)
	lv := newLiveness(fn, g, refHolders(fn))
	if !lv.run(DefaultMaxIterations) {
		t.Fatal("liveness did not converge")
	}

	live := lv.pointLive(0)
	if live[0].has(r.Base) {
		t.Fatal("r must be dead before its defining borrow")
	}
	if !live[1].has(r.Base) {
		t.Fatal("r must be live entering its last use")
	}
	if live[2].has(r.Base) {
		t.Fatal("r must be dead after its last use")
	}
}

func TestRefHoldersClosesOverAliases(t *testing.T) {
	b := newFn("holders")
	s := b.local("s", ir.LocalFlagOwn)
	r := b.local("r", ir.LocalFlagRef)
	agg := b.local("agg", ir.LocalFlagOwn)
	b.block(ret(),
		borrow(r, s, ir.BorrowShared),
		assignCopy(field(agg, "ref"), r),
	)
	fn := b.build(t)

	holders := refHolders(fn)
	if !holders.has(r.Base) {
		t.Fatal("borrow destination must be a holder")
	}
	if !holders.has(agg.Base) {
		t.Fatal("aggregate receiving a reference into a field must become a holder")
	}
	if holders.has(s.Base) {
		t.Fatal("the borrowed place itself is not a holder")
	}
}
