package cfg

import (
	"testing"

	"borrowck/internal/ir"
)

func block(term ir.Terminator) ir.Block {
	return ir.Block{Term: term}
}

func gotoBB(target ir.BlockID) ir.Terminator {
	return ir.Terminator{Kind: ir.TermGoto, Goto: ir.GotoTerm{Target: target}}
}

func branchBB(then, els ir.BlockID) ir.Terminator {
	return ir.Terminator{
		Kind:   ir.TermBranch,
		Branch: ir.BranchTerm{Cond: ir.Operand{Kind: ir.OperandConst, Const: "c"}, Then: then, Else: els},
	}
}

func ret() ir.Terminator { return ir.Terminator{Kind: ir.TermReturn} }

func TestBuildEdges(t *testing.T) {
	fn := &ir.Func{
		Name: "edges",
		Blocks: []ir.Block{
			block(branchBB(1, 2)),
			block(gotoBB(3)),
			block(gotoBB(3)),
			block(ret()),
		},
	}
	g := Build(fn)

	if got := g.Succs(0); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected successors of bb0: %v", got)
	}
	preds := g.Preds(3)
	if len(preds) != 2 {
		t.Fatalf("expected two predecessors of bb3, got %v", preds)
	}
	for id := ir.BlockID(0); id < 4; id++ {
		if !g.Reachable(id) {
			t.Fatalf("bb%d should be reachable", id)
		}
	}
	if g.HasLoops() {
		t.Fatal("diamond has no back-edges")
	}
}

func TestDeadBlocksDetected(t *testing.T) {
	fn := &ir.Func{
		Name: "dead",
		Blocks: []ir.Block{
			block(ret()),
			block(gotoBB(0)), // unreachable
			block(ret()),     // unreachable
		},
	}
	g := Build(fn)

	dead := g.DeadBlocks()
	if len(dead) != 2 || dead[0] != 1 || dead[1] != 2 {
		t.Fatalf("expected dead blocks [1 2], got %v", dead)
	}
}

func TestBackEdgeIdentified(t *testing.T) {
	fn := &ir.Func{
		Name: "loop",
		Blocks: []ir.Block{
			block(gotoBB(1)),
			block(branchBB(2, 3)),
			block(gotoBB(1)), // back-edge into the loop head
			block(ret()),
		},
	}
	g := Build(fn)

	if !g.HasLoops() {
		t.Fatal("expected a loop")
	}
	if !g.IsBackEdge(2, 1) {
		t.Fatal("bb2->bb1 is the back-edge")
	}
	if g.IsBackEdge(0, 1) {
		t.Fatal("bb0->bb1 is a forward edge")
	}
}

func TestReversePostorderStartsAtEntry(t *testing.T) {
	fn := &ir.Func{
		Name: "order",
		Blocks: []ir.Block{
			block(branchBB(1, 2)),
			block(gotoBB(3)),
			block(gotoBB(3)),
			block(ret()),
		},
	}
	g := Build(fn)

	rpo := g.ReversePostorder()
	if len(rpo) != 4 {
		t.Fatalf("expected 4 reachable blocks in order, got %v", rpo)
	}
	if rpo[0] != 0 {
		t.Fatalf("reverse postorder must start at the entry, got %v", rpo)
	}
	if rpo[len(rpo)-1] != 3 {
		t.Fatalf("the join block must come last, got %v", rpo)
	}
	po := g.Postorder()
	if po[len(po)-1] != 0 {
		t.Fatalf("postorder must end at the entry, got %v", po)
	}
}
