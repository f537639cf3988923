package ownership

import (
	"borrowck/internal/cfg"
	"borrowck/internal/ir"
)

// moveSink receives a use-after-move finding: place read at pt while entry
// says its value moved away.
type moveSink func(p ir.Place, pt ir.Point, cause moveEntry)

func nopMoveSink(ir.Place, ir.Point, moveEntry) {}

// moveAnalysis is the forward move/ownership dataflow (§ Move Tracker).
// entry[b] is the moveSet on entry to block b; the transfer function is
// replayed statement by statement when per-point state is needed.
type moveAnalysis struct {
	fn        *ir.Func
	g         *cfg.Graph
	entry     []moveSet
	converged bool
}

func newMoveAnalysis(fn *ir.Func, g *cfg.Graph) *moveAnalysis {
	a := &moveAnalysis{
		fn:        fn,
		g:         g,
		entry:     make([]moveSet, g.NumBlocks()),
		converged: true,
	}
	for i := range a.entry {
		a.entry[i] = moveSet{}
	}
	return a
}

// run iterates to a fixpoint over reverse postorder, capped at maxIter sweeps.
// Reports whether the fixpoint settled within the cap.
func (a *moveAnalysis) run(maxIter int) bool {
	order := a.g.ReversePostorder()
	for iter := 0; ; iter++ {
		if iter >= maxIter {
			a.converged = false
			return false
		}
		changed := false
		for _, id := range order {
			in := a.joinPreds(id)
			if !in.equal(a.entry[id]) {
				a.entry[id] = in
				changed = true
			}
			// Exit state feeds successors on the next sweep via joinPreds.
		}
		if !changed {
			return true
		}
	}
}

// joinPreds computes the block-entry state from the exit states of reachable
// predecessors. The entry block additionally joins the function-start state,
// where every parameter is Owned, so a loop back into the entry still merges
// correctly.
func (a *moveAnalysis) joinPreds(id ir.BlockID) moveSet {
	var ins []moveSet
	if id == a.fn.Entry {
		ins = append(ins, moveSet{})
	}
	for _, pred := range a.g.Preds(id) {
		if !a.g.Reachable(pred) {
			continue
		}
		ins = append(ins, a.blockExit(pred))
	}
	if len(ins) == 0 {
		return a.entry[id].clone()
	}
	return joinMoveSets(ins)
}

// blockExit replays the block's transfer function over its entry state.
func (a *moveAnalysis) blockExit(id ir.BlockID) moveSet {
	s := a.entry[id].clone()
	bb := &a.fn.Blocks[id]
	for i := range bb.Stmts {
		a.step(s, &bb.Stmts[i], ir.Point{Block: id, Stmt: i}, nopMoveSink)
	}
	a.stepTerm(s, bb.Term, ir.Point{Block: id, Stmt: len(bb.Stmts)}, nopMoveSink)
	return s
}

func (a *moveAnalysis) isCopy(p ir.Place) bool {
	l := a.fn.Local(p.Base)
	return l != nil && l.Flags.IsCopy()
}

func (a *moveAnalysis) readCheck(s moveSet, p ir.Place, pt ir.Point, sink moveSink) {
	e, ok := s.movedOverlapping(p)
	if !ok {
		return
	}
	// A loop-carried entry whose justifying point is this very statement is
	// the statement's own previous-iteration move reaching it over a back
	// edge. The read that observes it elsewhere in the loop already reports
	// the cause; flagging the move site again would repeat the same finding.
	if e.at == pt {
		return
	}
	sink(p, pt, e)
}

func (a *moveAnalysis) consume(s moveSet, p ir.Place, pt ir.Point) {
	if a.isCopy(p) {
		return
	}
	s.markMoved(p, pt)
}

func (a *moveAnalysis) readOperand(s moveSet, op ir.Operand, pt ir.Point, sink moveSink) {
	switch op.Kind {
	case ir.OperandCopy:
		a.readCheck(s, op.Place, pt, sink)
	case ir.OperandMove:
		a.readCheck(s, op.Place, pt, sink)
		a.consume(s, op.Place, pt)
	}
}

// step applies one statement's transfer function to s in place, reporting any
// read of a moved path to sink.
func (a *moveAnalysis) step(s moveSet, st *ir.Stmt, pt ir.Point, sink moveSink) {
	switch st.Kind {
	case ir.StmtAssign:
		a.readOperand(s, st.Assign.Src, pt, sink)
		s.heal(st.Assign.Dest)
	case ir.StmtBorrow:
		// A moved place may not be borrowed until re-initialized in full.
		a.readCheck(s, st.Borrow.Of, pt, sink)
		s.heal(st.Borrow.Dest)
	case ir.StmtMove:
		a.readCheck(s, st.Move.From, pt, sink)
		a.consume(s, st.Move.From, pt)
		s.heal(st.Move.Dest)
	case ir.StmtDrop:
		// Dropping an already-moved place is fine; the drop consumes
		// whatever remains.
		a.consume(s, st.Drop.Place, pt)
	case ir.StmtUse:
		a.readOperand(s, st.Use.Src, pt, sink)
	case ir.StmtNop:
	}
}

func (a *moveAnalysis) stepTerm(s moveSet, t ir.Terminator, pt ir.Point, sink moveSink) {
	if t.Kind == ir.TermBranch {
		a.readOperand(s, t.Branch.Cond, pt, sink)
	}
}
