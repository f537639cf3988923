package ownership

import (
	"borrowck/internal/cfg"
	"borrowck/internal/ir"
)

// localSet is a set of local ids.
type localSet map[ir.LocalID]struct{}

func (s localSet) add(id ir.LocalID) { s[id] = struct{}{} }

func (s localSet) has(id ir.LocalID) bool {
	_, ok := s[id]
	return ok
}

func cloneSet(s localSet) localSet {
	out := make(localSet, len(s))
	for id := range s {
		out.add(id)
	}
	return out
}

func unionSet(dst, src localSet) localSet {
	if dst == nil {
		dst = localSet{}
	}
	for id := range src {
		dst.add(id)
	}
	return dst
}

func subtractSet(src, sub localSet) localSet {
	out := localSet{}
	for id := range src {
		if sub.has(id) {
			continue
		}
		out.add(id)
	}
	return out
}

func setEqual(a, b localSet) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b.has(id) {
			return false
		}
	}
	return true
}

// liveness is the standard backward liveness dataflow, restricted to
// reference-holding locals. A loan's region is derived from it: the loan stays
// active while its issuing reference is live.
type liveness struct {
	fn        *ir.Func
	g         *cfg.Graph
	tracked   localSet
	in        []localSet
	out       []localSet
	converged bool
}

// newLiveness builds the pass over the given holder set (see refHolders):
// liveness is only meaningful for locals that can carry a reference.
func newLiveness(fn *ir.Func, g *cfg.Graph, tracked localSet) *liveness {
	lv := &liveness{
		fn:        fn,
		g:         g,
		tracked:   tracked,
		in:        make([]localSet, g.NumBlocks()),
		out:       make([]localSet, g.NumBlocks()),
		converged: true,
	}
	for i := range lv.in {
		lv.in[i] = localSet{}
		lv.out[i] = localSet{}
	}
	return lv
}

// run iterates live-in/live-out to a fixpoint in postorder, capped at maxIter
// sweeps.
func (lv *liveness) run(maxIter int) bool {
	order := lv.g.Postorder()
	for iter := 0; ; iter++ {
		if iter >= maxIter {
			lv.converged = false
			return false
		}
		changed := false
		for _, id := range order {
			out := localSet{}
			for _, succ := range lv.g.Succs(id) {
				out = unionSet(out, lv.in[succ])
			}
			use, def := lv.blockUseDef(id)
			in := unionSet(cloneSet(use), subtractSet(out, def))
			if !setEqual(out, lv.out[id]) || !setEqual(in, lv.in[id]) {
				lv.out[id] = out
				lv.in[id] = in
				changed = true
			}
		}
		if !changed {
			return true
		}
	}
}

// blockUseDef computes upward-exposed uses and definitions for one block.
func (lv *liveness) blockUseDef(id ir.BlockID) (use, def localSet) {
	use = localSet{}
	def = localSet{}
	bb := &lv.fn.Blocks[id]
	for i := range bb.Stmts {
		su, sd := lv.stmtUseDef(&bb.Stmts[i])
		for l := range su {
			if !def.has(l) {
				use.add(l)
			}
		}
		for l := range sd {
			def.add(l)
		}
	}
	tu := lv.termUse(bb.Term)
	for l := range tu {
		if !def.has(l) {
			use.add(l)
		}
	}
	return use, def
}

// stmtUseDef returns the reference locals one statement reads and fully
// redefines. A projected write (storing into an aggregate's field) is not a
// redefinition of the base.
func (lv *liveness) stmtUseDef(st *ir.Stmt) (use, def localSet) {
	use = localSet{}
	def = localSet{}
	addUse := func(p ir.Place) {
		if lv.tracked.has(p.Base) {
			use.add(p.Base)
		}
	}
	addDef := func(p ir.Place) {
		if len(p.Proj) == 0 && lv.tracked.has(p.Base) {
			def.add(p.Base)
		}
	}
	addOperand := func(op ir.Operand) {
		if op.Kind != ir.OperandConst {
			addUse(op.Place)
		}
	}
	switch st.Kind {
	case ir.StmtAssign:
		addOperand(st.Assign.Src)
		addDef(st.Assign.Dest)
	case ir.StmtBorrow:
		// A reborrow through a reference (&*r1) reads the source ref, so the
		// source's loan stays active at least until here. The derived loan
		// does not extend the source's region past this point; holdings track
		// the new loan only.
		addUse(st.Borrow.Of)
		addDef(st.Borrow.Dest)
	case ir.StmtMove:
		addUse(st.Move.From)
		addDef(st.Move.Dest)
	case ir.StmtDrop:
		addDef(st.Drop.Place)
	case ir.StmtUse:
		addOperand(st.Use.Src)
	}
	return use, def
}

func (lv *liveness) termUse(t ir.Terminator) localSet {
	use := localSet{}
	if t.Kind == ir.TermBranch && t.Branch.Cond.Kind != ir.OperandConst {
		if lv.tracked.has(t.Branch.Cond.Place.Base) {
			use.add(t.Branch.Cond.Place.Base)
		}
	}
	return use
}

// pointLive returns, for each statement slot in the block (terminator
// included as the final slot), the set of reference locals live on entry to
// that slot: the local will be read at or after the slot on some path.
func (lv *liveness) pointLive(id ir.BlockID) []localSet {
	bb := &lv.fn.Blocks[id]
	n := len(bb.Stmts)
	res := make([]localSet, n+1)
	cur := cloneSet(lv.out[id])

	tu := lv.termUse(bb.Term)
	cur = unionSet(cur, tu)
	res[n] = cloneSet(cur)

	for i := n - 1; i >= 0; i-- {
		use, def := lv.stmtUseDef(&bb.Stmts[i])
		cur = subtractSet(cur, def)
		cur = unionSet(cur, use)
		res[i] = cloneSet(cur)
	}
	return res
}
