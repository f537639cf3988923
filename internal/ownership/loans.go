package ownership

import (
	"sort"

	"borrowck/internal/cfg"
	"borrowck/internal/ir"
)

// Loan is one borrow event: a reference to borrowed Place issued into the Ref
// binding at IssuedAt. Its region is never declared; it is derived from the
// liveness of whoever ends up holding the reference.
type Loan struct {
	ID       int
	Place    ir.Place
	Kind     ir.BorrowKind
	IssuedAt ir.Point
	Ref      ir.LocalID
}

type loanIDSet map[int]struct{}

func (s loanIDSet) sorted() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// holdings maps each local to the loans a reference stored in it may carry.
// Copying a reference into another binding, or into a field of an aggregate,
// spreads the loan to the new holder.
type holdings map[ir.LocalID]loanIDSet

func (h holdings) clone() holdings {
	out := make(holdings, len(h))
	for l, set := range h {
		cp := make(loanIDSet, len(set))
		for id := range set {
			cp[id] = struct{}{}
		}
		out[l] = cp
	}
	return out
}

func (h holdings) equal(o holdings) bool {
	if len(h) != len(o) {
		return false
	}
	for l, set := range h {
		oset, ok := o[l]
		if !ok || len(oset) != len(set) {
			return false
		}
		for id := range set {
			if _, ok := oset[id]; !ok {
				return false
			}
		}
	}
	return true
}

func (h holdings) replace(local ir.LocalID, loans loanIDSet) {
	if len(loans) == 0 {
		delete(h, local)
		return
	}
	cp := make(loanIDSet, len(loans))
	for id := range loans {
		cp[id] = struct{}{}
	}
	h[local] = cp
}

func (h holdings) merge(local ir.LocalID, loans loanIDSet) {
	if len(loans) == 0 {
		return
	}
	set, ok := h[local]
	if !ok {
		set = loanIDSet{}
		h[local] = set
	}
	for id := range loans {
		set[id] = struct{}{}
	}
}

func joinHoldings(ins []holdings) holdings {
	out := holdings{}
	for _, in := range ins {
		for l, set := range in {
			out.merge(l, set)
		}
	}
	return out
}

// refHolders computes the set of locals that may ever hold a reference:
// flagged reference bindings, borrow destinations, and the transitive closure
// over aliasing assignments (a struct receiving a reference into a field
// becomes a holder too). Liveness and loan propagation share this set.
func refHolders(fn *ir.Func) localSet {
	holders := localSet{}
	for i := range fn.Locals {
		if fn.Locals[i].Flags.IsRef() {
			holders.add(ir.LocalID(i))
		}
	}
	for {
		changed := false
		mark := func(dest, src ir.Place) {
			if !holders.has(src.Base) || holders.has(dest.Base) {
				return
			}
			holders.add(dest.Base)
			changed = true
		}
		for bi := range fn.Blocks {
			for si := range fn.Blocks[bi].Stmts {
				st := &fn.Blocks[bi].Stmts[si]
				switch st.Kind {
				case ir.StmtBorrow:
					if !holders.has(st.Borrow.Dest.Base) {
						holders.add(st.Borrow.Dest.Base)
						changed = true
					}
				case ir.StmtAssign:
					if st.Assign.Src.Kind != ir.OperandConst {
						mark(st.Assign.Dest, st.Assign.Src.Place)
					}
				case ir.StmtMove:
					mark(st.Move.Dest, st.Move.From)
				}
			}
		}
		if !changed {
			return holders
		}
	}
}

// loanAnalysis collects borrow events and propagates loan holdings forward
// through the CFG (§ Loan & Region Tracker).
type loanAnalysis struct {
	fn        *ir.Func
	g         *cfg.Graph
	loans     []Loan
	byPoint   map[ir.Point]int
	entry     []holdings
	converged bool
}

func newLoanAnalysis(fn *ir.Func, g *cfg.Graph) *loanAnalysis {
	a := &loanAnalysis{
		fn:        fn,
		g:         g,
		byPoint:   make(map[ir.Point]int),
		entry:     make([]holdings, g.NumBlocks()),
		converged: true,
	}
	// Loan ids follow program order, which keeps diagnostics deterministic.
	for bi := range fn.Blocks {
		for si := range fn.Blocks[bi].Stmts {
			st := &fn.Blocks[bi].Stmts[si]
			if st.Kind != ir.StmtBorrow {
				continue
			}
			pt := ir.Point{Block: ir.BlockID(bi), Stmt: si}
			id := len(a.loans)
			a.loans = append(a.loans, Loan{
				ID:       id,
				Place:    st.Borrow.Of,
				Kind:     st.Borrow.Kind,
				IssuedAt: pt,
				Ref:      st.Borrow.Dest.Base,
			})
			a.byPoint[pt] = id
		}
	}
	for i := range a.entry {
		a.entry[i] = holdings{}
	}
	return a
}

// Loan returns the loan record for id, or nil.
func (a *loanAnalysis) Loan(id int) *Loan {
	if id < 0 || id >= len(a.loans) {
		return nil
	}
	return &a.loans[id]
}

func (a *loanAnalysis) run(maxIter int) bool {
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
		}
		if !changed {
			return true
		}
	}
}

func (a *loanAnalysis) joinPreds(id ir.BlockID) holdings {
	var ins []holdings
	for _, pred := range a.g.Preds(id) {
		if !a.g.Reachable(pred) {
			continue
		}
		ins = append(ins, a.blockExit(pred))
	}
	if len(ins) == 0 {
		return a.entry[id].clone()
	}
	return joinHoldings(ins)
}

func (a *loanAnalysis) blockExit(id ir.BlockID) holdings {
	h := a.entry[id].clone()
	bb := &a.fn.Blocks[id]
	for i := range bb.Stmts {
		a.step(h, &bb.Stmts[i], ir.Point{Block: id, Stmt: i})
	}
	return h
}

// step applies one statement's effect on loan holdings.
func (a *loanAnalysis) step(h holdings, st *ir.Stmt, pt ir.Point) {
	switch st.Kind {
	case ir.StmtBorrow:
		if id, ok := a.byPoint[pt]; ok {
			h.replace(st.Borrow.Dest.Base, loanIDSet{id: {}})
		}
	case ir.StmtAssign:
		a.stepTransfer(h, st.Assign.Dest, st.Assign.Src)
	case ir.StmtMove:
		a.stepTransfer(h, st.Move.Dest, ir.Operand{Kind: ir.OperandMove, Place: st.Move.From})
	case ir.StmtDrop:
		if len(st.Drop.Place.Proj) == 0 {
			delete(h, st.Drop.Place.Base)
		}
	}
}

// stepTransfer models an aliasing assignment: the destination inherits the
// source's loans. A bare-local write replaces prior holdings (reassigning the
// reference ends its previous loan); a projected write accumulates (a
// reference stored into a field keeps every loan the aggregate already
// carries).
func (a *loanAnalysis) stepTransfer(h holdings, dest ir.Place, src ir.Operand) {
	var srcLoans loanIDSet
	if src.Kind != ir.OperandConst {
		srcLoans = h[src.Place.Base]
	}
	if len(dest.Proj) == 0 {
		h.replace(dest.Base, srcLoans)
		return
	}
	h.merge(dest.Base, srcLoans)
}
