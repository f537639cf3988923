package ownership

import (
	"fmt"

	"borrowck/internal/cfg"
	"borrowck/internal/diag"
	"borrowck/internal/ir"
)

// detector cross-references the move tracker's and loan tracker's per-point
// states. The two dataflows stay independent; only this walk combines them.
type detector struct {
	fn       *ir.Func
	g        *cfg.Graph
	moves    *moveAnalysis
	loans    *loanAnalysis
	live     *liveness
	reporter diag.Reporter
}

func (d *detector) run() {
	for bi := 0; bi < d.g.NumBlocks(); bi++ {
		id := ir.BlockID(bi)
		if !d.g.Reachable(id) {
			continue
		}
		d.walkBlock(id)
	}
}

// walkBlock replays both transfer functions over one block, checking every
// program point against the loans active there.
func (d *detector) walkBlock(id ir.BlockID) {
	bb := &d.fn.Blocks[id]
	ms := d.moves.entry[id].clone()
	h := d.loans.entry[id].clone()
	pl := d.live.pointLive(id)

	sink := func(p ir.Place, pt ir.Point, cause moveEntry) {
		d.reportUseAfterMove(p, pt, cause)
	}

	for i := range bb.Stmts {
		pt := ir.Point{Block: id, Stmt: i}
		st := &bb.Stmts[i]
		active := d.activeLoans(h, pl[i])

		switch st.Kind {
		case ir.StmtBorrow:
			d.checkBorrow(st, pt, active)
		case ir.StmtAssign:
			d.checkWrite(st.Assign.Dest, pt, active)
		case ir.StmtMove:
			d.checkMove(st.Move.From, pt, active)
		case ir.StmtDrop:
			// The loan survives the drop iff its holder is still live
			// at the following point.
			d.checkDrop(st.Drop.Place, pt, d.activeLoans(h, pl[i+1]))
		}

		d.moves.step(ms, st, pt, sink)
		d.loans.step(h, st, pt)
	}

	termPt := ir.Point{Block: id, Stmt: len(bb.Stmts)}
	d.moves.stepTerm(ms, bb.Term, termPt, sink)
	if bb.Term.Kind == ir.TermReturn {
		d.checkReturnEscape(termPt, h)
	}
}

// activeLoans returns ids of loans whose holder is live at the point,
// ascending for deterministic reporting.
func (d *detector) activeLoans(h holdings, live localSet) []int {
	set := loanIDSet{}
	for holder, loans := range h {
		if !live.has(holder) {
			continue
		}
		for id := range loans {
			set[id] = struct{}{}
		}
	}
	return set.sorted()
}

// checkBorrow enforces aliasing XOR mutability when a new loan is issued:
// one unique loan at most, and never a unique loan alongside any other loan
// on an overlapping place.
func (d *detector) checkBorrow(st *ir.Stmt, pt ir.Point, active []int) {
	newKind := st.Borrow.Kind
	of := st.Borrow.Of
	newID, hasID := d.loans.byPoint[pt]
	for _, id := range active {
		if hasID && id == newID {
			continue
		}
		loan := d.loans.Loan(id)
		if loan == nil || !loan.Place.Overlaps(of) {
			continue
		}
		if newKind != ir.BorrowUnique && loan.Kind != ir.BorrowUnique {
			continue
		}
		place := d.fn.PlacePath(of)
		msg := fmt.Sprintf("cannot borrow %s as %s while a %s loan of %s is active",
			place, newKind, loan.Kind, d.fn.PlacePath(loan.Place))
		d.report(diag.OwnAliasingConflict, pt, place, msg, loan)
	}
}

// checkWrite treats a direct write as an instantaneous unique access: writing
// into storage with any overlapping active loan is an aliasing conflict.
func (d *detector) checkWrite(dest ir.Place, pt ir.Point, active []int) {
	for _, id := range active {
		loan := d.loans.Loan(id)
		if loan == nil || !loan.Place.Overlaps(dest) {
			continue
		}
		place := d.fn.PlacePath(dest)
		msg := fmt.Sprintf("cannot write to %s while a %s loan of %s is active",
			place, loan.Kind, d.fn.PlacePath(loan.Place))
		d.report(diag.OwnAliasingConflict, pt, place, msg, loan)
	}
}

// checkMove rejects moving storage out from under an active loan.
func (d *detector) checkMove(from ir.Place, pt ir.Point, active []int) {
	for _, id := range active {
		loan := d.loans.Loan(id)
		if loan == nil || !loan.Place.Overlaps(from) {
			continue
		}
		place := d.fn.PlacePath(from)
		msg := fmt.Sprintf("cannot move %s while a %s loan of %s is active",
			place, loan.Kind, d.fn.PlacePath(loan.Place))
		d.report(diag.OwnBorrowAcrossMove, pt, place, msg, loan)
	}
}

// checkDrop raises a dangling reference when a loan's region extends past the
// end of its borrowed place's storage.
func (d *detector) checkDrop(dropped ir.Place, pt ir.Point, activeAfter []int) {
	for _, id := range activeAfter {
		loan := d.loans.Loan(id)
		if loan == nil || !dropped.IsPrefixOf(loan.Place) {
			continue
		}
		place := d.fn.PlacePath(loan.Place)
		msg := fmt.Sprintf("%s is still borrowed when its storage ends", place)
		d.report(diag.OwnDanglingReference, pt, place, msg, loan)
	}
}

// checkReturnEscape flags loans carried out through the return place whose
// borrowed root is not a parameter: the storage dies with the frame.
func (d *detector) checkReturnEscape(pt ir.Point, h holdings) {
	ret := d.fn.ReturnPlace
	if !ret.IsValid() {
		return
	}
	for _, id := range h[ret.Base].sorted() {
		loan := d.loans.Loan(id)
		if loan == nil {
			continue
		}
		root := loan.Place.Root()
		if d.fn.IsParam(root) {
			continue
		}
		place := d.fn.PlacePath(loan.Place)
		msg := fmt.Sprintf("returning a reference to %s, which does not outlive the function", place)
		d.report(diag.OwnDanglingReference, pt, place, msg, loan)
	}
}

func (d *detector) reportUseAfterMove(p ir.Place, pt ir.Point, cause moveEntry) {
	place := d.fn.PlacePath(p)
	var msg string
	if cause.maybe {
		msg = fmt.Sprintf("use of value %s, which may have been moved on a previous branch", place)
	} else {
		msg = fmt.Sprintf("use of moved value %s", place)
	}
	dg := diag.New(diag.SevError, diag.OwnUseAfterMove, d.fn.Name, pt, place, msg).
		WithNote(cause.at, fmt.Sprintf("%s moved here", d.fn.PlacePath(cause.place)))
	d.reporter.Report(dg)
}

func (d *detector) report(code diag.Code, pt ir.Point, place, msg string, loan *Loan) {
	dg := diag.New(diag.SevError, code, d.fn.Name, pt, place, msg)
	if loan != nil {
		dg = dg.WithRelated(loan.ID, loan.IssuedAt).
			WithNote(loan.IssuedAt, fmt.Sprintf("%s loan of %s issued here", loan.Kind, d.fn.PlacePath(loan.Place)))
	}
	d.reporter.Report(dg)
}
