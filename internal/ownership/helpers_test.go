package ownership

import (
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/ir"
)

// fnBuilder assembles ir.Func fixtures for the tests below.
type fnBuilder struct {
	fn     *ir.Func
	byName map[string]ir.LocalID
}

func newFn(name string) *fnBuilder {
	return &fnBuilder{
		fn:     &ir.Func{Name: name, ReturnPlace: ir.Place{Base: ir.NoLocalID}},
		byName: map[string]ir.LocalID{},
	}
}

func (b *fnBuilder) local(name string, flags ir.LocalFlags) ir.Place {
	id := ir.LocalID(len(b.fn.Locals))
	b.fn.Locals = append(b.fn.Locals, ir.Local{Name: name, Flags: flags})
	b.byName[name] = id
	return ir.Place{Base: id}
}

func (b *fnBuilder) param(name string, flags ir.LocalFlags) ir.Place {
	p := b.local(name, flags)
	b.fn.Params = append(b.fn.Params, p)
	return p
}

func (b *fnBuilder) returns(p ir.Place) { b.fn.ReturnPlace = p }

func (b *fnBuilder) block(term ir.Terminator, stmts ...ir.Stmt) ir.BlockID {
	id := ir.BlockID(len(b.fn.Blocks))
	b.fn.Blocks = append(b.fn.Blocks, ir.Block{ID: id, Stmts: stmts, Term: term})
	return id
}

func (b *fnBuilder) build(t *testing.T) *ir.Func {
	t.Helper()
	if err := ir.ValidateFunc(b.fn); err != nil {
		t.Fatalf("fixture is structurally invalid: %v", err)
	}
	return b.fn
}

func field(p ir.Place, name string) ir.Place {
	proj := make([]ir.Proj, len(p.Proj), len(p.Proj)+1)
	copy(proj, p.Proj)
	return ir.Place{Base: p.Base, Proj: append(proj, ir.Proj{Kind: ir.ProjField, Field: name})}
}

func deref(p ir.Place) ir.Place {
	proj := make([]ir.Proj, len(p.Proj), len(p.Proj)+1)
	copy(proj, p.Proj)
	return ir.Place{Base: p.Base, Proj: append(proj, ir.Proj{Kind: ir.ProjDeref})}
}

func assignConst(dest ir.Place, text string) ir.Stmt {
	return ir.Stmt{Kind: ir.StmtAssign, Assign: ir.AssignStmt{
		Dest: dest,
		Src:  ir.Operand{Kind: ir.OperandConst, Const: text},
	}}
}

func assignCopy(dest, src ir.Place) ir.Stmt {
	return ir.Stmt{Kind: ir.StmtAssign, Assign: ir.AssignStmt{
		Dest: dest,
		Src:  ir.Operand{Kind: ir.OperandCopy, Place: src},
	}}
}

func borrow(dest, of ir.Place, kind ir.BorrowKind) ir.Stmt {
	return ir.Stmt{Kind: ir.StmtBorrow, Borrow: ir.BorrowStmt{Dest: dest, Of: of, Kind: kind}}
}

func moveTo(dest, from ir.Place) ir.Stmt {
	return ir.Stmt{Kind: ir.StmtMove, Move: ir.MoveStmt{Dest: dest, From: from}}
}

func dropP(p ir.Place) ir.Stmt {
	return ir.Stmt{Kind: ir.StmtDrop, Drop: ir.DropStmt{Place: p}}
}

func useCopy(p ir.Place) ir.Stmt {
	return ir.Stmt{Kind: ir.StmtUse, Use: ir.UseStmt{Src: ir.Operand{Kind: ir.OperandCopy, Place: p}}}
}

func ret() ir.Terminator { return ir.Terminator{Kind: ir.TermReturn} }

func gotoBB(target ir.BlockID) ir.Terminator {
	return ir.Terminator{Kind: ir.TermGoto, Goto: ir.GotoTerm{Target: target}}
}

func branchOn(cond ir.Place, then, els ir.BlockID) ir.Terminator {
	return ir.Terminator{Kind: ir.TermBranch, Branch: ir.BranchTerm{
		Cond: ir.Operand{Kind: ir.OperandCopy, Place: cond},
		Then: then,
		Else: els,
	}}
}

func errorsOf(rep Report) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range rep.Diags {
		if d.Severity >= diag.SevError {
			out = append(out, d)
		}
	}
	return out
}

func codesOf(rep Report) []diag.Code {
	out := make([]diag.Code, 0, len(rep.Diags))
	for _, d := range rep.Diags {
		out = append(out, d.Code)
	}
	return out
}

func hasCode(rep Report, code diag.Code) bool {
	for _, d := range rep.Diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

// expectSingle asserts the report carries exactly one error, with the given
// code, at the given point.
func expectSingle(t *testing.T, rep Report, code diag.Code, pt ir.Point) diag.Diagnostic {
	t.Helper()
	errs := errorsOf(rep)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d (codes %v)", len(errs), codesOf(rep))
	}
	d := errs[0]
	if d.Code != code {
		t.Fatalf("expected code %v, got %v", code, d.Code)
	}
	if d.Point != pt {
		t.Fatalf("expected point %s, got %s", pt, d.Point)
	}
	return d
}
