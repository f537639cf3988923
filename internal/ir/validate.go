package ir

import (
	"errors"
	"fmt"
)

// Validate checks structural invariants of a module. A violation is a fatal
// front-end contract breach, never a verification diagnostic.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, name := range m.Names() {
		if err := ValidateFunc(m.Funcs[name]); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateFunc checks one function body.
func ValidateFunc(f *Func) error {
	if f == nil {
		return nil
	}
	var errs []error
	if len(f.Blocks) == 0 {
		return errors.New("no blocks")
	}
	if f.Entry < 0 || int(f.Entry) >= len(f.Blocks) {
		errs = append(errs, fmt.Errorf("entry bb%d does not exist", f.Entry))
	}
	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlockTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateLocalIDs(f); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validateBlocksTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

func validateBlockTargets(f *Func) error {
	var errs []error
	exists := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks)
	}
	for i := range f.Blocks {
		for _, succ := range f.Blocks[i].Term.Successors() {
			if !exists(succ) {
				errs = append(errs, fmt.Errorf("bb%d: target bb%d does not exist", i, succ))
			}
		}
	}
	return errors.Join(errs...)
}

func validateLocalIDs(f *Func) error {
	var errs []error
	checkPlace := func(pt Point, p Place) {
		if !p.IsValid() || int(p.Base) >= len(f.Locals) {
			errs = append(errs, fmt.Errorf("%s: place references unknown local %d", pt, p.Base))
		}
	}
	checkOperand := func(pt Point, op Operand) {
		if op.Kind != OperandConst {
			checkPlace(pt, op.Place)
		}
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Stmts {
			pt := Point{Block: BlockID(i), Stmt: j}
			st := &bb.Stmts[j]
			switch st.Kind {
			case StmtAssign:
				checkPlace(pt, st.Assign.Dest)
				checkOperand(pt, st.Assign.Src)
			case StmtBorrow:
				checkPlace(pt, st.Borrow.Dest)
				checkPlace(pt, st.Borrow.Of)
			case StmtMove:
				checkPlace(pt, st.Move.Dest)
				checkPlace(pt, st.Move.From)
			case StmtDrop:
				checkPlace(pt, st.Drop.Place)
			case StmtUse:
				checkOperand(pt, st.Use.Src)
			}
		}
		if bb.Term.Kind == TermBranch {
			checkOperand(Point{Block: BlockID(i), Stmt: len(bb.Stmts)}, bb.Term.Branch.Cond)
		}
	}
	return errors.Join(errs...)
}
