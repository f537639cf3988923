package ir

import (
	"strings"
	"testing"
)

func validFunc() *Func {
	return &Func{
		Name:        "ok",
		Locals:      []Local{{Name: "x", Flags: LocalFlagOwn}},
		ReturnPlace: Place{Base: NoLocalID},
		Blocks: []Block{
			{
				Stmts: []Stmt{{Kind: StmtAssign, Assign: AssignStmt{
					Dest: Place{Base: 0},
					Src:  Operand{Kind: OperandConst, Const: "0"},
				}}},
				Term: Terminator{Kind: TermReturn},
			},
		},
	}
}

func TestValidateAcceptsWellFormedFunc(t *testing.T) {
	if err := ValidateFunc(validFunc()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMissingTerminator(t *testing.T) {
	fn := validFunc()
	fn.Blocks[0].Term = Terminator{}
	err := ValidateFunc(fn)
	if err == nil || !strings.Contains(err.Error(), "unterminated") {
		t.Fatalf("expected unterminated-block error, got %v", err)
	}
}

func TestValidateRejectsDanglingBlockTarget(t *testing.T) {
	fn := validFunc()
	fn.Blocks[0].Term = Terminator{Kind: TermGoto, Goto: GotoTerm{Target: 7}}
	err := ValidateFunc(fn)
	if err == nil || !strings.Contains(err.Error(), "bb7 does not exist") {
		t.Fatalf("expected dangling-target error, got %v", err)
	}
}

func TestValidateRejectsUnknownLocal(t *testing.T) {
	fn := validFunc()
	fn.Blocks[0].Stmts[0].Assign.Dest = Place{Base: 42}
	err := ValidateFunc(fn)
	if err == nil || !strings.Contains(err.Error(), "unknown local") {
		t.Fatalf("expected unknown-local error, got %v", err)
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	fn := validFunc()
	fn.Entry = 9
	fn.Blocks[0].Term = Terminator{}
	err := ValidateFunc(fn)
	if err == nil {
		t.Fatal("expected errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "entry") || !strings.Contains(msg, "unterminated") {
		t.Fatalf("expected both errors joined, got %v", err)
	}
}
