package ir

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtAssign writes a fresh value into a place, re-initializing it.
	StmtAssign StmtKind = iota
	// StmtBorrow issues a loan of a place into a reference-typed destination.
	StmtBorrow
	// StmtMove transfers ownership from one place to another.
	StmtMove
	// StmtDrop marks the end of a place's storage (frame exit marker).
	StmtDrop
	// StmtUse is a pure read of an operand, e.g. printing a value.
	StmtUse
	// StmtNop does nothing.
	StmtNop
)

// BorrowKind differentiates shared vs unique loans.
type BorrowKind uint8

const (
	BorrowShared BorrowKind = iota
	BorrowUnique
)

func (k BorrowKind) String() string {
	if k == BorrowUnique {
		return "unique"
	}
	return "shared"
}

// OperandKind distinguishes operand categories.
type OperandKind uint8

const (
	// OperandConst produces a fresh value from a literal.
	OperandConst OperandKind = iota
	// OperandCopy reads a place without transferring ownership.
	OperandCopy
	// OperandMove reads a place and transfers ownership out of it.
	OperandMove
)

// Operand is the right-hand side of an assignment or the argument of a use.
type Operand struct {
	Kind  OperandKind
	Const string
	Place Place
}

// Stmt is a tagged statement. Exactly the payload matching Kind is meaningful.
type Stmt struct {
	Kind StmtKind

	Assign AssignStmt
	Borrow BorrowStmt
	Move   MoveStmt
	Drop   DropStmt
	Use    UseStmt
}

// AssignStmt writes Src into Dest.
type AssignStmt struct {
	Dest Place
	Src  Operand
}

// BorrowStmt loans Of to the reference binding Dest.
type BorrowStmt struct {
	Dest Place
	Of   Place
	Kind BorrowKind
}

// MoveStmt moves From into Dest, invalidating From.
type MoveStmt struct {
	Dest Place
	From Place
}

// DropStmt ends the storage of Place.
type DropStmt struct {
	Place Place
}

// UseStmt reads Src without writing anywhere.
type UseStmt struct {
	Src Operand
}
