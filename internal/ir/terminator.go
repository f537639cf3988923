package ir

// TermKind enumerates terminator kinds.
type TermKind uint8

const (
	TermNone TermKind = iota
	TermGoto
	TermBranch
	TermReturn
	TermUnreachable
)

// Terminator is the single control transfer closing a basic block.
type Terminator struct {
	Kind TermKind

	Goto   GotoTerm
	Branch BranchTerm
}

type GotoTerm struct {
	Target BlockID
}

type BranchTerm struct {
	Cond Operand
	Then BlockID
	Else BlockID
}

// Successors returns the blocks control may transfer to.
func (t Terminator) Successors() []BlockID {
	switch t.Kind {
	case TermGoto:
		return []BlockID{t.Goto.Target}
	case TermBranch:
		return []BlockID{t.Branch.Then, t.Branch.Else}
	default:
		return nil
	}
}
