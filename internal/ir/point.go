package ir

import "fmt"

// Point identifies a program point: a statement slot inside a basic block.
// Stmt == len(block.Stmts) addresses the terminator.
type Point struct {
	Block BlockID
	Stmt  int
}

func (p Point) String() string {
	return fmt.Sprintf("bb%d[%d]", p.Block, p.Stmt)
}

// Before reports whether p precedes o in the total order used for diagnostic
// ordering: block id first, then statement index.
func (p Point) Before(o Point) bool {
	if p.Block != o.Block {
		return p.Block < o.Block
	}
	return p.Stmt < o.Stmt
}
