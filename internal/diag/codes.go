package diag

import (
	"fmt"
)

type Code uint16

const (
	// UnknownCode is the fallback for unclassified diagnostics.
	UnknownCode Code = 0

	// Structural lints from the CFG builder.
	CfgInfo      Code = 2000
	CfgDeadBlock Code = 2001

	// Ownership and borrow verification.
	OwnInfo              Code = 3000
	OwnUseAfterMove      Code = 3001
	OwnBorrowAcrossMove  Code = 3002
	OwnAliasingConflict  Code = 3003
	OwnDanglingReference Code = 3004

	// Internal analysis limits, reported distinctly from program errors.
	OwnDidNotConverge Code = 3900
)

var codeDescription = map[Code]string{
	UnknownCode:          "unknown diagnostic",
	CfgInfo:              "control-flow information",
	CfgDeadBlock:         "unreachable basic block",
	OwnInfo:              "ownership information",
	OwnUseAfterMove:      "use of a moved value",
	OwnBorrowAcrossMove:  "move of a borrowed place",
	OwnAliasingConflict:  "conflicting borrows of overlapping places",
	OwnDanglingReference: "reference outlives its storage",
	OwnDidNotConverge:    "dataflow iteration limit exceeded",
}

// Kind returns the stable machine name used in serialized reports.
func (c Code) Kind() string {
	switch c {
	case CfgDeadBlock:
		return "DeadCode"
	case OwnUseAfterMove:
		return "UseAfterMove"
	case OwnBorrowAcrossMove:
		return "BorrowAcrossMove"
	case OwnAliasingConflict:
		return "AliasingConflict"
	case OwnDanglingReference:
		return "DanglingReference"
	case OwnDidNotConverge:
		return "AnalysisDidNotConverge"
	}
	return "Unknown"
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("OWN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
