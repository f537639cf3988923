package diag

import (
	"borrowck/internal/ir"
)

// Note attaches secondary context to a diagnostic, e.g. where the conflicting
// loan was issued.
type Note struct {
	Point ir.Point
	Msg   string
}

// Related identifies the loan or move a conflict collides with.
type Related struct {
	LoanID int
	Point  ir.Point
}

// Diagnostic is one structured verification finding, addressed by function
// name and program point rather than byte spans: the engine never sees source
// text.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Fn       string
	Point    ir.Point
	Place    string
	Related  *Related
	Notes    []Note
}

func New(sev Severity, code Code, fn string, pt ir.Point, place, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Fn:       fn,
		Point:    pt,
		Place:    place,
		Message:  msg,
	}
}

func (d Diagnostic) WithNote(pt ir.Point, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Point: pt, Msg: msg})
	return d
}

func (d Diagnostic) WithRelated(loanID int, pt ir.Point) Diagnostic {
	d.Related = &Related{LoanID: loanID, Point: pt}
	return d
}
