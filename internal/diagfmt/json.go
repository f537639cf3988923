package diagfmt

import (
	"encoding/json"
	"io"

	"borrowck/internal/diag"
	"borrowck/internal/ir"
)

// PointJSON addresses a statement inside a basic block. Stmt equal to the
// block's statement count names the terminator.
type PointJSON struct {
	Block int `json:"block"`
	Stmt  int `json:"stmt"`
}

// RelatedJSON identifies the loan a conflict collides with.
type RelatedJSON struct {
	Loan  int       `json:"loan"`
	Point PointJSON `json:"point"`
}

// NoteJSON carries secondary context attached to a diagnostic.
type NoteJSON struct {
	Point   PointJSON `json:"point"`
	Message string    `json:"message"`
}

// DiagnosticJSON is one finding in machine-readable form.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Kind     string       `json:"kind"`
	Fn       string       `json:"fn"`
	Point    PointJSON    `json:"point"`
	Place    string       `json:"place,omitempty"`
	Message  string       `json:"message"`
	Related  *RelatedJSON `json:"related,omitempty"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON report.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
}

func makePoint(pt ir.Point) PointJSON {
	return PointJSON{Block: int(pt.Block), Stmt: pt.Stmt}
}

// BuildDiagnosticsOutput assembles the JSON report structure without
// serializing it.
func BuildDiagnosticsOutput(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	errors, warnings := 0, 0
	for i := 0; i < maxItems; i++ {
		d := items[i]
		switch d.Severity {
		case diag.SevError:
			errors++
		case diag.SevWarning:
			warnings++
		case diag.SevInfo:
		}

		diagJSON := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Kind:     d.Code.Kind(),
			Fn:       d.Fn,
			Point:    makePoint(d.Point),
			Place:    d.Place,
			Message:  d.Message,
		}
		if d.Related != nil {
			diagJSON.Related = &RelatedJSON{
				Loan:  d.Related.LoanID,
				Point: makePoint(d.Related.Point),
			}
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			diagJSON.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				diagJSON.Notes[j] = NoteJSON{
					Point:   makePoint(note.Point),
					Message: note.Msg,
				}
			}
		}
		diagnostics = append(diagnostics, diagJSON)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Errors:      errors,
		Warnings:    warnings,
	}
}

// JSON serializes the diagnostics to w.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	output := BuildDiagnosticsOutput(bag, opts)
	enc := json.NewEncoder(w)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(output)
}
