// Package diagfmt renders verification diagnostics for terminals, tooling and
// golden files. All renderers expect the bag to be sorted and deduplicated
// already; they never reorder items themselves.
package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // truncate output, not the bag
	IncludeNotes bool
	Indent       bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
