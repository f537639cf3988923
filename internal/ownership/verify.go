package ownership

import (
	"fmt"

	"borrowck/internal/cfg"
	"borrowck/internal/diag"
	"borrowck/internal/ir"
)

// DefaultMaxIterations caps every fixpoint loop; state grows monotonically by
// at most one step per move site, so well-formed inputs settle far earlier.
const DefaultMaxIterations = 64

// DefaultMaxDiagnostics bounds the report size.
const DefaultMaxDiagnostics = 100

// Options tune a verification run.
type Options struct {
	// MaxIterations caps fixpoint sweeps; exceeding it yields an
	// AnalysisDidNotConverge diagnostic with partial results.
	MaxIterations int
	// MaxDiagnostics caps collected diagnostics.
	MaxDiagnostics int
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = DefaultMaxDiagnostics
	}
	return o
}

// Report is the result of verifying one function body.
type Report struct {
	Fn        string
	Diags     []diag.Diagnostic
	Clean     bool
	Converged bool
}

// Verify runs the full analysis over one validated function body. It is a
// pure function: no state survives between runs and concurrent calls need no
// synchronization as long as fn is not mutated.
func Verify(fn *ir.Func, opts Options) Report {
	opts = opts.withDefaults()
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	g := cfg.Build(fn)
	for _, dead := range g.DeadBlocks() {
		pt := ir.Point{Block: dead, Stmt: 0}
		bag.Add(diag.New(diag.SevWarning, diag.CfgDeadBlock, fn.Name, pt, "",
			fmt.Sprintf("bb%d is unreachable from the entry block", dead)))
	}

	holders := refHolders(fn)
	moves := newMoveAnalysis(fn, g)
	loans := newLoanAnalysis(fn, g)
	live := newLiveness(fn, g, holders)

	converged := moves.run(opts.MaxIterations)
	converged = live.run(opts.MaxIterations) && converged
	converged = loans.run(opts.MaxIterations) && converged

	det := &detector{
		fn:       fn,
		g:        g,
		moves:    moves,
		loans:    loans,
		live:     live,
		reporter: reporter,
	}
	det.run()

	if !converged {
		bag.Add(diag.New(diag.SevError, diag.OwnDidNotConverge, fn.Name,
			ir.Point{Block: fn.Entry, Stmt: 0}, "",
			fmt.Sprintf("dataflow did not settle within %d sweeps; results are partial", opts.MaxIterations)))
	}

	bag.Sort()
	bag.Dedup()

	items := bag.Items()
	out := make([]diag.Diagnostic, len(items))
	copy(out, items)
	return Report{
		Fn:        fn.Name,
		Diags:     out,
		Clean:     !bag.HasErrors(),
		Converged: converged,
	}
}

// VerifyModule verifies every function of a validated module in name order.
func VerifyModule(m *ir.Module, opts Options) []Report {
	names := m.Names()
	out := make([]Report, 0, len(names))
	for _, name := range names {
		out = append(out, Verify(m.Funcs[name], opts))
	}
	return out
}
