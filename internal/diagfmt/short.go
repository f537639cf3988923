package diagfmt

import (
	"fmt"
	"sort"
	"strings"

	"borrowck/internal/diag"
	"borrowck/internal/ir"
)

type shortLine struct {
	severity string
	code     string
	fn       string
	point    ir.Point
	message  string
}

// Short renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files and terse CLI output:
//
//	<severity> <code> <fn>:<point> <message>
//
// Lines are sorted independently of bag order so the output is byte-stable
// regardless of how the bag was assembled.
func Short(diags []diag.Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]shortLine, 0, len(diags))
	for _, d := range diags {
		rendered = append(rendered, shortLine{
			severity: d.Severity.String(),
			code:     d.Code.ID(),
			fn:       d.Fn,
			point:    d.Point,
			message:  d.Message,
		})
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.fn != dj.fn {
			return di.fn < dj.fn
		}
		if di.point != dj.point {
			return di.point.Before(dj.point)
		}
		if di.severity != dj.severity {
			return di.severity < dj.severity
		}
		if di.code != dj.code {
			return di.code < dj.code
		}
		return di.message < dj.message
	})

	var b strings.Builder
	for i, line := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%s %s", line.severity, line.code, line.fn, line.point, line.message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
