package diag

import (
	"fmt"
	"sort"
)

// Bag accumulates diagnostics with a cap on total count.
type Bag struct {
	items []Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 1
	}
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   uint16(max), //nolint:gosec // small positive cap
	}
}

// Add appends a diagnostic, honoring the cap. Returns false when the bag is
// full and the diagnostic was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 { return b.max }

func (b *Bag) Len() int { return len(b.items) }

// HasErrors reports whether at least one diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether at least one diagnostic has Severity >= Warning.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Items returns a read-only view of the accumulated diagnostics. The slice
// aliases the bag's storage; callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends all diagnostics from other, growing the cap when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if newTotal > int(b.max) {
		b.max = uint16(newTotal) //nolint:gosec // bounded by item counts
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by function, program point, code, place and finally
// related loan id, giving reproducible output across runs on identical input.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Fn != dj.Fn {
			return di.Fn < dj.Fn
		}
		if di.Point != dj.Point {
			return di.Point.Before(dj.Point)
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		if di.Place != dj.Place {
			return di.Place < dj.Place
		}
		li, lj := -1, -1
		if di.Related != nil {
			li = di.Related.LoanID
		}
		if dj.Related != nil {
			lj = dj.Related.LoanID
		}
		return li < lj
	})
}

// Dedup removes diagnostics that share (code, place, point) within the same
// function. A single root cause re-visited by fixpoint iterations should not
// produce repeated noise.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	kept := b.items[:0]
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%d:%s:%s", d.Fn, d.Code, d.Place, d.Point)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, d)
	}
	b.items = kept
}
