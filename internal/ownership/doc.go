// Package ownership implements the borrow verification kernel: a forward
// move-state dataflow, a backward liveness pass feeding non-lexical loan
// regions, and a conflict detector cross-referencing the two. The entry point
// is Verify, a pure function from a validated ir.Func to a Report; callers may
// run any number of Verify calls concurrently as long as the input module is
// not mutated underneath them.
package ownership
