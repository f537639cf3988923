// Package cfg builds an explicit control-flow graph over an ir.Func: edge
// lists indexed by block id, reachability from the entry block, loop back-edge
// identification and the traversal orders the dataflow passes iterate in.
package cfg

import (
	"borrowck/internal/ir"
)

// Edge is one directed control-flow edge.
type Edge struct {
	From ir.BlockID
	To   ir.BlockID
}

// Graph holds the derived control-flow structure of a single function. Blocks
// stay in the function's arena; the graph stores only ids.
type Graph struct {
	fn *ir.Func

	succs     [][]ir.BlockID
	preds     [][]ir.BlockID
	reachable []bool
	backEdges map[Edge]bool
	postorder []ir.BlockID
}

// Build derives the graph for fn. The function must already be structurally
// valid (see ir.ValidateFunc).
func Build(fn *ir.Func) *Graph {
	n := len(fn.Blocks)
	g := &Graph{
		fn:        fn,
		succs:     make([][]ir.BlockID, n),
		preds:     make([][]ir.BlockID, n),
		reachable: make([]bool, n),
		backEdges: make(map[Edge]bool),
	}
	for i := range fn.Blocks {
		g.succs[i] = fn.Blocks[i].Term.Successors()
	}
	for from, succs := range g.succs {
		for _, to := range succs {
			g.preds[to] = append(g.preds[to], ir.BlockID(from))
		}
	}
	g.walk(fn.Entry)
	return g
}

// walk runs an iterative DFS from entry, recording reachability, back-edges
// (edges into a block still on the DFS stack) and postorder.
func (g *Graph) walk(entry ir.BlockID) {
	if int(entry) >= len(g.succs) || entry < 0 {
		return
	}
	const (
		colorWhite = iota
		colorGray
		colorBlack
	)
	color := make([]uint8, len(g.succs))

	type frame struct {
		block ir.BlockID
		next  int
	}
	stack := []frame{{block: entry}}
	color[entry] = colorGray
	g.reachable[entry] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(g.succs[top.block]) {
			succ := g.succs[top.block][top.next]
			top.next++
			switch color[succ] {
			case colorGray:
				g.backEdges[Edge{From: top.block, To: succ}] = true
			case colorWhite:
				color[succ] = colorGray
				g.reachable[succ] = true
				stack = append(stack, frame{block: succ})
			}
			continue
		}
		color[top.block] = colorBlack
		g.postorder = append(g.postorder, top.block)
		stack = stack[:len(stack)-1]
	}
}

// Func returns the function the graph was built from.
func (g *Graph) Func() *ir.Func { return g.fn }

// NumBlocks returns the size of the block arena.
func (g *Graph) NumBlocks() int { return len(g.succs) }

// Succs returns the successor ids of a block.
func (g *Graph) Succs(id ir.BlockID) []ir.BlockID {
	if id < 0 || int(id) >= len(g.succs) {
		return nil
	}
	return g.succs[id]
}

// Preds returns the predecessor ids of a block.
func (g *Graph) Preds(id ir.BlockID) []ir.BlockID {
	if id < 0 || int(id) >= len(g.preds) {
		return nil
	}
	return g.preds[id]
}

// Reachable reports whether the block can be reached from the entry block.
func (g *Graph) Reachable(id ir.BlockID) bool {
	if id < 0 || int(id) >= len(g.reachable) {
		return false
	}
	return g.reachable[id]
}

// DeadBlocks returns ids of blocks unreachable from the entry, ascending.
// Dead blocks are a lint, not a verification failure.
func (g *Graph) DeadBlocks() []ir.BlockID {
	var dead []ir.BlockID
	for i, ok := range g.reachable {
		if !ok {
			dead = append(dead, ir.BlockID(i))
		}
	}
	return dead
}

// IsBackEdge reports whether from→to closes a loop.
func (g *Graph) IsBackEdge(from, to ir.BlockID) bool {
	return g.backEdges[Edge{From: from, To: to}]
}

// HasLoops reports whether any back-edge exists.
func (g *Graph) HasLoops() bool { return len(g.backEdges) > 0 }

// Postorder returns reachable blocks in DFS postorder. Backward dataflow
// iterates this order directly.
func (g *Graph) Postorder() []ir.BlockID {
	return g.postorder
}

// ReversePostorder returns reachable blocks in reverse postorder. Forward
// dataflow iterates this order for fast convergence.
func (g *Graph) ReversePostorder() []ir.BlockID {
	out := make([]ir.BlockID, len(g.postorder))
	for i, id := range g.postorder {
		out[len(out)-1-i] = id
	}
	return out
}
