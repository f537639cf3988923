package ir

import "sort"

// Block is a basic block: straight-line statements closed by one terminator.
type Block struct {
	ID    BlockID
	Stmts []Stmt
	Term  Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// Func is one function body under verification.
type Func struct {
	Name        string
	Params      []Place
	ReturnPlace Place
	Locals      []Local
	Blocks      []Block
	Entry       BlockID
}

// Local returns the local for id, or nil when out of range.
func (f *Func) Local(id LocalID) *Local {
	if f == nil || id < 0 || int(id) >= len(f.Locals) {
		return nil
	}
	return &f.Locals[id]
}

// LocalName resolves a local's source name, "_" when unknown.
func (f *Func) LocalName(id LocalID) string {
	if l := f.Local(id); l != nil && l.Name != "" {
		return l.Name
	}
	return "_"
}

// PlacePath renders a place using source-level local names.
func (f *Func) PlacePath(p Place) string {
	return p.Path(f.LocalName(p.Base))
}

// IsParam reports whether the place is rooted in a parameter.
func (f *Func) IsParam(p Place) bool {
	for _, prm := range f.Params {
		if prm.Base == p.Base {
			return true
		}
	}
	return false
}

// Module is a collection of function bodies keyed by identifier.
type Module struct {
	Funcs map[string]*Func
}

// Names returns function identifiers in deterministic order.
func (m *Module) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.Funcs))
	for name := range m.Funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
