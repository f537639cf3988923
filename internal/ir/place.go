package ir

import (
	"fmt"
	"strings"
)

// ProjKind enumerates path steps into a place.
type ProjKind uint8

const (
	ProjField ProjKind = iota
	ProjIndex
	ProjDeref
)

// Proj is a single projection step: a field access, a constant index, or a
// dereference.
type Proj struct {
	Kind  ProjKind
	Field string
	Index int
}

// Place is a rooted path into storage: a base local plus an ordered projection
// sequence. Places compare structurally, never by address.
type Place struct {
	Base LocalID
	Proj []Proj
}

func (p Place) IsValid() bool { return p.Base != NoLocalID }

// Equal reports structural equality of two places.
func (p Place) Equal(o Place) bool {
	if p.Base != o.Base || len(p.Proj) != len(o.Proj) {
		return false
	}
	for i := range p.Proj {
		if p.Proj[i] != o.Proj[i] {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether p is a (possibly equal) prefix path of o.
// `x` is a prefix of `x.field`; `x.a` is not a prefix of `x.b`.
func (p Place) IsPrefixOf(o Place) bool {
	if p.Base != o.Base || len(p.Proj) > len(o.Proj) {
		return false
	}
	for i := range p.Proj {
		if p.Proj[i] != o.Proj[i] {
			return false
		}
	}
	return true
}

// Overlaps reports whether two places conflict: one is a prefix of the other.
func (p Place) Overlaps(o Place) bool {
	return p.IsPrefixOf(o) || o.IsPrefixOf(p)
}

// Root returns the place stripped of all projections.
func (p Place) Root() Place { return Place{Base: p.Base} }

// Path renders the projection suffix relative to the base name.
func (p Place) Path(name string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, pr := range p.Proj {
		switch pr.Kind {
		case ProjField:
			b.WriteByte('.')
			b.WriteString(pr.Field)
		case ProjIndex:
			fmt.Fprintf(&b, "[%d]", pr.Index)
		case ProjDeref:
			b.WriteString(".*")
		}
	}
	return b.String()
}

// Key returns a canonical map key for the place. Two places share a key iff
// they are structurally equal.
func (p Place) Key() string {
	return p.Path(fmt.Sprintf("_%d", p.Base))
}
