package ir

import "testing"

func place(base LocalID, proj ...Proj) Place {
	return Place{Base: base, Proj: proj}
}

func fieldProj(name string) Proj { return Proj{Kind: ProjField, Field: name} }
func indexProj(i int) Proj       { return Proj{Kind: ProjIndex, Index: i} }
func derefProj() Proj            { return Proj{Kind: ProjDeref} }

func TestPlacePrefixAndOverlap(t *testing.T) {
	x := place(0)
	xa := place(0, fieldProj("a"))
	xab := place(0, fieldProj("a"), fieldProj("b"))
	xb := place(0, fieldProj("b"))
	y := place(1)

	if !x.IsPrefixOf(xa) || !xa.IsPrefixOf(xab) {
		t.Fatal("prefix relation broken along a path")
	}
	if xa.IsPrefixOf(xb) || xb.IsPrefixOf(xa) {
		t.Fatal("sibling fields are not prefixes of each other")
	}
	if !x.Overlaps(xab) || !xab.Overlaps(x) {
		t.Fatal("ancestor and descendant must conflict")
	}
	if xa.Overlaps(xb) {
		t.Fatal("disjoint sub-paths must not conflict")
	}
	if x.Overlaps(y) {
		t.Fatal("distinct bases never conflict")
	}
}

func TestPlaceOverlapWithIndexAndDeref(t *testing.T) {
	v0 := place(0, indexProj(0))
	v1 := place(0, indexProj(1))
	vd := place(0, indexProj(0), derefProj())

	if v0.Overlaps(v1) {
		t.Fatal("distinct constant indices are disjoint")
	}
	if !v0.Overlaps(vd) {
		t.Fatal("a dereference below an index overlaps the indexed slot")
	}
}

func TestPlacePath(t *testing.T) {
	p := place(0, fieldProj("items"), indexProj(2), derefProj())
	if got := p.Path("v"); got != "v.items[2].*" {
		t.Fatalf("unexpected path rendering: %q", got)
	}
}

func TestPlaceKeyIsCanonical(t *testing.T) {
	a := place(3, fieldProj("f"))
	b := place(3, fieldProj("f"))
	c := place(3, fieldProj("g"))
	if a.Key() != b.Key() {
		t.Fatal("equal places must share a key")
	}
	if a.Key() == c.Key() {
		t.Fatal("distinct places must not share a key")
	}
}
