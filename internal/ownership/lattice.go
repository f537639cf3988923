package ownership

import (
	"sort"

	"borrowck/internal/ir"
)

// moveEntry records one moved path. Maybe entries come from control-flow
// joins where the path moved on some but not all incoming edges; reads of
// either flavor are conflicts.
type moveEntry struct {
	place ir.Place
	maybe bool
	at    ir.Point
}

// moveSet is the per-program-point state of the move tracker: the set of
// currently moved (or maybe-moved) paths, keyed by canonical place key.
// Absence means Owned. The set grows monotonically under join, which bounds
// the fixpoint by one step per move site.
type moveSet map[string]moveEntry

func (s moveSet) clone() moveSet {
	out := make(moveSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s moveSet) equal(o moveSet) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		ov, ok := o[k]
		if !ok || ov.maybe != v.maybe || !ov.place.Equal(v.place) {
			return false
		}
	}
	return true
}

// movedOverlapping returns the entry justifying a UseAfterMove on a read of p:
// either an ancestor of p has moved away, or a sub-path inside p has. Disjoint
// sibling paths do not collide. Lookup is deterministic: the earliest point
// wins, keys break ties.
func (s moveSet) movedOverlapping(p ir.Place) (moveEntry, bool) {
	var best moveEntry
	var bestKey string
	found := false
	for k, e := range s {
		if !e.place.Overlaps(p) {
			continue
		}
		if !found || e.at.Before(best.at) || (e.at == best.at && k < bestKey) {
			best, bestKey, found = e, k, true
		}
	}
	return best, found
}

// markMoved records that p moved away at pt. Copy-category content never
// reaches here; callers filter on local flags.
func (s moveSet) markMoved(p ir.Place, pt ir.Point) {
	key := p.Key()
	if prev, ok := s[key]; ok && !prev.maybe {
		return
	}
	s[key] = moveEntry{place: p, at: pt}
}

// heal resets p and all its moved sub-paths to Owned: a fresh assignment
// re-initializes the place regardless of prior state.
func (s moveSet) heal(p ir.Place) {
	for k, e := range s {
		if e.place.Overlaps(p) {
			delete(s, k)
		}
	}
}

// joinMoveSets computes the merge-point state: a path is definitely moved only
// when moved on every incoming edge; moved on some-but-not-all edges yields a
// maybe entry, itself unsafe to read.
func joinMoveSets(ins []moveSet) moveSet {
	out := moveSet{}
	if len(ins) == 0 {
		return out
	}
	keys := make(map[string]int)
	for _, in := range ins {
		for k := range in {
			keys[k]++
		}
	}
	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)
	for _, k := range ordered {
		var entry moveEntry
		first := true
		maybe := keys[k] < len(ins)
		for _, in := range ins {
			e, ok := in[k]
			if !ok {
				continue
			}
			if e.maybe {
				maybe = true
			}
			if first || e.at.Before(entry.at) {
				entry = e
				first = false
			}
		}
		entry.maybe = maybe
		out[k] = entry
	}
	return out
}
