package pointer

import (
	"sort"

	"golang.org/x/tools/container/intsets"
)

// Universe assigns a stable integer index to every CSObj it has seen, so
// PointsToSet can be backed by a bitset keyed by a global object numbering.
type Universe struct {
	index map[*CSObj]int
	objs  []*CSObj
}

func NewUniverse() *Universe {
	return &Universe{index: make(map[*CSObj]int)}
}

// indexOf returns o's stable index, assigning a new one on first sight.
func (u *Universe) indexOf(o *CSObj) int {
	if i, ok := u.index[o]; ok {
		return i
	}
	i := len(u.objs)
	u.index[o] = i
	u.objs = append(u.objs, o)
	return i
}

func (u *Universe) objAt(i int) *CSObj { return u.objs[i] }

// PointsToSet is a monotonically-growing set of CSObj, backed by a sparse
// integer bitset keyed through a shared Universe. The zero value
// is not usable; construct with NewPointsToSet.
type PointsToSet struct {
	universe *Universe
	bits     intsets.Sparse
}

func NewPointsToSet(universe *Universe) *PointsToSet {
	return &PointsToSet{universe: universe}
}

// Contains reports whether o is already a member.
func (s *PointsToSet) Contains(o *CSObj) bool {
	return s.bits.Has(s.universe.indexOf(o))
}

// Add inserts o, reporting whether it was new.
func (s *PointsToSet) Add(o *CSObj) bool {
	return s.bits.Insert(s.universe.indexOf(o))
}

// Len reports the number of members.
func (s *PointsToSet) Len() int { return s.bits.Len() }

// IsEmpty reports whether the set has no members.
func (s *PointsToSet) IsEmpty() bool { return s.bits.IsEmpty() }

// Objects returns the members, in a deterministic (index) order.
func (s *PointsToSet) Objects() []*CSObj {
	ids := s.bits.AppendTo(nil)
	out := make([]*CSObj, len(ids))
	for i, id := range ids {
		out[i] = s.universe.objAt(id)
	}
	return out
}

// UnionWith merges delta's members into s, returning the newly added members
//").
func (s *PointsToSet) UnionWith(delta *PointsToSet) []*CSObj {
	var added []*CSObj
	for _, o := range delta.Objects() {
		if s.Add(o) {
			added = append(added, o)
		}
	}
	sort.Slice(added, func(i, j int) bool {
		return s.universe.indexOf(added[i]) < s.universe.indexOf(added[j])
	})
	return added
}

// Singleton returns a PointsToSet containing exactly o.
func Singleton(universe *Universe, o *CSObj) *PointsToSet {
	s := NewPointsToSet(universe)
	s.Add(o)
	return s
}
