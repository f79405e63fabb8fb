package interval

import (
	"github.com/biogo/store/llrb"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

// maskRange is one forbidden half-open range, ordered by start for use in
// llrb.  Ranges in one tree never overlap: seeds come from a merged
// RangeUnion and additions are rejected by Intersects first.
type maskRange struct {
	start, end genome.PosType
}

// Compare orders maskRanges by start position.
func (r maskRange) Compare(c llrb.Comparable) int {
	other := c.(maskRange)
	switch {
	case r.start < other.start:
		return -1
	case r.start > other.start:
		return 1
	}
	return 0
}

// Mask is the mutable per-attempt bookkeeping of the region shuffler: the
// caller-supplied exclusion area plus, when sampling without
// replacement, every placement accepted so far.  Unlike RangeUnion it
// supports incremental insertion; it is meant to live for one shuffle
// attempt and be discarded.  Not safe for concurrent use.
type Mask struct {
	trees map[string]*llrb.Tree
}

// NewMask returns a Mask seeded with the intervals of u.  A nil u yields
// an empty mask.
func NewMask(u *RangeUnion) *Mask {
	m := &Mask{trees: make(map[string]*llrb.Tree)}
	if u != nil {
		u.Each(func(chrName string, start, end genome.PosType) {
			m.Add(chrName, start, end)
		})
	}
	return m
}

// Intersects checks whether [start, end) on chrName overlaps any masked
// range.
func (m *Mask) Intersects(chrName string, start, end genome.PosType) bool {
	tree := m.trees[chrName]
	if tree == nil {
		return false
	}
	// The nearest range starting at or before start may run over it;
	// any range starting inside [start, end) overlaps by definition.
	if floor := tree.Floor(maskRange{start: start}); floor != nil {
		if floor.(maskRange).end > start {
			return true
		}
	}
	if ceil := tree.Ceil(maskRange{start: start}); ceil != nil {
		if ceil.(maskRange).start < end {
			return true
		}
	}
	return false
}

// Add inserts [start, end) on chrName into the mask.  The caller is
// responsible for checking Intersects first; overlapping insertions
// break the disjointness invariant Intersects relies on.
func (m *Mask) Add(chrName string, start, end genome.PosType) {
	tree := m.trees[chrName]
	if tree == nil {
		tree = &llrb.Tree{}
		m.trees[chrName] = tree
	}
	tree.Insert(maskRange{start: start, end: end})
}

// Len returns the total number of masked ranges.
func (m *Mask) Len() int {
	n := 0
	for _, tree := range m.trees {
		n += tree.Len()
	}
	return n
}
