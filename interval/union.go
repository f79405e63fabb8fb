package interval

import (
	"fmt"
	"sort"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

// searchPos returns the index of x in a[], or the position where x would
// be inserted if x isn't in a (this could be len(a)).  It's exactly the
// same as sort.SearchInts(), except for genome.PosType.
func searchPos(a []genome.PosType, x genome.PosType) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// expsearchPos checks a[idx], then a[idx + 1], then a[idx + 3], then
// a[idx + 7], etc., and then uses binary search to finish the job.  It's
// usually a better choice than searchPos when iterating.
func expsearchPos(a []genome.PosType, x genome.PosType, idx int) int {
	nextIncr := 1
	startIdx := idx
	endIdx := len(a)
	for idx < endIdx {
		if a[idx] >= x {
			endIdx = idx
			break
		}
		startIdx = idx + 1
		idx += nextIncr
		nextIncr *= 2
	}
	for startIdx < endIdx {
		midIdx := int(uint(startIdx+endIdx) >> 1)
		if a[midIdx] >= x {
			endIdx = midIdx
		} else {
			startIdx = midIdx + 1
		}
	}
	return startIdx
}

// UnionOpts controls RangeUnion construction.
type UnionOpts struct {
	// PlusStrandOnly drops minus-strand locations instead of collapsing
	// them onto the plus strand.
	PlusStrandOnly bool
}

// RangeUnion is a chromosome-keyed set of disjoint half-open intervals.
// Each chromosome's set is stored as a length-2N endpoint sequence: the
// (0-based) start of interval #k is element [2k] and its end is element
// [2k+1], with intervals in increasing order.  This representation keeps
// membership tests as plain []PosType binary searches and makes merging
// trivial.
//
// A RangeUnion is read-only after construction.  The cached search state
// below accelerates runs of queries with nondecreasing positions on one
// chromosome; Clone gives an independent copy of that state for use from
// another goroutine.
type RangeUnion struct {
	nameMap map[string][]genome.PosType

	// lastChrEndpoints points to the endpoint set of the most recently
	// queried chromosome.
	lastChrEndpoints []genome.PosType
	// lastChrName is the name of the last queried chromosome; if nonempty
	// it must be in sync with lastChrEndpoints.
	lastChrName string
	// lastPosPlus1 is 1 plus the last spot-queried position.
	lastPosPlus1 genome.PosType
	// lastIdx is searchPos(lastChrEndpoints, lastPosPlus1).
	lastIdx int
	// isSequential is true if all queries since the last chromosome change
	// have been in order of nondecreasing position.
	isSequential bool
}

type span struct {
	chr        string
	start, end genome.PosType
}

func newUnionFromSpans(spans []span) *RangeUnion {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].chr != spans[j].chr {
			return spans[i].chr < spans[j].chr
		}
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})
	u := &RangeUnion{nameMap: make(map[string][]genome.PosType)}
	prevChr := ""
	var prevStart, prevEnd genome.PosType
	var endpoints []genome.PosType
	flush := func() {
		if prevChr != "" {
			if prevEnd > prevStart {
				endpoints = append(endpoints, prevStart, prevEnd)
			}
			if len(endpoints) > 0 {
				u.nameMap[prevChr] = endpoints
			}
		}
	}
	for _, s := range spans {
		if s.end <= s.start {
			continue
		}
		if s.chr != prevChr {
			flush()
			prevChr = s.chr
			endpoints = nil
			prevStart, prevEnd = s.start, s.end
			continue
		}
		if s.start > prevEnd {
			endpoints = append(endpoints, prevStart, prevEnd)
			prevStart, prevEnd = s.start, s.end
		} else if s.end > prevEnd {
			// Touching or overlapping intervals merge.
			prevEnd = s.end
		}
	}
	flush()
	return u
}

// NewUnion builds a RangeUnion from locations in any order, merging
// touching/overlapping intervals and dropping empty ones.  Locations are
// strand-collapsed unless opts.PlusStrandOnly is set, in which case
// minus-strand locations are skipped.
func NewUnion(locs []genome.Location, opts UnionOpts) *RangeUnion {
	spans := make([]span, 0, len(locs))
	for _, loc := range locs {
		if opts.PlusStrandOnly && loc.Strand == genome.StrandMinus {
			continue
		}
		spans = append(spans, span{chr: loc.Chromosome.Name, start: loc.Start, end: loc.End})
	}
	return newUnionFromSpans(spans)
}

// Contains checks whether the (0-based) position pos on chromosome
// chrName is covered by the union.
func (u *RangeUnion) Contains(chrName string, pos genome.PosType) bool {
	posPlus1 := pos + 1
	if chrName != u.lastChrName {
		u.lastChrName = chrName
		u.lastChrEndpoints = u.nameMap[chrName]
		if u.lastChrEndpoints == nil {
			return false
		}
		u.lastIdx = searchPos(u.lastChrEndpoints, posPlus1)
		u.lastPosPlus1 = posPlus1
		u.isSequential = true
		return u.lastIdx&1 == 1
	}
	if u.lastChrEndpoints == nil {
		return false
	}
	if u.isSequential {
		if posPlus1 >= u.lastPosPlus1 {
			u.lastIdx = expsearchPos(u.lastChrEndpoints, posPlus1, u.lastIdx)
			u.lastPosPlus1 = posPlus1
			return u.lastIdx&1 == 1
		}
		u.isSequential = false
	}
	return searchPos(u.lastChrEndpoints, posPlus1)&1 == 1
}

// Intersects checks whether [start, end) on chrName overlaps the union by
// at least one base.  It panics if end <= start.
func (u *RangeUnion) Intersects(chrName string, start, end genome.PosType) bool {
	if end <= start {
		panic(fmt.Sprintf("interval.Intersects: empty query [%d, %d)", start, end))
	}
	endpoints := u.nameMap[chrName]
	if endpoints == nil {
		return false
	}
	idx := searchPos(endpoints, start+1)
	if idx&1 == 1 {
		return true
	}
	return idx != len(endpoints) && endpoints[idx] < end
}

// Chromosomes returns the chromosome names with at least one interval, in
// lexicographic order.
func (u *RangeUnion) Chromosomes() []string {
	names := make([]string, 0, len(u.nameMap))
	for name := range u.nameMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Each calls fn for every interval in (chromosome, start) order.
func (u *RangeUnion) Each(fn func(chrName string, start, end genome.PosType)) {
	for _, name := range u.Chromosomes() {
		endpoints := u.nameMap[name]
		for i := 0; i < len(endpoints); i += 2 {
			fn(name, endpoints[i], endpoints[i+1])
		}
	}
}

// Size returns the total number of covered bases.
func (u *RangeUnion) Size() int64 {
	var total int64
	for _, endpoints := range u.nameMap {
		for i := 0; i < len(endpoints); i += 2 {
			total += int64(endpoints[i+1] - endpoints[i])
		}
	}
	return total
}

// Count returns the number of disjoint intervals.
func (u *RangeUnion) Count() int {
	n := 0
	for _, endpoints := range u.nameMap {
		n += len(endpoints) / 2
	}
	return n
}

// Clone returns a new RangeUnion which shares the interval data but has
// its own search state.
func (u *RangeUnion) Clone() *RangeUnion {
	return &RangeUnion{nameMap: u.nameMap}
}
