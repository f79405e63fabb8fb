// Package coverage implements sorted-offset containers for read
// alignments on a genome: single-end (stranded 5'-tag) coverage with
// cross-correlation fragment-size estimation, and base-pair (unstranded
// per-base signal) coverage, plus binary and TSV serialization for both.
package coverage

import (
	"fmt"
	"sort"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

type tagsKey struct {
	chrName string
	strand  genome.Strand
}

// TagsBuilder accumulates genomic offsets per (chromosome, strand) and
// freezes them into an immutable Tags container.  Builders are intended
// for single-writer sequential population; they are not safe for
// concurrent use.
type TagsBuilder struct {
	stranded bool
	buffers  map[tagsKey][]genome.PosType
	chroms   map[string]genome.Chromosome
	built    bool
}

// NewTagsBuilder returns an empty builder.  When stranded is false, the
// strand argument of Process must be StrandNone.
func NewTagsBuilder(stranded bool) *TagsBuilder {
	return &TagsBuilder{
		stranded: stranded,
		buffers:  make(map[tagsKey][]genome.PosType),
		chroms:   make(map[string]genome.Chromosome),
	}
}

// Process appends one zero-based offset to the buffer of (chrom, strand).
// Offsets outside [0, chrom.Length) are a validation error, never
// clamped.
func (b *TagsBuilder) Process(chrom genome.Chromosome, strand genome.Strand, offset genome.PosType) error {
	if b.built {
		panic("coverage.TagsBuilder: Process called after Build")
	}
	if offset < 0 || offset >= chrom.Length {
		return fmt.Errorf("coverage.Process: offset %d out of bounds for %s (length %d)",
			offset, chrom, chrom.Length)
	}
	if b.stranded {
		if strand != genome.StrandPlus && strand != genome.StrandMinus {
			return fmt.Errorf("coverage.Process: stranded store requires +/- strand, got %q", strand)
		}
	} else if strand != genome.StrandNone {
		return fmt.Errorf("coverage.Process: unstranded store rejects strand %q", strand)
	}
	key := tagsKey{chrName: chrom.Name, strand: strand}
	b.buffers[key] = append(b.buffers[key], offset)
	b.chroms[chrom.Name] = chrom
	return nil
}

// Build sorts every per-key buffer (de-duplicating exactly-equal offsets
// first when unique is set) and freezes the result.  The builder must
// not be used afterwards.
func (b *TagsBuilder) Build(unique bool) *Tags {
	if b.built {
		panic("coverage.TagsBuilder: Build called twice")
	}
	b.built = true
	offsets := make(map[tagsKey][]genome.PosType, len(b.buffers))
	for key, buf := range b.buffers {
		sort.Slice(buf, func(i, j int) bool { return buf[i] < buf[j] })
		if unique {
			buf = dedupSorted(buf)
		}
		offsets[key] = buf
	}
	b.buffers = nil
	return &Tags{
		stranded: b.stranded,
		unique:   unique,
		offsets:  offsets,
		chroms:   b.chroms,
	}
}

func dedupSorted(a []genome.PosType) []genome.PosType {
	if len(a) < 2 {
		return a
	}
	out := a[:1]
	for _, v := range a[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// Tags is an immutable container of sorted offsets keyed by (chromosome,
// strand).  All fields are frozen at Build time, so a Tags value is safe
// for unlimited concurrent readers.
type Tags struct {
	stranded bool
	unique   bool
	offsets  map[tagsKey][]genome.PosType
	chroms   map[string]genome.Chromosome
}

// Stranded reports whether the container keeps separate per-strand
// offset lists.
func (t *Tags) Stranded() bool { return t.stranded }

// Unique reports whether exactly-equal offsets were collapsed at build
// time.
func (t *Tags) Unique() bool { return t.unique }

// Offsets returns the sorted offsets for (chrName, strand).  The slice is
// shared with the container; callers must not modify it.
func (t *Tags) Offsets(chrName string, strand genome.Strand) []genome.PosType {
	return t.offsets[tagsKey{chrName: chrName, strand: strand}]
}

// Chromosomes returns the chromosomes with at least one stored offset,
// sorted by name.
func (t *Tags) Chromosomes() []genome.Chromosome {
	chroms := make([]genome.Chromosome, 0, len(t.chroms))
	for _, chrom := range t.chroms {
		chroms = append(chroms, chrom)
	}
	sort.Slice(chroms, func(i, j int) bool { return chroms[i].Less(chroms[j]) })
	return chroms
}

// Len returns the total number of stored offsets.
func (t *Tags) Len() int {
	n := 0
	for _, a := range t.offsets {
		n += len(a)
	}
	return n
}

// CountRange returns the number of offsets of (chrName, strand) falling
// in [start, end): binary search for the leftmost offset >= start, then
// a linear scan while offsets stay < end.  O(log n + k) where k is the
// returned count; k is expected to be small relative to n for the sparse
// interval queries this container serves.
func (t *Tags) CountRange(chrName string, strand genome.Strand, start, end genome.PosType) int {
	a := t.offsets[tagsKey{chrName: chrName, strand: strand}]
	if len(a) == 0 || end <= start {
		return 0
	}
	i := sort.Search(len(a), func(i int) bool { return a[i] >= start })
	n := 0
	for ; i < len(a) && a[i] < end; i++ {
		n++
	}
	return n
}
