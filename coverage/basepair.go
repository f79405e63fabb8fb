package coverage

import (
	"fmt"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
	"github.com/JetBrains-Research/bioinf-commons-sub000/interval"
)

// BasePair is single-nucleotide coverage for unstranded per-base signal
// such as methylation calls.  It follows the same builder/freeze
// discipline as SingleEnd but has no strand dimension and no fragment
// concept.
type BasePair struct {
	query genome.Query
	tags  *Tags
}

// BasePairBuilder accumulates per-base offsets for one genome query.
type BasePairBuilder struct {
	query genome.Query
	tags  *TagsBuilder
}

// NewBasePairBuilder returns an empty builder over q.
func NewBasePairBuilder(q genome.Query) *BasePairBuilder {
	return &BasePairBuilder{query: q, tags: NewTagsBuilder(false)}
}

// Put records one zero-based offset.  Offsets on chromosomes outside the
// builder's query are skipped; out-of-bounds offsets are an error.
func (b *BasePairBuilder) Put(chrom genome.Chromosome, offset genome.PosType) error {
	if _, ok := b.query.Chromosome(chrom.Name); !ok {
		return nil
	}
	return b.tags.Process(chrom, genome.StrandNone, offset)
}

// Build freezes the offset stores.  The builder must not be used
// afterwards.
func (b *BasePairBuilder) Build(unique bool) *BasePair {
	return &BasePair{query: b.query, tags: b.tags.Build(unique)}
}

// Query returns the genome query the coverage was built over.
func (c *BasePair) Query() genome.Query { return c.query }

// Tags returns the underlying offset container.
func (c *BasePair) Tags() *Tags { return c.tags }

// Count returns the number of stored offsets in [loc.Start, loc.End).
// Strand on the location is ignored entirely.
func (c *BasePair) Count(loc genome.Location) int {
	return c.tags.CountRange(loc.Chromosome.Name, genome.StrandNone, loc.Start, loc.End)
}

// Filter rebuilds a BasePair containing only the offsets that fall
// inside (includeRegions=true) or outside (includeRegions=false) the
// union of regions.  When ignoreMinusStrand is set, minus-strand regions
// are dropped before the union is built; offsets here are
// strand-agnostic by construction, so masking against minus-strand
// annotation is usually a mistake.
//
// This is a single pass over all stored offsets with an O(log
// region-count) membership test each, and the result keeps the source's
// de-duplication state.
func (c *BasePair) Filter(regions []genome.Location, includeRegions, ignoreMinusStrand bool) (*BasePair, error) {
	union := interval.NewUnion(regions, interval.UnionOpts{PlusStrandOnly: ignoreMinusStrand})
	builder := NewBasePairBuilder(c.query)
	for _, chrom := range c.tags.Chromosomes() {
		// Offsets are sorted, so the union's sequential-query cache keeps
		// the per-offset test near O(1) after the first hit.
		for _, offset := range c.tags.Offsets(chrom.Name, genome.StrandNone) {
			if union.Contains(chrom.Name, offset) == includeRegions {
				if err := builder.Put(chrom, offset); err != nil {
					return nil, fmt.Errorf("coverage.Filter: %v", err)
				}
			}
		}
	}
	return builder.Build(c.tags.Unique()), nil
}
