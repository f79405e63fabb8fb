package coverage

import (
	"fmt"

	"github.com/grailbio/base/log"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

// SingleEnd is coverage built from single-end reads.  Only the 5' end of
// each read is stored, per strand; queries shift plus-strand tags
// forward and minus-strand tags backward by half the effective fragment
// size so that tags from both strands approximate the fragment midpoint.
//
// A SingleEnd value is immutable.  WithFragment returns a copy sharing
// the underlying offset arrays with a different effective fragment.
type SingleEnd struct {
	query            genome.Query
	tags             *Tags
	detectedFragment int
	fragment         int
}

// SingleEndBuilder accumulates read locations for one genome query.
type SingleEndBuilder struct {
	query         genome.Query
	tags          *TagsBuilder
	readLengthSum int64
	readCount     int64
}

// NewSingleEndBuilder returns an empty builder over q.
func NewSingleEndBuilder(q genome.Query) *SingleEndBuilder {
	return &SingleEndBuilder{query: q, tags: NewTagsBuilder(true)}
}

// Put records the 5' end of one read.  The location must be stranded and
// lie on a chromosome visible through the builder's query; reads on
// restricted-away chromosomes are skipped.
func (b *SingleEndBuilder) Put(loc genome.Location) error {
	if !loc.Valid() {
		return fmt.Errorf("coverage.Put: invalid read location %s", loc)
	}
	if loc.Strand != genome.StrandPlus && loc.Strand != genome.StrandMinus {
		return fmt.Errorf("coverage.Put: single-end read %s must be stranded", loc)
	}
	if _, ok := b.query.Chromosome(loc.Chromosome.Name); !ok {
		return nil
	}
	if err := b.tags.Process(loc.Chromosome, loc.Strand, loc.FivePrime()); err != nil {
		return err
	}
	b.readLengthSum += int64(loc.Length())
	b.readCount++
	return nil
}

// Build freezes the offset stores, estimates the fragment size once, and
// returns the immutable coverage.  The builder must not be used
// afterwards.
func (b *SingleEndBuilder) Build(unique bool) *SingleEnd {
	tags := b.tags.Build(unique)
	avgReadLength := float64(b.readLengthSum) / float64(b.readCount)
	detected := EstimateFragment(b.query, tags, avgReadLength)
	log.Printf("single-end coverage built: %d tag(s), detected fragment %d", tags.Len(), detected)
	return &SingleEnd{
		query:            b.query,
		tags:             tags,
		detectedFragment: detected,
		fragment:         detected,
	}
}

// Query returns the genome query the coverage was built over.
func (c *SingleEnd) Query() genome.Query { return c.query }

// Tags returns the underlying offset container.
func (c *SingleEnd) Tags() *Tags { return c.tags }

// DetectedFragment returns the fragment size estimated at build time.
func (c *SingleEnd) DetectedFragment() int { return c.detectedFragment }

// Fragment returns the effective fragment size used by Count.
func (c *SingleEnd) Fragment() int { return c.fragment }

// WithFragment returns a copy of c sharing the same offset stores but
// using fragment for queries.  c itself is never modified.
func (c *SingleEnd) WithFragment(fragment int) (*SingleEnd, error) {
	if fragment < 0 || fragment > MaxFragment {
		return nil, fmt.Errorf("coverage.WithFragment: fragment %d outside [0, %d]", fragment, MaxFragment)
	}
	clone := *c
	clone.fragment = fragment
	return &clone, nil
}

// WithDetectedFragment returns a copy of c reverting to the fragment
// size estimated at build time.
func (c *SingleEnd) WithDetectedFragment() *SingleEnd {
	clone := *c
	clone.fragment = c.detectedFragment
	return &clone
}

// Count returns the number of fragment-midpoint-shifted tags in loc.  A
// stranded location consults that strand only; an unstranded location
// sums both strands.
//
// A plus tag t lands at t + fragment/2, so it falls in [start, end) iff
// t is in [start - fragment/2, end - fragment/2); minus tags shift the
// other way.
func (c *SingleEnd) Count(loc genome.Location) int {
	half := genome.PosType(c.fragment / 2)
	chrName := loc.Chromosome.Name
	n := 0
	if loc.Strand != genome.StrandMinus {
		n += c.tags.CountRange(chrName, genome.StrandPlus, loc.Start-half, loc.End-half)
	}
	if loc.Strand != genome.StrandPlus {
		n += c.tags.CountRange(chrName, genome.StrandMinus, loc.Start+half, loc.End+half)
	}
	return n
}
