// Package shuffle resamples genomic interval placements, reimplementing
// bedtools-shuffle semantics: each requested length is placed uniformly
// at random, weighted by background interval lengths, subject to an
// exclusion mask and bounded retry budgets.
package shuffle

import (
	"math/rand"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
	"github.com/JetBrains-Research/bioinf-commons-sub000/interval"
)

// Opts configures one Shuffle call.
type Opts struct {
	// Background restricts placements to these intervals, with probability
	// mass proportional to interval length.  Nil means the whole genome of
	// the query, chromosome by chromosome.
	Background []genome.Location

	// Mask is genomic area no placement may intersect, regardless of
	// replacement mode.  Masks are strand-collapsed; minus-strand-only
	// mask content is a usage error upstream of this package.
	Mask *interval.RangeUnion

	// WithReplacement allows placements to overlap each other.
	WithReplacement bool

	// SingleRegionMaxRetries bounds the draws attempted for one length
	// before the whole set attempt is abandoned.
	SingleRegionMaxRetries int

	// RegionSetMaxRetries bounds how many times the whole set is retried
	// from scratch (fresh placed-set, same background weighting).
	RegionSetMaxRetries int

	// Rand is the random source; nil means a time-seeded source is created
	// per call.  Tests inject a fixed seed here.
	Rand *rand.Rand
}

// DefaultOpts is the baseline configuration for Shuffle.
var DefaultOpts = Opts{
	SingleRegionMaxRetries: 100,
	RegionSetMaxRetries:    1000,
}
