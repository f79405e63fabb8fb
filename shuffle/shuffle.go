package shuffle

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
	"github.com/JetBrains-Research/bioinf-commons-sub000/interval"
)

// Result carries the accepted placements plus, per requested length, the
// number of draws it took to place it (diagnostics for retry-budget
// tuning).
type Result struct {
	Regions  []genome.Location
	Attempts []int
}

// background is the length-weighted sampling space, shared read-only
// across all retry attempts of one Shuffle call.
type background struct {
	intervals []genome.Location
	// cum[i] is the total length of intervals[0..i]; the last entry is the
	// total background size.
	cum []int64
}

func newBackground(q genome.Query, intervals []genome.Location) (*background, error) {
	if intervals == nil {
		for _, chrom := range q.Chromosomes() {
			intervals = append(intervals, genome.Location{
				Chromosome: chrom,
				Start:      0,
				End:        chrom.Length,
			})
		}
	}
	bg := &background{
		intervals: intervals,
		cum:       make([]int64, len(intervals)),
	}
	var total int64
	for i, iv := range intervals {
		if !iv.Valid() {
			return nil, fmt.Errorf("shuffle: invalid background interval %s", iv)
		}
		total += int64(iv.Length())
		bg.cum[i] = total
	}
	if total == 0 {
		return nil, fmt.Errorf("shuffle: empty background")
	}
	return bg, nil
}

func (bg *background) total() int64 { return bg.cum[len(bg.cum)-1] }

// anchor converts a uniform draw in [0, total) into a genomic position:
// the draw picks a background interval proportionally to its length and
// lands at the corresponding offset inside it.
func (bg *background) anchor(draw int64) (genome.Chromosome, genome.PosType) {
	i := sort.Search(len(bg.cum), func(i int) bool { return bg.cum[i] > draw })
	iv := bg.intervals[i]
	within := draw - (bg.cum[i] - int64(iv.Length()))
	return iv.Chromosome, iv.Start + genome.PosType(within)
}

// Shuffle produces one random placement per requested length.  Without
// replacement, placements do not overlap each other; in every mode they
// avoid opts.Mask and never run past their chromosome end.  Placement
// starts are drawn via a length-weighted anchor into the background,
// backed off by a uniform offset below the placed length so placements
// are not flush with background interval starts (an approximation of
// bedtools shuffle, kept deliberately).
//
// One call is single-threaded; independent calls with their own Rand may
// run concurrently.
func Shuffle(q genome.Query, lengths []genome.PosType, opts Opts) (Result, error) {
	for _, length := range lengths {
		if length <= 0 {
			return Result{}, fmt.Errorf("shuffle: non-positive region length %d", length)
		}
	}
	if opts.SingleRegionMaxRetries <= 0 {
		opts.SingleRegionMaxRetries = DefaultOpts.SingleRegionMaxRetries
	}
	if opts.RegionSetMaxRetries <= 0 {
		opts.RegionSetMaxRetries = DefaultOpts.RegionSetMaxRetries
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	bg, err := newBackground(q, opts.Background)
	if err != nil {
		return Result{}, err
	}
	// With replacement and no mask there is nothing to bookkeep: every
	// draw that fits its chromosome is accepted.
	fastPath := opts.WithReplacement && opts.Mask == nil

	for setAttempt := 0; setAttempt < opts.RegionSetMaxRetries; setAttempt++ {
		result, ok := shuffleOnce(bg, lengths, opts, rnd, fastPath)
		if ok {
			if setAttempt > 0 {
				log.Debug.Printf("shuffle: placed %d region(s) after %d whole-set attempt(s)",
					len(lengths), setAttempt+1)
			}
			return result, nil
		}
	}
	return Result{}, errors.E(fmt.Sprintf(
		"shuffle: failed to place %d region(s) in background of %d base(s): exhausted %d whole-set attempts of %d draws per region",
		len(lengths), bg.total(), opts.RegionSetMaxRetries, opts.SingleRegionMaxRetries))
}

// shuffleOnce runs one whole-set attempt with a fresh placed-set.
func shuffleOnce(bg *background, lengths []genome.PosType, opts Opts, rnd *rand.Rand, fastPath bool) (Result, bool) {
	var mask *interval.Mask
	if !fastPath {
		mask = interval.NewMask(opts.Mask)
	}
	result := Result{
		Regions:  make([]genome.Location, 0, len(lengths)),
		Attempts: make([]int, len(lengths)),
	}
	for li, length := range lengths {
		placed := false
		for try := 1; try <= opts.SingleRegionMaxRetries; try++ {
			result.Attempts[li] = try
			chrom, anchor := bg.anchor(rnd.Int63n(bg.total()))
			start := anchor - genome.PosType(rnd.Int63n(int64(length)))
			if start < 0 {
				start = 0
			}
			end := start + length
			if end > chrom.Length {
				continue
			}
			if mask != nil && mask.Intersects(chrom.Name, start, end) {
				continue
			}
			if mask != nil && !opts.WithReplacement {
				mask.Add(chrom.Name, start, end)
			}
			result.Regions = append(result.Regions, genome.Location{
				Chromosome: chrom,
				Start:      start,
				End:        end,
			})
			placed = true
			break
		}
		if !placed {
			return Result{}, false
		}
	}
	return result, true
}
