package coverage

import (
	"math"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

// MaxFragment is the largest candidate fragment size considered by the
// estimator, and the upper bound accepted by SingleEnd.WithFragment.
const MaxFragment = 500

// EstimateFragment estimates the sequenced fragment size from stranded
// 5'-tag arrays using a cross-correlation transform: for every candidate
// shift d, plus-strand tags are shifted forward by d and compared
// against minus-strand tags, and a cheap monotone surrogate for the
// Pearson correlation of the two indicator vectors is summed over
// chromosomes.  The candidate maximizing the sum wins; ties go to the
// smallest candidate.
//
// Candidates below the average read length are excluded to avoid
// locking onto within-read autocorrelation (Landt et al. 2012).
// Degenerate input (no tags, NaN average read length, average read
// length above MaxFragment) yields 0: there is nothing to estimate.
//
// Candidates are scored concurrently.  Each candidate owns one slot of
// the score array and sums its chromosomes sequentially, so the numbers
// are identical to a fully sequential run; only the final argmax scan
// reads across slots, after all goroutines are done.
func EstimateFragment(q genome.Query, tags *Tags, avgReadLength float64) int {
	if tags.Len() == 0 || math.IsNaN(avgReadLength) {
		return 0
	}
	lo := int(math.Round(avgReadLength))
	if lo < 1 {
		lo = 1
	}
	if lo > MaxFragment {
		log.Error.Printf("fragment estimation skipped: average read length %.1f exceeds max candidate %d",
			avgReadLength, MaxFragment)
		return 0
	}
	chroms := q.Chromosomes()
	scores := make([]float64, MaxFragment-lo+1)
	_ = traverse.Each(len(scores), func(i int) error {
		d := genome.PosType(lo + i)
		var score float64
		for _, chrom := range chroms {
			plus := tags.Offsets(chrom.Name, genome.StrandPlus)
			minus := tags.Offsets(chrom.Name, genome.StrandMinus)
			score += shiftCorrelation(plus, minus, d, chrom.Length)
		}
		scores[i] = score
		return nil
	})
	best := 0
	bestScore := math.Inf(-1)
	for i, score := range scores {
		if score > bestScore {
			bestScore = score
			best = lo + i
		}
	}
	log.Debug.Printf("fragment estimation: candidates [%d, %d], best %d (score %g)",
		lo, MaxFragment, best, bestScore)
	return best
}

// shiftCorrelation walks the d-shifted plus array and the minus array in
// merged sorted order, counting positions where they coincide, and
// converts the counts into the Pearson surrogate
//
//	matched * (np+nm) * L / sqrt(np*(L-np) * nm*(L-nm))
//
// where L is the chromosome length.  Chromosomes with tags on only one
// strand contribute nothing.
func shiftCorrelation(plus, minus []genome.PosType, d, chromLength genome.PosType) float64 {
	np := len(plus)
	nm := len(minus)
	if np == 0 || nm == 0 {
		return 0
	}
	matched := 0
	i, j := 0, 0
	for i < np && j < nm {
		shifted := plus[i] + d
		switch {
		case shifted == minus[j]:
			matched++
			i++
			j++
		case shifted < minus[j]:
			i++
		default:
			j++
		}
	}
	if matched == 0 {
		return 0
	}
	l := float64(chromLength)
	denom := math.Sqrt(float64(np) * (l - float64(np)) * float64(nm) * (l - float64(nm)))
	if denom <= 0 {
		return 0
	}
	return float64(matched) * float64(np+nm) * l / denom
}
