package interval

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

func testChrom(t *testing.T, name string) genome.Chromosome {
	g, err := genome.New("test1", []string{"chr1", "chr2"}, []genome.PosType{100000, 50000})
	require.NoError(t, err)
	chrom, ok := g.Chromosome(name)
	require.True(t, ok)
	return chrom
}

func loc(chrom genome.Chromosome, start, end genome.PosType, strand genome.Strand) genome.Location {
	return genome.Location{Chromosome: chrom, Start: start, End: end, Strand: strand}
}

func TestNewUnionMerges(t *testing.T) {
	chr1 := testChrom(t, "chr1")
	chr2 := testChrom(t, "chr2")
	// Deliberately unsorted, overlapping and touching input.
	u := NewUnion([]genome.Location{
		loc(chr1, 20, 25, genome.StrandNone),
		loc(chr1, 5, 15, genome.StrandNone),
		loc(chr1, 7, 17, genome.StrandNone),
		loc(chr1, 17, 18, genome.StrandNone),
		loc(chr1, 30, 30, genome.StrandNone), // empty, dropped
		loc(chr2, 0, 10, genome.StrandNone),
	}, UnionOpts{})

	assert.Equal(t, int64(13+1+5+10), u.Size())
	assert.Equal(t, 3, u.Count())
	assert.Equal(t, []string{"chr1", "chr2"}, u.Chromosomes())

	var got [][3]interface{}
	u.Each(func(chrName string, start, end genome.PosType) {
		got = append(got, [3]interface{}{chrName, start, end})
	})
	want := [][3]interface{}{
		{"chr1", genome.PosType(5), genome.PosType(18)},
		{"chr1", genome.PosType(20), genome.PosType(25)},
		{"chr2", genome.PosType(0), genome.PosType(10)},
	}
	assert.Equal(t, want, got)
}

func TestUnionContains(t *testing.T) {
	chr1 := testChrom(t, "chr1")
	u := NewUnion([]genome.Location{
		loc(chr1, 5, 15, genome.StrandNone),
		loc(chr1, 20, 25, genome.StrandNone),
	}, UnionOpts{})

	// Sequential queries exercise the exponential-search fast path.
	tests := []struct {
		pos  genome.PosType
		want bool
	}{
		{0, false}, {4, false}, {5, true}, {14, true}, {15, false},
		{19, false}, {20, true}, {24, true}, {25, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, u.Contains("chr1", tt.pos), "pos %d", tt.pos)
	}
	// Backwards query breaks the sequential assumption.
	assert.True(t, u.Contains("chr1", 7))
	assert.False(t, u.Contains("chrX", 7))
}

func TestUnionIntersects(t *testing.T) {
	chr1 := testChrom(t, "chr1")
	u := NewUnion([]genome.Location{
		loc(chr1, 5, 15, genome.StrandNone),
		loc(chr1, 20, 25, genome.StrandNone),
	}, UnionOpts{})

	tests := []struct {
		start, end genome.PosType
		want       bool
	}{
		{0, 5, false},
		{0, 6, true},
		{14, 15, true},
		{15, 20, false},
		{15, 21, true},
		{16, 19, false},
		{24, 40, true},
		{25, 40, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, u.Intersects("chr1", tt.start, tt.end), "[%d, %d)", tt.start, tt.end)
	}
	assert.False(t, u.Intersects("chrX", 0, 100))
	assert.Panics(t, func() { u.Intersects("chr1", 10, 10) })
}

func TestUnionPlusStrandOnly(t *testing.T) {
	chr1 := testChrom(t, "chr1")
	locs := []genome.Location{
		loc(chr1, 5, 15, genome.StrandPlus),
		loc(chr1, 30, 40, genome.StrandMinus),
	}
	collapsed := NewUnion(locs, UnionOpts{})
	assert.Equal(t, int64(20), collapsed.Size())
	plusOnly := NewUnion(locs, UnionOpts{PlusStrandOnly: true})
	assert.Equal(t, int64(10), plusOnly.Size())
	assert.False(t, plusOnly.Contains("chr1", 35))
}

func TestUnionClone(t *testing.T) {
	chr1 := testChrom(t, "chr1")
	u := NewUnion([]genome.Location{loc(chr1, 5, 15, genome.StrandNone)}, UnionOpts{})
	clone := u.Clone()
	assert.True(t, u.Contains("chr1", 10))
	assert.True(t, clone.Contains("chr1", 10))
	assert.Equal(t, u.Size(), clone.Size())
}

func TestBEDRoundTrip(t *testing.T) {
	in := strings.Join([]string{
		"# a comment",
		"track name=test",
		"chr2\t100\t200",
		"chr1\t50\t60",
		"chr1\t55\t70",
		"",
	}, "\n")
	u, err := NewUnionFromBED(strings.NewReader(in), BEDOpts{})
	require.NoError(t, err)
	assert.Equal(t, int64(20+100), u.Size())

	var buf bytes.Buffer
	expect.NoError(t, u.WriteBED(&buf))
	reloaded, err := NewUnionFromBED(&buf, BEDOpts{})
	require.NoError(t, err)
	assert.Equal(t, u.Size(), reloaded.Size())
	assert.Equal(t, u.Count(), reloaded.Count())
}

func TestBEDOneBased(t *testing.T) {
	u, err := NewUnionFromBED(strings.NewReader("chr1\t1\t10\n"), BEDOpts{OneBasedInput: true})
	require.NoError(t, err)
	assert.True(t, u.Contains("chr1", 0))
	assert.True(t, u.Contains("chr1", 9))
	assert.False(t, u.Contains("chr1", 10))

	_, err = NewUnionFromBED(strings.NewReader("chr1\t10\n"), BEDOpts{})
	assert.Error(t, err)
	_, err = NewUnionFromBED(strings.NewReader("chr1\t20\t10\n"), BEDOpts{})
	assert.Error(t, err)
}

func TestMask(t *testing.T) {
	chr1 := testChrom(t, "chr1")
	seed := NewUnion([]genome.Location{loc(chr1, 100, 200, genome.StrandNone)}, UnionOpts{})
	m := NewMask(seed)
	assert.Equal(t, 1, m.Len())

	assert.True(t, m.Intersects("chr1", 150, 160))
	assert.True(t, m.Intersects("chr1", 50, 101))
	assert.True(t, m.Intersects("chr1", 199, 300))
	assert.False(t, m.Intersects("chr1", 200, 300))
	assert.False(t, m.Intersects("chr1", 50, 100))
	assert.False(t, m.Intersects("chr2", 150, 160))

	m.Add("chr1", 300, 400)
	m.Add("chr2", 0, 10)
	assert.Equal(t, 3, m.Len())
	assert.True(t, m.Intersects("chr1", 350, 351))
	assert.True(t, m.Intersects("chr2", 5, 6))
	assert.False(t, m.Intersects("chr1", 250, 300))

	empty := NewMask(nil)
	assert.False(t, empty.Intersects("chr1", 0, 1000))
}
