package coverage

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

func testQuery(t *testing.T) genome.Query {
	g, err := genome.New("test1", []string{"chr1", "chr2"}, []genome.PosType{100000, 50000})
	require.NoError(t, err)
	return genome.NewQuery(g)
}

func mustChrom(t *testing.T, q genome.Query, name string) genome.Chromosome {
	chrom, ok := q.Chromosome(name)
	require.True(t, ok)
	return chrom
}

func TestTagsBuilderSortsAndValidates(t *testing.T) {
	q := testQuery(t)
	chr1 := mustChrom(t, q, "chr1")
	b := NewTagsBuilder(false)
	for _, offset := range []genome.PosType{20, 10, 15, 12} {
		require.NoError(t, b.Process(chr1, genome.StrandNone, offset))
	}
	assert.Error(t, b.Process(chr1, genome.StrandNone, -1))
	assert.Error(t, b.Process(chr1, genome.StrandNone, chr1.Length))
	assert.Error(t, b.Process(chr1, genome.StrandPlus, 10))

	tags := b.Build(false)
	got := tags.Offsets("chr1", genome.StrandNone)
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return got[i] < got[j] }))
	assert.Equal(t, []genome.PosType{10, 12, 15, 20}, got)
	assert.Equal(t, 4, tags.Len())
	assert.False(t, tags.Unique())
}

func TestTagsBuilderUnique(t *testing.T) {
	q := testQuery(t)
	chr1 := mustChrom(t, q, "chr1")

	build := func(unique bool) *Tags {
		b := NewTagsBuilder(false)
		for _, offset := range []genome.PosType{7, 7, 7, 3} {
			require.NoError(t, b.Process(chr1, genome.StrandNone, offset))
		}
		return b.Build(unique)
	}
	assert.Equal(t, []genome.PosType{3, 7}, build(true).Offsets("chr1", genome.StrandNone))
	assert.Equal(t, []genome.PosType{3, 7, 7, 7}, build(false).Offsets("chr1", genome.StrandNone))
}

func TestTagsStrandedKeys(t *testing.T) {
	q := testQuery(t)
	chr1 := mustChrom(t, q, "chr1")
	b := NewTagsBuilder(true)
	require.NoError(t, b.Process(chr1, genome.StrandPlus, 100))
	require.NoError(t, b.Process(chr1, genome.StrandMinus, 200))
	assert.Error(t, b.Process(chr1, genome.StrandNone, 300))

	tags := b.Build(false)
	assert.Equal(t, []genome.PosType{100}, tags.Offsets("chr1", genome.StrandPlus))
	assert.Equal(t, []genome.PosType{200}, tags.Offsets("chr1", genome.StrandMinus))
	assert.Nil(t, tags.Offsets("chr2", genome.StrandPlus))
}

func TestCountRange(t *testing.T) {
	q := testQuery(t)
	chr1 := mustChrom(t, q, "chr1")
	b := NewTagsBuilder(false)
	for _, offset := range []genome.PosType{10, 12, 15, 20} {
		require.NoError(t, b.Process(chr1, genome.StrandNone, offset))
	}
	tags := b.Build(false)

	tests := []struct {
		start, end genome.PosType
		want       int
	}{
		{10, 15, 2},
		{15, 20, 1},
		{0, 100, 4},
		{11, 12, 0},
		{20, 21, 1},
		{21, 100, 0},
		{15, 15, 0},
		{20, 10, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tags.CountRange("chr1", genome.StrandNone, tt.start, tt.end),
			"[%d, %d)", tt.start, tt.end)
	}
	assert.Equal(t, 0, tags.CountRange("chr2", genome.StrandNone, 0, 100))
}
