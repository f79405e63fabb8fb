package genome

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenome(t *testing.T) *Genome {
	g, err := New("test1", []string{"chr1", "chr2", "chr3"}, []PosType{10000, 5000, 2000})
	require.NoError(t, err)
	return g
}

func TestNewGenome(t *testing.T) {
	g := testGenome(t)
	assert.Equal(t, 3, g.Len())
	chrom, ok := g.Chromosome("chr2")
	require.True(t, ok)
	assert.Equal(t, Chromosome{Build: "test1", Name: "chr2", Length: 5000}, chrom)
	_, ok = g.Chromosome("chrM")
	assert.False(t, ok)

	_, err := New("test1", []string{"chr1", "chr1"}, []PosType{100, 200})
	assert.Error(t, err)
	_, err = New("test1", []string{"chr1"}, []PosType{0})
	assert.Error(t, err)
	_, err = New("test1", []string{"chr1", "chr2"}, []PosType{100})
	assert.Error(t, err)
}

func TestQueryRestrict(t *testing.T) {
	q := NewQuery(testGenome(t))
	assert.Equal(t, 3, len(q.Chromosomes()))

	// Restriction keeps build order regardless of argument order.
	restricted, err := q.Restrict("chr3", "chr1")
	require.NoError(t, err)
	names := []string{}
	for _, chrom := range restricted.Chromosomes() {
		names = append(names, chrom.Name)
	}
	assert.Equal(t, []string{"chr1", "chr3"}, names)

	_, ok := restricted.Chromosome("chr2")
	assert.False(t, ok)
	_, ok = restricted.Chromosome("chr1")
	assert.True(t, ok)

	_, err = q.Restrict("chrUn")
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	g := testGenome(t)
	chr1, _ := g.Chromosome("chr1")
	tests := []struct {
		loc       Location
		valid     bool
		fivePrime PosType
	}{
		{Location{chr1, 100, 200, StrandPlus}, true, 100},
		{Location{chr1, 100, 200, StrandMinus}, true, 199},
		{Location{chr1, 100, 200, StrandNone}, true, 100},
		{Location{chr1, 200, 200, StrandPlus}, false, 200},
		{Location{chr1, -1, 200, StrandPlus}, false, -1},
		{Location{chr1, 9990, 10001, StrandPlus}, false, 9990},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.loc.Valid(), "%s", tt.loc)
		assert.Equal(t, tt.fivePrime, tt.loc.FivePrime(), "%s", tt.loc)
	}
}

func TestParseStrand(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Strand
		err  bool
	}{
		{"+", StrandPlus, false},
		{"-", StrandMinus, false},
		{".", StrandNone, false},
		{"", StrandNone, false},
		{"x", StrandNone, true},
	} {
		got, err := ParseStrand(tt.in)
		if tt.err {
			assert.Error(t, err, "%q", tt.in)
			continue
		}
		expect.NoError(t, err)
		assert.Equal(t, tt.want, got, "%q", tt.in)
	}
}

func TestReadChromSizes(t *testing.T) {
	in := "# comment line\nchr1\t10000\nchr2\t5000\n"
	g, err := ReadChromSizes("test1", strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	chrom, ok := g.Chromosome("chr1")
	require.True(t, ok)
	assert.Equal(t, PosType(10000), chrom.Length)

	_, err = ReadChromSizes("test1", strings.NewReader("chr1\t0\n"))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	loads := 0
	load := func() (*Genome, error) {
		loads++
		return New("test1", []string{"chr1"}, []PosType{100})
	}
	g1, err := r.Get("test1", load)
	require.NoError(t, err)
	g2, err := r.Get("test1", load)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.True(t, g1 == g2)

	r.Invalidate("test1")
	_, err = r.Get("test1", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}
