package coverage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

func TestReadBasePairTSV(t *testing.T) {
	q := testQuery(t)
	in := strings.Join([]string{
		"# methylation calls",
		"chr1\t10",
		"chr1\t5",
		"chr2\t100",
		"chrUn\t7", // outside the query, skipped
		"",
	}, "\n")
	c, err := ReadBasePairTSV(strings.NewReader(in), q, TSVOpts{})
	require.NoError(t, err)
	assert.Equal(t, []genome.PosType{5, 10}, c.Tags().Offsets("chr1", genome.StrandNone))
	assert.Equal(t, []genome.PosType{100}, c.Tags().Offsets("chr2", genome.StrandNone))
}

func TestReadBasePairTSVOneBasedAndHeader(t *testing.T) {
	q := testQuery(t)
	in := "chrom\toffset\nchr1\t1\nchr1\t10\n"
	c, err := ReadBasePairTSV(strings.NewReader(in), q, TSVOpts{Header: true, OneBased: true})
	require.NoError(t, err)
	assert.Equal(t, []genome.PosType{0, 9}, c.Tags().Offsets("chr1", genome.StrandNone))

	// A one-based zero underflows the chromosome and must fail loudly.
	_, err = ReadBasePairTSV(strings.NewReader("chr1\t0\n"), q, TSVOpts{OneBased: true})
	assert.Error(t, err)
}

func TestBasePairTSVRoundTrip(t *testing.T) {
	q := testQuery(t)
	c := testBasePair(t, q, false)

	for _, opts := range []TSVOpts{
		{},
		{Header: true},
		{OneBased: true},
		{Header: true, OneBased: true},
	} {
		var buf bytes.Buffer
		require.NoError(t, WriteBasePairTSV(c, &buf, opts))
		loaded, err := ReadBasePairTSV(&buf, q, opts)
		require.NoError(t, err, "%+v", opts)
		assert.Equal(t, c.Tags().Offsets("chr1", genome.StrandNone),
			loaded.Tags().Offsets("chr1", genome.StrandNone), "%+v", opts)
		assert.Equal(t, c.Tags().Offsets("chr2", genome.StrandNone),
			loaded.Tags().Offsets("chr2", genome.StrandNone), "%+v", opts)
	}
}
