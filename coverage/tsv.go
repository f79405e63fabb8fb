package coverage

import (
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

// TSVOpts defines the text format of base-pair coverage TSV files: two
// columns, chromosome name and integer offset.  '#' comment lines are
// always skipped on load.
type TSVOpts struct {
	// Header expects (load) / emits (save) a "chrom\toffset" header line.
	Header bool
	// OneBased interprets/emits offsets as one-based instead of the
	// in-memory zero-based convention.
	OneBased bool
	// Unique de-duplicates offsets when building coverage from a file.
	Unique bool
}

type basePairTSVRow struct {
	Chr    string `tsv:"chrom"`
	Offset int64  `tsv:"offset"`
}

// ReadBasePairTSV builds base-pair coverage from a two-column TSV
// stream.  Rows on chromosomes outside q are skipped; offsets out of
// chromosome bounds are an error.
func ReadBasePairTSV(r io.Reader, q genome.Query, opts TSVOpts) (*BasePair, error) {
	tsvReader := tsv.NewReader(r)
	tsvReader.Comment = '#'
	if opts.Header {
		tsvReader.HasHeaderRow = true
		tsvReader.UseHeaderNames = true
	}

	var sub int64
	if opts.OneBased {
		sub = 1
	}
	builder := NewBasePairBuilder(q)
	skipped := 0
	for {
		var row basePairTSVRow
		if err := tsvReader.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		chrom, ok := q.Chromosome(row.Chr)
		if !ok {
			skipped++
			continue
		}
		if err := builder.Put(chrom, genome.PosType(row.Offset-sub)); err != nil {
			return nil, err
		}
	}
	if skipped > 0 {
		log.Debug.Printf("base-pair TSV: skipped %d row(s) on chromosomes outside the query", skipped)
	}
	return builder.Build(opts.Unique), nil
}

// WriteBasePairTSV writes c as a two-column TSV.
func WriteBasePairTSV(c *BasePair, w io.Writer, opts TSVOpts) error {
	outTSV := tsv.NewWriter(w)
	var add genome.PosType
	if opts.OneBased {
		add = 1
	}
	if opts.Header {
		outTSV.WriteString("chrom\toffset")
		if err := outTSV.EndLine(); err != nil {
			return err
		}
	}
	for _, chrom := range c.tags.Chromosomes() {
		for _, offset := range c.tags.Offsets(chrom.Name, genome.StrandNone) {
			outTSV.WriteString(chrom.Name)
			outTSV.WriteUint32(uint32(offset + add))
			if err := outTSV.EndLine(); err != nil {
				return err
			}
		}
	}
	return outTSV.Flush()
}

// ReadBasePairTSVFromPath is a wrapper for ReadBasePairTSV that takes a
// path.  Gzipped files are detected by extension.
func ReadBasePairTSVFromPath(path string, q genome.Query, opts TSVOpts) (c *BasePair, err error) {
	ctx := vcontext.Background()
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.E(err, path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(in.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return nil, errors.E(err, path)
		}
	}
	return ReadBasePairTSV(reader, q, opts)
}

// WriteBasePairTSVToPath is a wrapper for WriteBasePairTSV that takes a
// path.
func WriteBasePairTSVToPath(c *BasePair, path string, opts TSVOpts) (err error) {
	ctx := vcontext.Background()
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return errors.E(err, "couldn't create TSV file:", path)
	}
	defer func() {
		if cerr := out.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteBasePairTSV(c, out.Writer(ctx), opts)
}
