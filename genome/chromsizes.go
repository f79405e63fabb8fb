package genome

import (
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// chromSizesRow mirrors one line of a UCSC chrom.sizes file.
type chromSizesRow struct {
	Name   string
	Length int64
}

// ReadChromSizes builds a Genome from a UCSC-style chrom.sizes file (two
// tab-separated columns: chromosome name, length).  Lines starting with
// '#' are skipped.  Gzipped files are detected by extension.
func ReadChromSizes(build string, r io.Reader) (*Genome, error) {
	tsvReader := tsv.NewReader(r)
	tsvReader.Comment = '#'

	var names []string
	var lengths []PosType
	for {
		var row chromSizesRow
		if err := tsvReader.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, "genome.ReadChromSizes")
		}
		if row.Length <= 0 || row.Length > PosTypeMax {
			return nil, errors.Errorf("genome.ReadChromSizes: chromosome %s has invalid length %d", row.Name, row.Length)
		}
		names = append(names, row.Name)
		lengths = append(lengths, PosType(row.Length))
	}
	g, err := New(build, names, lengths)
	if err != nil {
		return nil, err
	}
	log.Debug.Printf("chrom.sizes loaded: build %s, %d chromosome(s)", build, g.Len())
	return g, nil
}

// ReadChromSizesFromPath is a wrapper for ReadChromSizes that takes a
// path instead of an io.Reader.
func ReadChromSizesFromPath(build, path string) (g *Genome, err error) {
	ctx := vcontext.Background()
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.Wrap(err, path)
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
			return nil, errors.Wrap(err, path)
		}
	}
	return ReadChromSizes(build, reader)
}
