package interval

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

// BEDOpts defines behavior of this package's BED-loading functions.
type BEDOpts struct {
	// OneBasedInput interprets the BED interval boundaries as one-based
	// [start, end] instead of the usual zero-based [start, end).
	OneBasedInput bool
}

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' '
// is treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// NewUnionFromBED loads the first three columns of a BED stream into a
// RangeUnion.  Unlike strict BED tooling, input does not need to be
// sorted; intervals are sorted and merged during construction.  Track
// lines and '#' comments are skipped.
func NewUnionFromBED(reader io.Reader, opts BEDOpts) (*RangeUnion, error) {
	scanner := bufio.NewScanner(reader)

	var startSubtract int
	if opts.OneBasedInput {
		startSubtract++
	}

	var tokens [3][]byte
	var spans []span
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		if len(curLine) > 0 && curLine[0] == '#' {
			continue
		}
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 {
			continue
		}
		if first := gunsafe.BytesToString(tokens[0]); first == "track" || first == "browser" {
			continue
		}
		if nToken != 3 {
			return nil, fmt.Errorf("interval.NewUnionFromBED: line %d has fewer tokens than expected", lineIdx)
		}

		parsedStart, err := strconv.Atoi(gunsafe.BytesToString(tokens[1]))
		if err != nil {
			return nil, err
		}
		parsedStart -= startSubtract
		if parsedStart < 0 {
			return nil, fmt.Errorf("interval.NewUnionFromBED: negative start coordinate %s on line %d", tokens[1], lineIdx)
		}
		parsedEnd, err := strconv.Atoi(gunsafe.BytesToString(tokens[2]))
		if err != nil {
			return nil, err
		}
		if parsedEnd < parsedStart || parsedEnd >= genome.PosTypeMax {
			return nil, fmt.Errorf("interval.NewUnionFromBED: invalid coordinate pair on line %d", lineIdx)
		}
		// tokens refer to bytes of curLine which the scanner will
		// overwrite; the chromosome name needs a real copy.
		spans = append(spans, span{
			chr:   string(tokens[0]),
			start: genome.PosType(parsedStart),
			end:   genome.PosType(parsedEnd),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	u := newUnionFromSpans(spans)
	log.Debug.Printf("BED loaded, %d base(s) covered", u.Size())
	return u, nil
}

// NewUnionFromBEDPath is a wrapper for NewUnionFromBED that takes a path
// instead of an io.Reader.  Gzipped files are detected by extension.
func NewUnionFromBEDPath(path string, opts BEDOpts) (u *RangeUnion, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return nil, err
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return nil, err
		}
	}
	return NewUnionFromBED(reader, opts)
}

// WriteBED writes the union as three-column zero-based BED.
func (u *RangeUnion) WriteBED(w io.Writer) error {
	outTSV := tsv.NewWriter(w)
	var werr error
	u.Each(func(chrName string, start, end genome.PosType) {
		if werr != nil {
			return
		}
		outTSV.WriteString(chrName)
		outTSV.WriteUint32(uint32(start))
		outTSV.WriteUint32(uint32(end))
		werr = outTSV.EndLine()
	})
	if werr != nil {
		return werr
	}
	return outTSV.Flush()
}
