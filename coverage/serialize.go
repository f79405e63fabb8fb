package coverage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
	"github.com/grailbio/base/vcontext"

	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

// Binary coverage container: a recordio file whose named headers carry
// the format markers and whose records carry one sorted offset array per
// (chromosome, strand) key.
//
// Headers:
//   CoverageType    "single-end" or "base-pair"
//   FormatVersion   "2"
//   Fragment        detected fragment size (single-end only)
//   Unique          "1" if offsets were de-duplicated at build time
//   BasePairVersion "1" (base-pair only)
// Trailer: little-endian int64 trailer version, int64 record count.

const (
	typeHeader     = "CoverageType"
	versionHeader  = "FormatVersion"
	fragmentHeader = "Fragment"
	uniqueHeader   = "Unique"
	bpHeader       = "BasePairVersion"

	typeSingleEnd = "single-end"
	typeBasePair  = "base-pair"

	formatVersion   = "2"
	basePairVersion = "1"

	containerTrailerVersion = 1
)

func init() {
	recordiozstd.Init()
}

// offsetArray is the record payload: one chromosome's (and strand's)
// sorted offsets.
type offsetArray struct {
	chrName string
	strand  genome.Strand
	offsets []genome.PosType
}

func marshalOffsetArray(scratch []byte, v interface{}) ([]byte, error) {
	a := v.(*offsetArray)
	need := 1 + 4 + len(a.chrName) + 4 + 4*len(a.offsets)
	t := scratch
	if len(t) < need {
		t = make([]byte, need)
	}
	t = t[:need]
	t[0] = byte(a.strand)
	binary.LittleEndian.PutUint32(t[1:5], uint32(len(a.chrName)))
	pos := 5 + copy(t[5:], a.chrName)
	binary.LittleEndian.PutUint32(t[pos:pos+4], uint32(len(a.offsets)))
	pos += 4
	for _, offset := range a.offsets {
		binary.LittleEndian.PutUint32(t[pos:pos+4], uint32(offset))
		pos += 4
	}
	return t, nil
}

func unmarshalOffsetArray(in []byte) (interface{}, error) {
	if len(in) < 9 {
		return nil, fmt.Errorf("coverage: truncated offset array record (%d bytes)", len(in))
	}
	a := &offsetArray{strand: genome.Strand(in[0])}
	nameLen := int(binary.LittleEndian.Uint32(in[1:5]))
	pos := 5 + nameLen
	if len(in) < pos+4 {
		return nil, fmt.Errorf("coverage: truncated offset array record (%d bytes)", len(in))
	}
	a.chrName = string(in[5:pos])
	count := int(binary.LittleEndian.Uint32(in[pos : pos+4]))
	pos += 4
	if len(in) != pos+4*count {
		return nil, fmt.Errorf("coverage: offset array record length mismatch: %d offsets in %d bytes", count, len(in))
	}
	a.offsets = make([]genome.PosType, count)
	for i := range a.offsets {
		a.offsets[i] = genome.PosType(binary.LittleEndian.Uint32(in[pos : pos+4]))
		pos += 4
	}
	return a, nil
}

func containerTrailer(numRecords int) []byte {
	var buffer bytes.Buffer
	if err := binary.Write(&buffer, binary.LittleEndian, int64(containerTrailerVersion)); err != nil {
		panic("couldn't write trailer version")
	}
	if err := binary.Write(&buffer, binary.LittleEndian, int64(numRecords)); err != nil {
		panic("couldn't write record count to trailer")
	}
	return buffer.Bytes()
}

func parseContainerTrailer(trailer []byte) (int64, error) {
	r := bytes.NewReader(trailer)
	var version, numRecords int64
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, err
	}
	if version != containerTrailerVersion {
		return 0, fmt.Errorf("unrecognized trailer version: got %d, want %d", version, containerTrailerVersion)
	}
	if err := binary.Read(r, binary.LittleEndian, &numRecords); err != nil {
		return 0, err
	}
	return numRecords, nil
}

func newContainerWriter(w io.Writer) recordio.Writer {
	return recordio.NewWriter(w, recordio.WriterOpts{
		Marshal:      marshalOffsetArray,
		Transformers: []string{recordiozstd.Name},
	})
}

// WriteSingleEnd writes c to w in the binary coverage container format.
// One record is emitted per (chromosome, strand) pair of c's query,
// empty arrays included, so a strict reload over the same query always
// succeeds.
func WriteSingleEnd(c *SingleEnd, w io.Writer) error {
	rw := newContainerWriter(w)
	rw.AddHeader(typeHeader, typeSingleEnd)
	rw.AddHeader(versionHeader, formatVersion)
	rw.AddHeader(fragmentHeader, strconv.Itoa(c.detectedFragment))
	rw.AddHeader(uniqueHeader, boolMark(c.tags.unique))
	rw.AddHeader(recordio.KeyTrailer, true)
	n := 0
	for _, chrom := range c.query.Chromosomes() {
		for _, strand := range []genome.Strand{genome.StrandPlus, genome.StrandMinus} {
			rw.Append(&offsetArray{
				chrName: chrom.Name,
				strand:  strand,
				offsets: c.tags.Offsets(chrom.Name, strand),
			})
			n++
		}
	}
	rw.SetTrailer(containerTrailer(n))
	return rw.Finish()
}

// WriteBasePair writes c to w in the binary coverage container format.
func WriteBasePair(c *BasePair, w io.Writer) error {
	rw := newContainerWriter(w)
	rw.AddHeader(typeHeader, typeBasePair)
	rw.AddHeader(versionHeader, formatVersion)
	rw.AddHeader(bpHeader, basePairVersion)
	rw.AddHeader(uniqueHeader, boolMark(c.tags.unique))
	rw.AddHeader(recordio.KeyTrailer, true)
	n := 0
	for _, chrom := range c.query.Chromosomes() {
		rw.Append(&offsetArray{
			chrName: chrom.Name,
			strand:  genome.StrandNone,
			offsets: c.tags.Offsets(chrom.Name, genome.StrandNone),
		})
		n++
	}
	rw.SetTrailer(containerTrailer(n))
	return rw.Finish()
}

func boolMark(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// containerScan reads every offset array record plus the headers of a
// coverage container, after validating type and version markers.
func containerScan(rs io.ReadSeeker, path, wantType string) (headers map[string]string, arrays []*offsetArray, err error) {
	scanner := recordio.NewScanner(rs, recordio.ScannerOpts{
		Unmarshal: unmarshalOffsetArray,
	})
	headers = make(map[string]string)
	for _, kv := range scanner.Header() {
		if s, ok := kv.Value.(string); ok {
			headers[kv.Key] = s
		}
	}
	if got := headers[typeHeader]; got != wantType {
		return nil, nil, errors.E(fmt.Sprintf("%s: coverage type mismatch: got %q, want %q", path, got, wantType))
	}
	if got := headers[versionHeader]; got != formatVersion {
		return nil, nil, errors.E(fmt.Sprintf("%s: format version mismatch: got %q, want %q", path, got, formatVersion))
	}
	var wantRecords int64 = -1
	if trailer := scanner.Trailer(); len(trailer) != 0 {
		if wantRecords, err = parseContainerTrailer(trailer); err != nil {
			return nil, nil, errors.E(err, path)
		}
	}
	for scanner.Scan() {
		arrays = append(arrays, scanner.Get().(*offsetArray))
	}
	if err = scanner.Err(); err != nil {
		return nil, nil, errors.E(err, path)
	}
	if wantRecords >= 0 && wantRecords != int64(len(arrays)) {
		return nil, nil, errors.E(fmt.Sprintf("%s: truncated container: %d of %d offset arrays", path, len(arrays), wantRecords))
	}
	return headers, arrays, nil
}

// assembleTags builds a Tags container from loaded arrays, restricted to
// the chromosomes of q.  Arrays for chromosomes outside q are ignored;
// chromosomes of q absent from the file either fail the load or come
// back empty, depending on failOnMissingChromosomes.
func assembleTags(q genome.Query, stranded bool, unique bool, arrays []*offsetArray, path string, failOnMissingChromosomes bool) (*Tags, error) {
	byKey := make(map[tagsKey]*offsetArray, len(arrays))
	for _, a := range arrays {
		byKey[tagsKey{chrName: a.chrName, strand: a.strand}] = a
	}
	tags := &Tags{
		stranded: stranded,
		unique:   unique,
		offsets:  make(map[tagsKey][]genome.PosType),
		chroms:   make(map[string]genome.Chromosome),
	}
	strands := []genome.Strand{genome.StrandNone}
	if stranded {
		strands = []genome.Strand{genome.StrandPlus, genome.StrandMinus}
	}
	for _, chrom := range q.Chromosomes() {
		for _, strand := range strands {
			key := tagsKey{chrName: chrom.Name, strand: strand}
			a, found := byKey[key]
			if !found {
				if failOnMissingChromosomes {
					return nil, errors.E(fmt.Sprintf("%s: no offset data for chromosome %s strand %s", path, chrom.Name, strand))
				}
				continue
			}
			if len(a.offsets) == 0 {
				continue
			}
			for i := 1; i < len(a.offsets); i++ {
				if a.offsets[i] < a.offsets[i-1] {
					return nil, errors.E(fmt.Sprintf("%s: unsorted offsets for chromosome %s strand %s", path, chrom.Name, strand))
				}
			}
			tags.offsets[key] = a.offsets
			tags.chroms[chrom.Name] = chrom
		}
	}
	return tags, nil
}

// ReadSingleEnd loads a single-end coverage container.  Loading a
// base-pair container (or any other format) fails loudly; a chromosome
// of q missing from the file is an error unless failOnMissingChromosomes
// is false, in which case it is treated as empty.
func ReadSingleEnd(rs io.ReadSeeker, path string, q genome.Query, failOnMissingChromosomes bool) (*SingleEnd, error) {
	headers, arrays, err := containerScan(rs, path, typeSingleEnd)
	if err != nil {
		return nil, err
	}
	fragment, err := strconv.Atoi(headers[fragmentHeader])
	if err != nil || fragment < 0 || fragment > MaxFragment {
		return nil, errors.E(fmt.Sprintf("%s: bad detected fragment marker %q", path, headers[fragmentHeader]))
	}
	tags, err := assembleTags(q, true, headers[uniqueHeader] == "1", arrays, path, failOnMissingChromosomes)
	if err != nil {
		return nil, err
	}
	return &SingleEnd{
		query:            q,
		tags:             tags,
		detectedFragment: fragment,
		fragment:         fragment,
	}, nil
}

// ReadBasePair loads a base-pair coverage container, with the same
// marker and missing-chromosome semantics as ReadSingleEnd.
func ReadBasePair(rs io.ReadSeeker, path string, q genome.Query, failOnMissingChromosomes bool) (*BasePair, error) {
	headers, arrays, err := containerScan(rs, path, typeBasePair)
	if err != nil {
		return nil, err
	}
	if got := headers[bpHeader]; got != basePairVersion {
		return nil, errors.E(fmt.Sprintf("%s: base-pair version mismatch: got %q, want %q", path, got, basePairVersion))
	}
	tags, err := assembleTags(q, false, headers[uniqueHeader] == "1", arrays, path, failOnMissingChromosomes)
	if err != nil {
		return nil, err
	}
	return &BasePair{query: q, tags: tags}, nil
}

// WriteSingleEndToPath writes c to path via base/file.
func WriteSingleEndToPath(c *SingleEnd, path string) (err error) {
	ctx := vcontext.Background()
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return errors.E(err, "couldn't create coverage file:", path)
	}
	defer func() {
		if cerr := out.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteSingleEnd(c, out.Writer(ctx))
}

// ReadSingleEndFromPath loads a single-end coverage container from path.
func ReadSingleEndFromPath(path string, q genome.Query, failOnMissingChromosomes bool) (c *SingleEnd, err error) {
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
	return ReadSingleEnd(in.Reader(ctx), path, q, failOnMissingChromosomes)
}

// WriteBasePairToPath writes c to path via base/file.
func WriteBasePairToPath(c *BasePair, path string) (err error) {
	ctx := vcontext.Background()
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return errors.E(err, "couldn't create coverage file:", path)
	}
	defer func() {
		if cerr := out.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteBasePair(c, out.Writer(ctx))
}

// ReadBasePairFromPath loads a base-pair coverage container from path.
func ReadBasePairFromPath(path string, q genome.Query, failOnMissingChromosomes bool) (c *BasePair, err error) {
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
	return ReadBasePair(in.Reader(ctx), path, q, failOnMissingChromosomes)
}
