// Package genome provides the chromosome addressing scheme shared by the
// coverage and shuffle packages: genome builds with ordered chromosome
// lists, restrictable queries over them, and half-open stranded locations.
package genome

import (
	"fmt"
	"math"
	"sort"
)

// PosType is the coordinate type used throughout this repository.  int32
// is wide enough for any chromosome we care about (the largest human
// chromosome is ~249Mbp), and it halves the memory footprint of the
// offset stores relative to int64.
type PosType int32

// PosTypeMax is the maximum value representable by a PosType.
const PosTypeMax = math.MaxInt32

// Strand marks which strand of the double helix a location refers to.
// StrandNone means the location is strand-agnostic.
type Strand byte

const (
	// StrandNone marks an unstranded location.
	StrandNone Strand = 0
	// StrandPlus is the forward (Watson) strand.
	StrandPlus Strand = '+'
	// StrandMinus is the reverse (Crick) strand.
	StrandMinus Strand = '-'
)

// ParseStrand converts "+", "-" or "." to a Strand.
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return StrandPlus, nil
	case "-":
		return StrandMinus, nil
	case ".", "":
		return StrandNone, nil
	}
	return StrandNone, fmt.Errorf("genome.ParseStrand: unrecognized strand %q", s)
}

func (s Strand) String() string {
	switch s {
	case StrandPlus:
		return "+"
	case StrandMinus:
		return "-"
	}
	return "."
}

// Chromosome identifies one chromosome of one genome build.  It is a
// small value type; copies are cheap and comparison with == is valid.
type Chromosome struct {
	Build  string
	Name   string
	Length PosType
}

// Less defines the total order by (Build, Name) used wherever chromosomes
// act as map/sort keys.
func (c Chromosome) Less(other Chromosome) bool {
	if c.Build != other.Build {
		return c.Build < other.Build
	}
	return c.Name < other.Name
}

func (c Chromosome) String() string {
	return c.Build + "/" + c.Name
}

// Genome is an ordered, immutable list of chromosomes for one build.
type Genome struct {
	build  string
	chroms []Chromosome
	byName map[string]int
}

// New creates a Genome from parallel name/length slices, preserving the
// given order.
func New(build string, names []string, lengths []PosType) (*Genome, error) {
	if len(names) != len(lengths) {
		return nil, fmt.Errorf("genome.New: %d names but %d lengths", len(names), len(lengths))
	}
	g := &Genome{
		build:  build,
		chroms: make([]Chromosome, 0, len(names)),
		byName: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if lengths[i] <= 0 {
			return nil, fmt.Errorf("genome.New: chromosome %s has non-positive length %d", name, lengths[i])
		}
		if _, dup := g.byName[name]; dup {
			return nil, fmt.Errorf("genome.New: duplicate chromosome %s", name)
		}
		g.byName[name] = i
		g.chroms = append(g.chroms, Chromosome{Build: build, Name: name, Length: lengths[i]})
	}
	return g, nil
}

// Build returns the build identifier, e.g. "hg38".
func (g *Genome) Build() string { return g.build }

// Len returns the number of chromosomes.
func (g *Genome) Len() int { return len(g.chroms) }

// Chromosomes returns all chromosomes in build order.  Callers must not
// modify the returned slice.
func (g *Genome) Chromosomes() []Chromosome { return g.chroms }

// Chromosome looks a chromosome up by name.
func (g *Genome) Chromosome(name string) (Chromosome, bool) {
	i, ok := g.byName[name]
	if !ok {
		return Chromosome{}, false
	}
	return g.chroms[i], true
}

// Location is a half-open interval [Start, End) on one chromosome,
// optionally stranded.  Coordinates are zero-based.
type Location struct {
	Chromosome Chromosome
	Start, End PosType
	Strand     Strand
}

// Length returns End - Start.
func (l Location) Length() PosType { return l.End - l.Start }

// Valid reports whether the location is a non-empty interval lying fully
// inside its chromosome.
func (l Location) Valid() bool {
	return l.Start >= 0 && l.Start < l.End && l.End <= l.Chromosome.Length
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d-%d(%s)", l.Chromosome.Name, l.Start, l.End, l.Strand)
}

// FivePrime returns the 5'-end offset of the location: Start on the plus
// strand, End-1 on the minus strand.  Unstranded locations are treated as
// plus-strand.
func (l Location) FivePrime() PosType {
	if l.Strand == StrandMinus {
		return l.End - 1
	}
	return l.Start
}

// SortLocations orders locations by (chromosome, start, end).  Strand is
// deliberately not part of the order.
func SortLocations(locs []Location) {
	sort.Slice(locs, func(i, j int) bool {
		li, lj := locs[i], locs[j]
		if li.Chromosome != lj.Chromosome {
			return li.Chromosome.Less(lj.Chromosome)
		}
		if li.Start != lj.Start {
			return li.Start < lj.Start
		}
		return li.End < lj.End
	})
}
