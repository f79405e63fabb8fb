package genome

import "fmt"

// Query is a restrictable view over a Genome.  A zero restriction exposes
// every chromosome; Restrict narrows the view to a subset while keeping
// build order.  Queries are small values and safe to copy.
type Query struct {
	genome *Genome
	names  []string // nil means unrestricted
}

// NewQuery returns an unrestricted view of g.
func NewQuery(g *Genome) Query {
	return Query{genome: g}
}

// Genome returns the underlying genome.
func (q Query) Genome() *Genome { return q.genome }

// Build returns the build identifier of the underlying genome.
func (q Query) Build() string { return q.genome.build }

// Restrict returns a copy of q narrowed to the named chromosomes.  The
// result keeps the genome's chromosome order regardless of the argument
// order.  Unknown names are an error.
func (q Query) Restrict(names ...string) (Query, error) {
	allowed := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := q.genome.byName[name]; !ok {
			return Query{}, fmt.Errorf("genome.Restrict: chromosome %s not in build %s", name, q.genome.build)
		}
		allowed[name] = true
	}
	kept := make([]string, 0, len(names))
	for _, chrom := range q.genome.chroms {
		if allowed[chrom.Name] {
			kept = append(kept, chrom.Name)
		}
	}
	return Query{genome: q.genome, names: kept}, nil
}

// Chromosomes returns the visible chromosomes in build order.
func (q Query) Chromosomes() []Chromosome {
	if q.names == nil {
		return q.genome.Chromosomes()
	}
	chroms := make([]Chromosome, 0, len(q.names))
	for _, name := range q.names {
		chrom, _ := q.genome.Chromosome(name)
		chroms = append(chroms, chrom)
	}
	return chroms
}

// Chromosome looks up a visible chromosome by name.  A chromosome that
// exists in the genome but is excluded by the restriction is reported as
// absent.
func (q Query) Chromosome(name string) (Chromosome, bool) {
	chrom, ok := q.genome.Chromosome(name)
	if !ok {
		return Chromosome{}, false
	}
	if q.names != nil {
		found := false
		for _, n := range q.names {
			if n == name {
				found = true
				break
			}
		}
		if !found {
			return Chromosome{}, false
		}
	}
	return chrom, true
}
