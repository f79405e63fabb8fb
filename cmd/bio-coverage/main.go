package main

// See doc.go for documentation
import (
	"flag"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/JetBrains-Research/bioinf-commons-sub000/coverage"
	"github.com/JetBrains-Research/bioinf-commons-sub000/genome"
)

var (
	build      = flag.String("build", "", "Genome build name, e.g. hg38")
	chromSizes = flag.String("chrom-sizes", "", "UCSC chrom.sizes file for the build")
	tsvPath    = flag.String("tsv", "", "Two-column (chromosome, offset) TSV input")
	outPath    = flag.String("out", "", "Output coverage container path")
	oneBased   = flag.Bool("one-based", false, "Interpret TSV offsets as one-based")
	hasHeader  = flag.Bool("header", false, "TSV input has a header row")
	unique     = flag.Bool("unique", false, "De-duplicate offsets")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if *build == "" || *chromSizes == "" || *tsvPath == "" || *outPath == "" {
		log.Fatalf("bio-coverage: -build, -chrom-sizes, -tsv and -out are all required")
	}
	g, err := genome.ReadChromSizesFromPath(*build, *chromSizes)
	if err != nil {
		log.Fatalf("bio-coverage: %v", err)
	}
	q := genome.NewQuery(g)
	cov, err := coverage.ReadBasePairTSVFromPath(*tsvPath, q, coverage.TSVOpts{
		Header:   *hasHeader,
		OneBased: *oneBased,
		Unique:   *unique,
	})
	if err != nil {
		log.Fatalf("bio-coverage: %v", err)
	}
	if err := coverage.WriteBasePairToPath(cov, *outPath); err != nil {
		log.Fatalf("bio-coverage: %v", err)
	}
	for _, chrom := range cov.Tags().Chromosomes() {
		log.Printf("%s\t%d", chrom.Name, len(cov.Tags().Offsets(chrom.Name, genome.StrandNone)))
	}
	log.Printf("wrote %s: %d offset(s) on %d chromosome(s)",
		*outPath, cov.Tags().Len(), len(cov.Tags().Chromosomes()))
}
