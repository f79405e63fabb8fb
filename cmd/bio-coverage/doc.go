/*Command bio-coverage builds a base-pair coverage container from a
  two-column (chromosome, offset) TSV and a UCSC chrom.sizes file, and
  prints per-chromosome offset counts.  It exists as an end-to-end
  exercise of the read -> build -> serialize path; the coverage packages
  are the real product.

  Usage: bio-coverage -build=hg38 -chrom-sizes=hg38.chrom.sizes \
      -tsv=meth.tsv -out=meth.cov
*/
package main
