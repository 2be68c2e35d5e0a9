// Package genome defines the normalized variant model shared by all
// genotype file parsers.
package genome

import "errors"

// NoCall is the canonical genotype token for positions the genotyping
// platform could not determine. Parsers normalize source-specific no-call
// tokens ("--", "0") to this value instead of dropping the record, so
// total-variant counts stay accurate.
const NoCall = "--"

// ErrPositionRequired is returned by New when a chromosome is given
// without a position. A coordinate is meaningless without both.
var ErrPositionRequired = errors.New("genome: variant with chromosome requires a position")

// ErrNegativePosition is returned by New for a negative coordinate.
// Positions are 1-based; 0 marks an absent coordinate.
var ErrNegativePosition = errors.New("genome: variant position must not be negative")

// Variant represents a single genotype observation normalized from any
// supported input format. Values are immutable after construction.
type Variant struct {
	RSID       string // reference SNP identifier; empty for novel/unnamed positions
	Chromosome string // e.g. "1".."22", "X", "Y", "MT"; empty if unknown
	Position   int64  // 1-based genomic coordinate; 0 if unknown
	Genotype   string // called allele pair (e.g. "AG") or raw allele string
}

// New constructs a Variant, enforcing that a chromosome is never recorded
// without its position.
func New(rsid, chromosome string, position int64, genotype string) (*Variant, error) {
	if position < 0 {
		return nil, ErrNegativePosition
	}
	if chromosome != "" && position == 0 {
		return nil, ErrPositionRequired
	}
	return &Variant{
		RSID:       rsid,
		Chromosome: chromosome,
		Position:   position,
		Genotype:   genotype,
	}, nil
}

// HasRSID returns true if the variant carries an rsid and can be matched
// against the reference database.
func (v *Variant) HasRSID() bool {
	return v.RSID != ""
}

// IsNoCall returns true if the genotype could not be determined.
func (v *Variant) IsNoCall() bool {
	return v.Genotype == NoCall || v.Genotype == ""
}

// NormalizeChrom returns a chromosome name without a "chr" prefix, so
// "chr1"-style and bare names match the same reference records. Parsers
// apply it before constructing a Variant.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}
