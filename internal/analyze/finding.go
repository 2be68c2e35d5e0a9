// Package analyze joins parsed variants against the reference database
// snapshot and emits findings.
package analyze

// Kind discriminates the finding categories.
type Kind string

// Finding categories, one per reference table.
const (
	KindClinical Kind = "clinical"
	KindDrug     Kind = "drug"
	KindTrait    Kind = "trait"
)

// Finding is one variant matched against one reference record, flattened
// into a reporting-friendly shape. Fields beyond the common set are
// populated according to Kind.
type Finding struct {
	Kind     Kind
	RSID     string
	Genotype string
	Gene     string

	// Clinical: coordinates carried over from the matched variant.
	Chromosome   string
	Position     int64
	Condition    string
	Significance string

	// Drug response
	Drug           string
	Response       string
	Recommendation string

	// Trait association
	Trait      string
	Category   string
	Effect     string
	Confidence float64
}
