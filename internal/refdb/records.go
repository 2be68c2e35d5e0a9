// Package refdb holds the curated reference databases (clinical
// significance, pharmacogenomic response, trait associations) and answers
// exact rsid lookups against an immutable, atomically published snapshot.
package refdb

import "time"

// ClinicalRecord is one ClinVar-style entry linking an rsid to a condition.
type ClinicalRecord struct {
	RSID         string
	Gene         string // optional
	Condition    string
	Significance string // e.g. "pathogenic", "benign"
}

// PharmacoRecord is one PharmGKB-style entry describing drug response.
type PharmacoRecord struct {
	RSID           string
	Gene           string
	Drug           string
	Response       string
	Recommendation string
}

// TraitRecord is one GWAS-catalog-style trait association entry.
type TraitRecord struct {
	RSID       string
	Trait      string
	Category   string
	Effect     string
	Confidence float64 // in [0,1], validated at load
}

// TableStatus describes one loaded reference table.
type TableStatus struct {
	Loaded      bool
	RecordCount int
	LastUpdated time.Time
}

// Status reports the state of all three reference tables, keyed by their
// source database names.
type Status struct {
	ClinVar  TableStatus
	PharmGKB TableStatus
	GWAS     TableStatus
}
