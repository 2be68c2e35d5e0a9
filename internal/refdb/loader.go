package refdb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Reference table file names expected in a database directory.
const (
	ClinVarFile  = "clinvar.tsv"
	PharmGKBFile = "pharmgkb.tsv"
	GWASFile     = "gwas.tsv"
)

// LoadStats counts parsed and skipped rows per table.
type LoadStats struct {
	ClinicalRecords int
	PharmacoRecords int
	TraitRecords    int
	SkippedRows     int
}

// LoadDir parses the three reference TSV tables from a directory into a
// fresh snapshot. Malformed rows are skipped and counted; a missing or
// headerless file is an error.
func LoadDir(dir string) (*Snapshot, *LoadStats, error) {
	stats := &LoadStats{}

	clinical, skipped, err := LoadClinical(filepath.Join(dir, ClinVarFile))
	if err != nil {
		return nil, nil, err
	}
	stats.ClinicalRecords = len(clinical)
	stats.SkippedRows += skipped

	pharmaco, skipped, err := LoadPharmaco(filepath.Join(dir, PharmGKBFile))
	if err != nil {
		return nil, nil, err
	}
	stats.PharmacoRecords = len(pharmaco)
	stats.SkippedRows += skipped

	traits, skipped, err := LoadTraits(filepath.Join(dir, GWASFile))
	if err != nil {
		return nil, nil, err
	}
	stats.TraitRecords = len(traits)
	stats.SkippedRows += skipped

	return NewSnapshot(clinical, pharmaco, traits), stats, nil
}

// LoadClinical loads a clinical significance TSV. The header must name
// "rsid", "condition" and "significance" columns; "gene" is optional.
func LoadClinical(path string) ([]ClinicalRecord, int, error) {
	var records []ClinicalRecord
	skipped, err := loadTable(path, []string{"rsid", "condition", "significance"}, func(idx map[string]int, fields []string) bool {
		r := ClinicalRecord{
			RSID:         field(fields, idx, "rsid"),
			Gene:         field(fields, idx, "gene"),
			Condition:    field(fields, idx, "condition"),
			Significance: field(fields, idx, "significance"),
		}
		if r.RSID == "" || r.Condition == "" {
			return false
		}
		records = append(records, r)
		return true
	})
	return records, skipped, err
}

// LoadPharmaco loads a pharmacogenomic response TSV with "rsid", "gene",
// "drug", "response" and optional "recommendation" columns.
func LoadPharmaco(path string) ([]PharmacoRecord, int, error) {
	var records []PharmacoRecord
	skipped, err := loadTable(path, []string{"rsid", "gene", "drug", "response"}, func(idx map[string]int, fields []string) bool {
		r := PharmacoRecord{
			RSID:           field(fields, idx, "rsid"),
			Gene:           field(fields, idx, "gene"),
			Drug:           field(fields, idx, "drug"),
			Response:       field(fields, idx, "response"),
			Recommendation: field(fields, idx, "recommendation"),
		}
		if r.RSID == "" || r.Drug == "" {
			return false
		}
		records = append(records, r)
		return true
	})
	return records, skipped, err
}

// LoadTraits loads a trait association TSV with "rsid", "trait",
// "category", "effect" and "confidence" columns. Rows whose confidence
// falls outside [0,1] are skipped.
func LoadTraits(path string) ([]TraitRecord, int, error) {
	var records []TraitRecord
	skipped, err := loadTable(path, []string{"rsid", "trait", "confidence"}, func(idx map[string]int, fields []string) bool {
		confidence, err := strconv.ParseFloat(field(fields, idx, "confidence"), 64)
		if err != nil || confidence < 0 || confidence > 1 {
			return false
		}
		r := TraitRecord{
			RSID:       field(fields, idx, "rsid"),
			Trait:      field(fields, idx, "trait"),
			Category:   field(fields, idx, "category"),
			Effect:     field(fields, idx, "effect"),
			Confidence: confidence,
		}
		if r.RSID == "" || r.Trait == "" {
			return false
		}
		records = append(records, r)
		return true
	})
	return records, skipped, err
}

// loadTable reads a headered TSV, resolving column indices from the
// header line. The row callback returns false for rows to skip.
func loadTable(path string, required []string, row func(idx map[string]int, fields []string) bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open reference table: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return 0, fmt.Errorf("reference table %s: empty file", filepath.Base(path))
	}

	idx := make(map[string]int)
	for i, col := range strings.Split(scanner.Text(), "\t") {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return 0, fmt.Errorf("reference table %s: missing %q column", filepath.Base(path), col)
		}
	}

	skipped := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !row(idx, strings.Split(line, "\t")) {
			skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading reference table %s: %w", filepath.Base(path), err)
	}

	return skipped, nil
}

// field returns the named column's trimmed value, or "" when absent.
func field(fields []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
