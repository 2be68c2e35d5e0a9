// Package report assembles matcher findings into the final analysis
// report. Assembly is pure aggregation: no I/O, deterministic for a given
// finding sequence.
package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/genomeforge/genomeforge/internal/analyze"
)

// DefaultActionableSignificance is the high-priority clinical significance
// set that marks a finding actionable.
var DefaultActionableSignificance = []string{"pathogenic", "likely_pathogenic"}

// Summary holds the aggregate counts for one analysis run.
type Summary struct {
	TotalVariants      int `json:"total_variants"`
	AnalyzedVariants   int `json:"analyzed_variants"`
	SkippedLines       int `json:"skipped_lines"`
	ClinicalCount      int `json:"clinical_count"`
	DrugCount          int `json:"drug_count"`
	TraitCount         int `json:"trait_count"`
	ActionableFindings int `json:"actionable_findings"`
}

// AnalysisReport is the final output of one analysis run: the three
// finding sequences in input order plus the summary.
type AnalysisReport struct {
	ID                string            `json:"id"`
	GeneratedAt       time.Time         `json:"generated_at"`
	ClinicalFindings  []analyze.Finding `json:"clinical_findings"`
	DrugResponses     []analyze.Finding `json:"drug_responses"`
	TraitAssociations []analyze.Finding `json:"trait_associations"`
	Summary           Summary           `json:"summary"`
}

// Builder accumulates findings in arrival order and produces the report.
// It implements analyze.Collector.
type Builder struct {
	actionable map[string]bool
	clinical   []analyze.Finding
	drug       []analyze.Finding
	trait      []analyze.Finding
	summary    Summary
}

// NewBuilder creates a report builder with the default actionable
// significance set.
func NewBuilder() *Builder {
	b := &Builder{}
	b.SetActionable(DefaultActionableSignificance...)
	return b
}

// SetActionable replaces the clinical significance tiers counted as
// actionable. Matching is case-insensitive.
func (b *Builder) SetActionable(significances ...string) {
	b.actionable = make(map[string]bool, len(significances))
	for _, s := range significances {
		b.actionable[strings.ToLower(s)] = true
	}
}

// Add appends one finding to its category sequence and updates counters.
func (b *Builder) Add(f analyze.Finding) {
	switch f.Kind {
	case analyze.KindClinical:
		b.clinical = append(b.clinical, f)
		b.summary.ClinicalCount++
		if b.actionable[strings.ToLower(f.Significance)] {
			b.summary.ActionableFindings++
		}
	case analyze.KindDrug:
		b.drug = append(b.drug, f)
		b.summary.DrugCount++
		if f.Recommendation != "" {
			b.summary.ActionableFindings++
		}
	case analyze.KindTrait:
		b.trait = append(b.trait, f)
		b.summary.TraitCount++
	}
}

// SetCounts records the run-level variant and skip counters.
func (b *Builder) SetCounts(total, analyzed, skipped int) {
	b.summary.TotalVariants = total
	b.summary.AnalyzedVariants = analyzed
	b.summary.SkippedLines = skipped
}

// Build produces the final report with a fresh report ID.
func (b *Builder) Build() *AnalysisReport {
	return &AnalysisReport{
		ID:                uuid.New().String(),
		GeneratedAt:       time.Now().UTC(),
		ClinicalFindings:  b.clinical,
		DrugResponses:     b.drug,
		TraitAssociations: b.trait,
		Summary:           b.summary,
	}
}
