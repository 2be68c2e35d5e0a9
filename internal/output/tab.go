// Package output provides report rendering for the CLI. Export encoding
// beyond this (PDF, HTML, encryption) belongs to downstream consumers.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/genomeforge/genomeforge/internal/analyze"
	"github.com/genomeforge/genomeforge/internal/report"
)

// TabWriter writes an analysis report in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited report writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Category",
			"RSID",
			"Genotype",
			"Location",
			"Gene",
			"Description",
			"Classification",
			"Detail",
			"Confidence",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// WriteReport writes all findings of a report, category by category, then
// a summary trailer as comment lines.
func (tw *TabWriter) WriteReport(rep *report.AnalysisReport) error {
	for _, f := range rep.ClinicalFindings {
		if err := tw.Write(f); err != nil {
			return err
		}
	}
	for _, f := range rep.DrugResponses {
		if err := tw.Write(f); err != nil {
			return err
		}
	}
	for _, f := range rep.TraitAssociations {
		if err := tw.Write(f); err != nil {
			return err
		}
	}

	s := rep.Summary
	_, err := fmt.Fprintf(tw.w,
		"## report_id=%s total_variants=%d analyzed_variants=%d skipped_lines=%d actionable_findings=%d\n",
		rep.ID, s.TotalVariants, s.AnalyzedVariants, s.SkippedLines, s.ActionableFindings)
	return err
}

// Write writes a single finding row.
func (tw *TabWriter) Write(f analyze.Finding) error {
	location := "-"
	if f.Chromosome != "" {
		location = fmt.Sprintf("%s:%d", f.Chromosome, f.Position)
	}

	gene := f.Gene
	if gene == "" {
		gene = "-"
	}

	var description, classification, detail, confidence string
	switch f.Kind {
	case analyze.KindClinical:
		description = f.Condition
		classification = f.Significance
		detail = "-"
		confidence = "-"
	case analyze.KindDrug:
		description = f.Drug
		classification = f.Response
		detail = f.Recommendation
		if detail == "" {
			detail = "-"
		}
		confidence = "-"
	case analyze.KindTrait:
		description = f.Trait
		classification = f.Category
		detail = f.Effect
		confidence = fmt.Sprintf("%.2f", f.Confidence)
	}

	values := []string{
		string(f.Kind),
		f.RSID,
		f.Genotype,
		location,
		gene,
		description,
		classification,
		detail,
		confidence,
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
