package analyze

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/genomeforge/genomeforge/internal/genome"
	"github.com/genomeforge/genomeforge/internal/refdb"
)

// ErrDatabaseNotLoaded is returned when analysis is attempted before any
// reference snapshot has been published. It is distinct from a variant
// simply having no matches.
var ErrDatabaseNotLoaded = errors.New("reference database not loaded")

// Lookup answers exact rsid probes against the three reference tables.
// *refdb.Snapshot implements it.
type Lookup interface {
	Clinical(rsid string) []refdb.ClinicalRecord
	Pharmaco(rsid string) []refdb.PharmacoRecord
	Trait(rsid string) []refdb.TraitRecord
}

// Collector receives findings in input order plus the final run counters.
// *report.Builder implements it.
type Collector interface {
	Add(f Finding)
	SetCounts(total, analyzed, skipped int)
}

// Analyzer matches variants against a reference snapshot.
type Analyzer struct {
	db      Lookup
	workers int
	logger  *zap.Logger
}

// NewAnalyzer creates an analyzer over the given snapshot. A nil snapshot
// yields an analyzer whose AnalyzeAll reports ErrDatabaseNotLoaded.
func NewAnalyzer(snap *refdb.Snapshot) *Analyzer {
	a := &Analyzer{logger: zap.NewNop()}
	// Store only a non-nil snapshot; assigning a nil *Snapshot directly
	// would leave db non-nil and defeat the not-loaded guard.
	if snap != nil {
		a.db = snap
	}
	return a
}

// SetLogger sets the logger for warning and info messages.
func (a *Analyzer) SetLogger(l *zap.Logger) {
	a.logger = l
}

// SetWorkers configures the matching pool size. Zero means NumCPU.
func (a *Analyzer) SetWorkers(n int) {
	a.workers = n
}

// Match probes all three reference tables for a single variant and
// returns every hit. A variant without an rsid, or whose genotype was
// never called, cannot be matched and yields nil. Results within one
// category preserve reference-record order; nothing is deduplicated.
func (a *Analyzer) Match(v *genome.Variant) []Finding {
	if a.db == nil || !v.HasRSID() || v.IsNoCall() {
		return nil
	}

	var findings []Finding

	for _, r := range a.db.Clinical(v.RSID) {
		findings = append(findings, Finding{
			Kind:         KindClinical,
			RSID:         v.RSID,
			Genotype:     v.Genotype,
			Gene:         r.Gene,
			Chromosome:   v.Chromosome,
			Position:     v.Position,
			Condition:    r.Condition,
			Significance: r.Significance,
		})
	}

	for _, r := range a.db.Pharmaco(v.RSID) {
		findings = append(findings, Finding{
			Kind:           KindDrug,
			RSID:           v.RSID,
			Genotype:       v.Genotype,
			Gene:           r.Gene,
			Drug:           r.Drug,
			Response:       r.Response,
			Recommendation: r.Recommendation,
		})
	}

	for _, r := range a.db.Trait(v.RSID) {
		findings = append(findings, Finding{
			Kind:       KindTrait,
			RSID:       v.RSID,
			Genotype:   v.Genotype,
			Trait:      r.Trait,
			Category:   r.Category,
			Effect:     r.Effect,
			Confidence: r.Confidence,
		})
	}

	return findings
}

// AnalyzeAll matches every variant from the parser and feeds findings to
// the collector in input order. Matching runs on a worker pool; a
// structural parse failure aborts the run and nothing partial reaches the
// collector counters.
func (a *Analyzer) AnalyzeAll(parser genome.VariantParser, collector Collector) error {
	if a.db == nil {
		return ErrDatabaseNotLoaded
	}

	items := make(chan WorkItem, 2*runtime.NumCPU())
	var parseErr error

	go func() {
		defer close(items)
		seq := 0
		for {
			v, err := parser.Next()
			if err != nil {
				parseErr = fmt.Errorf("read variant: %w", err)
				return
			}
			if v == nil {
				return
			}
			items <- WorkItem{Seq: seq, Variant: v}
			seq++
		}
	}()

	results := a.ParallelMatch(items, a.workers)

	total := 0
	analyzed := 0
	if err := OrderedCollect(results, func(r WorkResult) error {
		total++
		if len(r.Findings) > 0 {
			analyzed++
		}
		for _, f := range r.Findings {
			collector.Add(f)
		}
		return nil
	}); err != nil {
		return err
	}

	if parseErr != nil {
		return parseErr
	}

	if total == 0 {
		a.logger.Info("0 variants processed")
	}

	collector.SetCounts(total, analyzed, parser.Skipped())
	return nil
}
