// Package pipeline runs one complete analysis: format detection, parsing,
// reference matching, report assembly. Each run owns its parser and
// findings exclusively; the reference snapshot is the only shared input
// and is immutable.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/genomeforge/genomeforge/internal/analyze"
	"github.com/genomeforge/genomeforge/internal/flatfile"
	"github.com/genomeforge/genomeforge/internal/format"
	"github.com/genomeforge/genomeforge/internal/genome"
	"github.com/genomeforge/genomeforge/internal/refdb"
	"github.com/genomeforge/genomeforge/internal/report"
	"github.com/genomeforge/genomeforge/internal/vcf"
)

// Options configures one analysis run.
type Options struct {
	// Format overrides detection when non-empty.
	Format format.Format
	// Workers sizes the matching pool; 0 means NumCPU.
	Workers int
	// ActionableSignificance overrides the default actionable tier set.
	ActionableSignificance []string
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger
}

// OpenParser detects the file's format (unless forced) and opens the
// matching parser. The caller owns the returned parser and must Close it.
func OpenParser(path string, forced format.Format) (genome.VariantParser, format.Format, error) {
	f := forced
	if f == "" {
		var err error
		f, err = format.Detect(path)
		if err != nil {
			return nil, "", fmt.Errorf("detect format of %s: %w", path, err)
		}
	}

	switch f {
	case format.FormatVCF:
		p, err := vcf.NewParser(path)
		if err != nil {
			return nil, "", err
		}
		return p, f, nil
	case format.Format23AndMe:
		p, err := flatfile.NewParser(path)
		if err != nil {
			return nil, "", err
		}
		return p, f, nil
	default:
		return nil, "", fmt.Errorf("%s: %w", path, format.ErrUnsupportedFormat)
	}
}

// Run executes one analysis of the file at path against the given
// reference snapshot. The parser is closed before returning regardless of
// how the run ends, so an early error never leaks the file handle. A
// structural parse failure discards all prior progress; no partial report
// is returned.
func Run(path string, snapshot *refdb.Snapshot, opts Options) (*report.AnalysisReport, error) {
	if snapshot == nil {
		return nil, analyze.ErrDatabaseNotLoaded
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	parser, detected, err := OpenParser(path, opts.Format)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	logger.Info("analyzing genome file",
		zap.String("path", path),
		zap.String("format", string(detected)))

	analyzer := analyze.NewAnalyzer(snapshot)
	analyzer.SetLogger(logger)
	analyzer.SetWorkers(opts.Workers)

	builder := report.NewBuilder()
	if len(opts.ActionableSignificance) > 0 {
		builder.SetActionable(opts.ActionableSignificance...)
	}

	if err := analyzer.AnalyzeAll(parser, builder); err != nil {
		return nil, err
	}

	if skipped := parser.Skipped(); skipped > 0 {
		logger.Warn("skipped malformed lines",
			zap.String("path", path),
			zap.Int("skipped", skipped))
	}

	rep := builder.Build()
	logger.Info("analysis complete",
		zap.String("report_id", rep.ID),
		zap.Int("total_variants", rep.Summary.TotalVariants),
		zap.Int("analyzed_variants", rep.Summary.AnalyzedVariants),
		zap.Int("actionable_findings", rep.Summary.ActionableFindings))

	return rep, nil
}
