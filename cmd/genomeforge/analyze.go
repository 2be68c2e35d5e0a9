package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/genomeforge/genomeforge/internal/format"
	"github.com/genomeforge/genomeforge/internal/output"
	"github.com/genomeforge/genomeforge/internal/pipeline"
	"github.com/genomeforge/genomeforge/internal/refdb"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		inputFormat  string
		outputFile   string
		outputFormat string
		workers      int
	)

	cmd := &cobra.Command{
		Use:   "analyze <genome-file>",
		Short: "Analyze a genome file and write the findings report",
		Example: `  genomeforge analyze genome.vcf
  genomeforge analyze --input-format 23andme genome_raw.txt.gz
  genomeforge analyze -f json -o report.json genome.vcf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers == 0 {
				workers = viper.GetInt("analyze.workers")
			}

			snapshot, err := loadSnapshot()
			if err != nil {
				return err
			}

			rep, err := pipeline.Run(args[0], snapshot, pipeline.Options{
				Format:                 format.Format(inputFormat),
				Workers:                workers,
				ActionableSignificance: viper.GetStringSlice("report.actionable_significance"),
				Logger:                 logger,
			})
			if err != nil {
				return err
			}

			out := os.Stdout
			if outputFile != "" {
				out, err = os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer out.Close()
			}

			switch outputFormat {
			case "tab":
				tw := output.NewTabWriter(out)
				if err := tw.WriteHeader(); err != nil {
					return fmt.Errorf("write report header: %w", err)
				}
				if err := tw.WriteReport(rep); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				return tw.Flush()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			default:
				return fmt.Errorf("unknown output format %q", outputFormat)
			}
		},
	}

	cmd.Flags().StringVar(&inputFormat, "input-format", "", "Input format: vcf, 23andme (auto-detected if not specified)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&outputFormat, "output-format", "f", "tab", "Output format: tab, json")
	cmd.Flags().IntVar(&workers, "workers", 0, "Matching worker count (default: number of CPUs)")

	return cmd
}

// loadSnapshot builds the reference snapshot from the configured source:
// a DuckDB store when database.duckdb is set, the TSV directory otherwise.
func loadSnapshot() (*refdb.Snapshot, error) {
	if dbPath := viper.GetString("database.duckdb"); dbPath != "" {
		store, err := refdb.OpenStore(dbPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadSnapshot()
	}

	dir := viper.GetString("database.dir")
	if dir == "" {
		return nil, fmt.Errorf("no reference database configured: set database.dir or database.duckdb (genomeforge config set database.dir <path>)")
	}

	snap, stats, err := refdb.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if stats.SkippedRows > 0 {
		logger.Warn("skipped malformed reference rows", zap.Int("skipped", stats.SkippedRows))
	}
	return snap, nil
}
