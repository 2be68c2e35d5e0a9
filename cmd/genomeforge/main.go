// Package main provides the genomeforge command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var logger = zap.NewNop()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:     "genomeforge",
		Short:   "Analyze personal genome files against curated reference databases",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Long: `genomeforge parses personal genotype files (VCF, 23andMe, AncestryDNA,
plain or gzipped) and matches the variants against curated clinical,
pharmacogenomic and trait-association databases. All analysis runs
locally; no data leaves the machine.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig()
			return initLogger(verbose)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.genomeforge.yaml if present.
func initConfig() {
	viper.SetConfigName(".genomeforge")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // missing config file is fine
}

// initLogger builds a console logger writing to stderr so report output
// on stdout stays clean.
func initLogger(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger = l
	return nil
}
