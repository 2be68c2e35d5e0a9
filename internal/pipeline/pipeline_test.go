package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomeforge/genomeforge/internal/analyze"
	"github.com/genomeforge/genomeforge/internal/format"
	"github.com/genomeforge/genomeforge/internal/genome"
	"github.com/genomeforge/genomeforge/internal/refdb"
)

func testSnapshot(t *testing.T) *refdb.Snapshot {
	t.Helper()
	snap, _, err := refdb.LoadDir(filepath.Join("testdata", "db"))
	require.NoError(t, err)
	return snap
}

func TestRun_VCF(t *testing.T) {
	rep, err := Run(filepath.Join("testdata", "genome.vcf"), testSnapshot(t), Options{})
	require.NoError(t, err)

	s := rep.Summary
	assert.Equal(t, 5, s.TotalVariants)
	assert.Equal(t, 3, s.AnalyzedVariants)
	assert.Equal(t, 0, s.SkippedLines)
	assert.Equal(t, 3, s.ClinicalCount)
	assert.Equal(t, 2, s.DrugCount)
	assert.Equal(t, 2, s.TraitCount)
	// rs123 pathogenic, rs123 likely_pathogenic, clopidogrel recommendation
	assert.Equal(t, 3, s.ActionableFindings)

	require.NotEmpty(t, rep.ClinicalFindings)
	first := rep.ClinicalFindings[0]
	assert.Equal(t, "rs123", first.RSID)
	assert.Equal(t, "1", first.Chromosome)
	assert.Equal(t, int64(100), first.Position)
	assert.Equal(t, "AG", first.Genotype)

	assert.NotEmpty(t, rep.ID)
}

func TestRun_FlatFile(t *testing.T) {
	rep, err := Run(filepath.Join("testdata", "genome_raw.txt"), testSnapshot(t), Options{})
	require.NoError(t, err)

	s := rep.Summary
	assert.Equal(t, 4, s.TotalVariants)
	// rs123 and rs456 match; rs789 is a no-call, i4000690 has no records
	assert.Equal(t, 2, s.AnalyzedVariants)
}

func TestRun_Deterministic(t *testing.T) {
	snap := testSnapshot(t)

	first, err := Run(filepath.Join("testdata", "genome.vcf"), snap, Options{Workers: 4})
	require.NoError(t, err)
	second, err := Run(filepath.Join("testdata", "genome.vcf"), snap, Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, first.ClinicalFindings, second.ClinicalFindings)
	assert.Equal(t, first.DrugResponses, second.DrugResponses)
	assert.Equal(t, first.TraitAssociations, second.TraitAssociations)
	assert.Equal(t, first.Summary, second.Summary)
	assert.NotEqual(t, first.ID, second.ID, "each run gets its own report ID")
}

func TestRun_StructuralFailureYieldsNoReport(t *testing.T) {
	rep, err := Run(filepath.Join("testdata", "broken.vcf"), testSnapshot(t), Options{})
	require.Error(t, err)
	assert.Nil(t, rep)

	var parseErr *genome.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestRun_NilSnapshot(t *testing.T) {
	_, err := Run(filepath.Join("testdata", "genome.vcf"), nil, Options{})
	assert.ErrorIs(t, err, analyze.ErrDatabaseNotLoaded)
}

func TestRun_CustomActionableSet(t *testing.T) {
	rep, err := Run(filepath.Join("testdata", "genome.vcf"), testSnapshot(t), Options{
		ActionableSignificance: []string{"benign"},
	})
	require.NoError(t, err)

	// Only the rs456 benign finding plus the clopidogrel recommendation
	assert.Equal(t, 2, rep.Summary.ActionableFindings)
}

func TestOpenParser_ForcedFormat(t *testing.T) {
	// The flat file fixture would not survive VCF header validation, so a
	// forced format must actually be honored.
	_, _, err := OpenParser(filepath.Join("testdata", "genome_raw.txt"), format.FormatVCF)
	require.Error(t, err)

	p, detected, err := OpenParser(filepath.Join("testdata", "genome_raw.txt"), format.Format23AndMe)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, format.Format23AndMe, detected)
}
