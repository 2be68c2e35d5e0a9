package analyze

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomeforge/genomeforge/internal/genome"
	"github.com/genomeforge/genomeforge/internal/refdb"
)

func testSnapshot() *refdb.Snapshot {
	return refdb.NewSnapshot(
		[]refdb.ClinicalRecord{
			{RSID: "rs123", Gene: "BRCA2", Condition: "X", Significance: "pathogenic"},
			{RSID: "rs123", Gene: "BRCA2", Condition: "Y", Significance: "benign"},
		},
		[]refdb.PharmacoRecord{
			{RSID: "rs123", Gene: "CYP2C19", Drug: "clopidogrel", Response: "poor", Recommendation: "consider alternative"},
			{RSID: "rs456", Gene: "VKORC1", Drug: "warfarin", Response: "sensitive"},
		},
		[]refdb.TraitRecord{
			{RSID: "rs456", Trait: "Height", Category: "anthropometric", Effect: "+0.2cm", Confidence: 0.9},
		},
	)
}

// stubParser feeds a fixed variant slice through the VariantParser interface.
type stubParser struct {
	variants []*genome.Variant
	i        int
	skipped  int
}

func (p *stubParser) Next() (*genome.Variant, error) {
	if p.i >= len(p.variants) {
		return nil, nil
	}
	v := p.variants[p.i]
	p.i++
	return v, nil
}

func (p *stubParser) Close() error    { return nil }
func (p *stubParser) LineNumber() int { return p.i }
func (p *stubParser) Skipped() int    { return p.skipped }

type failingParser struct{ stubParser }

func (p *failingParser) Next() (*genome.Variant, error) {
	return nil, errors.New("disk on fire")
}

// countingCollector implements Collector for tests.
type countingCollector struct {
	findings []Finding
	total    int
	analyzed int
	skipped  int
}

func (c *countingCollector) Add(f Finding) { c.findings = append(c.findings, f) }
func (c *countingCollector) SetCounts(total, analyzed, skipped int) {
	c.total, c.analyzed, c.skipped = total, analyzed, skipped
}

func mustVariant(t *testing.T, rsid, chrom string, pos int64, gt string) *genome.Variant {
	t.Helper()
	v, err := genome.New(rsid, chrom, pos, gt)
	require.NoError(t, err)
	return v
}

func TestMatch_AllCategoriesNoDedup(t *testing.T) {
	a := NewAnalyzer(testSnapshot())
	v := mustVariant(t, "rs123", "1", 100, "AG")

	findings := a.Match(v)
	require.Len(t, findings, 3, "two clinical conditions plus one drug response")

	assert.Equal(t, KindClinical, findings[0].Kind)
	assert.Equal(t, "X", findings[0].Condition)
	assert.Equal(t, "1", findings[0].Chromosome, "clinical findings carry variant coordinates")
	assert.Equal(t, int64(100), findings[0].Position)

	assert.Equal(t, KindClinical, findings[1].Kind)
	assert.Equal(t, "Y", findings[1].Condition)

	assert.Equal(t, KindDrug, findings[2].Kind)
	assert.Equal(t, "clopidogrel", findings[2].Drug)
	assert.Equal(t, "AG", findings[2].Genotype)
}

func TestMatch_JoinSoundness(t *testing.T) {
	a := NewAnalyzer(testSnapshot())

	findings := a.Match(mustVariant(t, "rs456", "2", 200, "TT"))
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, "rs456", f.RSID, "no finding may carry a foreign rsid")
	}

	assert.Empty(t, a.Match(mustVariant(t, "rs404", "3", 300, "CC")))
}

func TestMatch_UnmatchableVariants(t *testing.T) {
	a := NewAnalyzer(testSnapshot())

	// No rsid: cannot be matched
	assert.Nil(t, a.Match(mustVariant(t, "", "1", 100, "AG")))

	// No-call genotype: parsed and counted, but never matched
	assert.Nil(t, a.Match(mustVariant(t, "rs123", "1", 100, genome.NoCall)))
}

func TestAnalyzeAll_Counts(t *testing.T) {
	parser := &stubParser{
		variants: []*genome.Variant{
			mustVariant(t, "rs123", "1", 100, "AG"), // 3 findings
			mustVariant(t, "rs456", "1", 200, "TT"), // 2 findings
			mustVariant(t, "", "2", 300, "CC"),      // no rsid
			mustVariant(t, "rs404", "2", 400, "GG"), // zero matches
			mustVariant(t, "rs123", "1", 100, genome.NoCall), // no-call
		},
		skipped: 4,
	}

	a := NewAnalyzer(testSnapshot())
	var c countingCollector
	require.NoError(t, a.AnalyzeAll(parser, &c))

	assert.Equal(t, 5, c.total)
	assert.Equal(t, 2, c.analyzed)
	assert.Equal(t, 4, c.skipped)
	assert.Len(t, c.findings, 5)

	// total == analyzed + (no rsid) + (zero matches, incl. no-call)
	noRSID := 1
	zeroMatches := 2
	assert.Equal(t, c.total, c.analyzed+noRSID+zeroMatches)
}

func TestAnalyzeAll_PreservesInputOrder(t *testing.T) {
	variants := make([]*genome.Variant, 0, 200)
	for range 100 {
		variants = append(variants,
			mustVariant(t, "rs123", "1", 100, "AG"),
			mustVariant(t, "rs456", "1", 200, "TT"))
	}
	parser := &stubParser{variants: variants}

	a := NewAnalyzer(testSnapshot())
	a.SetWorkers(8)
	var c countingCollector
	require.NoError(t, a.AnalyzeAll(parser, &c))

	require.Len(t, c.findings, 500)
	for i := 0; i < len(c.findings); i += 5 {
		// Per input pair: rs123 (clinical, clinical, drug), rs456 (drug, trait)
		assert.Equal(t, "rs123", c.findings[i].RSID)
		assert.Equal(t, KindClinical, c.findings[i].Kind)
		assert.Equal(t, "rs456", c.findings[i+3].RSID)
		assert.Equal(t, KindTrait, c.findings[i+4].Kind)
	}
}

func TestAnalyzeAll_DatabaseNotLoaded(t *testing.T) {
	a := NewAnalyzer(nil)
	err := a.AnalyzeAll(&stubParser{}, &countingCollector{})
	assert.ErrorIs(t, err, ErrDatabaseNotLoaded)
}

func TestAnalyzeAll_NeverLoadedDB(t *testing.T) {
	// A DB that never completed a load hands out a nil snapshot; analysis
	// over it must report the not-loaded error, not crash.
	a := NewAnalyzer(refdb.NewDB().Snapshot())

	parser := &stubParser{variants: []*genome.Variant{
		mustVariant(t, "rs123", "1", 100, "AG"),
	}}
	err := a.AnalyzeAll(parser, &countingCollector{})
	assert.ErrorIs(t, err, ErrDatabaseNotLoaded)

	assert.Nil(t, a.Match(mustVariant(t, "rs123", "1", 100, "AG")))
}

func TestAnalyzeAll_ParserFailure(t *testing.T) {
	a := NewAnalyzer(testSnapshot())
	err := a.AnalyzeAll(&failingParser{}, &countingCollector{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}
