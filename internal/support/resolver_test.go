package support

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcflab/vcfcons/internal/pileup"
	"github.com/vcflab/vcfcons/internal/vcf"
)

func sampleVariant(ref, alt string, fields map[string][]string) *vcf.Variant {
	return &vcf.Variant{
		Chrom:   "fake",
		Pos:     100,
		Ref:     ref,
		Alts:    []string{alt},
		Samples: []vcf.Sample{{Name: "s1", Fields: fields}},
	}
}

func TestStandardResolver(t *testing.T) {
	r, err := NewSchemaResolver(SchemaDeepVariant)
	require.NoError(t, err)

	v := sampleVariant("C", "T", map[string][]string{
		"GT": {"1/1"},
		"DP": {"102"},
		"AD": {"2", "100"},
	})
	total, alt, err := r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 102, total)
	assert.Equal(t, 100, alt)
}

func TestStandardResolver_ShapeMismatchFallsBack(t *testing.T) {
	r, err := NewSchemaResolver(SchemaDeepVariant)
	require.NoError(t, err)

	// two genotypes expected (ref + one alt) but three AD entries
	v := sampleVariant("C", "T", map[string][]string{
		"GT": {"1/1"},
		"DP": {"80"},
		"AD": {"2", "40", "38"},
	})
	total, alt, err := r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 80, total)
	assert.Equal(t, 80, alt, "fallback uses total depth as the support count")
}

func TestStandardResolver_NoSamples(t *testing.T) {
	r, err := NewSchemaResolver(SchemaDeepVariant)
	require.NoError(t, err)

	_, _, err = r.Resolve(&vcf.Variant{Chrom: "fake", Pos: 1, Ref: "A", Alts: []string{"G"}})
	assert.Error(t, err)
}

func TestCLCResolver(t *testing.T) {
	r, err := NewSchemaResolver(SchemaCLC)
	require.NoError(t, err)

	v := sampleVariant("C", "T", map[string][]string{
		"GT":     {"1/1"},
		"DP":     {"60"},
		"CLCAD2": {"5", "55"},
	})
	total, alt, err := r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 60, total)
	assert.Equal(t, 55, alt)
}

func TestPbaaResolver_SingleGenotype(t *testing.T) {
	r, err := NewSchemaResolver(SchemaPbaa)
	require.NoError(t, err)

	v := sampleVariant("C", "T", map[string][]string{
		"GT": {"1"},
		"DP": {"40"},
		"AD": {"38"},
	})
	total, alt, err := r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 40, total)
	assert.Equal(t, 38, alt)

	// a list-shaped AD for a single genotype falls back to DP
	v = sampleVariant("C", "T", map[string][]string{
		"GT": {"1"},
		"DP": {"40"},
		"AD": {"20", "18"},
	})
	_, alt, err = r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 40, alt)
}

func TestPbaaResolver_MultipleGenotypes(t *testing.T) {
	r, err := NewSchemaResolver(SchemaPbaa)
	require.NoError(t, err)

	// only entries whose genotype allele is "1" count
	v := sampleVariant("C", "T", map[string][]string{
		"GT": {"0/1"},
		"DP": {"50"},
		"AD": {"20", "28"},
	})
	total, alt, err := r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 50, total)
	assert.Equal(t, 28, alt)

	v = sampleVariant("C", "T", map[string][]string{
		"GT": {"1|1"},
		"DP": {"50"},
		"AD": {"24", "25"},
	})
	_, alt, err = r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 49, alt)

	// shape mismatch falls back to DP
	v = sampleVariant("C", "T", map[string][]string{
		"GT": {"0/1"},
		"DP": {"50"},
		"AD": {"50"},
	})
	_, alt, err = r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 50, alt)
}

func TestBcftoolsResolver(t *testing.T) {
	r, err := NewSchemaResolver(SchemaBcftools)
	require.NoError(t, err)

	v := &vcf.Variant{
		Chrom: "fake",
		Pos:   100,
		Ref:   "C",
		Alts:  []string{"T"},
		Info:  map[string]string{"DP": "50", "DP4": "10,13,15,12"},
	}
	total, alt, err := r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 50, total)
	assert.Equal(t, 27, alt, "alt support is forward plus reverse alt reads")

	v.Info["DP4"] = "1,2"
	_, _, err = r.Resolve(v)
	assert.Error(t, err)
}

func TestNewSchemaResolver_Unknown(t *testing.T) {
	_, err := NewSchemaResolver("varscan")
	assert.Error(t, err)
}

func pileupRecord(t *testing.T, pos int, ref string, cov int, readBase string) *pileup.Record {
	t.Helper()
	rec, err := pileup.NewRecord("fake", pos, ref, cov, readBase, "", "")
	require.NoError(t, err)
	return rec
}

func TestPileupResolver_Substitution(t *testing.T) {
	// 6 T (3 per strand), 4 ref C
	rec := pileupRecord(t, 99, "C", 10, "TTTttt..,,")
	r := &PileupResolver{Table: map[int]*pileup.Record{99: rec}}

	v := &vcf.Variant{Chrom: "fake", Pos: 100, Ref: "C", Alts: []string{"T"}}
	total, alt, err := r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Equal(t, 6, alt)
}

func TestPileupResolver_ConsecutiveSubstitutionUsesFirstBase(t *testing.T) {
	rec := pileupRecord(t, 99, "C", 4, "GGg.")
	r := &PileupResolver{Table: map[int]*pileup.Record{99: rec}}

	v := &vcf.Variant{Chrom: "fake", Pos: 100, Ref: "CA", Alts: []string{"GT"}}
	_, alt, err := r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 3, alt)
}

func TestPileupResolver_Insertion(t *testing.T) {
	rec := pileupRecord(t, 99, "C", 5, ".+2AT.+2at...")
	r := &PileupResolver{Table: map[int]*pileup.Record{99: rec}}

	v := &vcf.Variant{Chrom: "fake", Pos: 100, Ref: "C", Alts: []string{"CAT"}}
	total, alt, err := r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, alt, "both strand cases of the insertion token are summed")
}

func TestPileupResolver_Deletion(t *testing.T) {
	rec := pileupRecord(t, 99, "C", 5, ".-2AT.-2at...")
	r := &PileupResolver{Table: map[int]*pileup.Record{99: rec}}

	v := &vcf.Variant{Chrom: "fake", Pos: 100, Ref: "CAT", Alts: []string{"C"}}
	total, alt, err := r.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, alt)
}

func TestPileupResolver_MissingPosition(t *testing.T) {
	r := &PileupResolver{Table: map[int]*pileup.Record{}}
	v := &vcf.Variant{Chrom: "fake", Pos: 100, Ref: "C", Alts: []string{"T"}}
	_, _, err := r.Resolve(v)
	assert.Error(t, err)
}
