// Package support resolves read support for variant calls and applies
// the accept/reject thresholds that drive consensus building.
package support

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vcflab/vcfcons/internal/pileup"
	"github.com/vcflab/vcfcons/internal/vcf"
)

// Thresholds are the filtering cutoffs for variant acceptance.
type Thresholds struct {
	MinCoverage int     // below this total coverage a variant is ignored
	MinAltFreq  float64 // below this alternate frequency the reference wins
	MinQual     int     // QUAL cutoff, skipped when QUAL is missing
}

// DefaultThresholds returns the standard cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{MinCoverage: 4, MinAltFreq: 0.5, MinQual: 100}
}

// Validate rejects threshold combinations that can never work. It runs
// before any input file is opened.
func (t Thresholds) Validate() error {
	if t.MinAltFreq <= 0 || t.MinAltFreq > 1 {
		return fmt.Errorf("min alt freq must be a fraction in (0,1], got %v", t.MinAltFreq)
	}
	return nil
}

// Status is the classification of one variant call.
type Status int

const (
	Accepted Status = iota
	LowCoverage
	LowFrequency
	LowQuality
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case LowCoverage:
		return "low_coverage"
	case LowFrequency:
		return "low_frequency"
	case LowQuality:
		return "low_quality"
	default:
		return "unknown"
	}
}

// Resolver computes (total coverage, alternate support) for a variant.
type Resolver interface {
	Resolve(v *vcf.Variant) (total, alt int, err error)
}

// Schema identifies the tool that produced the call set; each tool
// stores depth and allele-depth annotations differently.
type Schema string

const (
	SchemaDeepVariant Schema = "deepvariant"
	SchemaCLC         Schema = "CLC"
	SchemaPbaa        Schema = "pbaa"
	SchemaBcftools    Schema = "bcftools"
)

// Schemas lists the recognized annotation schemas.
func Schemas() []string {
	return []string{
		string(SchemaDeepVariant),
		string(SchemaCLC),
		string(SchemaPbaa),
		string(SchemaBcftools),
	}
}

// NewSchemaResolver returns the annotation-derived resolver for a schema.
func NewSchemaResolver(s Schema) (Resolver, error) {
	switch s {
	case SchemaDeepVariant:
		return &StandardResolver{logger: zap.NewNop()}, nil
	case SchemaCLC:
		return &CLCResolver{logger: zap.NewNop()}, nil
	case SchemaPbaa:
		return &PbaaResolver{logger: zap.NewNop()}, nil
	case SchemaBcftools:
		return &BcftoolsResolver{}, nil
	default:
		return nil, fmt.Errorf("unknown vcf type %q, choices are: %s", s, strings.Join(Schemas(), ", "))
	}
}

// PileupResolver derives support from the indexed mpileup records.
type PileupResolver struct {
	Table map[int]*pileup.Record
}

// Resolve looks up the record at the variant's position and counts the
// reads matching the first alternate. Both strand cases of a key are
// summed.
func (r *PileupResolver) Resolve(v *vcf.Variant) (int, int, error) {
	rec, ok := r.Table[v.Pos-1]
	if !ok {
		return 0, 0, fmt.Errorf("no pileup record at position %d", v.Pos)
	}

	var alt int
	switch v.Type() {
	case vcf.Substitution:
		// consecutive substitutions share one record; only the first
		// base carries the support count
		b := string(v.Alt()[0])
		alt = rec.Counts[strings.ToUpper(b)] + rec.Counts[strings.ToLower(b)]
	case vcf.Insertion:
		tok := "+" + strconv.Itoa(v.Delta())
		suffix := v.Alt()[1:]
		alt = rec.Counts[tok+suffix] + rec.Counts[tok+strings.ToLower(suffix)]
	case vcf.Deletion:
		// Delta is negative, so the token already carries its sign
		tok := strconv.Itoa(v.Delta())
		suffix := v.Ref[1:]
		alt = rec.Counts[tok+suffix] + rec.Counts[tok+strings.ToLower(suffix)]
	}
	return rec.Cov, alt, nil
}

// StandardResolver reads DP/AD sample annotations as written by
// DeepVariant and most other callers.
type StandardResolver struct {
	logger *zap.Logger
}

// SetLogger sets the logger for shape-mismatch warnings.
func (r *StandardResolver) SetLogger(l *zap.Logger) { r.logger = l }

func (r *StandardResolver) Resolve(v *vcf.Variant) (int, int, error) {
	return resolveAlleleDepth(v, "AD", r.logger)
}

// CLCResolver reads the CLC Genomics Workbench CLCAD2 annotation.
type CLCResolver struct {
	logger *zap.Logger
}

// SetLogger sets the logger for shape-mismatch warnings.
func (r *CLCResolver) SetLogger(l *zap.Logger) { r.logger = l }

func (r *CLCResolver) Resolve(v *vcf.Variant) (int, int, error) {
	return resolveAlleleDepth(v, "CLCAD2", r.logger)
}

// resolveAlleleDepth implements the shared DP/allele-depth extraction:
// the allele-depth list must have one entry per called genotype
// (reference plus alternates); on a mismatch the total depth stands in
// for the support count.
func resolveAlleleDepth(v *vcf.Variant, adKey string, logger *zap.Logger) (int, int, error) {
	s := v.FirstSample()
	if s == nil {
		return 0, 0, fmt.Errorf("record has no sample columns")
	}
	total, err := sampleInt(s, "DP")
	if err != nil {
		return 0, 0, err
	}

	numGT := len(v.Alts) + 1
	ad := s.Field(adKey)
	if numGT != len(ad) {
		logger.Warn("genotype and allele depth counts do not match, falling back to total depth",
			zap.String("chrom", v.Chrom),
			zap.Int("pos", v.Pos),
			zap.String("field", adKey))
		return total, total, nil
	}
	alt, err := strconv.Atoi(ad[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid %s value %q at %s:%d", adKey, ad[1], v.Chrom, v.Pos)
	}
	return total, alt, nil
}

// PbaaResolver reads pbaa-converted VCFs, where AD may be a scalar
// (single genotype) or one entry per genotype allele.
type PbaaResolver struct {
	logger *zap.Logger
}

// SetLogger sets the logger for shape-mismatch warnings.
func (r *PbaaResolver) SetLogger(l *zap.Logger) { r.logger = l }

func (r *PbaaResolver) Resolve(v *vcf.Variant) (int, int, error) {
	s := v.FirstSample()
	if s == nil {
		return 0, 0, fmt.Errorf("record has no sample columns")
	}
	total, err := sampleInt(s, "DP")
	if err != nil {
		return 0, 0, err
	}

	gts := s.GTAlleles()
	ad := s.Field("AD")

	warn := func() {
		r.logger.Warn("genotype and allele depth counts do not match, falling back to total depth",
			zap.String("chrom", v.Chrom),
			zap.Int("pos", v.Pos),
			zap.String("field", "AD"))
	}

	if len(gts) == 1 {
		if len(ad) != 1 {
			warn()
			return total, total, nil
		}
		alt, err := strconv.Atoi(ad[0])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid AD value %q at %s:%d", ad[0], v.Chrom, v.Pos)
		}
		return total, alt, nil
	}

	if len(ad) != len(gts) {
		warn()
		return total, total, nil
	}
	// sum the entries whose genotype allele is the first alternate
	alt := 0
	for i, gt := range gts {
		if gt != "1" {
			continue
		}
		n, err := strconv.Atoi(ad[i])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid AD value %q at %s:%d", ad[i], v.Chrom, v.Pos)
		}
		alt += n
	}
	return total, alt, nil
}

// BcftoolsResolver reads the fixed INFO fields bcftools computes:
// DP for total depth and DP4 for strand-split ref/alt counts.
type BcftoolsResolver struct{}

func (r *BcftoolsResolver) Resolve(v *vcf.Variant) (int, int, error) {
	total, err := infoInt(v, "DP")
	if err != nil {
		return 0, 0, err
	}
	dp4 := strings.Split(v.Info["DP4"], ",")
	if len(dp4) != 4 {
		return 0, 0, fmt.Errorf("expected 4 DP4 values at %s:%d, got %q", v.Chrom, v.Pos, v.Info["DP4"])
	}
	fwd, err := strconv.Atoi(dp4[2])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid DP4 value %q at %s:%d", dp4[2], v.Chrom, v.Pos)
	}
	rev, err := strconv.Atoi(dp4[3])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid DP4 value %q at %s:%d", dp4[3], v.Chrom, v.Pos)
	}
	return total, fwd + rev, nil
}

func sampleInt(s *vcf.Sample, key string) (int, error) {
	vals := s.Field(key)
	if len(vals) == 0 {
		return 0, fmt.Errorf("sample is missing the %s field", key)
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", key, vals[0])
	}
	return n, nil
}

func infoInt(v *vcf.Variant, key string) (int, error) {
	val, ok := v.Info[key]
	if !ok {
		return 0, fmt.Errorf("record at %s:%d is missing INFO/%s", v.Chrom, v.Pos, key)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid INFO/%s value %q at %s:%d", key, val, v.Chrom, v.Pos)
	}
	return n, nil
}
