package support

import (
	"go.uber.org/zap"

	"github.com/vcflab/vcfcons/internal/vcf"
)

// Filter classifies variant calls against the acceptance thresholds.
type Filter struct {
	thresholds Thresholds
	resolver   Resolver
	logger     *zap.Logger
}

// NewFilter creates a filter using the given support resolver.
func NewFilter(r Resolver, t Thresholds) *Filter {
	return &Filter{thresholds: t, resolver: r, logger: zap.NewNop()}
}

// SetLogger sets the logger for warnings and rejection messages. The
// logger is propagated to the resolver when it accepts one.
func (f *Filter) SetLogger(l *zap.Logger) {
	f.logger = l
	if r, ok := f.resolver.(interface{ SetLogger(*zap.Logger) }); ok {
		r.SetLogger(l)
	}
}

// Classify resolves the variant's support and applies the thresholds in
// fixed order: coverage, then frequency, then quality. First match wins.
func (f *Filter) Classify(v *vcf.Variant) Status {
	if v.MultiAllelic() {
		f.logger.Warn("more than one alt allele, using only the first",
			zap.String("chrom", v.Chrom),
			zap.Int("pos", v.Pos),
			zap.Strings("alts", v.Alts))
	}

	total, alt, err := f.resolver.Resolve(v)
	if err != nil {
		// one unresolvable call must not discard the whole consensus
		f.logger.Warn("could not resolve variant support, rejecting as low coverage",
			zap.String("chrom", v.Chrom),
			zap.Int("pos", v.Pos),
			zap.Error(err))
		return f.reject(v, LowCoverage, 0, 0)
	}

	// total == 0 is checked unconditionally so the frequency ratio is
	// never computed against zero
	if total < f.thresholds.MinCoverage || total == 0 {
		return f.reject(v, LowCoverage, total, 0)
	}

	freq := float64(alt) / float64(total)
	if freq < f.thresholds.MinAltFreq {
		return f.reject(v, LowFrequency, total, freq)
	}

	if v.QualMissing {
		f.logger.Warn("QUAL field is empty, ignoring QUAL filter",
			zap.String("chrom", v.Chrom),
			zap.Int("pos", v.Pos))
	} else if v.Qual < float64(f.thresholds.MinQual) {
		return f.reject(v, LowQuality, total, freq)
	}

	return Accepted
}

func (f *Filter) reject(v *vcf.Variant, s Status, total int, freq float64) Status {
	fields := []zap.Field{
		zap.String("chrom", v.Chrom),
		zap.Int("pos", v.Pos),
		zap.String("ref", v.Ref),
		zap.String("alt", v.Alt()),
		zap.String("reason", s.String()),
	}
	switch s {
	case LowCoverage:
		fields = append(fields, zap.Int("total_cov", total))
	case LowFrequency:
		fields = append(fields, zap.Float64("alt_freq", freq))
	case LowQuality:
		fields = append(fields, zap.Float64("qual", v.Qual))
	}
	f.logger.Info("ignoring variant", fields...)
	return s
}
