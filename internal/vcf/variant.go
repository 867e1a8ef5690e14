// Package vcf provides VCF file parsing functionality.
package vcf

import "strings"

// Type classifies a variant by comparing allele lengths.
type Type int

const (
	Substitution Type = iota
	Insertion
	Deletion
)

func (t Type) String() string {
	switch t {
	case Insertion:
		return "INS"
	case Deletion:
		return "DEL"
	default:
		return "SUB"
	}
}

// Variant represents a single variant record from a VCF file.
type Variant struct {
	Chrom       string   // Chromosome name
	Pos         int      // 1-based genomic position
	ID          string   // Variant identifier
	Ref         string   // Reference allele
	Alts        []string // Alternate alleles (one or more)
	Qual        float64  // Quality score
	QualMissing bool     // true when the QUAL column was "."
	Filter      string   // Filter status (PASS or filter name)
	Info        map[string]string

	// Samples holds the per-sample FORMAT data, in column order.
	Samples []Sample

	// Line is the record as read, kept verbatim for passthrough output.
	Line string
}

// Sample is one genotype column of a variant record.
type Sample struct {
	Name   string
	Fields map[string][]string // FORMAT key -> comma-split values
}

// Field returns the sample's values for a FORMAT key, or nil.
func (s *Sample) Field(key string) []string {
	return s.Fields[key]
}

// GTAlleles splits the sample's GT value into allele labels, e.g.
// "0/1" -> ["0", "1"], "1|1" -> ["1", "1"].
func (s *Sample) GTAlleles() []string {
	gt := s.Field("GT")
	if len(gt) == 0 {
		return nil
	}
	return strings.FieldsFunc(gt[0], func(r rune) bool {
		return r == '/' || r == '|'
	})
}

// Alt returns the first alternate allele. Multi-allelic records are
// reduced to their first alternate everywhere in this tool.
func (v *Variant) Alt() string {
	if len(v.Alts) == 0 {
		return ""
	}
	return v.Alts[0]
}

// MultiAllelic reports whether the record carries more than one alternate.
func (v *Variant) MultiAllelic() bool {
	return len(v.Alts) > 1
}

// Delta is len(alt) - len(ref) for the first alternate: zero for a
// substitution, positive for an insertion, negative for a deletion.
func (v *Variant) Delta() int {
	return len(v.Alt()) - len(v.Ref)
}

// Type classifies the variant from its first alternate.
func (v *Variant) Type() Type {
	switch d := v.Delta(); {
	case d > 0:
		return Insertion
	case d < 0:
		return Deletion
	default:
		return Substitution
	}
}

// FirstSample returns the first genotype column, or nil when the record
// carries no sample data.
func (v *Variant) FirstSample() *Sample {
	if len(v.Samples) == 0 {
		return nil
	}
	return &v.Samples[0]
}
