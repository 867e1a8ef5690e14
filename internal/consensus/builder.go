// Package consensus builds a corrected consensus sequence by masking
// low-coverage reference positions and applying accepted variant calls.
package consensus

import (
	"strings"

	"go.uber.org/zap"

	"github.com/vcflab/vcfcons/internal/depth"
	"github.com/vcflab/vcfcons/internal/vcf"
)

// SiteState says what a reference position contributes to the output.
type SiteState int

const (
	// Present sites contribute their fragment (one base, or the full
	// alternate string at an insertion anchor).
	Present SiteState = iota
	// Masked sites render as "N" and break fragments.
	Masked
	// Deleted sites contribute nothing and are skipped over inside
	// fragments. Distinct from Masked on purpose.
	Deleted
)

// Site is one position of the consensus under construction.
type Site struct {
	State SiteState
	Seq   string
}

// Fragment is a maximal run of confidently-called consensus positions.
type Fragment struct {
	Start1 int // 1-based start in pre-deletion reference coordinates
	Seq    string
}

// Builder owns the position-indexed consensus representation. Build
// order is fixed: New, Mask once, Apply per accepted variant, then read
// out Sequence and Fragments. The readouts do not mutate state, so they
// are repeatable.
type Builder struct {
	sites  []Site
	logger *zap.Logger
}

// New initializes the consensus as a verbatim copy of the reference.
func New(refseq string) *Builder {
	sites := make([]Site, len(refseq))
	for i := 0; i < len(refseq); i++ {
		sites[i] = Site{State: Present, Seq: string(refseq[i])}
	}
	return &Builder{sites: sites, logger: zap.NewNop()}
}

// SetLogger sets the logger for progress and warning messages.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// Len returns the reference length.
func (b *Builder) Len() int {
	return len(b.sites)
}

// Mask sets every position with missing or insufficient depth to "N".
// The first and last recorded depth positions bound the coverage
// envelope: everything before the first and at or after the last is
// masked regardless of its depth value, since read mapping rarely spans
// the full reference.
func (b *Builder) Mask(t *depth.Table, minCoverage int) {
	if t.Empty() {
		b.logger.Warn("depth table is empty, masking the whole reference")
		for i := range b.sites {
			b.sites[i].State = Masked
		}
		return
	}

	for i := range b.sites {
		d, ok := t.ByPos[i]
		if !ok || d < minCoverage {
			b.sites[i].State = Masked
		}
	}
	for i := 0; i < t.Min && i < len(b.sites); i++ {
		b.sites[i].State = Masked
	}
	for i := t.Max; i < len(b.sites); i++ {
		b.sites[i].State = Masked
	}
}

// Apply mutates the consensus with one accepted variant. Variants are
// applied in call-set order and may overwrite masked positions. No
// other positions shift: an insertion collapses into its anchor slot
// and a deletion removes slots outright.
func (b *Builder) Apply(v *vcf.Variant) {
	pos0 := v.Pos - 1
	alt := v.Alt()

	switch v.Type() {
	case vcf.Substitution:
		// consecutive substitutions arrive as one record
		for cur := 0; cur < len(alt); cur++ {
			if pos0+cur >= len(b.sites) {
				break
			}
			b.sites[pos0+cur] = Site{State: Present, Seq: string(alt[cur])}
		}
	case vcf.Insertion:
		if pos0 < len(b.sites) {
			b.sites[pos0] = Site{State: Present, Seq: alt}
		}
	case vcf.Deletion:
		// the anchor keeps the shared leading base; the following
		// |delta| positions disappear
		for i := 0; i < -v.Delta(); i++ {
			if p := pos0 + 1 + i; p < len(b.sites) {
				b.sites[p].State = Deleted
			}
		}
	}
}

// Sequence returns the full consensus: Present fragments concatenated
// in position order, masked positions as "N", deleted positions
// contributing nothing (the sequence simply shortens).
func (b *Builder) Sequence() string {
	var sb strings.Builder
	sb.Grow(len(b.sites))
	for _, s := range b.sites {
		switch s.State {
		case Present:
			sb.WriteString(s.Seq)
		case Masked:
			sb.WriteByte('N')
		}
	}
	return sb.String()
}

// Fragments decomposes the consensus into maximal runs of non-"N"
// positions. Masked positions break runs; deleted positions are skipped
// inside them. Labels are 1-based coordinates in the original
// pre-deletion space.
func (b *Builder) Fragments() []Fragment {
	var frags []Fragment

	i := 0
	for i < len(b.sites) {
		// skip masked and deleted positions between fragments
		if b.sites[i].State != Present {
			i++
			continue
		}

		start := i
		var sb strings.Builder
		for i < len(b.sites) && b.sites[i].State != Masked {
			if b.sites[i].State == Present {
				sb.WriteString(b.sites[i].Seq)
			}
			i++
		}
		frags = append(frags, Fragment{Start1: start + 1, Seq: sb.String()})
	}

	return frags
}
