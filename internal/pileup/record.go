// Package pileup provides samtools mpileup parsing functionality.
package pileup

import (
	"fmt"
	"strconv"
	"strings"
)

// Record represents a single decoded mpileup line.
//
// The readBase column is a mini-language over the reads covering one
// position (see `samtools mpileup` documentation):
//
//	.        match to reference, forward strand
//	,        match to reference, reverse strand
//	ACGTN    mismatch on forward strand
//	acgtn    mismatch on reverse strand
//	< >      reference skip (e.g. spliced alignment)
//	*        placeholder inside a deletion
//	^q       read start, q is the mapping quality byte
//	$        read end
//	+<n><b>  insertion of n bases after this position
//	-<n><b>  deletion of the next n reference bases
type Record struct {
	Chrom     string
	Pos       int    // 0-based position
	Ref       string // reference base, always upper case
	Cov       int    // coverage as declared by the pileup column
	ReadBase  string
	BaseQuals string
	AlnQuals  string

	// Counts maps an observed allele to its read count. Keys are single
	// base letters (case encodes strand) or signed run tokens such as
	// "+2AT" and "-1a".
	Counts map[string]int

	// NCov is the coverage contributed by non-indel, non-skipped bases
	// (the ACGTNacgtn keys only). NTypes is the number of those keys
	// with a non-zero count.
	NCov   int
	NTypes int
}

// NewRecord decodes the readBase column and returns the populated record.
// Decoding errors are structural: the input is corrupt, not recoverable.
func NewRecord(chrom string, pos int, ref string, cov int, readBase, baseQuals, alnQuals string) (*Record, error) {
	r := &Record{
		Chrom:     chrom,
		Pos:       pos,
		Ref:       strings.ToUpper(ref),
		Cov:       cov,
		ReadBase:  readBase,
		BaseQuals: baseQuals,
		AlnQuals:  alnQuals,
		Counts:    make(map[string]int),
	}
	if err := r.parseReadBase(); err != nil {
		return nil, err
	}
	return r, nil
}

// parseReadBase scans the readBase string left to right and fills in
// Counts, NCov and NTypes. The scan keeps a running count of how many
// read observations it has consumed; that count must equal the declared
// coverage or the record is rejected.
func (r *Record) parseReadBase() error {
	counted := 0
	i := 0
	for i < len(r.ReadBase) {
		b := r.ReadBase[i]
		switch {
		case b == '<' || b == '>':
			// reference skip: coverage only, no allele
			counted++
			i++
		case b == '*':
			// inside a deletion reported earlier via -<n>
			counted++
			i++
		case b == '^':
			// read start: skip the marker and the mapping quality
			// byte; the base call that follows is scanned normally
			i += 2
		case b == '$':
			// read end: the base it follows was already counted
			i++
		case b == '.':
			r.Counts[r.Ref]++
			counted++
			i++
		case b == ',':
			r.Counts[strings.ToLower(r.Ref)]++
			counted++
			i++
		case strings.IndexByte("ATCGNatcgn", b) >= 0:
			r.Counts[string(b)]++
			counted++
			i++
		case b == '-' || b == '+':
			// signed run: sign, decimal length, then that many bases.
			// Indel runs ride along with the base before them and do
			// not count toward coverage.
			tok, end, err := r.readIndel(i)
			if err != nil {
				return err
			}
			r.Counts[tok]++
			i = end
		default:
			return fmt.Errorf("unknown character %q at offset %d in readBase %q", b, i, r.ReadBase)
		}
	}

	if counted != r.Cov && !(r.ReadBase == "*" && r.Cov == 0) {
		return fmt.Errorf("pileup coverage mismatch at %s:%d: counted %d reads but column declares %d (readBase %q)",
			r.Chrom, r.Pos+1, counted, r.Cov, r.ReadBase)
	}

	for _, x := range []string{"A", "T", "C", "G", "N", "a", "t", "c", "g", "n"} {
		if c := r.Counts[x]; c > 0 {
			r.NCov += c
			r.NTypes++
		}
	}
	return nil
}

// readIndel parses an indel run starting at the sign character and
// returns the allele token (sign + length + bases) and the offset just
// past the run.
func (r *Record) readIndel(start int) (string, int, error) {
	j := start + 1
	for j < len(r.ReadBase) && r.ReadBase[j] >= '0' && r.ReadBase[j] <= '9' {
		j++
	}
	if j == start+1 {
		return "", 0, fmt.Errorf("indel at offset %d in readBase %q has no run length", start, r.ReadBase)
	}
	n, err := strconv.Atoi(r.ReadBase[start+1 : j])
	if err != nil {
		return "", 0, fmt.Errorf("indel run length at offset %d in readBase %q: %w", start, r.ReadBase, err)
	}
	end := j + n
	if end > len(r.ReadBase) {
		return "", 0, fmt.Errorf("indel run at offset %d in readBase %q is truncated", start, r.ReadBase)
	}
	return r.ReadBase[start:end], end, nil
}

func (r *Record) String() string {
	return fmt.Sprintf("pileup %s:%d ref=%s cov=%d nCov=%d counts=%v",
		r.Chrom, r.Pos+1, r.Ref, r.Cov, r.NCov, r.Counts)
}
