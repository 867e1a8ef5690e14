package vcf

import "testing"

func TestVariant_Type(t *testing.T) {
	tests := []struct {
		name  string
		ref   string
		alt   string
		want  Type
		delta int
	}{
		{"snv", "A", "G", Substitution, 0},
		{"mnv", "AT", "GC", Substitution, 0},
		{"insertion", "A", "ATT", Insertion, 2},
		{"deletion", "ACG", "A", Deletion, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Ref: tt.ref, Alts: []string{tt.alt}}
			if got := v.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
			if got := v.Delta(); got != tt.delta {
				t.Errorf("Delta() = %d, want %d", got, tt.delta)
			}
		})
	}
}

func TestVariant_TypeString(t *testing.T) {
	if Substitution.String() != "SUB" || Insertion.String() != "INS" || Deletion.String() != "DEL" {
		t.Error("unexpected Type string forms")
	}
}

func TestVariant_AltOfMultiAllelic(t *testing.T) {
	v := &Variant{Ref: "A", Alts: []string{"G", "T"}}
	if !v.MultiAllelic() {
		t.Error("Expected MultiAllelic")
	}
	if v.Alt() != "G" {
		t.Errorf("Expected first alternate, got %q", v.Alt())
	}
}

func TestSample_GTAlleles(t *testing.T) {
	s := &Sample{Fields: map[string][]string{"GT": {"1|1"}}}
	gts := s.GTAlleles()
	if len(gts) != 2 || gts[0] != "1" || gts[1] != "1" {
		t.Errorf("Unexpected phased GT alleles: %v", gts)
	}

	s = &Sample{Fields: map[string][]string{}}
	if s.GTAlleles() != nil {
		t.Error("Expected nil for a sample without GT")
	}
}
