package genome

import (
	"errors"
	"testing"
)

func TestNew_ChromosomeRequiresPosition(t *testing.T) {
	_, err := New("rs123", "1", 0, "AG")
	if !errors.Is(err, ErrPositionRequired) {
		t.Fatalf("Expected ErrPositionRequired, got %v", err)
	}
}

func TestNew_NegativePosition(t *testing.T) {
	_, err := New("rs123", "1", -5, "AG")
	if !errors.Is(err, ErrNegativePosition) {
		t.Fatalf("Expected ErrNegativePosition, got %v", err)
	}

	// Also rejected without a chromosome: a coordinate is 1-based or absent.
	_, err = New("rs123", "", -1, "AG")
	if !errors.Is(err, ErrNegativePosition) {
		t.Fatalf("Expected ErrNegativePosition, got %v", err)
	}
}

func TestNew_Valid(t *testing.T) {
	tests := []struct {
		name  string
		rsid  string
		chrom string
		pos   int64
	}{
		{"full coordinates", "rs123", "1", 100},
		{"no coordinates", "rs123", "", 0},
		{"position without chromosome", "rs123", "", 100},
		{"no rsid", "", "2", 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.rsid, tt.chrom, tt.pos, "AG")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if v.RSID != tt.rsid || v.Chromosome != tt.chrom || v.Position != tt.pos {
				t.Errorf("Variant fields mismatch: %+v", v)
			}
		})
	}
}

func TestVariant_IsNoCall(t *testing.T) {
	tests := []struct {
		genotype string
		expected bool
	}{
		{"AG", false},
		{"--", true},
		{"", true},
		{"T", false},
	}

	for _, tt := range tests {
		v := &Variant{RSID: "rs1", Genotype: tt.genotype}
		if v.IsNoCall() != tt.expected {
			t.Errorf("IsNoCall(%q) = %v, want %v", tt.genotype, v.IsNoCall(), tt.expected)
		}
	}
}

func TestVariant_HasRSID(t *testing.T) {
	v := &Variant{RSID: "rs123"}
	if !v.HasRSID() {
		t.Error("Expected HasRSID for rs123")
	}
	v = &Variant{}
	if v.HasRSID() {
		t.Error("Expected no rsid")
	}
}

func TestNormalizeChrom(t *testing.T) {
	tests := []struct {
		chrom    string
		expected string
	}{
		{"chr12", "12"},
		{"12", "12"},
		{"chrX", "X"},
		{"MT", "MT"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeChrom(tt.chrom); got != tt.expected {
			t.Errorf("NormalizeChrom(%q) = %q, want %q", tt.chrom, got, tt.expected)
		}
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected 8 columns, found 7",
	}

	expected := "parse error at line 42: expected 8 columns, found 7"
	if err.Error() != expected {
		t.Errorf("Error message mismatch: got %q, want %q", err.Error(), expected)
	}
}
