package registry

import (
	"testing"

	apperrors "github.com/kbukum/registryd/errors"
)

func TestParseVersion_Success(t *testing.T) {
	for _, in := range []string{"1.2.3", "v1.2.3", "0.0.1", "10.20.30"} {
		v, err := ParseVersion(in)
		if err != nil {
			t.Errorf("ParseVersion(%q) failed: %v", in, err)
			continue
		}
		if v == nil {
			t.Errorf("ParseVersion(%q) returned nil version", in)
		}
	}
}

func TestParseVersion_Canonical(t *testing.T) {
	v, err := ParseVersion("v1.2.3")
	if err != nil {
		t.Fatalf("ParseVersion failed: %v", err)
	}
	if v.String() != "1.2.3" {
		t.Errorf("expected canonical 1.2.3, got %q", v.String())
	}
}

func TestParseVersion_Malformed(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2", "1.2.3.4", "1..3", "one.two.three"} {
		_, err := ParseVersion(in)
		if err == nil {
			t.Errorf("ParseVersion(%q) should fail", in)
			continue
		}
		if !apperrors.HasCode(err, apperrors.ErrCodeValidation) {
			t.Errorf("ParseVersion(%q) should fail with VALIDATION_ERROR, got %v", in, err)
		}
	}
}

func TestParseExpression_Malformed(t *testing.T) {
	for _, in := range []string{"", "v", "abc", "1.x", "-1", "1.2.3.4", "^1.2.3", "~1.2"} {
		_, err := ParseExpression(in)
		if err == nil {
			t.Errorf("ParseExpression(%q) should fail", in)
		}
	}
}

func TestExpression_Matches(t *testing.T) {
	tests := []struct {
		expr    string
		version string
		want    bool
	}{
		{"1", "1.0.0", true},
		{"1", "1.5.9", true},
		{"v1", "1.5.9", true},
		{"1", "2.0.0", false},
		{"1.2", "1.2.0", true},
		{"1.2", "1.2.99", true},
		{"v1.2", "1.2.1", true},
		{"1.2", "1.3.0", false},
		{"1.2", "2.2.0", false},
		{"1.2.3", "1.2.3", true},
		{"v1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", false},
		{"2", "10.0.0", false},
	}
	for _, tt := range tests {
		expr, err := ParseExpression(tt.expr)
		if err != nil {
			t.Errorf("ParseExpression(%q) failed: %v", tt.expr, err)
			continue
		}
		v, err := ParseVersion(tt.version)
		if err != nil {
			t.Fatalf("ParseVersion(%q) failed: %v", tt.version, err)
		}
		if got := expr.Matches(v); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.expr, tt.version, got, tt.want)
		}
	}
}

func TestComparePrecedence(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"2.0.0", "1.9.9", 1},
		{"1.9.9", "2.0.0", -1},
		{"1.2.0", "1.1.9", 1},
		{"1.1.1", "1.1.2", -1},
		{"10.0.0", "9.0.0", 1},
	}
	for _, tt := range tests {
		a, _ := ParseVersion(tt.a)
		b, _ := ParseVersion(tt.b)
		if got := ComparePrecedence(a, b); got != tt.want {
			t.Errorf("ComparePrecedence(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
