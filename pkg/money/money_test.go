package money

import (
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

func TestSplitSumsExactly(t *testing.T) {
	cases := []struct {
		name  string
		total Cents
		n     int
		want  []Cents
	}{
		{name: "even", total: 1000, n: 4, want: []Cents{250, 250, 250, 250}},
		{name: "remainder to leading shares", total: 1000, n: 3, want: []Cents{334, 333, 333}},
		{name: "single payer", total: 999, n: 1, want: []Cents{999}},
		{name: "more payers than cents", total: 2, n: 3, want: []Cents{1, 1, 0}},
		{name: "zero total", total: 0, n: 2, want: []Cents{0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shares, err := Split(tc.total, tc.n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(shares) != len(tc.want) {
				t.Fatalf("expected %d shares, got %d", len(tc.want), len(shares))
			}
			for i := range shares {
				if shares[i] != tc.want[i] {
					t.Fatalf("expected shares %v, got %v", tc.want, shares)
				}
			}
			if Sum(shares) != tc.total {
				t.Fatalf("expected shares to sum to %d, got %d", tc.total, Sum(shares))
			}
		})
	}
}

func TestSplitSpreadAtMostOneCent(t *testing.T) {
	for total := Cents(0); total < 100; total++ {
		for n := 1; n <= 7; n++ {
			shares, err := Split(total, n)
			if err != nil {
				t.Fatalf("unexpected error for %d/%d: %v", total, n, err)
			}
			min, max := shares[0], shares[0]
			for _, s := range shares {
				if s < min {
					min = s
				}
				if s > max {
					max = s
				}
			}
			if max-min > 1 {
				t.Fatalf("split %d across %d spread more than one cent: %v", total, n, shares)
			}
		}
	}
}

func TestSplitRejectsBadInput(t *testing.T) {
	if _, err := Split(100, 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero payers, got %v", err)
	}
	if _, err := Split(-1, 2); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative total, got %v", err)
	}
}

func TestParseAndFormat(t *testing.T) {
	cases := []struct {
		raw  string
		want Cents
	}{
		{raw: "12.50", want: 1250},
		{raw: "0.01", want: 1},
		{raw: "3", want: 300},
		{raw: "18.505", want: 1851},
	}
	for _, tc := range cases {
		got, err := Parse(tc.raw)
		if err != nil {
			t.Fatalf("unexpected error parsing %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("expected %d cents from %q, got %d", tc.want, tc.raw, got)
		}
	}
	if _, err := Parse("abc"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := Cents(1250).String(); got != "12.50" {
		t.Fatalf("expected formatted 12.50, got %q", got)
	}
}

func TestFromDecimalRoundsHalfUp(t *testing.T) {
	d := decimal.RequireFromString("10.005")
	if got := FromDecimal(d); got != 1001 {
		t.Fatalf("expected 1001, got %d", got)
	}
}

func TestMul(t *testing.T) {
	if got := Cents(350).Mul(3); got != 1050 {
		t.Fatalf("expected 1050, got %d", got)
	}
}
