package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestContentHashDeterministic(t *testing.T) {
	price := decimal.NewFromInt(1500)
	base := decimal.NewFromInt(1200)

	a := ContentHash(10, 3, base, price, 5, 2)
	b := ContentHash(10, 3, base, price, 5, 2)
	if a != b {
		t.Fatalf("hash not deterministic: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("expected md5 hex digest, got %q", a)
	}
}

func TestContentHashChangesWithTerms(t *testing.T) {
	base := decimal.NewFromInt(1200)
	orig := ContentHash(10, 3, base, decimal.NewFromInt(1500), 5, 2)

	if ContentHash(10, 3, base, decimal.NewFromInt(1600), 5, 2) == orig {
		t.Fatal("price change did not change hash")
	}
	if ContentHash(10, 3, base, decimal.NewFromInt(1500), 6, 2) == orig {
		t.Fatal("qty change did not change hash")
	}
	if ContentHash(10, 4, base, decimal.NewFromInt(1500), 5, 2) == orig {
		t.Fatal("supplier change did not change hash")
	}
}

func TestDefaultLineHash(t *testing.T) {
	if DefaultLineHash(1, 2) == DefaultLineHash(2, 1) {
		t.Fatal("key order must matter")
	}
	if len(DefaultLineHash(1, 2)) != 32 {
		t.Fatal("expected md5 hex digest")
	}
}
