package db

import (
	"strings"
	"testing"
)

func TestBuildGrantFilterDefaultsToNonClosed(t *testing.T) {
	where, args := buildGrantFilter(GrantListParams{})
	if !strings.Contains(where, "status <> 'closed'") {
		t.Fatalf("expected default non-closed filter, got %q", where)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestBuildGrantFilterAllStatuses(t *testing.T) {
	where, args := buildGrantFilter(GrantListParams{Status: "all"})
	if strings.Contains(where, "status") {
		t.Fatalf("status=all should not filter on status, got %q", where)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestBuildGrantFilterPlaceholderNumbering(t *testing.T) {
	where, args := buildGrantFilter(GrantListParams{
		Query:     "uniswap",
		Status:    "open",
		Ecosystem: "ethereum",
		Tag:       "defi",
		MinAmount: 10000,
		MaxAmount: 500000,
	})

	want := []string{"$1", "$2", "$3", "$4", "$5", "$6"}
	for _, p := range want {
		if !strings.Contains(where, p) {
			t.Fatalf("expected placeholder %s in %q", p, where)
		}
	}
	if strings.Contains(where, "$7") {
		t.Fatalf("unexpected placeholder $7 in %q", where)
	}
	if len(args) != 6 {
		t.Fatalf("expected 6 args, got %d: %v", len(args), args)
	}
	if args[0] != "uniswap" || args[1] != "open" || args[2] != "ethereum" {
		t.Fatalf("args out of order: %v", args)
	}
}

func TestBuildGrantFilterAmountBounds(t *testing.T) {
	where, _ := buildGrantFilter(GrantListParams{MinAmount: 5000})
	if !strings.Contains(where, "amount_max_usd >=") {
		t.Fatalf("min amount should bound the grant's max, got %q", where)
	}

	where, _ = buildGrantFilter(GrantListParams{MaxAmount: 100000})
	if !strings.Contains(where, "amount_min_usd <=") {
		t.Fatalf("max amount should bound the grant's min, got %q", where)
	}
}
