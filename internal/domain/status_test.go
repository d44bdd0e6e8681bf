package domain

import (
	"errors"
	"testing"
)

func testCatalog(t *testing.T) *StatusCatalog {
	t.Helper()
	c, err := NewStatusCatalog(
		[]string{"New order", "In progress", "Ready for pickup", "Shipped"},
		[]string{"Customer declined", "Order impossible", "Returned by customer"},
		"Delayed",
	)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}

func TestCheckTransitionFirstStatus(t *testing.T) {
	c := testCatalog(t)

	if err := c.CheckTransition(nil, "New order"); err != nil {
		t.Fatalf("first chain stage on fresh line: %v", err)
	}
	err := c.CheckTransition(nil, "In progress")
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError for non-initial first status, got %v", err)
	}
}

func TestCheckTransitionChainRules(t *testing.T) {
	c := testCatalog(t)
	history := []string{"New order"}

	cases := []struct {
		next string
		ok   bool
	}{
		{"In progress", true},        // next stage
		{"Ready for pickup", false},  // skip
		{"Shipped", false},           // skip further
		{"New order", false},         // same stage again is a regression
		{"Customer declined", true},  // terminal always allowed
		{"Order impossible", true},   // any terminal
		{"Delayed", true},            // annotation always allowed
		{"Sent to supplier", false},  // seeded but outside the chain
	}
	for _, tc := range cases {
		err := c.CheckTransition(history, tc.next)
		if tc.ok && err != nil {
			t.Errorf("CheckTransition(%q): unexpected error %v", tc.next, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("CheckTransition(%q): expected rejection", tc.next)
		}
	}
}

func TestCheckTransitionRegression(t *testing.T) {
	c := testCatalog(t)
	history := []string{"New order", "In progress", "Ready for pickup"}

	if err := c.CheckTransition(history, "In progress"); err == nil {
		t.Fatal("expected regression rejection")
	}
	if err := c.CheckTransition(history, "Shipped"); err != nil {
		t.Fatalf("advance to next stage: %v", err)
	}
}

func TestCheckTransitionAfterTerminal(t *testing.T) {
	c := testCatalog(t)
	history := []string{"New order", "Customer declined"}

	for _, next := range []string{"In progress", "Delayed", "Order impossible", "New order"} {
		err := c.CheckTransition(history, next)
		var te *TransitionError
		if !errors.As(err, &te) {
			t.Errorf("after terminal, %q should be rejected, got %v", next, err)
		}
	}
}

func TestCheckTransitionDelayKeepsChainPosition(t *testing.T) {
	c := testCatalog(t)
	history := []string{"New order", "Delayed"}

	// The delay annotation must not reset the chain position: the line still
	// sits at "New order", so "In progress" is the legal next stage.
	if err := c.CheckTransition(history, "In progress"); err != nil {
		t.Fatalf("advance after delay: %v", err)
	}
	if err := c.CheckTransition(history, "Ready for pickup"); err == nil {
		t.Fatal("skip after delay should be rejected")
	}
}

func TestNewStatusCatalogRejectsBadConfig(t *testing.T) {
	terminal := []string{"Customer declined"}

	if _, err := NewStatusCatalog([]string{"only"}, terminal, "Delayed"); err == nil {
		t.Fatal("single-stage chain accepted")
	}
	if _, err := NewStatusCatalog([]string{"a", "a"}, terminal, "Delayed"); err == nil {
		t.Fatal("duplicate stage accepted")
	}
	if _, err := NewStatusCatalog([]string{"a", "b"}, []string{"b"}, "Delayed"); err == nil {
		t.Fatal("terminal overlapping chain accepted")
	}
	if _, err := NewStatusCatalog([]string{"a", "b"}, terminal, "a"); err == nil {
		t.Fatal("delay overlapping chain accepted")
	}
	if _, err := NewStatusCatalog([]string{"a", "b"}, nil, "Delayed"); err == nil {
		t.Fatal("empty terminal set accepted")
	}
}
