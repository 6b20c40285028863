package orderstatus

import (
	"errors"
	"testing"
)

func TestCanTransitionAllowedEdges(t *testing.T) {
	tests := []struct {
		from string
		to   string
	}{
		{PENDING, CONFIRMED},
		{PENDING, CANCELLED},
		{CONFIRMED, SHIPPED},
		{SHIPPED, DELIVERED},
	}

	for _, tt := range tests {
		if !CanTransition(tt.from, tt.to) {
			t.Fatalf("expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}
}

func TestCanTransitionDeniesEverythingElse(t *testing.T) {
	allowed := map[[2]string]bool{
		{PENDING, CONFIRMED}: true,
		{PENDING, CANCELLED}: true,
		{CONFIRMED, SHIPPED}: true,
		{SHIPPED, DELIVERED}: true,
	}

	for _, from := range All {
		for _, to := range All {
			want := allowed[[2]string{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition("archived", CONFIRMED) {
		t.Fatal("unknown source status must be denied")
	}
	if CanTransition(PENDING, "archived") {
		t.Fatal("unknown target status must be denied")
	}
	if CanTransition("", "") {
		t.Fatal("empty statuses must be denied")
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []string{DELIVERED, CANCELLED, REFUNDED, PROCESSING} {
		if !IsTerminal(s) {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []string{PENDING, CONFIRMED, SHIPPED} {
		if IsTerminal(s) {
			t.Fatalf("expected %s not to be terminal", s)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	if err := ValidateTransition(PENDING, CONFIRMED); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ValidateTransition(PENDING, SHIPPED)
	if err == nil {
		t.Fatal("expected error for pending -> shipped")
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestIsValid(t *testing.T) {
	for _, s := range All {
		if !IsValid(s) {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if IsValid("unknown") {
		t.Fatal("unknown must not be valid")
	}
}
