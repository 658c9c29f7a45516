package order

import (
	"regexp"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusReturned, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusReturned, true},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusReturned, StatusDelivered, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []Status{StatusCancelled, StatusReturned} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if Status("BOGUS").Terminal() {
		t.Error("unknown status must not be terminal")
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(StatusPending) || !ValidStatus(StatusReturned) {
		t.Error("known statuses should validate")
	}
	if ValidStatus(Status("BOGUS")) || ValidStatus(Status("")) {
		t.Error("unknown statuses should not validate")
	}
}

func TestNewNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{8}-[A-Z0-9]{6}$`)
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		n := NewNumber(now)
		if !pattern.MatchString(n) {
			t.Fatalf("bad order number %q", n)
		}
		if n[4:12] != "20250314" {
			t.Fatalf("expected date part 20250314, got %q", n)
		}
		seen[n] = true
	}
	// 200 draws out of 36^6 should essentially never collide
	if len(seen) < 195 {
		t.Fatalf("suspiciously many collisions: %d unique of 200", len(seen))
	}
}
