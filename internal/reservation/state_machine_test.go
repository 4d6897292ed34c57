package reservation

import (
	"errors"
	"testing"
	"time"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusPending, StatusPending, true},
		{StatusConfirmed, StatusConfirmed, true},
		// 终态连原地重放也拒绝。
		{StatusCompleted, StatusCompleted, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestApplyTransitionBookkeeping(t *testing.T) {
	now := time.Now()
	r := &Reservation{ID: "r-1", Status: StatusPending}

	if err := ApplyTransition(r, StatusConfirmed, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if r.Status != StatusConfirmed || r.ConfirmedAt == nil {
		t.Fatalf("expected confirmed with timestamp, got %+v", r)
	}

	if err := ApplyTransition(r, StatusCompleted, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if r.CompletedAt == nil {
		t.Fatalf("expected CompletedAt to be set")
	}

	// 终态不再流转。
	err := ApplyTransition(r, StatusCancelled, now)
	var stErr *errs.StateTransitionError
	if !errors.As(err, &stErr) {
		t.Fatalf("expected StateTransitionError, got %v", err)
	}
	if stErr.From != string(StatusCompleted) || stErr.To != string(StatusCancelled) {
		t.Fatalf("unexpected transition error: %+v", stErr)
	}
}
