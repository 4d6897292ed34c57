package errs

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestErrorsMatchWithAs(t *testing.T) {
	wrapped := fmt.Errorf("create state: %w", &DuplicateError{Scope: "state.name", Value: "California"})
	if !IsDuplicate(wrapped) {
		t.Fatalf("expected wrapped DuplicateError to match")
	}
	if IsNotFound(wrapped) {
		t.Fatalf("DuplicateError should not match NotFoundError")
	}

	var cf *CascadeFailure
	err := fmt.Errorf("delete: %w", &CascadeFailure{Level: "location", Err: errors.New("db gone")})
	if !errors.As(err, &cf) {
		t.Fatalf("expected CascadeFailure to match")
	}
	if cf.Level != "location" {
		t.Fatalf("unexpected level: %q", cf.Level)
	}
	if cf.Unwrap() == nil {
		t.Fatalf("expected wrapped cause")
	}
}

func TestGRPCCode(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{&ValidationError{Field: "start_date", Reason: "in the past"}, codes.InvalidArgument},
		{&ReferenceError{Field: "car_id", Kind: "car", ID: "x"}, codes.InvalidArgument},
		{&DuplicateError{Scope: "car.registration_number"}, codes.AlreadyExists},
		{&ConflictError{CarID: "x"}, codes.AlreadyExists},
		{&StateTransitionError{From: "completed", To: "pending"}, codes.FailedPrecondition},
		{&NotFoundError{Kind: "city", ID: "x"}, codes.NotFound},
		{&CascadeFailure{Level: "car", Err: errors.New("boom")}, codes.Aborted},
		{errors.New("db unreachable"), codes.Internal},
	}
	for _, c := range cases {
		if got := GRPCCode(c.err); got != c.want {
			t.Fatalf("GRPCCode(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
