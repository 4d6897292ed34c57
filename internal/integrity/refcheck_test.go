package integrity

import (
	"context"
	"errors"
	"testing"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
)

func TestValidateReference(t *testing.T) {
	ctx := context.Background()
	c := NewChecker()
	c.Register(KindState, func(ctx context.Context, id string) (bool, error) {
		return id == "s-1", nil
	})

	if err := c.ValidateReference(ctx, "state_id", KindState, "s-1"); err != nil {
		t.Fatalf("expected valid reference, got %v", err)
	}

	err := c.ValidateReference(ctx, "state_id", KindState, "s-missing")
	var refErr *errs.ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected ReferenceError, got %v", err)
	}
	if refErr.Field != "state_id" || refErr.ID != "s-missing" {
		t.Fatalf("unexpected ReferenceError fields: %+v", refErr)
	}

	err = c.ValidateReference(ctx, "state_id", KindState, "  ")
	var valErr *errs.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for blank id, got %v", err)
	}
}

func TestValidateReferenceUnregisteredKind(t *testing.T) {
	c := NewChecker()
	if err := c.ValidateReference(context.Background(), "car_id", KindCar, "c-1"); err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
}
