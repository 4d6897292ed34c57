package user

import (
	"context"
	"errors"
	"testing"

	"github.com/CarLinkRental/CarLinkRental/internal/common/config"
	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
)

func newTestService() *Service {
	return NewService(NewMemRepo(), config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "carlinkrental",
		Audience:  "carlinkrental",
	})
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "  Ada@Example.COM ", Password: "secret"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %q", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret" {
		t.Fatalf("password must be stored hashed")
	}

	// 大小写不同的同一邮箱：重复。
	_, err = svc.Register(ctx, RegisterInput{Name: "Ada2", Email: "ADA@example.com", Password: "secret"})
	var dup *errs.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}

	_, err = svc.Register(ctx, RegisterInput{Name: "NoAt", Email: "not-an-email", Password: "secret"})
	var valErr *errs.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	u, token, exp, err := svc.Login(ctx, "Ada@Example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Email != "ada@example.com" || token == "" || exp.IsZero() {
		t.Fatalf("unexpected login result")
	}

	if _, _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); err == nil {
		t.Fatalf("expected failure for wrong password")
	}
	if _, _, _, err := svc.Login(ctx, "ghost@example.com", "secret"); err == nil {
		t.Fatalf("expected failure for unknown email")
	}
}

func TestSoftDeleteVisibility(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	deleted, err := svc.SoftDelete(ctx, u.ID)
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if !deleted.DeletedAt.Valid {
		t.Fatalf("expected deletion mark")
	}

	// 默认读不到，显式 includeDeleted 才能读到。
	if _, err := svc.Get(ctx, u.ID, false); !errs.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, u.ID, true); err != nil {
		t.Fatalf("Get(includeDeleted): %v", err)
	}

	visible, _, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("expected no visible users, got %d", len(visible))
	}
	all, _, err := svc.List(ctx, Filter{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("List(includeDeleted): %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 user with includeDeleted, got %d", len(all))
	}

	// 软删除用户的邮箱仍然占用。
	_, err = svc.Register(ctx, RegisterInput{Name: "Ada2", Email: "ada@example.com", Password: "secret"})
	var dup *errs.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError for reserved email, got %v", err)
	}

	// 登录也被拒绝。
	if _, _, _, err := svc.Login(ctx, "ada@example.com", "secret"); err == nil {
		t.Fatalf("expected login failure for soft-deleted user")
	}
}

func TestUpdateEmailUniqueness(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	taken := "bob@example.com"
	_, err = svc.Update(ctx, a.ID, Patch{Email: &taken})
	var dup *errs.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}

	// 提交自己当前邮箱不算重复。
	own := "Ada@Example.com"
	if _, err := svc.Update(ctx, a.ID, Patch{Email: &own}); err != nil {
		t.Fatalf("Update with own email: %v", err)
	}
}
