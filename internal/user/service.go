package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CarLinkRental/CarLinkRental/internal/common/auth"
	"github.com/CarLinkRental/CarLinkRental/internal/common/config"
	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
	"github.com/google/uuid"
)

// Service 封装用户领域的核心用例（不依赖 gRPC / HTTP）。
type Service struct {
	repo    Repository
	authCfg config.AuthConfig
}

func NewService(repo Repository, authCfg config.AuthConfig) *Service {
	return &Service{repo: repo, authCfg: authCfg}
}

// RegisterInput 注册入参。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// Patch 部分更新：nil 字段表示不变。
type Patch struct {
	Name    *string
	Email   *string
	IsAdmin *bool
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &errs.ValidationError{Field: "name", Reason: "required"}
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, &errs.ValidationError{Field: "password", Reason: "required"}
	}
	if err := s.checkEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password, salt)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		IsAdmin:      in.IsAdmin,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 校验凭证并签发 access token。
// 身份只在这里产生，核心各服务只消费解析后的 actor id。
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, time.Time, error) {
	if s == nil || s.repo == nil {
		return nil, "", time.Time{}, fmt.Errorf("service not initialized")
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	u, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil || u.DeletedAt.Valid {
		return nil, "", time.Time{}, &errs.ValidationError{Field: "email", Reason: "invalid credentials"}
	}
	if !VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		return nil, "", time.Time{}, &errs.ValidationError{Field: "email", Reason: "invalid credentials"}
	}

	roles := []string{"user"}
	if u.IsAdmin {
		roles = append(roles, "admin")
	}
	token, exp, err := auth.GenerateAccessToken(s.authCfg, u.ID, roles, 24*time.Hour)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

func (s *Service) Get(ctx context.Context, id string, includeDeleted bool) (*User, error) {
	return s.repo.GetByID(ctx, id, includeDeleted)
}

func (s *Service) List(ctx context.Context, f Filter) ([]User, int64, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*User, error) {
	u, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		if email != u.Email {
			if err := s.checkEmailFree(ctx, email, u.ID); err != nil {
				return nil, err
			}
			u.Email = email
		}
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, &errs.ValidationError{Field: "name", Reason: "required"}
		}
		u.Name = name
	}
	if patch.IsAdmin != nil {
		u.IsAdmin = *patch.IsAdmin
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SoftDelete 软删除用户：只翻转可见性，不触碰其名下门店/预订。
func (s *Service) SoftDelete(ctx context.Context, id string) (*User, error) {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) checkEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return &errs.DuplicateError{Scope: "user.email", Value: email}
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", &errs.ValidationError{Field: "email", Reason: "invalid format"}
	}
	return email, nil
}
