package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
	"gorm.io/gorm"
)

// MemRepo 内存实现：测试与本地联调使用。
type MemRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemRepo() *MemRepo {
	return &MemRepo{users: make(map[string]User)}
}

func (r *MemRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return &errs.DuplicateError{Scope: "user.email", Value: u.Email}
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemRepo) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.users {
		if id != u.ID && existing.Email == u.Email {
			return &errs.DuplicateError{Scope: "user.email", Value: u.Email}
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id string, includeDeleted bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok || (!includeDeleted && u.DeletedAt.Valid) {
		return nil, &errs.NotFoundError{Kind: "user", ID: id}
	}
	out := u
	return &out, nil
}

func (r *MemRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, &errs.NotFoundError{Kind: "user", ID: email}
}

func (r *MemRepo) List(_ context.Context, f Filter) ([]User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		if !f.IncludeDeleted && u.DeletedAt.Valid {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[f.Offset:end], total, nil
}

func (r *MemRepo) SoftDelete(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, &errs.NotFoundError{Kind: "user", ID: id}
	}
	u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.users[id] = u
	out := u
	return &out, nil
}

func (r *MemRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return ok && !u.DeletedAt.Valid, nil
}
