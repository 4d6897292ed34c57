package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
	"gorm.io/gorm"
)

// Filter 用户列表查询条件。IncludeDeleted 为显式可见性开关，
// 默认排除软删除记录。
type Filter struct {
	IncludeDeleted bool
	Offset         int
	Limit          int
}

// Repository 用户仓储接口：GORM 实现与内存实现（测试用）都在本包。
type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string, includeDeleted bool) (*User, error)
	// FindByEmail 在全部记录（含软删除）中按小写 email 查找，
	// 供唯一性预检查使用：软删除用户仍占用其邮箱。
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f Filter) ([]User, int64, error)
	SoftDelete(ctx context.Context, id string) (*User, error)
	// Exists 软删除记录视为不存在（供引用校验）。
	Exists(ctx context.Context, id string) (bool, error)
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, u *User) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &errs.DuplicateError{Scope: "user.email", Value: u.Email}
	}
	return err
}

func (r *Repo) Update(ctx context.Context, u *User) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	err := r.db.WithContext(ctx).Save(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &errs.DuplicateError{Scope: "user.email", Value: u.Email}
	}
	return err
}

func (r *Repo) GetByID(ctx context.Context, id string, includeDeleted bool) (*User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	q := r.db.WithContext(ctx)
	if includeDeleted {
		q = q.Unscoped()
	}
	var u User
	err := q.Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "user", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var u User
	err := r.db.WithContext(ctx).Unscoped().Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "user", ID: email}
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) List(ctx context.Context, f Filter) ([]User, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	q := r.db.WithContext(ctx).Model(&User{})
	if f.IncludeDeleted {
		q = q.Unscoped()
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []User
	if err := q.Order("created_at desc").Offset(f.Offset).Limit(f.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *Repo) SoftDelete(ctx context.Context, id string) (*User, error) {
	u, err := r.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(u).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, true)
}

func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	// 默认作用域已排除软删除记录。
	var count int64
	if err := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
