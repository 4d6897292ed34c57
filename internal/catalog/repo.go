package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
	"gorm.io/gorm"
)

// GORM/MySQL 仓储实现。唯一索引是唯一性约束的最终兜底：
// 服务层的预检查和写入不是原子的，撞索引时把驱动错误翻译成 DuplicateError。

type StateRepo struct {
	db *gorm.DB
}

func NewStateRepo(db *gorm.DB) *StateRepo {
	return &StateRepo{db: db}
}

func (r *StateRepo) Create(ctx context.Context, s *State) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	err := r.db.WithContext(ctx).Create(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &errs.DuplicateError{Scope: "state.name", Value: s.Name}
	}
	return err
}

func (r *StateRepo) Update(ctx context.Context, s *State) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	err := r.db.WithContext(ctx).Save(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &errs.DuplicateError{Scope: "state.name", Value: s.Name}
	}
	return err
}

func (r *StateRepo) GetByID(ctx context.Context, id string) (*State, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var s State
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "state", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StateRepo) FindByName(ctx context.Context, name string) (*State, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var s State
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "state", ID: name}
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StateRepo) List(ctx context.Context, offset, limit int) ([]State, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := r.db.WithContext(ctx).Model(&State{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var states []State
	if err := q.Order("name asc").Offset(offset).Limit(limit).Find(&states).Error; err != nil {
		return nil, 0, err
	}
	return states, total, nil
}

func (r *StateRepo) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.db, &State{}, id)
}

func (r *StateRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	return deleteByIDs(ctx, r.db, &State{}, ids)
}

type CityRepo struct {
	db *gorm.DB
}

func NewCityRepo(db *gorm.DB) *CityRepo {
	return &CityRepo{db: db}
}

func (r *CityRepo) Create(ctx context.Context, c *City) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	err := r.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &errs.DuplicateError{Scope: "city.state_id+name", Value: c.Name}
	}
	return err
}

func (r *CityRepo) Update(ctx context.Context, c *City) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	err := r.db.WithContext(ctx).Save(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &errs.DuplicateError{Scope: "city.state_id+name", Value: c.Name}
	}
	return err
}

func (r *CityRepo) GetByID(ctx context.Context, id string) (*City, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c City
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "city", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CityRepo) FindByStateAndName(ctx context.Context, stateID, name string) (*City, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c City
	err := r.db.WithContext(ctx).Where("state_id = ? AND name = ?", stateID, name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "city", ID: name}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CityRepo) List(ctx context.Context, f CityFilter) ([]City, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	q := r.db.WithContext(ctx).Model(&City{})
	if f.StateID != "" {
		q = q.Where("state_id = ?", f.StateID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cities []City
	if err := q.Order("name asc").Offset(f.Offset).Limit(f.Limit).Find(&cities).Error; err != nil {
		return nil, 0, err
	}
	return cities, total, nil
}

func (r *CityRepo) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.db, &City{}, id)
}

func (r *CityRepo) IDsByStateIDs(ctx context.Context, stateIDs []string) ([]string, error) {
	return idsByParent(ctx, r.db, &City{}, "state_id", stateIDs)
}

func (r *CityRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	return deleteByIDs(ctx, r.db, &City{}, ids)
}

type LocationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Create(ctx context.Context, l *Location) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LocationRepo) Update(ctx context.Context, l *Location) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LocationRepo) GetByID(ctx context.Context, id string, includeDeleted bool) (*Location, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	q := r.db.WithContext(ctx)
	if includeDeleted {
		q = q.Unscoped()
	}
	var l Location
	err := q.Where("id = ?", id).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "location", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepo) List(ctx context.Context, f LocationFilter) ([]Location, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	q := r.db.WithContext(ctx).Model(&Location{})
	if f.IncludeDeleted {
		q = q.Unscoped()
	}
	if f.CityID != "" {
		q = q.Where("city_id = ?", f.CityID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var locations []Location
	if err := q.Order("created_at desc").Offset(f.Offset).Limit(f.Limit).Find(&locations).Error; err != nil {
		return nil, 0, err
	}
	return locations, total, nil
}

func (r *LocationRepo) SoftDelete(ctx context.Context, id string) (*Location, error) {
	l, err := r.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(l).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, true)
}

func (r *LocationRepo) Exists(ctx context.Context, id string) (bool, error) {
	// 默认作用域已排除软删除记录，引用校验正好需要这个语义。
	return existsByID(ctx, r.db, &Location{}, id)
}

func (r *LocationRepo) IDsByCityIDs(ctx context.Context, cityIDs []string) ([]string, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var ids []string
	err := r.db.WithContext(ctx).Unscoped().Model(&Location{}).
		Where("city_id IN ?", cityIDs).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *LocationRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(&Location{}).Error
}

type CarRepo struct {
	db *gorm.DB
}

func NewCarRepo(db *gorm.DB) *CarRepo {
	return &CarRepo{db: db}
}

func (r *CarRepo) Create(ctx context.Context, c *Car) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	err := r.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &errs.DuplicateError{Scope: "car.registration_number", Value: c.RegistrationNumber}
	}
	return err
}

func (r *CarRepo) Update(ctx context.Context, c *Car) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	err := r.db.WithContext(ctx).Save(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &errs.DuplicateError{Scope: "car.registration_number", Value: c.RegistrationNumber}
	}
	return err
}

func (r *CarRepo) GetByID(ctx context.Context, id string) (*Car, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Car
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "car", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CarRepo) FindByRegistration(ctx context.Context, registration string) (*Car, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Car
	err := r.db.WithContext(ctx).Where("registration_number = ?", registration).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "car", ID: registration}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CarRepo) List(ctx context.Context, f CarFilter) ([]Car, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	q := r.db.WithContext(ctx).Model(&Car{})
	if f.LocationID != "" {
		q = q.Where("location_id = ?", f.LocationID)
	}
	if f.Available != nil {
		q = q.Where("available = ?", *f.Available)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cars []Car
	if err := q.Order("created_at desc").Offset(f.Offset).Limit(f.Limit).Find(&cars).Error; err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

func (r *CarRepo) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.db, &Car{}, id)
}

func (r *CarRepo) IDsByLocationIDs(ctx context.Context, locationIDs []string) ([]string, error) {
	return idsByParent(ctx, r.db, &Car{}, "location_id", locationIDs)
}

func (r *CarRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	return deleteByIDs(ctx, r.db, &Car{}, ids)
}

func existsByID(ctx context.Context, db *gorm.DB, model any, id string) (bool, error) {
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func idsByParent(ctx context.Context, db *gorm.DB, model any, fk string, parentIDs []string) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var ids []string
	err := db.WithContext(ctx).Model(model).Where(fk+" IN ?", parentIDs).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func deleteByIDs(ctx context.Context, db *gorm.DB, model any, ids []string) error {
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).Where("id IN ?", ids).Delete(model).Error
}
