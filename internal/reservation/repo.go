package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

// Create 先写占位行再写预订记录。两步之间没有事务：
// 占位行撞 (car_id, day) 唯一索引时不能直接判冲突——
// 首尾相接的两笔预订会共享边界日。此时调用方仍持有该车的锁，
// 回退重查一次精确半开区间：真重叠才返回 ConflictError，
// 否则补齐其余占位行（共享日留给先到者）。
// 预订记录写入失败时回收占位行。
func (r *Repo) Create(ctx context.Context, res *Reservation) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}

	days := SlotDays(res.StartDate, res.EndDate)
	slots := make([]Slot, 0, len(days))
	for _, day := range days {
		slots = append(slots, Slot{CarID: res.CarID, Day: day, ReservationID: res.ID})
	}
	if len(slots) > 0 {
		if err := db.Create(&slots).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			existing, lerr := r.ListActiveByCar(ctx, res.CarID)
			if lerr != nil {
				return lerr
			}
			for _, other := range existing {
				if Overlaps(res.StartDate, res.EndDate, other.StartDate, other.EndDate) {
					return &errs.ConflictError{CarID: res.CarID, Start: res.StartDate, End: res.EndDate}
				}
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&slots).Error; err != nil {
				return err
			}
		}
	}

	if err := db.Create(res).Error; err != nil {
		_ = db.Where("reservation_id = ?", res.ID).Delete(&Slot{}).Error
		return err
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, res *Reservation) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if err := db.Save(res).Error; err != nil {
		return err
	}
	// 取消即释放时间段：后续重叠检查和兜底索引都不再把它算在内。
	if res.Status == StatusCancelled {
		return db.Where("reservation_id = ?", res.ID).Delete(&Slot{}).Error
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Reservation, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var res Reservation
	err := db.Where("id = ?", id).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "reservation", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *Repo) ListActiveByCar(ctx context.Context, carID string) ([]Reservation, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var out []Reservation
	err := db.Where("car_id = ? AND status <> ?", carID, StatusCancelled).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List 支持按 user_id / car_id / status 过滤 + 分页。
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Reservation, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := db.Model(&Reservation{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.CarID != "" {
		q = q.Where("car_id = ?", f.CarID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []Reservation
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	if err := db.Model(&Reservation{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) IDsByCarIDs(ctx context.Context, carIDs []string) ([]string, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var ids []string
	err := db.Model(&Reservation{}).Where("car_id IN ?", carIDs).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repo) DeleteByIDs(ctx context.Context, ids []string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if len(ids) == 0 {
		return nil
	}
	if err := db.Where("reservation_id IN ?", ids).Delete(&Slot{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&Reservation{}).Error
}
