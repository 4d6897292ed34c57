package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
	"github.com/CarLinkRental/CarLinkRental/internal/integrity"
	"github.com/google/uuid"
)

// CarInfo 调度所需的车辆快照（计价用日租价，单位：分）。
type CarInfo struct {
	ID         string
	PriceByDay int64
	Available  bool
}

// CarCatalog 车辆信息提供方；由 catalog 侧在装配时适配。
type CarCatalog interface {
	CarForRent(ctx context.Context, id string) (*CarInfo, error)
}

// CarCatalogFunc 函数适配器。
type CarCatalogFunc func(ctx context.Context, id string) (*CarInfo, error)

func (f CarCatalogFunc) CarForRent(ctx context.Context, id string) (*CarInfo, error) {
	return f(ctx, id)
}

// Service 预订调度器：日期校验、引用校验、重叠检测、计价、落库。
//
// 重叠检查与写入不是原子的，竞态窗口由两层机制关闭：
// - locks 按车辆串行化整个 Create（进程内 KeyLocker 或跨实例 RedisLocker）
// - 存储层 (car_id, day) 唯一占位索引兜底
type Service struct {
	repo  Repository
	cars  CarCatalog
	refs  *integrity.Checker
	locks Locker
	now   func() time.Time
}

func NewService(repo Repository, cars CarCatalog, refs *integrity.Checker, locks Locker) *Service {
	return &Service{
		repo:  repo,
		cars:  cars,
		refs:  refs,
		locks: locks,
		now:   time.Now,
	}
}

// CreateInput 创建预订的入参。
type CreateInput struct {
	CarID     string
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}

// Create 创建预订。时间段按半开区间 [StartDate, EndDate) 处理，
// 首尾相接的两个预订不冲突。价格在此刻按车辆日租价快照计算。
func (s *Service) Create(ctx context.Context, in CreateInput) (*Reservation, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	now := s.now()
	if !in.StartDate.After(now) {
		return nil, &errs.ValidationError{Field: "start_date", Reason: "must be in the future"}
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, &errs.ValidationError{Field: "end_date", Reason: "must be after start_date"}
	}

	if err := s.refs.ValidateReference(ctx, "user_id", integrity.KindUser, in.UserID); err != nil {
		return nil, err
	}
	if err := s.refs.ValidateReference(ctx, "car_id", integrity.KindCar, in.CarID); err != nil {
		return nil, err
	}

	carID := strings.TrimSpace(in.CarID)
	car, err := s.cars.CarForRent(ctx, carID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, &errs.ReferenceError{Field: "car_id", Kind: "car", ID: carID}
		}
		return nil, err
	}
	if !car.Available {
		return nil, &errs.ValidationError{Field: "car_id", Reason: "car is not available for rent"}
	}

	// 串行化点：同一辆车的重叠检查 + 写入全程持锁。
	unlock, err := s.locks.Acquire(ctx, carID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.repo.ListActiveByCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if Overlaps(in.StartDate, in.EndDate, other.StartDate, other.EndDate) {
			return nil, &errs.ConflictError{CarID: carID, Start: in.StartDate, End: in.EndDate}
		}
	}

	res := &Reservation{
		ID:         uuid.NewString(),
		CarID:      carID,
		UserID:     strings.TrimSpace(in.UserID),
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Status:     StatusPending,
		TotalPrice: PriceFor(in.StartDate, in.EndDate, car.PriceByDay),
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Transition 按状态机规则流转预订状态；取消会释放其时间段。
func (s *Service) Transition(ctx context.Context, id string, to Status) (*Reservation, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	switch to {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
	default:
		return nil, &errs.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", to)}
	}

	res, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if err := ApplyTransition(res, to, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Reservation, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Reservation, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, f)
}
