package reservation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
)

// MemRepo 内存实现：测试与本地联调使用，占位行语义与 GORM 实现一致。
type MemRepo struct {
	mu           sync.RWMutex
	reservations map[string]Reservation
	slots        map[string]string // "carID|day" -> reservationID
}

func NewMemRepo() *MemRepo {
	return &MemRepo{
		reservations: make(map[string]Reservation),
		slots:        make(map[string]string),
	}
}

func (r *MemRepo) Create(_ context.Context, res *Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	days := SlotDays(res.StartDate, res.EndDate)
	for _, day := range days {
		otherID, taken := r.slots[res.CarID+"|"+day]
		if !taken {
			continue
		}
		// 自然日撞车不等于真重叠：首尾相接的两笔预订会共享边界日，
		// 撞上时回退到精确半开区间判定。
		other, ok := r.reservations[otherID]
		if ok && other.Status != StatusCancelled &&
			Overlaps(res.StartDate, res.EndDate, other.StartDate, other.EndDate) {
			return &errs.ConflictError{CarID: res.CarID, Start: res.StartDate, End: res.EndDate}
		}
	}
	for _, day := range days {
		if _, taken := r.slots[res.CarID+"|"+day]; !taken {
			r.slots[res.CarID+"|"+day] = res.ID
		}
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	r.reservations[res.ID] = *res
	return nil
}

func (r *MemRepo) Update(_ context.Context, res *Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reservations[res.ID] = *res
	if res.Status == StatusCancelled {
		for key, id := range r.slots {
			if id == res.ID {
				delete(r.slots, key)
			}
		}
	}
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id string) (*Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, &errs.NotFoundError{Kind: "reservation", ID: id}
	}
	out := res
	return &out, nil
}

func (r *MemRepo) ListActiveByCar(_ context.Context, carID string) ([]Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Reservation
	for _, res := range r.reservations {
		if res.CarID == carID && res.Status != StatusCancelled {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *MemRepo) List(_ context.Context, f ListFilter) ([]Reservation, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Reservation, 0, len(r.reservations))
	for _, res := range r.reservations {
		if f.UserID != "" && res.UserID != f.UserID {
			continue
		}
		if f.CarID != "" && res.CarID != f.CarID {
			continue
		}
		if f.Status != "" && res.Status != f.Status {
			continue
		}
		out = append(out, res)
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

func (r *MemRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.reservations[id]
	return ok, nil
}

func (r *MemRepo) IDsByCarIDs(_ context.Context, carIDs []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := make(map[string]struct{}, len(carIDs))
	for _, id := range carIDs {
		set[id] = struct{}{}
	}
	var ids []string
	for _, res := range r.reservations {
		if _, ok := set[res.CarID]; ok {
			ids = append(ids, res.ID)
		}
	}
	return ids, nil
}

func (r *MemRepo) DeleteByIDs(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.reservations, id)
		for key, slotID := range r.slots {
			if slotID == id {
				delete(r.slots, key)
			}
		}
	}
	return nil
}
