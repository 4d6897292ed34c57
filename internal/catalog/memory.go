package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
	"gorm.io/gorm"
)

// 内存仓储实现：测试与本地联调使用，语义与 GORM 实现保持一致
// （包括把唯一索引冲突报成 DuplicateError 这一层兜底）。

type MemStateRepo struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemStateRepo() *MemStateRepo {
	return &MemStateRepo{states: make(map[string]State)}
}

func (r *MemStateRepo) Create(_ context.Context, s *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.states {
		if existing.Name == s.Name {
			return &errs.DuplicateError{Scope: "state.name", Value: s.Name}
		}
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r.states[s.ID] = *s
	return nil
}

func (r *MemStateRepo) Update(_ context.Context, s *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.states {
		if id != s.ID && existing.Name == s.Name {
			return &errs.DuplicateError{Scope: "state.name", Value: s.Name}
		}
	}
	r.states[s.ID] = *s
	return nil
}

func (r *MemStateRepo) GetByID(_ context.Context, id string) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.states[id]
	if !ok {
		return nil, &errs.NotFoundError{Kind: "state", ID: id}
	}
	out := s
	return &out, nil
}

func (r *MemStateRepo) FindByName(_ context.Context, name string) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.states {
		if s.Name == name {
			out := s
			return &out, nil
		}
	}
	return nil, &errs.NotFoundError{Kind: "state", ID: name}
}

func (r *MemStateRepo) List(_ context.Context, offset, limit int) ([]State, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]State, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, offset, limit), int64(len(r.states)), nil
}

func (r *MemStateRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.states[id]
	return ok, nil
}

func (r *MemStateRepo) DeleteByIDs(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.states, id)
	}
	return nil
}

type MemCityRepo struct {
	mu     sync.RWMutex
	cities map[string]City
}

func NewMemCityRepo() *MemCityRepo {
	return &MemCityRepo{cities: make(map[string]City)}
}

func (r *MemCityRepo) Create(_ context.Context, c *City) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.cities {
		if existing.StateID == c.StateID && existing.Name == c.Name {
			return &errs.DuplicateError{Scope: "city.state_id+name", Value: c.Name}
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.cities[c.ID] = *c
	return nil
}

func (r *MemCityRepo) Update(_ context.Context, c *City) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.cities {
		if id != c.ID && existing.StateID == c.StateID && existing.Name == c.Name {
			return &errs.DuplicateError{Scope: "city.state_id+name", Value: c.Name}
		}
	}
	r.cities[c.ID] = *c
	return nil
}

func (r *MemCityRepo) GetByID(_ context.Context, id string) (*City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cities[id]
	if !ok {
		return nil, &errs.NotFoundError{Kind: "city", ID: id}
	}
	out := c
	return &out, nil
}

func (r *MemCityRepo) FindByStateAndName(_ context.Context, stateID, name string) (*City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cities {
		if c.StateID == stateID && c.Name == name {
			out := c
			return &out, nil
		}
	}
	return nil, &errs.NotFoundError{Kind: "city", ID: name}
}

func (r *MemCityRepo) List(_ context.Context, f CityFilter) ([]City, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]City, 0, len(r.cities))
	for _, c := range r.cities {
		if f.StateID != "" && c.StateID != f.StateID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	return page(out, f.Offset, f.Limit), total, nil
}

func (r *MemCityRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cities[id]
	return ok, nil
}

func (r *MemCityRepo) IDsByStateIDs(_ context.Context, stateIDs []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, c := range r.cities {
		if containsString(stateIDs, c.StateID) {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (r *MemCityRepo) DeleteByIDs(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.cities, id)
	}
	return nil
}

type MemLocationRepo struct {
	mu        sync.RWMutex
	locations map[string]Location
}

func NewMemLocationRepo() *MemLocationRepo {
	return &MemLocationRepo{locations: make(map[string]Location)}
}

func (r *MemLocationRepo) Create(_ context.Context, l *Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	r.locations[l.ID] = *l
	return nil
}

func (r *MemLocationRepo) Update(_ context.Context, l *Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID] = *l
	return nil
}

func (r *MemLocationRepo) GetByID(_ context.Context, id string, includeDeleted bool) (*Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.locations[id]
	if !ok || (!includeDeleted && l.DeletedAt.Valid) {
		return nil, &errs.NotFoundError{Kind: "location", ID: id}
	}
	out := l
	return &out, nil
}

func (r *MemLocationRepo) List(_ context.Context, f LocationFilter) ([]Location, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Location, 0, len(r.locations))
	for _, l := range r.locations {
		if !f.IncludeDeleted && l.DeletedAt.Valid {
			continue
		}
		if f.CityID != "" && l.CityID != f.CityID {
			continue
		}
		if f.UserID != "" && l.UserID != f.UserID {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	return page(out, f.Offset, f.Limit), total, nil
}

func (r *MemLocationRepo) SoftDelete(_ context.Context, id string) (*Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locations[id]
	if !ok || l.DeletedAt.Valid {
		return nil, &errs.NotFoundError{Kind: "location", ID: id}
	}
	l.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.locations[id] = l
	out := l
	return &out, nil
}

func (r *MemLocationRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.locations[id]
	return ok && !l.DeletedAt.Valid, nil
}

func (r *MemLocationRepo) IDsByCityIDs(_ context.Context, cityIDs []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, l := range r.locations {
		if containsString(cityIDs, l.CityID) {
			ids = append(ids, l.ID)
		}
	}
	return ids, nil
}

func (r *MemLocationRepo) DeleteByIDs(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.locations, id)
	}
	return nil
}

type MemCarRepo struct {
	mu   sync.RWMutex
	cars map[string]Car
}

func NewMemCarRepo() *MemCarRepo {
	return &MemCarRepo{cars: make(map[string]Car)}
}

func (r *MemCarRepo) Create(_ context.Context, c *Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.cars {
		if existing.RegistrationNumber == c.RegistrationNumber {
			return &errs.DuplicateError{Scope: "car.registration_number", Value: c.RegistrationNumber}
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.cars[c.ID] = *c
	return nil
}

func (r *MemCarRepo) Update(_ context.Context, c *Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.cars {
		if id != c.ID && existing.RegistrationNumber == c.RegistrationNumber {
			return &errs.DuplicateError{Scope: "car.registration_number", Value: c.RegistrationNumber}
		}
	}
	r.cars[c.ID] = *c
	return nil
}

func (r *MemCarRepo) GetByID(_ context.Context, id string) (*Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cars[id]
	if !ok {
		return nil, &errs.NotFoundError{Kind: "car", ID: id}
	}
	out := c
	return &out, nil
}

func (r *MemCarRepo) FindByRegistration(_ context.Context, registration string) (*Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cars {
		if c.RegistrationNumber == registration {
			out := c
			return &out, nil
		}
	}
	return nil, &errs.NotFoundError{Kind: "car", ID: registration}
}

func (r *MemCarRepo) List(_ context.Context, f CarFilter) ([]Car, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Car, 0, len(r.cars))
	for _, c := range r.cars {
		if f.LocationID != "" && c.LocationID != f.LocationID {
			continue
		}
		if f.Available != nil && c.Available != *f.Available {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	return page(out, f.Offset, f.Limit), total, nil
}

func (r *MemCarRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cars[id]
	return ok, nil
}

func (r *MemCarRepo) IDsByLocationIDs(_ context.Context, locationIDs []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, c := range r.cars {
		if containsString(locationIDs, c.LocationID) {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (r *MemCarRepo) DeleteByIDs(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.cars, id)
	}
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.TrimSpace(s) == needle {
			return true
		}
	}
	return false
}
