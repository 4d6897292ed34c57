package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
	"github.com/CarLinkRental/CarLinkRental/internal/integrity"
	"github.com/google/uuid"
)

// Service 封装州/城市/门店/车辆层级的核心用例（不依赖 gRPC / HTTP）。
// 写入顺序固定：引用校验 -> 规范化 + 唯一性预检查 -> 落库；
// 预检查与写入不是原子的，真正的唯一性由存储层唯一索引兜底。
type Service struct {
	states    StateRepository
	cities    CityRepository
	locations LocationRepository
	cars      CarRepository

	refs    *integrity.Checker
	cascade *integrity.Cascader
}

func NewService(
	states StateRepository,
	cities CityRepository,
	locations LocationRepository,
	cars CarRepository,
	refs *integrity.Checker,
	cascade *integrity.Cascader,
) *Service {
	return &Service{
		states:    states,
		cities:    cities,
		locations: locations,
		cars:      cars,
		refs:      refs,
		cascade:   cascade,
	}
}

// RegisterProbes 把本包各实体的存在性探测挂到引用校验器上。
func (s *Service) RegisterProbes(c *integrity.Checker) {
	c.Register(integrity.KindState, s.states.Exists)
	c.Register(integrity.KindCity, s.cities.Exists)
	c.Register(integrity.KindLocation, s.locations.Exists)
	c.Register(integrity.KindCar, s.cars.Exists)
}

// ---- State ----

func (s *Service) CreateState(ctx context.Context, name string) (*State, error) {
	if s == nil || s.states == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, &errs.ValidationError{Field: "name", Reason: "required"}
	}
	if err := s.checkStateNameFree(ctx, normalized, ""); err != nil {
		return nil, err
	}
	st := &State{ID: uuid.NewString(), Name: normalized}
	if err := s.states.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) UpdateState(ctx context.Context, id, name string) (*State, error) {
	st, err := s.states.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, &errs.ValidationError{Field: "name", Reason: "required"}
	}
	if normalized != st.Name {
		if err := s.checkStateNameFree(ctx, normalized, st.ID); err != nil {
			return nil, err
		}
	}
	st.Name = normalized
	if err := s.states.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) GetState(ctx context.Context, id string) (*State, error) {
	return s.states.GetByID(ctx, id)
}

func (s *Service) ListStates(ctx context.Context, offset, limit int) ([]State, int64, error) {
	return s.states.List(ctx, offset, limit)
}

// DeleteState 删除州及其下全部城市/门店/车辆/预订（级联）。
func (s *Service) DeleteState(ctx context.Context, id string) error {
	if _, err := s.states.GetByID(ctx, id); err != nil {
		return err
	}
	return s.cascade.Delete(ctx, integrity.KindState, []string{id})
}

func (s *Service) checkStateNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.states.FindByName(ctx, name)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return &errs.DuplicateError{Scope: "state.name", Value: name}
	}
	return nil
}

// ---- City ----

// CityInput 创建城市的入参。
type CityInput struct {
	Name    string
	StateID string
}

// CityPatch 部分更新：nil 字段表示不变。
type CityPatch struct {
	Name    *string
	StateID *string
}

func (s *Service) CreateCity(ctx context.Context, in CityInput) (*City, error) {
	if s == nil || s.cities == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := s.refs.ValidateReference(ctx, "state_id", integrity.KindState, in.StateID); err != nil {
		return nil, err
	}
	normalized := NormalizeName(in.Name)
	if normalized == "" {
		return nil, &errs.ValidationError{Field: "name", Reason: "required"}
	}
	stateID := strings.TrimSpace(in.StateID)
	if err := s.checkCityNameFree(ctx, stateID, normalized, ""); err != nil {
		return nil, err
	}
	c := &City{ID: uuid.NewString(), Name: normalized, StateID: stateID}
	if err := s.cities.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCity(ctx context.Context, id string, patch CityPatch) (*City, error) {
	c, err := s.cities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.StateID != nil && strings.TrimSpace(*patch.StateID) != c.StateID {
		if err := s.refs.ValidateReference(ctx, "state_id", integrity.KindState, *patch.StateID); err != nil {
			return nil, err
		}
		c.StateID = strings.TrimSpace(*patch.StateID)
	}
	if patch.Name != nil {
		normalized := NormalizeName(*patch.Name)
		if normalized == "" {
			return nil, &errs.ValidationError{Field: "name", Reason: "required"}
		}
		c.Name = normalized
	}
	// 名称或所属州任一变化都要在新作用域下重查唯一性。
	if patch.Name != nil || patch.StateID != nil {
		if err := s.checkCityNameFree(ctx, c.StateID, c.Name, c.ID); err != nil {
			return nil, err
		}
	}
	if err := s.cities.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetCity(ctx context.Context, id string) (*City, error) {
	return s.cities.GetByID(ctx, id)
}

func (s *Service) ListCities(ctx context.Context, f CityFilter) ([]City, int64, error) {
	return s.cities.List(ctx, f)
}

func (s *Service) DeleteCity(ctx context.Context, id string) error {
	if _, err := s.cities.GetByID(ctx, id); err != nil {
		return err
	}
	return s.cascade.Delete(ctx, integrity.KindCity, []string{id})
}

// DeleteCitiesByState 批量级联：先把州下城市解析成 id 集合，
// 再对整批做一次逐层级联（每层一次批量操作，而不是逐条往返）。
func (s *Service) DeleteCitiesByState(ctx context.Context, stateID string) error {
	ids, err := s.cities.IDsByStateIDs(ctx, []string{strings.TrimSpace(stateID)})
	if err != nil {
		return err
	}
	return s.cascade.Delete(ctx, integrity.KindCity, ids)
}

func (s *Service) checkCityNameFree(ctx context.Context, stateID, name, selfID string) error {
	existing, err := s.cities.FindByStateAndName(ctx, stateID, name)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return &errs.DuplicateError{Scope: "city.state_id+name", Value: name}
	}
	return nil
}

// ---- Location ----

// LocationInput 创建门店的入参。
type LocationInput struct {
	Name        string
	Address     string
	PhoneNumber string
	CityID      string
	UserID      string
}

// LocationPatch 部分更新：nil 字段表示不变。
type LocationPatch struct {
	Name        *string
	Address     *string
	PhoneNumber *string
	CityID      *string
}

func (s *Service) CreateLocation(ctx context.Context, in LocationInput) (*Location, error) {
	if s == nil || s.locations == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := s.refs.ValidateReference(ctx, "city_id", integrity.KindCity, in.CityID); err != nil {
		return nil, err
	}
	if err := s.refs.ValidateReference(ctx, "user_id", integrity.KindUser, in.UserID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &errs.ValidationError{Field: "name", Reason: "required"}
	}
	phone, err := NormalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, err
	}
	l := &Location{
		ID:          uuid.NewString(),
		Name:        name,
		Address:     strings.TrimSpace(in.Address),
		PhoneNumber: phone,
		CityID:      strings.TrimSpace(in.CityID),
		UserID:      strings.TrimSpace(in.UserID),
	}
	if err := s.locations.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) UpdateLocation(ctx context.Context, id string, patch LocationPatch) (*Location, error) {
	l, err := s.locations.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if patch.CityID != nil && strings.TrimSpace(*patch.CityID) != l.CityID {
		if err := s.refs.ValidateReference(ctx, "city_id", integrity.KindCity, *patch.CityID); err != nil {
			return nil, err
		}
		l.CityID = strings.TrimSpace(*patch.CityID)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, &errs.ValidationError{Field: "name", Reason: "required"}
		}
		l.Name = name
	}
	if patch.Address != nil {
		l.Address = strings.TrimSpace(*patch.Address)
	}
	if patch.PhoneNumber != nil {
		phone, err := NormalizePhone(*patch.PhoneNumber)
		if err != nil {
			return nil, err
		}
		l.PhoneNumber = phone
	}
	if err := s.locations.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) GetLocation(ctx context.Context, id string, includeDeleted bool) (*Location, error) {
	return s.locations.GetByID(ctx, id, includeDeleted)
}

func (s *Service) ListLocations(ctx context.Context, f LocationFilter) ([]Location, int64, error) {
	return s.locations.List(ctx, f)
}

// SoftDeleteLocation 软删除：只翻转可见性，不级联后代。
func (s *Service) SoftDeleteLocation(ctx context.Context, id string) (*Location, error) {
	return s.locations.SoftDelete(ctx, id)
}

// DeleteLocation 物理删除门店及其车辆/预订；软删除标记不阻止硬删除。
func (s *Service) DeleteLocation(ctx context.Context, id string) error {
	if _, err := s.locations.GetByID(ctx, id, true); err != nil {
		return err
	}
	return s.cascade.Delete(ctx, integrity.KindLocation, []string{id})
}

// ---- Car ----

// CarInput 创建车辆的入参。
type CarInput struct {
	LocationID         string
	Brand              string
	Model              string
	Year               int
	PriceByDay         int64 // 单位：分
	RegistrationNumber string
	FuelType           string
	Transmission       string
	Seats              int
	ImageURL           string
	Mileage            int
	Features           []string
}

// CarPatch 部分更新：nil 字段表示不变。
type CarPatch struct {
	LocationID         *string
	Brand              *string
	Model              *string
	Year               *int
	PriceByDay         *int64
	RegistrationNumber *string
	Available          *bool
	FuelType           *string
	Transmission       *string
	Seats              *int
	ImageURL           *string
	Mileage            *int
	Features           []string
}

func (s *Service) CreateCar(ctx context.Context, in CarInput) (*Car, error) {
	if s == nil || s.cars == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := s.refs.ValidateReference(ctx, "location_id", integrity.KindLocation, in.LocationID); err != nil {
		return nil, err
	}
	registration, err := NormalizeRegistration(in.RegistrationNumber)
	if err != nil {
		return nil, err
	}
	if in.PriceByDay <= 0 {
		return nil, &errs.ValidationError{Field: "price_by_day", Reason: "must be positive"}
	}
	if err := s.checkRegistrationFree(ctx, registration, ""); err != nil {
		return nil, err
	}
	c := &Car{
		ID:                 uuid.NewString(),
		LocationID:         strings.TrimSpace(in.LocationID),
		Brand:              strings.TrimSpace(in.Brand),
		Model:              strings.TrimSpace(in.Model),
		Year:               in.Year,
		PriceByDay:         in.PriceByDay,
		RegistrationNumber: registration,
		Available:          true,
		FuelType:           strings.TrimSpace(in.FuelType),
		Transmission:       strings.TrimSpace(in.Transmission),
		Seats:              in.Seats,
		ImageURL:           strings.TrimSpace(in.ImageURL),
		Mileage:            in.Mileage,
		Features:           FeaturesJoin(in.Features),
	}
	if err := s.cars.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCar(ctx context.Context, id string, patch CarPatch) (*Car, error) {
	c, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.LocationID != nil && strings.TrimSpace(*patch.LocationID) != c.LocationID {
		if err := s.refs.ValidateReference(ctx, "location_id", integrity.KindLocation, *patch.LocationID); err != nil {
			return nil, err
		}
		c.LocationID = strings.TrimSpace(*patch.LocationID)
	}
	if patch.RegistrationNumber != nil {
		registration, err := NormalizeRegistration(*patch.RegistrationNumber)
		if err != nil {
			return nil, err
		}
		if registration != c.RegistrationNumber {
			if err := s.checkRegistrationFree(ctx, registration, c.ID); err != nil {
				return nil, err
			}
			c.RegistrationNumber = registration
		}
	}
	if patch.Brand != nil {
		c.Brand = strings.TrimSpace(*patch.Brand)
	}
	if patch.Model != nil {
		c.Model = strings.TrimSpace(*patch.Model)
	}
	if patch.Year != nil {
		c.Year = *patch.Year
	}
	if patch.PriceByDay != nil {
		if *patch.PriceByDay <= 0 {
			return nil, &errs.ValidationError{Field: "price_by_day", Reason: "must be positive"}
		}
		c.PriceByDay = *patch.PriceByDay
	}
	if patch.Available != nil {
		c.Available = *patch.Available
	}
	if patch.FuelType != nil {
		c.FuelType = strings.TrimSpace(*patch.FuelType)
	}
	if patch.Transmission != nil {
		c.Transmission = strings.TrimSpace(*patch.Transmission)
	}
	if patch.Seats != nil {
		c.Seats = *patch.Seats
	}
	if patch.ImageURL != nil {
		c.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.Mileage != nil {
		c.Mileage = *patch.Mileage
	}
	if patch.Features != nil {
		c.Features = FeaturesJoin(patch.Features)
	}
	if err := s.cars.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetCar(ctx context.Context, id string) (*Car, error) {
	return s.cars.GetByID(ctx, id)
}

func (s *Service) ListCars(ctx context.Context, f CarFilter) ([]Car, int64, error) {
	return s.cars.List(ctx, f)
}

// DeleteCar 删除车辆及其全部预订。
func (s *Service) DeleteCar(ctx context.Context, id string) error {
	if _, err := s.cars.GetByID(ctx, id); err != nil {
		return err
	}
	return s.cascade.Delete(ctx, integrity.KindCar, []string{id})
}

// DeleteCarsByLocation 批量级联：按门店解析车辆 id 集合后整批删除。
func (s *Service) DeleteCarsByLocation(ctx context.Context, locationID string) error {
	ids, err := s.cars.IDsByLocationIDs(ctx, []string{strings.TrimSpace(locationID)})
	if err != nil {
		return err
	}
	return s.cascade.Delete(ctx, integrity.KindCar, ids)
}

func (s *Service) checkRegistrationFree(ctx context.Context, registration, selfID string) error {
	existing, err := s.cars.FindByRegistration(ctx, registration)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return &errs.DuplicateError{Scope: "car.registration_number", Value: registration}
	}
	return nil
}
