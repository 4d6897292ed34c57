package catalog

import "context"

// 仓储接口：领域层只依赖接口，GORM 实现与内存实现（测试用）都在本包。

// CityFilter 城市列表查询条件。
type CityFilter struct {
	StateID string
	Offset  int
	Limit   int
}

// LocationFilter 门店列表查询条件。
// IncludeDeleted 为显式可见性开关：默认排除软删除记录，
// 调用方在调用点显式打开才会包含（避免环境式的隐式过滤）。
type LocationFilter struct {
	CityID         string
	UserID         string
	IncludeDeleted bool
	Offset         int
	Limit          int
}

// CarFilter 车辆列表查询条件。
type CarFilter struct {
	LocationID string
	Available  *bool
	Offset     int
	Limit      int
}

type StateRepository interface {
	Create(ctx context.Context, s *State) error
	Update(ctx context.Context, s *State) error
	GetByID(ctx context.Context, id string) (*State, error)
	FindByName(ctx context.Context, name string) (*State, error)
	List(ctx context.Context, offset, limit int) ([]State, int64, error)
	Exists(ctx context.Context, id string) (bool, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

type CityRepository interface {
	Create(ctx context.Context, c *City) error
	Update(ctx context.Context, c *City) error
	GetByID(ctx context.Context, id string) (*City, error)
	FindByStateAndName(ctx context.Context, stateID, name string) (*City, error)
	List(ctx context.Context, f CityFilter) ([]City, int64, error)
	Exists(ctx context.Context, id string) (bool, error)
	IDsByStateIDs(ctx context.Context, stateIDs []string) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

type LocationRepository interface {
	Create(ctx context.Context, l *Location) error
	Update(ctx context.Context, l *Location) error
	// GetByID 默认不返回软删除记录；includeDeleted 显式打开后才会返回。
	GetByID(ctx context.Context, id string, includeDeleted bool) (*Location, error)
	List(ctx context.Context, f LocationFilter) ([]Location, int64, error)
	// SoftDelete 置 deleted_at，不级联。
	SoftDelete(ctx context.Context, id string) (*Location, error)
	// Exists 软删除记录视为不存在（供引用校验）。
	Exists(ctx context.Context, id string) (bool, error)
	// IDsByCityIDs 级联解析用：包含软删除记录。
	IDsByCityIDs(ctx context.Context, cityIDs []string) ([]string, error)
	// DeleteByIDs 物理删除：无视软删除标记。
	DeleteByIDs(ctx context.Context, ids []string) error
}

type CarRepository interface {
	Create(ctx context.Context, c *Car) error
	Update(ctx context.Context, c *Car) error
	GetByID(ctx context.Context, id string) (*Car, error)
	FindByRegistration(ctx context.Context, registration string) (*Car, error)
	List(ctx context.Context, f CarFilter) ([]Car, int64, error)
	Exists(ctx context.Context, id string) (bool, error)
	IDsByLocationIDs(ctx context.Context, locationIDs []string) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}
