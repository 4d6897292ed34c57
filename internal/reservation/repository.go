package reservation

import "context"

// ListFilter 预订列表查询条件。
type ListFilter struct {
	UserID string
	CarID  string
	Status Status
	Offset int
	Limit  int
}

// Repository 预订仓储接口。
// Create 同时写入按日的占位行（兜底唯一索引）；
// 取消状态的更新会释放占位行。
type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	Update(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	// ListActiveByCar 返回某辆车全部非取消预订（重叠检查用）。
	ListActiveByCar(ctx context.Context, carID string) ([]Reservation, error)
	List(ctx context.Context, f ListFilter) ([]Reservation, int64, error)
	Exists(ctx context.Context, id string) (bool, error)
	// IDsByCarIDs 级联解析用。
	IDsByCarIDs(ctx context.Context, carIDs []string) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}
