package reservation

import "time"

// Status 预订状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending   Status = "pending"   // 已创建，待管理员确认
	StatusConfirmed Status = "confirmed" // 已确认，待取车/履约
	StatusCompleted Status = "completed" // 已完成
	StatusCancelled Status = "cancelled" // 已取消（释放时间段）
)

// Reservation 预订 GORM 模型。
// TotalPrice 在创建时按当时的日租价快照计算，车辆日租价
// 后续变化不会触发重算。
type Reservation struct {
	ID     string `gorm:"primaryKey;size:36"`
	CarID  string `gorm:"index;size:36;not null"`
	UserID string `gorm:"index;size:36;not null"`

	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"` // 半开区间 [StartDate, EndDate)
	Status    Status    `gorm:"type:varchar(16);index;not null"`

	// 金额信息（单位：分）
	TotalPrice int64 `gorm:"not null"`

	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// Slot 是 reservation_slots 表的 GORM 模型：每个非取消预订
// 按覆盖到的自然日各占一行，(car_id, day) 唯一索引是
// 重叠预订的存储层兜底（重叠检查与写入本身不是原子的）。
type Slot struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	CarID         string `gorm:"size:36;not null;uniqueIndex:idx_slots_car_day"`
	Day           string `gorm:"size:10;not null;uniqueIndex:idx_slots_car_day"` // "2006-01-02"
	ReservationID string `gorm:"size:36;not null;index"`
}

// Overlaps 半开区间重叠判定：[s1,e1) 与 [s2,e2) 重叠
// 当且仅当 s1 < e2 且 s2 < e1。首尾相接不算重叠。
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// PriceFor 计价：按天数向上取整 × 日租价。
func PriceFor(start, end time.Time, priceByDay int64) int64 {
	return int64(daysBetween(start, end)) * priceByDay
}

// SlotDays 预订区间覆盖到的自然日（UTC），供兜底索引使用。
func SlotDays(start, end time.Time) []string {
	var days []string
	day := start.UTC().Truncate(24 * time.Hour)
	for day.Before(end.UTC()) {
		days = append(days, day.Format("2006-01-02"))
		day = day.Add(24 * time.Hour)
	}
	return days
}

func daysBetween(start, end time.Time) int {
	d := end.Sub(start)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
