package catalog

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// State 是 states 表的 GORM 模型。层级树的根。
// Name 以规范化形式（首字母大写）落库，唯一索引即按规范化值生效。
type State struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"uniqueIndex;size:64;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// City 是 cities 表的 GORM 模型。
// 唯一性范围是 (state_id, name)：同名城市允许出现在不同州。
type City struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_cities_state_name"`
	StateID   string    `gorm:"size:36;not null;index;uniqueIndex:idx_cities_state_name"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Location 是 locations 表的 GORM 模型。支持软删除：
// DeletedAt 非空的记录默认对查询不可见，但物理仍在。
type Location struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:64;not null"`
	Address     string `gorm:"size:255"`
	PhoneNumber string `gorm:"size:20"` // 规范化为 +<digits>
	CityID      string `gorm:"size:36;not null;index"`
	UserID      string `gorm:"size:36;not null;index"` // 门店归属用户

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Car 是 cars 表的 GORM 模型。
type Car struct {
	ID         string `gorm:"primaryKey;size:36"`
	LocationID string `gorm:"size:36;not null;index"`

	Brand              string `gorm:"size:64;not null"`
	Model              string `gorm:"size:64;not null"`
	Year               int    `gorm:"not null"`
	PriceByDay         int64  `gorm:"not null"` // 单位：分
	RegistrationNumber string `gorm:"uniqueIndex;size:12;not null"`
	Available          bool   `gorm:"not null;default:true"`

	// 附加属性
	FuelType     string `gorm:"size:16"`
	Transmission string `gorm:"size:16"`
	Seats        int
	ImageURL     string `gorm:"size:255"`
	Mileage      int
	Features     string `gorm:"size:512"` // 逗号分隔，例如 "gps,bluetooth"

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (c Car) FeaturesSlice() []string {
	if strings.TrimSpace(c.Features) == "" {
		return nil
	}
	parts := strings.Split(c.Features, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func FeaturesJoin(features []string) string {
	if len(features) == 0 {
		return ""
	}
	out := make([]string, 0, len(features))
	for _, f := range features {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, ",")
}
