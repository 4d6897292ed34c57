package user

import (
	"time"

	"gorm.io/gorm"
)

// User 是 users 表的 GORM 模型。
// Email 统一小写落库，唯一索引即等价于大小写不敏感的唯一性。
// 支持软删除：DeletedAt 非空的记录默认对查询不可见。
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	PasswordSalt string `gorm:"size:64;not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
