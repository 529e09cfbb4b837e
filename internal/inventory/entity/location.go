package entity

import (
	"time"
)

// LocationMaxLevel 库位树的最大层级深度
const LocationMaxLevel = 10

// Location 存储库位（区域/货架/货格），通过 ParentID 组成树状结构。
// 根节点 Level 为 0，子节点 Level 必须等于父节点 Level+1。
type Location struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Code        string    `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"size:500"`
	ParentID    *string   `json:"parent_id" gorm:"size:36;index"`
	Level       int       `json:"level" gorm:"not null;default:0"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Location) TableName() string {
	return "locations"
}

// LocationNode 带子节点的库位，用于层级树展示
type LocationNode struct {
	Location
	Children []*LocationNode `json:"children"`
}
