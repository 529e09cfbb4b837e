package entity

import (
	"time"
)

// Item 办公用品物品档案。库存数量不落在本表，
// 始终由 transactions 表折算得出。
type Item struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	Name              string    `json:"name" gorm:"size:100;not null;index"`
	Category          string    `json:"category" gorm:"size:50;not null;index"`
	Specification     string    `json:"specification" gorm:"size:200"`
	Unit              string    `json:"unit" gorm:"size:20;not null"`
	DefaultLocationID *string   `json:"default_location_id" gorm:"size:36"`
	LowStockThreshold int64     `json:"low_stock_threshold" gorm:"not null;default:0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}
