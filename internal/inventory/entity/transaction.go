package entity

import (
	"time"
)

// TransactionType 出入库类型
const (
	TxTypeInbound  = "INBOUND"  // 入库
	TxTypeOutbound = "OUTBOUND" // 出库
)

// TxMaxQuantity 单笔数量上限，防止录入错误
const TxMaxQuantity = 1_000_000

// Transaction 出入库流水。一经入账不可变更核心字段
// （物品、库位、类型、数量），纠错通过冲销完成。
type Transaction struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	ItemID     string    `json:"item_id" gorm:"size:36;not null;index"`
	LocationID string    `json:"location_id" gorm:"size:36;not null;index"`
	Type       string    `json:"type" gorm:"size:10;not null;index"`
	Quantity   int64     `json:"quantity" gorm:"not null"`
	Date       time.Time `json:"date" gorm:"not null;index"`
	Operator   string    `json:"operator" gorm:"size:64;not null"`
	Supplier   string    `json:"supplier" gorm:"size:100"`
	Recipient  string    `json:"recipient" gorm:"size:64"`
	Purpose    string    `json:"purpose" gorm:"size:200"`
	BatchID    string    `json:"batch_id" gorm:"size:36;index"`
	Notes      string    `json:"notes" gorm:"type:text"`
	ReversalOf *string   `json:"reversal_of" gorm:"size:36;index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// SignedQuantity 入库为正、出库为负
func (t *Transaction) SignedQuantity() int64 {
	if t.Type == TxTypeOutbound {
		return -t.Quantity
	}
	return t.Quantity
}
