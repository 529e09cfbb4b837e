package repository

import (
	"time"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(tx *entity.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *TransactionRepository) Update(tx *entity.Transaction) error {
	return r.db.Save(tx).Error
}

func (r *TransactionRepository) Delete(id string) error {
	return r.db.Delete(&entity.Transaction{}, "id = ?", id).Error
}

func (r *TransactionRepository) FindByID(id string) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := r.db.First(&tx, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// SumQuantity 按签名折算指定物品在指定库位的库存（入库为正、出库为负）。
// asOf 非空时只统计该时点（含）之前的流水。
func (r *TransactionRepository) SumQuantity(itemID, locationID string, asOf *time.Time) (int64, error) {
	return SumQuantityTx(r.db, itemID, locationID, asOf)
}

// SumQuantityTx 与 SumQuantity 相同，但运行在调用方提供的事务句柄上，
// 供出库准入检查在同一事务内复读库存。
func SumQuantityTx(db *gorm.DB, itemID, locationID string, asOf *time.Time) (int64, error) {
	var result struct{ Total int64 }
	query := db.Model(&entity.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END), 0) as total", entity.TxTypeInbound).
		Where("item_id = ? AND location_id = ?", itemID, locationID)
	if asOf != nil {
		query = query.Where("date <= ?", *asOf)
	}
	err := query.Scan(&result).Error
	return result.Total, err
}

// SumByItem 物品在全部库位的总库存
func (r *TransactionRepository) SumByItem(itemID string) (int64, error) {
	var result struct{ Total int64 }
	err := r.db.Model(&entity.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END), 0) as total", entity.TxTypeInbound).
		Where("item_id = ?", itemID).
		Scan(&result).Error
	return result.Total, err
}

// StockRow 分组折算结果
type StockRow struct {
	ItemID       string `json:"item_id"`
	LocationID   string `json:"location_id"`
	CurrentStock int64  `json:"current_stock"`
}

// LocationSummary 库位下各物品的当前库存，只含库存大于零的行
func (r *TransactionRepository) LocationSummary(locationID string) ([]StockRow, error) {
	var rows []StockRow
	err := r.db.Model(&entity.Transaction{}).
		Select("item_id, COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END), 0) as current_stock", entity.TxTypeInbound).
		Where("location_id = ?", locationID).
		Group("item_id").
		Having("SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END) > 0", entity.TxTypeInbound).
		Order("item_id").
		Scan(&rows).Error
	return rows, err
}

// TotalsByItem 各物品的全库位总库存
func (r *TransactionRepository) TotalsByItem() ([]StockRow, error) {
	var rows []StockRow
	err := r.db.Model(&entity.Transaction{}).
		Select("item_id, COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END), 0) as current_stock", entity.TxTypeInbound).
		Group("item_id").
		Order("item_id").
		Scan(&rows).Error
	return rows, err
}

// StockByItemAndLocation 按物品+库位分组的库存明细，只含库存大于零的行
func (r *TransactionRepository) StockByItemAndLocation() ([]StockRow, error) {
	var rows []StockRow
	err := r.db.Model(&entity.Transaction{}).
		Select("item_id, location_id, COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END), 0) as current_stock", entity.TxTypeInbound).
		Group("item_id, location_id").
		Having("SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END) > 0", entity.TxTypeInbound).
		Order("item_id, location_id").
		Scan(&rows).Error
	return rows, err
}

func (r *TransactionRepository) CountByLocation(locationID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Transaction{}).Where("location_id = ?", locationID).Count(&count).Error
	return count, err
}

func (r *TransactionRepository) CountByLocations(locationIDs []string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Transaction{}).Where("location_id IN ?", locationIDs).Count(&count).Error
	return count, err
}

func (r *TransactionRepository) CountByItem(itemID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Transaction{}).Where("item_id = ?", itemID).Count(&count).Error
	return count, err
}

// CountReversals 统计冲销了指定流水的记录数
func (r *TransactionRepository) CountReversals(txID string) (int64, error) {
	return CountReversalsTx(r.db, txID)
}

// CountReversalsTx 是 CountReversals 的包级形式，供调用方在自己的
// 事务内复查冲销引用
func CountReversalsTx(db *gorm.DB, txID string) (int64, error) {
	var count int64
	err := db.Model(&entity.Transaction{}).Where("reversal_of = ?", txID).Count(&count).Error
	return count, err
}

type TxListParams struct {
	ItemID     string
	LocationID string
	Type       string
	BatchID    string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	Size       int
}

func (r *TransactionRepository) List(params TxListParams) ([]entity.Transaction, int64, error) {
	query := r.db.Model(&entity.Transaction{})
	if params.ItemID != "" {
		query = query.Where("item_id = ?", params.ItemID)
	}
	if params.LocationID != "" {
		query = query.Where("location_id = ?", params.LocationID)
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.BatchID != "" {
		query = query.Where("batch_id = ?", params.BatchID)
	}
	if params.DateFrom != nil {
		query = query.Where("date >= ?", *params.DateFrom)
	}
	if params.DateTo != nil {
		query = query.Where("date <= ?", *params.DateTo)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var txs []entity.Transaction
	err := query.Order("date DESC, created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&txs).Error
	return txs, total, err
}

// MovementRow 物品在统计期内的出入库汇总
type MovementRow struct {
	ItemID      string `json:"item_id"`
	InboundQty  int64  `json:"inbound_qty"`
	OutboundQty int64  `json:"outbound_qty"`
}

// MovementSummary 统计期内各物品的出入库总量
func (r *TransactionRepository) MovementSummary(from, to time.Time) ([]MovementRow, error) {
	var rows []MovementRow
	err := r.db.Model(&entity.Transaction{}).
		Select(`item_id,
			COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE 0 END), 0) as inbound_qty,
			COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE 0 END), 0) as outbound_qty`,
			entity.TxTypeInbound, entity.TxTypeOutbound).
		Where("date >= ? AND date <= ?", from, to).
		Group("item_id").
		Order("item_id").
		Scan(&rows).Error
	return rows, err
}

// TopOutbound 统计期内出库量前 N 的物品
func (r *TransactionRepository) TopOutbound(from, to time.Time, limit int) ([]StockRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []StockRow
	err := r.db.Model(&entity.Transaction{}).
		Select("item_id, SUM(quantity) as current_stock").
		Where("type = ? AND date >= ? AND date <= ?", entity.TxTypeOutbound, from, to).
		Group("item_id").
		Order("current_stock DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
