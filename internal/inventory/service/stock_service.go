package service

import (
	"errors"
	"time"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"gorm.io/gorm"
)

// StockService 库存只读侧。库存不落库，每次查询都对流水表
// 做签名求和折算，省掉缓存失效问题。
type StockService struct {
	txRepo   *repository.TransactionRepository
	itemRepo *repository.ItemRepository
}

func NewStockService(txRepo *repository.TransactionRepository, itemRepo *repository.ItemRepository) *StockService {
	return &StockService{txRepo: txRepo, itemRepo: itemRepo}
}

// StockAt 指定物品在指定库位的当前库存。asOf 非空时折算到该时点。
// 只要每笔出库都通过了准入检查，结果不会为负；本方法只报告，不兜底。
func (s *StockService) StockAt(itemID, locationID string, asOf *time.Time) (int64, error) {
	return s.txRepo.SumQuantity(itemID, locationID, asOf)
}

// TotalStock 物品在全部库位的总库存
func (s *StockService) TotalStock(itemID string) (int64, error) {
	if _, err := s.itemRepo.FindByID(itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Resource: "物品", ID: itemID}
		}
		return 0, err
	}
	return s.txRepo.SumByItem(itemID)
}

// ItemStock 含物品信息的库存行
type ItemStock struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	Unit         string `json:"unit"`
	CurrentStock int64  `json:"current_stock"`
}

// LocationSummary 库位下各物品的当前库存，只返回库存大于零的行
func (s *StockService) LocationSummary(locationID string) ([]ItemStock, error) {
	rows, err := s.txRepo.LocationSummary(locationID)
	if err != nil {
		return nil, err
	}
	return s.withItemInfo(rows)
}

// IsLowStock 库存小于等于阈值即视为低库存
func (s *StockService) IsLowStock(item *entity.Item, currentStock int64) bool {
	return currentStock <= item.LowStockThreshold
}

// LowStockRow 低库存告警行
type LowStockRow struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	Category     string `json:"category"`
	Unit         string `json:"unit"`
	CurrentStock int64  `json:"current_stock"`
	Threshold    int64  `json:"threshold"`
}

// LowStockItems 全部处于低库存状态的物品，含从未入库的物品
func (s *StockService) LowStockItems() ([]LowStockRow, error) {
	items, err := s.itemRepo.ListAll()
	if err != nil {
		return nil, err
	}
	totals, err := s.txRepo.TotalsByItem()
	if err != nil {
		return nil, err
	}
	stockByItem := make(map[string]int64, len(totals))
	for _, row := range totals {
		stockByItem[row.ItemID] = row.CurrentStock
	}

	var alerts []LowStockRow
	for i := range items {
		current := stockByItem[items[i].ID]
		if !s.IsLowStock(&items[i], current) {
			continue
		}
		alerts = append(alerts, LowStockRow{
			ItemID:       items[i].ID,
			ItemName:     items[i].Name,
			Category:     items[i].Category,
			Unit:         items[i].Unit,
			CurrentStock: current,
			Threshold:    items[i].LowStockThreshold,
		})
	}
	return alerts, nil
}

func (s *StockService) withItemInfo(rows []repository.StockRow) ([]ItemStock, error) {
	items, err := s.itemRepo.ListAll()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	result := make([]ItemStock, 0, len(rows))
	for _, row := range rows {
		stock := ItemStock{ItemID: row.ItemID, CurrentStock: row.CurrentStock}
		if item, ok := byID[row.ItemID]; ok {
			stock.ItemName = item.Name
			stock.Unit = item.Unit
		}
		result = append(result, stock)
	}
	return result, nil
}
