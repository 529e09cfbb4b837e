package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"gorm.io/gorm"
)

// ItemService 物品档案维护
type ItemService struct {
	itemRepo *repository.ItemRepository
	txRepo   *repository.TransactionRepository
	guard    *GuardService
	stock    *StockService
}

func NewItemService(itemRepo *repository.ItemRepository, txRepo *repository.TransactionRepository, guard *GuardService, stock *StockService) *ItemService {
	return &ItemService{itemRepo: itemRepo, txRepo: txRepo, guard: guard, stock: stock}
}

type ItemInput struct {
	Name              string  `json:"name" binding:"required"`
	Category          string  `json:"category" binding:"required"`
	Specification     string  `json:"specification"`
	Unit              string  `json:"unit" binding:"required"`
	DefaultLocationID *string `json:"default_location_id"`
	LowStockThreshold int64   `json:"low_stock_threshold"`
}

func validateItemInput(input *ItemInput) error {
	if input.Name == "" {
		return &ValidationError{Field: "name", Reason: "名称不能为空"}
	}
	if input.Category == "" {
		return &ValidationError{Field: "category", Reason: "分类不能为空"}
	}
	if input.Unit == "" {
		return &ValidationError{Field: "unit", Reason: "单位不能为空"}
	}
	if input.LowStockThreshold < 0 {
		return &ValidationError{Field: "low_stock_threshold", Reason: "不能为负数"}
	}
	return nil
}

func (s *ItemService) Create(input ItemInput) (*entity.Item, error) {
	if err := validateItemInput(&input); err != nil {
		return nil, err
	}
	if input.DefaultLocationID != nil {
		if err := s.guard.CanSetDefaultLocation("", *input.DefaultLocationID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	item := &entity.Item{
		ID:                uuid.New().String(),
		Name:              input.Name,
		Category:          input.Category,
		Specification:     input.Specification,
		Unit:              input.Unit,
		DefaultLocationID: input.DefaultLocationID,
		LowStockThreshold: input.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.itemRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Update(id string, input ItemInput) (*entity.Item, error) {
	item, err := s.itemRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "物品", ID: id}
	}
	if err != nil {
		return nil, err
	}
	if err := validateItemInput(&input); err != nil {
		return nil, err
	}
	if input.DefaultLocationID != nil {
		if err := s.guard.CanSetDefaultLocation(id, *input.DefaultLocationID); err != nil {
			return nil, err
		}
	}

	item.Name = input.Name
	item.Category = input.Category
	item.Specification = input.Specification
	item.Unit = input.Unit
	item.DefaultLocationID = input.DefaultLocationID
	item.LowStockThreshold = input.LowStockThreshold
	item.UpdatedAt = time.Now()
	if err := s.itemRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete 删除物品，前置检查见 GuardService.CanDeleteItem
func (s *ItemService) Delete(id string) error {
	if err := s.guard.CanDeleteItem(id); err != nil {
		return err
	}
	return s.itemRepo.Delete(id)
}

func (s *ItemService) Get(id string) (*entity.Item, error) {
	item, err := s.itemRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "物品", ID: id}
	}
	return item, err
}

// ItemWithStock 列表行，附带折算库存和低库存标记
type ItemWithStock struct {
	entity.Item
	CurrentStock int64 `json:"current_stock"`
	IsLowStock   bool  `json:"is_low_stock"`
}

func (s *ItemService) List(params repository.ItemListParams) ([]ItemWithStock, int64, error) {
	items, total, err := s.itemRepo.List(params)
	if err != nil {
		return nil, 0, err
	}
	totals, err := s.txRepo.TotalsByItem()
	if err != nil {
		return nil, 0, err
	}
	stockByItem := make(map[string]int64, len(totals))
	for _, row := range totals {
		stockByItem[row.ItemID] = row.CurrentStock
	}

	result := make([]ItemWithStock, 0, len(items))
	for i := range items {
		current := stockByItem[items[i].ID]
		result = append(result, ItemWithStock{
			Item:         items[i],
			CurrentStock: current,
			IsLowStock:   s.stock.IsLowStock(&items[i], current),
		})
	}
	return result, total, nil
}

// ImportReject 批量导入中被拒绝的行
type ImportReject struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult 批量导入逐行独立判定，部分成功不回滚
type ImportResult struct {
	Accepted []entity.Item  `json:"accepted"`
	Rejected []ImportReject `json:"rejected"`
}

// Import 批量导入物品
func (s *ItemService) Import(rows []ItemInput) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "不能为空"}
	}
	result := &ImportResult{
		Accepted: []entity.Item{},
		Rejected: []ImportReject{},
	}
	for i, row := range rows {
		item, err := s.Create(row)
		if err != nil {
			result.Rejected = append(result.Rejected, ImportReject{Index: i, Reason: err.Error()})
			continue
		}
		result.Accepted = append(result.Accepted, *item)
	}
	return result, nil
}

// SetDefaultLocation 设置或清除默认库位
func (s *ItemService) SetDefaultLocation(itemID string, locationID *string) (*entity.Item, error) {
	item, err := s.Get(itemID)
	if err != nil {
		return nil, err
	}
	if locationID != nil {
		if err := s.guard.CanSetDefaultLocation(itemID, *locationID); err != nil {
			return nil, err
		}
	}
	item.DefaultLocationID = locationID
	item.UpdatedAt = time.Now()
	if err := s.itemRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Categories 去重后的物品分类列表
func (s *ItemService) Categories() ([]string, error) {
	items, err := s.itemRepo.ListAll()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var categories []string
	for i := range items {
		if _, ok := seen[items[i].Category]; ok {
			continue
		}
		seen[items[i].Category] = struct{}{}
		categories = append(categories, items[i].Category)
	}
	return categories, nil
}
