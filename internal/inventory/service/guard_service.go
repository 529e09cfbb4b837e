package service

import (
	"errors"
	"fmt"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"gorm.io/gorm"
)

// GuardService 破坏性操作的前置检查。每个检查失败都带具体原因，
// 调用方直接把原因透给用户。
type GuardService struct {
	locRepo  *repository.LocationRepository
	itemRepo *repository.ItemRepository
	txRepo   *repository.TransactionRepository
}

func NewGuardService(locRepo *repository.LocationRepository, itemRepo *repository.ItemRepository, txRepo *repository.TransactionRepository) *GuardService {
	return &GuardService{locRepo: locRepo, itemRepo: itemRepo, txRepo: txRepo}
}

// CanDeleteLocation 库位可删除的条件：没有子库位、没有出入库记录、
// 未被任何物品设为默认库位。
func (g *GuardService) CanDeleteLocation(locationID string) error {
	if _, err := g.locRepo.FindByID(locationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "库位", ID: locationID}
		}
		return err
	}

	children, err := g.locRepo.CountChildren(locationID)
	if err != nil {
		return err
	}
	if children > 0 {
		return &ReferentialIntegrityError{Reason: fmt.Sprintf("该库位下存在%d个子库位, 请先处理", children)}
	}

	txCount, err := g.txRepo.CountByLocation(locationID)
	if err != nil {
		return err
	}
	if txCount > 0 {
		return &ReferentialIntegrityError{Reason: "该库位存在出入库记录, 不能删除"}
	}

	defaults, err := g.itemRepo.CountByDefaultLocation(locationID)
	if err != nil {
		return err
	}
	if defaults > 0 {
		return &ReferentialIntegrityError{Reason: fmt.Sprintf("该库位被%d个物品设为默认库位, 不能删除", defaults)}
	}
	return nil
}

// CanDeleteItem 物品可删除的条件：没有任何出入库记录且总库存为零。
// 两项都是硬性限制，不是提示。
func (g *GuardService) CanDeleteItem(itemID string) error {
	if _, err := g.itemRepo.FindByID(itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "物品", ID: itemID}
		}
		return err
	}

	txCount, err := g.txRepo.CountByItem(itemID)
	if err != nil {
		return err
	}
	if txCount > 0 {
		return &ReferentialIntegrityError{Reason: "该物品存在出入库记录, 不能删除"}
	}

	total, err := g.txRepo.SumByItem(itemID)
	if err != nil {
		return err
	}
	if total != 0 {
		return &ReferentialIntegrityError{Reason: fmt.Sprintf("该物品仍有库存%d, 不能删除", total)}
	}
	return nil
}

// CanDeactivateLocations 停用库位不能让已有流水挂在停用节点下
func (g *GuardService) CanDeactivateLocations(locationIDs []string) error {
	for _, id := range locationIDs {
		if _, err := g.locRepo.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "库位", ID: id}
			}
			return err
		}
	}
	txCount, err := g.txRepo.CountByLocations(locationIDs)
	if err != nil {
		return err
	}
	if txCount > 0 {
		return &ReferentialIntegrityError{Reason: "所选库位存在出入库记录, 不能停用"}
	}
	return nil
}

// CanSetDefaultLocation 默认库位必须存在且处于启用状态。
// itemID 为空表示新建物品场景，跳过物品存在性检查。
func (g *GuardService) CanSetDefaultLocation(itemID, locationID string) error {
	if itemID != "" {
		if _, err := g.itemRepo.FindByID(itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "物品", ID: itemID}
			}
			return err
		}
	}
	loc, err := g.locRepo.FindByID(locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "库位", ID: locationID}
		}
		return err
	}
	if !loc.IsActive {
		return &ValidationError{Field: "default_location_id", Reason: "库位已停用, 不能设为默认库位"}
	}
	return nil
}
