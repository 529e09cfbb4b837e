package service

import (
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"gorm.io/gorm"
)

var locationCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

// LocationService 库位层级的唯一裁决者：建树、校验、移动、删除
// 都从这里走。结构性写操作共用一把树锁，保证校验与写入之间
// 不会被并发修改插入环路或孤儿节点。
type LocationService struct {
	locRepo *repository.LocationRepository
	guard   *GuardService
	db      *gorm.DB
	treeMu  sync.Mutex
}

func NewLocationService(locRepo *repository.LocationRepository, guard *GuardService, db *gorm.DB) *LocationService {
	return &LocationService{locRepo: locRepo, guard: guard, db: db}
}

type CreateLocationInput struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id"`
}

func validateLocationCode(code string) error {
	if code == "" {
		return &ValidationError{Field: "code", Reason: "编码不能为空"}
	}
	if !locationCodePattern.MatchString(code) {
		return &ValidationError{Field: "code", Reason: "编码只允许字母、数字、连字符和下划线, 且不超过50个字符"}
	}
	return nil
}

// Create 新建库位。根节点层级为 0，子节点层级为父节点加一，
// 父节点必须存在、处于启用状态且未达到最大深度。
func (s *LocationService) Create(input CreateLocationInput) (*entity.Location, error) {
	if err := validateLocationCode(input.Code); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "名称不能为空"}
	}

	s.treeMu.Lock()
	defer s.treeMu.Unlock()

	exists, err := s.locRepo.CodeExists(input.Code, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ValidationError{Field: "code", Reason: "编码已存在"}
	}

	level := 0
	if input.ParentID != nil {
		parent, err := s.locRepo.FindByID(*input.ParentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &HierarchyViolationError{Reason: "父库位不存在"}
		}
		if err != nil {
			return nil, err
		}
		if !parent.IsActive {
			return nil, &HierarchyViolationError{Reason: "父库位已停用"}
		}
		if parent.Level >= entity.LocationMaxLevel {
			return nil, &HierarchyViolationError{Reason: "超出最大层级深度"}
		}
		level = parent.Level + 1
	}

	now := time.Now()
	loc := &entity.Location{
		ID:          uuid.New().String(),
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		ParentID:    input.ParentID,
		Level:       level,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.locRepo.Create(loc); err != nil {
		return nil, err
	}
	return loc, nil
}

type UpdateLocationInput struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Update 更新非结构性字段。停用走 GuardService 前置检查，
// 避免把有出入库记录的库位悄悄挂到停用状态下。
func (s *LocationService) Update(id string, input UpdateLocationInput) (*entity.Location, error) {
	s.treeMu.Lock()
	defer s.treeMu.Unlock()

	loc, err := s.locRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "库位", ID: id}
	}
	if err != nil {
		return nil, err
	}

	if input.Code != nil && *input.Code != loc.Code {
		if err := validateLocationCode(*input.Code); err != nil {
			return nil, err
		}
		exists, err := s.locRepo.CodeExists(*input.Code, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &ValidationError{Field: "code", Reason: "编码已存在"}
		}
		loc.Code = *input.Code
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, &ValidationError{Field: "name", Reason: "名称不能为空"}
		}
		loc.Name = *input.Name
	}
	if input.Description != nil {
		loc.Description = *input.Description
	}
	if input.IsActive != nil && *input.IsActive != loc.IsActive {
		if !*input.IsActive {
			if err := s.guard.CanDeactivateLocations([]string{id}); err != nil {
				return nil, err
			}
		}
		loc.IsActive = *input.IsActive
	}

	loc.UpdatedAt = time.Now()
	if err := s.locRepo.Update(loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// Reparent 把库位移动到新父节点（nil 表示提升为根）。
// 先求节点的完整子孙集合拒绝环路，再按新父节点重算层级并
// 在一个事务里整体平移子树的层级。
func (s *LocationService) Reparent(id string, newParentID *string) (*entity.Location, error) {
	s.treeMu.Lock()
	defer s.treeMu.Unlock()

	loc, err := s.locRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "库位", ID: id}
	}
	if err != nil {
		return nil, err
	}

	all, err := s.locRepo.ListAll()
	if err != nil {
		return nil, err
	}
	descendants := DescendantIDs(id, all)

	newLevel := 0
	if newParentID != nil {
		if *newParentID == id {
			return nil, &HierarchyViolationError{Reason: "不能将库位移动到自身之下"}
		}
		if _, ok := descendants[*newParentID]; ok {
			return nil, &HierarchyViolationError{Reason: "不能将库位移动到其子孙节点之下"}
		}
		parent, err := s.locRepo.FindByID(*newParentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &HierarchyViolationError{Reason: "父库位不存在"}
		}
		if err != nil {
			return nil, err
		}
		if !parent.IsActive {
			return nil, &HierarchyViolationError{Reason: "父库位已停用"}
		}
		if parent.Level >= entity.LocationMaxLevel {
			return nil, &HierarchyViolationError{Reason: "超出最大层级深度"}
		}
		newLevel = parent.Level + 1
	}

	// 子树最深节点在移动后也不能越过最大深度
	if newLevel+subtreeDepth(id, childrenIndex(all)) > entity.LocationMaxLevel {
		return nil, &HierarchyViolationError{Reason: "移动后子孙节点超出最大层级深度"}
	}

	delta := newLevel - loc.Level
	loc.ParentID = newParentID
	loc.Level = newLevel
	loc.UpdatedAt = time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(loc).Error; err != nil {
			return err
		}
		if delta == 0 || len(descendants) == 0 {
			return nil
		}
		ids := make([]string, 0, len(descendants))
		for descID := range descendants {
			ids = append(ids, descID)
		}
		return tx.Model(&entity.Location{}).
			Where("id IN ?", ids).
			Update("level", gorm.Expr("level + ?", delta)).Error
	})
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// Delete 删除库位，前置检查见 GuardService.CanDeleteLocation
func (s *LocationService) Delete(id string) error {
	s.treeMu.Lock()
	defer s.treeMu.Unlock()

	if err := s.guard.CanDeleteLocation(id); err != nil {
		return err
	}
	return s.locRepo.Delete(id)
}

// BatchSetStatus 批量启用/停用库位
func (s *LocationService) BatchSetStatus(ids []string, isActive bool) error {
	if len(ids) == 0 {
		return &ValidationError{Field: "ids", Reason: "不能为空"}
	}
	s.treeMu.Lock()
	defer s.treeMu.Unlock()

	if !isActive {
		if err := s.guard.CanDeactivateLocations(ids); err != nil {
			return err
		}
	}
	return s.locRepo.UpdateStatus(ids, isActive)
}

func (s *LocationService) Get(id string) (*entity.Location, error) {
	loc, err := s.locRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "库位", ID: id}
	}
	return loc, err
}

func (s *LocationService) List(params repository.LocationListParams) ([]entity.Location, int64, error) {
	return s.locRepo.List(params)
}

// Tree 返回完整层级树。父节点引用缺失属于数据异常，
// 必须显式报出，不能悄悄把孤儿节点当作根展示。
func (s *LocationService) Tree() ([]*entity.LocationNode, error) {
	all, err := s.locRepo.ListAll()
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(all))
	for i := range all {
		known[all[i].ID] = struct{}{}
	}
	for i := range all {
		if all[i].ParentID == nil {
			continue
		}
		if _, ok := known[*all[i].ParentID]; !ok {
			return nil, &HierarchyViolationError{Reason: "父库位不存在: " + all[i].Code}
		}
	}
	return BuildHierarchy(all), nil
}

// Descendants 返回指定库位的全部子孙 ID
func (s *LocationService) Descendants(id string) ([]string, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	all, err := s.locRepo.ListAll()
	if err != nil {
		return nil, err
	}
	set := DescendantIDs(id, all)
	ids := make([]string, 0, len(set))
	for descID := range set {
		ids = append(ids, descID)
	}
	return ids, nil
}
