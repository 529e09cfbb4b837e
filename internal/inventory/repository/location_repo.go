package repository

import (
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"gorm.io/gorm"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(loc *entity.Location) error {
	return r.db.Create(loc).Error
}

func (r *LocationRepository) Update(loc *entity.Location) error {
	return r.db.Save(loc).Error
}

func (r *LocationRepository) Delete(id string) error {
	return r.db.Delete(&entity.Location{}, "id = ?", id).Error
}

func (r *LocationRepository) FindByID(id string) (*entity.Location, error) {
	var loc entity.Location
	err := r.db.First(&loc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *LocationRepository) FindByCode(code string) (*entity.Location, error) {
	var loc entity.Location
	err := r.db.First(&loc, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// CodeExists 检查编码是否已被其它库位占用
func (r *LocationRepository) CodeExists(code, excludeID string) (bool, error) {
	var count int64
	query := r.db.Model(&entity.Location{}).Where("code = ?", code)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *LocationRepository) CountChildren(parentID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Location{}).Where("parent_id = ?", parentID).Count(&count).Error
	return count, err
}

// ListAll 返回全部库位，供层级树构建和环路检查使用
func (r *LocationRepository) ListAll() ([]entity.Location, error) {
	var locs []entity.Location
	err := r.db.Order("code").Find(&locs).Error
	return locs, err
}

type LocationListParams struct {
	Keyword  string
	ParentID string
	IsActive *bool
	Page     int
	Size     int
}

func (r *LocationRepository) List(params LocationListParams) ([]entity.Location, int64, error) {
	query := r.db.Model(&entity.Location{})
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", kw, kw)
	}
	if params.ParentID != "" {
		query = query.Where("parent_id = ?", params.ParentID)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
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
	var locs []entity.Location
	err := query.Order("code").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&locs).Error
	return locs, total, err
}

// UpdateStatus 批量更新启用状态
func (r *LocationRepository) UpdateStatus(ids []string, isActive bool) error {
	return r.db.Model(&entity.Location{}).
		Where("id IN ?", ids).
		Update("is_active", isActive).Error
}
