package repository

import (
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"gorm.io/gorm"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(item *entity.Item) error {
	return r.db.Create(item).Error
}

func (r *ItemRepository) Update(item *entity.Item) error {
	return r.db.Save(item).Error
}

func (r *ItemRepository) Delete(id string) error {
	return r.db.Delete(&entity.Item{}, "id = ?", id).Error
}

func (r *ItemRepository) FindByID(id string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) ListAll() ([]entity.Item, error) {
	var items []entity.Item
	err := r.db.Order("name").Find(&items).Error
	return items, err
}

// CountByDefaultLocation 统计以该库位为默认库位的物品数
func (r *ItemRepository) CountByDefaultLocation(locationID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Item{}).
		Where("default_location_id = ?", locationID).
		Count(&count).Error
	return count, err
}

type ItemListParams struct {
	Keyword  string
	Category string
	Page     int
	Size     int
}

func (r *ItemRepository) List(params ItemListParams) ([]entity.Item, int64, error) {
	query := r.db.Model(&entity.Item{})
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR specification LIKE ?", kw, kw)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
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
	var items []entity.Item
	err := query.Order("name").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&items).Error
	return items, total, err
}
