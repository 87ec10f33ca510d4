package repository

import (
	"context"
	"errors"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"gorm.io/gorm"
)

// VeterinarianRepository 兽医仓库
type VeterinarianRepository struct {
	db *gorm.DB
}

func NewVeterinarianRepository(db *gorm.DB) *VeterinarianRepository {
	return &VeterinarianRepository{db: db}
}

// FindAll 查询租户下的兽医列表
func (r *VeterinarianRepository) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.Veterinarian, int64, error) {
	var items []entity.Veterinarian
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Veterinarian{}).Where("tenant_id = ?", tenantID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR crmv ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找兽医
func (r *VeterinarianRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Veterinarian, error) {
	var v entity.Veterinarian
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Create 创建兽医
func (r *VeterinarianRepository) Create(ctx context.Context, v *entity.Veterinarian) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// Update 更新兽医
func (r *VeterinarianRepository) Update(ctx context.Context, v *entity.Veterinarian) error {
	return r.db.WithContext(ctx).Save(v).Error
}

// Delete 删除兽医
func (r *VeterinarianRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Veterinarian{}).Error
}
