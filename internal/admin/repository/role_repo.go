package repository

import (
	"context"
	"errors"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"gorm.io/gorm"
)

// RoleRepository 角色权限仓库
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// FindAll 查询租户下的角色权限文档
func (r *RoleRepository) FindAll(ctx context.Context, tenantID string) ([]entity.RolePermission, error) {
	var items []entity.RolePermission
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("role ASC").
		Find(&items).Error
	return items, err
}

// FindByRole 查找指定角色的权限文档；不存在时返回ErrNotFound，
// 调用方按默认放行处理。
func (r *RoleRepository) FindByRole(ctx context.Context, tenantID, role string) (*entity.RolePermission, error) {
	var rp entity.RolePermission
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND role = ?", tenantID, role).
		First(&rp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rp, nil
}

// Upsert 创建或更新角色权限文档
func (r *RoleRepository) Upsert(ctx context.Context, rp *entity.RolePermission) error {
	existing, err := r.FindByRole(ctx, rp.TenantID, rp.Role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return r.db.WithContext(ctx).Create(rp).Error
		}
		return err
	}

	existing.Permissions = rp.Permissions
	existing.UpdatedBy = rp.UpdatedBy
	return r.db.WithContext(ctx).Save(existing).Error
}
