package repository

import (
	"context"
	"errors"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"gorm.io/gorm"
)

// TenantRepository 租户仓库
type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// FindAll 查询租户列表
func (r *TenantRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Tenant, int64, error) {
	var items []entity.Tenant
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Tenant{})

	if status := filters["license_status"]; status != "" {
		query = query.Where("license_status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR display_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找租户
func (r *TenantRepository) FindByID(ctx context.Context, id string) (*entity.Tenant, error) {
	var t entity.Tenant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByName 根据租户标识查找
func (r *TenantRepository) FindByName(ctx context.Context, name string) (*entity.Tenant, error) {
	var t entity.Tenant
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create 创建租户
func (r *TenantRepository) Create(ctx context.Context, t *entity.Tenant) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Update 更新租户
func (r *TenantRepository) Update(ctx context.Context, t *entity.Tenant) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// DeleteCascade 删除租户及其全部业务数据
// childTables 为 "子表:父表" 形式，子表无tenant_id列，按父表订单ID级联删除
func (r *TenantRepository) DeleteCascade(ctx context.Context, id string, tenantTables []string, childTables map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for child, parent := range childTables {
			sql := "DELETE FROM " + child + " WHERE order_id IN (SELECT id FROM " + parent + " WHERE tenant_id = ?)"
			if child == "pur_quote_items" {
				sql = "DELETE FROM " + child + " WHERE quote_id IN (SELECT id FROM " + parent + " WHERE tenant_id = ?)"
			}
			if err := tx.Exec(sql, id).Error; err != nil {
				return err
			}
		}
		for _, table := range tenantTables {
			if err := tx.Exec("DELETE FROM "+table+" WHERE tenant_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&entity.Tenant{}).Error
	})
}

// CountUsers 统计租户用户数（许可证max_users校验用）
func (r *TenantRepository) CountUsers(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("tenant_id = ? AND status = ?", tenantID, entity.UserStatusActive).
		Count(&count).Error
	return count, err
}
