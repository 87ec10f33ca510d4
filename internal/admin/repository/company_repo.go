package repository

import (
	"context"
	"errors"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"gorm.io/gorm"
)

// CompanyRepository 公司仓库
type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// FindAll 查询租户下的公司列表
func (r *CompanyRepository) FindAll(ctx context.Context, tenantID string) ([]entity.Company, error) {
	var items []entity.Company
	err := r.db.WithContext(ctx).
		Preload("CostCenters").
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// FindByID 根据ID查找公司
func (r *CompanyRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Company, error) {
	var c entity.Company
	err := r.db.WithContext(ctx).
		Preload("CostCenters").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create 创建公司
func (r *CompanyRepository) Create(ctx context.Context, c *entity.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Update 更新公司
func (r *CompanyRepository) Update(ctx context.Context, c *entity.Company) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete 删除公司及成本中心
func (r *CompanyRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND company_id = ?", tenantID, id).Delete(&entity.CostCenter{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Company{}).Error
	})
}

// CreateCostCenter 创建成本中心
func (r *CompanyRepository) CreateCostCenter(ctx context.Context, cc *entity.CostCenter) error {
	return r.db.WithContext(ctx).Create(cc).Error
}

// DeleteCostCenter 删除成本中心
func (r *CompanyRepository) DeleteCostCenter(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.CostCenter{}).Error
}

// FindCostCenterByID 查找成本中心
func (r *CompanyRepository) FindCostCenterByID(ctx context.Context, tenantID, id string) (*entity.CostCenter, error) {
	var cc entity.CostCenter
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&cc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cc, nil
}
