package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/entity"
	"gorm.io/gorm"
)

// RevenueRepository 收入仓库
type RevenueRepository struct {
	db *gorm.DB
}

func NewRevenueRepository(db *gorm.DB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

// FindAll 查询收入列表
func (r *RevenueRepository) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.Revenue, int64, error) {
	var items []entity.Revenue
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Revenue{}).Where("tenant_id = ?", tenantID)

	if companyID := filters["company_id"]; companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	if category := filters["category"]; category != "" {
		query = query.Where("category = ?", category)
	}
	if received := filters["received"]; received != "" {
		query = query.Where("received = ?", received == "true")
	}
	if from := filters["from"]; from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("date >= ?", t)
		}
	}
	if to := filters["to"]; to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("date <= ?", t)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找收入
func (r *RevenueRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Revenue, error) {
	var v entity.Revenue
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Create 创建收入
func (r *RevenueRepository) Create(ctx context.Context, v *entity.Revenue) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// Update 更新收入
func (r *RevenueRepository) Update(ctx context.Context, v *entity.Revenue) error {
	return r.db.WithContext(ctx).Save(v).Error
}

// Delete 删除收入
func (r *RevenueRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Revenue{}).Error
}

// SumByMonth 按月汇总（财务报表用）
func (r *RevenueRepository) SumByMonth(ctx context.Context, tenantID, companyID string, year int) (map[int]float64, error) {
	type row struct {
		Month int
		Total float64
	}
	var rows []row

	query := r.db.WithContext(ctx).Model(&entity.Revenue{}).
		Select("EXTRACT(MONTH FROM date)::int AS month, COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND EXTRACT(YEAR FROM date) = ?", tenantID, year)
	if companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	if err := query.Group("month").Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[int]float64, len(rows))
	for _, rw := range rows {
		result[rw.Month] = rw.Total
	}
	return result, nil
}
