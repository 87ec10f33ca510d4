package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/entity"
	"gorm.io/gorm"
)

// ExpenseRepository 支出仓库
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// FindAll 查询支出列表
func (r *ExpenseRepository) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.Expense, int64, error) {
	var items []entity.Expense
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Expense{}).Where("tenant_id = ?", tenantID)

	if companyID := filters["company_id"]; companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	if category := filters["category"]; category != "" {
		query = query.Where("category = ?", category)
	}
	if paid := filters["paid"]; paid != "" {
		query = query.Where("paid = ?", paid == "true")
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

// FindByID 根据ID查找支出
func (r *ExpenseRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Expense, error) {
	var e entity.Expense
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Create 创建支出
func (r *ExpenseRepository) Create(ctx context.Context, e *entity.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// Update 更新支出
func (r *ExpenseRepository) Update(ctx context.Context, e *entity.Expense) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// Delete 删除支出
func (r *ExpenseRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Expense{}).Error
}

// SumByMonth 按月汇总（财务报表用）
func (r *ExpenseRepository) SumByMonth(ctx context.Context, tenantID, companyID string, year int) (map[int]float64, error) {
	type row struct {
		Month int
		Total float64
	}
	var rows []row

	query := r.db.WithContext(ctx).Model(&entity.Expense{}).
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

// SumByCategory 按分类汇总指定区间的支出
func (r *ExpenseRepository) SumByCategory(ctx context.Context, tenantID, companyID string, from, to time.Time) (map[string]float64, error) {
	type row struct {
		Category string
		Total    float64
	}
	var rows []row

	query := r.db.WithContext(ctx).Model(&entity.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND date BETWEEN ? AND ?", tenantID, from, to)
	if companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	if err := query.Group("category").Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[string]float64, len(rows))
	for _, rw := range rows {
		result[rw.Category] = rw.Total
	}
	return result, nil
}

// FindUnpaidDue 查询到期区间内未支付的支出（现金流预测用）
func (r *ExpenseRepository) FindUnpaidDue(ctx context.Context, tenantID string, from, to time.Time) ([]entity.Expense, error) {
	var items []entity.Expense
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND paid = false AND due_date BETWEEN ? AND ?", tenantID, from, to).
		Order("due_date ASC").
		Find(&items).Error
	return items, err
}
