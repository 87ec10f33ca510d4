package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	"gorm.io/gorm"
)

// QuoteRepository 报价单仓库
type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// FindAll 查询报价单列表
func (r *QuoteRepository) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.Quote, int64, error) {
	var items []entity.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Quote{}).Where("tenant_id = ?", tenantID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("code ILIKE ? OR description ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Supplier").
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找报价单
func (r *QuoteRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Quote, error) {
	var q entity.Quote
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// Create 创建报价单
func (r *QuoteRepository) Create(ctx context.Context, q *entity.Quote) error {
	return r.db.WithContext(ctx).Create(q).Error
}

// Update 更新报价单
func (r *QuoteRepository) Update(ctx context.Context, q *entity.Quote) error {
	return r.db.WithContext(ctx).Save(q).Error
}

// Delete 删除报价单及行项
func (r *QuoteRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&entity.QuoteItem{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Quote{}).Error
	})
}

// GenerateCode 生成报价单编码 COT-{year}-{4位}
func (r *QuoteRepository) GenerateCode(ctx context.Context, tenantID string) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("COT-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Quote{}).
		Select("COALESCE(MAX(code), '')").
		Where("tenant_id = ? AND code LIKE ?", tenantID, prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "COT-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("COT-%s-%04d", year, seq), nil
}
