package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	"gorm.io/gorm"
)

// OrderRepository 采购订单仓库
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindAll 查询采购订单列表
func (r *OrderRepository) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	var items []entity.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{}).Where("tenant_id = ?", tenantID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if companyID := filters["company_id"]; companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if from := filters["from"]; from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("order_date >= ?", t)
		}
	}
	if to := filters["to"]; to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("order_date <= ?", t)
		}
	}
	if search := filters["search"]; search != "" {
		query = query.Where("code ILIKE ? OR vendor_name ILIKE ?", "%"+search+"%", "%"+search+"%")
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

// FindByID 根据ID查找采购订单（含行项和boleto分期）
func (r *OrderRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Boletos", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// Create 创建采购订单
func (r *OrderRepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

// UpdateWithVersion 条件更新：仅当version未被并发修改时写入，
// version自增。冲突返回ErrConflict。
func (r *OrderRepository) UpdateWithVersion(ctx context.Context, po *entity.PurchaseOrder) error {
	expected := po.Version
	po.Version++
	result := r.db.WithContext(ctx).
		Model(&entity.PurchaseOrder{}).
		Where("id = ? AND tenant_id = ? AND version = ?", po.ID, po.TenantID, expected).
		Select("*").
		Omit("Items", "Boletos", "Supplier", "created_at").
		Updates(po)
	if result.Error != nil {
		po.Version = expected
		return result.Error
	}
	if result.RowsAffected == 0 {
		po.Version = expected
		return ErrConflict
	}
	return nil
}

// ReplaceItems 替换订单行项（awaiting_documents状态编辑用）
func (r *OrderRepository) ReplaceItems(ctx context.Context, orderID string, items []entity.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&entity.OrderItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// ReplaceBoletos 替换boleto分期（供应商重新提交时覆盖旧分期）
func (r *OrderRepository) ReplaceBoletos(ctx context.Context, orderID string, boletos []entity.BoletoInstallment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&entity.BoletoInstallment{}).Error; err != nil {
			return err
		}
		if len(boletos) == 0 {
			return nil
		}
		return tx.Create(&boletos).Error
	})
}

// Delete 删除订单及行项、分期、操作日志（管理员专用）
func (r *OrderRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&entity.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&entity.BoletoInstallment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND order_id = ?", tenantID, id).Delete(&entity.OrderActivityLog{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.PurchaseOrder{}).Error
	})
}

// FindOverdue 查找交付日期已过且未确认收货、可标记逾期的订单
func (r *OrderRepository) FindOverdue(ctx context.Context, tenantID string, now time.Time) ([]entity.PurchaseOrder, error) {
	var items []entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ? AND delivery_date < ?",
			tenantID,
			[]string{entity.OrderStatusAwaitingDocuments, entity.OrderStatusAwaitingApproval},
			now).
		Find(&items).Error
	return items, err
}

// FindAwaitingPaymentBoletos 查找待付款订单的boleto分期（现金流预测用）
func (r *OrderRepository) FindAwaitingPaymentBoletos(ctx context.Context, tenantID string, from, to time.Time) ([]entity.BoletoInstallment, error) {
	var items []entity.BoletoInstallment
	err := r.db.WithContext(ctx).
		Joins("JOIN pur_purchase_orders po ON po.id = pur_order_boletos.order_id").
		Where("po.tenant_id = ? AND po.status = ? AND pur_order_boletos.due_date BETWEEN ? AND ?",
			tenantID, entity.OrderStatusAwaitingPayment, from, to).
		Order("pur_order_boletos.due_date ASC").
		Find(&items).Error
	return items, err
}

// GenerateCode 生成订单编码 PC-{year}-{4位}
func (r *OrderRepository) GenerateCode(ctx context.Context, tenantID string) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("PC-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.PurchaseOrder{}).
		Select("COALESCE(MAX(code), '')").
		Where("tenant_id = ? AND code LIKE ?", tenantID, prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "PC-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("PC-%s-%04d", year, seq), nil
}
