package repository

import (
	"context"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	"gorm.io/gorm"
)

// ActivityLogRepository 订单操作日志仓库
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create 写入操作日志
func (r *ActivityLogRepository) Create(ctx context.Context, log *entity.OrderActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByOrder 查询订单的操作日志（时间倒序）
func (r *ActivityLogRepository) FindByOrder(ctx context.Context, tenantID, orderID string, limit int) ([]entity.OrderActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var items []entity.OrderActivityLog
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
