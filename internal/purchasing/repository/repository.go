package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict 版本冲突：并发写入了同一订单
	ErrConflict = errors.New("version conflict")
)

// Repositories 采购模块仓库集合
type Repositories struct {
	Supplier    *SupplierRepository
	Order       *OrderRepository
	Quote       *QuoteRepository
	ActivityLog *ActivityLogRepository
}

// NewRepositories 创建采购模块仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Supplier:    NewSupplierRepository(db),
		Order:       NewOrderRepository(db),
		Quote:       NewQuoteRepository(db),
		ActivityLog: NewActivityLogRepository(db),
	}
}
