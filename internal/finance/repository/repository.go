package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 财务模块仓库集合
type Repositories struct {
	Expense *ExpenseRepository
	Revenue *RevenueRepository
}

// NewRepositories 创建财务模块仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Expense: NewExpenseRepository(db),
		Revenue: NewRevenueRepository(db),
	}
}
