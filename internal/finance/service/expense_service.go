package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
)

// validExpenseCategories 支出分类
var validExpenseCategories = map[string]bool{
	entity.ExpenseCategoryFolha:        true,
	entity.ExpenseCategoryAluguel:      true,
	entity.ExpenseCategoryInsumos:      true,
	entity.ExpenseCategoryImpostos:     true,
	entity.ExpenseCategoryVeterinarios: true,
	entity.ExpenseCategoryOutros:       true,
}

// ExpenseService 支出服务
type ExpenseService struct {
	expenseRepo *repository.ExpenseRepository
}

// NewExpenseService 创建支出服务
func NewExpenseService(expenseRepo *repository.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// CreateExpenseRequest 创建支出请求
type CreateExpenseRequest struct {
	CompanyID     string  `json:"company_id" binding:"required"`
	CostCenterID  *string `json:"cost_center_id"`
	Category      string  `json:"category" binding:"required"`
	Description   string  `json:"description" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Date          string  `json:"date"`     // YYYY-MM-DD，缺省为当天
	DueDate       string  `json:"due_date"` // YYYY-MM-DD
	PaymentMethod string  `json:"payment_method"`
	Paid          bool    `json:"paid"`
	Notes         string  `json:"notes"`
}

// UpdateExpenseRequest 更新支出请求
type UpdateExpenseRequest struct {
	Category      *string  `json:"category"`
	Description   *string  `json:"description"`
	Amount        *float64 `json:"amount"`
	Date          *string  `json:"date"`
	DueDate       *string  `json:"due_date"`
	PaymentMethod *string  `json:"payment_method"`
	Paid          *bool    `json:"paid"`
	Notes         *string  `json:"notes"`
}

// ExpenseListResult 支出列表结果
type ExpenseListResult struct {
	Items    []entity.Expense `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// List 获取支出列表
func (s *ExpenseService) List(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) (*ExpenseListResult, error) {
	items, total, err := s.expenseRepo.FindAll(ctx, tenantID, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return &ExpenseListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get 获取支出详情
func (s *ExpenseService) Get(ctx context.Context, tenantID, id string) (*entity.Expense, error) {
	return s.expenseRepo.FindByID(ctx, tenantID, id)
}

// Create 创建手工支出
func (s *ExpenseService) Create(ctx context.Context, tenantID, operatorID string, req *CreateExpenseRequest) (*entity.Expense, error) {
	if !validExpenseCategories[req.Category] {
		return nil, fmt.Errorf("无效的支出分类: %s", req.Category)
	}

	date := time.Now()
	if req.Date != "" {
		t, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("日期格式无效: %s", req.Date)
		}
		date = t
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		t, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("到期日期格式无效: %s", req.DueDate)
		}
		dueDate = &t
	}

	now := time.Now()
	expense := &entity.Expense{
		ID:            uuid.New().String()[:32],
		TenantID:      tenantID,
		CompanyID:     req.CompanyID,
		CostCenterID:  req.CostCenterID,
		Category:      req.Category,
		Description:   req.Description,
		Amount:        req.Amount,
		Date:          date,
		DueDate:       dueDate,
		PaymentMethod: req.PaymentMethod,
		Paid:          req.Paid,
		SourceType:    entity.ExpenseSourceManual,
		CreatedBy:     operatorID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Notes:         req.Notes,
	}
	if req.Paid {
		expense.PaidAt = &now
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return expense, nil
}

// Update 更新支出。订单和兽医结算生成的支出只允许修改支付状态和备注。
func (s *ExpenseService) Update(ctx context.Context, tenantID, id string, req *UpdateExpenseRequest) (*entity.Expense, error) {
	expense, err := s.expenseRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("find expense: %w", err)
	}

	generated := expense.SourceType != "" && expense.SourceType != entity.ExpenseSourceManual
	if generated && (req.Category != nil || req.Description != nil || req.Amount != nil || req.Date != nil) {
		return nil, fmt.Errorf("自动生成的支出只能修改支付状态和备注")
	}

	if req.Category != nil {
		if !validExpenseCategories[*req.Category] {
			return nil, fmt.Errorf("无效的支出分类: %s", *req.Category)
		}
		expense.Category = *req.Category
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, fmt.Errorf("金额必须大于0")
		}
		expense.Amount = *req.Amount
	}
	if req.Date != nil {
		t, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, fmt.Errorf("日期格式无效: %s", *req.Date)
		}
		expense.Date = t
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			expense.DueDate = nil
		} else {
			t, err := time.Parse("2006-01-02", *req.DueDate)
			if err != nil {
				return nil, fmt.Errorf("到期日期格式无效: %s", *req.DueDate)
			}
			expense.DueDate = &t
		}
	}
	if req.PaymentMethod != nil {
		expense.PaymentMethod = *req.PaymentMethod
	}
	if req.Paid != nil {
		expense.Paid = *req.Paid
		if *req.Paid {
			now := time.Now()
			expense.PaidAt = &now
		} else {
			expense.PaidAt = nil
		}
	}
	if req.Notes != nil {
		expense.Notes = *req.Notes
	}
	expense.UpdatedAt = time.Now()

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return expense, nil
}

// Delete 删除支出，自动生成的支出不可删除
func (s *ExpenseService) Delete(ctx context.Context, tenantID, id string) error {
	expense, err := s.expenseRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("find expense: %w", err)
	}
	if expense.SourceType != "" && expense.SourceType != entity.ExpenseSourceManual {
		return fmt.Errorf("自动生成的支出不可删除")
	}
	return s.expenseRepo.Delete(ctx, tenantID, id)
}
