package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
)

// validRevenueCategories 收入分类
var validRevenueCategories = map[string]bool{
	entity.RevenueCategoryConsultas:  true,
	entity.RevenueCategoryCirurgias:  true,
	entity.RevenueCategoryVendas:     true,
	entity.RevenueCategoryInternacao: true,
	entity.RevenueCategoryOutros:     true,
}

// RevenueService 收入服务
type RevenueService struct {
	revenueRepo *repository.RevenueRepository
}

// NewRevenueService 创建收入服务
func NewRevenueService(revenueRepo *repository.RevenueRepository) *RevenueService {
	return &RevenueService{revenueRepo: revenueRepo}
}

// CreateRevenueRequest 创建收入请求
type CreateRevenueRequest struct {
	CompanyID     string  `json:"company_id" binding:"required"`
	Category      string  `json:"category" binding:"required"`
	Description   string  `json:"description" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Date          string  `json:"date"` // YYYY-MM-DD，缺省为当天
	PaymentMethod string  `json:"payment_method"`
	Received      bool    `json:"received"`
	Notes         string  `json:"notes"`
}

// UpdateRevenueRequest 更新收入请求
type UpdateRevenueRequest struct {
	Category      *string  `json:"category"`
	Description   *string  `json:"description"`
	Amount        *float64 `json:"amount"`
	Date          *string  `json:"date"`
	PaymentMethod *string  `json:"payment_method"`
	Received      *bool    `json:"received"`
	Notes         *string  `json:"notes"`
}

// RevenueListResult 收入列表结果
type RevenueListResult struct {
	Items    []entity.Revenue `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// List 获取收入列表
func (s *RevenueService) List(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) (*RevenueListResult, error) {
	items, total, err := s.revenueRepo.FindAll(ctx, tenantID, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list revenues: %w", err)
	}
	return &RevenueListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get 获取收入详情
func (s *RevenueService) Get(ctx context.Context, tenantID, id string) (*entity.Revenue, error) {
	return s.revenueRepo.FindByID(ctx, tenantID, id)
}

// Create 创建收入
func (s *RevenueService) Create(ctx context.Context, tenantID, operatorID string, req *CreateRevenueRequest) (*entity.Revenue, error) {
	if !validRevenueCategories[req.Category] {
		return nil, fmt.Errorf("无效的收入分类: %s", req.Category)
	}

	date := time.Now()
	if req.Date != "" {
		t, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("日期格式无效: %s", req.Date)
		}
		date = t
	}

	now := time.Now()
	revenue := &entity.Revenue{
		ID:            uuid.New().String()[:32],
		TenantID:      tenantID,
		CompanyID:     req.CompanyID,
		Category:      req.Category,
		Description:   req.Description,
		Amount:        req.Amount,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Received:      req.Received,
		CreatedBy:     operatorID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Notes:         req.Notes,
	}
	if req.Received {
		revenue.ReceivedAt = &now
	}

	if err := s.revenueRepo.Create(ctx, revenue); err != nil {
		return nil, fmt.Errorf("create revenue: %w", err)
	}
	return revenue, nil
}

// Update 更新收入
func (s *RevenueService) Update(ctx context.Context, tenantID, id string, req *UpdateRevenueRequest) (*entity.Revenue, error) {
	revenue, err := s.revenueRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("find revenue: %w", err)
	}

	if req.Category != nil {
		if !validRevenueCategories[*req.Category] {
			return nil, fmt.Errorf("无效的收入分类: %s", *req.Category)
		}
		revenue.Category = *req.Category
	}
	if req.Description != nil {
		revenue.Description = *req.Description
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, fmt.Errorf("金额必须大于0")
		}
		revenue.Amount = *req.Amount
	}
	if req.Date != nil {
		t, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, fmt.Errorf("日期格式无效: %s", *req.Date)
		}
		revenue.Date = t
	}
	if req.PaymentMethod != nil {
		revenue.PaymentMethod = *req.PaymentMethod
	}
	if req.Received != nil {
		revenue.Received = *req.Received
		if *req.Received {
			now := time.Now()
			revenue.ReceivedAt = &now
		} else {
			revenue.ReceivedAt = nil
		}
	}
	if req.Notes != nil {
		revenue.Notes = *req.Notes
	}
	revenue.UpdatedAt = time.Now()

	if err := s.revenueRepo.Update(ctx, revenue); err != nil {
		return nil, fmt.Errorf("update revenue: %w", err)
	}
	return revenue, nil
}

// Delete 删除收入
func (s *RevenueService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.revenueRepo.FindByID(ctx, tenantID, id); err != nil {
		return fmt.Errorf("find revenue: %w", err)
	}
	return s.revenueRepo.Delete(ctx, tenantID, id)
}
