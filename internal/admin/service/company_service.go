package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
)

// CompanyService 公司/成本中心服务
type CompanyService struct {
	companyRepo *repository.CompanyRepository
}

// NewCompanyService 创建公司服务
func NewCompanyService(companyRepo *repository.CompanyRepository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

// CreateCompanyRequest 创建公司请求
type CreateCompanyRequest struct {
	Name    string `json:"name" binding:"required"`
	CNPJ    string `json:"cnpj"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
}

// UpdateCompanyRequest 更新公司请求
type UpdateCompanyRequest struct {
	Name    *string `json:"name"`
	CNPJ    *string `json:"cnpj"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
}

// CreateCostCenterRequest 创建成本中心请求
type CreateCostCenterRequest struct {
	Name string `json:"name" binding:"required"`
}

// List 获取公司列表（含成本中心）
func (s *CompanyService) List(ctx context.Context, tenantID string) ([]entity.Company, error) {
	return s.companyRepo.FindAll(ctx, tenantID)
}

// Get 获取公司详情
func (s *CompanyService) Get(ctx context.Context, tenantID, id string) (*entity.Company, error) {
	return s.companyRepo.FindByID(ctx, tenantID, id)
}

// Create 创建公司
func (s *CompanyService) Create(ctx context.Context, tenantID, operatorID string, req *CreateCompanyRequest) (*entity.Company, error) {
	now := time.Now()
	c := &entity.Company{
		ID:        uuid.New().String()[:32],
		TenantID:  tenantID,
		Name:      req.Name,
		CNPJ:      req.CNPJ,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		CreatedBy: operatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.companyRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return c, nil
}

// Update 更新公司
func (s *CompanyService) Update(ctx context.Context, tenantID, id string, req *UpdateCompanyRequest) (*entity.Company, error) {
	c, err := s.companyRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.CNPJ != nil {
		c.CNPJ = *req.CNPJ
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.City != nil {
		c.City = *req.City
	}
	if req.State != nil {
		c.State = *req.State
	}
	c.UpdatedAt = time.Now()

	if err := s.companyRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update company: %w", err)
	}
	return c, nil
}

// Delete 删除公司及成本中心
func (s *CompanyService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.companyRepo.FindByID(ctx, tenantID, id); err != nil {
		return fmt.Errorf("find company: %w", err)
	}
	return s.companyRepo.Delete(ctx, tenantID, id)
}

// AddCostCenter 添加成本中心
func (s *CompanyService) AddCostCenter(ctx context.Context, tenantID, companyID string, req *CreateCostCenterRequest) (*entity.CostCenter, error) {
	if _, err := s.companyRepo.FindByID(ctx, tenantID, companyID); err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}

	cc := &entity.CostCenter{
		ID:        uuid.New().String()[:32],
		TenantID:  tenantID,
		CompanyID: companyID,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if err := s.companyRepo.CreateCostCenter(ctx, cc); err != nil {
		return nil, fmt.Errorf("create cost center: %w", err)
	}
	return cc, nil
}

// RemoveCostCenter 删除成本中心
func (s *CompanyService) RemoveCostCenter(ctx context.Context, tenantID, id string) error {
	if _, err := s.companyRepo.FindCostCenterByID(ctx, tenantID, id); err != nil {
		return fmt.Errorf("find cost center: %w", err)
	}
	return s.companyRepo.DeleteCostCenter(ctx, tenantID, id)
}
