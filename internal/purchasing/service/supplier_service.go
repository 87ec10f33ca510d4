package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	admentity "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	admrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/shared/cnpj"
	"golang.org/x/crypto/bcrypt"
)

// validCategories 供应商分类
var validCategories = map[string]bool{
	entity.SupplierCategoryMedicamentos: true,
	entity.SupplierCategoryRacao:        true,
	entity.SupplierCategoryEquipamentos: true,
	entity.SupplierCategoryServicos:     true,
	entity.SupplierCategoryOutros:       true,
}

// SupplierService 供应商服务
type SupplierService struct {
	supplierRepo *repository.SupplierRepository
	userRepo     *admrepo.UserRepository
	cnpjClient   *cnpj.Client
}

// NewSupplierService 创建供应商服务
func NewSupplierService(
	supplierRepo *repository.SupplierRepository,
	userRepo *admrepo.UserRepository,
	cnpjClient *cnpj.Client,
) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo, userRepo: userRepo, cnpjClient: cnpjClient}
}

// CreateSupplierRequest 创建供应商请求
type CreateSupplierRequest struct {
	Name         string `json:"name" binding:"required"`
	TradeName    string `json:"trade_name"`
	CNPJ         string `json:"cnpj"`
	Category     string `json:"category" binding:"required"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	BankName     string `json:"bank_name"`
	BankAccount  string `json:"bank_account"`
	PixKey       string `json:"pix_key"`
	Notes        string `json:"notes"`

	// 同时创建供应商门户用户
	CreateUser   bool   `json:"create_user"`
	UserPassword string `json:"user_password"`
}

// UpdateSupplierRequest 更新供应商请求
type UpdateSupplierRequest struct {
	Name         *string `json:"name"`
	TradeName    *string `json:"trade_name"`
	CNPJ         *string `json:"cnpj"`
	Category     *string `json:"category"`
	Status       *string `json:"status"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	BankName     *string `json:"bank_name"`
	BankAccount  *string `json:"bank_account"`
	PixKey       *string `json:"pix_key"`
	Notes        *string `json:"notes"`
}

// SupplierListResult 供应商列表结果
type SupplierListResult struct {
	Items    []entity.Supplier `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// List 获取供应商列表
func (s *SupplierService) List(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) (*SupplierListResult, error) {
	items, total, err := s.supplierRepo.FindAll(ctx, tenantID, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return &SupplierListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get 获取供应商详情
func (s *SupplierService) Get(ctx context.Context, tenantID, id string) (*entity.Supplier, error) {
	return s.supplierRepo.FindByID(ctx, tenantID, id)
}

// Create 创建供应商。填写了CNPJ时查询公共登记信息补全法定名称和地址。
func (s *SupplierService) Create(ctx context.Context, tenantID, operatorID string, req *CreateSupplierRequest) (*entity.Supplier, error) {
	if !validCategories[req.Category] {
		return nil, fmt.Errorf("无效的供应商分类: %s", req.Category)
	}

	code, err := s.supplierRepo.GenerateCode(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	now := time.Now()
	supplier := &entity.Supplier{
		ID:           uuid.New().String()[:32],
		TenantID:     tenantID,
		Code:         code,
		Name:         req.Name,
		TradeName:    req.TradeName,
		CNPJ:         req.CNPJ,
		Category:     req.Category,
		Status:       entity.SupplierStatusActive,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		BankName:     req.BankName,
		BankAccount:  req.BankAccount,
		PixKey:       req.PixKey,
		CreatedBy:    operatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Notes:        req.Notes,
	}

	if req.CNPJ != "" {
		s.enrichFromCNPJ(ctx, supplier)
	}

	if req.CreateUser {
		if req.ContactEmail == "" {
			return nil, fmt.Errorf("创建门户用户需要提供联系邮箱")
		}
		if len(req.UserPassword) < 8 {
			return nil, fmt.Errorf("门户用户密码至少8位")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.UserPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}

		user := &admentity.User{
			ID:           uuid.New().String()[:32],
			TenantID:     tenantID,
			Email:        req.ContactEmail,
			Name:         supplier.Name,
			PasswordHash: string(hash),
			Role:         admentity.RoleFornecedor,
			Status:       admentity.UserStatusActive,
			SupplierID:   &supplier.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create portal user: %w", err)
		}
		supplier.UserID = &user.ID
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return supplier, nil
}

// enrichFromCNPJ 查询CNPJ登记信息补全空白字段。查询失败不阻断创建。
func (s *SupplierService) enrichFromCNPJ(ctx context.Context, supplier *entity.Supplier) {
	if s.cnpjClient == nil {
		return
	}

	info, err := s.cnpjClient.Lookup(ctx, supplier.CNPJ)
	if err != nil {
		return
	}

	supplier.CNPJ = info.CNPJ
	if supplier.TradeName == "" {
		supplier.TradeName = info.NomeFantasia
	}
	if info.RazaoSocial != "" && supplier.Name == supplier.TradeName {
		supplier.Name = info.RazaoSocial
	}
	if supplier.Address == "" && info.Logradouro != "" {
		supplier.Address = fmt.Sprintf("%s, %s", info.Logradouro, info.Numero)
	}
	if supplier.City == "" {
		supplier.City = info.Municipio
	}
	if supplier.State == "" {
		supplier.State = info.UF
	}
	if supplier.ContactEmail == "" {
		supplier.ContactEmail = info.Email
	}
	if supplier.ContactPhone == "" {
		supplier.ContactPhone = info.Telefone
	}
}

// LookupCNPJ 查询CNPJ登记信息（表单预填用）
func (s *SupplierService) LookupCNPJ(ctx context.Context, rawCNPJ string) (*cnpj.CompanyInfo, error) {
	if s.cnpjClient == nil {
		return nil, fmt.Errorf("CNPJ查询服务未配置")
	}
	return s.cnpjClient.Lookup(ctx, rawCNPJ)
}

// Update 更新供应商
func (s *SupplierService) Update(ctx context.Context, tenantID, id string, req *UpdateSupplierRequest) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("find supplier: %w", err)
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.TradeName != nil {
		supplier.TradeName = *req.TradeName
	}
	if req.CNPJ != nil {
		supplier.CNPJ = *req.CNPJ
	}
	if req.Category != nil {
		if !validCategories[*req.Category] {
			return nil, fmt.Errorf("无效的供应商分类: %s", *req.Category)
		}
		supplier.Category = *req.Category
	}
	if req.Status != nil {
		if *req.Status != entity.SupplierStatusActive && *req.Status != entity.SupplierStatusInactive {
			return nil, fmt.Errorf("无效的状态: %s", *req.Status)
		}
		supplier.Status = *req.Status
	}
	if req.ContactName != nil {
		supplier.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		supplier.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		supplier.ContactPhone = *req.ContactPhone
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.City != nil {
		supplier.City = *req.City
	}
	if req.State != nil {
		supplier.State = *req.State
	}
	if req.BankName != nil {
		supplier.BankName = *req.BankName
	}
	if req.BankAccount != nil {
		supplier.BankAccount = *req.BankAccount
	}
	if req.PixKey != nil {
		supplier.PixKey = *req.PixKey
	}
	if req.Notes != nil {
		supplier.Notes = *req.Notes
	}
	supplier.UpdatedAt = time.Now()

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return supplier, nil
}

// Delete 删除供应商，门户用户一并停用
func (s *SupplierService) Delete(ctx context.Context, tenantID, id string) error {
	supplier, err := s.supplierRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("find supplier: %w", err)
	}

	if supplier.UserID != nil {
		if user, err := s.userRepo.FindByID(ctx, tenantID, *supplier.UserID); err == nil {
			user.Status = admentity.UserStatusDisabled
			user.UpdatedAt = time.Now()
			if err := s.userRepo.Update(ctx, user); err != nil {
				return fmt.Errorf("disable portal user: %w", err)
			}
		}
	}

	return s.supplierRepo.Delete(ctx, tenantID, id)
}
