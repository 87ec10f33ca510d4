package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	finentity "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/entity"
	finrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
	"golang.org/x/crypto/bcrypt"
)

// VeterinarianService 兽医服务
type VeterinarianService struct {
	vetRepo     *repository.VeterinarianRepository
	userRepo    *repository.UserRepository
	expenseRepo *finrepo.ExpenseRepository
}

// NewVeterinarianService 创建兽医服务
func NewVeterinarianService(
	vetRepo *repository.VeterinarianRepository,
	userRepo *repository.UserRepository,
	expenseRepo *finrepo.ExpenseRepository,
) *VeterinarianService {
	return &VeterinarianService{vetRepo: vetRepo, userRepo: userRepo, expenseRepo: expenseRepo}
}

// CreateVeterinarianRequest 创建兽医请求
type CreateVeterinarianRequest struct {
	Name        string   `json:"name" binding:"required"`
	CRMV        string   `json:"crmv"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	CPF         string   `json:"cpf"`
	Specialty   string   `json:"specialty"`
	BankName    string   `json:"bank_name"`
	BankAccount string   `json:"bank_account"`
	PixKey      string   `json:"pix_key"`
	MonthlyFee  *float64 `json:"monthly_fee"`
	Notes       string   `json:"notes"`

	// 同时创建门户登录用户
	CreateUser   bool   `json:"create_user"`
	UserPassword string `json:"user_password"`
}

// UpdateVeterinarianRequest 更新兽医请求
type UpdateVeterinarianRequest struct {
	Name        *string  `json:"name"`
	CRMV        *string  `json:"crmv"`
	Email       *string  `json:"email"`
	Phone       *string  `json:"phone"`
	CPF         *string  `json:"cpf"`
	Specialty   *string  `json:"specialty"`
	Status      *string  `json:"status"`
	BankName    *string  `json:"bank_name"`
	BankAccount *string  `json:"bank_account"`
	PixKey      *string  `json:"pix_key"`
	MonthlyFee  *float64 `json:"monthly_fee"`
	Notes       *string  `json:"notes"`
}

// SchedulePaymentRequest 登记兽医结算请求
type SchedulePaymentRequest struct {
	CompanyID string  `json:"company_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	DueDate   string  `json:"due_date" binding:"required"` // YYYY-MM-DD
	Notes     string  `json:"notes"`
}

// VeterinarianListResult 兽医列表结果
type VeterinarianListResult struct {
	Items    []entity.Veterinarian `json:"items"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// List 获取兽医列表
func (s *VeterinarianService) List(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) (*VeterinarianListResult, error) {
	items, total, err := s.vetRepo.FindAll(ctx, tenantID, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list veterinarians: %w", err)
	}
	return &VeterinarianListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get 获取兽医详情
func (s *VeterinarianService) Get(ctx context.Context, tenantID, id string) (*entity.Veterinarian, error) {
	return s.vetRepo.FindByID(ctx, tenantID, id)
}

// Create 创建兽医，可选同时创建门户用户
func (s *VeterinarianService) Create(ctx context.Context, tenantID, operatorID string, req *CreateVeterinarianRequest) (*entity.Veterinarian, error) {
	now := time.Now()
	vet := &entity.Veterinarian{
		ID:          uuid.New().String()[:32],
		TenantID:    tenantID,
		Name:        req.Name,
		CRMV:        req.CRMV,
		Email:       req.Email,
		Phone:       req.Phone,
		CPF:         req.CPF,
		Specialty:   req.Specialty,
		Status:      entity.VetStatusActive,
		BankName:    req.BankName,
		BankAccount: req.BankAccount,
		PixKey:      req.PixKey,
		MonthlyFee:  req.MonthlyFee,
		CreatedBy:   operatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Notes:       req.Notes,
	}

	if req.CreateUser {
		if req.Email == "" {
			return nil, fmt.Errorf("创建门户用户需要提供邮箱")
		}
		if len(req.UserPassword) < 8 {
			return nil, fmt.Errorf("门户用户密码至少8位")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.UserPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}

		user := &entity.User{
			ID:             uuid.New().String()[:32],
			TenantID:       tenantID,
			Email:          req.Email,
			Name:           req.Name,
			PasswordHash:   string(hash),
			Role:           entity.RoleVeterinario,
			Status:         entity.UserStatusActive,
			VeterinarianID: &vet.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create portal user: %w", err)
		}
		vet.UserID = &user.ID
	}

	if err := s.vetRepo.Create(ctx, vet); err != nil {
		return nil, fmt.Errorf("create veterinarian: %w", err)
	}
	return vet, nil
}

// Update 更新兽医，名称变化同步到门户用户
func (s *VeterinarianService) Update(ctx context.Context, tenantID, id string, req *UpdateVeterinarianRequest) (*entity.Veterinarian, error) {
	vet, err := s.vetRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("find veterinarian: %w", err)
	}

	if req.Name != nil {
		vet.Name = *req.Name
	}
	if req.CRMV != nil {
		vet.CRMV = *req.CRMV
	}
	if req.Email != nil {
		vet.Email = *req.Email
	}
	if req.Phone != nil {
		vet.Phone = *req.Phone
	}
	if req.CPF != nil {
		vet.CPF = *req.CPF
	}
	if req.Specialty != nil {
		vet.Specialty = *req.Specialty
	}
	if req.Status != nil {
		if *req.Status != entity.VetStatusActive && *req.Status != entity.VetStatusInactive {
			return nil, fmt.Errorf("无效的状态: %s", *req.Status)
		}
		vet.Status = *req.Status
	}
	if req.BankName != nil {
		vet.BankName = *req.BankName
	}
	if req.BankAccount != nil {
		vet.BankAccount = *req.BankAccount
	}
	if req.PixKey != nil {
		vet.PixKey = *req.PixKey
	}
	if req.MonthlyFee != nil {
		vet.MonthlyFee = req.MonthlyFee
	}
	if req.Notes != nil {
		vet.Notes = *req.Notes
	}
	vet.UpdatedAt = time.Now()

	if err := s.vetRepo.Update(ctx, vet); err != nil {
		return nil, fmt.Errorf("update veterinarian: %w", err)
	}

	if req.Name != nil && vet.UserID != nil {
		if user, err := s.userRepo.FindByID(ctx, tenantID, *vet.UserID); err == nil {
			user.Name = *req.Name
			user.UpdatedAt = time.Now()
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("sync portal user: %w", err)
			}
		}
	}

	return vet, nil
}

// Delete 删除兽医，门户用户一并停用
func (s *VeterinarianService) Delete(ctx context.Context, tenantID, id string) error {
	vet, err := s.vetRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("find veterinarian: %w", err)
	}

	if vet.UserID != nil {
		if user, err := s.userRepo.FindByID(ctx, tenantID, *vet.UserID); err == nil {
			user.Status = entity.UserStatusDisabled
			user.UpdatedAt = time.Now()
			if err := s.userRepo.Update(ctx, user); err != nil {
				return fmt.Errorf("disable portal user: %w", err)
			}
		}
	}

	return s.vetRepo.Delete(ctx, tenantID, id)
}

// SchedulePayment 登记兽医结算，生成一笔未支付的支出
func (s *VeterinarianService) SchedulePayment(ctx context.Context, tenantID, operatorID, vetID string, req *SchedulePaymentRequest) (*finentity.Expense, error) {
	vet, err := s.vetRepo.FindByID(ctx, tenantID, vetID)
	if err != nil {
		return nil, fmt.Errorf("find veterinarian: %w", err)
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("到期日期格式无效: %s", req.DueDate)
	}

	now := time.Now()
	expense := &finentity.Expense{
		ID:          uuid.New().String()[:32],
		TenantID:    tenantID,
		CompanyID:   req.CompanyID,
		Category:    finentity.ExpenseCategoryVeterinarios,
		Description: fmt.Sprintf("Pagamento veterinário: %s", vet.Name),
		Amount:      req.Amount,
		Date:        now,
		DueDate:     &dueDate,
		Paid:        false,
		SourceType:  finentity.ExpenseSourceVetPayment,
		SourceID:    &vet.ID,
		CreatedBy:   operatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Notes:       req.Notes,
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return expense, nil
}
