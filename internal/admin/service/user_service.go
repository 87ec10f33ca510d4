package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	"golang.org/x/crypto/bcrypt"
)

// validRoles 可分配的租户内角色
var validRoles = map[string]bool{
	entity.RoleAdmin:       true,
	entity.RoleFinanceiro:  true,
	entity.RoleCompras:     true,
	entity.RoleFornecedor:  true,
	entity.RoleVeterinario: true,
}

// UserService 用户服务
type UserService struct {
	userRepo   *repository.UserRepository
	tenantRepo *repository.TenantRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo *repository.UserRepository, tenantRepo *repository.TenantRepository) *UserService {
	return &UserService{userRepo: userRepo, tenantRepo: tenantRepo}
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Email          string  `json:"email" binding:"required,email"`
	Name           string  `json:"name" binding:"required"`
	Password       string  `json:"password" binding:"required,min=8"`
	Role           string  `json:"role" binding:"required"`
	SupplierID     *string `json:"supplier_id"`
	VeterinarianID *string `json:"veterinarian_id"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
	Password *string `json:"password"`
}

// UserListResult 用户列表结果
type UserListResult struct {
	Items    []entity.User `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// List 获取用户列表
func (s *UserService) List(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) (*UserListResult, error) {
	items, total, err := s.userRepo.FindAll(ctx, tenantID, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &UserListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get 获取用户详情
func (s *UserService) Get(ctx context.Context, tenantID, id string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, tenantID, id)
}

// Create 创建用户，受租户许可证max_users限制
func (s *UserService) Create(ctx context.Context, tenantID string, req *CreateUserRequest) (*entity.User, error) {
	if !validRoles[req.Role] {
		return nil, fmt.Errorf("无效的角色: %s", req.Role)
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}

	count, err := s.tenantRepo.CountUsers(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if int(count) >= tenant.MaxUsers {
		return nil, fmt.Errorf("已达到许可证允许的最大用户数: %d", tenant.MaxUsers)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:             uuid.New().String()[:32],
		TenantID:       tenantID,
		Email:          req.Email,
		Name:           req.Name,
		PasswordHash:   string(hash),
		Role:           req.Role,
		Status:         entity.UserStatusActive,
		SupplierID:     req.SupplierID,
		VeterinarianID: req.VeterinarianID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Update 更新用户
func (s *UserService) Update(ctx context.Context, tenantID, id string, req *UpdateUserRequest) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !validRoles[*req.Role] {
			return nil, fmt.Errorf("无效的角色: %s", *req.Role)
		}
		user.Role = *req.Role
	}
	if req.Status != nil {
		if *req.Status != entity.UserStatusActive && *req.Status != entity.UserStatusDisabled {
			return nil, fmt.Errorf("无效的状态: %s", *req.Status)
		}
		user.Status = *req.Status
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return nil, fmt.Errorf("密码至少8位")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete 删除用户
func (s *UserService) Delete(ctx context.Context, tenantID, id, operatorID string) error {
	if id == operatorID {
		return fmt.Errorf("不能删除当前登录用户")
	}
	if _, err := s.userRepo.FindByID(ctx, tenantID, id); err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	return s.userRepo.Delete(ctx, tenantID, id)
}
