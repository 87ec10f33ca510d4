package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
)

// RoleService 角色权限服务
type RoleService struct {
	roleRepo *repository.RoleRepository
}

// NewRoleService 创建角色权限服务
func NewRoleService(roleRepo *repository.RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// UpsertRoleRequest 设置角色权限请求
type UpsertRoleRequest struct {
	Role        string          `json:"role" binding:"required"`
	Permissions map[string]bool `json:"permissions" binding:"required"`
}

// List 获取租户的角色权限文档列表
func (s *RoleService) List(ctx context.Context, tenantID string) ([]entity.RolePermission, error) {
	return s.roleRepo.FindAll(ctx, tenantID)
}

// Get 获取指定角色的权限；文档不存在时返回全放行的虚拟文档
func (s *RoleService) Get(ctx context.Context, tenantID, role string) (*entity.RolePermission, error) {
	rp, err := s.roleRepo.FindByRole(ctx, tenantID, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &entity.RolePermission{
				TenantID:    tenantID,
				Role:        role,
				Permissions: entity.JSONB{},
			}, nil
		}
		return nil, err
	}
	return rp, nil
}

// Upsert 设置角色权限
// admin角色不可配置，始终放行全部权限键
func (s *RoleService) Upsert(ctx context.Context, tenantID, operatorID string, req *UpsertRoleRequest) (*entity.RolePermission, error) {
	if !validRoles[req.Role] {
		return nil, fmt.Errorf("无效的角色: %s", req.Role)
	}
	if req.Role == entity.RoleAdmin {
		return nil, fmt.Errorf("admin角色的权限不可修改")
	}

	perms := make(entity.JSONB, len(req.Permissions))
	for k, v := range req.Permissions {
		perms[k] = v
	}

	now := time.Now()
	rp := &entity.RolePermission{
		ID:          uuid.New().String()[:32],
		TenantID:    tenantID,
		Role:        req.Role,
		Permissions: perms,
		UpdatedBy:   operatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.roleRepo.Upsert(ctx, rp); err != nil {
		return nil, fmt.Errorf("upsert role permissions: %w", err)
	}

	return s.roleRepo.FindByRole(ctx, tenantID, req.Role)
}

// MyPermissions 返回指定角色放行的权限键
func (s *RoleService) MyPermissions(ctx context.Context, tenantID, role string) (map[string]bool, error) {
	allKeys := []string{
		entity.PermPurchasing, entity.PermExpenses, entity.PermRevenues,
		entity.PermReports, entity.PermSuppliers, entity.PermVets, entity.PermAdmin,
	}

	rp, err := s.roleRepo.FindByRole(ctx, tenantID, role)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	result := make(map[string]bool, len(allKeys))
	for _, key := range allKeys {
		result[key] = rp.Allows(key)
	}
	return result, nil
}
