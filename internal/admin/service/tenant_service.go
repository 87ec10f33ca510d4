package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	"golang.org/x/crypto/bcrypt"
)

// tenantNamePattern 租户标识：小写字母数字和连字符
var tenantNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// tenantTables 删除租户时需要级联清理的业务表（带tenant_id列）
var tenantTables = []string{
	"pur_order_activity_logs",
	"pur_purchase_orders",
	"pur_quotes",
	"pur_suppliers",
	"fin_expenses",
	"fin_revenues",
	"adm_veterinarians",
	"adm_cost_centers",
	"adm_companies",
	"adm_role_permissions",
	"adm_users",
}

// tenantChildTables 无tenant_id列的子表，按父表级联删除
var tenantChildTables = map[string]string{
	"pur_order_items":   "pur_purchase_orders",
	"pur_order_boletos": "pur_purchase_orders",
	"pur_quote_items":   "pur_quotes",
}

// TenantService 租户/许可证服务
type TenantService struct {
	tenantRepo *repository.TenantRepository
	userRepo   *repository.UserRepository
}

// NewTenantService 创建租户服务
func NewTenantService(tenantRepo *repository.TenantRepository, userRepo *repository.UserRepository) *TenantService {
	return &TenantService{tenantRepo: tenantRepo, userRepo: userRepo}
}

// CreateTenantRequest 创建租户请求
type CreateTenantRequest struct {
	Name          string `json:"name" binding:"required"`
	DisplayName   string `json:"display_name" binding:"required"`
	CNPJ          string `json:"cnpj"`
	LicensePlan   string `json:"license_plan"`
	MaxUsers      int    `json:"max_users"`
	ExpiresAt     string `json:"expires_at"` // YYYY-MM-DD
	ContactName   string `json:"contact_name"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
	AdminName     string `json:"admin_name" binding:"required"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"required,min=8"`
	Notes         string `json:"notes"`
}

// UpdateTenantRequest 更新租户请求
type UpdateTenantRequest struct {
	DisplayName  *string `json:"display_name"`
	CNPJ         *string `json:"cnpj"`
	LicensePlan  *string `json:"license_plan"`
	MaxUsers     *int    `json:"max_users"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	Notes        *string `json:"notes"`
}

// TenantListResult 租户列表结果
type TenantListResult struct {
	Items    []entity.Tenant `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// List 获取租户列表
func (s *TenantService) List(ctx context.Context, page, pageSize int, filters map[string]string) (*TenantListResult, error) {
	items, total, err := s.tenantRepo.FindAll(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return &TenantListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get 获取租户详情
func (s *TenantService) Get(ctx context.Context, id string) (*entity.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, id)
}

// Create 创建租户并同时建立初始管理员用户
func (s *TenantService) Create(ctx context.Context, operatorID string, req *CreateTenantRequest) (*entity.Tenant, error) {
	if !tenantNamePattern.MatchString(req.Name) {
		return nil, fmt.Errorf("租户标识只能包含小写字母数字和连字符")
	}

	if _, err := s.tenantRepo.FindByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("租户标识已存在: %s", req.Name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check tenant name: %w", err)
	}

	plan := req.LicensePlan
	if plan == "" {
		plan = entity.LicensePlanBasic
	}
	maxUsers := req.MaxUsers
	if maxUsers <= 0 {
		maxUsers = 10
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse("2006-01-02", req.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("到期日期格式无效: %s", req.ExpiresAt)
		}
		expiresAt = &t
	}

	now := time.Now()
	tenant := &entity.Tenant{
		ID:            uuid.New().String()[:32],
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		CNPJ:          req.CNPJ,
		LicenseStatus: entity.LicenseStatusActive,
		LicensePlan:   plan,
		ExpiresAt:     expiresAt,
		MaxUsers:      maxUsers,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		CreatedBy:     operatorID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Notes:         req.Notes,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &entity.User{
		ID:           uuid.New().String()[:32],
		TenantID:     tenant.ID,
		Email:        req.AdminEmail,
		Name:         req.AdminName,
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}

	return tenant, nil
}

// Update 更新租户信息
func (s *TenantService) Update(ctx context.Context, id string, req *UpdateTenantRequest) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}

	if req.DisplayName != nil {
		tenant.DisplayName = *req.DisplayName
	}
	if req.CNPJ != nil {
		tenant.CNPJ = *req.CNPJ
	}
	if req.LicensePlan != nil {
		tenant.LicensePlan = *req.LicensePlan
	}
	if req.MaxUsers != nil && *req.MaxUsers > 0 {
		tenant.MaxUsers = *req.MaxUsers
	}
	if req.ContactName != nil {
		tenant.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		tenant.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		tenant.ContactPhone = *req.ContactPhone
	}
	if req.Notes != nil {
		tenant.Notes = *req.Notes
	}
	tenant.UpdatedAt = time.Now()

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("update tenant: %w", err)
	}
	return tenant, nil
}

// Renew 续期许可证并恢复为active
func (s *TenantService) Renew(ctx context.Context, id string, expiresAt time.Time) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}

	if expiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("续期日期必须在当前日期之后")
	}

	tenant.LicenseStatus = entity.LicenseStatusActive
	tenant.ExpiresAt = &expiresAt
	tenant.UpdatedAt = time.Now()

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("renew tenant: %w", err)
	}
	return tenant, nil
}

// Suspend 暂停许可证，租户用户将无法登录
func (s *TenantService) Suspend(ctx context.Context, id string) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}

	tenant.LicenseStatus = entity.LicenseStatusSuspended
	tenant.UpdatedAt = time.Now()

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("suspend tenant: %w", err)
	}
	return tenant, nil
}

// Activate 恢复许可证
func (s *TenantService) Activate(ctx context.Context, id string) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}

	tenant.LicenseStatus = entity.LicenseStatusActive
	tenant.UpdatedAt = time.Now()

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("activate tenant: %w", err)
	}
	return tenant, nil
}

// Delete 删除租户及其全部业务数据，不可恢复
func (s *TenantService) Delete(ctx context.Context, id string) error {
	if _, err := s.tenantRepo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("find tenant: %w", err)
	}
	return s.tenantRepo.DeleteCascade(ctx, id, tenantTables, tenantChildTables)
}

// SweepExpired 将到期的active租户标记为expired，返回处理数量
func (s *TenantService) SweepExpired(ctx context.Context) (int, error) {
	items, _, err := s.tenantRepo.FindAll(ctx, 1, 1000, map[string]string{"license_status": entity.LicenseStatusActive})
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}

	now := time.Now()
	count := 0
	for i := range items {
		t := &items[i]
		if t.ExpiresAt == nil || now.Before(*t.ExpiresAt) {
			continue
		}
		t.LicenseStatus = entity.LicenseStatusExpired
		t.UpdatedAt = now
		if err := s.tenantRepo.Update(ctx, t); err != nil {
			return count, fmt.Errorf("expire tenant %s: %w", t.ID, err)
		}
		count++
	}
	return count, nil
}
