package entity

import "time"

// RolePermission 角色权限文档，Permissions为 权限键→bool 的映射。
// 缺失的键视为可见，只有显式 false 才隐藏对应页签（默认放行）。
type RolePermission struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	TenantID string `json:"tenant_id" gorm:"size:32;not null;index:idx_role_perms_tenant_role,unique"`
	Role     string `json:"role" gorm:"size:20;not null;index:idx_role_perms_tenant_role,unique"`

	Permissions JSONB `json:"permissions" gorm:"type:jsonb"`

	UpdatedBy string    `json:"updated_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RolePermission) TableName() string {
	return "adm_role_permissions"
}

// Allows 判断权限键是否放行（缺失键默认放行）
func (r *RolePermission) Allows(key string) bool {
	if r == nil || r.Permissions == nil {
		return true
	}
	v, ok := r.Permissions[key]
	if !ok {
		return true
	}
	allowed, ok := v.(bool)
	if !ok {
		return true
	}
	return allowed
}

// 权限键（页签可见性）
const (
	PermPurchasing = "purchasing"
	PermExpenses   = "expenses"
	PermRevenues   = "revenues"
	PermReports    = "reports"
	PermSuppliers  = "suppliers"
	PermVets       = "veterinarians"
	PermAdmin      = "admin"
)
