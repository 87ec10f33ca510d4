package entity

import "time"

// User 租户用户
type User struct {
	ID           string `json:"id" gorm:"primaryKey;size:32"`
	TenantID     string `json:"tenant_id" gorm:"size:32;not null;index:idx_users_tenant_email,unique"`
	Email        string `json:"email" gorm:"size:200;not null;index:idx_users_tenant_email,unique"`
	Name         string `json:"name" gorm:"size:100;not null"`
	PasswordHash string `json:"-" gorm:"size:100;not null"`
	Role         string `json:"role" gorm:"size:20;not null;default:compras"`
	Status       string `json:"status" gorm:"size:20;default:active"` // active/disabled

	// 供应商门户用户绑定的供应商，兽医用户绑定的兽医
	SupplierID     *string `json:"supplier_id,omitempty" gorm:"size:32"`
	VeterinarianID *string `json:"veterinarian_id,omitempty" gorm:"size:32"`

	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "adm_users"
}

// 用户角色
const (
	RoleAdmin        = "admin"      // 租户管理员
	RoleFinanceiro   = "financeiro" // 财务
	RoleCompras      = "compras"    // 采购
	RoleFornecedor   = "fornecedor" // 供应商门户
	RoleVeterinario  = "veterinario"
	RoleLicenseAdmin = "license_admin" // 跨租户许可证管理
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
