package entity

import "time"

// Tenant 租户（客户诊所），所有业务数据按租户隔离
type Tenant struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	Name        string `json:"name" gorm:"size:64;uniqueIndex;not null"` // 租户标识（路径/命名空间用）
	DisplayName string `json:"display_name" gorm:"size:200;not null"`
	CNPJ        string `json:"cnpj" gorm:"size:20"`

	// 许可证
	LicenseStatus string     `json:"license_status" gorm:"size:20;default:active"` // active/suspended/expired
	LicensePlan   string     `json:"license_plan" gorm:"size:20;default:basic"`    // basic/standard/full
	ExpiresAt     *time.Time `json:"expires_at"`
	MaxUsers      int        `json:"max_users" gorm:"default:10"`

	ContactName  string `json:"contact_name" gorm:"size:100"`
	ContactEmail string `json:"contact_email" gorm:"size:200"`
	ContactPhone string `json:"contact_phone" gorm:"size:50"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (Tenant) TableName() string {
	return "adm_tenants"
}

// 许可证状态
const (
	LicenseStatusActive    = "active"
	LicenseStatusSuspended = "suspended"
	LicenseStatusExpired   = "expired"
)

// 许可证套餐
const (
	LicensePlanBasic    = "basic"
	LicensePlanStandard = "standard"
	LicensePlanFull     = "full"
)
