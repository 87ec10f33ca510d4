package entity

import "time"

// Veterinarian 兽医
type Veterinarian struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	TenantID string `json:"tenant_id" gorm:"size:32;not null;index"`
	Name     string `json:"name" gorm:"size:100;not null"`
	CRMV     string `json:"crmv" gorm:"size:20"` // 兽医执业注册号
	Email    string `json:"email" gorm:"size:200"`
	Phone    string `json:"phone" gorm:"size:50"`
	CPF      string `json:"cpf" gorm:"size:20"`

	Specialty string `json:"specialty" gorm:"size:100"`
	Status    string `json:"status" gorm:"size:20;default:active"` // active/inactive

	// 结算信息
	BankName    string   `json:"bank_name" gorm:"size:200"`
	BankAccount string   `json:"bank_account" gorm:"size:50"`
	PixKey      string   `json:"pix_key" gorm:"size:100"`
	MonthlyFee  *float64 `json:"monthly_fee" gorm:"type:decimal(12,2)"`

	// 绑定的门户用户
	UserID *string `json:"user_id,omitempty" gorm:"size:32"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (Veterinarian) TableName() string {
	return "adm_veterinarians"
}

// 兽医状态
const (
	VetStatusActive   = "active"
	VetStatusInactive = "inactive"
)
