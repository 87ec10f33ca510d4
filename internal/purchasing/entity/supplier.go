package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB JSONB类型
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// Supplier 供应商
type Supplier struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	TenantID string `json:"tenant_id" gorm:"size:32;not null;index"`
	Code     string `json:"code" gorm:"size:32;index"`
	Name     string `json:"name" gorm:"size:200;not null"`         // 法定名称 (razão social)
	TradeName string `json:"trade_name" gorm:"size:200"`           // 商号 (nome fantasia)
	CNPJ     string `json:"cnpj" gorm:"size:20;index"`
	Category string `json:"category" gorm:"size:50;not null"` // medicamentos/racao/equipamentos/servicos/outros
	Status   string `json:"status" gorm:"size:20;default:active"`

	// 联系方式
	ContactName  string `json:"contact_name" gorm:"size:100"`
	ContactEmail string `json:"contact_email" gorm:"size:200"`
	ContactPhone string `json:"contact_phone" gorm:"size:50"`
	Address      string `json:"address" gorm:"size:500"`
	City         string `json:"city" gorm:"size:100"`
	State        string `json:"state" gorm:"size:50"`

	// 付款信息
	BankName    string `json:"bank_name" gorm:"size:200"`
	BankAccount string `json:"bank_account" gorm:"size:50"`
	PixKey      string `json:"pix_key" gorm:"size:100"`

	// 绑定的供应商门户用户
	UserID *string `json:"user_id,omitempty" gorm:"size:32"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (Supplier) TableName() string {
	return "pur_suppliers"
}

// 供应商分类
const (
	SupplierCategoryMedicamentos = "medicamentos"
	SupplierCategoryRacao        = "racao"
	SupplierCategoryEquipamentos = "equipamentos"
	SupplierCategoryServicos     = "servicos"
	SupplierCategoryOutros       = "outros"
)

// 供应商状态
const (
	SupplierStatusActive   = "active"
	SupplierStatusInactive = "inactive"
)
