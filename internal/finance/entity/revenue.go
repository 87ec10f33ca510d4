package entity

import "time"

// Revenue 收入
type Revenue struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	TenantID  string `json:"tenant_id" gorm:"size:32;not null;index"`
	CompanyID string `json:"company_id" gorm:"size:32;not null;index"`

	Category    string  `json:"category" gorm:"size:50;not null"`
	Description string  `json:"description" gorm:"size:500;not null"`
	Amount      float64 `json:"amount" gorm:"type:decimal(15,2);not null"`

	Date          time.Time  `json:"date" gorm:"not null;index"`
	PaymentMethod string     `json:"payment_method" gorm:"size:20"`
	Received      bool       `json:"received" gorm:"default:false"`
	ReceivedAt    *time.Time `json:"received_at"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (Revenue) TableName() string {
	return "fin_revenues"
}

// 收入分类
const (
	RevenueCategoryConsultas   = "consultas"   // 诊疗
	RevenueCategoryCirurgias   = "cirurgias"   // 手术
	RevenueCategoryVendas      = "vendas"      // 商品销售
	RevenueCategoryInternacao  = "internacao"  // 住院
	RevenueCategoryOutros      = "outros"
)
