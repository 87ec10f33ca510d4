package entity

import "time"

// Company 公司（租户下的开票主体）
type Company struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	TenantID string `json:"tenant_id" gorm:"size:32;not null;index"`
	Name     string `json:"name" gorm:"size:200;not null"`
	CNPJ     string `json:"cnpj" gorm:"size:20"`

	Address string `json:"address" gorm:"size:500"`
	City    string `json:"city" gorm:"size:100"`
	State   string `json:"state" gorm:"size:50"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	CostCenters []CostCenter `json:"cost_centers,omitempty" gorm:"foreignKey:CompanyID"`
}

func (Company) TableName() string {
	return "adm_companies"
}

// CostCenter 成本中心（公司下的可选核算单元）
type CostCenter struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID  string    `json:"tenant_id" gorm:"size:32;not null;index"`
	CompanyID string    `json:"company_id" gorm:"size:32;not null;index"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (CostCenter) TableName() string {
	return "adm_cost_centers"
}
