package entity

import "time"

// Expense 支出
type Expense struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	TenantID     string  `json:"tenant_id" gorm:"size:32;not null;index"`
	CompanyID    string  `json:"company_id" gorm:"size:32;not null;index"`
	CostCenterID *string `json:"cost_center_id" gorm:"size:32"`

	Category    string  `json:"category" gorm:"size:50;not null"`
	Description string  `json:"description" gorm:"size:500;not null"`
	Amount      float64 `json:"amount" gorm:"type:decimal(15,2);not null"`

	Date          time.Time  `json:"date" gorm:"not null;index"`
	DueDate       *time.Time `json:"due_date"`
	PaymentMethod string     `json:"payment_method" gorm:"size:20"`
	Paid          bool       `json:"paid" gorm:"default:false"`
	PaidAt        *time.Time `json:"paid_at"`

	// 关联来源（兽医结算、采购订单等自动生成的支出）
	SourceType string  `json:"source_type" gorm:"size:30"` // manual/vet_payment/purchase_order
	SourceID   *string `json:"source_id" gorm:"size:32"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (Expense) TableName() string {
	return "fin_expenses"
}

// 支出分类
const (
	ExpenseCategoryFolha        = "folha"        // 工资
	ExpenseCategoryAluguel      = "aluguel"      // 租金
	ExpenseCategoryInsumos      = "insumos"      // 耗材
	ExpenseCategoryImpostos     = "impostos"     // 税费
	ExpenseCategoryVeterinarios = "veterinarios" // 兽医结算
	ExpenseCategoryOutros       = "outros"
)

// 支出来源
const (
	ExpenseSourceManual        = "manual"
	ExpenseSourceVetPayment    = "vet_payment"
	ExpenseSourcePurchaseOrder = "purchase_order"
)
