package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ActionInfo 单个动作的完成标记
type ActionInfo struct {
	Done      bool       `json:"done"`
	Actor     string     `json:"actor,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// DocumentActions 单据的发送/审批标记
type DocumentActions struct {
	Sent     ActionInfo `json:"sent"`
	Approved ActionInfo `json:"approved"`
}

// OrderActions 订单动作记录。sent标记为存储真值：附件URL与标记
// 在同一事务写入，读取侧不再从附件存在性推导。
type OrderActions struct {
	NF      DocumentActions `json:"nf"`
	Boleto  DocumentActions `json:"boleto"`
	Entrega ActionInfo      `json:"entrega"`
}

func (a OrderActions) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *OrderActions) Scan(value interface{}) error {
	if value == nil {
		*a = OrderActions{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan OrderActions: %v", value)
	}
	return json.Unmarshal(bytes, a)
}

// PurchaseOrder 采购订单
type PurchaseOrder struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	Code        string  `json:"code" gorm:"size:32;index"`
	TenantID    string  `json:"tenant_id" gorm:"size:32;not null;index"`
	CompanyID   string  `json:"company_id" gorm:"size:32;not null;index"`
	CostCenterID *string `json:"cost_center_id" gorm:"size:32"`
	RequesterID string  `json:"requester_id" gorm:"size:32;not null"`

	// 供应商：注册供应商ID或自由文本线上商家
	SupplierID     *string `json:"supplier_id" gorm:"size:32;index"`
	VendorName     string  `json:"vendor_name" gorm:"size:200"`
	VendorCategory string  `json:"vendor_category" gorm:"size:50"`

	PaymentMethod string `json:"payment_method" gorm:"size:20;not null"`
	PayoutMethod  string `json:"payout_method" gorm:"size:20"` // 供应商提交单据时选择

	OrderDate    time.Time  `json:"order_date"`
	DeliveryDate *time.Time `json:"delivery_date"`

	Status  string       `json:"status" gorm:"size:30;not null;default:awaiting_documents;index"`
	Actions OrderActions `json:"actions" gorm:"type:jsonb"`

	Total float64 `json:"total" gorm:"type:decimal(15,2);not null"`

	// 附件
	InvoiceName string `json:"invoice_name" gorm:"size:255"`
	InvoiceURL  string `json:"invoice_url" gorm:"size:512"`

	RejectionReason string `json:"rejection_reason" gorm:"type:text"`

	// 乐观并发控制，所有生命周期写入均为条件更新
	Version int `json:"version" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`

	// 关联
	Items    []OrderItem         `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Boletos  []BoletoInstallment `json:"boletos,omitempty" gorm:"foreignKey:OrderID"`
	Supplier *Supplier           `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (PurchaseOrder) TableName() string {
	return "pur_purchase_orders"
}

// 订单状态
const (
	OrderStatusAwaitingDocuments = "awaiting_documents"
	OrderStatusAwaitingApproval  = "awaiting_approval"
	OrderStatusDeliveryLate      = "delivery_late"
	OrderStatusAwaitingPayment   = "awaiting_payment"
	OrderStatusCompleted         = "completed"
	OrderStatusRejected          = "rejected"
)

// 订单支付方式
const (
	PaymentMethodBoleto       = "boleto"
	PaymentMethodPix          = "pix"
	PaymentMethodTransfer     = "transferencia"
	PaymentMethodCartao       = "cartao"
	PaymentMethodFaturado     = "faturado"
)

// RecomputeTotal 重算订单总额（每次行项变更后调用）
func (o *PurchaseOrder) RecomputeTotal() {
	var total float64
	for i := range o.Items {
		o.Items[i].Total = o.Items[i].Quantity * o.Items[i].UnitValue
		total += o.Items[i].Total
	}
	o.Total = total
}

// OrderItem 订单行项
type OrderItem struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	OrderID     string  `json:"order_id" gorm:"size:32;not null;index"`
	Description string  `json:"description" gorm:"size:500;not null"`
	Quantity    float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	UnitValue   float64 `json:"unit_value" gorm:"type:decimal(12,2);not null"`
	Total       float64 `json:"total" gorm:"type:decimal(15,2)"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "pur_order_items"
}

// BoletoInstallment boleto分期（巴西银行托收票据，每期有独立到期日和票据文件）
type BoletoInstallment struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	OrderID string `json:"order_id" gorm:"size:32;not null;index"`
	Seq     int    `json:"seq" gorm:"not null"`

	DueDate  time.Time `json:"due_date" gorm:"not null"`
	Amount   float64   `json:"amount" gorm:"type:decimal(15,2);not null"`
	FileName string    `json:"file_name" gorm:"size:255"`
	FileURL  string    `json:"file_url" gorm:"size:512"`
	Barcode  string    `json:"barcode" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
}

func (BoletoInstallment) TableName() string {
	return "pur_order_boletos"
}
