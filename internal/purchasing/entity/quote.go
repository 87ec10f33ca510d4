package entity

import "time"

// Quote 报价单
type Quote struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	TenantID string `json:"tenant_id" gorm:"size:32;not null;index"`
	Code     string `json:"code" gorm:"size:32;index"`

	SupplierID  *string `json:"supplier_id" gorm:"size:32"`
	VendorName  string  `json:"vendor_name" gorm:"size:200"`
	Description string  `json:"description" gorm:"size:500;not null"`

	Total      float64    `json:"total" gorm:"type:decimal(15,2)"`
	ValidUntil *time.Time `json:"valid_until"`
	Status     string     `json:"status" gorm:"size:20;default:open"` // open/accepted/declined/expired

	AttachmentName string `json:"attachment_name" gorm:"size:255"`
	AttachmentURL  string `json:"attachment_url" gorm:"size:500"`

	RequestedBy string    `json:"requested_by" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Notes       string    `json:"notes" gorm:"type:text"`

	// 关联
	Items    []QuoteItem `json:"items,omitempty" gorm:"foreignKey:QuoteID"`
	Supplier *Supplier   `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Quote) TableName() string {
	return "pur_quotes"
}

// 报价单状态
const (
	QuoteStatusOpen     = "open"
	QuoteStatusAccepted = "accepted"
	QuoteStatusDeclined = "declined"
	QuoteStatusExpired  = "expired"
)

// QuoteItem 报价单行项
type QuoteItem struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	QuoteID     string  `json:"quote_id" gorm:"size:32;not null;index"`
	Description string  `json:"description" gorm:"size:500;not null"`
	Quantity    float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	UnitValue   float64 `json:"unit_value" gorm:"type:decimal(12,2);not null"`
	Total       float64 `json:"total" gorm:"type:decimal(15,2)"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (QuoteItem) TableName() string {
	return "pur_quote_items"
}
