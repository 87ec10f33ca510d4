package entity

import "time"

// OrderActivityLog 订单操作日志，记录每一次生命周期转换
type OrderActivityLog struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	TenantID  string `json:"tenant_id" gorm:"size:32;not null;index"`
	OrderID   string `json:"order_id" gorm:"size:32;not null;index"`
	OrderCode string `json:"order_code" gorm:"size:32"`

	Event      string `json:"event" gorm:"size:50;not null"` // create/submit_documents/confirm_delivery/approve_documents/reject/send_to_payment/complete/mark_late/delete
	FromStatus string `json:"from_status" gorm:"size:30"`
	ToStatus   string `json:"to_status" gorm:"size:30"`

	Content  string `json:"content" gorm:"type:text"`
	Metadata JSONB  `json:"metadata" gorm:"type:jsonb"`

	OperatorID   string    `json:"operator_id" gorm:"size:32"`
	OperatorName string    `json:"operator_name" gorm:"size:100"`
	CreatedAt    time.Time `json:"created_at"`
}

func (OrderActivityLog) TableName() string {
	return "pur_order_activity_logs"
}
