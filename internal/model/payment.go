package model

import (
	"time"

	"gorm.io/datatypes"
)

// 缴费状态
const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentOverdue   = "overdue"
	PaymentCancelled = "cancelled"
	PaymentRefunded  = "refunded"
)

// ValidPaymentStatus 是否为合法缴费状态
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

// LineItem 附加费用/折扣明细
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Payment 缴费表 — 对应 payments
type Payment struct {
	PaymentID     string                        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_id"`
	ChildID       string                        `gorm:"type:uuid;not null;index"                       json:"child_id"`
	ParentID      string                        `gorm:"type:uuid;not null;index"                       json:"parent_id"`
	CenterID      string                        `gorm:"type:uuid;not null;index"                       json:"center_id"`
	Description   string                        `gorm:"type:varchar(255)"                              json:"description"`
	BaseAmount    float64                       `gorm:"type:numeric(12,2);not null"                    json:"base_amount"`
	Fees          datatypes.JSONSlice[LineItem] `gorm:"type:jsonb"                                     json:"fees"`
	Discounts     datatypes.JSONSlice[LineItem] `gorm:"type:jsonb"                                     json:"discounts"`
	TotalAmount   float64                       `gorm:"type:numeric(12,2);not null"                    json:"total_amount"`
	PaidAmount    float64                       `gorm:"type:numeric(12,2);not null;default:0"          json:"paid_amount"`
	Currency      string                        `gorm:"type:varchar(3);not null;default:'USD'"         json:"currency"`
	DueDate       time.Time                     `gorm:"type:date;not null"                             json:"due_date"`
	PaidDate      *time.Time                    `json:"paid_date,omitempty"`
	Status        string                        `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	PaymentMethod string                        `gorm:"type:varchar(30)"                               json:"payment_method,omitempty"`
	TransactionID string                        `gorm:"type:varchar(100)"                              json:"transaction_id,omitempty"`
	ActiveModel
}

// TableName 指定表名
func (Payment) TableName() string { return "payments" }
