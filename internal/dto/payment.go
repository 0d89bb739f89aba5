package dto

// ── 缴费模块 DTO ──

// PaymentListRequest 缴费列表查询参数
type PaymentListRequest struct {
	PaginationRequest
	ChildID         string `form:"child_id"  binding:"omitempty,uuid"`
	ParentID        string `form:"parent_id" binding:"omitempty,uuid"`
	Status          string `form:"status"    binding:"omitempty,oneof=pending paid overdue cancelled refunded"`
	DueFrom         string `form:"due_from"  binding:"omitempty,datetime=2006-01-02"`
	DueTo           string `form:"due_to"    binding:"omitempty,datetime=2006-01-02"`
	IncludeInactive bool   `form:"include_inactive"`
}

// LineItemRequest 附加费用/折扣
type LineItemRequest struct {
	Description string  `json:"description" binding:"required,max=200"`
	Amount      float64 `json:"amount"      binding:"gte=0"`
}

// CreatePaymentRequest 创建账单
// total_amount 由服务端推导
type CreatePaymentRequest struct {
	ChildID     string            `json:"child_id"    binding:"required,uuid"`
	ParentID    string            `json:"parent_id"   binding:"required,uuid"`
	Description string            `json:"description" binding:"omitempty,max=255"`
	BaseAmount  float64           `json:"base_amount" binding:"gte=0"`
	Fees        []LineItemRequest `json:"fees"        binding:"omitempty,dive"`
	Discounts   []LineItemRequest `json:"discounts"   binding:"omitempty,dive"`
	Currency    string            `json:"currency"    binding:"omitempty,len=3"`
	DueDate     string            `json:"due_date"    binding:"required,datetime=2006-01-02"`
}

// UpdatePaymentRequest 更新账单
type UpdatePaymentRequest struct {
	Description *string           `json:"description" binding:"omitempty,max=255"`
	BaseAmount  *float64          `json:"base_amount" binding:"omitempty,gte=0"`
	Fees        []LineItemRequest `json:"fees"        binding:"omitempty,dive"`
	Discounts   []LineItemRequest `json:"discounts"   binding:"omitempty,dive"`
	DueDate     *string           `json:"due_date"    binding:"omitempty,datetime=2006-01-02"`
	Status      *string           `json:"status"      binding:"omitempty,oneof=pending cancelled refunded"`
}

// RecordPaymentRequest 登记一笔（部分）付款
type RecordPaymentRequest struct {
	Amount        float64 `json:"amount"         binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"omitempty,max=30"`
	TransactionID string  `json:"transaction_id" binding:"omitempty,max=100"`
}
