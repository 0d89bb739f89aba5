package dto

// ── 报表模块 DTO ──

// AttendanceReportRequest 考勤报表参数
type AttendanceReportRequest struct {
	DateRange
	ClassID string `form:"class_id" binding:"omitempty,uuid"`
	ChildID string `form:"child_id" binding:"omitempty,uuid"`
}

// PaymentReportRequest 缴费报表参数
type PaymentReportRequest struct {
	Status  string `form:"status"   binding:"omitempty,oneof=pending paid overdue cancelled refunded"`
	DueFrom string `form:"due_from" binding:"omitempty,datetime=2006-01-02"`
	DueTo   string `form:"due_to"   binding:"omitempty,datetime=2006-01-02"`
}
