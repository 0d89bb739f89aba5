package dto

import (
	"time"
)

// ── 考勤模块 DTO ──

// AttendanceListRequest 考勤列表查询参数
type AttendanceListRequest struct {
	PaginationRequest
	DateRange
	ChildID         string `form:"child_id" binding:"omitempty,uuid"`
	ClassID         string `form:"class_id" binding:"omitempty,uuid"`
	Status          string `form:"status"   binding:"omitempty,oneof=present absent late excused"`
	IncludeInactive bool   `form:"include_inactive"`
}

// MarkAttendanceRequest 单条考勤
// late_minutes / early_departure_minutes 由服务端按作息推导，不接收客户端输入
type MarkAttendanceRequest struct {
	ChildID  string     `json:"child_id" binding:"required,uuid"`
	Date     string     `json:"date"     binding:"required,datetime=2006-01-02"`
	Status   string     `json:"status"   binding:"required,oneof=present absent late excused"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Notes    string     `json:"notes"    binding:"omitempty,max=1000"`
}

// UpdateAttendanceRequest 更新考勤
type UpdateAttendanceRequest struct {
	Status   *string    `json:"status" binding:"omitempty,oneof=present absent late excused"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Notes    *string    `json:"notes"  binding:"omitempty,max=1000"`
}

// BulkAttendanceItem 批量考勤中的单项
type BulkAttendanceItem struct {
	ChildID  string     `json:"child_id" binding:"required,uuid"`
	Status   string     `json:"status"   binding:"required,oneof=present absent late excused"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Notes    string     `json:"notes"    binding:"omitempty,max=1000"`
}

// BulkAttendanceRequest 按班级批量登记
type BulkAttendanceRequest struct {
	ClassID string               `json:"class_id" binding:"required,uuid"`
	Date    string               `json:"date"     binding:"required,datetime=2006-01-02"`
	Records []BulkAttendanceItem `json:"records"  binding:"required,min=1,max=200,dive"`
}

// BulkAttendanceResponse 批量登记结果
type BulkAttendanceResponse struct {
	Total   int `json:"total"`
	Success int `json:"success"`
}
