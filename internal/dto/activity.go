package dto

import (
	"time"
)

// ── 活动模块 DTO ──

// ActivityListRequest 活动列表查询参数
type ActivityListRequest struct {
	PaginationRequest
	DateRange
	ClassID         string `form:"class_id"   binding:"omitempty,uuid"`
	TeacherID       string `form:"teacher_id" binding:"omitempty,uuid"`
	Status          string `form:"status"     binding:"omitempty,oneof=scheduled in_progress completed cancelled"`
	Type            string `form:"type"       binding:"omitempty,max=50"`
	IncludeInactive bool   `form:"include_inactive"`
}

// CreateActivityRequest 创建活动请求
type CreateActivityRequest struct {
	Title       string    `json:"title"       binding:"required,max=200"`
	Description string    `json:"description" binding:"omitempty,max=2000"`
	Type        string    `json:"type"        binding:"required,max=50"`
	ClassID     string    `json:"class_id"    binding:"omitempty,uuid"`
	TeacherID   string    `json:"teacher_id"  binding:"omitempty,uuid"`
	ChildIDs    []string  `json:"child_ids"   binding:"omitempty,dive,uuid"`
	StartTime   time.Time `json:"start_time"  binding:"required"`
	EndTime     time.Time `json:"end_time"    binding:"required"`
	Location    string    `json:"location"    binding:"omitempty,max=200"`
}

// UpdateActivityRequest 更新活动请求
type UpdateActivityRequest struct {
	Title       *string    `json:"title"       binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Type        *string    `json:"type"        binding:"omitempty,max=50"`
	ChildIDs    []string   `json:"child_ids"   binding:"omitempty,dive,uuid"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Location    *string    `json:"location"    binding:"omitempty,max=200"`
}

// ActivityStatusRequest 变更活动状态
type ActivityStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=scheduled in_progress completed cancelled"`
}

// ActivityUpdateRequest 追加进展
type ActivityUpdateRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// ActivityPhotoRequest 追加照片
type ActivityPhotoRequest struct {
	URL     string `json:"url"     binding:"required,url"`
	Caption string `json:"caption" binding:"omitempty,max=500"`
}
