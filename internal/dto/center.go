package dto

import (
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// ── 中心模块 DTO ──

// CenterListRequest 中心列表查询参数
type CenterListRequest struct {
	PaginationRequest
	Search          string `form:"search"           binding:"omitempty,max=100"`
	IsActive        *bool  `form:"is_active"`
	IncludeInactive bool   `form:"include_inactive"`
}

// DayHoursRequest 单日营业时间
type DayHoursRequest struct {
	Open   string `json:"open"  binding:"omitempty,hhmm"`
	Close  string `json:"close" binding:"omitempty,hhmm"`
	Closed bool   `json:"closed"`
}

// CreateCenterRequest 创建中心请求（仅超级管理员）
// occupancy_rate 为派生字段，不接收客户端输入
type CreateCenterRequest struct {
	Name           string                     `json:"name"            binding:"required,min=2,max=200"`
	Code           string                     `json:"code"            binding:"required,min=2,max=50,alphanum"`
	Address        model.Address              `json:"address"`
	Phone          string                     `json:"phone"           binding:"omitempty,max=30"`
	Email          string                     `json:"email"           binding:"omitempty,email"`
	Timezone       string                     `json:"timezone"        binding:"omitempty,timezone"`
	Capacity       int                        `json:"capacity"        binding:"required,min=1"`
	AdminID        string                     `json:"admin_id"        binding:"omitempty,uuid"`
	OperatingHours map[string]DayHoursRequest `json:"operating_hours" binding:"omitempty,dive,keys,weekday,endkeys"`
}

// UpdateCenterRequest 更新中心请求
// current_occupancy 由在园儿童数重新统计，不接收客户端输入
type UpdateCenterRequest struct {
	Name           *string                    `json:"name"            binding:"omitempty,min=2,max=200"`
	Address        *model.Address             `json:"address"`
	Phone          *string                    `json:"phone"           binding:"omitempty,max=30"`
	Email          *string                    `json:"email"           binding:"omitempty,email"`
	Timezone       *string                    `json:"timezone"        binding:"omitempty,timezone"`
	Capacity       *int                       `json:"capacity"        binding:"omitempty,min=1"`
	AdminID        *string                    `json:"admin_id"        binding:"omitempty,uuid"`
	OperatingHours map[string]DayHoursRequest `json:"operating_hours" binding:"omitempty,dive,keys,weekday,endkeys"`
}

// CenterStatsResponse 中心统计
type CenterStatsResponse struct {
	CenterID         string           `json:"center_id"`
	Capacity         int              `json:"capacity"`
	CurrentOccupancy int              `json:"current_occupancy"`
	OccupancyRate    int              `json:"occupancy_rate"`
	Children         int64            `json:"children"`
	Teachers         int64            `json:"teachers"`
	Parents          int64            `json:"parents"`
	Classes          int64            `json:"classes"`
	TodayAttendance  map[string]int64 `json:"today_attendance"`
}
