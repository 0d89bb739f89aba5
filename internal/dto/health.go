package dto

import (
	"time"
)

// ── 健康记录模块 DTO ──

// HealthRecordListRequest 健康记录列表查询参数
type HealthRecordListRequest struct {
	PaginationRequest
	DateRange
	ChildID         string `form:"child_id"         binding:"omitempty,uuid"`
	IncludeInactive bool   `form:"include_inactive"`
}

// CreateHealthRecordRequest 创建健康记录
type CreateHealthRecordRequest struct {
	ChildID      string   `json:"child_id"      binding:"required,uuid"`
	RecordDate   string   `json:"record_date"   binding:"required,datetime=2006-01-02"`
	Temperature  *float64 `json:"temperature"   binding:"omitempty,gte=30,lte=45"`
	Weight       *float64 `json:"weight"        binding:"omitempty,gt=0"`
	Height       *float64 `json:"height"        binding:"omitempty,gt=0"`
	Mood         string   `json:"mood"          binding:"omitempty,max=30"`
	Appetite     string   `json:"appetite"      binding:"omitempty,max=30"`
	SleepMinutes *int     `json:"sleep_minutes" binding:"omitempty,min=0"`
	Observations string   `json:"observations"  binding:"omitempty,max=2000"`
	Symptoms     []string `json:"symptoms"      binding:"omitempty,dive,max=100"`
}

// UpdateHealthRecordRequest 更新健康记录
type UpdateHealthRecordRequest struct {
	Temperature  *float64 `json:"temperature"   binding:"omitempty,gte=30,lte=45"`
	Weight       *float64 `json:"weight"        binding:"omitempty,gt=0"`
	Height       *float64 `json:"height"        binding:"omitempty,gt=0"`
	Mood         *string  `json:"mood"          binding:"omitempty,max=30"`
	Appetite     *string  `json:"appetite"      binding:"omitempty,max=30"`
	SleepMinutes *int     `json:"sleep_minutes" binding:"omitempty,min=0"`
	Observations *string  `json:"observations"  binding:"omitempty,max=2000"`
	Symptoms     []string `json:"symptoms"      binding:"omitempty,dive,max=100"`
}

// IncidentRequest 追加事故记录
type IncidentRequest struct {
	Type          string     `json:"type"         binding:"required,max=50"`
	Description   string     `json:"description"  binding:"required,max=2000"`
	ActionTaken   string     `json:"action_taken" binding:"omitempty,max=2000"`
	Severity      string     `json:"severity"     binding:"omitempty,oneof=minor moderate severe"`
	OccurredAt    *time.Time `json:"occurred_at"`
	NotifyParents bool       `json:"notify_parents"`
}
