package dto

import (
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// ── 儿童模块 DTO ──

// ChildListRequest 儿童列表查询参数
type ChildListRequest struct {
	PaginationRequest
	Search          string `form:"search"    binding:"omitempty,max=100"`
	Status          string `form:"status"    binding:"omitempty,oneof=enrolled waitlisted withdrawn graduated"`
	ClassID         string `form:"class_id"  binding:"omitempty,uuid"`
	ParentID        string `form:"parent_id" binding:"omitempty,uuid"`
	CenterID        string `form:"center_id" binding:"omitempty,uuid"`
	IncludeInactive bool   `form:"include_inactive"`
}

// EmergencyContactRequest 紧急联系人
type EmergencyContactRequest struct {
	Name         string `json:"name"         binding:"required,max=100"`
	Relationship string `json:"relationship" binding:"required,max=50"`
	Phone        string `json:"phone"        binding:"required,max=30"`
	Email        string `json:"email"        binding:"omitempty,email"`
	IsPrimary    bool   `json:"is_primary"`
	CanPickup    bool   `json:"can_pickup"`
}

// CreateChildRequest 创建儿童请求
type CreateChildRequest struct {
	FirstName         string                    `json:"first_name"         binding:"required,max=100"`
	LastName          string                    `json:"last_name"          binding:"required,max=100"`
	DateOfBirth       string                    `json:"date_of_birth"      binding:"required,datetime=2006-01-02"`
	Gender            string                    `json:"gender"             binding:"omitempty,max=20"`
	CenterID          string                    `json:"center_id"          binding:"omitempty,uuid"`
	ParentIDs         []string                  `json:"parent_ids"         binding:"required,min=1,dive,uuid"`
	CurrentClassID    string                    `json:"current_class_id"   binding:"omitempty,uuid"`
	EnrollmentStatus  string                    `json:"enrollment_status"  binding:"omitempty,oneof=enrolled waitlisted withdrawn graduated"`
	EnrollmentDate    string                    `json:"enrollment_date"    binding:"omitempty,datetime=2006-01-02"`
	Medical           model.MedicalInfo         `json:"medical"`
	Dietary           model.DietaryInfo         `json:"dietary"`
	Behavioral        model.BehavioralInfo      `json:"behavioral"`
	EmergencyContacts []EmergencyContactRequest `json:"emergency_contacts" binding:"omitempty,dive"`
}

// UpdateChildRequest 更新儿童请求
type UpdateChildRequest struct {
	FirstName         *string                   `json:"first_name"         binding:"omitempty,max=100"`
	LastName          *string                   `json:"last_name"          binding:"omitempty,max=100"`
	DateOfBirth       *string                   `json:"date_of_birth"      binding:"omitempty,datetime=2006-01-02"`
	Gender            *string                   `json:"gender"             binding:"omitempty,max=20"`
	ParentIDs         []string                  `json:"parent_ids"         binding:"omitempty,min=1,dive,uuid"`
	EnrollmentStatus  *string                   `json:"enrollment_status"  binding:"omitempty,oneof=enrolled waitlisted withdrawn graduated"`
	Medical           *model.MedicalInfo        `json:"medical"`
	Dietary           *model.DietaryInfo        `json:"dietary"`
	Behavioral        *model.BehavioralInfo     `json:"behavioral"`
	EmergencyContacts []EmergencyContactRequest `json:"emergency_contacts" binding:"omitempty,dive"`
}

// AssignClassRequest 分班请求（class_id 为空表示移出班级）
type AssignClassRequest struct {
	ClassID string `json:"class_id" binding:"omitempty,uuid"`
}

// ChildResponse 儿童响应，附带派生年龄
type ChildResponse struct {
	*model.Child
	AgeYears    int `json:"age_years"`
	AgeInMonths int `json:"age_in_months"`
}
