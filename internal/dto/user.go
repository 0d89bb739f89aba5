package dto

import (
	"time"
)

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Search          string `form:"search"    binding:"omitempty,max=100"`
	Role            string `form:"role"      binding:"omitempty,oneof=admin teacher parent"`
	CenterID        string `form:"center_id" binding:"omitempty,uuid"`
	IsActive        *bool  `form:"is_active"`
	IncludeInactive bool   `form:"include_inactive"`
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	FirstName      string   `json:"first_name"     binding:"required,min=1,max=100"`
	LastName       string   `json:"last_name"      binding:"required,min=1,max=100"`
	Email          string   `json:"email"          binding:"required,email"`
	Phone          string   `json:"phone"          binding:"omitempty,max=30"`
	Password       string   `json:"password"       binding:"required,min=8,max=72"`
	Role           string   `json:"role"           binding:"required,oneof=admin teacher parent"`
	CenterID       string   `json:"center_id"      binding:"omitempty,uuid"`
	AdminLevel     string   `json:"admin_level"    binding:"omitempty,oneof=super_admin center_admin"`
	CenterAccess   []string `json:"center_access"  binding:"omitempty,dive,uuid"`
	EmployeeID     string   `json:"employee_id"    binding:"omitempty,max=50"`
	Qualifications []string `json:"qualifications" binding:"omitempty,dive,max=100"`
	HireDate       string   `json:"hire_date"      binding:"omitempty,datetime=2006-01-02"`
	Occupation     string   `json:"occupation"     binding:"omitempty,max=100"`
	Permissions    []string `json:"permissions"    binding:"omitempty,dive,max=50"`
	EmailOptIn     *bool    `json:"email_opt_in"`
	SMSOptIn       *bool    `json:"sms_opt_in"`
}

// UpdateUserRequest 更新用户请求（仅更新非空字段）
type UpdateUserRequest struct {
	FirstName      *string  `json:"first_name"     binding:"omitempty,min=1,max=100"`
	LastName       *string  `json:"last_name"      binding:"omitempty,min=1,max=100"`
	Email          *string  `json:"email"          binding:"omitempty,email"`
	Phone          *string  `json:"phone"          binding:"omitempty,max=30"`
	EmployeeID     *string  `json:"employee_id"    binding:"omitempty,max=50"`
	Qualifications []string `json:"qualifications" binding:"omitempty,dive,max=100"`
	Occupation     *string  `json:"occupation"     binding:"omitempty,max=100"`
	Permissions    []string `json:"permissions"    binding:"omitempty,dive,max=50"`
	AdminLevel     *string  `json:"admin_level"    binding:"omitempty,oneof=super_admin center_admin"`
	EmailOptIn     *bool    `json:"email_opt_in"`
	SMSOptIn       *bool    `json:"sms_opt_in"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID               string     `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone,omitempty"`
	Role             string     `json:"role"`
	CenterID         string     `json:"center_id,omitempty"`
	AdminLevel       string     `json:"admin_level,omitempty"`
	CenterAccess     []string   `json:"center_access,omitempty"`
	EmployeeID       string     `json:"employee_id,omitempty"`
	Qualifications   []string   `json:"qualifications,omitempty"`
	HireDate         string     `json:"hire_date,omitempty"`
	Occupation       string     `json:"occupation,omitempty"`
	Permissions      []string   `json:"permissions,omitempty"`
	AssignedClassIDs []string   `json:"assigned_class_ids,omitempty"`
	ChildIDs         []string   `json:"child_ids,omitempty"`
	EmailOptIn       bool       `json:"email_opt_in"`
	SMSOptIn         bool       `json:"sms_opt_in"`
	IsActive         bool       `json:"is_active"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
