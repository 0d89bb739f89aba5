package model

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// 角色
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

// 管理员级别
const (
	AdminLevelSuper  = "super_admin"
	AdminLevelCenter = "center_admin"
)

// ValidRole 是否为合法角色
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleTeacher || role == RoleParent
}

// User 用户表 — 对应 users
// email/phone 在同一中心内唯一（复合唯一索引）
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	FirstName    string  `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName     string  `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone        string  `gorm:"type:varchar(30)"                               json:"phone"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null"                      json:"role"`
	CenterID     *string `gorm:"type:uuid"                                      json:"center_id,omitempty"`

	// 管理员子档案
	AdminLevel   string         `gorm:"type:varchar(20)" json:"admin_level,omitempty"`
	CenterAccess pq.StringArray `gorm:"type:text[]"      json:"center_access,omitempty"`

	// 教师子档案
	EmployeeID     string         `gorm:"type:varchar(50)" json:"employee_id,omitempty"`
	Qualifications pq.StringArray `gorm:"type:text[]"      json:"qualifications,omitempty"`
	HireDate       *time.Time     `gorm:"type:date"        json:"hire_date,omitempty"`

	// 家长子档案
	Occupation string `gorm:"type:varchar(100)" json:"occupation,omitempty"`

	Permissions pq.StringArray `gorm:"type:text[]"                              json:"permissions,omitempty"`
	EmailOptIn  bool           `gorm:"not null;default:true"                    json:"email_opt_in"`
	SMSOptIn    bool           `gorm:"column:sms_opt_in;not null;default:false" json:"sms_opt_in"`

	LastLogin         *time.Time `json:"last_login,omitempty"`
	LastActivity      *time.Time `json:"last_activity,omitempty"`
	PasswordChangedAt *time.Time `json:"-"`
	ActiveModel

	// 关联
	Center *Center `gorm:"foreignKey:CenterID;references:CenterID" json:"center,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 姓名
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsSuperAdmin 超级管理员：adminLevel=super_admin，或未绑定中心的管理员
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleAdmin && (u.AdminLevel == AdminLevelSuper || u.CenterID == nil || *u.CenterID == "")
}

// ChangedPasswordAfter Token 签发时间早于最近一次改密时间则视为失效
// 与 JWT 的 iat 一样按秒比较
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// MarkPasswordChanged 记录改密时间
// 回拨 1 秒，保证改密后立即签发的新 Token 不会被判定为失效
func (u *User) MarkPasswordChanged(now time.Time) {
	t := now.Add(-time.Second)
	u.PasswordChangedAt = &t
}

// ChildParent 儿童-家长关联表 — 对应 child_parents
type ChildParent struct {
	ChildID string `gorm:"type:uuid;primaryKey" json:"child_id"`
	UserID  string `gorm:"type:uuid;primaryKey" json:"user_id"`
}

// TableName 指定表名
func (ChildParent) TableName() string { return "child_parents" }

// ClassTeacher 班级-教师关联表 — 对应 class_teachers
type ClassTeacher struct {
	ClassID string `gorm:"type:uuid;primaryKey" json:"class_id"`
	UserID  string `gorm:"type:uuid;primaryKey" json:"user_id"`
}

// TableName 指定表名
func (ClassTeacher) TableName() string { return "class_teachers" }
