package model

import (
	"time"
)

// 考勤状态
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// ValidAttendanceStatus 是否为合法考勤状态
func ValidAttendanceStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Attendance 考勤表 — 对应 attendance
// (child_id, date) 唯一
type Attendance struct {
	AttendanceID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"attendance_id"`
	ChildID               string     `gorm:"type:uuid;not null;uniqueIndex:uk_attendance_child_date" json:"child_id"`
	Date                  time.Time  `gorm:"type:date;not null;uniqueIndex:uk_attendance_child_date" json:"date"`
	ClassID               *string    `gorm:"type:uuid;index"                                         json:"class_id,omitempty"`
	CenterID              string     `gorm:"type:uuid;not null;index"                                json:"center_id"`
	Status                string     `gorm:"type:varchar(20);not null"                               json:"status"`
	CheckIn               *time.Time `json:"check_in,omitempty"`
	CheckOut              *time.Time `json:"check_out,omitempty"`
	CheckedInBy           *string    `gorm:"type:uuid"                                               json:"checked_in_by,omitempty"`
	CheckedOutBy          *string    `gorm:"type:uuid"                                               json:"checked_out_by,omitempty"`
	LateMinutes           int        `gorm:"not null;default:0"                                      json:"late_minutes"`
	EarlyDepartureMinutes int        `gorm:"not null;default:0"                                      json:"early_departure_minutes"`
	Notes                 string     `gorm:"type:text"                                               json:"notes,omitempty"`
	ActiveModel
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendance" }
