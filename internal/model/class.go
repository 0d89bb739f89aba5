package model

import (
	"time"

	"github.com/lib/pq"
)

// Class 班级表 — 对应 classes
type Class struct {
	ClassID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	Name              string         `gorm:"type:varchar(100);not null"                     json:"name"`
	Description       string         `gorm:"type:text"                                      json:"description,omitempty"`
	CenterID          string         `gorm:"type:uuid;not null;index"                       json:"center_id"`
	AgeMinMonths      int            `gorm:"not null"                                       json:"age_min_months"`
	AgeMaxMonths      int            `gorm:"not null"                                       json:"age_max_months"`
	Capacity          int            `gorm:"not null"                                       json:"capacity"`
	CurrentEnrollment int            `gorm:"not null;default:0"                             json:"current_enrollment"`
	ScheduleDays      pq.StringArray `gorm:"type:text[]"                                    json:"schedule_days"`
	StartTime         string         `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime           string         `gorm:"type:varchar(5);not null"                       json:"end_time"`
	DurationMinutes   int            `gorm:"not null;default:0"                             json:"duration_minutes"`
	Room              string         `gorm:"type:varchar(50)"                               json:"room,omitempty"`
	StartDate         time.Time      `gorm:"type:date;not null"                             json:"start_date"`
	EndDate           time.Time      `gorm:"type:date;not null"                             json:"end_date"`
	ActiveModel

	// 关联
	Teachers []User `gorm:"many2many:class_teachers;joinForeignKey:ClassID;joinReferences:UserID" json:"teachers,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// TeacherIDs 教师 ID 列表
func (c *Class) TeacherIDs() []string {
	ids := make([]string, 0, len(c.Teachers))
	for _, t := range c.Teachers {
		ids = append(ids, t.UserID)
	}
	return ids
}
