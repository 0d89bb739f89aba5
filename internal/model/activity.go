package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// 活动状态
const (
	ActivityScheduled  = "scheduled"
	ActivityInProgress = "in_progress"
	ActivityCompleted  = "completed"
	ActivityCancelled  = "cancelled"
)

// ValidActivityStatus 是否为合法活动状态
func ValidActivityStatus(s string) bool {
	switch s {
	case ActivityScheduled, ActivityInProgress, ActivityCompleted, ActivityCancelled:
		return true
	}
	return false
}

// ActivityUpdate 活动进展记录（只追加）
type ActivityUpdate struct {
	Message   string    `json:"message"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityPhoto 活动照片（只追加）
type ActivityPhoto struct {
	URL        string    `json:"url"`
	Caption    string    `json:"caption,omitempty"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Activity 活动表 — 对应 activities
type Activity struct {
	ActivityID  string                              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_id"`
	Title       string                              `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string                              `gorm:"type:text"                                      json:"description,omitempty"`
	Type        string                              `gorm:"type:varchar(50);not null"                      json:"type"`
	CenterID    string                              `gorm:"type:uuid;not null;index"                       json:"center_id"`
	ClassID     *string                             `gorm:"type:uuid;index"                                json:"class_id,omitempty"`
	TeacherID   string                              `gorm:"type:uuid;not null;index"                       json:"teacher_id"`
	ChildIDs    pq.StringArray                      `gorm:"type:text[]"                                    json:"child_ids"`
	StartTime   time.Time                           `gorm:"not null"                                       json:"start_time"`
	EndTime     time.Time                           `gorm:"not null"                                       json:"end_time"`
	Location    string                              `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	Status      string                              `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	Updates     datatypes.JSONSlice[ActivityUpdate] `gorm:"type:jsonb"                                     json:"updates"`
	Photos      datatypes.JSONSlice[ActivityPhoto]  `gorm:"type:jsonb"                                     json:"photos"`
	ActiveModel
}

// TableName 指定表名
func (Activity) TableName() string { return "activities" }
