package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Incident 事故/意外记录
type Incident struct {
	IncidentID     string     `json:"incident_id"`
	Type           string     `json:"type"`
	Description    string     `json:"description"`
	ActionTaken    string     `json:"action_taken,omitempty"`
	Severity       string     `json:"severity,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
	ReportedBy     string     `json:"reported_by"`
	ParentNotified bool       `json:"parent_notified"`
	NotifiedAt     *time.Time `json:"notified_at,omitempty"`
}

// HealthRecord 健康记录表 — 对应 health_records
// (child_id, record_date) 唯一
type HealthRecord struct {
	HealthRecordID string                        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"health_record_id"`
	ChildID        string                        `gorm:"type:uuid;not null;uniqueIndex:uk_health_child_date" json:"child_id"`
	RecordDate     time.Time                     `gorm:"type:date;not null;uniqueIndex:uk_health_child_date" json:"record_date"`
	CenterID       string                        `gorm:"type:uuid;not null;index"                            json:"center_id"`
	ClassID        *string                       `gorm:"type:uuid;index"                                     json:"class_id,omitempty"`
	RecordedBy     string                        `gorm:"type:uuid;not null"                                  json:"recorded_by"`
	Temperature    *float64                      `gorm:"type:numeric(4,1)"                                   json:"temperature,omitempty"`
	Weight         *float64                      `gorm:"type:numeric(5,2)"                                   json:"weight,omitempty"`
	Height         *float64                      `gorm:"type:numeric(5,1)"                                   json:"height,omitempty"`
	Mood           string                        `gorm:"type:varchar(30)"                                    json:"mood,omitempty"`
	Appetite       string                        `gorm:"type:varchar(30)"                                    json:"appetite,omitempty"`
	SleepMinutes   *int                          `json:"sleep_minutes,omitempty"`
	Observations   string                        `gorm:"type:text"                                           json:"observations,omitempty"`
	Symptoms       pq.StringArray                `gorm:"type:text[]"                                         json:"symptoms,omitempty"`
	Incidents      datatypes.JSONSlice[Incident] `gorm:"type:jsonb"                                          json:"incidents"`
	ActiveModel
}

// TableName 指定表名
func (HealthRecord) TableName() string { return "health_records" }
