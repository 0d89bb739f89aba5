package model

import (
	"time"

	"github.com/lib/pq"
)

// 通知优先级
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// 通知渠道
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// ValidPriority 是否为合法优先级
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidChannel 是否为合法渠道
func ValidChannel(c string) bool {
	return c == ChannelInApp || c == ChannelEmail || c == ChannelSMS
}

// Notification 通知表 — 对应 notifications
type Notification struct {
	NotificationID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	RecipientID    string         `gorm:"type:uuid;not null;index"                       json:"recipient_id"`
	SenderID       *string        `gorm:"type:uuid"                                      json:"sender_id,omitempty"`
	CenterID       *string        `gorm:"type:uuid;index"                                json:"center_id,omitempty"`
	Type           string         `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string         `gorm:"type:text;not null"                             json:"content"`
	Priority       string         `gorm:"type:varchar(20);not null;default:'normal'"     json:"priority"`
	Channels       pq.StringArray `gorm:"type:text[]"                                    json:"channels"`
	ScheduledAt    *time.Time     `json:"scheduled_at,omitempty"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
	IsRead         bool           `gorm:"not null;default:false"                         json:"is_read"`
	ReadAt         *time.Time     `json:"read_at,omitempty"`
	RelatedType    *string        `gorm:"type:varchar(30)"                               json:"related_type,omitempty"` // attendance | activity | payment | health_record | message
	RelatedID      *string        `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	ActiveModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// HasChannel 是否包含某渠道
func (n *Notification) HasChannel(ch string) bool {
	for _, c := range n.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// IsDue 计划通知是否到期（未计划的视为立即发送）
func (n *Notification) IsDue(now time.Time) bool {
	if n.SentAt != nil {
		return false
	}
	return n.ScheduledAt == nil || !n.ScheduledAt.After(now)
}
