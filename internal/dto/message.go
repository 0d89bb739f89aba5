package dto

import (
	"time"
)

// ── 消息模块 DTO ──

// MessageListRequest 消息列表查询参数
type MessageListRequest struct {
	PaginationRequest
	Box     string `form:"box"      binding:"omitempty,oneof=inbox sent"`
	IsRead  *bool  `form:"is_read"`
	ChildID string `form:"child_id" binding:"omitempty,uuid"`
}

// SendMessageRequest 发送消息
type SendMessageRequest struct {
	RecipientID     string `json:"recipient_id"      binding:"required,uuid"`
	Subject         string `json:"subject"           binding:"omitempty,max=200"`
	Content         string `json:"content"           binding:"required,max=5000"`
	ChildID         string `json:"child_id"          binding:"omitempty,uuid"`
	ParentMessageID string `json:"parent_message_id" binding:"omitempty,uuid"`
}

// UnreadCountResponse 未读数
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	PaginationRequest
	IsRead   *bool  `form:"is_read"`
	Type     string `form:"type"     binding:"omitempty,max=50"`
	Priority string `form:"priority" binding:"omitempty,oneof=low normal high urgent"`
}

// CreateNotificationRequest 创建通知（可发给多个接收人）
type CreateNotificationRequest struct {
	RecipientIDs []string   `json:"recipient_ids" binding:"required,min=1,max=500,dive,uuid"`
	Type         string     `json:"type"          binding:"required,max=50"`
	Title        string     `json:"title"         binding:"required,max=200"`
	Content      string     `json:"content"       binding:"required,max=5000"`
	Priority     string     `json:"priority"      binding:"omitempty,oneof=low normal high urgent"`
	Channels     []string   `json:"channels"      binding:"omitempty,dive,oneof=in_app email sms"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	RelatedType  string     `json:"related_type"  binding:"omitempty,max=30"`
	RelatedID    string     `json:"related_id"    binding:"omitempty,uuid"`
}

// MarkAllReadResponse 全部已读结果
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
