package realtime

import (
	"encoding/json"
	"time"
)

// 事件名
const (
	EventConnected        = "connected"
	EventError            = "error"
	EventHeartbeat        = "heartbeat"
	EventPresenceUpdate   = "presence:update"
	EventAttendanceUpdate = "attendance:update"
	EventActivityUpdate   = "activity:update"
	EventMessageSend      = "message:send"
	EventNotificationSend = "notification:send"
	EventEmergencyAlert   = "emergency:alert"
)

// Sender 事件发起人，服务端产生的事件为空
type Sender struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	Name     string `json:"name,omitempty"`
	CenterID string `json:"center_id,omitempty"`
}

// Envelope 下发给客户端的帧
type Envelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	Sender    *Sender         `json:"sender,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Inbound 客户端上行的帧
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ── 上行事件载荷（仅解析路由所需字段，其余原样转发） ──

type attendancePayload struct {
	ChildID string `json:"child_id"`
	ClassID string `json:"class_id"`
}

type activityPayload struct {
	ActivityID string   `json:"activity_id"`
	ClassID    string   `json:"class_id"`
	ChildIDs   []string `json:"child_ids"`
}

type messagePayload struct {
	RecipientID string `json:"recipient_id"`
}

type notificationPayload struct {
	RecipientIDs []string `json:"recipient_ids"`
}

type emergencyPayload struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type presencePayload struct {
	Status string `json:"status"`
}
