package model

import (
	"time"
)

// Message 站内消息表 — 对应 messages
type Message struct {
	MessageID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	SenderID        string     `gorm:"type:uuid;not null;index"                       json:"sender_id"`
	RecipientID     string     `gorm:"type:uuid;not null;index"                       json:"recipient_id"`
	CenterID        *string    `gorm:"type:uuid;index"                                json:"center_id,omitempty"`
	ChildID         *string    `gorm:"type:uuid"                                      json:"child_id,omitempty"`
	ParentMessageID *string    `gorm:"type:uuid"                                      json:"parent_message_id,omitempty"`
	Subject         string     `gorm:"type:varchar(200)"                              json:"subject"`
	Content         string     `gorm:"type:text;not null"                             json:"content"`
	IsRead          bool       `gorm:"not null;default:false"                         json:"is_read"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
	ActiveModel

	// 关联
	Sender    *User `gorm:"foreignKey:SenderID;references:UserID"    json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID;references:UserID" json:"recipient,omitempty"`
}

// TableName 指定表名
func (Message) TableName() string { return "messages" }

// IsParticipant 是否为消息参与方
func (m *Message) IsParticipant(userID string) bool {
	return m.SenderID == userID || m.RecipientID == userID
}
