package model

import (
	"time"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// Stamp 写入创建人/更新人
func (b *BaseModel) Stamp(actorID string, creating bool) {
	if actorID == "" {
		return
	}
	id := actorID
	if creating {
		b.CreatedBy = &id
	}
	b.UpdatedBy = &id
}

// ActiveModel 软删除约定：is_active=false 代替物理删除，记录永久保留
type ActiveModel struct {
	BaseModel
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	DeactivatedBy *string    `gorm:"type:uuid"             json:"deactivated_by,omitempty"`
}

// Deactivate 软删除
func (a *ActiveModel) Deactivate(actorID string, now time.Time) {
	a.IsActive = false
	a.DeactivatedAt = &now
	if actorID != "" {
		id := actorID
		a.DeactivatedBy = &id
		a.UpdatedBy = &id
	}
}

// Activate 恢复
func (a *ActiveModel) Activate(actorID string) {
	a.IsActive = true
	a.DeactivatedAt = nil
	a.DeactivatedBy = nil
	if actorID != "" {
		id := actorID
		a.UpdatedBy = &id
	}
}

// StrPtr 返回字符串指针，空串返回 nil
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrVal 解引用字符串指针
func StrVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
