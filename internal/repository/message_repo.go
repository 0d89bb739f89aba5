package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// 信箱
const (
	BoxInbox = "inbox"
	BoxSent  = "sent"
)

// MessageListFilters 消息列表过滤条件，Box 以 UserID 为视角
type MessageListFilters struct {
	UserID          string
	Box             string
	IsRead          *bool
	ChildID         string
	IncludeInactive bool
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	Update(ctx context.Context, m *model.Message) error
	List(ctx context.Context, scope authz.Scope, filters *MessageListFilters, page Page) ([]model.Message, int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

// messageRepo MessageRepository 的 GORM 实现
type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建 MessageRepository 实例
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

var messageScopeCols = scopeColumns{
	center: "messages.center_id",
	user:   "(messages.sender_id = ? OR messages.recipient_id = ?)",
}

func (r *messageRepo) Create(ctx context.Context, m *model.Message) error {
	return r.db.WithContext(ctx).Omit("Sender", "Recipient").Create(m).Error
}

func (r *messageRepo) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").Preload("Recipient").
		Where("message_id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepo) Update(ctx context.Context, m *model.Message) error {
	return r.db.WithContext(ctx).Omit("Sender", "Recipient").Save(m).Error
}

func (r *messageRepo) List(ctx context.Context, scope authz.Scope, filters *MessageListFilters, page Page) ([]model.Message, int64, error) {
	var messages []model.Message
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Message{})
	db = applyScope(db, scope, messageScopeCols)

	includeInactive := false
	if filters != nil {
		includeInactive = filters.IncludeInactive
		if filters.UserID != "" {
			switch filters.Box {
			case BoxSent:
				db = db.Where("messages.sender_id = ?", filters.UserID)
			case BoxInbox:
				db = db.Where("messages.recipient_id = ?", filters.UserID)
			}
		}
		if filters.IsRead != nil {
			db = db.Where("messages.is_read = ?", *filters.IsRead)
		}
		if filters.ChildID != "" {
			db = db.Where("messages.child_id = ?", filters.ChildID)
		}
	}
	db = activeOnly(db, "messages", includeInactive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(db, page).
		Preload("Sender").Preload("Recipient").
		Order("messages.created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *messageRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("recipient_id = ? AND is_read = ? AND is_active = ?", recipientID, false, true).
		Count(&n).Error
	return n, err
}
