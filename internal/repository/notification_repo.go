package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// NotificationListFilters 通知列表过滤条件
type NotificationListFilters struct {
	RecipientID     string
	IsRead          *bool
	Type            string
	Priority        string
	IncludeInactive bool
}

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	CreateBatch(ctx context.Context, items []model.Notification) error
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	Update(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, scope authz.Scope, filters *NotificationListFilters, page Page) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error)
	// ListDue 已到计划时间但尚未发送的通知
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.Notification, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
}

// notificationRepo NotificationRepository 的 GORM 实现
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

var notificationScopeCols = scopeColumns{
	center: "notifications.center_id",
	user:   "notifications.recipient_id = ?",
}

func (r *notificationRepo) CreateBatch(ctx context.Context, items []model.Notification) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", id).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) Update(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *notificationRepo) List(ctx context.Context, scope authz.Scope, filters *NotificationListFilters, page Page) ([]model.Notification, int64, error) {
	var items []model.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Notification{})
	db = applyScope(db, scope, notificationScopeCols)

	includeInactive := false
	if filters != nil {
		includeInactive = filters.IncludeInactive
		if filters.RecipientID != "" {
			db = db.Where("notifications.recipient_id = ?", filters.RecipientID)
		}
		if filters.IsRead != nil {
			db = db.Where("notifications.is_read = ?", *filters.IsRead)
		}
		if filters.Type != "" {
			db = db.Where("notifications.type = ?", filters.Type)
		}
		if filters.Priority != "" {
			db = db.Where("notifications.priority = ?", filters.Priority)
		}
	}
	db = activeOnly(db, "notifications", includeInactive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(db, page).
		Order("notifications.created_at DESC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND is_active = ?", recipientID, false, true).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *notificationRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]model.Notification, error) {
	var items []model.Notification
	err := r.db.WithContext(ctx).
		Where("sent_at IS NULL AND is_active = ? AND (scheduled_at IS NULL OR scheduled_at <= ?)", true, now).
		Order("scheduled_at ASC NULLS FIRST").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *notificationRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("notification_id = ? AND sent_at IS NULL", id).
		Update("sent_at", at).Error
}
