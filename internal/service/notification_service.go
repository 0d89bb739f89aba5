package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/realtime"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	"github.com/cliffordobure/daycare-sub000/pkg/notify"
)

const dueBatchSize = 200

// NotificationService 通知业务接口
type NotificationService interface {
	Create(ctx context.Context, actor *authz.Actor, req *dto.CreateNotificationRequest) ([]model.Notification, error)
	GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Notification, error)
	List(ctx context.Context, actor *authz.Actor, req *dto.NotificationListRequest) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, actor *authz.Actor, id string) (*model.Notification, error)
	MarkAllRead(ctx context.Context, actor *authz.Actor) (int64, error)
	SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error
	// DeliverDue 定时任务：投递已到计划时间的通知
	DeliverDue(ctx context.Context) (int, error)
}

type notificationService struct {
	*core
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(c *core) NotificationService {
	return &notificationService{core: c}
}

// ──── Create ────

func (s *notificationService) Create(ctx context.Context, actor *authz.Actor, req *dto.CreateNotificationRequest) ([]model.Notification, error) {
	ids := uniqueStrings(req.RecipientIDs)
	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		return nil, s.dbErr("查询接收人失败", err)
	}
	if len(users) != len(ids) {
		return nil, ErrInvalidRecipients
	}

	channels := uniqueStrings(req.Channels)
	if len(channels) == 0 {
		channels = []string{model.ChannelInApp}
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}

	recipients := make(map[string]*model.User, len(users))
	items := make([]model.Notification, 0, len(users))
	for i := range users {
		u := &users[i]
		if !u.IsActive || (!actor.IsSuperAdmin() && model.StrVal(u.CenterID) != actor.CenterID) {
			return nil, ErrInvalidRecipients
		}
		n := model.Notification{
			RecipientID: u.UserID,
			SenderID:    model.StrPtr(actor.UserID),
			CenterID:    u.CenterID,
			Type:        req.Type,
			Title:       strings.TrimSpace(req.Title),
			Content:     req.Content,
			Priority:    priority,
			Channels:    channels,
			ScheduledAt: req.ScheduledAt,
			RelatedType: model.StrPtr(req.RelatedType),
			RelatedID:   model.StrPtr(req.RelatedID),
		}
		n.IsActive = true
		if err := authorize(actor, authz.NotificationResource(&n), authz.OpCreate); err != nil {
			return nil, err
		}
		n.Stamp(actor.UserID, true)
		recipients[u.UserID] = u
		items = append(items, n)
	}

	if err := s.notify(ctx, items, recipients); err != nil {
		return nil, err
	}
	s.logger.Info("创建通知",
		zap.String("type", req.Type),
		zap.Int("recipients", len(items)),
		zap.String("operator", actor.UserID),
	)
	return items, nil
}

func (s *notificationService) GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Notification, error) {
	return s.load(ctx, actor, id, authz.OpRead)
}

func (s *notificationService) List(ctx context.Context, actor *authz.Actor, req *dto.NotificationListRequest) ([]model.Notification, int64, error) {
	filters := &repository.NotificationListFilters{
		IsRead:   req.IsRead,
		Type:     req.Type,
		Priority: req.Priority,
	}
	list, total, err := s.repo.Notification.List(ctx, authz.ScopeFor(actor, authz.KindNotification), filters, pageOf(req.PaginationRequest))
	if err != nil {
		return nil, 0, s.dbErr("查询通知列表失败", err)
	}
	return list, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor *authz.Actor, id string) (*model.Notification, error) {
	n, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	now := s.now()
	n.IsRead = true
	n.ReadAt = &now
	n.Stamp(actor.UserID, false)
	if err := s.repo.Notification.Update(ctx, n); err != nil {
		return nil, s.dbErr("更新通知失败", err, zap.String("notification_id", id))
	}
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor *authz.Actor) (int64, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, actor.UserID, s.now())
	if err != nil {
		return 0, s.dbErr("全部已读失败", err, zap.String("user_id", actor.UserID))
	}
	return n, nil
}

func (s *notificationService) SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error {
	n, err := s.load(ctx, actor, id, authz.OpDelete)
	if err != nil {
		return err
	}
	if active {
		n.Activate(actor.UserID)
	} else {
		n.Deactivate(actor.UserID, s.now())
	}
	if err := s.repo.Notification.Update(ctx, n); err != nil {
		return s.dbErr("更新通知状态失败", err, zap.String("notification_id", id))
	}
	return nil
}

// ──── DeliverDue ────

func (s *notificationService) DeliverDue(ctx context.Context) (int, error) {
	due, err := s.repo.Notification.ListDue(ctx, s.now(), dueBatchSize)
	if err != nil {
		return 0, s.dbErr("查询待投递通知失败", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(due))
	for _, n := range due {
		ids = append(ids, n.RecipientID)
	}
	users, err := s.repo.User.ListByIDs(ctx, uniqueStrings(ids))
	if err != nil {
		return 0, s.dbErr("查询接收人失败", err)
	}
	recipients := make(map[string]*model.User, len(users))
	for i := range users {
		recipients[users[i].UserID] = &users[i]
	}

	sent := 0
	for i := range due {
		n := &due[i]
		now := s.now()
		if err := s.repo.Notification.MarkSent(ctx, n.NotificationID, now); err != nil {
			s.logger.Warn("标记通知已发送失败", zap.String("notification_id", n.NotificationID), zap.Error(err))
			continue
		}
		n.SentAt = &now
		s.deliver(n, recipients[n.RecipientID])
		sent++
	}
	s.logger.Info("投递计划通知", zap.Int("count", sent))
	return sent, nil
}

func (s *notificationService) load(ctx context.Context, actor *authz.Actor, id string, op authz.Op) (*model.Notification, error) {
	n, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrNotificationNotFound, "查询通知失败", zap.String("notification_id", id))
	}
	if err := authorize(actor, authz.NotificationResource(n), op); err != nil {
		return nil, err
	}
	return n, nil
}

// ──── 投递 ────

// notify 保存通知，已到期的立即标记发送并投递
func (c *core) notify(ctx context.Context, items []model.Notification, recipients map[string]*model.User) error {
	if len(items) == 0 {
		return nil
	}
	now := c.now()
	for i := range items {
		if items[i].IsDue(now) {
			t := now
			items[i].SentAt = &t
		}
	}
	if err := c.repo.Notification.CreateBatch(ctx, items); err != nil {
		return c.dbErr("创建通知失败", err)
	}
	for i := range items {
		if items[i].SentAt != nil {
			c.deliver(&items[i], recipients[items[i].RecipientID])
		}
	}
	return nil
}

// deliver 推送站内事件，并按渠道与接收人偏好外发邮件/短信
func (c *core) deliver(n *model.Notification, recipient *model.User) {
	c.events.Emit(realtime.EventNotificationSend, n, realtime.UserRoom(n.RecipientID))
	if recipient == nil {
		return
	}
	if n.HasChannel(model.ChannelEmail) && recipient.EmailOptIn {
		c.dispatch.Email(notify.Email{
			To:       recipient.Email,
			ToName:   recipient.FullName(),
			Subject:  n.Title,
			Template: "notification",
			Context: map[string]any{
				"name":     recipient.FirstName,
				"title":    n.Title,
				"content":  n.Content,
				"priority": n.Priority,
			},
		})
	}
	if n.HasChannel(model.ChannelSMS) && recipient.SMSOptIn {
		c.dispatch.SMS(notify.SMS{To: recipient.Phone, Message: n.Title + ": " + n.Content})
	}
}
