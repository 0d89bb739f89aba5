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
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// MessageService 站内消息业务接口
type MessageService interface {
	Send(ctx context.Context, actor *authz.Actor, req *dto.SendMessageRequest) (*model.Message, error)
	GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Message, error)
	List(ctx context.Context, actor *authz.Actor, req *dto.MessageListRequest) ([]model.Message, int64, error)
	MarkRead(ctx context.Context, actor *authz.Actor, id string) (*model.Message, error)
	Delete(ctx context.Context, actor *authz.Actor, id string) error
	UnreadCount(ctx context.Context, actor *authz.Actor) (int64, error)
}

type messageService struct {
	*core
}

// NewMessageService 创建 MessageService 实例
func NewMessageService(c *core) MessageService {
	return &messageService{core: c}
}

// Send 只能发给同中心用户；超级管理员与未绑定中心的管理员不受限
func (s *messageService) Send(ctx context.Context, actor *authz.Actor, req *dto.SendMessageRequest) (*model.Message, error) {
	recipient, err := s.repo.User.GetByID(ctx, req.RecipientID)
	if err != nil {
		return nil, s.lookupErr(err, ErrRecipientNotFound, "查询接收人失败", zap.String("user_id", req.RecipientID))
	}
	if !recipient.IsActive || !reachable(actor, recipient) {
		return nil, ErrRecipientNotFound
	}

	centerID := actor.CenterID
	if centerID == "" {
		centerID = model.StrVal(recipient.CenterID)
	}
	m := &model.Message{
		SenderID:    actor.UserID,
		RecipientID: recipient.UserID,
		CenterID:    model.StrPtr(centerID),
		Subject:     strings.TrimSpace(req.Subject),
		Content:     req.Content,
	}
	m.IsActive = true
	if err := authorize(actor, authz.MessageResource(m), authz.OpCreate); err != nil {
		return nil, err
	}

	if req.ChildID != "" {
		child, err := s.repo.Child.GetByID(ctx, req.ChildID)
		if err != nil {
			return nil, s.lookupErr(err, ErrChildNotFound, "查询儿童失败", zap.String("child_id", req.ChildID))
		}
		if !authz.CanAccess(actor, authz.ChildResource(child), authz.OpRead) {
			return nil, apperrors.ErrAccessDenied
		}
		m.ChildID = model.StrPtr(child.ChildID)
	}
	if req.ParentMessageID != "" {
		parent, err := s.repo.Message.GetByID(ctx, req.ParentMessageID)
		if err != nil {
			return nil, s.lookupErr(err, ErrMessageNotFound, "查询原消息失败", zap.String("message_id", req.ParentMessageID))
		}
		if !parent.IsParticipant(actor.UserID) {
			return nil, apperrors.ErrAccessDenied
		}
		m.ParentMessageID = model.StrPtr(parent.MessageID)
		if m.Subject == "" {
			m.Subject = parent.Subject
		}
	}
	m.Stamp(actor.UserID, true)

	if err := s.repo.Message.Create(ctx, m); err != nil {
		return nil, s.dbErr("发送消息失败", err)
	}
	s.events.Emit(realtime.EventMessageSend, m, realtime.UserRoom(m.RecipientID))
	return m, nil
}

func (s *messageService) GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Message, error) {
	return s.load(ctx, actor, id, authz.OpRead)
}

// List 非管理员默认查看收件箱与发件箱合集
func (s *messageService) List(ctx context.Context, actor *authz.Actor, req *dto.MessageListRequest) ([]model.Message, int64, error) {
	filters := &repository.MessageListFilters{
		Box:     req.Box,
		IsRead:  req.IsRead,
		ChildID: req.ChildID,
	}
	if req.Box != "" {
		filters.UserID = actor.UserID
	}
	list, total, err := s.repo.Message.List(ctx, authz.ScopeFor(actor, authz.KindMessage), filters, pageOf(req.PaginationRequest))
	if err != nil {
		return nil, 0, s.dbErr("查询消息列表失败", err)
	}
	return list, total, nil
}

func (s *messageService) MarkRead(ctx context.Context, actor *authz.Actor, id string) (*model.Message, error) {
	m, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	if m.IsRead {
		return m, nil
	}
	now := s.now()
	m.IsRead = true
	m.ReadAt = &now
	m.Stamp(actor.UserID, false)
	if err := s.repo.Message.Update(ctx, m); err != nil {
		return nil, s.dbErr("更新消息失败", err, zap.String("message_id", id))
	}
	return m, nil
}

func (s *messageService) Delete(ctx context.Context, actor *authz.Actor, id string) error {
	m, err := s.load(ctx, actor, id, authz.OpDelete)
	if err != nil {
		return err
	}
	m.Deactivate(actor.UserID, s.now())
	if err := s.repo.Message.Update(ctx, m); err != nil {
		return s.dbErr("删除消息失败", err, zap.String("message_id", id))
	}
	return nil
}

func (s *messageService) UnreadCount(ctx context.Context, actor *authz.Actor) (int64, error) {
	n, err := s.repo.Message.CountUnread(ctx, actor.UserID)
	if err != nil {
		return 0, s.dbErr("统计未读消息失败", err, zap.String("user_id", actor.UserID))
	}
	return n, nil
}

func (s *messageService) load(ctx context.Context, actor *authz.Actor, id string, op authz.Op) (*model.Message, error) {
	m, err := s.repo.Message.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrMessageNotFound, "查询消息失败", zap.String("message_id", id))
	}
	if err := authorize(actor, authz.MessageResource(m), op); err != nil {
		return nil, err
	}
	return m, nil
}

func reachable(actor *authz.Actor, recipient *model.User) bool {
	if actor.IsSuperAdmin() || recipient.IsSuperAdmin() {
		return true
	}
	return model.StrVal(recipient.CenterID) == actor.CenterID
}
