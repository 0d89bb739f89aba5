package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/realtime"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

func TestMessageService_Send_Success(t *testing.T) {
	env := setupTestEnv()

	m, err := env.svc.Message.Send(context.Background(), parentActor(), &dto.SendMessageRequest{
		RecipientID: "teacher-a",
		Subject:     "  午睡  ",
		Content:     "孩子今天需要早点午睡",
		ChildID:     testChildA1,
	})
	if err != nil {
		t.Fatalf("Send 失败: %v", err)
	}
	if m.Subject != "午睡" {
		t.Errorf("期望主题去除空白，实际=%q", m.Subject)
	}
	if m.SenderID != "parent-a" || m.RecipientID != "teacher-a" {
		t.Errorf("收发人不正确: %s -> %s", m.SenderID, m.RecipientID)
	}
	if !env.events.has(realtime.EventMessageSend, realtime.UserRoom("teacher-a")) {
		t.Error("应向接收人房间推送消息事件")
	}
}

func TestMessageService_Send_OtherCenterUnreachable(t *testing.T) {
	env := setupTestEnv()

	_, err := env.svc.Message.Send(context.Background(), parentActor(), &dto.SendMessageRequest{RecipientID: "parent-b", Content: "你好"})
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("期望 ErrRecipientNotFound，实际=%v", err)
	}
}

func TestMessageService_Send_SuperAdminReachable(t *testing.T) {
	env := setupTestEnv()

	if _, err := env.svc.Message.Send(context.Background(), parentActor(), &dto.SendMessageRequest{RecipientID: "super", Content: "求助"}); err != nil {
		t.Errorf("任何用户都应能联系超级管理员: %v", err)
	}
}

func TestMessageService_Send_ForeignChild(t *testing.T) {
	env := setupTestEnv()

	_, err := env.svc.Message.Send(context.Background(), parentActor(), &dto.SendMessageRequest{
		RecipientID: "teacher-a",
		Content:     "询问",
		ChildID:     testChildA2,
	})
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("期望 ErrAccessDenied，实际=%v", err)
	}
}

func TestMessageService_ReplyAndUnread(t *testing.T) {
	env := setupTestEnv()
	ctx := context.Background()
	first, err := env.svc.Message.Send(ctx, parentActor(), &dto.SendMessageRequest{RecipientID: "teacher-a", Subject: "接送", Content: "今天爷爷来接"})
	if err != nil {
		t.Fatalf("Send 失败: %v", err)
	}

	reply, err := env.svc.Message.Send(ctx, teacherActor(), &dto.SendMessageRequest{
		RecipientID:     "parent-a",
		Content:         "收到",
		ParentMessageID: first.MessageID,
	})
	if err != nil {
		t.Fatalf("回复失败: %v", err)
	}
	if reply.Subject != "接送" {
		t.Errorf("回复应继承原主题，实际=%q", reply.Subject)
	}

	n, err := env.svc.Message.UnreadCount(ctx, teacherActor())
	if err != nil {
		t.Fatalf("UnreadCount 失败: %v", err)
	}
	if n != 1 {
		t.Errorf("期望未读 1 条，实际=%d", n)
	}

	// 发送方不能标记已读
	if _, err := env.svc.Message.MarkRead(ctx, parentActor(), first.MessageID); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("期望 ErrAccessDenied，实际=%v", err)
	}
	if _, err := env.svc.Message.MarkRead(ctx, teacherActor(), first.MessageID); err != nil {
		t.Fatalf("MarkRead 失败: %v", err)
	}
	if n, _ := env.svc.Message.UnreadCount(ctx, teacherActor()); n != 0 {
		t.Errorf("期望未读 0 条，实际=%d", n)
	}
}

func TestMessageService_Delete_SenderOnly(t *testing.T) {
	env := setupTestEnv()
	ctx := context.Background()
	m, err := env.svc.Message.Send(ctx, parentActor(), &dto.SendMessageRequest{RecipientID: "teacher-a", Content: "请假"})
	if err != nil {
		t.Fatalf("Send 失败: %v", err)
	}

	if err := env.svc.Message.Delete(ctx, teacherActor(), m.MessageID); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("接收方删除期望 ErrAccessDenied，实际=%v", err)
	}
	if err := env.svc.Message.Delete(ctx, parentActor(), m.MessageID); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if env.messages.messages[m.MessageID].IsActive {
		t.Error("删除后消息应停用")
	}
}
