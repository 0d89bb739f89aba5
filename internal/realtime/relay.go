package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/pkg/notify"
)

const smsTimeout = 10 * time.Second

// relay 处理一条上行事件：附加发起人身份后转发到目标房间
func (h *Hub) relay(ctx context.Context, c *Client, in Inbound) {
	c.touch()

	switch in.Event {
	case EventHeartbeat:
		c.reply(EventHeartbeat, map[string]string{"status": "ok"})
		return
	case EventPresenceUpdate:
		var p presencePayload
		if err := json.Unmarshal(in.Data, &p); err != nil || !validPresence(p.Status) {
			c.reply(EventError, map[string]string{"message": "无效的在线状态"})
			return
		}
		c.setStatus(p.Status)
		if c.actor.CenterID != "" {
			h.broadcast(EventPresenceUpdate, map[string]string{"user_id": c.actor.UserID, "status": p.Status},
				c.sender(), c.actor.CenterID, []Room{CenterRoom(c.actor.CenterID)})
		}
		return
	}

	rooms, err := h.route(c.actor, in)
	if err != nil {
		c.reply(EventError, map[string]string{"event": in.Event, "message": err.Error()})
		return
	}
	h.broadcast(in.Event, in.Data, c.sender(), senderCenter(c.actor), rooms)

	if in.Event == EventEmergencyAlert {
		h.fanOutEmergencySMS(c.actor, in.Data)
	}
}

// 事件发起权限与目标房间
var (
	errForbiddenEvent = errors.New("无权发送该事件")
	errUnknownEvent   = errors.New("未知事件")
	errBadPayload     = errors.New("事件数据不完整")
	errOutsideClasses = errors.New("只能向所带班级发送")
)

func (h *Hub) route(a *authz.Actor, in Inbound) ([]Room, error) {
	switch in.Event {
	case EventAttendanceUpdate:
		if !a.IsStaff() {
			return nil, errForbiddenEvent
		}
		var p attendancePayload
		if err := json.Unmarshal(in.Data, &p); err != nil || p.ChildID == "" {
			return nil, errBadPayload
		}
		if err := checkTeacherClass(a, p.ClassID); err != nil {
			return nil, err
		}
		rooms := []Room{ChildRoom(p.ChildID)}
		if p.ClassID != "" {
			rooms = append(rooms, ClassRoom(p.ClassID))
		}
		return rooms, nil

	case EventActivityUpdate:
		if !a.IsStaff() {
			return nil, errForbiddenEvent
		}
		var p activityPayload
		if err := json.Unmarshal(in.Data, &p); err != nil || (p.ClassID == "" && len(p.ChildIDs) == 0) {
			return nil, errBadPayload
		}
		if err := checkTeacherClass(a, p.ClassID); err != nil {
			return nil, err
		}
		var rooms []Room
		for _, id := range p.ChildIDs {
			rooms = append(rooms, ChildRoom(id))
		}
		if p.ClassID != "" {
			rooms = append(rooms, ClassRoom(p.ClassID))
		}
		return rooms, nil

	case EventMessageSend:
		var p messagePayload
		if err := json.Unmarshal(in.Data, &p); err != nil || p.RecipientID == "" {
			return nil, errBadPayload
		}
		return []Room{UserRoom(p.RecipientID)}, nil

	case EventNotificationSend:
		if !a.IsStaff() {
			return nil, errForbiddenEvent
		}
		var p notificationPayload
		if err := json.Unmarshal(in.Data, &p); err != nil || len(p.RecipientIDs) == 0 {
			return nil, errBadPayload
		}
		rooms := make([]Room, 0, len(p.RecipientIDs))
		for _, id := range p.RecipientIDs {
			rooms = append(rooms, UserRoom(id))
		}
		return rooms, nil

	case EventEmergencyAlert:
		if !a.IsStaff() {
			return nil, errForbiddenEvent
		}
		var p emergencyPayload
		if err := json.Unmarshal(in.Data, &p); err != nil || p.Message == "" {
			return nil, errBadPayload
		}
		return []Room{emergencyRoom(a)}, nil
	}
	return nil, errUnknownEvent
}

// 教师只能向所带班级发送；未带班级 ID 的事件仅管理员可发
func checkTeacherClass(a *authz.Actor, classID string) error {
	if a.Role != model.RoleTeacher {
		return nil
	}
	if !a.TeachesClass(classID) {
		return errOutsideClasses
	}
	return nil
}

// senderCenter 上行事件的投递范围，超级管理员不受中心限制
func senderCenter(a *authz.Actor) string {
	if a.IsSuperAdmin() {
		return ""
	}
	return a.CenterID
}

// 紧急通知发往发起人所在中心，未绑定中心的超级管理员发往全局
func emergencyRoom(a *authz.Actor) Room {
	if a.CenterID == "" {
		return RoomGlobal
	}
	return CenterRoom(a.CenterID)
}

// fanOutEmergencySMS 按告警时刻的注册表快照，向同范围内已开启短信的在线用户发送短信
func (h *Hub) fanOutEmergencySMS(a *authz.Actor, data json.RawMessage) {
	if h.sms == nil {
		return
	}
	var p emergencyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	sent := make(map[string]bool)
	recipients := h.Snapshot(func(pr Presence) bool {
		if pr.UserID == a.UserID || !pr.SMSOptIn || pr.Phone == "" {
			return false
		}
		return a.CenterID == "" || pr.CenterID == a.CenterID
	})

	text := "紧急通知: " + p.Message
	if a.Name != "" {
		text = fmt.Sprintf("紧急通知（%s）: %s", a.Name, p.Message)
	}
	for _, r := range recipients {
		if sent[r.UserID] {
			continue
		}
		sent[r.UserID] = true
		go func(r Presence) {
			ctx, cancel := context.WithTimeout(context.Background(), smsTimeout)
			defer cancel()
			if err := h.sms.SendSMS(ctx, notify.SMS{To: r.Phone, Message: text}); err != nil {
				h.logger.Warn("紧急短信发送失败", zap.String("user_id", r.UserID), zap.Error(err))
			}
		}(r)
	}
}

func validPresence(s string) bool {
	return s == PresenceOnline || s == PresenceAway || s == PresenceBusy
}
