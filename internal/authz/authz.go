// Package authz 租户隔离与访问控制
//
// 判定顺序：超级管理员 → 中心管理员 → 教师 → 家长 → 拒绝。
// 持久层没有行级安全，这里是唯一的边界。
package authz

import (
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// Op 操作类型
type Op string

const (
	OpCreate Op = "create"
	OpRead   Op = "read"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Kind 资源类型
type Kind string

const (
	KindCenter       Kind = "center"
	KindUser         Kind = "user"
	KindChild        Kind = "child"
	KindClass        Kind = "class"
	KindAttendance   Kind = "attendance"
	KindActivity     Kind = "activity"
	KindHealthRecord Kind = "health_record"
	KindPayment      Kind = "payment"
	KindMessage      Kind = "message"
	KindNotification Kind = "notification"
)

// Actor 当前请求的身份与关系快照
type Actor struct {
	UserID     string
	Role       string
	CenterID   string
	AdminLevel string
	Name       string
	Phone      string
	SMSOptIn   bool

	// CenterAccess 仅做展示，非超级管理员的可见范围始终限定在 CenterID
	CenterAccess []string
	Permissions  []string

	AssignedClassIDs []string // 教师所带班级
	ChildIDs         []string // 家长的孩子
	ChildClassIDs    []string // 家长孩子当前所在班级
}

// IsSuperAdmin adminLevel=super_admin，或未绑定中心的管理员
func (a *Actor) IsSuperAdmin() bool {
	return a != nil && a.Role == model.RoleAdmin && (a.AdminLevel == model.AdminLevelSuper || a.CenterID == "")
}

// IsCenterAdmin 绑定中心的管理员
func (a *Actor) IsCenterAdmin() bool {
	return a != nil && a.Role == model.RoleAdmin && !a.IsSuperAdmin()
}

// IsStaff 管理员或教师
func (a *Actor) IsStaff() bool {
	return a != nil && (a.Role == model.RoleAdmin || a.Role == model.RoleTeacher)
}

// HasPermission 是否拥有某项能力
func (a *Actor) HasPermission(p string) bool {
	return contains(a.Permissions, p)
}

// TeachesClass 教师是否负责该班级
func (a *Actor) TeachesClass(classID string) bool {
	return classID != "" && contains(a.AssignedClassIDs, classID)
}

// ParentOf 家长是否为该儿童的监护人
func (a *Actor) ParentOf(childID string) bool {
	return childID != "" && contains(a.ChildIDs, childID)
}

// Resource 被访问对象的归属信息
type Resource struct {
	Kind     Kind
	ID       string
	CenterID string

	// OwnerID 记录的责任人：activity.teacher_id / attendance.checked_in_by /
	// health_record.recorded_by / message.sender_id / notification.sender_id
	OwnerID string
	// RecipientID message / notification 的接收人
	RecipientID string
	// PayerID payment.parent_id
	PayerID string

	// Privileged 目标用户为超级管理员
	Privileged bool

	ClassID    string   // child.current_class / attendance.class_id / activity.class_id
	ChildIDs   []string // 关联的儿童
	ParentIDs  []string // child.parents
	TeacherIDs []string // class.teachers
}

// CanAccess 判定 actor 是否可以对 res 执行 op
func CanAccess(actor *Actor, res Resource, op Op) bool {
	if actor == nil || actor.UserID == "" {
		return false
	}
	if actor.IsSuperAdmin() {
		return true
	}
	switch actor.Role {
	case model.RoleAdmin:
		return centerAdminCan(actor, res, op)
	case model.RoleTeacher:
		return teacherCan(actor, res, op)
	case model.RoleParent:
		return parentCan(actor, res, op)
	}
	return false
}

// ────────── 中心管理员 ──────────

func centerAdminCan(a *Actor, res Resource, op Op) bool {
	switch res.Kind {
	case KindCenter:
		if res.ID != a.CenterID {
			return false
		}
		return op == OpRead || op == OpUpdate
	case KindMessage:
		if op == OpRead && res.CenterID == a.CenterID {
			return true
		}
		return messageParticipantCan(a, res, op)
	case KindNotification:
		return res.CenterID == a.CenterID || (op != OpCreate && res.RecipientID == a.UserID)
	case KindUser:
		// 超级管理员账号只读
		if res.Privileged && op != OpRead {
			return false
		}
	}
	return res.CenterID != "" && res.CenterID == a.CenterID
}

// ────────── 教师 ──────────

func teacherCan(a *Actor, res Resource, op Op) bool {
	switch res.Kind {
	case KindMessage:
		return messageParticipantCan(a, res, op)
	case KindNotification:
		return notificationCan(a, res, op)
	}
	if res.CenterID == "" || res.CenterID != a.CenterID {
		return false
	}

	switch res.Kind {
	case KindCenter:
		return op == OpRead
	case KindUser:
		if op == OpRead {
			return true
		}
		return op == OpUpdate && res.ID == a.UserID
	case KindChild:
		return op == OpCreate || op == OpRead || op == OpUpdate
	case KindClass:
		if op == OpRead {
			return true
		}
		return op == OpUpdate && (a.TeachesClass(res.ID) || contains(res.TeacherIDs, a.UserID))
	case KindAttendance, KindActivity, KindHealthRecord:
		linked := a.TeachesClass(res.ClassID)
		if op == OpCreate {
			return linked
		}
		return linked || (res.OwnerID != "" && res.OwnerID == a.UserID)
	}
	return false
}

// ────────── 家长 ──────────

func parentCan(a *Actor, res Resource, op Op) bool {
	switch res.Kind {
	case KindMessage:
		return messageParticipantCan(a, res, op)
	case KindNotification:
		if op == OpCreate || op == OpDelete {
			return false
		}
		return res.RecipientID == a.UserID
	}
	if res.CenterID == "" || res.CenterID != a.CenterID {
		return false
	}

	switch res.Kind {
	case KindCenter:
		return op == OpRead
	case KindUser:
		return (op == OpRead || op == OpUpdate) && res.ID == a.UserID
	case KindChild:
		if op != OpRead && op != OpUpdate {
			return false
		}
		return a.ParentOf(res.ID) || contains(res.ParentIDs, a.UserID)
	case KindClass:
		return op == OpRead && res.ID != "" && contains(a.ChildClassIDs, res.ID)
	case KindAttendance, KindActivity, KindHealthRecord:
		return op == OpRead && anyShared(a.ChildIDs, res.ChildIDs)
	case KindPayment:
		if op != OpRead {
			return false
		}
		return res.PayerID == a.UserID || anyShared(a.ChildIDs, res.ChildIDs)
	}
	return false
}

// ────────── 消息 / 通知 ──────────

func participant(a *Actor, res Resource) bool {
	return res.OwnerID == a.UserID || res.RecipientID == a.UserID
}

// 发送方创建/删除；参与方读取；接收方更新（已读）
func messageParticipantCan(a *Actor, res Resource, op Op) bool {
	switch op {
	case OpCreate, OpDelete:
		return res.OwnerID == a.UserID
	case OpRead:
		return participant(a, res)
	case OpUpdate:
		return res.RecipientID == a.UserID
	}
	return false
}

func notificationCan(a *Actor, res Resource, op Op) bool {
	switch op {
	case OpCreate:
		return res.CenterID != "" && res.CenterID == a.CenterID
	case OpRead, OpUpdate:
		return res.RecipientID == a.UserID
	case OpDelete:
		return res.OwnerID == a.UserID
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func anyShared(a, b []string) bool {
	for _, x := range a {
		if contains(b, x) {
			return true
		}
	}
	return false
}
