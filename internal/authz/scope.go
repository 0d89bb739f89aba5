package authz

import (
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// Scope 列表查询的过滤条件，每次请求由 Actor 重新推导
//
// 组合语义：CenterID AND (ClassIDs OR ChildIDs OR OwnerID OR PayerID) AND UserID
// 括号内条件全为空时不做额外限制。
type Scope struct {
	All  bool // 不做任何过滤
	None bool // 没有任何可见记录

	CenterID string

	ClassIDs []string
	ChildIDs []string
	OwnerID  string
	PayerID  string

	// UserID 按资源含义解释：user=本人，message=参与方，notification=接收人
	UserID string
}

// Restricted 是否存在 OR 组条件
func (s Scope) Restricted() bool {
	return len(s.ClassIDs) > 0 || len(s.ChildIDs) > 0 || s.OwnerID != "" || s.PayerID != ""
}

var denyAll = Scope{None: true}

// ScopeFor 推导 actor 对 kind 的列表可见范围
func ScopeFor(actor *Actor, kind Kind) Scope {
	if actor == nil || actor.UserID == "" {
		return denyAll
	}
	if actor.IsSuperAdmin() {
		return Scope{All: true}
	}
	if actor.CenterID == "" {
		return denyAll
	}

	switch actor.Role {
	case model.RoleAdmin:
		return Scope{CenterID: actor.CenterID}
	case model.RoleTeacher:
		return teacherScope(actor, kind)
	case model.RoleParent:
		return parentScope(actor, kind)
	}
	return denyAll
}

func teacherScope(a *Actor, kind Kind) Scope {
	switch kind {
	case KindCenter, KindUser, KindChild, KindClass:
		return Scope{CenterID: a.CenterID}
	case KindAttendance, KindActivity, KindHealthRecord:
		return Scope{CenterID: a.CenterID, ClassIDs: a.AssignedClassIDs, OwnerID: a.UserID}
	case KindMessage, KindNotification:
		return Scope{UserID: a.UserID}
	}
	return denyAll
}

func parentScope(a *Actor, kind Kind) Scope {
	switch kind {
	case KindCenter:
		return Scope{CenterID: a.CenterID}
	case KindUser:
		return Scope{CenterID: a.CenterID, UserID: a.UserID}
	case KindChild, KindAttendance, KindActivity, KindHealthRecord:
		if len(a.ChildIDs) == 0 {
			return denyAll
		}
		return Scope{CenterID: a.CenterID, ChildIDs: a.ChildIDs}
	case KindClass:
		if len(a.ChildClassIDs) == 0 {
			return denyAll
		}
		return Scope{CenterID: a.CenterID, ClassIDs: a.ChildClassIDs}
	case KindPayment:
		return Scope{CenterID: a.CenterID, ChildIDs: a.ChildIDs, PayerID: a.UserID}
	case KindMessage, KindNotification:
		return Scope{UserID: a.UserID}
	}
	return denyAll
}
