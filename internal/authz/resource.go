package authz

import (
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// 由模型构造 Resource，保证各处归属信息取法一致

func CenterResource(c *model.Center) Resource {
	return Resource{Kind: KindCenter, ID: c.CenterID, CenterID: c.CenterID, OwnerID: model.StrVal(c.AdminID)}
}

func UserResource(u *model.User) Resource {
	return Resource{
		Kind:       KindUser,
		ID:         u.UserID,
		CenterID:   model.StrVal(u.CenterID),
		OwnerID:    u.UserID,
		Privileged: u.Role == model.RoleAdmin && u.AdminLevel == model.AdminLevelSuper,
	}
}

func ChildResource(c *model.Child) Resource {
	return Resource{
		Kind:      KindChild,
		ID:        c.ChildID,
		CenterID:  c.CenterID,
		ClassID:   model.StrVal(c.CurrentClassID),
		ChildIDs:  []string{c.ChildID},
		ParentIDs: c.ParentIDs(),
	}
}

func ClassResource(c *model.Class) Resource {
	return Resource{Kind: KindClass, ID: c.ClassID, CenterID: c.CenterID, ClassID: c.ClassID, TeacherIDs: c.TeacherIDs()}
}

func AttendanceResource(a *model.Attendance) Resource {
	return Resource{
		Kind:     KindAttendance,
		ID:       a.AttendanceID,
		CenterID: a.CenterID,
		OwnerID:  model.StrVal(a.CheckedInBy),
		ClassID:  model.StrVal(a.ClassID),
		ChildIDs: []string{a.ChildID},
	}
}

func ActivityResource(a *model.Activity) Resource {
	return Resource{
		Kind:     KindActivity,
		ID:       a.ActivityID,
		CenterID: a.CenterID,
		OwnerID:  a.TeacherID,
		ClassID:  model.StrVal(a.ClassID),
		ChildIDs: a.ChildIDs,
	}
}

func HealthRecordResource(h *model.HealthRecord) Resource {
	return Resource{
		Kind:     KindHealthRecord,
		ID:       h.HealthRecordID,
		CenterID: h.CenterID,
		OwnerID:  h.RecordedBy,
		ClassID:  model.StrVal(h.ClassID),
		ChildIDs: []string{h.ChildID},
	}
}

func PaymentResource(p *model.Payment) Resource {
	return Resource{
		Kind:     KindPayment,
		ID:       p.PaymentID,
		CenterID: p.CenterID,
		PayerID:  p.ParentID,
		ChildIDs: []string{p.ChildID},
	}
}

func MessageResource(m *model.Message) Resource {
	return Resource{
		Kind:        KindMessage,
		ID:          m.MessageID,
		CenterID:    model.StrVal(m.CenterID),
		OwnerID:     m.SenderID,
		RecipientID: m.RecipientID,
	}
}

func NotificationResource(n *model.Notification) Resource {
	return Resource{
		Kind:        KindNotification,
		ID:          n.NotificationID,
		CenterID:    model.StrVal(n.CenterID),
		OwnerID:     model.StrVal(n.SenderID),
		RecipientID: n.RecipientID,
	}
}
