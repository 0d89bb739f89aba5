package authz

import (
	"reflect"
	"testing"
)

func TestScopeFor(t *testing.T) {
	actors := testActors()

	tests := []struct {
		name  string
		actor *Actor
		kind  Kind
		want  Scope
	}{
		{"超级管理员不过滤", actors["super"], KindChild, Scope{All: true}},
		{"中心管理员按中心", actors["admin"], KindPayment, Scope{CenterID: centerA}},
		{"中心管理员消息按中心", actors["admin"], KindMessage, Scope{CenterID: centerA}},
		{"教师儿童按中心", actors["teacher"], KindChild, Scope{CenterID: centerA}},
		{"教师考勤按班级或本人", actors["teacher"], KindAttendance, Scope{CenterID: centerA, ClassIDs: []string{"class-a1"}, OwnerID: "teacher-a"}},
		{"教师无缴费权限", actors["teacher"], KindPayment, Scope{None: true}},
		{"教师消息按参与方", actors["teacher"], KindMessage, Scope{UserID: "teacher-a"}},
		{"家长儿童按孩子", actors["parent"], KindChild, Scope{CenterID: centerA, ChildIDs: []string{"child-own"}}},
		{"家长班级按孩子班级", actors["parent"], KindClass, Scope{CenterID: centerA, ClassIDs: []string{"class-a1"}}},
		{"家长缴费按孩子或付款人", actors["parent"], KindPayment, Scope{CenterID: centerA, ChildIDs: []string{"child-own"}, PayerID: "parent-a"}},
		{"家长用户仅本人", actors["parent"], KindUser, Scope{CenterID: centerA, UserID: "parent-a"}},
		{"家长通知按接收人", actors["parent"], KindNotification, Scope{UserID: "parent-a"}},
		{"nil actor", nil, KindChild, Scope{None: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScopeFor(tt.actor, tt.kind)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("期望 %+v，实际=%+v", tt.want, got)
			}
		})
	}
}

func TestScopeFor_ParentWithoutChildren(t *testing.T) {
	p := &Actor{UserID: "p", Role: "parent", CenterID: centerA}
	for _, kind := range []Kind{KindChild, KindClass, KindAttendance, KindActivity, KindHealthRecord} {
		if s := ScopeFor(p, kind); !s.None {
			t.Errorf("%s: 无孩子的家长应看不到任何记录，实际=%+v", kind, s)
		}
	}
}

func TestScopeFor_CenterlessNonAdmin(t *testing.T) {
	tchr := &Actor{UserID: "t", Role: "teacher"}
	if s := ScopeFor(tchr, KindChild); !s.None {
		t.Errorf("未绑定中心的教师应被拒绝，实际=%+v", s)
	}
}
