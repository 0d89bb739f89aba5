package realtime

import (
	"reflect"
	"testing"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

func TestInterestRooms(t *testing.T) {
	tests := []struct {
		name  string
		actor *authz.Actor
		want  []Room
	}{
		{
			name:  "超级管理员",
			actor: &authz.Actor{UserID: "u0", Role: model.RoleAdmin},
			want:  []Room{RoomGlobal, "role:admin", RoomAdmins, "user:u0"},
		},
		{
			name:  "中心管理员",
			actor: &authz.Actor{UserID: "u1", Role: model.RoleAdmin, CenterID: "c1"},
			want:  []Room{RoomGlobal, "role:admin", "center:c1", RoomAdmins, "user:u1"},
		},
		{
			name:  "教师",
			actor: &authz.Actor{UserID: "u2", Role: model.RoleTeacher, CenterID: "c1", AssignedClassIDs: []string{"k1", "k2"}},
			want:  []Room{RoomGlobal, "role:teacher", "center:c1", RoomTeachers, "class:k1", "class:k2", "user:u2"},
		},
		{
			name: "家长两个孩子同班只加入一次",
			actor: &authz.Actor{
				UserID:   "u3", Role: model.RoleParent, CenterID: "c1",
				ChildIDs: []string{"ch1", "ch2"}, ChildClassIDs: []string{"k1", "k1"},
			},
			want: []Room{RoomGlobal, "role:parent", "center:c1", RoomParents, "child:ch1", "child:ch2", "class:k1", "user:u3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterestRooms(tt.actor)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("期望 %v，实际=%v", tt.want, got)
			}
		})
	}
}

func TestInterestRooms_Nil(t *testing.T) {
	if rooms := InterestRooms(nil); rooms != nil {
		t.Errorf("nil actor 不应加入任何房间，实际=%v", rooms)
	}
}
